// internal/model/template.go
package model

import "time"

type Template struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Content   string    `db:"content" json:"content"`
	Variables []string  `db:"variables" json:"variables"`
	MediaURL  string    `db:"media_url" json:"media_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TemplatePatch holds the mutable template fields. Variables is derived from
// Content by the service, never taken from the client.
type TemplatePatch struct {
	Name      *string   `json:"name"`
	Content   *string   `json:"content"`
	MediaURL  *string   `json:"media_url"`
	Variables *[]string `json:"-"`
}
