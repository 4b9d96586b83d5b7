// internal/model/contact.go
package model

import "time"

type Contact struct {
	ID           string            `db:"id" json:"id"`
	UserID       string            `db:"user_id" json:"user_id"`
	Name         string            `db:"name" json:"name"`
	Phone        string            `db:"phone" json:"phone"`
	Email        string            `db:"email" json:"email,omitempty"`
	Tags         []string          `db:"tags" json:"tags"`
	CustomFields map[string]string `db:"custom_fields" json:"custom_fields,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// ContactPatch holds the mutable contact fields. Nil fields are left untouched.
type ContactPatch struct {
	Name         *string            `json:"name"`
	Phone        *string            `json:"phone"`
	Email        *string            `json:"email"`
	Tags         *[]string          `json:"tags"`
	CustomFields *map[string]string `json:"custom_fields"`
}

// ContactFilter controls contact listing.
type ContactFilter struct {
	Search string
	Tag    string
	Limit  int
	Offset int
}
