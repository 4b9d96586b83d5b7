// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// Error codes carried in the JSON error envelope.
const (
	CodeInvalidRequest = "invalid_request"
	CodeUnauthorized   = "unauthorized"
	CodeNotFound       = "not_found"
	CodeRateLimited    = "rate_limited"
	CodeInternal       = "internal_error"
)

var (
	ErrUnauthorized = errors.New("missing or invalid access token")
	ErrRateLimited  = errors.New("too many requests")
)

// ErrNotFound reports a record that does not exist or is owned by another user.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

func NewNotFound(resource, id string) error {
	return &ErrNotFound{Resource: resource, ID: id}
}

func NewCampaignNotFound(id string) error { return NewNotFound("campaign", id) }
func NewContactNotFound(id string) error  { return NewNotFound("contact", id) }
func NewTemplateNotFound(id string) error { return NewNotFound("template", id) }
func NewMediaNotFound(id string) error    { return NewNotFound("media", id) }

// ErrValidation is returned when caller input is rejected before hitting storage.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidation(field, message string) error {
	return &ErrValidation{Field: field, Message: message}
}

// NewAlreadySending rejects a dispatch while another run of the campaign is in flight.
func NewAlreadySending() error {
	return NewValidation("status", "campaign is already being sent")
}

// IsNotFound reports whether err (or anything it wraps) is an ErrNotFound.
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// Code maps an error to its envelope code.
func Code(err error) string {
	var (
		nf *ErrNotFound
		ve *ErrValidation
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &nf):
		return CodeNotFound
	case errors.As(err, &ve):
		return CodeInvalidRequest
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrRateLimited):
		return CodeRateLimited
	default:
		return CodeInternal
	}
}
