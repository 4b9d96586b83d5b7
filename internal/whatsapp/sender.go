// Package whatsapp talks to the outbound WhatsApp gateway.
package whatsapp

import (
	"context"
	"time"
)

// OutgoingMessage is one rendered message addressed to a normalized phone number.
type OutgoingMessage struct {
	Phone    string
	Text     string
	MediaURL string
}

// SendResult describes an accepted message.
type SendResult struct {
	ExternalID string
	SentAt     time.Time
}

// Sender delivers a single message. An error means the gateway did not accept it.
type Sender interface {
	Send(ctx context.Context, msg OutgoingMessage) (*SendResult, error)
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, msg OutgoingMessage) (*SendResult, error)

func (f SenderFunc) Send(ctx context.Context, msg OutgoingMessage) (*SendResult, error) {
	return f(ctx, msg)
}
