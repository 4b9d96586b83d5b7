package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/logger"
	"github.com/unclebandit/wabulk-backend/internal/model"
	"github.com/unclebandit/wabulk-backend/internal/repository"
	"github.com/unclebandit/wabulk-backend/internal/whatsapp"
)

// MessageService sends one-off messages outside any campaign.
type MessageService struct {
	ContactRepo  repository.ContactRepositoryInterface
	OutboundRepo repository.OutboundMessageRepositoryInterface
	Sender       whatsapp.Sender
	Renderer     *Renderer
	CountryCode  string
}

// SendMessageInput addresses either a stored contact or a raw phone number.
type SendMessageInput struct {
	ContactID string            `json:"contact_id"`
	Phone     string            `json:"phone"`
	Message   string            `json:"message"`
	MediaURL  string            `json:"media_url"`
	Variables map[string]string `json:"variables"`
}

// ErrSendFailed wraps a gateway rejection of a single send.
type ErrSendFailed struct {
	Message *model.OutboundMessage
	Err     error
}

func (e *ErrSendFailed) Error() string { return fmt.Sprintf("send failed: %v", e.Err) }
func (e *ErrSendFailed) Unwrap() error { return e.Err }

// Send renders, sends and records one message. A gateway failure is recorded
// and returned as *ErrSendFailed.
func (s *MessageService) Send(ctx context.Context, userID string, in SendMessageInput) (*model.OutboundMessage, error) {
	if strings.TrimSpace(in.Message) == "" && in.MediaURL == "" {
		return nil, appErrors.NewValidation("message", "is required")
	}

	vars := map[string]string{}
	phone := NormalizePhone(in.Phone, s.CountryCode)
	var contactID *string
	if in.ContactID != "" {
		if err := checkRefID("contact_id", in.ContactID); err != nil {
			return nil, err
		}
		c, err := s.ContactRepo.GetByID(ctx, userID, in.ContactID)
		if err != nil {
			return nil, err
		}
		vars = RecipientVars(*c)
		if strings.TrimSpace(in.Phone) == "" {
			phone = ContactPhone(c.Phone, s.CountryCode)
		}
		contactID = &c.ID
	}
	for k, v := range in.Variables {
		vars[k] = v
	}

	if phone == "" {
		return nil, appErrors.NewValidation("phone", "is not a valid phone number")
	}
	vars["phone"] = phone

	r := s.Renderer
	if r == nil {
		r = NewRenderer(nil, "")
	}
	text := r.Render(in.Message, vars)

	msg := &model.OutboundMessage{
		ID:        uuid.NewString(),
		UserID:    userID,
		ContactID: contactID,
		Phone:     phone,
		Content:   text,
		Status:    model.MessageSent,
	}
	res, sendErr := s.Sender.Send(ctx, whatsapp.OutgoingMessage{Phone: phone, Text: text, MediaURL: in.MediaURL})
	if sendErr != nil {
		msg.Status = model.MessageFailed
		msg.Error = sendErr.Error()
	} else if res != nil {
		msg.ExternalID = res.ExternalID
	}

	if err := s.OutboundRepo.Create(ctx, msg); err != nil {
		logger.Error("failed to record outbound message", "phone", phone, "error", err.Error())
	}
	if sendErr != nil {
		return msg, &ErrSendFailed{Message: msg, Err: sendErr}
	}
	return msg, nil
}
