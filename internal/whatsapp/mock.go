package whatsapp

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/wabulk-backend/internal/config"
)

// MockSender accepts a fraction of messages at random. It stands in for the
// gateway when none is configured.
type MockSender struct {
	SuccessRate float64
	Rand        func() float64
}

func NewMockSender(successRate float64) *MockSender {
	if successRate <= 0 || successRate > 1 {
		successRate = 0.9
	}
	return &MockSender{SuccessRate: successRate, Rand: rand.Float64}
}

func (m *MockSender) Send(ctx context.Context, msg OutgoingMessage) (*SendResult, error) {
	roll := rand.Float64
	if m.Rand != nil {
		roll = m.Rand
	}
	if roll() >= m.SuccessRate {
		return nil, fmt.Errorf("mock sending failed")
	}
	return &SendResult{ExternalID: "mock-" + uuid.NewString(), SentAt: time.Now()}, nil
}

// FromConfig picks the HTTP client when a gateway is configured, otherwise the mock.
func FromConfig(cfg config.WhatsAppConfig) Sender {
	if cfg.BaseURL == "" {
		return NewMockSender(cfg.MockSuccessRate)
	}
	return NewClient(cfg)
}

var _ Sender = (*MockSender)(nil)
