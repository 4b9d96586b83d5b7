package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/unclebandit/wabulk-backend/internal/config"
	"github.com/unclebandit/wabulk-backend/internal/logger"
)

// Client sends messages through an Evolution-style HTTP gateway.
type Client struct {
	baseURL  string
	apiKey   string
	instance string
	http     *http.Client
}

// NewClient builds a gateway client from config.
func NewClient(cfg config.WhatsAppConfig) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		instance: cfg.Instance,
		http:     &http.Client{Timeout: timeout},
	}
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type sendMediaRequest struct {
	Number    string `json:"number"`
	MediaType string `json:"mediatype"`
	Media     string `json:"media"`
	Caption   string `json:"caption,omitempty"`
}

type sendResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
}

// Send posts msg to the gateway. Messages with a MediaURL go through sendMedia
// with Text as the caption.
func (c *Client) Send(ctx context.Context, msg OutgoingMessage) (*SendResult, error) {
	if msg.Phone == "" {
		return nil, fmt.Errorf("whatsapp: empty phone number")
	}

	var (
		endpoint string
		payload  interface{}
	)
	if msg.MediaURL != "" {
		endpoint = "/message/sendMedia/" + c.instance
		payload = sendMediaRequest{
			Number:    msg.Phone,
			MediaType: mediaType(msg.MediaURL),
			Media:     msg.MediaURL,
			Caption:   msg.Text,
		}
	} else {
		endpoint = "/message/sendText/" + c.instance
		payload = sendTextRequest{Number: msg.Phone, Text: msg.Text}
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whatsapp: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("whatsapp gateway error %d: %s", resp.StatusCode, snippet(body))
	}

	var out sendResponse
	_ = json.Unmarshal(body, &out)

	logger.Debug("whatsapp message accepted", "phone", msg.Phone, "external_id", out.Key.ID)

	return &SendResult{ExternalID: out.Key.ID, SentAt: time.Now()}, nil
}

// mediaType guesses the gateway media type from the file extension.
func mediaType(url string) string {
	switch strings.ToLower(path.Ext(strings.SplitN(url, "?", 2)[0])) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	case ".mp4", ".3gp", ".mov":
		return "video"
	case ".mp3", ".ogg", ".opus", ".m4a", ".aac":
		return "audio"
	default:
		return "document"
	}
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

var _ Sender = (*Client)(nil)
