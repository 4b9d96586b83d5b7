package controller

import (
	"errors"
	"net/http"

	"github.com/unclebandit/wabulk-backend/internal/auth"
	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/httputil"
	"github.com/unclebandit/wabulk-backend/internal/service"
)

type MessageController struct {
	MessageService *service.MessageService
}

// SendMessage sends one message. A gateway rejection is reported as a 500
// envelope carrying the gateway's reason; the attempt is still recorded.
func (c *MessageController) SendMessage(w http.ResponseWriter, r *http.Request) {
	var body service.SendMessageInput
	if !httputil.Decode(w, r, &body) {
		return
	}

	msg, err := c.MessageService.Send(r.Context(), auth.UserID(r.Context()), body)
	var sendErr *service.ErrSendFailed
	switch {
	case errors.As(err, &sendErr):
		httputil.Fail(w, http.StatusInternalServerError, appErrors.CodeInternal, sendErr.Error())
	case err != nil:
		httputil.Error(w, err)
	default:
		httputil.OK(w, msg)
	}
}
