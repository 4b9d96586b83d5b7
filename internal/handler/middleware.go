package handler

import (
	"net/http"
	"strings"

	"github.com/unclebandit/wabulk-backend/internal/auth"
	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/httputil"
	"github.com/unclebandit/wabulk-backend/internal/logger"
	"github.com/unclebandit/wabulk-backend/internal/ratelimit"
)

// TokenParser verifies a bearer token. *auth.JWT implements it.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				unauthorized(w)
				return
			}

			claims, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				logger.Debug("token rejected", "error", err.Error())
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithClaims(r.Context(), claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	httputil.Fail(w, http.StatusUnauthorized, appErrors.CodeUnauthorized, appErrors.ErrUnauthorized.Error())
}

// RateLimit throttles each authenticated user. A limiter failure lets the
// request through.
func RateLimit(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := auth.UserID(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Warn("rate limiter unavailable", "error", err.Error())
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				httputil.Fail(w, http.StatusTooManyRequests, appErrors.CodeRateLimited, appErrors.ErrRateLimited.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
