// Package httputil writes the API's JSON envelopes.
//
// Success bodies are {"data": ...}; failures are
// {"error": {"code": "...", "message": "..."}}.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	appErrors "github.com/unclebandit/wabulk-backend/internal/errors"
	"github.com/unclebandit/wabulk-backend/internal/logger"
)

// DataResponse is the success envelope.
type DataResponse struct {
	Data       any            `json:"data"`
	Pagination map[string]int `json:"pagination,omitempty"`
}

// ErrorBody is the inner error object.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("json encode failed", "error", err.Error())
	}
}

// OK writes {"data": data} with 200.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, DataResponse{Data: data})
}

// Created writes {"data": data} with 201.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, DataResponse{Data: data})
}

// Accepted writes {"data": data} with 202.
func Accepted(w http.ResponseWriter, data any) {
	JSON(w, http.StatusAccepted, DataResponse{Data: data})
}

// Page writes a list with its pagination block.
func Page(w http.ResponseWriter, data any, pagination map[string]int) {
	JSON(w, http.StatusOK, DataResponse{Data: data, Pagination: pagination})
}

func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Fail writes an error envelope with an explicit status and code.
func Fail(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// StatusFor maps an envelope code to its HTTP status.
func StatusFor(code string) int {
	switch code {
	case appErrors.CodeInvalidRequest:
		return http.StatusBadRequest
	case appErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case appErrors.CodeNotFound:
		return http.StatusNotFound
	case appErrors.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error classifies err and writes the matching envelope. Internal errors are
// logged and their message is not exposed.
func Error(w http.ResponseWriter, err error) {
	code := appErrors.Code(err)
	status := StatusFor(code)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error("internal error", "error", msg)
		msg = "internal server error"
	}
	Fail(w, status, code, msg)
}

// BadRequest writes a 400 invalid_request envelope.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, appErrors.CodeInvalidRequest, message)
}

// Decode reads a JSON body into dst. Returns false and writes a 400 if it fails.
func Decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			BadRequest(w, fmt.Sprintf("invalid JSON at offset %d", syn.Offset))
		} else {
			BadRequest(w, "invalid JSON: "+err.Error())
		}
		return false
	}
	return true
}

// PageParams reads page and page_size from the query string. Missing or
// malformed values come back as 0; services apply defaults and limits.
func PageParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}
