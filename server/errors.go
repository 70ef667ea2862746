package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"
)

// Error codes reported in the JSON error envelope.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeNotFound         = "not_found"
	CodeDataLoadFailed   = "data_load_failed"
	CodeInvalidSettings  = "invalid_settings"
	CodeInternal         = "internal_error"
	CodeMethodNotAllowed = "method_not_allowed"
)

var (
	// ErrEngineRequired is returned when the server is built without an engine.
	ErrEngineRequired = errors.New("search engine required")

	// ErrSettingsRequired is returned when the server is built without a settings service.
	ErrSettingsRequired = errors.New("settings service required")
)

// apiError is the canonical JSON error envelope returned by the API.
type apiError struct {
	Code    string
	Message string
	Status  int
}

func newAPIError(code, message string, status int) apiError {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return apiError{
		Code:    sanitize(code, 80),
		Message: sanitize(message, 512),
		Status:  status,
	}
}

// writeError writes the error envelope, tagging it with the request id.
func writeError(ctx context.Context, w http.ResponseWriter, err apiError) {
	payload := map[string]any{
		"error":   err.Code,
		"message": err.Message,
		"status":  err.Status,
	}
	if requestID := sanitize(middleware.GetReqID(ctx), 80); requestID != "" {
		payload["request_id"] = requestID
	}
	writeJSON(w, err.Status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func sanitize(value string, limit int) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.TrimSpace(value)
	if len(value) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(value[cut]) {
			cut--
		}
		value = value[:cut]
	}
	return value
}
