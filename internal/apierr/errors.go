// Package apierr defines the error taxonomy shared by the session,
// transport and pin layers.
package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionExpired marks a session that cannot be used or refreshed. It is
// always recoverable by signing in again; callers clear the stored session
// and fall back to the anonymous identity when they see it.
var ErrSessionExpired = errors.New("session expired")

// AuthError carries a rejected login or registration. The server's detail
// message is surfaced verbatim and the attempt is not retried.
type AuthError struct {
	StatusCode int
	Detail     string
}

func (e *AuthError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("authentication failed (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("authentication failed (%d)", e.StatusCode)
}

// APIError is any non-2xx response other than the ones with dedicated
// types above. Local state is left unchanged or rolled back; no retry.
type APIError struct {
	StatusCode int
	Detail     string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("api error (%d)", e.StatusCode)
}

// IsUnauthorized returns true for a 401 response.
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Detail extracts the server's human-readable message from an error body.
// The service reports either {"detail": ...} or {"message": ...}.
func Detail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return ""
}

// FromResponse maps a non-2xx response to the taxonomy. A 401 becomes
// ErrSessionExpired; everything else an *APIError.
func FromResponse(statusCode int, body []byte) error {
	if statusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	return &APIError{StatusCode: statusCode, Detail: Detail(body), Body: body}
}
