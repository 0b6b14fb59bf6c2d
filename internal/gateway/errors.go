package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrConflict is reported when the scheduling service refuses a booking
// because the slot is already taken. Callers must treat it as terminal:
// a conflict is never retried against the fallback path.
var ErrConflict = errors.New("slot already booked")

// APIError is a non-2xx response from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps HTTP 409 onto ErrConflict so callers can classify with
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusConflict {
		return ErrConflict
	}
	return nil
}

// IsConflict reports whether err is a scheduling conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
