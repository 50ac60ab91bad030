// Package response writes the uniform API envelope
// {status: bool, data, error} used by every endpoint.
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

type Envelope struct {
	Status bool    `json:"status"`
	Data   any     `json:"data"`
	Error  *string `json:"error"`
}

// OK writes a success envelope with the given payload.
func OK(w http.ResponseWriter, statusCode int, data any) {
	write(w, statusCode, Envelope{Status: true, Data: data})
}

// Err maps a service error onto the envelope, choosing the HTTP status
// from the wrapped error kind. Unknown errors become 500s with a generic
// message so internals never leak.
func Err(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	msg := "Something went wrong"

	switch {
	case errors.Is(err, domain.ErrBadRequest):
		statusCode = http.StatusBadRequest
		msg = err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		msg = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		statusCode = http.StatusNotFound
		msg = err.Error()
	case errors.Is(err, domain.ErrConflict):
		statusCode = http.StatusConflict
		msg = err.Error()
	case errors.Is(err, domain.ErrInternal):
		msg = err.Error()
	}

	write(w, statusCode, Envelope{Status: false, Error: &msg})
}

// ErrMessage writes a failure envelope with an explicit status and message,
// for transport-level failures that never reach a service.
func ErrMessage(w http.ResponseWriter, statusCode int, msg string) {
	write(w, statusCode, Envelope{Status: false, Error: &msg})
}

func write(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error("failed to encode response envelope", "error", err)
	}
}
