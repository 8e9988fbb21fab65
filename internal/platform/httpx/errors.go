// Package httpx provides HTTP response utilities.
package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/storeledger/backoffice/internal/records"
)

// RespondError maps domain errors to RFC7807 responses. Unknown errors
// become a 500 without leaking their message.
func RespondError(w http.ResponseWriter, err error) {
	var fields records.FieldErrors
	if errors.As(err, &fields) {
		ValidationProblem(w, fields)
		return
	}
	switch {
	case errors.Is(err, records.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, records.ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, records.ErrInvalidTransition):
		Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	case errors.Is(err, records.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, records.ErrConfirmationRequired):
		Problem(w, http.StatusPreconditionRequired, "Confirmation Required", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		Problem(w, http.StatusGatewayTimeout, "Timeout", "the record store did not answer in time, retry the request")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// StatusFor returns the status RespondError would write for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, records.ErrDuplicate), errors.Is(err, records.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, records.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, records.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
