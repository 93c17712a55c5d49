// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for domain layers.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrDuplicate       = errors.New("duplicate entry")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// RespondError maps domain errors to envelope responses.
func RespondError(w http.ResponseWriter, err error) {
	var remote *RemoteError
	switch {
	case errors.As(err, &remote):
		status := remote.Status
		if status < 400 {
			status = http.StatusBadGateway
		}
		Fail(w, status, remote.Message)
	case errors.Is(err, ErrNotFound):
		Fail(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		Fail(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrValidation):
		Fail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrForbidden):
		Fail(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrUnauthenticated):
		Fail(w, http.StatusUnauthorized, err.Error())
	default:
		Fail(w, http.StatusInternalServerError, "internal error")
	}
}
