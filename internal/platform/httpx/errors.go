// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors raised while reading requests.
var (
	ErrValidation = errors.New("validation failed")
	ErrDuplicate  = errors.New("duplicate request")
)

// StatusFunc maps an error onto a status code and problem title.
type StatusFunc func(error) (int, string)

// RespondError writes err as an RFC7807 problem. Request errors are handled
// here; everything else goes through mapper. 5xx responses carry no detail.
func RespondError(w http.ResponseWriter, err error, mapper StatusFunc) {
	var status int
	var title string
	switch {
	case errors.Is(err, ErrValidation):
		status, title = http.StatusBadRequest, "Validation Failed"
	case errors.Is(err, ErrDuplicate):
		status, title = http.StatusConflict, "Duplicate"
	case mapper != nil:
		status, title = mapper(err)
	default:
		status, title = http.StatusInternalServerError, "Internal Error"
	}
	detail := err.Error()
	if status >= http.StatusInternalServerError {
		detail = ""
	}
	Problem(w, status, title, detail)
}
