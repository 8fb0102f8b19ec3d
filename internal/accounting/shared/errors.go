package shared

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/razalrahmanp/palaka-sub014/internal/platform/httpx"
)

var (
	// ErrNotFound indicates a missing account, entry or source document.
	ErrNotFound = errors.New("accounting: not found")
	// ErrUnbalanced indicates debit != credit.
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrAlreadyPosted indicates a second post attempt on the same entry.
	ErrAlreadyPosted = errors.New("accounting: journal entry already posted")
	// ErrValidation indicates malformed input rejected before any write.
	ErrValidation = errors.New("accounting: validation failed")
	// ErrStoreFailure indicates the persistence layer failed.
	ErrStoreFailure = errors.New("accounting: store failure")
	// ErrConflict indicates a competing operation holds the resource.
	ErrConflict = errors.New("accounting: conflicting operation in progress")
	// ErrDuplicateNumber indicates the journal number is taken.
	ErrDuplicateNumber = fmt.Errorf("%w: journal number already exists", ErrConflict)
	// ErrAccountInactive indicates postings against a deactivated account.
	ErrAccountInactive = fmt.Errorf("%w: account is inactive", ErrValidation)
)

// Validationf builds an error matching ErrValidation.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFoundf builds an error matching ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// StoreFailure wraps a persistence error so it matches both ErrStoreFailure and
// the cause. Ledger errors pass through untouched.
func StoreFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsLedgerError(err) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStoreFailure, op, err)
}

// IsLedgerError reports whether err belongs to the ledger taxonomy.
func IsLedgerError(err error) bool {
	for _, target := range []error{ErrNotFound, ErrUnbalanced, ErrAlreadyPosted, ErrValidation, ErrStoreFailure, ErrConflict} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// HTTPStatus maps ledger errors onto a status code and problem title.
func HTTPStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "Not Found"
	case errors.Is(err, ErrUnbalanced):
		return http.StatusUnprocessableEntity, "Unbalanced"
	case errors.Is(err, ErrAlreadyPosted):
		return http.StatusConflict, "Already Posted"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "Conflict"
	case errors.Is(err, ErrValidation), errors.Is(err, httpx.ErrValidation):
		return http.StatusBadRequest, "Validation Failed"
	case errors.Is(err, httpx.ErrDuplicate):
		return http.StatusConflict, "Duplicate"
	default:
		return http.StatusInternalServerError, "Internal Error"
	}
}
