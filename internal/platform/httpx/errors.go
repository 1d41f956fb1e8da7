// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/meridian-books/meridian-books/internal/coa"
	"github.com/meridian-books/meridian-books/internal/vouchers/vouchererrors"
)

// Sentinel errors for the handler layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation failed")
)

// RespondError maps engine and handler errors to RFC7807 responses.
// Structural chart errors are client errors: the mutation was refused and
// nothing was applied.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coa.ErrUnknownAccount) || errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, coa.ErrDuplicateCode) || errors.Is(err, coa.ErrDuplicateName):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, coa.ErrHasChildren) || errors.Is(err, coa.ErrHasPostings):
		Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, coa.ErrImmutableField):
		Problem(w, http.StatusUnprocessableEntity, "Immutable Field", err.Error())
	case errors.Is(err, coa.ErrUnknownParent) || errors.Is(err, coa.ErrInvalidPrefix) || errors.Is(err, coa.ErrInvalidName):
		Problem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, vouchererrors.ErrUnbalancedVoucher) || errors.Is(err, vouchererrors.ErrInvalidLine):
		Problem(w, http.StatusUnprocessableEntity, "Unbalanced Voucher", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
