package httpx

import (
	"errors"
	"net/http"

	"github.com/farmdeck-erp/farmdeck-erp/internal/shared"
)

// FieldsProvider lets domain errors expose per-field messages.
type FieldsProvider interface {
	ErrorFields() map[string]string
}

// RespondError maps domain errors to RFC7807 responses.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	var fp FieldsProvider
	if errors.As(err, &fp) {
		ProblemFields(w, r, http.StatusUnprocessableEntity, err.Error(), fp.ErrorFields())
		return
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		Problem(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, shared.ErrValidation):
		Problem(w, r, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, shared.ErrInvalidID):
		Problem(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, r, http.StatusConflict, err.Error())
	default:
		Problem(w, r, http.StatusInternalServerError, "")
	}
}
