package render

import (
	"errors"
	"net/http"

	"github.com/MeKo-Tech/barcoded/internal/i18n"
	"github.com/MeKo-Tech/barcoded/internal/request"
)

// StructuralError is a malformed or out-of-range request. Its message is
// English only.
type StructuralError struct {
	Err error
}

func (e *StructuralError) Error() string { return e.Err.Error() }
func (e *StructuralError) Unwrap() error { return e.Err }

// SemanticError is content that cannot be encoded as the requested symbol.
type SemanticError struct {
	Err *i18n.Error
}

func (e *SemanticError) Error() string { return e.Err.Error() }
func (e *SemanticError) Unwrap() error { return e.Err }

// Message returns the localized text.
func (e *SemanticError) Message(lang i18n.Language) string { return e.Err.Message(lang) }

func structural(err error) error { return &StructuralError{Err: err} }

// semantic converts a build error into a *SemanticError, keeping the
// bilingual text when there is one.
func semantic(err error) error {
	var ie *i18n.Error
	if errors.As(err, &ie) {
		return &SemanticError{Err: ie}
	}
	return &SemanticError{Err: i18n.New(err.Error(), err.Error())}
}

// Status maps a render error to its HTTP status code.
func Status(err error) int {
	var (
		maxBytes *http.MaxBytesError
		se       *StructuralError
		ve       *request.ValidationError
		sem      *SemanticError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &se), errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &sem):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing text of a render error. Internal errors
// are not exposed.
func Message(err error, lang i18n.Language) string {
	var (
		maxBytes *http.MaxBytesError
		sem      *SemanticError
	)
	switch Status(err) {
	case http.StatusRequestEntityTooLarge:
		if errors.As(err, &maxBytes) {
			return "Request body too large"
		}
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusUnprocessableEntity:
		if errors.As(err, &sem) {
			return sem.Message(lang)
		}
	}
	return "Internal server error"
}
