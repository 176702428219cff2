package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DecodeLinear reads a linear request from JSON. Malformed bodies are
// reported as *ValidationError; an exceeded body limit is returned as is.
func DecodeLinear(r io.Reader) (*Linear, error) {
	var req Linear
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// DecodeTwoD reads a 2D request from JSON.
func DecodeTwoD(r io.Reader) (*TwoD, error) {
	var req TwoD
	if err := decode(r, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func decode(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return &ValidationError{Message: "Malformed JSON: unexpected data after request object"}
	}
	return nil
}

func decodeError(err error) error {
	var (
		maxBytes  *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &maxBytes):
		return err
	case errors.Is(err, io.EOF):
		return &ValidationError{Message: "Request body is empty"}
	case errors.Is(err, io.ErrUnexpectedEOF):
		return &ValidationError{Message: "Malformed JSON: unexpected end of input"}
	case errors.As(err, &syntaxErr):
		return &ValidationError{Message: fmt.Sprintf("Malformed JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)}
	case errors.As(err, &typeErr):
		return &ValidationError{Field: typeErr.Field,
			Message: fmt.Sprintf("Invalid value for field %q: expected %s", typeErr.Field, typeErr.Type)}
	default:
		return &ValidationError{Message: fmt.Sprintf("Invalid request: %v", err)}
	}
}
