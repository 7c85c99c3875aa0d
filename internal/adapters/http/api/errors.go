package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest    = errors.New("bad request")
	ErrMalformedJSON = errors.New("malformed json")
	ErrValidation    = errors.New("validation failed")
)
