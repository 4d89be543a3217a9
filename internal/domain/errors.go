package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrMissingSourceImage  = errors.New("missing source image")
	ErrIncompleteSelection = errors.New("incomplete feature selection")
	ErrEmptyInstruction    = errors.New("empty edit instruction")
	ErrEditInFlight        = errors.New("edit already in flight")
)
