package model

import "errors"

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("unauthorized")
	ErrValidation      = errors.New("validation failed")
)
