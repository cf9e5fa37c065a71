package storage

import "errors"

var (
	ErrDecode          = errors.New("invalid base64 data")
	ErrInvalidJSON     = errors.New("invalid session JSON")
	ErrInvalidFilename = errors.New("invalid filename")
)
