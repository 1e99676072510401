package entity

import (
	"errors"
	"fmt"
)

var (
	// Input errors
	ErrEmptyInput        = errors.New("no files provided")
	ErrTooManyImages     = errors.New("too many files uploaded")
	ErrImageTooLarge     = errors.New("image exceeds the maximum upload size")
	ErrCompositeTooLarge = errors.New("composite image exceeds the maximum pixel count")

	// Codec errors
	ErrDecode = errors.New("image could not be decoded")
	ErrEncode = errors.New("composite image could not be encoded")

	// Backend errors
	ErrSchemaValidation   = errors.New("invalid item data")
	ErrMalformedResponse  = errors.New("failed to decode JSON response")
	ErrBackendUnavailable = errors.New("extraction backend unavailable")
)

// DecodeError reports which input image failed to decode.
type DecodeError struct {
	Index    int
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("decode image %d (%s): %v", e.Index, e.Filename, e.Err)
	}
	return fmt.Sprintf("decode image %d: %v", e.Index, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}
