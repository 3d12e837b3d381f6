package payload

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEncoding is returned when an attachment is not valid standard base64.
	ErrInvalidEncoding = errors.New("invalid base64 encoding")

	// ErrPayloadTooLarge is returned when the decoded images of one request exceed the byte budget.
	ErrPayloadTooLarge = errors.New("payload too large")
)

// ImageError ties a decode failure to the position of the attachment in the request.
type ImageError struct {
	Index int
	Err   error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image %d: %v", e.Index, e.Err)
}

func (e *ImageError) Unwrap() error {
	return e.Err
}
