// Package llm holds the provider-neutral contract of the vision/OCR service.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoAPIKey is returned when no API key is configured; callers treat it as "nothing found".
var ErrNoAPIKey = errors.New("vision api key not configured")

// VisionRequest asks a question about one image.
type VisionRequest struct {
	Prompt   string
	Image    []byte
	MimeType string
}

// VisionClient answers a prompt about an image with free text.
type VisionClient interface {
	Ask(ctx context.Context, req VisionRequest) (string, error)
}

// StatusError is a non-2xx answer from the vision service.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status: %d", e.Code)
}

// Unavailable reports whether err is a 503 from the service.
func Unavailable(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 503
}
