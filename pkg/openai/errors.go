package openai

import (
	"errors"
	"fmt"
)

var (
	ErrNetwork           = errors.New("request failed")
	ErrMalformedResponse = errors.New("malformed response")
)

// HTTPError is returned for a non-2xx reply; Body is the response text as received.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("API error: status %d: %s", e.StatusCode, e.Body)
}
