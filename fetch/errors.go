package fetch

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrBodyTooLarge      = errors.New("response body too large")
)

// StatusError reports a response with an HTTP error status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}
