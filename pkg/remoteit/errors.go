package remoteit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoCredentials is returned by New when no credentials are given.
var ErrNoCredentials = errors.New("credentials are required")

// TransportError reports a request that did not produce a usable HTTP
// response: the network failed, or the server answered with a non-2xx status.
type TransportError struct {
	// StatusCode is zero when no response was received.
	StatusCode int
	// Body holds the start of the response body, if any.
	Body string
	Err  error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("remote.it request failed: status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("remote.it request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is an error reported by the API itself: the errors array of a
// GraphQL response, or the error payload of a rejected file upload.
type APIError struct {
	// Operation is the GraphQL operation or "UploadFile".
	Operation string
	// StatusCode is set for upload errors; GraphQL errors arrive with 200.
	StatusCode int
	Messages   []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote.it %s returned an error: %s", e.Operation, strings.Join(e.Messages, "; "))
}

// DecodeError reports a response body that does not match the expected shape.
type DecodeError struct {
	Operation string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode remote.it %s response: %v", e.Operation, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

// IsAPIError reports whether err is or wraps an *APIError.
func IsAPIError(err error) bool {
	var target *APIError
	return errors.As(err, &target)
}

// IsDecodeError reports whether err is or wraps a *DecodeError.
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}
