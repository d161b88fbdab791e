package thapi

import (
	"fmt"
)

// NetworkError means the request never completed: DNS failure, refused
// connection, timeout or a cancelled context.
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a response that arrived with a non-2xx status.
type HTTPError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: unexpected http status %d", e.Endpoint, e.Status)
}

// DecodeError is a 2xx response whose body is not the expected JSON.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decoding response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DomainError is a well-formed response whose status is not "OK".
// Message carries the server's errorMessage verbatim and may be empty.
type DomainError struct {
	Endpoint string
	Status   string
	Message  string
}

func (e *DomainError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: api status %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: api status %s: %s", e.Endpoint, e.Status, e.Message)
}
