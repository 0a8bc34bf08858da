package mercapi

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the API answers 404 for the requested
	// item or profile.
	ErrNotFound = errors.New("mercapi: not found")

	// ErrIncorrectRequest is returned for a request that cannot be sent,
	// such as paging past the last page of search results.
	ErrIncorrectRequest = errors.New("mercapi: incorrect request")

	// ErrUnexpectedContentType is returned when a response is not JSON.
	ErrUnexpectedContentType = errors.New("mercapi: unexpected content type")

	// ErrDetached is returned by companion fetches on records that were not
	// produced by a Client.
	ErrDetached = errors.New("mercapi: record is not attached to a client")
)

// APIError is a non-2xx response other than 404.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	const maxBody = 256
	body := e.Body
	if len(body) > maxBody {
		body = body[:maxBody]
	}
	return fmt.Sprintf("mercapi: %s: unexpected status %d: %s", e.Endpoint, e.StatusCode, body)
}
