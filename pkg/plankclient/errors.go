package plankclient

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches APIErrors with status 404.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable matches APIErrors with status 503.
	ErrUnavailable = errors.New("service unavailable")
)

// APIError is a problem response returned by the server.
type APIError struct {
	StatusCode int    `json:"status"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Detail     string `json:"detail"`
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("plankdash: %d %s: %s", e.StatusCode, e.Title, e.Detail)
	}
	return fmt.Sprintf("plankdash: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Is lets errors.Is match status sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnavailable:
		return e.StatusCode == http.StatusServiceUnavailable
	}
	return false
}
