package pubmed

import (
	"fmt"
	"time"
)

// RateLimitError is returned when NCBI throttles the client.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("pubmed rate limited, retry after %s", e.RetryAfter)
	}
	return "pubmed rate limited"
}

// APIError is a non-success E-utilities response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pubmed error (status %d): %s", e.StatusCode, e.Message)
}
