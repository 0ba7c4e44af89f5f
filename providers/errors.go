package providers

import "fmt"

// RateLimitError signals a platform API's rate limit was hit or exhausted.
// Retry indicates the caller-suggested backoff in seconds, when the API
// supplied one, and is 0 otherwise.
type RateLimitError struct {
	Platform string
	Retry    int
}

func (e *RateLimitError) Error() string {
	if e.Retry > 0 {
		return fmt.Sprintf("providers: %s rate limit exceeded, retry after %ds", e.Platform, e.Retry)
	}
	return fmt.Sprintf("providers: %s rate limit exceeded", e.Platform)
}
