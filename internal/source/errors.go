package source

import "fmt"

// FetchError indicates a non-2xx response from the source server.
type FetchError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("fetch %s: status=%d body=%s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("fetch %s: status=%d", e.URL, e.StatusCode)
}

// Retryable reports whether the status is worth another attempt.
func (e *FetchError) Retryable() bool {
	return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode <= 599)
}
