package consumer

import "time"

// SetRetryBackoff overrides the recalculation backoff for the duration of a test.
func SetRetryBackoff(d time.Duration) (restore func()) {
	prev := retryBackoff
	retryBackoff = d
	return func() { retryBackoff = prev }
}
