package queue

import "time"

// Backoff returns the delay before a job's next attempt: 2^attempts
// minutes, where attempts is the counter after incrementing for the
// failure being handled. First retry lands at +2m, second at +4m.
func Backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(1<<attempts) * time.Minute
}
