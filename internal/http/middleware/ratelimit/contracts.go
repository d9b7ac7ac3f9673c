package ratelimit

import "net/http"

// Limiter is a rate limiter
type Limiter interface {
	Allow(key string) bool
}

// KeyFunc picks the bucket a request is charged to.
type KeyFunc func(r *http.Request) string
