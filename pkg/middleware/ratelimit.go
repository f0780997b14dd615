package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/strand-dev/strand/pkg/server"
)

// RateLimitConfig configures the fixed-window rate limiter.
type RateLimitConfig struct {
	// Period is the window length.
	Period time.Duration

	// MaxCount is the number of requests allowed per window.
	MaxCount int

	// Limited is the result returned for requests over the limit.
	// Default: 429 with an empty body.
	Limited server.Result
}

// RateLimit creates middleware enforcing a global fixed-window rate
// limit across all requests passing through it. When the window's
// budget is exhausted the configured Limited result is returned without
// invoking the handler.
func RateLimit(config RateLimitConfig) server.Middleware {
	limited := config.Limited
	if limited.Status() == 0 {
		// Zero value: caller did not configure a limited result.
		limited = server.BodyWithStatus(429, nil)
	}

	var (
		mu        sync.Mutex
		lastReset time.Time
		count     int
	)

	return func(next server.Handler) server.Handler {
		return func(ctx context.Context, conn *server.Connection) server.Result {
			mu.Lock()
			now := time.Now()
			if now.Sub(lastReset) >= config.Period {
				lastReset = now
				count = 0
			}
			count++
			over := count > config.MaxCount
			mu.Unlock()

			if over {
				return limited
			}
			return next(ctx, conn)
		}
	}
}
