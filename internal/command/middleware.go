package command

import (
	"time"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/time/rate"
)

var log = logging.Logger("ipc")

// Middleware wraps a Dispatcher with extra behaviour.
type Middleware func(next Dispatcher) Dispatcher

// Chain composes middlewares so the first one listed runs outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(next Dispatcher) Dispatcher {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// Logging records every call with its duration and, on failure, the error.
func Logging() Middleware {
	return func(next Dispatcher) Dispatcher {
		return DispatcherFunc(func(function string, args []string) (string, error) {
			start := time.Now()
			out, err := next.Handle(function, args)
			if err != nil {
				log.Warnw("call failed", "function", function, "args", len(args), "duration", time.Since(start), "error", err)
				return out, err
			}
			log.Debugw("call", "function", function, "args", len(args), "duration", time.Since(start))
			return out, nil
		})
	}
}

// RateLimit rejects calls with ErrRateLimited once the token bucket of r
// calls per second (burst tokens deep) is exhausted. r <= 0 disables it.
func RateLimit(r float64, burst int) Middleware {
	if r <= 0 {
		return func(next Dispatcher) Dispatcher { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next Dispatcher) Dispatcher {
		return DispatcherFunc(func(function string, args []string) (string, error) {
			if !limiter.Allow() {
				return "", ErrRateLimited
			}
			return next.Handle(function, args)
		})
	}
}
