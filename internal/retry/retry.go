// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry wraps fallible remote calls with exponential backoff.
// The harvest and analysis stages share it for platform and completion API
// calls rather than duplicating backoff logic per client.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"time"
)

// BaseDelay controls the base duration for exponential backoff. The delay
// doubles each attempt: BaseDelay, 2×, 4×, ... Tests override this to avoid
// real sleeps.
var BaseDelay = time.Second

const defaultMaxRetries = 3

// StatusError is a remote-call failure carrying an HTTP status code.
// Clients return it so Do can classify the failure.
type StatusError struct {
	Code    int
	Message string
}

// Error formats the status and message.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// rateLimitPattern matches rate-limit failures reported as plain messages
// rather than status codes.
var rateLimitPattern = regexp.MustCompile(`(?i)rate.?limit|too many requests`)

// Retryable reports whether err is a transient remote failure worth
// retrying: HTTP 429, any 5xx, or a message matching the rate-limit pattern.
// Configuration errors and other permanent failures are not retryable.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return rateLimitPattern.MatchString(err.Error())
}

// Options configures a Do call.
type Options struct {
	// MaxRetries is the retry budget after the first attempt (default 3).
	MaxRetries int

	// BaseDelay overrides the package-level BaseDelay when positive.
	BaseDelay time.Duration

	// OnRetry is invoked before each retry with the attempt number
	// (1-based) and the computed backoff delay. It is observational only
	// and never affects control flow.
	OnRetry func(attempt int, delay time.Duration)
}

// Do executes op, retrying retryable failures with exponential backoff up
// to the retry budget. Non-retryable failures and exhausted budgets
// propagate the original error unchanged. If the context is cancelled
// during a backoff wait, Do returns ctx.Err().
func Do[T any](ctx context.Context, op func() (T, error), opts Options) (T, error) {
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	base := opts.BaseDelay
	if base <= 0 {
		base = BaseDelay
	}

	var zero T
	for attempt := 0; ; attempt++ {
		v, err := op()
		if err == nil {
			return v, nil
		}
		if !Retryable(err) || attempt >= maxRetries {
			return zero, err
		}

		delay := time.Duration(math.Pow(2, float64(attempt))) * base
		if opts.OnRetry != nil {
			opts.OnRetry(attempt+1, delay)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}
}
