// Package retry runs bounded polling loops with a fixed delay between attempts.
package retry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Func is a single attempt. Returning true stops the loop. An error marks the
// attempt as failed and is passed to the OnError hook; it never aborts the loop.
type Func func(ctx context.Context, attempt int) (bool, error)

// Result reports how a loop ended
type Result struct {
	// Succeeded is true when an attempt returned true
	Succeeded bool

	// Attempts is the number of attempts made, including the successful one
	Attempts int
}

// Option configures Until.
type Option func(*options)

type options struct {
	name      string
	onError   func(attempt int, err error)
	onWaiting func(attempt, attempts int)
}

// WithName labels the loop in traces
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithOnError is called for every attempt that returns an error
func WithOnError(fn func(attempt int, err error)) Option {
	return func(o *options) { o.onError = fn }
}

// WithOnWaiting is called before each delay, after attempt failed
func WithOnWaiting(fn func(attempt, attempts int)) Option {
	return func(o *options) { o.onWaiting = fn }
}

// Until calls fn up to attempts times, sleeping delay between attempts, and
// stops at the first success. No delay follows the final attempt.
// Exhausting the budget is not an error; only context cancellation is.
func Until(ctx context.Context, attempts int, delay time.Duration, fn Func, opts ...Option) (Result, error) {
	cfg := &options{name: "retry"}
	for _, opt := range opts {
		opt(cfg)
	}

	tracer := otel.Tracer("neo-hosting")
	ctx, span := tracer.Start(ctx, "retry.Until")
	defer span.End()

	span.SetAttributes(
		attribute.String("retry.name", cfg.name),
		attribute.Int("retry.max_attempts", attempts),
		attribute.String("retry.delay", delay.String()),
	)

	if attempts < 1 {
		err := fmt.Errorf("%s: attempts must be at least 1, got %d", cfg.name, attempts)
		span.RecordError(err)
		return Result{}, err
	}

	var result Result
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return result, fmt.Errorf("%s cancelled before attempt %d: %w", cfg.name, attempt, err)
		}

		result.Attempts = attempt
		ok, err := fn(ctx, attempt)
		if err != nil && cfg.onError != nil {
			cfg.onError(attempt, err)
		}
		if ok && err == nil {
			result.Succeeded = true
			break
		}

		if attempt == attempts {
			break
		}

		if cfg.onWaiting != nil {
			cfg.onWaiting(attempt, attempts)
		}
		if err := sleep(ctx, delay); err != nil {
			span.RecordError(err)
			return result, fmt.Errorf("%s cancelled while waiting after attempt %d: %w", cfg.name, attempt, err)
		}
	}

	span.SetAttributes(
		attribute.Bool("retry.succeeded", result.Succeeded),
		attribute.Int("retry.attempts", result.Attempts),
	)

	return result, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
