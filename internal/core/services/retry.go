package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/custodia-labs/pathscout/internal/core/domain"
	"github.com/custodia-labs/pathscout/internal/core/ports/driven"
)

// retryPolicy bounds one logical collaborator call.
type retryPolicy struct {
	attempts int
	initial  time.Duration
	factor   float64
	timeout  time.Duration
	observer driven.CallObserver

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func newRetryPolicy(cfg domain.AnalysisConfig, observer driven.CallObserver) retryPolicy {
	return retryPolicy{
		attempts: cfg.MaxRetries,
		initial:  cfg.RetryInitialDelay,
		factor:   cfg.RetryBackoffFactor,
		timeout:  cfg.RequestTimeout,
		observer: observer,
		sleep:    sleepContext,
	}
}

// delay returns the wait before the given retry (1-based).
func (p retryPolicy) delay(retry int) time.Duration {
	d := float64(p.initial) * math.Pow(p.factor, float64(retry-1))
	if d > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// callWithRetry runs fn up to p.attempts times, each under its own timeout.
// Exhausting the attempts yields a *domain.SourceError. Cancellation of ctx
// is returned as is and never counted as a source failure.
func callWithRetry[T any](
	ctx context.Context,
	p retryPolicy,
	source, item string,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	start := time.Now()
	attempts := p.attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		out, err := fn(callCtx)
		cancel()
		if err == nil {
			p.observe(source, attempt, start, nil)
			return out, nil
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		lastErr = err

		if attempt < attempts {
			if err := p.wait(ctx, p.delay(attempt)); err != nil {
				return zero, err
			}
		}
	}

	serr := &domain.SourceError{Source: source, Item: item, Attempts: attempts, Err: lastErr}
	p.observe(source, attempts, start, serr)
	return zero, serr
}

func (p retryPolicy) wait(ctx context.Context, d time.Duration) error {
	if p.sleep == nil {
		return sleepContext(ctx, d)
	}
	return p.sleep(ctx, d)
}

func (p retryPolicy) observe(source string, attempts int, start time.Time, err error) {
	if p.observer != nil {
		p.observer.ObserveCall(source, attempts, time.Since(start), err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// unavailable converts a failed call into a diagnostic.
func unavailable(stage domain.Stage, err error) domain.Diagnostic {
	d := domain.Diagnostic{
		Stage:   stage,
		Kind:    domain.DiagnosticUnavailable,
		Message: err.Error(),
	}
	var serr *domain.SourceError
	if errors.As(err, &serr) {
		d.Source = serr.Source
		d.Item = serr.Item
		d.Attempts = serr.Attempts
	}
	return d
}

// isCancellation reports whether err comes from the run's own context.
func isCancellation(err error) bool {
	var serr *domain.SourceError
	if errors.As(err, &serr) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
