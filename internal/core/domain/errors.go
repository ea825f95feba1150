package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent analysis failures.
// Only ErrConfiguration and ErrLineageInvariant abort a run; the others are
// recorded as diagnostics and the affected item is skipped.
var (
	// ErrNotFound indicates a requested run or pathway does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrExternalSourceUnavailable indicates a collaborator lookup failed
	// after exhausting its retries.
	ErrExternalSourceUnavailable = errors.New("external source unavailable")

	// ErrValidation indicates an unrecognised gene identifier.
	ErrValidation = errors.New("validation failed")

	// ErrConfiguration indicates an invalid analysis configuration.
	// Returned before any stage executes.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrLineageInvariant indicates an aggregated pathway references a
	// primary pathway that does not exist in the run.
	ErrLineageInvariant = errors.New("lineage invariant violated")
)

// ConfigError describes a single invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Unwrap allows errors.Is(err, ErrConfiguration).
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// SourceError records a collaborator call that failed on every attempt.
type SourceError struct {
	Source   string
	Item     string
	Attempts int
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s unavailable for %q after %d attempt(s): %v", e.Source, e.Item, e.Attempts, e.Err)
}

// Unwrap returns both the sentinel and the last underlying error.
func (e *SourceError) Unwrap() []error {
	return []error{ErrExternalSourceUnavailable, e.Err}
}

// LineageError is returned when an aggregated pathway cannot be traced back
// to a primary pathway of the same run.
type LineageError struct {
	PathwayID string
	PrimaryID string
}

func (e *LineageError) Error() string {
	return fmt.Sprintf("lineage invariant violated: aggregated pathway %s references unknown primary %s",
		e.PathwayID, e.PrimaryID)
}

// Unwrap allows errors.Is(err, ErrLineageInvariant).
func (e *LineageError) Unwrap() error {
	return ErrLineageInvariant
}
