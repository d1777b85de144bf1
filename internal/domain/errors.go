package domain

import (
	"errors"
	"fmt"
)

// Common domain errors returned while building or running an election.
// Build-time failures are wrapped in a ConfigError that names the offending
// field; scoring failures are wrapped in a StructuralInvariantError.
var (
	// ErrMissingField indicates that a required configuration field is absent
	// or empty.
	ErrMissingField = errors.New("missing required field")

	// ErrUnknownIssue indicates a reference to an issue that was never declared.
	ErrUnknownIssue = errors.New("unknown issue")

	// ErrUnknownStance indicates a stance that is not legal for its issue.
	ErrUnknownStance = errors.New("unknown stance")

	// ErrDuplicateName indicates that a name which must be unique was reused.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrMissingView indicates that an entity has no view on a declared issue.
	ErrMissingView = errors.New("missing view")

	// ErrProportionSum indicates that stance proportions for one issue do not
	// sum to 1.0 within ProportionTolerance.
	ErrProportionSum = errors.New("stance proportions do not sum to 1")

	// ErrNegativeValue indicates a value that must be non-negative.
	ErrNegativeValue = errors.New("negative value")

	// ErrInvalidNumber indicates a NaN or infinite number.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrNoCandidates indicates that a vote was requested with no candidates.
	ErrNoCandidates = errors.New("no candidates")

	// ErrIssueMismatch indicates that a voter and a candidate could not be
	// compared on a registry issue.
	ErrIssueMismatch = errors.New("issue mismatch")

	// ErrVoteConservation indicates that the number of votes counted differs
	// from the number of voters.
	ErrVoteConservation = errors.New("vote count does not match voter count")
)

// ConfigError represents a malformed or inconsistent election configuration.
// It is always detected before any voter is generated.
type ConfigError struct {
	// Field is the path of the offending configuration field, for example
	// "candidates[1].views[0].stance".
	Field string

	// Err is the underlying error, usually wrapping one of the sentinel
	// errors above.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: field=%s, err=%v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError for the given field.
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{
		Field: field,
		Err:   err,
	}
}

// StructuralInvariantError reports an internal alignment bug: a voter and a
// candidate could not be compared issue by issue, or the vote reduction lost
// or invented votes. It is never recoverable.
type StructuralInvariantError struct {
	// Candidate is the name of the candidate involved, if any.
	Candidate string

	// Issue is the name of the issue involved, if any.
	Issue string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for StructuralInvariantError.
func (e *StructuralInvariantError) Error() string {
	return fmt.Sprintf("structural invariant violated: candidate=%s, issue=%s, err=%v", e.Candidate, e.Issue, e.Err)
}

// Unwrap returns the underlying error.
func (e *StructuralInvariantError) Unwrap() error { return e.Err }

// NewStructuralInvariantError creates a new StructuralInvariantError.
func NewStructuralInvariantError(candidate, issue string, err error) *StructuralInvariantError {
	return &StructuralInvariantError{
		Candidate: candidate,
		Issue:     issue,
		Err:       err,
	}
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
