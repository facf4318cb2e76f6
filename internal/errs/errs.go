// Package errs classifies pipeline failures into the kinds enumerated in
// spec.md §7, and maps them to the CLI exit codes enumerated in §6.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the error classes the pipeline distinguishes.
type Kind int

const (
	// KindConfig covers bad profiles and missing environment variables.
	// Fails fast, before any work starts.
	KindConfig Kind = iota
	// KindTransport covers git/LLM/container HTTP failures. The LLM client
	// retries them with bounded exponential backoff before surfacing them;
	// git and container calls surface them on the first failure.
	KindTransport
	// KindParse covers log-parser lines that can't be classified.
	KindParse
	// KindApply covers a candidate patch that fails to apply cleanly.
	KindApply
	// KindHarnessCrash covers a test harness exiting without any
	// parseable test result.
	KindHarnessCrash
	// KindBridge covers an unreachable proxy or container bridge.
	// Surfaced immediately; never retried.
	KindBridge
	// KindSchema covers a canonical-schema violation at the Assembler.
	KindSchema
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindApply:
		return "apply"
	case KindHarnessCrash:
		return "harness_crash"
	case KindBridge:
		return "bridge"
	case KindSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind for classification and
// exit-code mapping at the CLI boundary. ExitOverride, when non-zero, wins
// over the Kind-based mapping in ExitCode: it exists for the two outcomes
// spec.md §6 assigns a specific code that cuts across Kind (no predictions
// produced, all instances failed) rather than following the Kind taxonomy.
type Error struct {
	Kind         Kind
	Op           string // component/operation that produced the error
	Err          error
	ExitOverride int
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with a Kind and an operation label. Returns nil if err is nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// NewExit wraps err like New but pins the exit code ExitCode reports,
// for the two spec.md §6 outcomes (no predictions produced; all instances
// failed) that don't correspond to any single Kind.
func NewExit(kind Kind, op string, err error, exitCode int) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err, ExitOverride: exitCode}
}

// As extracts the *Error from err, if any is present in its chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ExitCode maps a pipeline error to the exit code enumerated in spec.md §6.
// Returns 1 (generic failure) for unclassified errors.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	e, ok := As(err)
	if !ok {
		return 1
	}
	if e.ExitOverride != 0 {
		return e.ExitOverride
	}
	switch e.Kind {
	case KindConfig:
		return 1
	case KindBridge:
		return 3
	case KindTransport:
		return 2
	default:
		return 1
	}
}
