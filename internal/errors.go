package internal

import (
	"errors"
	"fmt"
)

var (
	ErrNoRoots        = errors.New("no roots configured")
	ErrInvalidPattern = errors.New("invalid pattern")
	ErrInternal       = errors.New("internal error")
	ErrWalkFailFast   = errors.New("fail-fast: walk error") // abort policy hit
)

// PatternError is returned when a pattern does not compile. It matches
// ErrInvalidPattern with errors.Is.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() []error { return []error{ErrInvalidPattern, e.Err} }

// IOError is a fatal filesystem failure that aborted a run.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

// DiagnosticKind classifies a recoverable problem.
type DiagnosticKind int

const (
	// DiagWalkEntry: an entry could not be classified or read and was skipped.
	DiagWalkEntry DiagnosticKind = iota
	// DiagDecode: a matched line was not valid UTF-8 and was dropped.
	DiagDecode
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagWalkEntry:
		return "walk-entry"
	case DiagDecode:
		return "decode"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Diagnostic is a recoverable problem met during a run. It never aborts
// the run unless the abort policy applies to its kind.
type Diagnostic struct {
	Kind   DiagnosticKind
	Path   string
	Line   int // decode only
	Needle int // decode only
	Err    error
}

func (d Diagnostic) Error() string {
	if d.Kind == DiagDecode {
		return fmt.Sprintf("%s: %s:%d: %v", d.Kind, d.Path, d.Line, d.Err)
	}
	return fmt.Sprintf("%s: %s: %v", d.Kind, d.Path, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }
