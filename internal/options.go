package internal

import (
	"errors"

	"RootGrep/internal/ignore"
)

const defaultQueueSize = 2048

// ErrorPolicy decides what a walk-entry diagnostic does to a run.
type ErrorPolicy int

const (
	// SkipOnError reports the entry and continues.
	SkipOnError ErrorPolicy = iota
	// AbortOnError turns the entry failure into a fatal run error.
	AbortOnError
)

// Options tunes traversal and scanning. The zero value walks
// sequentially with every ignore source enabled and hidden entries kept.
type Options struct {
	// Threads > 1 scans files on a worker pool of that size.
	Threads int
	// QueueSize bounds the walker-to-workers queue.
	QueueSize int
	// MaxDepth limits descent below a root, 0 - unlimited.
	MaxDepth int

	SkipHidden     bool
	FollowSymlinks bool
	// Archives expands archive members into file entries.
	Archives bool
	// Sorted sorts the matched file list.
	Sorted bool

	NoIgnore  bool
	NoParents bool
	NoGlobal  bool
	NoExclude bool
	// RequireGit applies .gitignore, exclude and global rules only inside
	// a git repository. Off by default: ignore files apply everywhere.
	RequireGit bool

	ErrorPolicy ErrorPolicy
	// OnDiagnostic receives every recoverable diagnostic. Calls are
	// serialized.
	OnDiagnostic func(Diagnostic)
}

// Validate checks invariants.
func (o *Options) Validate() error {
	if o.Threads < 0 {
		return errors.New("threads must not be negative")
	}
	if o.QueueSize < 0 {
		return errors.New("queue size must not be negative")
	}
	if o.MaxDepth < 0 {
		return errors.New("depth must not be negative")
	}
	if o.ErrorPolicy != SkipOnError && o.ErrorPolicy != AbortOnError {
		return errors.New("unknown error policy")
	}
	return nil
}

// Prepare fills defaults.
func (o *Options) Prepare() {
	if o.QueueSize == 0 {
		o.QueueSize = defaultQueueSize
	}
}

func (o *Options) parallel() bool { return o.Threads > 1 }

func (o *Options) ignoreConfig() ignore.Config {
	return ignore.Config{
		Disabled:   o.NoIgnore,
		Parents:    !o.NoParents,
		Global:     !o.NoGlobal,
		Exclude:    !o.NoExclude,
		RequireGit: o.RequireGit,
	}
}

// withinDepth reports whether entries at depth (root children are at 1) are
// within MaxDepth.
func (o *Options) withinDepth(depth int) bool {
	return o.MaxDepth == 0 || depth <= o.MaxDepth
}
