package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Finder lists files under a set of roots and searches them for
// registered patterns. Roots and patterns are configured up front; every
// ListFiles/Search/Run call is an independent pass over the filesystem.
type Finder struct {
	mu       sync.Mutex
	roots    []string
	patterns PatternSet
	opts     Options
}

// NewFinder creates a Finder with no roots and no patterns.
func NewFinder(opts Options) *Finder {
	return &Finder{opts: opts}
}

// Configure replaces the roots. Roots are not checked here; a missing
// root fails the run that walks it.
func (f *Finder) Configure(roots []string) error {
	if len(roots) == 0 {
		return ErrNoRoots
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roots = append([]string(nil), roots...)
	return nil
}

// AddRoot appends a root.
func (f *Finder) AddRoot(root string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roots = append(f.roots, root)
}

func (f *Finder) Roots() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.roots...)
}

// RegisterPattern compiles a regular expression and returns its index.
// Errors match ErrInvalidPattern; the pattern list is left unchanged.
func (f *Finder) RegisterPattern(pattern string) (int, error) {
	return f.patterns.Register(pattern)
}

// RegisterPatternFile registers every pattern of a pattern file and
// returns how many were added.
func (f *Finder) RegisterPatternFile(path string) (int, error) {
	return f.patterns.RegisterFile(path)
}

func (f *Finder) Patterns() []string { return f.patterns.Patterns() }

// ListFiles returns every file under the roots that survives the ignore
// rules. No pattern is consulted.
func (f *Finder) ListFiles(ctx context.Context) ([]string, error) {
	res, err := f.Run(ctx, ModeList)
	if err != nil {
		return nil, err
	}
	return res.Files, nil
}

// Search returns, per matching file, its matched lines ordered by line
// number and then pattern index. With no patterns the result is empty.
func (f *Finder) Search(ctx context.Context) (map[string][]LineMatch, error) {
	res, err := f.Run(ctx, ModeSearch)
	if err != nil {
		return nil, err
	}
	return res.LineMatches(), nil
}

// Run performs one pass and returns the full result. It either returns a
// complete result or a fatal error, never both.
func (f *Finder) Run(ctx context.Context, mode Mode) (*RunResult, error) {
	opts := f.opts
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("options: %w", err)
	}
	opts.Prepare()

	roots := f.Roots()
	if len(roots) == 0 {
		return nil, ErrNoRoots
	}
	needles := f.patterns.snapshot()

	r := newRun(opts, mode, roots, needles)
	if mode == ModeSearch && len(needles) == 0 {
		logrus.Debug("No patterns registered, nothing to search")
		return r.agg.result(opts.Sorted, r.stats.Snapshot()), nil
	}

	logrus.WithFields(logrus.Fields{
		"mode":     mode,
		"roots":    len(roots),
		"patterns": len(needles),
		"threads":  opts.Threads,
	}).Debug("Run started")

	res, err := r.execute(ctx)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"mode":        mode,
		"files":       len(res.Files),
		"matches":     res.Stats.Matches,
		"diagnostics": len(res.Diagnostics),
		"elapsed":     res.Stats.Elapsed,
	}).Debug("Run finished")
	return res, nil
}
