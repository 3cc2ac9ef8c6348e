package internal

import (
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Mode selects what a run records.
type Mode int

const (
	// ModeList records every file entry.
	ModeList Mode = iota
	// ModeSearch records files with at least one match.
	ModeSearch
)

func (m Mode) String() string {
	if m == ModeSearch {
		return "search"
	}
	return "list"
}

// Match is one line of one file accepted by one needle.
type Match struct {
	Path   string
	Line   int // 1-based
	Text   string
	Needle int // registration index
}

// LineMatch is a Match without its path and needle.
type LineMatch struct {
	Line int
	Text string
}

// RunResult is the complete output of one run. It is owned by the caller.
type RunResult struct {
	Mode        Mode
	Files       []string
	Lines       map[string][]Match
	Diagnostics []Diagnostic
	Stats       RunStats
}

// LineMatches drops needle indexes: path -> [(line, text)].
func (r *RunResult) LineMatches() map[string][]LineMatch {
	out := make(map[string][]LineMatch, len(r.Lines))
	for path, ms := range r.Lines {
		lines := make([]LineMatch, len(ms))
		for i, m := range ms {
			lines[i] = LineMatch{Line: m.Line, Text: m.Text}
		}
		out[path] = lines
	}
	return out
}

// DiagnosticsErr folds the diagnostics into one error, nil when there
// are none.
func (r *RunResult) DiagnosticsErr() error {
	var merr *multierror.Error
	for _, d := range r.Diagnostics {
		merr = multierror.Append(merr, d)
	}
	return merr.ErrorOrNil()
}

// aggregator is the run's single writer. Every mutation holds mu.
type aggregator struct {
	mu     sync.Mutex
	res    *RunResult
	seen   map[string]struct{}
	onDiag func(Diagnostic)
}

func newAggregator(mode Mode, onDiag func(Diagnostic)) *aggregator {
	return &aggregator{
		res: &RunResult{
			Mode:  mode,
			Files: []string{},
			Lines: make(map[string][]Match),
		},
		seen:   make(map[string]struct{}),
		onDiag: onDiag,
	}
}

// add folds one file's outcome in. In search mode a file without
// matches is dropped.
func (a *aggregator) add(path string, matches []Match) bool {
	if a.res.Mode == ModeSearch && len(matches) == 0 {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, dup := a.seen[path]; dup {
		return false
	}
	a.seen[path] = struct{}{}
	a.res.Files = append(a.res.Files, path)
	if a.res.Mode == ModeSearch {
		a.res.Lines[path] = matches
	}
	return true
}

func (a *aggregator) diag(d Diagnostic) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.res.Diagnostics = append(a.res.Diagnostics, d)
	if a.onDiag != nil {
		a.onDiag(d)
	}
}

func (a *aggregator) result(sorted bool, stats RunStats) *RunResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	if sorted {
		sort.Strings(a.res.Files)
	}
	a.res.Stats = stats
	return a.res
}

// sortMatches orders by line, then needle index.
func sortMatches(ms []Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Line != ms[j].Line {
			return ms[i].Line < ms[j].Line
		}
		return ms[i].Needle < ms[j].Needle
	})
}
