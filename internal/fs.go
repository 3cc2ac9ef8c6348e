package internal

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"RootGrep/internal/ignore"
)

var (
	errUnknownType = errors.New("file type could not be determined")
	errSymlinkLoop = errors.New("symlink loop")
)

// FileEntry is a regular file found by the walker.
type FileEntry struct {
	Path string
	open func() (io.ReadCloser, error)
}

// Open opens the entry for reading.
func (e FileEntry) Open() (io.ReadCloser, error) {
	if e.open != nil {
		return e.open()
	}
	return os.Open(e.Path)
}

type entryKind int

const (
	kindUnknown entryKind = iota
	kindFile
	kindDir
	kindOther // sockets, devices, pipes, unfollowed symlinks
)

// walker walks the roots as one traversal, applying ignore rules per
// directory. It is single-goroutine; Walk must not be called concurrently.
type walker struct {
	opts   *Options
	roots  []string
	report func(Diagnostic) error
	seen   map[string]struct{}
	stack  []string // resolved ancestors, only when following symlinks
}

func newWalker(opts *Options, roots []string, report func(Diagnostic) error) *walker {
	return &walker{
		opts:   opts,
		roots:  roots,
		report: report,
		seen:   make(map[string]struct{}),
	}
}

// Walk calls emit once for every file entry under the roots. A missing or
// unreadable root is a fatal *IOError; anything below a root goes through
// report.
func (w *walker) Walk(ctx context.Context, emit func(FileEntry) error) error {
	for _, root := range w.roots {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.walkRoot(ctx, root, emit); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) walkRoot(ctx context.Context, root string, emit func(FileEntry) error) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return &IOError{Op: "resolve", Path: root, Err: err}
	}
	st, err := os.Stat(abs)
	if err != nil {
		return &IOError{Op: "stat", Path: root, Err: err}
	}
	switch {
	case st.Mode().IsRegular():
		return w.file(ctx, filepath.Clean(root), abs, emit)
	case !st.IsDir():
		logrus.WithField("root", root).Warn("Root is neither a file nor a directory, skipped")
		return nil
	}

	rules, errs := ignore.ForRoot(abs, w.opts.ignoreConfig())
	if err := w.ignoreErrors(root, errs); err != nil {
		return err
	}
	w.stack = w.stack[:0]
	if w.opts.FollowSymlinks {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			w.stack = append(w.stack, resolved)
		}
	}
	return w.dir(ctx, filepath.Clean(root), abs, rules, 0, emit)
}

func (w *walker) dir(ctx context.Context, path, abs string, parent *ignore.Rules, depth int, emit func(FileEntry) error) error {
	rules, errs := parent.Descend(abs)
	if err := w.ignoreErrors(path, errs); err != nil {
		return err
	}

	ents, err := os.ReadDir(abs)
	if err != nil {
		if depth == 0 {
			return &IOError{Op: "read dir", Path: path, Err: err}
		}
		if rerr := w.report(Diagnostic{Kind: DiagWalkEntry, Path: path, Err: err}); rerr != nil {
			return rerr
		}
		// ents holds what was read before the failure
	}
	for _, ent := range ents {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.entry(ctx, path, abs, ent, rules, depth+1, emit); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) entry(ctx context.Context, dirPath, dirAbs string, ent os.DirEntry, rules *ignore.Rules, depth int, emit func(FileEntry) error) error {
	name := ent.Name()
	path := filepath.Join(dirPath, name)
	abs := filepath.Join(dirAbs, name)

	if !w.opts.withinDepth(depth) {
		return nil
	}
	if w.opts.SkipHidden && strings.HasPrefix(name, ".") {
		return nil
	}

	// git metadata, directory or worktree pointer file
	if name == ignore.GitDir {
		return nil
	}

	kind, err := w.classify(ent, abs)
	if err != nil {
		return w.report(Diagnostic{Kind: DiagWalkEntry, Path: path, Err: err})
	}
	switch kind {
	case kindDir:
		if rules.Ignored(abs, true) {
			return nil
		}
		if w.opts.FollowSymlinks {
			resolved, err := filepath.EvalSymlinks(abs)
			if err != nil {
				return w.report(Diagnostic{Kind: DiagWalkEntry, Path: path, Err: err})
			}
			if slices.Contains(w.stack, resolved) {
				return w.report(Diagnostic{Kind: DiagWalkEntry, Path: path, Err: errSymlinkLoop})
			}
			w.stack = append(w.stack, resolved)
			defer func() { w.stack = w.stack[:len(w.stack)-1] }()
		}
		return w.dir(ctx, path, abs, rules, depth, emit)
	case kindFile:
		if rules.Ignored(abs, false) {
			return nil
		}
		return w.file(ctx, path, abs, emit)
	default:
		return nil
	}
}

func (w *walker) file(ctx context.Context, path, abs string, emit func(FileEntry) error) error {
	if _, dup := w.seen[abs]; dup {
		return nil
	}
	w.seen[abs] = struct{}{}
	if w.opts.Archives && IsArchive(abs) {
		return walkArchive(ctx, path, abs, emit, w.report)
	}
	return emit(FileEntry{Path: path})
}

// classify fails closed: an entry of undeterminable type is an error.
func (w *walker) classify(ent os.DirEntry, abs string) (entryKind, error) {
	mode := ent.Type()
	if mode&iofs.ModeSymlink != 0 {
		if !w.opts.FollowSymlinks {
			return kindOther, nil
		}
		st, err := os.Stat(abs)
		if err != nil {
			return kindUnknown, err
		}
		mode = st.Mode().Type()
	}
	switch {
	case mode&iofs.ModeIrregular != 0:
		return kindUnknown, errUnknownType
	case mode.IsDir():
		return kindDir, nil
	case mode.IsRegular():
		return kindFile, nil
	default:
		return kindOther, nil
	}
}

func (w *walker) ignoreErrors(path string, errs []error) error {
	for _, err := range errs {
		if rerr := w.report(Diagnostic{Kind: DiagWalkEntry, Path: path, Err: err}); rerr != nil {
			return rerr
		}
	}
	return nil
}
