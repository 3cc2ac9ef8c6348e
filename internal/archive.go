package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"github.com/mholt/archives"
	"github.com/sirupsen/logrus"
)

const maxArchiveFiles = 10000 // zip-bomb protection

var errArchiveLimit = errors.New("archive file limit reached")

// IsArchive by extension. O(1) map lookup
var archiveExt = map[string]struct{}{
	".zip": {}, ".tar": {}, ".gz": {}, ".bz2": {}, ".xz": {},
	".rar": {}, ".br": {}, ".lz4": {}, ".lz": {}, ".mz": {},
	".sz": {}, ".s2": {}, ".zz": {}, ".zst": {}, ".7z": {},
}

func IsArchive(path string) bool {
	_, ok := archiveExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// walkArchive feeds the members of the archive at path as file entries
// named <display>/<member>. A broken archive is a walk-entry diagnostic.
func walkArchive(ctx context.Context, display, path string, emit func(FileEntry) error, report func(Diagnostic) error) error {
	fsys, err := archives.FileSystem(ctx, path, nil)
	if err != nil {
		return report(Diagnostic{Kind: DiagWalkEntry, Path: display, Err: fmt.Errorf("open archive: %w", err)})
	}
	if closer, ok := fsys.(io.Closer); ok {
		defer closer.Close()
	}

	count := 0
	err = iofs.WalkDir(fsys, ".", func(inner string, d iofs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			return report(Diagnostic{Kind: DiagWalkEntry, Path: filepath.Join(display, filepath.FromSlash(inner)), Err: err})
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if count >= maxArchiveFiles {
			logrus.Warnf("Archive %s truncated: too many files (>= %d)", display, maxArchiveFiles)
			return errArchiveLimit
		}
		count++
		return emit(FileEntry{
			Path: filepath.Join(display, filepath.FromSlash(inner)),
			open: archiveMemberOpener(path, inner),
		})
	})
	if errors.Is(err, errArchiveLimit) {
		return nil
	}
	return err
}

// archiveMemberOpener reopens the archive on every call so entries stay
// independent of the walker's lifetime.
func archiveMemberOpener(archivePath, inner string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		fsys, err := archives.FileSystem(context.Background(), archivePath, nil)
		if err != nil {
			return nil, err
		}
		f, err := fsys.Open(inner)
		if err != nil {
			closeFS(fsys)
			return nil, err
		}
		return &memberReader{File: f, fsys: fsys}, nil
	}
}

type memberReader struct {
	iofs.File
	fsys iofs.FS
}

func (m *memberReader) Close() error {
	err := m.File.Close()
	closeFS(m.fsys)
	return err
}

func closeFS(fsys iofs.FS) {
	if closer, ok := fsys.(io.Closer); ok {
		_ = closer.Close()
	}
}
