package internal

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"RootGrep/internal/scanner"
)

var errInvalidUTF8 = errors.New("matched line is not valid UTF-8")

// collectMatches runs every needle over the entry in registration order
// and returns the file's matches sorted by line, then needle index.
//
// An entry that can't be opened or read is reported once and the
// remaining needles are skipped; matches found before the failure are
// kept. Decode failures drop the one match. The returned error is fatal.
func collectMatches(entry FileEntry, needles []*Needle, report func(Diagnostic) error) ([]Match, error) {
	var matches []Match
	for _, n := range needles {
		found, failed, err := scanEntry(entry, n, report)
		matches = append(matches, found...)
		if err != nil {
			return nil, err
		}
		if failed {
			break
		}
	}
	sortMatches(matches)
	return matches, nil
}

// scanEntry scans the entry with one needle. failed is set when the
// entry could not be opened or read through.
func scanEntry(entry FileEntry, n *Needle, report func(Diagnostic) error) (found []Match, failed bool, err error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, true, report(Diagnostic{Kind: DiagWalkEntry, Path: entry.Path, Err: err})
	}
	defer rc.Close()

	var fatal error
	out, err := scanner.Scan(rc, n, func(l scanner.Line) error {
		if l.Number < 1 {
			fatal = fmt.Errorf("%w: %s: scanner produced line number %d", ErrInternal, entry.Path, l.Number)
			return fatal
		}
		if !utf8.Valid(l.Bytes) {
			if rerr := report(Diagnostic{Kind: DiagDecode, Path: entry.Path, Line: l.Number, Needle: n.Index(), Err: errInvalidUTF8}); rerr != nil {
				fatal = rerr
				return rerr
			}
			return nil
		}
		found = append(found, Match{Path: entry.Path, Line: l.Number, Text: string(l.Bytes), Needle: n.Index()})
		return nil
	})
	if fatal != nil {
		return nil, true, fatal
	}
	if err != nil {
		return found, true, report(Diagnostic{Kind: DiagWalkEntry, Path: entry.Path, Err: err})
	}
	if out.Binary && n.Index() == 0 {
		logrus.WithField("file", entry.Path).Debug("Binary content, scan stopped")
	}
	return found, false, nil
}
