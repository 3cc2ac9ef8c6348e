package internal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Needle is a compiled line matcher. It is immutable and safe to share.
type Needle struct {
	index   int
	pattern string
	re      *regexp.Regexp
}

func compileNeedle(index int, pattern string) (*Needle, error) {
	if strings.ContainsAny(pattern, "\r\n") {
		return nil, &PatternError{Pattern: pattern, Err: errors.New("line terminator in a line pattern")}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	return &Needle{index: index, pattern: pattern, re: re}, nil
}

// Index is the registration index, the tie-break for matches on one line.
func (n *Needle) Index() int { return n.index }

func (n *Needle) Pattern() string { return n.pattern }

func (n *Needle) Match(line []byte) bool { return n.re.Match(line) }

// PatternSet holds needles in registration order. Registration is
// append-only; a failed registration changes nothing.
type PatternSet struct {
	mu      sync.RWMutex
	needles []*Needle
}

// Register compiles pattern and returns its index.
func (s *PatternSet) Register(pattern string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := compileNeedle(len(s.needles), pattern)
	if err != nil {
		return 0, err
	}
	s.needles = append(s.needles, n)
	return n.index, nil
}

// RegisterFile reads a pattern file and registers every pattern in it, or
// none if any line fails. Lines:
//
//	foo            literal
//	plain:i:bar    case-insensitive literal
//	re:^user=\w+$  regular expression
//
// Blank lines and lines starting with '#' are skipped.
func (s *PatternSet) RegisterFile(path string) (int, error) {
	exprs, err := readPatternFile(path)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	base := len(s.needles)
	compiled := make([]*Needle, 0, len(exprs))
	for i, expr := range exprs {
		n, err := compileNeedle(base+i, expr)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", path, err)
		}
		compiled = append(compiled, n)
	}
	s.needles = append(s.needles, compiled...)
	logrus.Debugf("Loaded %d patterns from %s", len(compiled), path)
	return len(compiled), nil
}

// Len is the number of registered needles.
func (s *PatternSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.needles)
}

// Patterns returns the registered pattern texts in order.
func (s *PatternSet) Patterns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.needles))
	for i, n := range s.needles {
		out[i] = n.pattern
	}
	return out
}

// snapshot pins the needles for one run. Later registrations don't leak in.
func (s *PatternSet) snapshot() []*Needle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.needles[:len(s.needles):len(s.needles)]
}

func readPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var exprs []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		exprs = append(exprs, patternLineToExpr(line))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error reading pattern file: %w", err)
	}
	return exprs, nil
}

func patternLineToExpr(line string) string {
	switch {
	case strings.HasPrefix(line, "re:"):
		return line[3:]
	case strings.HasPrefix(line, "plain:i:"):
		return "(?i)" + regexp.QuoteMeta(line[8:])
	default:
		return regexp.QuoteMeta(line)
	}
}
