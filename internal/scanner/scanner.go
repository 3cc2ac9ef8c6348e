// Package scanner streams a reader line by line and reports the lines a
// matcher accepts, with 1-based line numbers.
package scanner

import (
	"bufio"
	"bytes"
	"io"
	"os"
)

const readBufferSize = 64 * 1024

// BinarySentinel marks binary content. Scanning stops at the first line
// holding it.
const BinarySentinel = byte(0)

// Matcher tests a single line. Lines never carry their terminator.
type Matcher interface {
	Match(line []byte) bool
}

// MatcherFunc adapts a function to Matcher.
type MatcherFunc func(line []byte) bool

func (f MatcherFunc) Match(line []byte) bool { return f(line) }

// Line is a matched line. Bytes is only valid during the emit call.
type Line struct {
	Number int
	Bytes  []byte
}

// Outcome summarizes a finished scan.
type Outcome struct {
	// Lines is the number of lines read before the scan ended.
	Lines int
	// Binary is set when the scan stopped at BinarySentinel.
	Binary bool
}

// Scan reads r to the end, or to the first line holding BinarySentinel,
// calling emit for every line m accepts. An error from emit stops the
// scan and is returned as is.
func Scan(r io.Reader, m Matcher, emit func(Line) error) (Outcome, error) {
	var (
		out   Outcome
		carry []byte
		br    = bufio.NewReaderSize(r, readBufferSize)
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if bytes.IndexByte(chunk, BinarySentinel) >= 0 {
			out.Binary = true
			return out, nil
		}
		if err == bufio.ErrBufferFull {
			carry = append(carry, chunk...)
			continue
		}

		line := chunk
		if len(carry) > 0 {
			carry = append(carry, chunk...)
			line = carry
		}
		if len(line) > 0 {
			out.Lines++
			text := trimEOL(line)
			if m.Match(text) {
				if emitErr := emit(Line{Number: out.Lines, Bytes: text}); emitErr != nil {
					return out, emitErr
				}
			}
		}
		carry = carry[:0]

		if err != nil {
			if err == io.EOF {
				return out, nil
			}
			return out, err
		}
	}
}

// ScanFile opens path and scans it.
func ScanFile(path string, m Matcher, emit func(Line) error) (Outcome, error) {
	f, err := os.Open(path)
	if err != nil {
		return Outcome{}, err
	}
	defer f.Close()
	return Scan(f, m, emit)
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}
