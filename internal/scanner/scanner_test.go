package scanner

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contains(sub string) Matcher {
	return MatcherFunc(func(line []byte) bool { return bytes.Contains(line, []byte(sub)) })
}

type hit struct {
	n    int
	text string
}

func collect(t *testing.T, input string, m Matcher) ([]hit, Outcome) {
	t.Helper()
	var got []hit
	out, err := Scan(strings.NewReader(input), m, func(l Line) error {
		got = append(got, hit{l.Number, string(l.Bytes)})
		return nil
	})
	require.NoError(t, err)
	return got, out
}

func TestScan_LineNumbers(t *testing.T) {
	got, out := collect(t, "foo\nbar\nfoo\n", contains("foo"))
	assert.Equal(t, []hit{{1, "foo"}, {3, "foo"}}, got)
	assert.Equal(t, 3, out.Lines)
	assert.False(t, out.Binary)
}

func TestScan_LastLineWithoutNewline(t *testing.T) {
	got, out := collect(t, "a\nfoo", contains("foo"))
	assert.Equal(t, []hit{{2, "foo"}}, got)
	assert.Equal(t, 2, out.Lines)
}

func TestScan_CRLF(t *testing.T) {
	got, _ := collect(t, "foo\r\nbar\r\n", contains("foo"))
	assert.Equal(t, []hit{{1, "foo"}}, got)
}

func TestScan_EmptyInput(t *testing.T) {
	got, out := collect(t, "", MatcherFunc(func([]byte) bool { return true }))
	assert.Empty(t, got)
	assert.Equal(t, 0, out.Lines)
}

func TestScan_StopsAtNUL(t *testing.T) {
	got, out := collect(t, "foo 1\nfoo 2\nfoo\x00bin\nfoo 4\n", contains("foo"))
	assert.Equal(t, []hit{{1, "foo 1"}, {2, "foo 2"}}, got)
	assert.True(t, out.Binary)
}

func TestScan_LongLine(t *testing.T) {
	long := strings.Repeat("x", readBufferSize*3) + "needle"
	got, _ := collect(t, "short\n"+long+"\nafter needle\n", contains("needle"))
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].n)
	assert.Len(t, got[0].text, len(long))
	assert.Equal(t, hit{3, "after needle"}, got[1])
}

func TestScan_NULInsideLongLine(t *testing.T) {
	long := strings.Repeat("x", readBufferSize*2) + "\x00" + strings.Repeat("y", 10)
	got, out := collect(t, "needle\n"+long+"\nneedle\n", contains("needle"))
	assert.Equal(t, []hit{{1, "needle"}}, got)
	assert.True(t, out.Binary)
}

func TestScan_EmitErrorStops(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	_, err := Scan(strings.NewReader("foo\nfoo\n"), contains("foo"), func(Line) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, os.ErrInvalid }

func TestScan_ReadError(t *testing.T) {
	_, err := Scan(failingReader{}, contains("foo"), func(Line) error { return nil })
	assert.ErrorIs(t, err, os.ErrInvalid)
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n"), 0644))

	var got []int
	_, err := ScanFile(path, contains("two"), func(l Line) error {
		got = append(got, l.Number)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, got)

	_, err = ScanFile(filepath.Join(dir, "missing"), contains("x"), func(Line) error { return nil })
	assert.ErrorIs(t, err, os.ErrNotExist)
}
