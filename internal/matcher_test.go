package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternSet_Register(t *testing.T) {
	var s PatternSet
	i, err := s.Register("foo")
	require.NoError(t, err)
	assert.Equal(t, 0, i)
	i, err = s.Register(`bar\d+`)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, []string{"foo", `bar\d+`}, s.Patterns())

	needles := s.snapshot()
	assert.True(t, needles[1].Match([]byte("xx bar42")))
	assert.False(t, needles[1].Match([]byte("bar")))
}

func TestPatternSet_InvalidPatternLeavesSetUnchanged(t *testing.T) {
	var s PatternSet
	_, err := s.Register("ok")
	require.NoError(t, err)

	_, err = s.Register("(unclosed")
	assert.ErrorIs(t, err, ErrInvalidPattern)
	var perr *PatternError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "(unclosed", perr.Pattern)
	assert.Equal(t, 1, s.Len())

	_, err = s.Register("a\nb")
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.Equal(t, 1, s.Len())

	i, err := s.Register("next")
	require.NoError(t, err)
	assert.Equal(t, 1, i)
}

func TestPatternSet_SnapshotIsStable(t *testing.T) {
	var s PatternSet
	_, _ = s.Register("a")
	snap := s.snapshot()
	_, _ = s.Register("b")
	assert.Len(t, snap, 1)
	assert.Len(t, s.snapshot(), 2)
}

func TestPatternSet_RegisterFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "patterns.txt")
	content := `
# comment
plain:i:HeLLo
a.b
re:^id=\d{3}$
`
	require.NoError(t, os.WriteFile(fp, []byte(content), 0644))

	var s PatternSet
	n, err := s.RegisterFile(fp)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	ps := s.snapshot()
	assert.True(t, ps[0].Match([]byte("say hello there")))
	assert.True(t, ps[1].Match([]byte("a.b")))
	assert.False(t, ps[1].Match([]byte("axb")), "plain lines are literals")
	assert.True(t, ps[2].Match([]byte("id=123")))
	assert.False(t, ps[2].Match([]byte("id=12x")))
}

func TestPatternSet_RegisterFileIsAtomic(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, "bad.txt")
	require.NoError(t, os.WriteFile(fp, []byte("good\nre:[\n"), 0644))

	var s PatternSet
	_, err := s.RegisterFile(fp)
	assert.ErrorIs(t, err, ErrInvalidPattern)
	assert.Equal(t, 0, s.Len())

	_, err = s.RegisterFile(filepath.Join(dir, "doesnotexist.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPatternLineToExpr(t *testing.T) {
	assert.Equal(t, `a\.b`, patternLineToExpr("a.b"))
	assert.Equal(t, `(?i)x\*`, patternLineToExpr("plain:i:x*"))
	assert.Equal(t, `x*`, patternLineToExpr("re:x*"))
}
