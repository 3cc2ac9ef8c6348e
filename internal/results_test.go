package internal

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregator_SearchDropsEmptyAndDuplicates(t *testing.T) {
	a := newAggregator(ModeSearch, nil)
	assert.False(t, a.add("none.txt", nil))
	assert.True(t, a.add("a.txt", []Match{{Path: "a.txt", Line: 1, Text: "x"}}))
	assert.False(t, a.add("a.txt", []Match{{Path: "a.txt", Line: 2, Text: "y"}}))

	res := a.result(false, RunStats{})
	assert.Equal(t, []string{"a.txt"}, res.Files)
	assert.Equal(t, map[string][]LineMatch{"a.txt": {{Line: 1, Text: "x"}}}, res.LineMatches())
}

func TestAggregator_ListRecordsEveryFile(t *testing.T) {
	a := newAggregator(ModeList, nil)
	a.add("b", nil)
	a.add("a", nil)
	a.add("b", nil)

	res := a.result(true, RunStats{FilesFound: 2})
	assert.Equal(t, []string{"a", "b"}, res.Files)
	assert.Empty(t, res.Lines)
	assert.EqualValues(t, 2, res.Stats.FilesFound)
}

func TestAggregator_Diagnostics(t *testing.T) {
	var got []Diagnostic
	a := newAggregator(ModeSearch, func(d Diagnostic) { got = append(got, d) })
	d1 := Diagnostic{Kind: DiagWalkEntry, Path: "x", Err: errors.New("denied")}
	d2 := Diagnostic{Kind: DiagDecode, Path: "y", Line: 3, Err: errInvalidUTF8}
	a.diag(d1)
	a.diag(d2)

	res := a.result(false, RunStats{})
	assert.Equal(t, []Diagnostic{d1, d2}, res.Diagnostics)
	assert.Equal(t, res.Diagnostics, got)

	err := res.DiagnosticsErr()
	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, err, errInvalidUTF8)
	assert.Contains(t, d2.Error(), "decode: y:3")
}

func TestRunResult_NoDiagnostics(t *testing.T) {
	res := newAggregator(ModeList, nil).result(false, RunStats{})
	assert.NoError(t, res.DiagnosticsErr())
	assert.NotNil(t, res.Files)
}

func TestSortMatches(t *testing.T) {
	ms := []Match{
		{Line: 3, Needle: 0},
		{Line: 1, Needle: 1},
		{Line: 3, Needle: 1},
		{Line: 1, Needle: 0},
	}
	sortMatches(ms)
	assert.Equal(t, []Match{
		{Line: 1, Needle: 0},
		{Line: 1, Needle: 1},
		{Line: 3, Needle: 0},
		{Line: 3, Needle: 1},
	}, ms)
}

func TestModeAndKindStrings(t *testing.T) {
	assert.Equal(t, "list", ModeList.String())
	assert.Equal(t, "search", ModeSearch.String())
	assert.Equal(t, "walk-entry", DiagWalkEntry.String())
	assert.Equal(t, "decode", DiagDecode.String())
}
