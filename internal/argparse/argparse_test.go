package argparse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

type testArgs struct {
	Name    string
	Quiet   bool
	Files   []string
	Targets [][]string
}

func testParser() *Parser[testArgs] {
	return New[testArgs]().
		String("NAME", func(a *testArgs) *string { return &a.Name }).
		Flag("QUIET", func(a *testArgs) *bool { return &a.Quiet }).
		List("FILES", func(a *testArgs) *[]string { return &a.Files }).
		Groups("TARGET", func(a *testArgs) *[][]string { return &a.Targets })
}

func TestParse(t *testing.T) {
	var got testArgs
	res := testParser().Parse([]string{
		"stray", "NAME", "n", "extra", "FILES", "a", "b", "QUIET",
		"TARGET", "t1", "LOC", "x", "TARGET", "t2",
	}, &got)

	want := testArgs{
		Name:    "n",
		Quiet:   true,
		Files:   []string{"a", "b"},
		Targets: [][]string{{"t1", "LOC", "x"}, {"t2"}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"stray", "extra"}, res.Unknown)
	assert.True(t, res.Seen("FILES"))
	assert.False(t, res.Seen("MISSING"))
	_, dup := res.DuplicateKeyword()
	assert.False(t, dup)
}

func TestParse_DuplicateScalar(t *testing.T) {
	var got testArgs
	res := testParser().Parse([]string{"QUIET", "NAME", "a", "FILES", "NAME", "b"}, &got)

	kw, dup := res.DuplicateKeyword()
	assert.True(t, dup)
	assert.Equal(t, "NAME", kw)
	assert.Equal(t, "b", got.Name)
}

func TestParse_RepeatedListIsNotDuplicate(t *testing.T) {
	var got testArgs
	res := testParser().Parse([]string{"FILES", "a", "FILES", "b"}, &got)

	_, dup := res.DuplicateKeyword()
	assert.False(t, dup)
	assert.Equal(t, []string{"a", "b"}, got.Files)
}

func TestParse_MissingValueAndEmptyList(t *testing.T) {
	var got testArgs
	res := testParser().Parse([]string{"FILES", "NAME"}, &got)

	assert.Equal(t, []string{"NAME"}, res.MissingValue)
	assert.NotNil(t, got.Files, "a supplied list keyword yields a non-nil empty list")
	assert.Empty(t, got.Files)
}

func TestParse_EmptyValue(t *testing.T) {
	var got testArgs
	res := testParser().Parse([]string{"NAME", ""}, &got)

	assert.Empty(t, res.MissingValue)
	assert.Empty(t, res.Unknown)
	assert.True(t, res.Seen("NAME"))
}
