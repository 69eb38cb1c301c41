package entry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testInfo struct {
	Owner string
	Name  string
}

func (i testInfo) ID() string { return i.Name }

func (i testInfo) Fetch(context.Context) (testEntry, error) {
	return testEntry{info: i}, nil
}

type testEntry struct{ info testInfo }

func (e testEntry) EntryInfo() testInfo { return e.info }

func implementsInfo[I Info[E], E any]() {}

var (
	_ = implementsInfo[testInfo, testEntry]
	_ Entry[testInfo] = testEntry{}
)

func TestSetStructuralEquality(t *testing.T) {
	s := NewSet(testInfo{"acme", "widget"}, testInfo{"acme", "widget"}, testInfo{"other", "widget"})

	require.Equal(t, 2, s.Len())
	assert.True(t, s.Has(testInfo{"acme", "widget"}))
	assert.False(t, s.Has(testInfo{"acme", "gadget"}))
	assert.False(t, s.Add(testInfo{"acme", "widget"}))
}

func TestSetUnionKeepsOrder(t *testing.T) {
	a := NewSet(testInfo{"x", "c"}, testInfo{"x", "a"})
	b := NewSet(testInfo{"x", "a"}, testInfo{"x", "b"})

	got := a.Union(b).Items()

	assert.Equal(t, []string{"c", "a", "b"}, IDs(got))
	assert.Equal(t, 2, b.Len(), "union must not modify its argument")
}

func TestSetZeroValue(t *testing.T) {
	var s Set[testInfo]
	assert.False(t, s.Has(testInfo{}))
	assert.Empty(t, s.Items())
	assert.True(t, s.Add(testInfo{}))
}

func TestIDsAndSortByID(t *testing.T) {
	s := NewSet(testInfo{"x", "b"}, testInfo{"x", "c"}, testInfo{"x", "a"})
	assert.Equal(t, []string{"b", "c", "a"}, IDs(s.Items()))

	infos := []testInfo{{"2", "b"}, {"1", "a"}, {"1", "b"}}
	SortByID(infos)
	assert.Equal(t, []testInfo{{"1", "a"}, {"2", "b"}, {"1", "b"}}, infos)
}
