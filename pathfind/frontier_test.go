package pathfind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_OrdersByEstimate(t *testing.T) {
	f := &frontier[string]{}
	for _, r := range []*Record[string]{
		{Node: "c", G: 1, F: 3},
		{Node: "a", G: 1, F: 1},
		{Node: "b", G: 1, F: 2},
	} {
		f.push(r)
	}

	var got []string
	for {
		rec, ok := f.pop()
		if !ok {
			break
		}
		got = append(got, rec.Node)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestFrontier_FIFOOnTies(t *testing.T) {
	f := &frontier[int]{}
	for i := 0; i < 20; i++ {
		f.push(&Record[int]{Node: i, G: 1, F: 5})
	}
	for i := 0; i < 20; i++ {
		rec, ok := f.pop()
		require.True(t, ok)
		assert.Equal(t, i, rec.Node)
	}
}

func TestFrontier_SkipsStaleEntries(t *testing.T) {
	f := &frontier[string]{}
	rec := &Record[string]{Node: "x", G: 10, F: 12}
	f.push(rec)

	rec.G, rec.F = 4, 6
	f.push(rec)
	assert.Equal(t, 2, f.len())

	got, ok := f.pop()
	require.True(t, ok)
	assert.Same(t, rec, got)
	assert.Equal(t, 4.0, got.G)

	_, ok = f.pop()
	assert.False(t, ok, "superseded entry must not be returned")
	assert.Equal(t, 0, f.len())
}

func TestRecords_Path(t *testing.T) {
	rs := records[string]{
		"a": {Node: "a"},
		"b": {Node: "b", Prev: "a", HasPrev: true},
		"c": {Node: "c", Prev: "b", HasPrev: true},
	}
	assert.Equal(t, []string{"a", "b", "c"}, rs.path(rs["c"]))
	assert.Equal(t, []string{"a"}, rs.path(rs["a"]))
}
