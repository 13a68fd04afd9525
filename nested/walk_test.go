package nested

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Mapping {
	return NewMapping(
		Pair{Key: "a", Value: Sequence{Leaf{Value: 1}, Leaf{Value: 2}, Leaf{Value: 3}}},
		Pair{Key: "b", Value: Leaf{Value: 4}},
	)
}

func TestMapLeavesIdentityKeepsTree(t *testing.T) {
	tree := NewMapping(
		Pair{Key: "z", Value: Leaf{Value: "last"}},
		Pair{Key: "a", Value: Sequence{
			NewMapping(Pair{Key: "x", Value: Leaf{Value: 1.5}}),
			Sequence{},
			Leaf{},
		}},
	)

	got := MapLeaves(tree, func(v any) any { return v })

	require.True(t, Equal(tree, got, -1), Diff(tree, got, -1))
	assert.Equal(t, []string{"z", "a"}, got.(*Mapping).Keys())
	assert.NotSame(t, tree, got)
}

func TestMapLeavesAppliesFunctionInOrder(t *testing.T) {
	var visited []any
	got := MapLeaves(sampleTree(), func(v any) any {
		visited = append(visited, v)
		return v.(int) * 10
	})

	assert.Equal(t, []any{1, 2, 3, 4}, visited)
	want := NewMapping(
		Pair{Key: "a", Value: Sequence{Leaf{Value: 10}, Leaf{Value: 20}, Leaf{Value: 30}}},
		Pair{Key: "b", Value: Leaf{Value: 40}},
	)
	assert.True(t, Equal(want, got, -1), Diff(want, got, -1))
}

func TestMapLeavesDoesNotMutateInput(t *testing.T) {
	tree := sampleTree()
	before := Dump(tree)
	MapLeaves(tree, func(v any) any { return "changed" })
	assert.Equal(t, before, Dump(tree))
}

func TestMapLeavesOnBareLeaf(t *testing.T) {
	got := MapLeaves(Leaf{Value: "x"}, func(v any) any { return v.(string) + "!" })
	assert.Equal(t, Leaf{Value: "x!"}, got)
}

func TestFirstLeaf(t *testing.T) {
	v, err := FirstLeaf(sampleTree())
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = FirstLeaf(Leaf{Value: "only"})
	require.NoError(t, err)
	assert.Equal(t, "only", v)
}

func TestFirstLeafEmptyContainer(t *testing.T) {
	tests := []struct {
		name      string
		tree      Node
		container string
		path      []string
	}{
		{"empty mapping", NewMapping(), "mapping", nil},
		{"empty sequence", Sequence{}, "sequence", nil},
		{
			"nested empty sequence",
			NewMapping(Pair{Key: "a", Value: Sequence{Sequence{}}}),
			"sequence",
			[]string{"a", "0"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FirstLeaf(tt.tree)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEmptyContainer))

			var terr *TraversalError
			require.True(t, errors.As(err, &terr))
			assert.Equal(t, tt.container, terr.Container)
			assert.Equal(t, tt.path, terr.Path)
		})
	}
}

func TestTransformMatchingReplacesWholeMapping(t *testing.T) {
	tree := NewMapping(Pair{Key: "x", Value: NewMapping(
		Pair{Key: "marker", Value: Leaf{Value: 1}},
		Pair{Key: "y", Value: Leaf{Value: 2}},
	)})

	calls := 0
	got := TransformMatching(tree, "marker", func(m *Mapping) Node {
		calls++
		return Leaf{Value: "REPLACED"}
	})

	want := NewMapping(Pair{Key: "x", Value: Leaf{Value: "REPLACED"}})
	assert.True(t, Equal(want, got, -1), Diff(want, got, -1))
	assert.Equal(t, 1, calls)
}

func TestTransformMatchingDoesNotRescanOutput(t *testing.T) {
	inner := NewMapping(Pair{Key: "marker", Value: Leaf{Value: "inner"}})
	tree := Sequence{
		NewMapping(Pair{Key: "marker", Value: Leaf{Value: "outer"}}, Pair{Key: "child", Value: inner}),
		Leaf{Value: 7},
	}

	var seen []any
	got := TransformMatching(tree, "marker", func(m *Mapping) Node {
		v, _ := m.Get("marker")
		seen = append(seen, v.(Leaf).Value)
		return NewMapping(Pair{Key: "marker", Value: Leaf{Value: "again"}})
	})

	assert.Equal(t, []any{"outer"}, seen)
	seq := got.(Sequence)
	require.Len(t, seq, 2)
	assert.Equal(t, Leaf{Value: 7}, seq[1])
}

func TestTransformMatchingKeepsKeyOrderAndLeaves(t *testing.T) {
	tree := NewMapping(
		Pair{Key: "c", Value: Leaf{Value: 1}},
		Pair{Key: "a", Value: NewMapping(Pair{Key: "url", Value: Leaf{Value: "u"}})},
		Pair{Key: "b", Value: Sequence{NewMapping(Pair{Key: "url", Value: Leaf{Value: "v"}})}},
	)

	got := TransformMatching(tree, "url", func(m *Mapping) Node {
		v, _ := m.Get("url")
		return Leaf{Value: fmt.Sprintf("file:%v", v.(Leaf).Value)}
	}).(*Mapping)

	assert.Equal(t, []string{"c", "a", "b"}, got.Keys())
	a, _ := got.Get("a")
	assert.Equal(t, Leaf{Value: "file:u"}, a)
	b, _ := got.Get("b")
	assert.Equal(t, Sequence{Leaf{Value: "file:v"}}, b)
}

func TestMappingSetKeepsPosition(t *testing.T) {
	m := NewMapping(Pair{Key: "a", Value: Leaf{Value: 1}}, Pair{Key: "b", Value: Leaf{Value: 2}})
	m.Set("a", Leaf{Value: 3})

	assert.Equal(t, []string{"a", "b"}, m.Keys())
	v, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, Leaf{Value: 3}, v)
	assert.False(t, m.Has("missing"))
}
