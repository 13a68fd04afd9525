// Package nested walks and rewrites trees built from ordered mappings,
// sequences and leaves.
//
// A tree is a Node: a *Mapping (string keys in insertion order), a Sequence,
// or a Leaf wrapping an arbitrary value. Every traversal in this package
// switches exhaustively over those three shapes; a nil Node is treated as a
// leaf holding nil. Trees are owned top-down and must not contain cycles.
//
// The three traversals are:
//
//   - MapLeaves rebuilds the tree with every leaf value passed through a function.
//   - FirstLeaf follows the first child of every container down to a leaf.
//   - TransformMatching replaces each mapping that carries a marker key with
//     the result of a function, without descending into the replaced mapping.
package nested

import (
	"fmt"
)

// Node is one of *Mapping, Sequence or Leaf.
type Node interface {
	node()
}

// Leaf wraps a scalar or opaque value.
type Leaf struct {
	Value any
}

// Sequence is an ordered list of child nodes.
type Sequence []Node

// Pair is one key/value entry of a Mapping.
type Pair struct {
	Key   string
	Value Node
}

// Mapping is an ordered string-keyed collection of child nodes.
type Mapping struct {
	pairs []Pair
	index map[string]int
}

func (Leaf) node()     {}
func (Sequence) node() {}
func (*Mapping) node() {}

// NewMapping builds a mapping from pairs. A repeated key keeps the position
// of its first occurrence and the value of its last.
func NewMapping(pairs ...Pair) *Mapping {
	m := &Mapping{
		pairs: make([]Pair, 0, len(pairs)),
		index: make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		m.Set(p.Key, p.Value)
	}
	return m
}

// Set stores value under key. Existing keys keep their position.
func (m *Mapping) Set(key string, value Node) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.pairs[i].Value = value
		return
	}
	m.index[key] = len(m.pairs)
	m.pairs = append(m.pairs, Pair{Key: key, Value: value})
}

// Get returns the node stored under key.
func (m *Mapping) Get(key string) (Node, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.pairs[i].Value, true
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.pairs)
}

// Keys returns the keys in stored order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.pairs))
	for i, p := range m.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Pairs returns a copy of the entries in stored order.
func (m *Mapping) Pairs() []Pair {
	if m == nil {
		return nil
	}
	out := make([]Pair, len(m.pairs))
	copy(out, m.pairs)
	return out
}

func (m *Mapping) String() string {
	return fmt.Sprintf("Mapping%v", m.Keys())
}
