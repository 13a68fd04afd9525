package nested

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmptyContainer is wrapped by TraversalError.
var ErrEmptyContainer = errors.New("empty container")

// TraversalError reports a descent into an empty mapping or sequence.
type TraversalError struct {
	// Path lists the keys and indexes taken before the empty container.
	Path []string
	// Container is "mapping" or "sequence".
	Container string
}

func (e *TraversalError) Error() string {
	where := "root"
	if len(e.Path) > 0 {
		where = strings.Join(e.Path, ".")
	}
	return fmt.Sprintf("nested: cannot take first element of empty %s at %s", e.Container, where)
}

func (e *TraversalError) Unwrap() error { return ErrEmptyContainer }

// MapLeaves returns a tree of the same shape as n with every leaf value v
// replaced by fn(v). Mappings keep their key order. n is not modified.
func MapLeaves(n Node, fn func(any) any) Node {
	switch n := n.(type) {
	case *Mapping:
		out := &Mapping{
			pairs: make([]Pair, 0, n.Len()),
			index: make(map[string]int, n.Len()),
		}
		if n == nil {
			return out
		}
		for _, p := range n.pairs {
			out.Set(p.Key, MapLeaves(p.Value, fn))
		}
		return out
	case Sequence:
		if n == nil {
			return Sequence(nil)
		}
		out := make(Sequence, len(n))
		for i, child := range n {
			out[i] = MapLeaves(child, fn)
		}
		return out
	case Leaf:
		return Leaf{Value: fn(n.Value)}
	case nil:
		return Leaf{Value: fn(nil)}
	default:
		panic(fmt.Sprintf("nested: unknown node type %T", n))
	}
}

// FirstLeaf descends through the first key of every mapping and the first
// element of every sequence until it reaches a leaf, and returns its value.
//
// Example: FirstLeaf of {"a": [1, 2, 3], "b": 4} is 1.
func FirstLeaf(n Node) (any, error) {
	var path []string
	for {
		switch cur := n.(type) {
		case *Mapping:
			if cur.Len() == 0 {
				return nil, &TraversalError{Path: path, Container: "mapping"}
			}
			first := cur.pairs[0]
			path = append(path, first.Key)
			n = first.Value
		case Sequence:
			if len(cur) == 0 {
				return nil, &TraversalError{Path: path, Container: "sequence"}
			}
			path = append(path, strconv.Itoa(0))
			n = cur[0]
		case Leaf:
			return cur.Value, nil
		case nil:
			return nil, nil
		default:
			panic(fmt.Sprintf("nested: unknown node type %T", cur))
		}
	}
}

// TransformMatching rewrites every mapping that contains marker as a key with
// fn(mapping). The children of a matched mapping are not visited and the
// output of fn is not scanned again. Mappings without the marker are rebuilt
// with their values transformed recursively; sequences never match, but
// their elements are visited. Leaves are returned unchanged.
func TransformMatching(n Node, marker string, fn func(*Mapping) Node) Node {
	switch n := n.(type) {
	case *Mapping:
		if n.Has(marker) {
			return fn(n)
		}
		out := &Mapping{
			pairs: make([]Pair, 0, n.Len()),
			index: make(map[string]int, n.Len()),
		}
		if n == nil {
			return out
		}
		for _, p := range n.pairs {
			out.Set(p.Key, TransformMatching(p.Value, marker, fn))
		}
		return out
	case Sequence:
		if n == nil {
			return Sequence(nil)
		}
		out := make(Sequence, len(n))
		for i, child := range n {
			out[i] = TransformMatching(child, marker, fn)
		}
		return out
	case Leaf, nil:
		return n
	default:
		panic(fmt.Sprintf("nested: unknown node type %T", n))
	}
}
