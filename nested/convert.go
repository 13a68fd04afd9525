package nested

import (
	"fmt"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// FromValue converts plain Go data into a tree. Maps must have string keys
// and are emitted with sorted keys, since Go maps carry no order. Slices and
// arrays (other than []byte) become sequences, *yaml.Node values go through
// FromYAML, and anything else becomes a leaf.
func FromValue(v any) (Node, error) {
	switch v := v.(type) {
	case nil:
		return Leaf{}, nil
	case Node:
		return v, nil
	case *yaml.Node:
		return FromYAML(v)
	case []byte:
		return Leaf{Value: v}, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, k := range keys {
			child, err := FromValue(v[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m.Set(k, child)
		}
		return m, nil
	case []any:
		seq := make(Sequence, len(v))
		for i, elem := range v {
			child, err := FromValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq[i] = child
		}
		return seq, nil
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromReflect(rv reflect.Value) (Node, error) {
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("nested: map key type %s is not a string", rv.Type().Key())
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		m := NewMapping()
		for _, k := range keys {
			child, err := FromValue(rv.MapIndex(k).Interface())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.String(), err)
			}
			m.Set(k.String(), child)
		}
		return m, nil
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return Sequence(nil), nil
		}
		seq := make(Sequence, rv.Len())
		for i := range seq {
			child, err := FromValue(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq[i] = child
		}
		return seq, nil
	default:
		return Leaf{Value: rv.Interface()}, nil
	}
}

// ToValue converts a tree back into plain Go data: map[string]any for
// mappings, []any for sequences and the wrapped value for leaves. Key order
// is lost.
func ToValue(n Node) any {
	switch n := n.(type) {
	case *Mapping:
		out := make(map[string]any, n.Len())
		for _, p := range n.Pairs() {
			out[p.Key] = ToValue(p.Value)
		}
		return out
	case Sequence:
		out := make([]any, len(n))
		for i, child := range n {
			out[i] = ToValue(child)
		}
		return out
	case Leaf:
		return n.Value
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("nested: unknown node type %T", n))
	}
}

// FromYAML converts a decoded YAML document into a tree, keeping mapping key
// order. Aliases are resolved; non-string keys use their scalar text. An empty
// document, including one with only comments, is a nil leaf.
func FromYAML(doc *yaml.Node) (Node, error) {
	if doc == nil || doc.Kind == 0 {
		return Leaf{}, nil
	}
	switch doc.Kind {
	case yaml.DocumentNode:
		if len(doc.Content) == 0 {
			return Leaf{}, nil
		}
		return FromYAML(doc.Content[0])
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(doc.Content); i += 2 {
			key, val := doc.Content[i], doc.Content[i+1]
			if key.Kind == yaml.AliasNode && key.Alias != nil {
				key = key.Alias
			}
			if key.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("nested: line %d: mapping key must be a scalar", key.Line)
			}
			child, err := FromYAML(val)
			if err != nil {
				return nil, err
			}
			m.Set(key.Value, child)
		}
		return m, nil
	case yaml.SequenceNode:
		seq := make(Sequence, len(doc.Content))
		for i, elem := range doc.Content {
			child, err := FromYAML(elem)
			if err != nil {
				return nil, err
			}
			seq[i] = child
		}
		return seq, nil
	case yaml.AliasNode:
		return FromYAML(doc.Alias)
	case yaml.ScalarNode:
		var v any
		if err := doc.Decode(&v); err != nil {
			return nil, fmt.Errorf("nested: line %d: %w", doc.Line, err)
		}
		return Leaf{Value: v}, nil
	default:
		return nil, fmt.Errorf("nested: line %d: unsupported yaml node kind %d", doc.Line, doc.Kind)
	}
}

// ToYAML encodes a tree as a YAML node, mappings in stored key order.
func ToYAML(n Node) (*yaml.Node, error) {
	switch n := n.(type) {
	case *Mapping:
		out := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, p := range n.Pairs() {
			val, err := ToYAML(p.Value)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", p.Key, err)
			}
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p.Key}
			out.Content = append(out.Content, key, val)
		}
		return out, nil
	case Sequence:
		out := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for i, child := range n {
			val, err := ToYAML(child)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out.Content = append(out.Content, val)
		}
		return out, nil
	case Leaf:
		if n.Value == nil {
			return nullNode(), nil
		}
		out := &yaml.Node{}
		if err := out.Encode(n.Value); err != nil {
			return nil, fmt.Errorf("nested: encode %T: %w", n.Value, err)
		}
		return out, nil
	case nil:
		return nullNode(), nil
	default:
		panic(fmt.Sprintf("nested: unknown node type %T", n))
	}
}

func nullNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}
