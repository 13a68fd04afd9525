package parse

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/kipoiutils/common"
	"github.com/kingrea/kipoiutils/nested"
)

// ArgError reports an argument that is neither a document nor key=value.
type ArgError struct {
	Arg string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("parse: cannot parse arg %q", e.Arg)
}

// ArgList parses command-line style arguments in one of three forms:
//
//	[`{key: val, key2: val2}`]   an inline JSON/YAML document
//	[`foo/bar/args.json`]        a path to such a document
//	[`key=val`, `key2=val2`]     key/value pairs
//
// Values of key/value pairs are decoded as YAML scalar or flow literals ("3"
// is an int, "[1, 2]" a sequence) and fall back to the raw string, so
// "title=a: b" keeps "a: b". Nil or empty args yield an empty mapping.
func ArgList(args []string) (nested.Node, error) {
	if common.IsEmpty(args) {
		return nested.NewMapping(), nil
	}
	if len(args) == 1 {
		arg := stripQuotes(args[0])
		if (strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}")) || !strings.Contains(arg, "=") {
			return JSONFileOrString(args[0])
		}
	}
	out := nested.NewMapping()
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.Contains(raw, "=") {
			return nil, &ArgError{Arg: arg}
		}
		out.Set(key, literal(raw))
	}
	return out, nil
}

func literal(raw string) nested.Node {
	if strings.TrimSpace(raw) == "" {
		return nested.Leaf{Value: raw}
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil || doc.Kind == 0 {
		return nested.Leaf{Value: raw}
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		switch top := doc.Content[0]; top.Kind {
		case yaml.MappingNode, yaml.SequenceNode:
			if top.Style&yaml.FlowStyle == 0 {
				return nested.Leaf{Value: raw}
			}
		}
	}
	n, err := nested.FromYAML(&doc)
	if err != nil {
		return nested.Leaf{Value: raw}
	}
	return n
}
