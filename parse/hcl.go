package parse

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/kingrea/kipoiutils/nested"
)

// LoadHCL decodes the top-level attributes of an HCL document into a
// mapping, in source order. Attribute expressions are evaluated without
// variables or functions. Objects and maps inside values come out with their
// keys sorted, which is the only order cty keeps.
func LoadHCL(data []byte, filename string) (*nested.Mapping, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse: %s: %w", filename, diags)
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse: %s: %w", filename, diags)
	}
	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, a := range attrs {
		ordered = append(ordered, a)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Range.Start.Byte < ordered[j].Range.Start.Byte
	})
	out := nested.NewMapping()
	for _, a := range ordered {
		val, diags := a.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parse: %s: %w", filename, diags)
		}
		n, err := fromCty(val)
		if err != nil {
			return nil, fmt.Errorf("parse: %s: %s: %w", filename, a.Name, err)
		}
		out.Set(a.Name, n)
	}
	return out, nil
}

// ReadHCL reads and decodes the HCL file at path.
func ReadHCL(path string) (*nested.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse: read %s: %w", path, err)
	}
	return LoadHCL(data, filepath.Base(path))
}

// ReadFile picks the decoder from the file extension: .yaml, .yml and .json
// are read as YAML, .hcl as HCL.
func ReadFile(path string) (nested.Node, error) {
	switch {
	case isYAMLFile(path), strings.EqualFold(filepath.Ext(path), ".json"):
		return ReadYAML(path)
	case strings.EqualFold(filepath.Ext(path), ".hcl"):
		return ReadHCL(path)
	default:
		return nil, fmt.Errorf("parse: %s: unsupported file extension", path)
	}
}

func fromCty(val cty.Value) (nested.Node, error) {
	if val.IsNull() {
		return nested.Leaf{}, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	ty := val.Type()
	switch {
	case ty.IsObjectType(), ty.IsMapType():
		m := nested.NewMapping()
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			child, err := fromCty(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.AsString(), err)
			}
			m.Set(k.AsString(), child)
		}
		return m, nil
	case ty.IsListType(), ty.IsTupleType(), ty.IsSetType():
		seq := make(nested.Sequence, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			child, err := fromCty(v)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", len(seq), err)
			}
			seq = append(seq, child)
		}
		return seq, nil
	case ty.Equals(cty.String):
		return nested.Leaf{Value: val.AsString()}, nil
	case ty.Equals(cty.Bool):
		return nested.Leaf{Value: val.True()}, nil
	case ty.Equals(cty.Number):
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return nested.Leaf{Value: int(i)}, nil
			}
		}
		f, _ := bf.Float64()
		return nested.Leaf{Value: f}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %s", ty.FriendlyName())
	}
}
