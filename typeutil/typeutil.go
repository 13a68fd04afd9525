// Package typeutil answers lineage and conversion questions about Go types.
package typeutil

import (
	"fmt"
	"math"
	"reflect"
)

// Named pairs a registry name with a type.
type Named struct {
	Name string
	Type reflect.Type
}

// InheritsFrom reports whether t "is a" parent: the types are identical,
// parent is an interface implemented by t or *t, or t embeds parent (or a
// pointer to it) at any depth. Pointer types are compared by their element.
func InheritsFrom(t, parent reflect.Type) bool {
	if t == nil || parent == nil {
		return false
	}
	if parent.Kind() == reflect.Interface {
		return t.Implements(parent) || (t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(parent))
	}
	return embeds(deref(t), deref(parent), map[reflect.Type]bool{})
}

func embeds(t, parent reflect.Type, seen map[reflect.Type]bool) bool {
	if t == parent {
		return true
	}
	if t.Kind() != reflect.Struct || seen[t] {
		return false
	}
	seen[t] = true
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && embeds(deref(f.Type), parent, seen) {
			return true
		}
	}
	return false
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// InferParentClass returns the name of the last registry entry t inherits
// from. Later entries take precedence, so register general types first.
func InferParentClass(t reflect.Type, registry []Named) (string, bool) {
	for i := len(registry) - 1; i >= 0; i-- {
		if InheritsFrom(t, registry[i].Type) {
			return registry[i].Name, true
		}
	}
	return "", false
}

// ConvertNumeric converts v to the numeric type t when the value survives
// the conversion: fractional floats do not become integers, negative values
// do not become unsigned and nothing is wrapped to fit a narrower type.
// Integers converted to floats must be exactly representable. Narrowing a
// float to float32 only checks range.
func ConvertNumeric(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	if !isNumber(v.Kind()) || !isNumber(t.Kind()) {
		return reflect.Value{}, fmt.Errorf("cannot convert %s to %s", v.Type(), t)
	}
	lossy := fmt.Errorf("%s value %v does not fit in %s", v.Type(), v, t)
	switch {
	case v.CanInt():
		i := v.Int()
		switch {
		case out.CanInt():
			if out.OverflowInt(i) {
				return reflect.Value{}, lossy
			}
			out.SetInt(i)
		case out.CanUint():
			if i < 0 || out.OverflowUint(uint64(i)) {
				return reflect.Value{}, lossy
			}
			out.SetUint(uint64(i))
		default:
			if i > maxExact(t) || i < -maxExact(t) {
				return reflect.Value{}, lossy
			}
			out.SetFloat(float64(i))
		}
	case v.CanUint():
		u := v.Uint()
		switch {
		case out.CanInt():
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return reflect.Value{}, lossy
			}
			out.SetInt(int64(u))
		case out.CanUint():
			if out.OverflowUint(u) {
				return reflect.Value{}, lossy
			}
			out.SetUint(u)
		default:
			if u > uint64(maxExact(t)) {
				return reflect.Value{}, lossy
			}
			out.SetFloat(float64(u))
		}
	default:
		f := v.Float()
		switch {
		case out.CanFloat():
			if !math.IsNaN(f) && !math.IsInf(f, 0) && out.OverflowFloat(f) {
				return reflect.Value{}, lossy
			}
			out.SetFloat(f)
		case out.CanInt():
			if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 || out.OverflowInt(int64(f)) {
				return reflect.Value{}, lossy
			}
			out.SetInt(int64(f))
		default:
			if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 || out.OverflowUint(uint64(f)) {
				return reflect.Value{}, lossy
			}
			out.SetUint(uint64(f))
		}
	}
	return out, nil
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// maxExact is the largest integer magnitude a float type holds exactly.
func maxExact(t reflect.Type) int64 {
	if t.Kind() == reflect.Float32 {
		return 1 << 24
	}
	return 1 << 53
}
