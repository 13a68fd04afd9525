// Package attr reads and writes values along dotted attribute paths such as
// "Model.Args.batch". A segment may name a struct field, an exported method,
// a string map key, a slice index or a key of a nested.Mapping.
package attr

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/kingrea/kipoiutils/nested"
	"github.com/kingrea/kipoiutils/typeutil"
)

// ErrNoAttribute is wrapped by every lookup failure.
var ErrNoAttribute = errors.New("no such attribute")

var (
	mappingType = reflect.TypeOf((*nested.Mapping)(nil))
	leafType    = reflect.TypeOf(nested.Leaf{})
	nodeType    = reflect.TypeOf((*nested.Node)(nil)).Elem()
)

// Get follows path from obj and returns the value it ends on. Methods are
// returned as bound method values.
func Get(obj any, path string) (any, error) {
	segments, err := split(path)
	if err != nil {
		return nil, err
	}
	v, err := walk(reflect.ValueOf(obj), segments)
	if err != nil {
		return nil, err
	}
	if !v.IsValid() {
		return nil, nil
	}
	out := v.Interface()
	if leaf, ok := out.(nested.Leaf); ok {
		return leaf.Value, nil
	}
	return out, nil
}

// GetOr is Get returning fallback when any segment is missing.
func GetOr(obj any, path string, fallback any) any {
	v, err := Get(obj, path)
	if err != nil {
		return fallback
	}
	return v
}

// Set assigns val to the last segment of path. Struct fields are only
// settable when obj is a pointer; map entries and nested.Mapping keys are
// always settable.
func Set(obj any, path string, val any) error {
	segments, err := split(path)
	if err != nil {
		return err
	}
	parent, err := walk(reflect.ValueOf(obj), segments[:len(segments)-1])
	if err != nil {
		return err
	}
	return assign(parent, segments[len(segments)-1], val)
}

func split(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("attr: empty path")
	}
	segments := strings.Split(path, ".")
	for _, s := range segments {
		if s == "" {
			return nil, fmt.Errorf("attr: invalid path %q: empty segment", path)
		}
	}
	return segments, nil
}

func walk(v reflect.Value, segments []string) (reflect.Value, error) {
	for i, seg := range segments {
		next, err := step(v, seg)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("attr: %s: %w", strings.Join(segments[:i+1], "."), err)
		}
		v = next
	}
	return v, nil
}

func step(v reflect.Value, name string) (reflect.Value, error) {
	if !v.IsValid() {
		return reflect.Value{}, fmt.Errorf("nil has no attribute %q: %w", name, ErrNoAttribute)
	}
	for {
		if v.Type() == mappingType {
			if v.IsNil() {
				break
			}
			return mappingGet(v.Interface().(*nested.Mapping), name)
		}
		if m := v.MethodByName(name); m.IsValid() {
			return m, nil
		}
		if v.Kind() != reflect.Pointer && v.Kind() != reflect.Interface {
			break
		}
		if v.IsNil() {
			return reflect.Value{}, fmt.Errorf("nil %s has no attribute %q: %w", v.Type(), name, ErrNoAttribute)
		}
		v = v.Elem()
	}
	if v.Type() == leafType {
		return step(reflect.ValueOf(v.Interface().(nested.Leaf).Value), name)
	}
	switch v.Kind() {
	case reflect.Struct:
		f, ok := v.Type().FieldByName(name)
		if !ok || !f.IsExported() {
			break
		}
		return v.FieldByIndex(f.Index), nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		val := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
		if val.IsValid() {
			return val, nil
		}
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(name)
		if err == nil && i >= 0 && i < v.Len() {
			return v.Index(i), nil
		}
	}
	return reflect.Value{}, fmt.Errorf("%s has no attribute %q: %w", v.Type(), name, ErrNoAttribute)
}

func mappingGet(m *nested.Mapping, key string) (reflect.Value, error) {
	n, ok := m.Get(key)
	if !ok {
		return reflect.Value{}, fmt.Errorf("mapping has no key %q: %w", key, ErrNoAttribute)
	}
	return reflect.ValueOf(n), nil
}

func assign(v reflect.Value, name string, val any) error {
	if !v.IsValid() {
		return fmt.Errorf("attr: cannot set %q on nil", name)
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fmt.Errorf("attr: cannot set %q on nil %s", name, v.Type())
		}
		if v.Type() == mappingType {
			n, err := nested.FromValue(val)
			if err != nil {
				return fmt.Errorf("attr: set %q: %w", name, err)
			}
			v.Interface().(*nested.Mapping).Set(name, n)
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		f, ok := v.Type().FieldByName(name)
		if !ok || !f.IsExported() {
			return fmt.Errorf("attr: %s has no attribute %q: %w", v.Type(), name, ErrNoAttribute)
		}
		field := v.FieldByIndex(f.Index)
		if !field.CanSet() {
			return fmt.Errorf("attr: field %s.%s is not settable; pass a pointer", v.Type(), name)
		}
		rv, err := convert(val, field.Type())
		if err != nil {
			return fmt.Errorf("attr: set %s.%s: %w", v.Type(), name, err)
		}
		field.Set(rv)
		return nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		if v.IsNil() {
			return fmt.Errorf("attr: cannot set %q on nil map", name)
		}
		rv, err := convert(val, v.Type().Elem())
		if err != nil {
			return fmt.Errorf("attr: set %q: %w", name, err)
		}
		v.SetMapIndex(reflect.ValueOf(name).Convert(v.Type().Key()), rv)
		return nil
	case reflect.Slice:
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= v.Len() {
			break
		}
		rv, err := convert(val, v.Type().Elem())
		if err != nil {
			return fmt.Errorf("attr: set [%d]: %w", i, err)
		}
		v.Index(i).Set(rv)
		return nil
	}
	return fmt.Errorf("attr: %s has no attribute %q: %w", v.Type(), name, ErrNoAttribute)
}

func convert(val any, t reflect.Type) (reflect.Value, error) {
	if t == nodeType {
		n, err := nested.FromValue(val)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&n).Elem(), nil
	}
	if val == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(val)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumber(rv.Kind()) && isNumber(t.Kind()) {
		return typeutil.ConvertNumeric(rv, t)
	}
	if rv.Type().ConvertibleTo(t) && (t.Kind() != reflect.String || rv.Kind() == reflect.String) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", val, t)
}

func isNumber(k reflect.Kind) bool {
	return (k >= reflect.Int && k <= reflect.Uint64) || k == reflect.Float32 || k == reflect.Float64
}
