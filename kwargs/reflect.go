package kwargs

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// FuncOf wraps an arbitrary Go func. params describe its inputs in order and
// must match its arity; their Type is taken from the func. A trailing error
// result is returned as the call error; with several other results the call
// returns them as []any. An empty name falls back to the runtime func name.
func FuncOf(name string, fn any, params ...Param) (*Func, error) {
	rv := reflect.ValueOf(fn)
	if name == "" {
		name = funcName(rv)
	}
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, &UnsupportedTypeError{Target: name, Reason: fmt.Sprintf("%T is not a function", fn)}
	}
	ft := rv.Type()
	if ft.IsVariadic() {
		return nil, &UnsupportedTypeError{Target: name, Reason: "variadic functions are not supported"}
	}
	if ft.NumIn() != len(params) {
		return nil, &UnsupportedTypeError{
			Target: name,
			Reason: fmt.Sprintf("function takes %d parameters but %d were described", ft.NumIn(), len(params)),
		}
	}
	typed := make([]Param, len(params))
	for i, p := range params {
		p.Type = ft.In(i)
		typed[i] = p
	}
	body := func(args Args) (any, error) {
		in := make([]reflect.Value, ft.NumIn())
		for i, v := range args.Values() {
			cv, err := coerce(v, ft.In(i))
			if err != nil {
				return nil, badCall(name, "argument %q: %v", typed[i].Name, err)
			}
			in[i] = cv
		}
		return unpackResults(rv.Call(in))
	}
	return NewFunc(name, typed, body)
}

func unpackResults(out []reflect.Value) (any, error) {
	var err error
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if e := out[n-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	}
	values := make([]any, len(out))
	for i, v := range out {
		values[i] = v.Interface()
	}
	return values, err
}

func funcName(rv reflect.Value) string {
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return "<nil>"
	}
	full := runtime.FuncForPC(rv.Pointer()).Name()
	if i := strings.LastIndex(full, "."); i >= 0 {
		return full[i+1:]
	}
	return full
}

// ClassOf derives a class from a struct type, given as a value, a pointer or
// a reflect.Type. Exported fields become parameters in declaration order.
// The `kw` tag renames a field (`kw:"-"` skips it; untagged fields use the
// field name with a lower-case first letter). The `default` tag holds a YAML
// literal decoded into the field type; slice, map and pointer defaults are
// decoded again for every instance, so instances never share them. Embedded
// fields are skipped. Calling the class returns a pointer to a new struct.
func ClassOf(v any) (*Class, error) {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	if t == nil {
		return nil, &UnsupportedTypeError{Target: "<nil>", Reason: "no type"}
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, &UnsupportedTypeError{Target: t.String(), Reason: "not a struct type"}
	}
	var (
		params []Param
		fields []int
	)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}
		name := paramName(field)
		if name == "" {
			continue
		}
		p := Param{Name: name, Type: field.Type}
		if raw, ok := field.Tag.Lookup("default"); ok {
			def := reflect.New(field.Type)
			if err := yaml.Unmarshal([]byte(raw), def.Interface()); err != nil {
				return nil, &UnsupportedTypeError{
					Target: t.String(),
					Reason: fmt.Sprintf("field %s: decode default %q: %v", field.Name, raw, err),
				}
			}
			p.Default = def.Elem().Interface()
			p.HasDefault = true
			switch field.Type.Kind() {
			case reflect.Slice, reflect.Map, reflect.Pointer:
				p.fresh = decodeDefault(field.Type, raw)
			}
		}
		params = append(params, p)
		fields = append(fields, i)
	}
	ctor := func(args Args) (any, error) {
		obj := reflect.New(t)
		for i, v := range args.Values() {
			cv, err := coerce(v, params[i].Type)
			if err != nil {
				return nil, badCall(t.Name(), "argument %q: %v", params[i].Name, err)
			}
			obj.Elem().Field(fields[i]).Set(cv)
		}
		return obj.Interface(), nil
	}
	cls, err := NewClass(t.Name(), params, ctor)
	if err != nil {
		return nil, err
	}
	cls.typ = reflect.PointerTo(t)
	return cls, nil
}

// decodeDefault returns a func decoding raw into a new value of type t. raw
// has already been decoded once without error.
func decodeDefault(t reflect.Type, raw string) func() any {
	return func() any {
		v := reflect.New(t)
		_ = yaml.Unmarshal([]byte(raw), v.Interface())
		return v.Elem().Interface()
	}
}

func paramName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("kw"); ok {
		tag = strings.TrimSpace(strings.Split(tag, ",")[0])
		if tag == "-" {
			return ""
		}
		if tag != "" {
			return tag
		}
	}
	r, size := utf8.DecodeRuneInString(field.Name)
	return string(unicode.ToLower(r)) + field.Name[size:]
}

// Resolve turns target into an Entity. Entities pass through; struct types
// and values go through ClassOf. Anything else is unsupported.
func Resolve(target any) (Entity, error) {
	switch t := target.(type) {
	case Entity:
		return t, nil
	case nil:
		return nil, &UnsupportedTypeError{Target: "<nil>", Reason: "no entity"}
	case reflect.Type:
		return ClassOf(t)
	}
	rt := reflect.TypeOf(target)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() == reflect.Struct {
		return ClassOf(rt)
	}
	if rt.Kind() == reflect.Func {
		return nil, &UnsupportedTypeError{
			Target: funcName(reflect.ValueOf(target)),
			Reason: "Go functions carry no parameter names; describe them with FuncOf",
		}
	}
	return nil, &UnsupportedTypeError{Target: rt.String(), Reason: "cannot introspect parameters"}
}

// DefaultKwargs returns the defaulted parameters of target keyed by name.
func DefaultKwargs(target any) (map[string]any, error) {
	e, err := Resolve(target)
	if err != nil {
		return nil, err
	}
	return e.Signature().Defaults(), nil
}

// ArgNames returns every parameter name of target in declaration order.
func ArgNames(target any) ([]string, error) {
	e, err := Resolve(target)
	if err != nil {
		return nil, err
	}
	return e.Signature().Names(), nil
}
