// Package kwargs describes the named parameters of callables and classes and
// derives new entities whose default values are overridden.
//
// Go has no default arguments, so an entity carries an explicit Signature:
// the ordered parameter list with the defaults declared on its trailing
// parameters. Entities are built from a declared parameter list (NewFunc,
// NewClass), from an arbitrary Go func plus parameter descriptions (FuncOf),
// or from a struct type whose fields carry `kw` and `default` tags (ClassOf).
//
// Override never touches the entity it is given. The result keeps a
// reference to the original plus its own copy of the override table and
// applies that table when it is called.
package kwargs

import (
	"fmt"
	"reflect"

	"github.com/kingrea/kipoiutils/typeutil"
)

// Param describes one named parameter.
type Param struct {
	Name string
	// Type restricts the values the parameter accepts. Nil accepts anything.
	Type       reflect.Type
	Default    any
	HasDefault bool

	// fresh rebuilds Default for every use when set; mutable defaults
	// decoded from struct tags are never shared between calls.
	fresh func() any
}

func (p Param) defaultValue() any {
	if p.fresh != nil {
		return p.fresh()
	}
	return p.Default
}

// Required declares a parameter without a default.
func Required(name string) Param {
	return Param{Name: name}
}

// Optional declares a parameter with a default value.
func Optional(name string, def any) Param {
	return Param{Name: name, Default: def, HasDefault: true}
}

// Signature is an immutable, ordered parameter list.
type Signature struct {
	params []Param
	index  map[string]int
}

// NewSignature validates params: names must be non-empty and unique, and
// only a trailing run of parameters may declare defaults.
func NewSignature(params ...Param) (Signature, error) {
	sig := Signature{
		params: make([]Param, len(params)),
		index:  make(map[string]int, len(params)),
	}
	seenDefault := ""
	for i, p := range params {
		if p.Name == "" {
			return Signature{}, fmt.Errorf("parameter %d has no name", i)
		}
		if _, dup := sig.index[p.Name]; dup {
			return Signature{}, fmt.Errorf("duplicate parameter %q", p.Name)
		}
		if p.HasDefault {
			seenDefault = p.Name
		} else if seenDefault != "" {
			return Signature{}, fmt.Errorf("parameter %q without default follows defaulted parameter %q", p.Name, seenDefault)
		}
		if p.HasDefault && p.Type != nil {
			if _, err := coerce(p.Default, p.Type); err != nil {
				return Signature{}, fmt.Errorf("default of %q: %w", p.Name, err)
			}
		}
		sig.params[i] = p
		sig.index[p.Name] = i
	}
	return sig, nil
}

// Len returns the number of parameters.
func (s Signature) Len() int { return len(s.params) }

// Params returns a copy of the parameter list.
func (s Signature) Params() []Param {
	out := make([]Param, len(s.params))
	copy(out, s.params)
	return out
}

// Names returns the parameter names in declaration order.
func (s Signature) Names() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the parameter called name.
func (s Signature) Lookup(name string) (Param, bool) {
	i, ok := s.index[name]
	if !ok {
		return Param{}, false
	}
	return s.params[i], true
}

// Defaults returns the defaulted parameters keyed by name.
func (s Signature) Defaults() map[string]any {
	out := make(map[string]any)
	for _, p := range s.params {
		if p.HasDefault {
			out[p.Name] = p.defaultValue()
		}
	}
	return out
}

// withDefaults returns a copy of s with the given defaults substituted.
// Callers have already checked that every key names a defaulted parameter.
func (s Signature) withDefaults(overrides map[string]any) Signature {
	out := Signature{params: s.Params(), index: s.index}
	for i, p := range out.params {
		if v, ok := overrides[p.Name]; ok {
			out.params[i].Default = v
			out.params[i].fresh = nil
		}
	}
	return out
}

// coerce converts v to a value of type t, allowing untyped nil for nillable
// types and conversions between numeric kinds that keep the value intact.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumeric(rv.Kind()) && isNumeric(t.Kind()) {
		return typeutil.ConvertNumeric(rv, t)
	}
	return reflect.Value{}, fmt.Errorf("%T is not assignable to %s", v, t)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
