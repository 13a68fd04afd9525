package kwargs

import (
	"fmt"
	"reflect"
	"sort"
)

// Kind tells plain callables from classes.
type Kind int

const (
	KindFunc Kind = iota
	KindClass
)

func (k Kind) String() string {
	if k == KindClass {
		return "class"
	}
	return "function"
}

// Entity is a callable or class with a described parameter list.
type Entity interface {
	Name() string
	Kind() Kind
	Signature() Signature
	// CallKw binds args positionally, then kw by name, then fills the
	// remaining parameters from their defaults. For a class the result is a
	// new instance.
	CallKw(args []any, kw map[string]any) (any, error)
	Call(args ...any) (any, error)
}

// Args holds the values bound to a signature for one call.
type Args struct {
	names  []string
	values map[string]any
}

// Get returns the value bound to name, or nil.
func (a Args) Get(name string) any { return a.values[name] }

// Lookup returns the value bound to name.
func (a Args) Lookup(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Values returns the bound values in declaration order.
func (a Args) Values() []any {
	out := make([]any, len(a.names))
	for i, n := range a.names {
		out[i] = a.values[n]
	}
	return out
}

// Map returns a copy of the bound values keyed by name.
func (a Args) Map() map[string]any {
	out := make(map[string]any, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Body is the code behind an entity; it receives fully bound arguments.
type Body func(Args) (any, error)

type base struct {
	name string
	kind Kind
	sig  Signature
	body Body
}

func (b *base) Name() string         { return b.name }
func (b *base) Kind() Kind           { return b.kind }
func (b *base) Signature() Signature { return b.sig }

func (b *base) Call(args ...any) (any, error) { return b.CallKw(args, nil) }

func (b *base) CallKw(args []any, kw map[string]any) (any, error) {
	bound, err := bind(b.name, b.sig, args, kw)
	if err != nil {
		return nil, err
	}
	return b.body(bound)
}

// Func is a plain callable.
type Func struct{ base }

// NewFunc declares a callable with an explicit parameter list.
func NewFunc(name string, params []Param, body Body) (*Func, error) {
	sig, err := NewSignature(params...)
	if err != nil {
		return nil, &UnsupportedTypeError{Target: name, Reason: err.Error()}
	}
	if body == nil {
		return nil, &UnsupportedTypeError{Target: name, Reason: "nil body"}
	}
	return &Func{base{name: name, kind: KindFunc, sig: sig, body: body}}, nil
}

// Class is a constructor: calling it produces an instance.
type Class struct {
	base
	typ reflect.Type
}

// NewClass declares a class whose constructor takes params.
func NewClass(name string, params []Param, ctor Body) (*Class, error) {
	sig, err := NewSignature(params...)
	if err != nil {
		return nil, &UnsupportedTypeError{Target: name, Reason: err.Error()}
	}
	if ctor == nil {
		return nil, &UnsupportedTypeError{Target: name, Reason: "nil constructor"}
	}
	return &Class{base: base{name: name, kind: KindClass, sig: sig, body: ctor}}, nil
}

// New is Call under its constructor name.
func (c *Class) New(args ...any) (any, error) { return c.Call(args...) }

// Type returns the instance type for classes derived from structs, or nil.
func (c *Class) Type() reflect.Type { return c.typ }

func bind(entity string, sig Signature, args []any, kw map[string]any) (Args, error) {
	if len(args) > sig.Len() {
		return Args{}, badCall(entity, "takes %d arguments but %d were given", sig.Len(), len(args))
	}
	bound := Args{names: sig.Names(), values: make(map[string]any, sig.Len())}
	for i, v := range args {
		bound.values[sig.params[i].Name] = v
	}
	keys := make([]string, 0, len(kw))
	for k := range kw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, ok := sig.index[k]; !ok {
			return Args{}, badCall(entity, "unexpected keyword argument %q", k)
		}
		if _, dup := bound.values[k]; dup {
			return Args{}, badCall(entity, "got multiple values for argument %q", k)
		}
		bound.values[k] = kw[k]
	}
	for _, p := range sig.params {
		if _, ok := bound.values[p.Name]; ok {
			continue
		}
		if !p.HasDefault {
			return Args{}, badCall(entity, "missing required argument %q", p.Name)
		}
		bound.values[p.Name] = p.defaultValue()
	}
	for _, p := range sig.params {
		if p.Type == nil {
			continue
		}
		if _, err := coerce(bound.values[p.Name], p.Type); err != nil {
			return Args{}, badCall(entity, "argument %q: %v", p.Name, err)
		}
	}
	return bound, nil
}

func (k Kind) describe(name string) string {
	return fmt.Sprintf("%s %s", k, name)
}
