package kwargs

import (
	"sort"

	"github.com/kingrea/kipoiutils/common"
)

// OverriddenPrefix is prepended to the name of an overridden class.
const OverriddenPrefix = "Overridden"

// Overridden is an entity whose defaults are replaced by an override table.
// It delegates every call to the entity it was derived from.
type Overridden struct {
	base  Entity
	name  string
	table map[string]any
	sig   Signature
}

// OverrideOption customises Override.
type OverrideOption func(*overrideOptions)

type overrideOptions struct {
	name string
}

// WithName names the result instead of the default naming.
func WithName(name string) OverrideOption {
	return func(o *overrideOptions) { o.name = name }
}

// Override returns a new entity equal to target except that the defaults
// named in overrides are replaced. Every key is checked before anything is
// built: a key that is not a parameter yields *ValidationError, a key naming
// a parameter without default yields *RequiredParamError, and a value the
// parameter type cannot hold yields *ValidationError.
//
// A function keeps its name; a class is named "Overridden" + its name.
// target itself is never modified. Overriding an *Overridden merges the two
// tables on top of the original entity.
func Override(target any, overrides map[string]any, opts ...OverrideOption) (*Overridden, error) {
	e, err := Resolve(target)
	if err != nil {
		return nil, err
	}
	var o overrideOptions
	for _, opt := range opts {
		opt(&o)
	}
	if err := validateOverrides(e, overrides); err != nil {
		return nil, err
	}

	origin, table := e, overrides
	if prev, ok := e.(*Overridden); ok {
		origin = prev.base
		table = common.Merge(prev.table, overrides)
	}
	table = common.Merge[map[string]any](nil, table)

	name := o.name
	if name == "" {
		name = origin.Name()
		if origin.Kind() == KindClass {
			name = OverriddenPrefix + name
		}
	}
	return &Overridden{
		base:  origin,
		name:  name,
		table: table,
		sig:   origin.Signature().withDefaults(table),
	}, nil
}

func validateOverrides(e Entity, overrides map[string]any) error {
	sig := e.Signature()
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entity := e.Kind().describe(e.Name())
	for _, k := range keys {
		p, ok := sig.Lookup(k)
		if !ok {
			return &ValidationError{Entity: entity, Key: k, Valid: sig.Names()}
		}
		if !p.HasDefault {
			return &RequiredParamError{Entity: entity, Key: k}
		}
		if p.Type != nil {
			if _, err := coerce(overrides[k], p.Type); err != nil {
				return &ValidationError{Entity: entity, Key: k, Valid: sig.Names(), Reason: err.Error()}
			}
		}
	}
	return nil
}

func (o *Overridden) Name() string         { return o.name }
func (o *Overridden) Kind() Kind           { return o.base.Kind() }
func (o *Overridden) Signature() Signature { return o.sig }

// Base returns the entity the overrides apply to.
func (o *Overridden) Base() Entity { return o.base }

// Overrides returns a copy of the override table.
func (o *Overridden) Overrides() map[string]any { return common.Merge[map[string]any](nil, o.table) }

func (o *Overridden) Call(args ...any) (any, error) { return o.CallKw(args, nil) }

// CallKw fills every overridden parameter the caller left unset, then
// delegates to the base entity.
func (o *Overridden) CallKw(args []any, kw map[string]any) (any, error) {
	merged := make(map[string]any, len(kw)+len(o.table))
	for k, v := range kw {
		merged[k] = v
	}
	params := o.base.Signature().params
	for i, p := range params {
		if i < len(args) {
			continue
		}
		if _, set := merged[p.Name]; set {
			continue
		}
		if v, ok := o.table[p.Name]; ok {
			merged[p.Name] = v
		}
	}
	if len(args) > len(params) {
		return o.base.CallKw(args, kw)
	}
	return o.base.CallKw(args, merged)
}
