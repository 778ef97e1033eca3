// Package preproc implements variable substitution engines run around the
// section parser.
package preproc

import (
	"context"

	"go.uber.org/zap"

	"ucc/meta"
	"ucc/mozdoc"
)

// Engine names as used by @preprocessor.
const (
	NameDefault = "default"
	NameStylus  = "stylus"
	NameLess    = "less"
	NameUso     = "uso"
)

// Engine is a preprocessor. Engines may additionally implement Preprocessor
// and/or Postprocessor.
type Engine interface {
	Name() string
}

// Preprocessor transforms source before it is split into sections.
type Preprocessor interface {
	Pre(ctx context.Context, source string, vars Values) (string, error)
}

// Postprocessor transforms sections after parsing. It must not reorder them.
type Postprocessor interface {
	Post(sections []mozdoc.Section, vars Values) []mozdoc.Section
}

// Value is a variable reduced to the text substituted into the source.
type Value struct {
	Name  string
	Type  meta.VarType
	Value string
}

// Values keeps declaration order.
type Values []Value

// Lookup returns value of the named variable.
func (vs Values) Lookup(name string) (Value, bool) {
	for _, v := range vs {
		if v.Name == name {
			return v, true
		}
	}
	return Value{}, false
}

// SimplifyVars resolves effective values: options are replaced by their
// values, numbers get their units. Source variables are left untouched.
func SimplifyVars(vars *meta.Vars) Values {
	res := make(Values, 0, vars.Len())
	for name, va := range vars.All() {
		value := va.Effective()
		switch {
		case va.Type.HasOptions():
			if o, ok := va.Option(value); ok {
				value = o.Value
			}
		case va.Type.Numeric():
			value += va.Units
		}
		res = append(res, Value{Name: name, Type: va.Type, Value: value})
	}
	return res
}

// Registry selects engine by preprocessor name.
type Registry struct {
	log     *zap.Logger
	engines map[string]Engine
}

// NewRegistry creates registry with all known engines. Stylus and Less
// engines use supplied renderers, nil renderer makes the engine fail.
func NewRegistry(log *zap.Logger, stylus, less Renderer) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("preproc")
	r := &Registry{log: log, engines: make(map[string]Engine)}
	for _, e := range []Engine{
		&Default{},
		&Stylus{log: log.Named(NameStylus), renderer: stylus},
		&Less{log: log.Named(NameLess), renderer: less},
		&Uso{log: log.Named(NameUso)},
	} {
		r.engines[e.Name()] = e
	}
	return r
}

// Get returns engine for the name. Empty and unknown names fall back to
// default engine, ok is false only for unknown non-empty names.
func (r *Registry) Get(name string) (e Engine, ok bool) {
	if e, ok := r.engines[name]; ok {
		return e, true
	}
	return r.engines[NameDefault], len(name) == 0
}
