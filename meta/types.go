package meta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"slices"
)

// VarType is the kind of user configurable variable.
type VarType string

const (
	VarCheckbox VarType = "checkbox"
	VarColor    VarType = "color"
	VarDropdown VarType = "dropdown"
	VarImage    VarType = "image"
	VarNumber   VarType = "number"
	VarRange    VarType = "range"
	VarSelect   VarType = "select"
	VarText     VarType = "text"
)

// HasOptions reports whether variables of this type choose among options.
func (t VarType) HasOptions() bool {
	return t == VarSelect || t == VarDropdown || t == VarImage
}

// Numeric reports whether variables of this type hold numbers with units.
func (t VarType) Numeric() bool {
	return t == VarNumber || t == VarRange
}

type Option struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// Variable is a single declared user variable. Value stays nil until user
// overrides it, effective value falls back to Default.
type Variable struct {
	Type    VarType  `json:"type"`
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Value   *string  `json:"value"`
	Default string   `json:"default"`
	Options []Option `json:"options,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Step    *float64 `json:"step,omitempty"`
	Units   string   `json:"units,omitempty"`
}

// Effective returns user value if set or default otherwise.
func (v *Variable) Effective() string {
	if v.Value != nil {
		return *v.Value
	}
	return v.Default
}

// SetValue sets user value.
func (v *Variable) SetValue(val string) {
	v.Value = &val
}

// Option returns option with given name.
func (v *Variable) Option(name string) (Option, bool) {
	for _, o := range v.Options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

// Clone returns deep copy of the variable.
func (v *Variable) Clone() *Variable {
	c := *v
	if v.Value != nil {
		val := *v.Value
		c.Value = &val
	}
	c.Options = slices.Clone(v.Options)
	c.Min, c.Max, c.Step = cloneFloat(v.Min), cloneFloat(v.Max), cloneFloat(v.Step)
	return &c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

// Vars keeps variables in declaration order. Declaring a name again replaces
// the variable but keeps its original position. Zero value is ready to use,
// nil *Vars behaves as empty for reading.
type Vars struct {
	order  []string
	byName map[string]*Variable
}

func NewVars(vars ...*Variable) *Vars {
	v := &Vars{}
	for _, va := range vars {
		v.Set(va)
	}
	return v
}

func (v *Vars) Set(va *Variable) {
	if v.byName == nil {
		v.byName = make(map[string]*Variable)
	}
	if _, ok := v.byName[va.Name]; !ok {
		v.order = append(v.order, va.Name)
	}
	v.byName[va.Name] = va
}

func (v *Vars) Get(name string) (*Variable, bool) {
	if v == nil {
		return nil, false
	}
	va, ok := v.byName[name]
	return va, ok
}

func (v *Vars) Len() int {
	if v == nil {
		return 0
	}
	return len(v.order)
}

// All iterates over variables in declaration order.
func (v *Vars) All() iter.Seq2[string, *Variable] {
	return func(yield func(string, *Variable) bool) {
		if v == nil {
			return
		}
		for _, name := range v.order {
			if !yield(name, v.byName[name]) {
				return
			}
		}
	}
}

// Names returns variable names in declaration order.
func (v *Vars) Names() []string {
	if v == nil {
		return nil
	}
	return slices.Clone(v.order)
}

// Clone returns deep copy.
func (v *Vars) Clone() *Vars {
	if v == nil {
		return nil
	}
	c := &Vars{}
	for _, va := range v.All() {
		c.Set(va.Clone())
	}
	return c
}

// MarshalJSON writes variables as JSON object preserving declaration order.
func (v *Vars) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	buf := new(bytes.Buffer)
	buf.WriteByte('{')
	for i, name := range v.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.byName[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads JSON object keeping key order.
func (v *Vars) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("vars must be a JSON object")
	}
	*v = Vars{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v in vars", tok)
		}
		va := &Variable{}
		if err := dec.Decode(va); err != nil {
			return fmt.Errorf("unable to decode variable %q: %w", name, err)
		}
		va.Name = name
		v.Set(va)
	}
	_, err = dec.Token()
	return err
}

// Metadata is parsed ==UserStyle== block.
type Metadata struct {
	Name         string `json:"name"`
	Namespace    string `json:"namespace"`
	Version      string `json:"version"`
	Author       string `json:"author,omitempty"`
	Description  string `json:"description,omitempty"`
	HomepageURL  string `json:"homepageURL,omitempty"`
	SupportURL   string `json:"supportURL,omitempty"`
	UpdateURL    string `json:"updateURL,omitempty"`
	License      string `json:"license,omitempty"`
	Preprocessor string `json:"preprocessor,omitempty"`
	Vars         *Vars  `json:"vars,omitempty"`
}

// field returns pointer to the string field for the metadata key.
func (m *Metadata) field(key string) *string {
	switch key {
	case "name":
		return &m.Name
	case "namespace":
		return &m.Namespace
	case "version":
		return &m.Version
	case "author":
		return &m.Author
	case "description":
		return &m.Description
	case "homepageURL":
		return &m.HomepageURL
	case "supportURL":
		return &m.SupportURL
	case "updateURL":
		return &m.UpdateURL
	case "license":
		return &m.License
	case "preprocessor":
		return &m.Preprocessor
	}
	return nil
}
