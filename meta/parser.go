package meta

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"
)

// Preprocessors lists known values of @preprocessor.
var Preprocessors = []string{"default", "uso", "stylus", "less"}

var mandatoryKeys = []string{"name", "namespace", "version"}

// keys with simple single line values, in the order used for suggestions.
var knownKeys = []string{
	"name", "version", "namespace", "author", "description",
	"homepageURL", "supportURL", "updateURL", "license", "preprocessor",
}

const (
	keyVar      = "var"
	keyAdvanced = "advanced"
)

type varParser func(s *state) error

// varParsers maps variable type to the parser of its value spec. Some types
// are only allowed with one of @var or @advanced.
func varParserFor(typ VarType, key string) varParser {
	switch typ {
	case VarText, VarColor:
		return (*state).parseStringToEnd
	case VarCheckbox:
		return (*state).parseChar
	case VarSelect:
		return (*state).parseSelect
	case VarDropdown:
		if key == keyAdvanced {
			return (*state).parseVarXStyle
		}
	case VarImage:
		if key == keyAdvanced {
			return (*state).parseVarXStyle
		}
		return (*state).parseSelect
	case VarNumber, VarRange:
		return (*state).parseRange
	}
	return nil
}

// Parse parses ==UserStyle== block and returns resulting metadata or the first
// problem encountered. indexOffset is added to positions of reported errors.
func Parse(text string, indexOffset int) (*Metadata, error) {
	md, errs := parse(text, false)
	if len(errs) > 0 {
		return nil, shift(errs[0], indexOffset)
	}
	return md, nil
}

// Lint parses metadata block reporting every problem found rather than the
// first one, unknown keys are reported too. Metadata is returned even when
// there are errors.
func Lint(text string, indexOffset int) (*Metadata, error) {
	md, errs := parse(text, true)
	var err error
	for _, e := range errs {
		err = multierr.Append(err, shift(e, indexOffset))
	}
	return md, err
}

func shift(err *ParseError, offset int) *ParseError {
	if err.Index >= 0 {
		err.Index += offset
	}
	return err
}

func parse(text string, lint bool) (*Metadata, []*ParseError) {
	if strings.IndexByte(text, '\r') >= 0 {
		return nil, []*ParseError{newError(CodeInvalidCharacter, noIndex, `metadata includes invalid character: '\r'`, `\r`)}
	}

	md := &Metadata{}
	s := &state{text: text}
	var errs []*ParseError

	for pos := 0; pos < len(text); {
		at := strings.IndexByte(text[pos:], '@')
		if at < 0 {
			break
		}
		at += pos
		end := at + 1
		for end < len(text) && (isWord(text[end]) || text[end] == '-') {
			end++
		}
		if end == at+1 {
			pos = end
			continue
		}
		s.index, s.lastIndex = at, end
		s.key = text[at+1 : end]
		s.ignore = false
		s.eatSameLineWhitespace()

		var err error
		if s.key == keyVar || s.key == keyAdvanced {
			err = s.parseVar(md)
		} else {
			err = s.parseKey(lint)
		}
		if err == nil && s.key != keyVar && s.key != keyAdvanced && !s.ignore {
			if f := md.field(s.key); f != nil {
				*f, _ = s.value.(string)
			}
		}
		if err != nil {
			pe, ok := err.(*ParseError)
			if !ok {
				pe = newError(CodeInvalidCharacter, s.index, err.Error())
			}
			if pe.Index == noIndex {
				pe.Index = s.index
			}
			errs = append(errs, pe)
			if !lint {
				return nil, errs
			}
		}
		pos = max(s.lastIndex, end)
	}

	if s.maybeUSO && len(md.Preprocessor) == 0 {
		md.Preprocessor = "uso"
	}

	var missing []string
	for _, k := range mandatoryKeys {
		if len(*md.field(k)) == 0 {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		at := make([]string, 0, len(missing))
		for _, k := range missing {
			at = append(at, "@"+k)
		}
		errs = append(errs, newError(CodeMissingMandatory, noIndex, "Missing metadata: "+strings.Join(at, ", "), missing...))
	}
	return md, errs
}

func (s *state) parseKey(lint bool) error {
	known := false
	for _, k := range knownKeys {
		if k == s.key {
			known = true
			break
		}
	}
	if !known {
		s.eatLine()
		s.ignore = true
		if !lint {
			return nil
		}
		maxEdit := math.Log2(float64(len(s.key)))
		for _, k := range append(knownKeys, keyAdvanced, keyVar) {
			if withinEdits(k, s.key, maxEdit) {
				return newError(CodeUnknownMeta, s.index, "Unknown metadata: @"+s.key+", did you mean @"+k+"?", s.key, k)
			}
		}
		return newError(CodeUnknownMeta, s.index, "Unknown metadata: @"+s.key, s.key)
	}

	s.valueIndex = s.lastIndex
	if err := s.parseStringToEnd(); err != nil {
		return err
	}
	value, _ := s.value.(string)
	var err error
	switch s.key {
	case "version":
		value, err = validateVersion(value)
	case "homepageURL", "supportURL", "updateURL":
		err = validateURL(value)
	case "preprocessor":
		err = validatePreprocessor(value)
	}
	if err != nil {
		pe := err.(*ParseError)
		pe.Index = s.valueIndex
		return pe
	}
	s.value = value
	return nil
}

func (s *state) parseVar(md *Metadata) error {
	va := &Variable{}
	s.va = va

	if err := s.parseWord(); err != nil {
		return err
	}
	s.typ = VarType(s.value.(string))
	va.Type = s.typ

	doParse := varParserFor(s.typ, s.key)
	if doParse == nil {
		return newError(CodeUnknownVarType, s.index, "Unknown @"+s.key+" type: "+string(s.typ), s.key, string(s.typ))
	}

	if err := s.parseWord(); err != nil {
		return err
	}
	va.Name = s.value.(string)

	if err := s.parseString(true); err != nil {
		return err
	}
	va.Label = s.value.(string)

	s.valueIndex = s.lastIndex
	if err := doParse(s); err != nil {
		return err
	}

	var def string
	switch v := s.value.(type) {
	case string:
		def = v
	case float64:
		def = formatNumber(v)
	case nil:
		if va.Type.Numeric() {
			return newError(CodeInvalidRangeDefault, s.valueIndex, "the default value of @var "+string(va.Type)+" must be a number", string(va.Type))
		}
	}
	def, err := validateVar(va, def)
	if err != nil {
		pe := err.(*ParseError)
		if pe.Index == noIndex {
			pe.Index = s.valueIndex
		}
		return pe
	}
	va.Default = def

	if md.Vars == nil {
		md.Vars = NewVars()
	}
	md.Vars.Set(va)
	if s.key == keyAdvanced {
		s.maybeUSO = true
	}
	return nil
}

var rangeProps = []string{"default", "min", "max", "step"}

func (s *state) parseRange() error {
	if err := s.parseJSON(); err != nil {
		return err
	}
	typ := string(s.typ)
	switch v := s.value.(type) {
	case float64:
		return nil
	case []any:
		var props [4]*float64
		units, haveUnits, i := "", false, 0
		for _, item := range v {
			switch x := item.(type) {
			case string:
				if haveUnits {
					return newError(CodeInvalidRangeMultipleUnits, s.valueIndex, "units is already defined", typ)
				}
				units, haveUnits = x, true
			case float64, nil:
				if i >= len(rangeProps) {
					return newError(CodeInvalidRangeTooManyValues, s.valueIndex, "the array contains too many values", typ)
				}
				if f, ok := x.(float64); ok {
					props[i] = &f
				}
				i++
			default:
				return newError(CodeInvalidRangeValue, s.valueIndex, "value must be number, string, or null", typ)
			}
		}
		s.va.Min, s.va.Max, s.va.Step, s.va.Units = props[1], props[2], props[3], units
		if props[0] != nil {
			s.value = *props[0]
		} else {
			s.value = nil
		}
		return nil
	}
	return newError(CodeInvalidRange, s.valueIndex, "the default value must be an array or a number", typ)
}

func (s *state) parseSelect() error {
	if err := s.parseJSON(); err != nil {
		return err
	}
	var options []Option
	switch v := s.value.(type) {
	case []any:
		for _, item := range v {
			label, ok := item.(string)
			if !ok {
				return newError(CodeInvalidSelectValue, noIndex, "Values in the object/array must be strings")
			}
			o, err := createOption(label, nil)
			if err != nil {
				return err
			}
			options = append(options, o)
		}
	case jsonObject:
		for _, m := range v {
			o, err := createOption(m.key, m.value)
			if err != nil {
				return err
			}
			options = append(options, o)
		}
	default:
		return newError(CodeInvalidSelect, noIndex, "The value must be an array or object")
	}
	return s.setOptions(options)
}

// setOptions checks option list and takes the default option name as value.
func (s *state) setOptions(options []Option) error {
	if len(options) == 0 {
		return newError(CodeInvalidSelectEmptyOptions, noIndex, "Option list is empty")
	}
	seen := make(map[string]bool, len(options))
	def := -1
	for i, o := range options {
		if seen[o.Name] {
			return newError(CodeInvalidSelectNameDuplicated, noIndex, "Option name is duplicated")
		}
		seen[o.Name] = true
		if o.IsDefault {
			if def >= 0 {
				return newError(CodeInvalidSelectMultipleDefaults, noIndex, "multiple default values")
			}
			def = i
		}
		options[i].IsDefault = false
	}
	s.va.Options = options
	s.value = options[max(def, 0)].Name
	return nil
}

func createOption(label string, value any) (Option, error) {
	var val string
	switch v := value.(type) {
	case nil:
	case string:
		val = v
	default:
		return Option{}, newError(CodeInvalidSelectValue, noIndex, "Values in the object/array must be strings")
	}

	isDefault := false
	if strings.HasSuffix(label, "*") {
		isDefault = true
		label = label[:len(label)-1]
	}

	name := ""
	if i := strings.IndexByte(label, ':'); i > 0 && isWordString(label[:i]) {
		name, label = label[:i], label[i+1:]
	}
	if len(name) == 0 {
		name = label
	}
	if len(label) == 0 {
		return Option{}, newError(CodeInvalidSelectLabel, noIndex, "Option label is empty")
	}
	if value == nil {
		val = name
	}
	return Option{Name: name, Label: label, Value: val, IsDefault: isDefault}, nil
}

func isWordString(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isWord(s[i]) {
			return false
		}
	}
	return len(s) > 0
}

// parseVarXStyle parses xStyle option list:
//
//	{
//	  name "Label" "value"
//	  name2 "Label 2*" <<<EOT multi
//	  line value EOT;
//	}
func (s *state) parseVarXStyle() error {
	pos := s.lastIndex
	if s.peek() != '{' {
		return missingCharError(pos, "{")
	}
	var options []Option
	s.lastIndex++
	for {
		s.eatWhitespace()
		if s.peek() == '}' {
			break
		}
		if s.eof() {
			return missingCharError(s.lastIndex, "}")
		}
		var o Option
		s.parseStringUnquoted()
		o.Name = s.value.(string)

		if err := s.parseString(false); err != nil {
			return err
		}
		o.Label = s.value.(string)
		if strings.HasSuffix(o.Label, "*") {
			o.IsDefault = true
			o.Label = o.Label[:len(o.Label)-1]
		}

		var err error
		if strings.HasPrefix(s.text[s.lastIndex:], "<<<EOT") {
			err = s.parseEOT()
		} else {
			err = s.parseString(false)
		}
		if err != nil {
			return err
		}
		o.Value = s.value.(string)
		options = append(options, o)

		if s.peek() == ';' {
			s.lastIndex++
		}
	}
	s.lastIndex++
	s.eatWhitespace()

	if len(options) == 0 {
		return newError(CodeInvalidSelectEmptyOptions, pos, "Option list is empty")
	}
	if s.typ == VarDropdown {
		s.typ = VarSelect
		s.va.Type = VarSelect
	}
	if err := s.setOptions(options); err != nil {
		if pe := err.(*ParseError); pe.Index == noIndex {
			pe.Index = pos
		}
		return err
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// withinEdits reports whether Levenshtein distance between a and b does not
// exceed maxEdit.
func withinEdits(a, b string, maxEdit float64) bool {
	la, lb := len(a), len(b)
	if math.Abs(float64(la-lb)) > maxEdit {
		return false
	}
	prev := make([]int, la+1)
	cur := make([]int, la+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= lb; i++ {
		cur[0] = i
		best := i
		for j := 1; j <= la; j++ {
			cost := 1
			if a[j-1] == b[i-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			best = min(best, cur[j])
		}
		if float64(best) > maxEdit {
			return false
		}
		prev, cur = cur, prev
	}
	return float64(prev[la]) <= maxEdit
}
