package meta

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// state is the cursor shared by all primitive parsers. value holds the result
// of the last primitive, index is where it started.
type state struct {
	text       string
	index      int
	lastIndex  int
	valueIndex int
	key        string
	typ        VarType
	value      any
	va         *Variable
	maybeUSO   bool
	ignore     bool
}

func (s *state) peek() byte {
	if s.lastIndex < len(s.text) {
		return s.text[s.lastIndex]
	}
	return 0
}

func (s *state) eof() bool {
	return s.lastIndex >= len(s.text)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func isWord(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func (s *state) eatWhitespace() {
	for s.lastIndex < len(s.text) && isSpace(s.text[s.lastIndex]) {
		s.lastIndex++
	}
}

func (s *state) eatSameLineWhitespace() {
	for s.lastIndex < len(s.text) && s.text[s.lastIndex] != '\n' && isSpace(s.text[s.lastIndex]) {
		s.lastIndex++
	}
}

func (s *state) eatLine() {
	if i := strings.IndexByte(s.text[s.lastIndex:], '\n'); i >= 0 {
		s.lastIndex += i
	} else {
		s.lastIndex = len(s.text)
	}
}

// parseChar takes single character and following whitespace.
func (s *state) parseChar() error {
	if s.eof() {
		return eofError(s.lastIndex)
	}
	_, size := utf8.DecodeRuneInString(s.text[s.lastIndex:])
	s.index = s.lastIndex
	s.value = s.text[s.lastIndex : s.lastIndex+size]
	s.lastIndex += size
	s.eatWhitespace()
	return nil
}

// parseWord takes [\w-]+ and following whitespace.
func (s *state) parseWord() error {
	pos, end := s.lastIndex, s.lastIndex
	for end < len(s.text) && (isWord(s.text[end]) || s.text[end] == '-') {
		end++
	}
	if end == pos {
		return newError(CodeInvalidWord, pos, "Invalid word")
	}
	s.index = pos
	s.value = s.text[pos:end]
	s.lastIndex = end
	s.eatWhitespace()
	return nil
}

// parseStringToEnd takes the rest of the line, trimmed and unquoted.
func (s *state) parseStringToEnd() error {
	start := s.lastIndex
	end := len(s.text)
	if i := strings.IndexByte(s.text[start:], '\n'); i >= 0 {
		end = start + i
	}
	value := strings.TrimSpace(s.text[start:end])
	if len(value) == 0 {
		return newError(CodeMissingValue, end, "Missing value")
	}
	s.index = start
	s.value = unquote(value)
	s.lastIndex = end
	return nil
}

// parseStringUnquoted takes everything up to the next double quote with
// inner whitespace runs replaced by dashes.
func (s *state) parseStringUnquoted() {
	start := s.lastIndex
	end := len(s.text)
	if i := strings.IndexByte(s.text[start:], '"'); i >= 0 {
		end = start + i
	}
	s.index = start
	s.lastIndex = end
	s.value = strings.Join(strings.Fields(s.text[start:end]), "-")
}

// quotedEnd finds end (exclusive) of quoted string starting at pos. Escaped
// quotes are skipped, when the string is not terminated the last escaped
// quote is taken as the terminator. Single and double quoted strings must
// stay on one line, backtick quoted may span lines.
func quotedEnd(text string, pos int) int {
	q := text[pos]
	lastEscaped := -1
	for i := pos + 1; i < len(text); i++ {
		switch c := text[i]; {
		case c == q:
			return i + 1
		case c == '\\' && i+1 < len(text) && text[i+1] == q:
			lastEscaped = i + 1
			i++
		case c == '\n' && q != '`':
			if lastEscaped >= 0 {
				return lastEscaped + 1
			}
			return -1
		}
	}
	if lastEscaped >= 0 {
		return lastEscaped + 1
	}
	return -1
}

// parseString takes quoted string or a single \w+ word and following
// whitespace.
func (s *state) parseString(sameLine bool) error {
	pos := s.lastIndex
	end := -1
	switch c := s.peek(); {
	case c == '"' || c == '\'' || c == '`':
		end = quotedEnd(s.text, pos)
	case isWord(c):
		end = pos
		for end < len(s.text) && isWord(s.text[end]) {
			end++
		}
	}
	if end < 0 {
		return newError(CodeInvalidString, pos, "Invalid string")
	}
	s.index = pos
	s.value = unquote(s.text[pos:end])
	s.lastIndex = end
	if sameLine {
		s.eatSameLineWhitespace()
	} else {
		s.eatWhitespace()
	}
	return nil
}

// parseEOT takes <<<EOT ... EOT; heredoc.
func (s *state) parseEOT() error {
	pos := s.lastIndex
	const open, closing = "<<<EOT", "EOT;"
	if !strings.HasPrefix(s.text[pos:], open) {
		return newError(CodeMissingEOT, pos, "Missing EOT")
	}
	// heredoc body must not be empty
	body := pos + len(open)
	i := -1
	if body < len(s.text) {
		i = strings.Index(s.text[body+1:], closing)
	}
	if i < 0 {
		return newError(CodeMissingEOT, pos, "Missing EOT")
	}
	end := body + 1 + i
	s.index = pos
	s.value = unescapeComment(strings.TrimSpace(s.text[body:end]))
	s.lastIndex = end + len(closing)
	s.eatWhitespace()
	return nil
}

// parseNumber takes -?(\d+(\.\d+)?|\.\d+)([eE]-?\d+)? and following
// whitespace.
func (s *state) parseNumber() error {
	pos := s.lastIndex
	t := s.text
	i := pos
	if i < len(t) && t[i] == '-' {
		i++
	}
	switch {
	case i < len(t) && isDigit(t[i]):
		for i < len(t) && isDigit(t[i]) {
			i++
		}
		if i+1 < len(t) && t[i] == '.' && isDigit(t[i+1]) {
			i++
			for i < len(t) && isDigit(t[i]) {
				i++
			}
		}
	case i+1 < len(t) && t[i] == '.' && isDigit(t[i+1]):
		i++
		for i < len(t) && isDigit(t[i]) {
			i++
		}
	default:
		return newError(CodeInvalidNumber, pos, "Invalid number")
	}
	if i < len(t) && (t[i] == 'e' || t[i] == 'E') {
		j := i + 1
		if j < len(t) && t[j] == '-' {
			j++
		}
		k := j
		for k < len(t) && isDigit(t[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}
	v, err := strconv.ParseFloat(t[pos:i], 64)
	if err != nil {
		return newError(CodeInvalidNumber, pos, "Invalid number")
	}
	s.index = pos
	s.value = v
	s.lastIndex = i
	s.eatWhitespace()
	return nil
}

// jsonMember keeps object members in source order.
type jsonMember struct {
	key   string
	value any
}

type jsonObject []jsonMember

// parseJSON takes relaxed JSON value: strings may use any of the three
// quotes, bare words are limited to null, true and false.
func (s *state) parseJSON() error {
	pos := s.lastIndex
	if err := s.parseJSONValue(); err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Message = "Invalid JSON: " + pe.Message
		}
		return err
	}
	s.index = pos
	return nil
}

func (s *state) parseJSONValue() error {
	switch c := s.peek(); {
	case c == '{':
		var obj jsonObject
		s.lastIndex++
		s.eatWhitespace()
		for s.peek() != '}' {
			if s.eof() {
				return missingCharError(s.lastIndex, "}")
			}
			if err := s.parseString(false); err != nil {
				return err
			}
			key, _ := s.value.(string)
			if s.peek() != ':' {
				return missingCharError(s.lastIndex, ":")
			}
			s.lastIndex++
			s.eatWhitespace()
			if err := s.parseJSONValue(); err != nil {
				return err
			}
			obj = append(obj, jsonMember{key: key, value: s.value})
			if s.peek() == ',' {
				s.lastIndex++
				s.eatWhitespace()
			} else if s.peek() != '}' {
				return missingCharError(s.lastIndex, ",", "}")
			}
		}
		s.lastIndex++
		s.eatWhitespace()
		s.value = obj
	case c == '[':
		arr := []any{}
		s.lastIndex++
		s.eatWhitespace()
		for s.peek() != ']' {
			if s.eof() {
				return missingCharError(s.lastIndex, "]")
			}
			if err := s.parseJSONValue(); err != nil {
				return err
			}
			arr = append(arr, s.value)
			if s.peek() == ',' {
				s.lastIndex++
				s.eatWhitespace()
			} else if s.peek() != ']' {
				return missingCharError(s.lastIndex, ",", "]")
			}
		}
		s.lastIndex++
		s.eatWhitespace()
		s.value = arr
	case c == '"' || c == '\'' || c == '`':
		return s.parseString(false)
	case c == '-' || c == '.' || isDigit(c):
		return s.parseNumber()
	default:
		if err := s.parseWord(); err != nil {
			return err
		}
		switch word := s.value.(string); word {
		case "null":
			s.value = nil
		case "true":
			s.value = true
		case "false":
			s.value = false
		default:
			return newError(CodeUnknownJSONLiteral, s.index, "Unknown literal '"+word+"'", word)
		}
	}
	return nil
}

func unescapeComment(s string) string {
	return strings.ReplaceAll(s, `*\/`, `*/`)
}

// unquote removes matching quotes and decodes JSON style escapes. Unquoted
// text only gets comment terminators unescaped.
func unquote(s string) string {
	if len(s) == 0 {
		return s
	}
	q := s[0]
	if q != s[len(s)-1] || (q != '"' && q != '\'' && q != '`') {
		return unescapeComment(s)
	}
	if len(s) < 2 {
		return ""
	}
	inner := s[1 : len(s)-1]
	var b strings.Builder
	b.Grow(len(inner))
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c != '\\' || i+1 >= len(inner) {
			b.WriteByte(c)
			continue
		}
		switch n := inner[i+1]; n {
		case q, '\\', '/':
			b.WriteByte(n)
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'u':
			if i+6 <= len(inner) {
				if r, err := strconv.ParseUint(inner[i+2:i+6], 16, 16); err == nil {
					b.WriteRune(rune(r))
					i += 5
					continue
				}
			}
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
