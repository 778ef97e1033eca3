package mozdoc

import (
	"bytes"
	"io"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type eventKind int

const (
	evStartDocument eventKind = iota
	evEndDocument
	evEndStylesheet
	evError
)

// docFunc is a single condition of @-moz-document prelude.
type docFunc struct {
	name string
	arg  string
}

// event is produced by scanner for the section parser. For start of document
// offset points to the at-keyword and brace to the opening brace, for end of
// document offset points to the closing brace.
type event struct {
	kind   eventKind
	offset int
	brace  int
	funcs  []docFunc
	msg    string
}

type token struct {
	tt    css.TokenType
	data  []byte
	start int
}

// scanner drives CSS lexer keeping track of byte offsets and of the brace
// depth at which every open @-moz-document block started.
type scanner struct {
	src    string
	lex    *css.Lexer
	pos    int
	depth  int
	docs   []int
	peeked *token
}

func (s *scanner) next() token {
	if s.peeked != nil {
		t := *s.peeked
		s.peeked = nil
		return t
	}
	tt, data := s.lex.Next()
	t := token{tt: tt, data: data, start: s.pos}
	s.pos += len(data)
	return t
}

func (s *scanner) unread(t token) {
	s.peeked = &t
}

// docDepth is the brace depth at which @-moz-document is recognized.
func (s *scanner) docDepth() int {
	if n := len(s.docs); n > 0 {
		return s.docs[n-1]
	}
	return 0
}

// scan returns sequence of events for src. Sequence always ends with
// evEndStylesheet.
func scan(src string) iter.Seq[event] {
	return func(yield func(event) bool) {
		s := &scanner{src: src, lex: css.NewLexer(parse.NewInputString(src))}
		for {
			t := s.next()
			switch t.tt {
			case css.ErrorToken:
				if err := s.lex.Err(); err != nil && err != io.EOF {
					if !yield(event{kind: evError, offset: t.start, msg: err.Error()}) {
						return
					}
				}
				if len(s.docs) > 0 {
					if !yield(event{kind: evError, offset: len(src), msg: "Expected '}' to close @-moz-document block"}) {
						return
					}
				}
				yield(event{kind: evEndStylesheet, offset: len(src)})
				return
			case css.LeftBraceToken:
				s.depth++
			case css.RightBraceToken:
				switch {
				case len(s.docs) > 0 && s.docs[len(s.docs)-1] == s.depth:
					s.docs = s.docs[:len(s.docs)-1]
					s.depth--
					if !yield(event{kind: evEndDocument, offset: t.start}) {
						return
					}
				case s.depth == 0:
					if !yield(event{kind: evError, offset: t.start, msg: "Unexpected '}'"}) {
						return
					}
				default:
					s.depth--
				}
			case css.AtKeywordToken:
				if isDocumentRule(t.data) && s.depth == s.docDepth() {
					if !s.document(t.start, yield) {
						return
					}
				}
			case css.BadStringToken:
				if !yield(event{kind: evError, offset: t.start, msg: "Unterminated string"}) {
					return
				}
			case css.BadURLToken:
				if !yield(event{kind: evError, offset: t.start, msg: "Malformed url()"}) {
					return
				}
			case css.CommentToken:
				if !bytes.HasSuffix(t.data, []byte("*/")) || len(t.data) < 4 {
					if !yield(event{kind: evError, offset: t.start, msg: "Unterminated comment"}) {
						return
					}
				}
			}
		}
	}
}

func isDocumentRule(kw []byte) bool {
	return bytes.EqualFold(kw, []byte("@-moz-document")) || bytes.EqualFold(kw, []byte("@document"))
}

// document consumes prelude of @-moz-document rule started at offset at.
// Malformed or unknown conditions are reported and skipped, rule without
// opening brace is reported and dropped.
func (s *scanner) document(at int, yield func(event) bool) bool {
	var funcs []docFunc
	expectFunc := true
	for {
		t := s.next()
		switch t.tt {
		case css.WhitespaceToken, css.CommentToken:
		case css.URLToken:
			if !expectFunc {
				if !yield(event{kind: evError, offset: t.start, msg: "Expected ',' between @-moz-document functions"}) {
					return false
				}
			}
			expectFunc = false
			funcs = append(funcs, docFunc{name: FuncURL, arg: urlArgument(string(t.data))})
		case css.FunctionToken:
			if !expectFunc {
				if !yield(event{kind: evError, offset: t.start, msg: "Expected ',' between @-moz-document functions"}) {
					return false
				}
			}
			expectFunc = false
			name := strings.ToLower(string(t.data[:len(t.data)-1]))
			raw, ok := s.arguments()
			if !ok {
				if !yield(event{kind: evError, offset: t.start, msg: "Expected ')' to close " + name + "()"}) {
					return false
				}
				continue
			}
			if fn := (&Section{}).target(name); fn == nil {
				if !yield(event{kind: evError, offset: t.start, msg: "Unknown @-moz-document function '" + name + "'"}) {
					return false
				}
				continue
			}
			funcs = append(funcs, docFunc{name: name, arg: functionArgument(name, raw)})
		case css.CommaToken:
			if expectFunc {
				if !yield(event{kind: evError, offset: t.start, msg: "Unexpected ','"}) {
					return false
				}
			}
			expectFunc = true
		case css.LeftBraceToken:
			s.depth++
			s.docs = append(s.docs, s.depth)
			return yield(event{kind: evStartDocument, offset: at, brace: t.start, funcs: funcs})
		case css.SemicolonToken:
			return yield(event{kind: evError, offset: t.start, msg: "Expected '{' after @-moz-document"})
		case css.RightBraceToken, css.ErrorToken:
			s.unread(t)
			return yield(event{kind: evError, offset: t.start, msg: "Expected '{' after @-moz-document"})
		default:
			if !yield(event{kind: evError, offset: t.start, msg: "Unexpected '" + string(t.data) + "' in @-moz-document"}) {
				return false
			}
		}
	}
}

// arguments consumes function arguments up to the matching parenthesis and
// returns their raw text.
func (s *scanner) arguments() (string, bool) {
	start, level := s.pos, 0
	if s.peeked != nil {
		start = s.peeked.start
	}
	for {
		t := s.next()
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken:
			level++
		case css.RightParenthesisToken:
			if level == 0 {
				return s.src[start:t.start], true
			}
			level--
		case css.LeftBraceToken, css.RightBraceToken, css.SemicolonToken, css.ErrorToken:
			s.unread(t)
			return "", false
		}
	}
}

var reSingleEscapes = regexp.MustCompile(`(?:[^\\]|^)\\(?:[^\\]|$)`)

// functionArgument returns value of the condition. Quoted strings are
// unescaped except regexp arguments with single backslashes which are taken
// verbatim since CSS unescaping would eat them.
func functionArgument(name, raw string) string {
	raw = strings.TrimSpace(raw)
	if !isQuoted(raw) {
		return raw
	}
	if name == FuncRegexp && reSingleEscapes.MatchString(raw) {
		return raw[1 : len(raw)-1]
	}
	return unquote(raw)
}

// urlArgument extracts value of url(...) token.
func urlArgument(tok string) string {
	i := strings.IndexByte(tok, '(')
	inner := strings.TrimSuffix(tok[i+1:], ")")
	inner = strings.TrimSpace(inner)
	if isQuoted(inner) {
		return unquote(inner)
	}
	return unescape(inner)
}

func isQuoted(s string) bool {
	return len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0]
}

func unquote(s string) string {
	return unescape(s[1 : len(s)-1])
}

// unescape decodes CSS escapes: escaped newline is dropped, hex escape takes
// up to 6 digits and one optional whitespace, anything else stands for
// itself.
func unescape(s string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			break
		}
		switch n := s[i+1]; {
		case n == '\n':
			i++
		case n == '\r':
			i++
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case isHex(n):
			j := i + 1
			for j < len(s) && j < i+7 && isHex(s[j]) {
				j++
			}
			cp, _ := strconv.ParseUint(s[i+1:j], 16, 32)
			r := rune(cp)
			if r == 0 || !utf8.ValidRune(r) {
				r = utf8.RuneError
			}
			b.WriteRune(r)
			if j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n') {
				j++
			}
			i = j - 1
		default:
			_, size := utf8.DecodeRuneInString(s[i+1:])
			b.WriteString(s[i+1 : i+1+size])
			i += size
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
