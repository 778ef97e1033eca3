package mozdoc

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var argEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// ToCSS formats sections back into a single stylesheet. Global sections are
// written as is, others are wrapped into @-moz-document blocks.
func ToCSS(sections []Section) string {
	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n\n")
		}
		funcs := 0
		for _, fn := range functions {
			for _, v := range *sec.target(fn) {
				if funcs == 0 {
					b.WriteString("@-moz-document ")
				} else {
					b.WriteString(", ")
				}
				b.WriteString(fn + `("` + argEscaper.Replace(v) + `")`)
				funcs++
			}
		}
		if funcs == 0 {
			b.WriteString(sec.Code)
			continue
		}
		b.WriteString(" {\n" + sec.Code + "\n}")
	}
	return b.String()
}

// CodeEmpty reports whether code has nothing but whitespace, comments and
// @charset or @namespace statements.
func CodeEmpty(code string) bool {
	return preamble(code, false) == len(code)
}

// PreambleLen returns length of the leading part of code which has to stay
// first: whitespace, comments, @charset, @namespace and @import statements.
func PreambleLen(code string) int {
	return preamble(code, true)
}

func preamble(code string, imports bool) int {
	lex := css.NewLexer(parse.NewInputString(code))
	pos, end := 0, 0
	// statement in progress
	inStatement := false
	for {
		tt, data := lex.Next()
		start := pos
		pos += len(data)
		switch tt {
		case css.ErrorToken:
			if inStatement {
				return end
			}
			return len(code)
		case css.WhitespaceToken, css.CommentToken:
			if !inStatement {
				end = pos
			}
		case css.AtKeywordToken:
			if inStatement {
				continue
			}
			if !bytes.EqualFold(data, []byte("@charset")) && !bytes.EqualFold(data, []byte("@namespace")) &&
				!(imports && bytes.EqualFold(data, []byte("@import"))) {
				return start
			}
			inStatement = true
		case css.SemicolonToken:
			if !inStatement {
				return start
			}
			inStatement = false
			end = pos
		case css.LeftBraceToken, css.RightBraceToken:
			return end
		default:
			if !inStatement {
				return start
			}
		}
	}
}
