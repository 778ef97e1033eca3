package mozdoc

import (
	"fmt"
	"regexp"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// boilerplate namespace some legacy tools put into every section
const xhtmlNamespace = "@namespace url(http://www.w3.org/1999/xhtml);"

// comments with these markers stay in the enclosing section
const (
	agentSheet = "AGENT_SHEET"
	keepMarker = "=="
)

var (
	reMeta      = regexp.MustCompile(`(?i)/\*!?\s*==userstyle==[\s\S]*?==/userstyle==\s*\*/`)
	reAtLine    = regexp.MustCompile(` at line \d+.*$`)
)

// SyntaxError describes problem found in the source. Parsing continues after
// any of them.
type SyntaxError struct {
	Line    int
	Col     int
	Offset  int
	Message string
	// Context is a piece of source line around the problem.
	Context string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d %s", e.Line, e.Col, e.Message)
}

// Parser extracts sections from CSS with @-moz-document blocks.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new section parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("mozdoc")}
}

type frame struct {
	sec   Section
	start int
}

// Parse splits code into sections in source order. Code between blocks
// becomes global sections, comments right before a block are moved inside
// of it. Syntax errors are combined into returned error, sections found so
// far are returned with it.
func (p *Parser) Parse(code string) ([]Section, error) {
	src := reMeta.ReplaceAllStringFunc(code, blank)

	var (
		sections []Section
		errs     error
	)
	add := func(sec Section) {
		sec.Code = strings.TrimSpace(sec.Code)
		if len(sec.Code) == 0 && sec.Global() {
			return
		}
		if sec.Code == xhtmlNamespace {
			return
		}
		sections = append(sections, sec)
	}

	stack := []*frame{{}}
	for ev := range scan(src) {
		top := stack[len(stack)-1]
		switch ev.kind {
		case evStartDocument:
			outer := src[top.start:ev.offset]
			run := commentRun(outer)
			cmt := outer[run:]
			f := &frame{start: ev.brace + 1}

			emit := len(strings.TrimSpace(outer)) > 0
			if !strings.Contains(cmt, agentSheet) && !strings.Contains(cmt, keepMarker) {
				if len(cmt) > 0 {
					f.sec.Code = cmt + "\n"
					outer = outer[:run]
				}
				emit = len(strings.TrimSpace(outer)) > 0
			} else if len(strings.TrimSpace(outer[:run])) == 0 {
				// nothing but the marker comment
				emit = false
			}
			if emit {
				sec := top.sec.Clone()
				sec.Code += outer
				add(sec)
				top.sec.Code = ""
			}

			for _, fn := range ev.funcs {
				t := f.sec.target(fn.name)
				*t = append(*t, fn.arg)
			}
			stack = append(stack, f)
		case evEndDocument:
			stack = stack[:len(stack)-1]
			top.sec.Code += src[top.start:ev.offset]
			stack[len(stack)-1].start = ev.offset + 1
			add(top.sec)
		case evEndStylesheet:
			top.sec.Code += src[top.start:]
			for _, f := range stack {
				add(f.sec)
			}
		case evError:
			errs = multierr.Append(errs, newSyntaxError(src, ev.offset, ev.msg))
		}
	}

	if errs != nil {
		p.log.Debug("Sections parsed with errors", zap.Int("sections", len(sections)), zap.Error(errs))
	} else {
		p.log.Debug("Sections parsed", zap.Int("sections", len(sections)))
	}
	return sections, errs
}

// Parse is a shortcut for parsing without logging.
func Parse(code string) ([]Section, error) {
	return NewParser(nil).Parse(code)
}

// commentRun returns start of the run of comments (possibly separated by
// whitespace) which ends the text, or len(text) when text does not end with
// a comment.
func commentRun(text string) int {
	run := -1
	for i := 0; i < len(text); {
		switch c := text[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f':
			i++
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				return len(text)
			}
			if run < 0 {
				run = i
			}
			i += 2 + end + 2
		default:
			run = -1
			i++
		}
	}
	if run < 0 {
		return len(text)
	}
	return run
}

// blank replaces everything except line breaks with spaces so positions of
// the following text are kept.
func blank(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c != '\n' && c != '\r' {
			b[i] = ' '
		}
	}
	return string(b)
}

func newSyntaxError(src string, offset int, msg string) *SyntaxError {
	line, col, _ := parse.Position(strings.NewReader(src), offset)
	return &SyntaxError{
		Line:    line,
		Col:     col,
		Offset:  offset,
		Message: reAtLine.ReplaceAllString(msg, ""),
		Context: errorContext(src, offset),
	}
}

// errorContext returns up to 100 characters of the line around offset, at
// least 5 characters before it are shown even when they are on previous
// line.
func errorContext(src string, i int) string {
	const (
		minShow = 5
		maxShow = 100
	)
	from := max(i-minShow, 0)
	a := max(strings.LastIndexByte(src[:min(from+1, len(src))], '\n')+1, i-maxShow, 0)
	search := i + minShow
	if i-a > minShow {
		search = i
	}
	b := len(src)
	if search < len(src) {
		if n := strings.IndexByte(src[search:], '\n'); n >= 0 {
			b = search + n + 1
		}
	}
	b = min(b, i+maxShow, len(src))
	if a >= b {
		return ""
	}
	return strings.TrimSpace(src[a:b])
}
