package preproc

import (
	"strings"

	"ucc/mozdoc"
)

// Default does not touch the source, variables are exposed as CSS custom
// properties on :root in every non empty section.
type Default struct{}

func (*Default) Name() string { return NameDefault }

func (*Default) Post(sections []mozdoc.Section, vars Values) []mozdoc.Section {
	if len(vars) == 0 {
		return sections
	}
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, v := range vars {
		b.WriteString("  --" + v.Name + ": " + v.Value + ";\n")
	}
	b.WriteString("}\n")
	varDef := b.String()

	res := make([]mozdoc.Section, 0, len(sections))
	for _, sec := range sections {
		if !mozdoc.CodeEmpty(sec.Code) {
			sec = sec.Clone()
			sec.Code = spliceAfterGlobals(sec.Code, varDef)
		}
		res = append(res, sec)
	}
	return res
}

// spliceAfterGlobals inserts text after leading statements which must stay
// first in the stylesheet.
func spliceAfterGlobals(code, text string) string {
	after := mozdoc.PreambleLen(code)
	if after == 0 {
		return text + code
	}
	return code[:after] + "\n" + text + code[after:]
}
