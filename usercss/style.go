// Package usercss builds styles from usercss sources: metadata block is parsed,
// variables are substituted by the selected preprocessor and the result is
// split into sections.
package usercss

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"ucc/meta"
	"ucc/mozdoc"
)

var (
	ErrNoMetadata = errors.New("Could not find metadata.")
	ErrNoSections = errors.New("Style does not contain any actual CSS to apply.")
)

var (
	reMeta     = regexp.MustCompile(`(?i)/\*!?\s*==userstyle==[\s\S]*?==/userstyle==\s*\*/`)
	reNewlines = regexp.MustCompile(`\r\n?`)
)

// Style is an installable style.
type Style struct {
	ID          string           `json:"id,omitempty"`
	Name        string           `json:"name"`
	Author      string           `json:"author,omitempty"`
	Description string           `json:"description,omitempty"`
	URL         string           `json:"url,omitempty"`
	UpdateURL   string           `json:"updateUrl,omitempty"`
	Enabled     bool             `json:"enabled"`
	SourceCode  string           `json:"sourceCode"`
	Meta        *meta.Metadata   `json:"usercssData"`
	Sections    []mozdoc.Section `json:"sections"`
	Digest      string           `json:"originalDigest,omitempty"`
	InstallDate time.Time        `json:"installDate,omitzero"`
	UpdateDate  time.Time        `json:"updateDate,omitzero"`
}

// FindMeta locates ==UserStyle== comment block in the code.
func FindMeta(code string) (start, end int, ok bool) {
	loc := reMeta.FindStringIndex(code)
	if loc == nil {
		return 0, 0, false
	}
	return loc[0], loc[1], true
}

// BlankOut replaces bytes in [start, end) with spaces keeping line breaks, so
// positions in the rest of the text do not change.
func BlankOut(text string, start, end int) string {
	start, end = max(start, 0), min(end, len(text))
	if start >= end {
		return text
	}
	b := []byte(text)
	for i := start; i < end; i++ {
		if b[i] != '\n' && b[i] != '\r' {
			b[i] = ' '
		}
	}
	return string(b)
}

// NormalizeNewlines converts CRLF and CR line endings to LF.
func NormalizeNewlines(code string) string {
	if !strings.Contains(code, "\r") {
		return code
	}
	return reNewlines.ReplaceAllString(code, "\n")
}

// BuildMeta parses metadata of the source creating new enabled style without
// sections. Positions in returned *meta.ParseError are relative to normalized
// source.
func BuildMeta(source string) (*Style, error) {
	code := NormalizeNewlines(source)
	start, end, ok := FindMeta(code)
	if !ok {
		return nil, ErrNoMetadata
	}
	// text before the block may confuse metadata scanner
	md, err := meta.Parse(BlankOut(code, 0, start)[:end], 0)
	if err != nil {
		return nil, err
	}
	return &Style{
		Name:        md.Name,
		Author:      md.Author,
		Description: md.Description,
		URL:         md.HomepageURL,
		UpdateURL:   md.UpdateURL,
		Enabled:     true,
		SourceCode:  code,
		Meta:        md,
		Sections:    []mozdoc.Section{},
	}, nil
}

// AssignVars carries values of variables with the same names from old over
// to the style, values no longer valid are reset.
func AssignVars(style *Style, old *meta.Vars) {
	if style.Meta == nil || style.Meta.Vars.Len() == 0 || old.Len() == 0 {
		return
	}
	for name, va := range style.Meta.Vars.All() {
		if o, ok := old.Get(name); ok && o.Value != nil {
			va.SetValue(*o.Value)
		}
	}
	style.Meta.Vars = meta.NullifyInvalidVars(style.Meta.Vars)
}
