// Package mozdoc splits CSS with @-moz-document blocks into sections and
// formats sections back into CSS.
package mozdoc

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// Section is a piece of CSS code with conditions it applies to. Section
// without any conditions is global.
type Section struct {
	Code        string   `json:"code"`
	URLs        []string `json:"urls,omitempty"`
	URLPrefixes []string `json:"urlPrefixes,omitempty"`
	Domains     []string `json:"domains,omitempty"`
	Regexps     []string `json:"regexps,omitempty"`
}

// Function names of @-moz-document conditions in the order used for
// formatting.
const (
	FuncDomain    = "domain"
	FuncURLPrefix = "url-prefix"
	FuncURL       = "url"
	FuncRegexp    = "regexp"
)

var functions = []string{FuncDomain, FuncURLPrefix, FuncURL, FuncRegexp}

// target returns condition list for the @-moz-document function name, nil
// for unknown names.
func (s *Section) target(fn string) *[]string {
	switch fn {
	case FuncDomain:
		return &s.Domains
	case FuncURLPrefix:
		return &s.URLPrefixes
	case FuncURL:
		return &s.URLs
	case FuncRegexp:
		return &s.Regexps
	}
	return nil
}

// Global reports whether section has no conditions.
func (s *Section) Global() bool {
	return len(s.URLs) == 0 && len(s.URLPrefixes) == 0 && len(s.Domains) == 0 && len(s.Regexps) == 0
}

// Clone returns deep copy.
func (s Section) Clone() Section {
	s.URLs = slices.Clone(s.URLs)
	s.URLPrefixes = slices.Clone(s.URLPrefixes)
	s.Domains = slices.Clone(s.Domains)
	s.Regexps = slices.Clone(s.Regexps)
	return s
}

// SectionsEqual reports whether two section lists are the same. Sections are
// compared in order, conditions of a section are compared as sets.
func SectionsEqual(a, b []Section) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Code != b[i].Code {
			return false
		}
		for _, fn := range functions {
			if !sameSet(*a[i].target(fn), *b[i].target(fn)) {
				return false
			}
		}
	}
	return true
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, v := range a {
		if !slices.Contains(b, v) {
			return false
		}
	}
	for _, v := range b {
		if !slices.Contains(a, v) {
			return false
		}
	}
	return true
}

// Digest returns hex encoded SHA-1 of the sections canonical JSON form.
func Digest(sections []Section) string {
	type canonical struct {
		Code        string   `json:"code"`
		URLs        []string `json:"urls"`
		URLPrefixes []string `json:"urlPrefixes"`
		Domains     []string `json:"domains"`
		Regexps     []string `json:"regexps"`
	}
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	list := make([]canonical, 0, len(sections))
	for _, s := range sections {
		list = append(list, canonical{
			Code:        s.Code,
			URLs:        orEmpty(s.URLs),
			URLPrefixes: orEmpty(s.URLPrefixes),
			Domains:     orEmpty(s.Domains),
			Regexps:     orEmpty(s.Regexps),
		})
	}
	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	// encoding slice of plain structs cannot fail
	_ = enc.Encode(list)
	return DigestSource(string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))))
}

// DigestSource returns hex encoded SHA-1 of the source text.
func DigestSource(src string) string {
	sum := sha1.Sum([]byte(src))
	return hex.EncodeToString(sum[:])
}
