package process

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"ucc/config"
	"ucc/usercss"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context      string
	Name         string
	Namespace    string
	Version      string
	Author       string
	License      string
	Preprocessor string
	Format       string
	SourceFile   string
	Digest       string
	Vars         map[string]string
}

func buildValues(style *usercss.Style, name config.TemplateFieldName, src string, format config.OutputFmt) Values {
	v := Values{
		Context:    string(name),
		Name:       style.Name,
		Author:     style.Author,
		Format:     format.String(),
		SourceFile: trimStyleSuffix(filepath.Base(src)),
		Digest:     style.Digest,
		Vars:       make(map[string]string),
	}
	if md := style.Meta; md != nil {
		v.Namespace, v.Version, v.License, v.Preprocessor = md.Namespace, md.Version, md.License, md.Preprocessor
		for name, va := range md.Vars.All() {
			v.Vars[name] = va.Effective()
		}
	}
	if len(v.Preprocessor) == 0 {
		v.Preprocessor = "default"
	}
	return v
}

func expandTemplate(style *usercss.Style, name config.TemplateFieldName, field, src string, format config.OutputFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, buildValues(style, name, src, format)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
