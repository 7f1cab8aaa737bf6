package iodecl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// TemplateExt marks SQL files that are expanded with text/template.
const TemplateExt = ".tmpl"

type templateData struct {
	Name  string
	Owner string
	Vars  map[string]any
}

func readFile(path string, data templateData) (string, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return "", SQLFileError(data.Name, path, err)
	}
	if !strings.HasSuffix(path, TemplateExt) {
		return string(bs), nil
	}
	return expand(path, string(bs), data)
}

func expand(path, text string, data templateData) (string, error) {
	tmpl, err := template.New(filepath.Base(path)).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return "", TemplateError(data.Name, path, err)
	}

	var buf bytes.Buffer
	if err = tmpl.Execute(&buf, data); err != nil {
		return "", TemplateError(data.Name, path, err)
	}
	return buf.String(), nil
}
