// Package prompt loads the extraction prompt template and fills in meeting
// notes.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Placeholder is replaced with the meeting notes in every template.
const Placeholder = "{meeting_notes}"

//go:embed extract_prompt.txt
var defaultTemplate string

var (
	ErrTemplateMissing    = errors.New("prompt template missing")
	ErrPlaceholderMissing = errors.New("prompt template has no " + Placeholder + " placeholder")
)

// Template is a loaded prompt template.
type Template struct {
	text   string
	source string
}

// Default returns the built-in template.
func Default() Template {
	return Template{text: defaultTemplate, source: "builtin"}
}

// Load reads the template at path, or returns the built-in template when path
// is empty.
func Load(path string) (Template, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("%w: %s: %w", ErrTemplateMissing, path, err)
	}
	return Template{text: string(data), source: path}, nil
}

// Source names where the template came from ("builtin" or a file path).
func (t Template) Source() string {
	return t.source
}

// Build substitutes notes for every placeholder. Braces elsewhere in the
// template are left alone.
func (t Template) Build(notes string) (string, error) {
	if !strings.Contains(t.text, Placeholder) {
		return "", ErrPlaceholderMissing
	}
	return strings.ReplaceAll(t.text, Placeholder, notes), nil
}
