// Package extract pulls a JSON value out of free-form model output.
//
// Models asked for "JSON only" still wrap their answer in prose or code fences.
// Extract first tries the whole text, then the span from the first '{' to the
// last '}'. The span heuristic does not balance braces: two sibling objects
// produce an invalid slice and fail.
package extract

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// ErrNoObject is returned when no JSON value could be recovered.
var ErrNoObject = errors.New("no JSON object found in model output")

// Extract returns the decoded JSON value found in raw. The result is whatever
// encoding/json produces for an untyped target (map[string]any for objects),
// except that numbers stay json.Number so large integers survive exactly.
// A decoded null counts as failure.
func Extract(raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoObject
	}
	if value, ok := decode(raw); ok {
		return value, nil
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 || start >= end {
		return nil, ErrNoObject
	}
	if value, ok := decode(raw[start : end+1]); ok {
		return value, nil
	}
	return nil, ErrNoObject
}

func decode(text string) (any, bool) {
	value, err := DecodeValue(text)
	if err != nil || value == nil {
		return nil, false
	}
	return value, true
}

// DecodeValue parses exactly one JSON value from text, keeping numbers as
// json.Number. Trailing data after the value is an error.
func DecodeValue(text string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return value, nil
}

// Snippet collapses whitespace and truncates raw for log lines.
func Snippet(raw string) string {
	clean := strings.Join(strings.Fields(raw), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
