// Package extract converts free-form inference output into well-shaped JSON.
//
// The inference service gives no format guarantee: responses may be bare JSON,
// JSON inside a fenced code block, JSON surrounded by prose, or no JSON at all.
// Every function here runs the same fallback chain and never returns an error;
// when nothing usable is found the caller's default is substituted and the
// result is flagged degraded.
package extract

import (
	"encoding/json"
	"strings"
)

// Shape selects the top-level JSON value the caller expects.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

// Raw runs the fallback chain and returns the first JSON candidate of the
// expected shape. The second return value reports whether a candidate was
// found; false means the caller should fall back to its default.
//
// Chain, first success wins:
//  1. the whole input parsed as the expected shape
//  2. the inner content of a fenced ```json block
//  3. the first balanced {...} (or [...]) substring, depth-tracked
func Raw(input string, shape Shape) (json.RawMessage, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, false
	}

	if candidate, ok := wholeInput(trimmed, shape); ok {
		return candidate, true
	}
	if inner, ok := fencedBlock(trimmed); ok {
		if candidate, ok := wholeInput(strings.TrimSpace(inner), shape); ok {
			return candidate, true
		}
	}
	if candidate, ok := firstBalanced(trimmed, shape); ok {
		return candidate, true
	}
	return nil, false
}

// Object decodes the input into a map, falling back to def. The boolean
// reports degradation: true means def was substituted.
func Object(input string, def map[string]any) (map[string]any, bool) {
	raw, ok := Raw(input, ShapeObject)
	if !ok {
		return def, true
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return def, true
	}
	return out, false
}

// Array decodes the input into a slice, falling back to def. The boolean
// reports degradation: true means def was substituted.
func Array(input string, def []any) ([]any, bool) {
	raw, ok := Raw(input, ShapeArray)
	if !ok {
		return def, true
	}
	var out []any
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return def, true
	}
	return out, false
}

func wholeInput(s string, shape Shape) (json.RawMessage, bool) {
	if len(s) == 0 || s[0] != openDelim(shape) {
		return nil, false
	}
	if !json.Valid([]byte(s)) {
		return nil, false
	}
	return json.RawMessage(s), true
}

// fencedBlock returns the content of the first fenced code block marked as
// JSON. A bare ``` fence is accepted too since models frequently omit the
// language tag.
func fencedBlock(s string) (string, bool) {
	for _, marker := range []string{"```json", "```JSON", "```"} {
		start := strings.Index(s, marker)
		if start < 0 {
			continue
		}
		rest := s[start+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		return rest[:end], true
	}
	return "", false
}

// firstBalanced scans for the first balanced delimiter pair of the expected
// shape. Depth is tracked through nested delimiters, and delimiters inside
// string literals (including escaped quotes) are ignored. The first balanced
// candidate that is valid JSON wins; an unbalanced or invalid candidate moves
// the scan past its opening delimiter.
func firstBalanced(s string, shape Shape) (json.RawMessage, bool) {
	opening, closing := openDelim(shape), closeDelim(shape)
	from := 0
	for {
		start := strings.IndexByte(s[from:], opening)
		if start < 0 {
			return nil, false
		}
		start += from
		if end, ok := scanBalanced(s, start, opening, closing); ok {
			candidate := s[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), true
			}
		}
		from = start + 1
	}
}

func scanBalanced(s string, start int, opening, closing byte) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case opening:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func openDelim(shape Shape) byte {
	if shape == ShapeArray {
		return '['
	}
	return '{'
}

func closeDelim(shape Shape) byte {
	if shape == ShapeArray {
		return ']'
	}
	return '}'
}
