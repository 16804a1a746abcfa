// Package binding fills ${path} placeholders in templates from nested maps.
//
// A path is a dotted chain of map keys with optional list indexes, such as
// "client.names[0]". A placeholder may carry a fallback, ${path|fallback},
// used when the path is missing or resolves to an empty string. Without a
// fallback an unresolved placeholder is left as written.
package binding

import (
	"fmt"
	"strconv"
	"strings"
)

// Template is a parsed template, safe for concurrent use.
type Template struct {
	parts []part
}

type part struct {
	literal string
	ref     *ref
}

type ref struct {
	raw         string // the placeholder as written, echoed when unresolved
	path        []step
	fallback    string
	hasFallback bool
}

type step struct {
	key   string
	index int
	isIdx bool
}

// Compile parses text. Malformed placeholders stay literal text.
func Compile(text string) *Template {
	t := &Template{}
	for len(text) > 0 {
		start := strings.Index(text, "${")
		if start < 0 {
			t.literal(text)
			break
		}
		end := strings.IndexByte(text[start:], '}')
		if end < 0 {
			t.literal(text)
			break
		}
		end += start
		t.literal(text[:start])
		raw := text[start : end+1]
		if r, ok := parseRef(raw, text[start+2:end]); ok {
			t.parts = append(t.parts, part{ref: r})
		} else {
			t.literal(raw)
		}
		text = text[end+1:]
	}
	return t
}

func (t *Template) literal(s string) {
	if s == "" {
		return
	}
	if n := len(t.parts); n > 0 && t.parts[n-1].ref == nil {
		t.parts[n-1].literal += s
		return
	}
	t.parts = append(t.parts, part{literal: s})
}

func parseRef(raw, expr string) (*ref, bool) {
	pathText, fallback, hasFallback := strings.Cut(expr, "|")
	path, ok := parsePath(pathText)
	if !ok {
		return nil, false
	}
	return &ref{raw: raw, path: path, fallback: strings.TrimSpace(fallback), hasFallback: hasFallback}, true
}

func parsePath(s string) ([]step, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	var steps []step
	for _, segment := range strings.Split(s, ".") {
		key, rest, _ := strings.Cut(segment, "[")
		if key != "" {
			steps = append(steps, step{key: key})
		}
		if rest == "" {
			continue
		}
		// rest is "0]" or "0][1]" after the first bracket
		for _, idx := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			n, err := strconv.Atoi(idx)
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: n, isIdx: true})
		}
	}
	return steps, len(steps) > 0
}

// Execute renders the template against data, which may be nil.
func (t *Template) Execute(data any) string {
	var b strings.Builder
	for _, p := range t.parts {
		if p.ref == nil {
			b.WriteString(p.literal)
			continue
		}
		b.WriteString(p.ref.render(data))
	}
	return b.String()
}

// Paths lists the placeholder paths in order of appearance.
func (t *Template) Paths() []string {
	var out []string
	for _, p := range t.parts {
		if p.ref != nil {
			expr := strings.TrimSuffix(strings.TrimPrefix(p.ref.raw, "${"), "}")
			path, _, _ := strings.Cut(expr, "|")
			out = append(out, strings.TrimSpace(path))
		}
	}
	return out
}

func (r *ref) render(data any) string {
	if v, ok := resolve(data, r.path); ok && v != nil {
		if s := fmt.Sprint(v); s != "" || !r.hasFallback {
			return s
		}
	}
	if r.hasFallback {
		return r.fallback
	}
	return r.raw
}

// Interpolate compiles and executes text in one go.
func Interpolate(text string, data any) string {
	return Compile(text).Execute(data)
}

// Lookup resolves a dotted path such as "client.names[0]" against data.
func Lookup(data any, path string) (any, bool) {
	steps, ok := parsePath(path)
	if !ok {
		return nil, false
	}
	return resolve(data, steps)
}

func resolve(data any, path []step) (any, bool) {
	current := data
	for _, s := range path {
		var ok bool
		if s.isIdx {
			current, ok = index(current, s.index)
		} else {
			current, ok = field(current, s.key)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func field(v any, key string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		val, ok := m[key]
		return val, ok
	case map[string]string:
		val, ok := m[key]
		return val, ok
	}
	return nil, false
}

func index(v any, i int) (any, bool) {
	switch l := v.(type) {
	case []any:
		if i >= 0 && i < len(l) {
			return l[i], true
		}
	case []string:
		if i >= 0 && i < len(l) {
			return l[i], true
		}
	}
	return nil, false
}
