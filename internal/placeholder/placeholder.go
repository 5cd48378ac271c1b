// Package placeholder implements the page template language: {name} is
// replaced by a named field, {{ and }} produce literal braces. Nothing in a
// template is ever evaluated.
package placeholder

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownField indicates a template references a field that is not
// provided.
var ErrUnknownField = errors.New("unknown template field")

// Fields maps field names to substituted values.
type Fields map[string]string

// Merge returns a new Fields holding f overlaid with other.
func (f Fields) Merge(other Fields) Fields {
	out := make(Fields, len(f)+len(other))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

type segment struct {
	text  string
	field bool
}

// Template is a parsed template.
type Template struct {
	name     string
	segments []segment
}

// Parse splits text into literal and field segments. A '{' that does not
// open a well-formed {identifier} is kept literally.
func Parse(name, text string) *Template {
	t := &Template{name: name}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			if n := identLen(text[i+1:]); n > 0 && i+1+n < len(text) && text[i+1+n] == '}' {
				flush()
				t.segments = append(t.segments, segment{text: text[i+1 : i+1+n], field: true})
				i += n + 2
				continue
			}
			lit.WriteByte(c)
			i++
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return t
}

// identLen returns the length of the identifier ([A-Za-z_][A-Za-z0-9_]*)
// at the start of s.
func identLen(s string) int {
	n := 0
	for n < len(s) {
		c := s[n]
		isLetter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !(n > 0 && isDigit) {
			break
		}
		n++
	}
	return n
}

// Name returns the template name.
func (t *Template) Name() string {
	return t.name
}

// Fields lists the distinct field names referenced, sorted.
func (t *Template) Fields() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, s := range t.segments {
		if !s.field {
			continue
		}
		if _, ok := seen[s.text]; ok {
			continue
		}
		seen[s.text] = struct{}{}
		names = append(names, s.text)
	}
	sort.Strings(names)
	return names
}

// Execute substitutes fields. A field missing from fields yields
// ErrUnknownField naming the template and the field.
func (t *Template) Execute(fields Fields) (string, error) {
	var buf strings.Builder
	for _, s := range t.segments {
		if !s.field {
			buf.WriteString(s.text)
			continue
		}
		v, ok := fields[s.text]
		if !ok {
			return "", fmt.Errorf("%w: {%s} in %s", ErrUnknownField, s.text, t.name)
		}
		buf.WriteString(v)
	}
	return buf.String(), nil
}

// Render parses and executes text in one step.
func Render(name, text string, fields Fields) (string, error) {
	return Parse(name, text).Execute(fields)
}
