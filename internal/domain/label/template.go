// Package label holds the ZPL template engine and the label field
// builder that feeds it.
package label

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/tbg-logistics/wms-labeler/internal/domain/shared"
)

// MaxFieldLength bounds a single rendered field value. Longer values
// indicate corrupt upstream data, not a layout concern.
const MaxFieldLength = 255

var placeholderName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
var unresolvedPlaceholder = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)

// segment is one parsed span of a template: literal text or a
// placeholder reference.
type segment struct {
	literal     string
	placeholder string
}

// Template is an immutable parsed ZPL template with {name} placeholders.
type Template struct {
	Name     string
	Raw      string
	segments []segment
	names    []string
}

// ParseTemplate walks the raw content once, validating every {name}
// span. An unclosed brace, an empty span or an invalid name fails
// construction.
func ParseTemplate(name, raw string) (*Template, error) {
	t := &Template{Name: name, Raw: raw}
	seen := make(map[string]bool)
	rest := raw
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if rest != "" {
				t.segments = append(t.segments, segment{literal: rest})
			}
			break
		}
		if open > 0 {
			t.segments = append(t.segments, segment{literal: rest[:open]})
		}
		closeIdx := strings.IndexByte(rest[open:], '}')
		if closeIdx < 0 {
			return nil, shared.NewConfigError(fmt.Sprintf("template %s: unclosed '{' at offset %d", name, len(raw)-len(rest)+open), nil)
		}
		span := rest[open+1 : open+closeIdx]
		if span == "" {
			return nil, shared.NewConfigError(fmt.Sprintf("template %s: empty placeholder", name), nil)
		}
		if !placeholderName.MatchString(span) {
			return nil, shared.NewConfigError(fmt.Sprintf("template %s: invalid placeholder name %q", name, span), nil)
		}
		t.segments = append(t.segments, segment{placeholder: span})
		if !seen[span] {
			seen[span] = true
			t.names = append(t.names, span)
		}
		rest = rest[open+closeIdx+1:]
	}
	return t, nil
}

// LoadTemplate reads and parses a template file.
func LoadTemplate(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, shared.NewConfigError("label template file not readable: "+path, err)
	}
	return ParseTemplate(path, string(raw))
}

// Placeholders returns the unique placeholder names in first-use order.
func (t *Template) Placeholders() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Render substitutes every placeholder from fields. Each placeholder
// must resolve to a non-blank trimmed value; values are escaped so they
// cannot inject printer control sequences or stray braces.
func (t *Template) Render(fields FieldSource) ([]byte, error) {
	var b strings.Builder
	b.Grow(len(t.Raw))
	for _, seg := range t.segments {
		if seg.placeholder == "" {
			b.WriteString(seg.literal)
			continue
		}
		value, ok := fields.Get(seg.placeholder)
		if !ok || strings.TrimSpace(value) == "" {
			return nil, shared.NewValidationError(fmt.Sprintf("template %s: field %s missing or empty", t.Name, seg.placeholder))
		}
		if len(value) > MaxFieldLength {
			return nil, shared.NewValidationError(fmt.Sprintf("template %s: field %s exceeds %d characters", t.Name, seg.placeholder, MaxFieldLength))
		}
		b.WriteString(EscapeValue(value))
	}
	return []byte(b.String()), nil
}

// FieldSource supplies values to Render. The label field map implements
// it; tests use plain maps via MapFields.
type FieldSource interface {
	Get(name string) (string, bool)
}

// MapFields adapts a plain map to a FieldSource.
type MapFields map[string]string

func (m MapFields) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// EscapeValue neutralises ZPL control characters in a field value.
// Tilde is escaped before caret so the caret escape's own tildes are
// not expanded a second time; braces are doubled last.
func EscapeValue(s string) string {
	s = strings.ReplaceAll(s, "~", "~~")
	s = strings.ReplaceAll(s, "^", "~~^")
	s = strings.ReplaceAll(s, "{", "{{")
	s = strings.ReplaceAll(s, "}", "}}")
	return s
}

// IsValidZpl checks a rendered payload for the ZPL frame tokens and the
// absence of unresolved placeholders.
func IsValidZpl(s string) bool {
	if !strings.Contains(s, "^XA") || !strings.Contains(s, "^XZ") {
		return false
	}
	return !unresolvedPlaceholder.MatchString(s)
}
