// Package keymap translates record field names between the remote store's
// snake_case convention and the application's camelCase convention.
package keymap

import (
	"fmt"
	"strings"
	"unicode"
)

// Mapper performs bidirectional field-name translation. Names present in the
// explicit dictionary use direct lookup; all other names fall back to the
// algorithmic camelCase/snake_case rule.
type Mapper struct {
	external map[string]string // internal -> external
	internal map[string]string // external -> internal
}

// New creates a Mapper from an explicit dictionary of internal-to-external
// overrides. The reverse dictionary is computed from the same source, and New
// fails if any name would map to two different counterparts in either
// direction.
//
// The dictionary is the escape hatch for names the algorithmic rule cannot
// round-trip, such as names with digits at a case boundary ("line1").
func New(overrides map[string]string) (*Mapper, error) {
	m := &Mapper{
		external: make(map[string]string, len(overrides)),
		internal: make(map[string]string, len(overrides)),
	}
	for in, ext := range overrides {
		if prev, ok := m.internal[ext]; ok && prev != in {
			return nil, fmt.Errorf("keymap: external name %q mapped from both %q and %q", ext, prev, in)
		}
		m.external[in] = ext
		m.internal[ext] = in
	}
	return m, nil
}

// ExternalKey translates a single internal field name to external form.
func (m *Mapper) ExternalKey(name string) string {
	if ext, ok := m.external[name]; ok {
		return ext
	}
	return toSnake(name)
}

// InternalKey translates a single external field name to internal form.
func (m *Mapper) InternalKey(name string) string {
	if in, ok := m.internal[name]; ok {
		return in
	}
	return toCamel(name)
}

// ToExternal transforms all field names in v to the external convention.
// Mappings recurse field-by-field, sequences transform element-wise
// preserving order, and every other value passes through unchanged.
func (m *Mapper) ToExternal(v any) any {
	return m.transform(v, m.ExternalKey)
}

// ToInternal transforms all field names in v to the internal convention.
func (m *Mapper) ToInternal(v any) any {
	return m.transform(v, m.InternalKey)
}

// ExternalRecord is ToExternal specialized to a record, avoiding a type
// assertion at call sites.
func (m *Mapper) ExternalRecord(r map[string]any) map[string]any {
	return m.ToExternal(r).(map[string]any)
}

// InternalRecord is ToInternal specialized to a record.
func (m *Mapper) InternalRecord(r map[string]any) map[string]any {
	return m.ToInternal(r).(map[string]any)
}

// transform walks v depth-first. Only plain records and sequences recurse;
// opaque values (time.Time, typed structs, scalars) are left untouched so
// non-record payloads cannot be corrupted.
func (m *Mapper) transform(v any, key func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[key(k)] = m.transform(val, key)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = m.transform(val, key)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, val := range t {
			out[i] = m.transform(val, key).(map[string]any)
		}
		return out
	default:
		return v
	}
}

// toSnake inserts an underscore before every upper-case letter and lowers it.
func toSnake(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// toCamel removes underscores and uppers the letter following each one.
func toCamel(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	upper := false
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
