package fasp

import (
	"strings"
	"unicode"
)

// Enhanced is the normalized form of a frame: canonical snake_case names with
// values of type string, int64 or bool. It is built once per frame and shared
// by every enhanced listener, so it must be treated as read-only.
type Enhanced map[string]any

// Normalize renames raw fields to canonical form and coerces declared fields.
func Normalize(fields map[string]string) Enhanced {
	out := make(Enhanced, len(fields))
	for k, v := range fields {
		name := CanonicalName(k)
		switch fieldKinds[name] {
		case KindInt:
			out[name] = parseInt(v)
		case KindBool:
			out[name] = v == "Yes"
		default:
			out[name] = v
		}
	}
	return out
}

// CanonicalName converts a Pascal/mixed-case field name to lower snake_case.
func CanonicalName(raw string) string {
	rs := []rune(raw)
	var b strings.Builder
	b.Grow(len(raw) + 4)
	for i, r := range rs {
		if i > 0 && unicode.IsUpper(r) {
			prev := rs[i-1]
			lowerOrDigitBefore := unicode.IsLower(prev) || unicode.IsDigit(prev)
			acronymEnd := unicode.IsUpper(prev) && i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if lowerOrDigitBefore || acronymEnd {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	name := b.String()
	for _, suf := range splitSuffixes {
		if len(name) > len(suf) && strings.HasSuffix(name, suf) {
			cut := len(name) - len(suf)
			if name[cut-1] != '_' {
				name = name[:cut] + "_" + suf
			}
			break
		}
	}
	return name
}

// Type returns the event type ("STATS", "DONE", ...).
func (e Enhanced) Type() string { return e.Str("type") }

// SessionID returns the session id and whether it was present.
func (e Enhanced) SessionID() (string, bool) {
	v, ok := e["session_id"].(string)
	return v, ok && v != ""
}

// Has reports whether the field is present.
func (e Enhanced) Has(name string) bool {
	_, ok := e[name]
	return ok
}

// Str returns a string field, or "" when absent or not a string.
func (e Enhanced) Str(name string) string {
	v, _ := e[name].(string)
	return v
}

// Int returns an integer field.
func (e Enhanced) Int(name string) (int64, bool) {
	v, ok := e[name].(int64)
	return v, ok
}

// Bool returns a boolean field.
func (e Enhanced) Bool(name string) (bool, bool) {
	v, ok := e[name].(bool)
	return v, ok
}
