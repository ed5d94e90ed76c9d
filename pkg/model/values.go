package model

import "strings"

// Values is the form state: field key to current value (string, bool or nil).
// Treat it as a snapshot; use With/Merge to derive a new one.
type Values map[string]any

// Clone returns a shallow copy. Values only ever hold scalars.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = value
	}
	return out
}

// With returns a copy with key set to value.
func (v Values) With(key string, value any) Values {
	out := v.Clone()
	out[key] = value
	return out
}

// Merge returns a copy with every entry of other applied on top.
func (v Values) Merge(other map[string]any) Values {
	out := v.Clone()
	for key, value := range other {
		out[key] = value
	}
	return out
}

// Bool reads key as a boolean, accepting the "true" string form.
func (v Values) Bool(key string) bool {
	switch typed := v[key].(type) {
	case bool:
		return typed
	case string:
		return typed == "true"
	default:
		return false
	}
}

// String reads key as a string. Booleans and nil read as "".
func (v Values) String(key string) string {
	if s, ok := v[key].(string); ok {
		return s
	}
	return ""
}

// CoerceBool turns the literal strings "true" and "false" into booleans and
// returns every other value untouched.
func CoerceBool(value any) any {
	if s, ok := value.(string); ok {
		switch s {
		case "true":
			return true
		case "false":
			return false
		}
	}
	return value
}

// CoerceBools applies CoerceBool to every entry, returning a new map.
func (v Values) CoerceBools() Values {
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = CoerceBool(value)
	}
	return out
}

// IsBlank reports whether a value counts as empty for required checks.
// Booleans are never blank, so an unchecked checkbox still satisfies a
// required rule.
func IsBlank(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	default:
		return false
	}
}
