package tmpl

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Values maps placeholder names to their substitution text.
type Values map[string]string

// Set stores v under key after stringifying it with Stringify.
func (v Values) Set(key string, value any) Values {
	v[key] = Stringify(value)
	return v
}

// Merge returns a new Values with other's entries overriding v's.
func (v Values) Merge(other Values) Values {
	out := make(Values, len(v)+len(other))
	for k, s := range v {
		out[k] = s
	}
	for k, s := range other {
		out[k] = s
	}
	return out
}

// FromMap stringifies every entry of a decoded JSON/YAML object. Nested
// absent values become empty strings.
func FromMap(m map[string]any) Values {
	out := make(Values, len(m))
	for k, val := range m {
		out[k] = Stringify(val)
	}
	return out
}

// Stringify converts a decoded value to substitution text:
// nil is "", numbers keep their shortest decimal form, booleans are
// "true"/"false", and slices or maps are JSON encoded.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	case []any, map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}
