// Package features converts the stored forms of an offer tier's feature list
// into the string slice clients see.
//
// Three stored shapes exist: comma separated text ("a, b"), a JSON array
// ('["a","b"]') and a Python style list literal ("['a','b']"). All of them
// normalize to the same slice, and normalizing a slice returns it unchanged.
package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnsupported is returned by FromJSON for values that are neither a list nor text.
var ErrUnsupported = errors.New("features must be a list or a string")

// Normalize turns any stored or submitted value into a feature list.
// Unknown or empty values yield an empty, non-nil slice.
func Normalize(value any) []string {
	switch v := value.(type) {
	case []string:
		if v == nil {
			return []string{}
		}
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, pyStr(item))
		}
		return out
	case string:
		return Parse(v)
	case *string:
		if v == nil {
			return []string{}
		}
		return Parse(*v)
	}
	return []string{}
}

// Parse normalizes a stored text value.
func Parse(s string) []string {
	stripped := strings.TrimSpace(s)
	if strings.HasPrefix(stripped, "[") && strings.HasSuffix(stripped, "]") {
		if items, ok := parseJSONList(stripped); ok {
			return items
		}
		if items, err := parseLiteralList(stripped); err == nil {
			return items
		}
	}
	if stripped == "" {
		return []string{}
	}
	out := []string{}
	for _, part := range strings.Split(stripped, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FromJSON reads a submitted "features" field, which may be an array or a string.
// A missing or null field yields an empty list.
func FromJSON(raw json.RawMessage) ([]string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []string{}, nil
	}
	switch trimmed[0] {
	case '[':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var items []any
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
		return Normalize(items), nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("features: %w", err)
		}
		return Parse(s), nil
	}
	return nil, ErrUnsupported
}

// Encode produces the canonical stored form, a JSON array.
func Encode(items []string) string {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func parseJSONList(s string) ([]string, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var items []any
	if err := dec.Decode(&items); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return Normalize(items), true
}

// pyStr renders a decoded value the way Python's str() would.
func pyStr(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return pyRepr(v)
}

func pyRepr(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return quote(x)
	case json.Number:
		return numberString(string(x))
	case float64:
		return floatString(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = pyRepr(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = quote(k) + ": " + pyRepr(x[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(v)
}

func numberString(n string) string {
	if !strings.ContainsAny(n, ".eE") {
		if i, err := strconv.ParseInt(n, 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n
	}
	f, err := strconv.ParseFloat(n, 64)
	if err != nil {
		return n
	}
	return floatString(f)
}

func floatString(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func quote(s string) string {
	q := byte('\'')
	if strings.Contains(s, "'") && !strings.Contains(s, "\"") {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
