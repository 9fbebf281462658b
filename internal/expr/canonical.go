package expr

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/termite/internal/constraint"
)

// MarshalCanonical produces RFC 8785 canonical JSON for an expression.
// CRITICAL: This is the ONLY serialization used for content hashes.
//
// Shapes:
//
//	{"symbol":"a"}
//	{"wildcard":{"fixed_size":true,"min_count":1}}
//	{"variable":{"constraints":["c1"],"name":"x","wildcard":{...}}}
//	{"operation":{"name":"f","operands":[...]}}
//
// Constraints are identified by their sorted display names so that the same
// definitions produce the same bytes across processes.
func MarshalCanonical(e Expression) ([]byte, error) {
	v, err := canonicalValue(e)
	if err != nil {
		return nil, err
	}
	return MarshalValue(v)
}

func canonicalValue(e Expression) (map[string]any, error) {
	switch v := e.(type) {
	case Symbol:
		return map[string]any{"symbol": v.Name}, nil
	case Wildcard:
		return map[string]any{"wildcard": wildcardValue(v)}, nil
	case Variable:
		body := map[string]any{
			"name":     v.Name,
			"wildcard": wildcardValue(v.Wildcard),
		}
		if names := constraint.Names(v.Constraint); len(names) > 0 {
			body["constraints"] = names
		}
		return map[string]any{"variable": body}, nil
	case Operation:
		if v.Kind == nil {
			return nil, fmt.Errorf("operation without a kind")
		}
		operands := make([]any, len(v.Operands))
		for i, op := range v.Operands {
			val, err := canonicalValue(op)
			if err != nil {
				return nil, fmt.Errorf("operands[%d]: %w", i, err)
			}
			operands[i] = val
		}
		return map[string]any{"operation": map[string]any{
			"name":     v.Kind.Name,
			"operands": operands,
		}}, nil
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	default:
		return nil, fmt.Errorf("unsupported expression type: %T", e)
	}
}

func wildcardValue(w Wildcard) map[string]any {
	return map[string]any{"min_count": w.MinCount, "fixed_size": w.FixedSize}
}

// MarshalValue produces RFC 8785 canonical JSON for plain Go values:
// map[string]any, []any, []string, string, int, int64 and bool.
// Floats and null are rejected.
//
// Key differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping
//  3. Strings are NFC normalized
func MarshalValue(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		writeCanonicalString(buf, val)
	case int:
		buf.WriteString(strconv.Itoa(val))
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
	case bool:
		buf.WriteString(strconv.FormatBool(val))
	case []string:
		buf.WriteByte('[')
		for i, s := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, s)
		}
		buf.WriteByte(']')
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeysRFC8785)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeCanonicalString(buf, k)
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString escapes only quote, backslash and control
// characters, as RFC 8785 requires.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"

	buf.WriteByte('"')
	for _, r := range norm.NFC.String(s) {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[r>>4])
				buf.WriteByte(hex[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
// CRITICAL: Go's string comparison uses UTF-8 bytes, which orders
// supplementary-plane characters differently.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
