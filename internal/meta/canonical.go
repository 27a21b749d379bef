// Package meta gives testcase metadata a stable serialized form.
//
// Journal records and content-addressed identity both need the same
// metadata map to marshal to the same bytes on every run and on every
// platform. Standard json.Marshal is close but not sufficient: map
// iteration is randomized at the source level (handled by sorting),
// HTML escaping rewrites < > &, and equal strings in different Unicode
// normal forms would hash differently. MarshalCanonical fixes all
// three.
package meta

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces canonical JSON for hashing metadata.
//
// Rules:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping (< > & are written literally)
//  3. Strings are NFC normalized
//  4. No floats (returns error): execution times and counters are
//     integers, and floats have no canonical textual form
//  5. No null (returns error): absent keys are omitted, never null
func MarshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical metadata")
	case string:
		return marshalString(val)
	case int:
		return fmt.Appendf(nil, "%d", val), nil
	case int64:
		return fmt.Appendf(nil, "%d", val), nil
	case uint64:
		return fmt.Appendf(nil, "%d", val), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		return marshalArray(val)
	case map[string]any:
		return marshalObject(val)
	case float32, float64:
		return nil, fmt.Errorf("floats are forbidden in canonical metadata: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical metadata: %T", v)
	}
}

// marshalString emits a JSON string with NFC normalization and HTML
// escaping disabled.
func marshalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder appends a trailing newline, drop it.
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

func marshalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := MarshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalObject(obj map[string]any) ([]byte, error) {
	// Sort on the normalized form but look values up by the key as the
	// caller wrote it.
	byNorm := make(map[string]string, len(obj))
	keys := make([]string, 0, len(obj))
	for k := range obj {
		nk := norm.NFC.String(k)
		byNorm[nk] = k
		keys = append(keys, nk)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessUTF16(keys[i], keys[j])
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := marshalString(k)
		if err != nil {
			return nil, fmt.Errorf("object key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := MarshalCanonical(obj[byNorm[k]])
		if err != nil {
			return nil, fmt.Errorf("object[%q]: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// lessUTF16 orders strings by UTF-16 code units. Differs from byte
// order only for characters outside the BMP.
func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}
