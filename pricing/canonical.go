package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Canonicalize serializes a JSON-like value deterministically: object keys are sorted at every
// depth, arrays keep their order, and there is no whitespace. Values that are not plain JSON
// shapes (structs, typed maps and slices) are marshaled and re-decoded first, so they
// canonicalize exactly like the equivalent JSON document.
//
// Types are never coerced: 1 and "1" produce different output. Numbers keep their literal text
// when given as json.Number. A nil value, map or slice renders as null.
func Canonicalize(v any) (string, error) {
	var b strings.Builder
	if err := writeCanonical(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeCanonical(b *strings.Builder, v any) error {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case string:
		return writeString(b, t)
	case json.Number:
		if t == "" {
			b.WriteString("0")
			return nil
		}
		b.WriteString(t.String())
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("canonicalize number: %w", err)
		}
		b.Write(raw)
	case map[string]any:
		if t == nil {
			b.WriteString("null")
			return nil
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeString(b, k); err != nil {
				return err
			}
			b.WriteByte(':')
			if err := writeCanonical(b, t[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case []any:
		if t == nil {
			b.WriteString("null")
			return nil
		}
		b.WriteByte('[')
		for i, x := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, x); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case json.RawMessage:
		decoded, err := decodeJSON(t)
		if err != nil {
			return err
		}
		return writeCanonical(b, decoded)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("canonicalize %T: %w", v, err)
		}
		decoded, err := decodeJSON(raw)
		if err != nil {
			return err
		}
		return writeCanonical(b, decoded)
	}
	return nil
}

func writeString(b *strings.Builder, s string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("canonicalize string: %w", err)
	}
	b.Write(bytes.TrimRight(buf.Bytes(), "\n"))
	return nil
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("canonicalize: invalid JSON: %w", err)
	}
	return out, nil
}
