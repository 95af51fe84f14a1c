package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// FromJSON decodes a single JSON document into a Value, preserving object
// key order via json.Decoder's token stream. encoding/json's generic
// interface{} decoding loses key order (it lands in a Go map), so this
// walks the token stream by hand instead of decoding into interface{} —
// the one place Tendril must not use the obvious stdlib shortcut, since
// key order is load-bearing for the engine's coverage/remainder semantics
// (spec.md §4.3.3, §9).
func FromJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// FromJSONBytes is a convenience wrapper around FromJSON.
func FromJSONBytes(b []byte) (Value, error) {
	return FromJSON(bytes.NewReader(b))
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, fmt.Errorf("value: unexpected delimiter %q", t)
		}
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("value: invalid number %q: %w", t, err)
		}
		return Number(f), nil
	case string:
		return String(t), nil
	default:
		return Value{}, fmt.Errorf("value: unsupported token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return Value{}, fmt.Errorf("value: object key is not a string: %v", keyTok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)
	}
	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return FromObject(obj), nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	var items []Value
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return Array(items), nil
}

// ToJSON renders v as standard JSON text (used by cmd/tendril output
// formatting and by the redact collaborator in §12.2).
func ToJSON(v Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, indent, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v Value, indent, prefix string) error {
	switch v.Kind() {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.Bool() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		b, err := json.Marshal(v.Number())
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindString:
		b, err := json.Marshal(v.Str())
		if err != nil {
			return err
		}
		buf.Write(b)
	case KindArray:
		items := v.Items()
		if len(items) == 0 {
			buf.WriteString("[]")
			return nil
		}
		childPrefix := prefix + indent
		buf.WriteString("[")
		for i, it := range items {
			if i > 0 {
				buf.WriteString(",")
			}
			if indent != "" {
				buf.WriteString("\n" + childPrefix)
			}
			if err := writeJSON(buf, it, indent, childPrefix); err != nil {
				return err
			}
		}
		if indent != "" {
			buf.WriteString("\n" + prefix)
		}
		buf.WriteString("]")
	case KindObject:
		if v.Object().Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		childPrefix := prefix + indent
		buf.WriteString("{")
		first := true
		var outerErr error
		v.Object().Each(func(k string, item Value) bool {
			if !first {
				buf.WriteString(",")
			}
			first = false
			if indent != "" {
				buf.WriteString("\n" + childPrefix)
			}
			kb, err := json.Marshal(k)
			if err != nil {
				outerErr = err
				return false
			}
			buf.Write(kb)
			buf.WriteString(":")
			if indent != "" {
				buf.WriteString(" ")
			}
			if err := writeJSON(buf, item, indent, childPrefix); err != nil {
				outerErr = err
				return false
			}
			return true
		})
		if outerErr != nil {
			return outerErr
		}
		if indent != "" {
			buf.WriteString("\n" + prefix)
		}
		buf.WriteString("}")
	}
	return nil
}
