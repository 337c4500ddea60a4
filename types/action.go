package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
)

// Field is a single key/value entry of an Action.
type Field struct {
	Key   string
	Value any
}

// Action is an ordered mapping describing a trade or transfer instruction.
//
// The exchange hashes the msgpack encoding of an action, so field order is
// part of the signed payload. Action preserves insertion order in both its
// msgpack and JSON encodings. Values may be scalars, []byte, slices, nested
// Actions or anything msgpack knows how to encode.
type Action []Field

// NewAction builds an Action from alternating key/value arguments.
// It panics on an odd argument count or a non-string key.
func NewAction(kv ...any) Action {
	if len(kv)%2 != 0 {
		panic("types: NewAction requires an even number of arguments")
	}

	a := make(Action, 0, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("types: NewAction key %d is %T, not string", i/2, kv[i]))
		}
		a = a.With(key, kv[i+1])
	}
	return a
}

// Get returns the value stored under key.
func (a Action) Get(key string) (any, bool) {
	for _, f := range a {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Type returns the "type" field, or "" when absent.
func (a Action) Type() string {
	v, _ := a.Get("type")
	s, _ := v.(string)
	return s
}

// With returns a copy of a with key set to value. An existing key keeps its
// position; a new key is appended. The receiver is left untouched.
func (a Action) With(key string, value any) Action {
	out := make(Action, len(a), len(a)+1)
	copy(out, a)

	for i := range out {
		if out[i].Key == key {
			out[i].Value = value
			return out
		}
	}
	return append(out, Field{Key: key, Value: value})
}

// Keys returns the field names in order.
func (a Action) Keys() []string {
	keys := make([]string, len(a))
	for i, f := range a {
		keys[i] = f.Key
	}
	return keys
}

var _ msgpack.CustomEncoder = Action(nil)

// EncodeMsgpack writes the action as a msgpack map in insertion order.
func (a Action) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(a)); err != nil {
		return err
	}
	for _, f := range a {
		if err := enc.EncodeString(f.Key); err != nil {
			return err
		}
		if err := enc.Encode(f.Value); err != nil {
			return fmt.Errorf("encode field %q: %w", f.Key, err)
		}
	}
	return nil
}

// MarshalJSON writes the action as a JSON object in insertion order.
func (a Action) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range a {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal field %q: %w", f.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the order of its keys.
// Nested objects become Actions. Numbers with an integral value in the safe
// integer range become int64 (uint64 past the int64 range), everything else
// float64, which mirrors how JavaScript msgpack encoders treat numbers.
func (a *Action) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeOrdered(dec)
	if err != nil {
		return err
	}

	switch v := v.(type) {
	case Action:
		*a = v
	case nil:
		*a = nil
	default:
		return fmt.Errorf("action must be a JSON object, got %T", v)
	}
	return nil
}

func decodeOrdered(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	if n, ok := tok.(json.Number); ok {
		return numberValue(n)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		out := Action{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			value, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, Field{Key: key, Value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return out, nil

	case '[':
		out := []any{}
		for dec.More() {
			value, err := decodeOrdered(dec)
			if err != nil {
				return nil, err
			}
			out = append(out, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return out, nil
	}

	return nil, fmt.Errorf("unexpected delimiter %v", delim)
}

const maxSafeInteger = 1<<53 - 1

func numberValue(n json.Number) (any, error) {
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
		return u, nil
	}
	f, err := n.Float64()
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", n, err)
	}
	if f == math.Trunc(f) && math.Abs(f) <= maxSafeInteger {
		return int64(f), nil
	}
	return f, nil
}
