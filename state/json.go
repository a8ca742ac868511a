package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"golang.org/x/image/math/fixed"
)

// Decode reads a JSON snapshot: one object whose members are state keys.
// Strings become string values, numbers fixed-point numbers, objects packs
// (member order preserved) and arrays lists. Booleans, null and numbers
// not exact in 1/4096 steps are rejected.
func Decode(r io.Reader) (*Map, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("state: read snapshot: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("state: snapshot must be a JSON object")
	}

	m := NewMap()
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		v, err := readValue(dec, key)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("state: read snapshot: %w", err)
	}
	return m, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*Map, error) {
	return Decode(bytes.NewReader(data))
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("state: read snapshot: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("state: unexpected token %v", tok)
	}
	return key, nil
}

func readValue(dec *json.Decoder, path string) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("state: %s: %w", path, err)
	}
	switch t := tok.(type) {
	case string:
		return String(t), nil
	case json.Number:
		return parseNumber(t, path)
	case json.Delim:
		switch t {
		case '{':
			var fields []Field
			for dec.More() {
				name, err := readKey(dec)
				if err != nil {
					return Value{}, err
				}
				v, err := readValue(dec, path+"."+name)
				if err != nil {
					return Value{}, err
				}
				fields = append(fields, Field{Name: name, Value: v})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("state: %s: %w", path, err)
			}
			return PackValue(NewPack(fields...)), nil
		case '[':
			var items []Value
			for i := 0; dec.More(); i++ {
				v, err := readValue(dec, fmt.Sprintf("%s[%d]", path, i))
				if err != nil {
					return Value{}, err
				}
				items = append(items, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("state: %s: %w", path, err)
			}
			return Value{kind: KindList, list: items}, nil
		}
	}
	return Value{}, fmt.Errorf("state: %s: unsupported JSON value %v", path, tok)
}

func parseNumber(n json.Number, path string) (Value, error) {
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		if i > maxInt || i < minInt {
			return Value{}, fmt.Errorf("state: %s: number %s out of range", path, n)
		}
		return Int(i), nil
	}
	r, ok := new(big.Rat).SetString(n.String())
	if !ok {
		return Value{}, fmt.Errorf("state: %s: malformed number %s", path, n)
	}
	r.Mul(r, big.NewRat(1<<FracBits, 1))
	if !r.IsInt() {
		return Value{}, fmt.Errorf("state: %s: number %s is not a multiple of 1/%d", path, n, 1<<FracBits)
	}
	v := r.Num()
	if !v.IsInt64() || v.Int64() > maxInt<<FracBits || v.Int64() < minInt<<FracBits {
		return Value{}, fmt.Errorf("state: %s: number %s out of range", path, n)
	}
	return Number(fixed.Int52_12(v.Int64())), nil
}

// Range of integers representable with FracBits fractional bits.
const (
	maxInt = 1<<(63-FracBits) - 1
	minInt = -(1 << (63 - FracBits))
)
