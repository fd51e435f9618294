// Package document holds the parsed form of a glTF JSON payload.
//
// A Value is an immutable tagged-union tree. Lookups never fail: a field that is
// absent or has the wrong shape yields the caller's default, which mirrors the
// default-filling rules of the glTF schema.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
)

// maxDepth bounds the nesting accepted by Decode.
const maxDepth = 512

// maxExactInt is the largest integer a float64 represents exactly.
const maxExactInt = 1 << 53

var (
	errTrailingData = errors.New("document: trailing data after top-level value")
	errTooDeep      = errors.New("document: nesting too deep")
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Value
}

// Value is a node of the document tree. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	number  float64
	text    string
	elems   []Value
	members []Member
}

// Parse parses data as a single JSON value.
func Parse(data []byte) (Value, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a single JSON value from r. Anything other than whitespace after
// the value is an error.
func Decode(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeValue(dec, 0)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return Value{}, errTrailingData
		}
		return Value{}, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder, depth int) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return Value{}, io.ErrUnexpectedEOF
		}
		return Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		if depth >= maxDepth {
			return Value{}, errTooDeep
		}
		switch t {
		case '{':
			return decodeObject(dec, depth+1)
		case '[':
			return decodeArray(dec, depth+1)
		}
		return Value{}, fmt.Errorf("document: unexpected delimiter %q", rune(t))
	case bool:
		return Value{kind: KindBool, boolean: t}, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("document: invalid number %q: %w", t.String(), err)
		}
		return Value{kind: KindNumber, number: f, text: t.String()}, nil
	case string:
		return Value{kind: KindString, text: t}, nil
	case nil:
		return Value{}, nil
	default:
		return Value{}, fmt.Errorf("document: unexpected token %v", tok)
	}
}

func decodeObject(dec *json.Decoder, depth int) (Value, error) {
	v := Value{kind: KindObject, members: []Member{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("document: object key must be a string, found %v", tok)
		}
		elem, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		v.members = append(v.members, Member{Key: key, Value: elem})
	}
	// closing '}'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

func decodeArray(dec *json.Decoder, depth int) (Value, error) {
	v := Value{kind: KindArray, elems: []Value{}}
	for dec.More() {
		elem, err := decodeValue(dec, depth)
		if err != nil {
			return Value{}, err
		}
		v.elems = append(v.elems, elem)
	}
	// closing ']'
	if _, err := dec.Token(); err != nil {
		return Value{}, err
	}
	return v, nil
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNull() bool   { return v.kind == KindNull }
func (v Value) IsBool() bool   { return v.kind == KindBool }
func (v Value) IsNumber() bool { return v.kind == KindNumber }
func (v Value) IsString() bool { return v.kind == KindString }
func (v Value) IsArray() bool  { return v.kind == KindArray }
func (v Value) IsObject() bool { return v.kind == KindObject }

// Len returns the number of elements of an array or members of an object,
// and 0 for every other kind.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.elems)
	case KindObject:
		return len(v.members)
	default:
		return 0
	}
}

// Get looks up key in an object. Duplicate keys resolve to the last occurrence,
// as encoding/json does.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	for i := len(v.members) - 1; i >= 0; i-- {
		if v.members[i].Key == key {
			return v.members[i].Value, true
		}
	}
	return Value{}, false
}

// Has reports whether an object contains key.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Field is Get without the presence flag; absent keys yield null.
func (v Value) Field(key string) Value {
	f, _ := v.Get(key)
	return f
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.elems) {
		return Value{}, false
	}
	return v.elems[i], true
}

// Elems returns the elements of an array, or nil for any other kind.
// The returned slice must not be modified.
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.elems
}

// Members returns the members of an object in document order, or nil for any
// other kind. The returned slice must not be modified.
func (v Value) Members() []Member {
	if v.kind != KindObject {
		return nil
	}
	return v.members
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolean, true
}

// AsFloat returns the number held by v.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.number, true
}

// AsInt returns the number held by v when it is integral and exactly
// representable.
func (v Value) AsInt() (int, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	if v.number != math.Trunc(v.number) || v.number > maxExactInt || v.number < -maxExactInt {
		return 0, false
	}
	return int(v.number), true
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.text, true
}

// IntOr returns the integer member key, or def when it is absent or not an integer.
func (v Value) IntOr(key string, def int) int {
	if n, ok := v.Field(key).AsInt(); ok {
		return n
	}
	return def
}

// Float32Or returns the numeric member key as float32, or def.
func (v Value) Float32Or(key string, def float32) float32 {
	if f, ok := v.Field(key).AsFloat(); ok {
		return float32(f)
	}
	return def
}

// StringOr returns the string member key, or def.
func (v Value) StringOr(key string, def string) string {
	if s, ok := v.Field(key).AsString(); ok {
		return s
	}
	return def
}

// BoolOr returns the boolean member key, or def.
func (v Value) BoolOr(key string, def bool) bool {
	if b, ok := v.Field(key).AsBool(); ok {
		return b
	}
	return def
}

// Float32s converts an array of numbers. It fails if v is not an array or any
// element is not a number.
func (v Value) Float32s() ([]float32, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]float32, len(v.elems))
	for i, e := range v.elems {
		f, ok := e.AsFloat()
		if !ok {
			return nil, false
		}
		out[i] = float32(f)
	}
	return out, true
}

// Ints converts an array of integers. It fails if v is not an array or any
// element is not an integer.
func (v Value) Ints() ([]int, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	out := make([]int, len(v.elems))
	for i, e := range v.elems {
		n, ok := e.AsInt()
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// String renders scalars in a form suitable for log messages.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.boolean {
			return "true"
		}
		return "false"
	case KindNumber:
		return v.text
	case KindString:
		return v.text
	case KindArray:
		return fmt.Sprintf("array(%d)", len(v.elems))
	default:
		return fmt.Sprintf("object(%d)", len(v.members))
	}
}
