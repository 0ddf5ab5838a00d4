package types

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind is the runtime type tag of a Value.
type Kind string

// Value kinds. Text, integer and float are scalar; list is not.
const (
	KindText    Kind = "text"
	KindInteger Kind = "integer"
	KindFloat   Kind = "float"
	KindList    Kind = "list"
)

// Scalar reports whether values of kind k can be assigned from a single
// literal.
func (k Kind) Scalar() bool {
	return k == KindText || k == KindInteger || k == KindFloat
}

// Value is a small tagged union holding one attribute value.
// The zero Value is an empty text value.
type Value struct {
	kind    Kind
	text    string
	integer int64
	float   float64
	list    []string
}

// TextValue returns a text value.
func TextValue(s string) Value { return Value{kind: KindText, text: s} }

// IntegerValue returns an integer value.
func IntegerValue(i int64) Value { return Value{kind: KindInteger, integer: i} }

// FloatValue returns a float value.
func FloatValue(f float64) Value { return Value{kind: KindFloat, float: f} }

// ListValue returns a list of text values. A nil list is stored as empty.
func ListValue(items ...string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: KindList, list: list}
}

// Kind returns the kind of v.
func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindText
	}
	return v.kind
}

// AsText returns the text held by v, or "" if v is not text.
func (v Value) AsText() string { return v.text }

// AsInteger returns the integer held by v, or 0 if v is not an integer.
func (v Value) AsInteger() int64 { return v.integer }

// AsFloat returns the float held by v, or 0 if v is not a float.
func (v Value) AsFloat() float64 { return v.float }

// AsList returns a copy of the list held by v, or nil if v is not a list.
func (v Value) AsList() []string {
	if v.Kind() != KindList {
		return nil
	}
	out := make([]string, len(v.list))
	copy(out, v.list)
	return out
}

// Equal reports whether v and o hold the same kind and contents.
func (v Value) Equal(o Value) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case KindInteger:
		return v.integer == o.integer
	case KindFloat:
		return v.float == o.float
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != o.list[i] {
				return false
			}
		}
		return true
	default:
		return v.text == o.text
	}
}

// String renders v for display: text quoted, numbers bare, lists bracketed.
func (v Value) String() string {
	switch v.Kind() {
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindFloat:
		return formatFloat(v.float)
	case KindList:
		quoted := make([]string, len(v.list))
		for i, s := range v.list {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return strconv.Quote(v.text)
	}
}

// Convert returns v as a value of kind k. Integers widen to floats, text
// parses as the target number kind, and anything else is ErrTypeMismatch.
func (v Value) Convert(k Kind) (Value, error) {
	if v.Kind() == k {
		return v, nil
	}
	switch {
	case v.Kind() == KindInteger && k == KindFloat:
		return FloatValue(float64(v.integer)), nil
	case v.Kind() == KindText && (k == KindInteger || k == KindFloat):
		return ParseValue(k, v.text)
	}
	return Value{}, fmt.Errorf("%w: cannot convert %s to %s", ErrTypeMismatch, v.Kind(), k)
}

// ParseValue coerces a literal to a value of kind k.
// Returns an error wrapping ErrTypeMismatch if the literal does not parse,
// and ErrNotScalar if k is not a scalar kind.
func ParseValue(k Kind, raw string) (Value, error) {
	switch k {
	case KindText:
		return TextValue(raw), nil
	case KindInteger:
		i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an integer", ErrTypeMismatch, raw)
		}
		return IntegerValue(i), nil
	case KindFloat:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Value{}, fmt.Errorf("%w: %q is not a float", ErrTypeMismatch, raw)
		}
		return FloatValue(f), nil
	default:
		return Value{}, fmt.Errorf("%w: %s", ErrNotScalar, k)
	}
}

// InferValue picks the narrowest scalar kind a literal parses as: integer,
// then float, then text.
func InferValue(raw string) Value {
	if v, err := ParseValue(KindInteger, raw); err == nil {
		return v
	}
	if v, err := ParseValue(KindFloat, raw); err == nil {
		return v
	}
	return TextValue(raw)
}

// MarshalJSON encodes v so that decoding recovers the same kind: floats
// always carry a fraction or exponent.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case KindInteger:
		return []byte(strconv.FormatInt(v.integer, 10)), nil
	case KindFloat:
		if math.IsNaN(v.float) || math.IsInf(v.float, 0) {
			return nil, fmt.Errorf("%w: float %v has no JSON form", ErrInvalidData, v.float)
		}
		return []byte(formatFloat(v.float)), nil
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	default:
		return json.Marshal(v.text)
	}
}

// UnmarshalJSON infers the kind from the JSON token. Null, booleans and
// objects are rejected with ErrInvalidData.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty value", ErrInvalidData)
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidData, err)
		}
		*v = TextValue(s)
	case c == '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("%w: lists must hold strings: %v", ErrInvalidData, err)
		}
		*v = ListValue(items...)
	case c == '-' || (c >= '0' && c <= '9'):
		text := string(data)
		if strings.ContainsAny(text, ".eE") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidData, text)
			}
			*v = FloatValue(f)
			return nil
		}
		i, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: integer %q out of range", ErrInvalidData, text)
		}
		*v = IntegerValue(i)
	default:
		return fmt.Errorf("%w: unsupported value %s", ErrInvalidData, truncate(data, 32))
	}
	return nil
}

func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
