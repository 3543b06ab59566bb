package architecture

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ValueKind tags the scalar held by a Value.
type ValueKind uint8

const (
	// KindEmpty is an unset cell.
	KindEmpty ValueKind = iota
	// KindString is free text.
	KindString
	// KindNumber is a numeric value.
	KindNumber
)

// String returns the string representation of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return "unknown"
	}
}

// Value is a cell value: empty, a string, or a number.
// The zero Value is empty.
type Value struct {
	kind ValueKind
	str  string
	num  float64
}

// Empty returns the empty value.
func Empty() Value { return Value{} }

// Text returns a string value.
func Text(s string) Value { return Value{kind: KindString, str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// Int returns a numeric value from an integer.
func Int(i int) Value { return Number(float64(i)) }

// ParseValue interprets user input: blank is empty, a decimal number is a
// number, anything else is text. Numbers a float64 cannot hold exactly stay
// text so no digits are lost.
func ParseValue(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Empty()
	}
	if f, ok := parseNumber(trimmed); ok && exactFloat(trimmed, f) {
		return Number(f)
	}
	return Text(s)
}

// Kind returns the value's tag.
func (v Value) Kind() ValueKind { return v.kind }

// IsEmpty reports whether the value is empty or an empty string.
func (v Value) IsEmpty() bool {
	return v.kind == KindEmpty || (v.kind == KindString && v.str == "")
}

// Float returns the numeric interpretation of the value. Strings that parse
// as decimal numbers count as numeric.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return parseNumber(strings.TrimSpace(v.str))
	default:
		return 0, false
	}
}

// String renders the value as text. Empty renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	default:
		return ""
	}
}

// Equal compares values with type awareness: empty equals the empty string,
// and numbers compare numerically even when one side is numeric text.
// Numeric comparison is exact, so integers past 2^53 stay distinct.
func (v Value) Equal(other Value) bool {
	if v.IsEmpty() || other.IsEmpty() {
		return v.IsEmpty() && other.IsEmpty()
	}
	a, aNum := v.rat()
	b, bNum := other.rat()
	if aNum && bNum {
		return a.Cmp(b) == 0
	}
	return v.String() == other.String()
}

// rat returns the exact decimal value of a numeric value.
func (v Value) rat() (*big.Rat, bool) {
	f, ok := v.Float()
	if !ok {
		return nil, false
	}
	if r, ok := new(big.Rat).SetString(strings.TrimSpace(v.String())); ok {
		return r, true
	}
	return new(big.Rat).SetFloat64(f), true
}

// exactFloat reports whether f, printed in shortest form, has the same
// decimal value as text.
func exactFloat(text string, f float64) bool {
	want, ok := new(big.Rat).SetString(text)
	if !ok {
		return true
	}
	got, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'f', -1, 64))
	return ok && want.Cmp(got) == 0
}

// numeric returns text as a Number when a float64 holds it exactly, and as
// Text otherwise.
func numeric(text string) (Value, error) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Value{}, err
	}
	if !exactFloat(text, f) {
		return Text(text), nil
	}
	return Number(f), nil
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (v Value) scalar() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1<<53 {
			return int64(v.num)
		}
		return v.num
	default:
		return nil
	}
}

func fromScalar(raw any) (Value, error) {
	switch x := raw.(type) {
	case nil:
		return Empty(), nil
	case string:
		return Text(x), nil
	case bool:
		return Text(strconv.FormatBool(x)), nil
	case int:
		return numeric(strconv.Itoa(x))
	case int64:
		return numeric(strconv.FormatInt(x, 10))
	case uint64:
		return numeric(strconv.FormatUint(x, 10))
	case float64:
		return Number(x), nil
	case json.Number:
		return numeric(x.String())
	default:
		return Value{}, fmt.Errorf("unsupported cell value %T", raw)
	}
}

// MarshalYAML implements custom YAML marshaling so cells are plain scalars
func (v Value) MarshalYAML() (interface{}, error) {
	return v.scalar(), nil
}

// UnmarshalYAML implements custom YAML unmarshaling from plain scalars
func (v *Value) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := fromScalar(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.scalar())
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := fromScalar(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
