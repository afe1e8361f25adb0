package component

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueInt
	ValueFloat
	ValueBool
	ValueString
	ValueStrings
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueBool:
		return "bool"
	case ValueString:
		return "string"
	case ValueStrings:
		return "string list"
	}
	return "none"
}

// Value is a typed attribute value used by configurations and blueprints.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	b    bool
	s    string
	ss   []string
}

func Int(n int) Value          { return Value{kind: ValueInt, i: int64(n)} }
func Float(f float64) Value    { return Value{kind: ValueFloat, f: f} }
func Bool(b bool) Value        { return Value{kind: ValueBool, b: b} }
func String(s string) Value    { return Value{kind: ValueString, s: s} }
func Strings(s []string) Value { return Value{kind: ValueStrings, ss: append([]string(nil), s...)} }

func (v Value) Kind() ValueKind { return v.kind }

// ValueOf converts a decoded YAML scalar or string sequence.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case int:
		return Int(t), nil
	case int64:
		return Value{kind: ValueInt, i: t}, nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("%w: %d overflows int", ErrValueType, t)
		}
		return Value{kind: ValueInt, i: int64(t)}, nil
	case float64:
		return Float(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case []string:
		return Strings(t), nil
	case []any:
		ss := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return Value{}, fmt.Errorf("%w: list element %v is not a string", ErrValueType, e)
			}
			ss = append(ss, s)
		}
		return Strings(ss), nil
	}
	return Value{}, fmt.Errorf("%w: unsupported %T", ErrValueType, x)
}

// AsInt accepts ints and integral floats.
func (v Value) AsInt() (int, error) {
	switch v.kind {
	case ValueInt:
		return int(v.i), nil
	case ValueFloat:
		if v.f == math.Trunc(v.f) {
			return int(v.f), nil
		}
	}
	return 0, v.mismatch(ValueInt)
}

func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case ValueInt:
		return float64(v.i), nil
	case ValueFloat:
		return v.f, nil
	}
	return 0, v.mismatch(ValueFloat)
}

func (v Value) AsBool() (bool, error) {
	if v.kind != ValueBool {
		return false, v.mismatch(ValueBool)
	}
	return v.b, nil
}

func (v Value) AsString() (string, error) {
	if v.kind != ValueString {
		return "", v.mismatch(ValueString)
	}
	return v.s, nil
}

// AsStrings accepts a list or a single string.
func (v Value) AsStrings() ([]string, error) {
	switch v.kind {
	case ValueStrings:
		return append([]string(nil), v.ss...), nil
	case ValueString:
		return []string{v.s}, nil
	}
	return nil, v.mismatch(ValueStrings)
}

// AsDuration reads numbers as seconds and strings with time.ParseDuration.
func (v Value) AsDuration() (time.Duration, error) {
	switch v.kind {
	case ValueInt:
		return time.Duration(v.i) * time.Second, nil
	case ValueFloat:
		return time.Duration(v.f * float64(time.Second)), nil
	case ValueString:
		d, err := time.ParseDuration(v.s)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrValueType, err)
		}
		return d, nil
	}
	return 0, v.mismatch(ValueFloat)
}

func (v Value) String() string {
	switch v.kind {
	case ValueInt:
		return strconv.FormatInt(v.i, 10)
	case ValueFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueString:
		return strconv.Quote(v.s)
	case ValueStrings:
		return "[" + strings.Join(v.ss, ", ") + "]"
	}
	return "<none>"
}

func (v Value) mismatch(want ValueKind) error {
	return fmt.Errorf("%w: want %s, got %s %s", ErrValueType, want, v.kind, v)
}
