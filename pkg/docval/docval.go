// Package docval is the generic document model shared by every vault format.
//
// A document is a [Map]: an insertion-ordered mapping from string keys to
// [Value]s. A Value is a small tagged union of the shapes the on-disk formats
// can express:
//
//	null | bool | number | string | sequence | mapping
//
// Numbers are float64, matching the JavaScript-authored vaults the format
// comes from. Typed views over a document are derived after validation (see
// package entity); nothing in this package knows about entity types.
//
// The zero Value is null. A nil *Map behaves like an empty map for reads.
package docval

import (
	"fmt"
	"math"
	"slices"
	"sort"
)

// Kind identifies which variant a [Value] holds.
type Kind uint8

// Kind values.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSeq
	KindMap
)

// String returns the lower-case kind name used in validation messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSeq:
		return "array"
	case KindMap:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is an immutable-by-convention document value.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	seq  []Value
	m    *Map
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Seq returns a sequence value. The items slice is retained.
func Seq(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{kind: KindSeq, seq: items}
}

// Strings returns a sequence of string values.
func Strings(items ...string) Value {
	out := make([]Value, len(items))
	for i, s := range items {
		out[i] = String(s)
	}

	return Value{kind: KindSeq, seq: out}
}

// MapValue wraps m as a value. A nil m becomes an empty map.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}

	return Value{kind: KindMap, m: m}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsSeq returns the items held by v. The slice is borrowed.
func (v Value) AsSeq() ([]Value, bool) { return v.seq, v.kind == KindSeq }

// AsMap returns the map held by v. The map is borrowed.
func (v Value) AsMap() (*Map, bool) { return v.m, v.kind == KindMap }

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindSeq:
		items := make([]Value, len(v.seq))
		for i, item := range v.seq {
			items[i] = item.Clone()
		}

		return Value{kind: KindSeq, seq: items}
	case KindMap:
		return Value{kind: KindMap, m: v.m.Clone()}
	default:
		return v
	}
}

// Equal reports deep equality. Map key order is ignored.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n || (math.IsNaN(v.n) && math.IsNaN(o.n))
	case KindString:
		return v.s == o.s
	case KindSeq:
		return slices.EqualFunc(v.seq, o.seq, Value.Equal)
	case KindMap:
		return v.m.Equal(o.m)
	}

	return false
}

// Interface converts v to plain Go values: nil, bool, float64, string,
// []any and map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindSeq:
		out := make([]any, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.Interface()
		}

		return out
	case KindMap:
		return v.m.Interface()
	default:
		return nil
	}
}

// String renders v as compact JSON. Intended for messages and debugging.
func (v Value) String() string {
	return string(marshalCompact(v))
}

// From converts plain Go values into a [Value].
//
// Supported inputs: nil, bool, all int/uint/float kinds, string, []string,
// []any, map[string]any (keys sorted), *Map and Value. Anything else is an
// error.
func From(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Map:
		return MapValue(t), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case int:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case uint:
		return Number(float64(t)), nil
	case uint64:
		return Number(float64(t)), nil
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case []string:
		return Strings(t...), nil
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			v, err := From(item)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}

			items[i] = v
		}

		return Seq(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		m := NewMap()

		for _, k := range keys {
			v, err := From(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", k, err)
			}

			m.Set(k, v)
		}

		return MapValue(m), nil
	default:
		return Value{}, fmt.Errorf("unsupported type %T", x)
	}
}

// MustFrom is like [From] but panics on error. Intended for tests and
// literals.
func MustFrom(x any) Value {
	v, err := From(x)
	if err != nil {
		panic(err)
	}

	return v
}
