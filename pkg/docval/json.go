package docval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
)

// ErrNotStandardJSON is returned by [ParseJSON] for input that only parses as
// JWCC (comments or trailing commas).
var ErrNotStandardJSON = errors.New("comments and trailing commas are not allowed")

// ParseJSON decodes a standard JSON document. Object key order is preserved;
// a repeated key keeps its first position and its last value.
func ParseJSON(data []byte) (Value, error) {
	root, err := hujson.Parse(data)
	if err != nil {
		return Value{}, err
	}

	if !root.IsStandard() {
		return Value{}, ErrNotStandardJSON
	}

	return fromHuJSON(root.Value)
}

func fromHuJSON(t hujson.ValueTrimmed) (Value, error) {
	switch node := t.(type) {
	case *hujson.Object:
		m := NewMap()

		for _, member := range node.Members {
			lit, ok := member.Name.Value.(hujson.Literal)
			if !ok {
				return Value{}, errors.New("object key is not a string")
			}

			var key string
			if err := json.Unmarshal(lit, &key); err != nil {
				return Value{}, fmt.Errorf("object key %s: %w", lit, err)
			}

			v, err := fromHuJSON(member.Value.Value)
			if err != nil {
				return Value{}, fmt.Errorf("%s: %w", key, err)
			}

			m.Set(key, v)
		}

		return MapValue(m), nil
	case *hujson.Array:
		items := make([]Value, 0, len(node.Elements))

		for i, elem := range node.Elements {
			v, err := fromHuJSON(elem.Value)
			if err != nil {
				return Value{}, fmt.Errorf("[%d]: %w", i, err)
			}

			items = append(items, v)
		}

		return Seq(items...), nil
	case hujson.Literal:
		return fromLiteral(node)
	default:
		return Value{}, fmt.Errorf("unexpected json node %T", t)
	}
}

func fromLiteral(lit hujson.Literal) (Value, error) {
	if len(lit) == 0 {
		return Value{}, errors.New("empty literal")
	}

	switch lit[0] {
	case 'n':
		return Null(), nil
	case 't':
		return Bool(true), nil
	case 'f':
		return Bool(false), nil
	case '"':
		var s string
		if err := json.Unmarshal(lit, &s); err != nil {
			return Value{}, fmt.Errorf("string %s: %w", lit, err)
		}

		return String(s), nil
	default:
		n, err := strconv.ParseFloat(string(lit), 64)
		if err != nil {
			return Value{}, fmt.Errorf("number %s: %w", lit, err)
		}

		return Number(n), nil
	}
}

// MarshalJSONIndent renders v as JSON with the given indent unit, in the
// layout of JavaScript's JSON.stringify(v, null, indent). Map keys are
// emitted in insertion order; use [SortKeys] first for canonical output.
func MarshalJSONIndent(v Value, indent string) []byte {
	var buf bytes.Buffer
	writeJSON(&buf, v, indent, 0)

	return buf.Bytes()
}

func marshalCompact(v Value) []byte {
	var buf bytes.Buffer
	writeJSON(&buf, v, "", 0)

	return buf.Bytes()
}

func writeJSON(buf *bytes.Buffer, v Value, indent string, depth int) {
	newline := func(d int) {
		if indent == "" {
			return
		}

		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(indent, d))
	}

	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		buf.WriteString(FormatNumber(v.n))
	case KindString:
		buf.WriteString(QuoteJSON(v.s))
	case KindSeq:
		if len(v.seq) == 0 {
			buf.WriteString("[]")

			return
		}

		buf.WriteByte('[')

		for i, item := range v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}

			newline(depth + 1)
			writeJSON(buf, item, indent, depth+1)
		}

		newline(depth)
		buf.WriteByte(']')
	case KindMap:
		if v.m.Len() == 0 {
			buf.WriteString("{}")

			return
		}

		buf.WriteByte('{')

		i := 0

		v.m.Range(func(k string, item Value) bool {
			if i > 0 {
				buf.WriteByte(',')
			}

			i++

			newline(depth + 1)
			buf.WriteString(QuoteJSON(k))
			buf.WriteByte(':')

			if indent != "" {
				buf.WriteByte(' ')
			}

			writeJSON(buf, item, indent, depth+1)

			return true
		})

		newline(depth)
		buf.WriteByte('}')
	}
}

// QuoteJSON returns s as a JSON string literal without HTML escaping.
func QuoteJSON(s string) string {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s) // strings always encode

	return strings.TrimSuffix(buf.String(), "\n")
}

// FormatNumber renders n the way JavaScript's Number#toString does for the
// values JSON can carry. Non-finite numbers render as null.
func FormatNumber(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "null"
	}

	if n == 0 {
		return "0"
	}

	abs := math.Abs(n)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(n, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		digits := strings.TrimLeft(exp[1:], "0")

		if digits == "" {
			digits = "0"
		}

		return mant + "e" + exp[:1] + digits
	}

	return strconv.FormatFloat(n, 'f', -1, 64)
}

// MarshalJSON implements [json.Marshaler] with compact output in insertion
// order.
func (v Value) MarshalJSON() ([]byte, error) {
	return marshalCompact(v), nil
}

// UnmarshalJSON implements [json.Unmarshaler] via [ParseJSON].
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}

	*v = parsed

	return nil
}

// MarshalJSON implements [json.Marshaler].
func (m *Map) MarshalJSON() ([]byte, error) {
	return marshalCompact(MapValue(m)), nil
}
