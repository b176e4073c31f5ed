package frontmatter

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
)

// Encode renders body and meta as a frontmatter document:
//
//	---
//	<yaml>
//	---
//	<body>
//
// Keys are sorted at every depth. Sequences are written as "- " items with
// two-space indentation per level; empty sequences and mappings are written
// inline as [] and {}.
func Encode(body string, meta *docval.Map) []byte {
	lines := make([]string, 0, meta.Len()+4)
	lines = appendMapping(lines, meta, 0)

	var b strings.Builder

	b.Grow(len(body) + 64)
	b.WriteString(delimiter + "\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n" + delimiter + "\n")
	b.WriteString(body)

	return []byte(b.String())
}

// MarshalYAML renders meta in the YAML subset without delimiters. The result
// has no trailing newline.
func MarshalYAML(meta *docval.Map) string {
	return strings.Join(appendMapping(nil, meta, 0), "\n")
}

func appendMapping(lines []string, m *docval.Map, indent int) []string {
	pad := strings.Repeat(" ", indent)

	for _, key := range m.SortedKeys() {
		v, _ := m.Get(key)
		prefix := pad + encodeKey(key) + ":"

		switch v.Kind() {
		case docval.KindSeq:
			items, _ := v.AsSeq()
			if len(items) == 0 {
				lines = append(lines, prefix+" []")

				continue
			}

			lines = append(lines, prefix)
			lines = appendSequence(lines, items, indent+2)
		case docval.KindMap:
			child, _ := v.AsMap()
			if child.Len() == 0 {
				lines = append(lines, prefix+" {}")

				continue
			}

			lines = append(lines, prefix)
			lines = appendMapping(lines, child, indent+2)
		default:
			lines = append(lines, prefix+" "+encodeScalar(v))
		}
	}

	return lines
}

func appendSequence(lines []string, items []docval.Value, indent int) []string {
	pad := strings.Repeat(" ", indent)

	for _, item := range items {
		var nested []string

		switch item.Kind() {
		case docval.KindSeq:
			inner, _ := item.AsSeq()
			if len(inner) == 0 {
				lines = append(lines, pad+"- []")

				continue
			}

			nested = appendSequence(nil, inner, indent+2)
		case docval.KindMap:
			inner, _ := item.AsMap()
			if inner.Len() == 0 {
				lines = append(lines, pad+"- {}")

				continue
			}

			nested = appendMapping(nil, inner, indent+2)
		default:
			lines = append(lines, pad+"- "+encodeScalar(item))

			continue
		}

		// The first nested line moves up next to the dash; "- " has the same
		// width as the two spaces it replaces.
		nested[0] = pad + "- " + nested[0][indent+2:]
		lines = append(lines, nested...)
	}

	return lines
}

func encodeScalar(v docval.Value) string {
	switch v.Kind() {
	case docval.KindBool:
		b, _ := v.AsBool()
		if b {
			return "true"
		}

		return "false"
	case docval.KindNumber:
		n, _ := v.AsNumber()

		return docval.FormatNumber(n)
	case docval.KindString:
		s, _ := v.AsString()
		if needsQuote(s) {
			return quote(s)
		}

		return s
	default:
		return "null"
	}
}

func encodeKey(key string) string {
	if key == "" || strings.ContainsAny(key, ":#[]{}\"'\n\r\t,") ||
		strings.TrimSpace(key) != key || key[0] == '-' || key == delimiter {
		return quote(key)
	}

	return key
}

// quote renders s as a double-quoted scalar. Invalid UTF-8 bytes are
// written as \x escapes so they survive decoding.
func quote(s string) string {
	if !utf8.ValidString(s) {
		return strconv.Quote(s)
	}

	return docval.QuoteJSON(s)
}

// needsQuote reports whether s would not survive as a plain scalar.
func needsQuote(s string) bool {
	if s == "" || strings.TrimSpace(s) != s {
		return true
	}

	if strings.ContainsAny(s, ":#[]{}\"'\n\r\t") {
		return true
	}

	if s == "-" || strings.HasPrefix(s, "- ") {
		return true
	}

	got, ok := parseScalar(s).AsString()

	return !ok || got != s
}
