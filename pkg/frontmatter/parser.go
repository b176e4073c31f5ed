package frontmatter

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
)

type lineToken struct {
	data string
	num  int
}

// lineReader yields lines with a single-slot pushback. The parser pushes back
// both peeked lines and lines it synthesizes for "- key: value" items.
type lineReader struct {
	lines      []string
	idx        int
	pending    lineToken
	hasPending bool
}

func newLineReader(text string) *lineReader {
	return &lineReader{lines: strings.Split(text, "\n")}
}

func (r *lineReader) next() (lineToken, bool) {
	if r.hasPending {
		r.hasPending = false

		return r.pending, true
	}

	if r.idx >= len(r.lines) {
		return lineToken{}, false
	}

	tok := lineToken{data: trimCR(r.lines[r.idx]), num: r.idx + 1}
	r.idx++

	return tok, true
}

func (r *lineReader) unread(tok lineToken) {
	r.pending = tok
	r.hasPending = true
}

type parser struct {
	src *lineReader
}

func parseDocument(text string) *docval.Map {
	p := &parser{src: newLineReader(text)}
	out := docval.NewMap()

	for {
		tok, ok := p.peekContent()
		if !ok {
			return out
		}

		v := p.parseBlock(indentOf(tok.data))

		// Top-level sequences and scalars have nowhere to go.
		m, ok := v.AsMap()
		if !ok {
			continue
		}

		m.Range(func(k string, item docval.Value) bool {
			out.Set(k, item)

			return true
		})
	}
}

// peekContent returns the next line that is neither blank nor a comment
// without consuming it. Blank and comment lines are consumed.
func (p *parser) peekContent() (lineToken, bool) {
	for {
		tok, ok := p.src.next()
		if !ok {
			return lineToken{}, false
		}

		if isBlank(tok.data) || isComment(tok.data) {
			continue
		}

		p.src.unread(tok)

		return tok, true
	}
}

// parseBlock always consumes at least one line when one is available.
func (p *parser) parseBlock(indent int) docval.Value {
	tok, ok := p.peekContent()
	if !ok {
		return docval.Null()
	}

	if isSeqItem(tok.data[indentOf(tok.data):]) {
		return p.parseSequence(indentOf(tok.data))
	}

	return p.parseMapping(indentOf(tok.data))
}

func (p *parser) parseMapping(indent int) docval.Value {
	m := docval.NewMap()
	first := true

	for {
		tok, ok := p.peekContent()
		if !ok {
			break
		}

		ind := indentOf(tok.data)
		if ind < indent {
			break
		}

		body := tok.data[ind:]

		if ind > indent {
			// Stray over-indented line.
			p.src.next()

			continue
		}

		if isSeqItem(body) {
			if first {
				// Cannot happen via parseBlock; guard against looping.
				p.src.next()
			}

			break
		}

		p.src.next()

		first = false

		key, rest, ok := splitKey(body)
		if !ok {
			continue
		}

		if rest != "" {
			m.Set(key, parseScalar(rest))

			continue
		}

		m.Set(key, p.parseChild(indent))
	}

	return docval.MapValue(m)
}

// parseChild parses the block value of a "key:" line at indent.
func (p *parser) parseChild(indent int) docval.Value {
	tok, ok := p.peekContent()
	if !ok {
		return docval.Null()
	}

	ind := indentOf(tok.data)

	switch {
	case ind > indent:
		return p.parseBlock(ind)
	case ind == indent && isSeqItem(tok.data[ind:]):
		return p.parseSequence(ind)
	default:
		return docval.Null()
	}
}

func (p *parser) parseSequence(indent int) docval.Value {
	items := make([]docval.Value, 0, 4)

	for {
		tok, ok := p.peekContent()
		if !ok {
			break
		}

		ind := indentOf(tok.data)
		if ind < indent {
			break
		}

		if ind > indent {
			p.src.next()

			continue
		}

		body := tok.data[ind:]
		if !isSeqItem(body) {
			break
		}

		p.src.next()

		rest := strings.TrimLeft(body[1:], " ")
		if rest == "" || isComment(rest) {
			next, ok := p.peekContent()
			if ok && indentOf(next.data) > indent {
				items = append(items, p.parseBlock(indentOf(next.data)))
			} else {
				items = append(items, docval.Null())
			}

			continue
		}

		if isSeqItem(rest) || startsMapping(rest) {
			childIndent := ind + len(body) - len(rest)
			p.src.unread(lineToken{data: strings.Repeat(" ", childIndent) + rest, num: tok.num})
			items = append(items, p.parseBlock(childIndent))

			continue
		}

		items = append(items, parseScalar(rest))
	}

	return docval.Seq(items...)
}

func startsMapping(s string) bool {
	if s[0] == '[' || s[0] == '{' {
		return false
	}

	_, _, ok := splitKey(s)

	return ok
}

// splitKey splits "key: rest" (or "key:") into its parts. Keys may be quoted.
// The returned rest has comments removed and is trimmed.
func splitKey(body string) (string, string, bool) {
	if body[0] == '"' || body[0] == '\'' {
		end := closingQuote(body)
		if end < 0 || end+1 >= len(body) || body[end+1] != ':' {
			return "", "", false
		}

		after := body[end+2:]
		if after != "" && after[0] != ' ' && after[0] != '\t' {
			return "", "", false
		}

		return unquote(body[:end+1]), cleanRest(after), true
	}

	for i := 0; i < len(body); i++ {
		if body[i] != ':' {
			continue
		}

		if i+1 < len(body) && body[i+1] != ' ' && body[i+1] != '\t' {
			continue
		}

		key := strings.TrimRight(body[:i], " \t")
		if key == "" {
			return "", "", false
		}

		return key, cleanRest(body[i+1:]), true
	}

	return "", "", false
}

func cleanRest(rest string) string {
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "#") {
		return ""
	}

	return rest
}

// parseScalar coerces an inline value. It never fails; anything it cannot
// interpret is returned as a string.
func parseScalar(raw string) docval.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return docval.String("")
	}

	if s[0] == '"' || s[0] == '\'' {
		end := closingQuote(s)
		if end < 0 {
			return docval.String(s)
		}

		tail := strings.TrimSpace(s[end+1:])
		if tail != "" && !strings.HasPrefix(tail, "#") {
			return docval.String(stripComment(s))
		}

		return docval.String(unquote(s[:end+1]))
	}

	s = stripComment(s)

	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return parseFlowList(s[1 : len(s)-1])
	}

	if s == "{}" {
		return docval.MapValue(docval.NewMap())
	}

	switch strings.ToLower(s) {
	case "true":
		return docval.Bool(true)
	case "false":
		return docval.Bool(false)
	case "null", "~":
		return docval.Null()
	}

	if n, ok := parseNumber(s); ok {
		return docval.Number(n)
	}

	return docval.String(s)
}

func parseFlowList(inner string) docval.Value {
	items := make([]docval.Value, 0, 4)

	for _, part := range splitFlow(inner) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		items = append(items, parseScalar(part))
	}

	return docval.Seq(items...)
}

// splitFlow splits on commas outside quotes.
func splitFlow(s string) []string {
	var parts []string

	start := 0
	quote := byte(0)

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case quote != 0:
			if c == '\\' && quote == '"' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == ',':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}

	return append(parts, s[start:])
}

// closingQuote returns the index of the quote closing s[0], or -1.
func closingQuote(s string) int {
	q := s[0]

	for i := 1; i < len(s); i++ {
		switch {
		case q == '"' && s[i] == '\\':
			i++
		case s[i] == q:
			if q == '\'' && i+1 < len(s) && s[i+1] == '\'' {
				i++

				continue
			}

			return i
		}
	}

	return -1
}

// unquote strips the quotes of a complete quoted literal.
func unquote(s string) string {
	if s[0] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}

	var out string
	if err := json.Unmarshal([]byte(s), &out); err == nil {
		return out
	}

	if out, err := strconv.Unquote(s); err == nil {
		return out
	}

	return s[1 : len(s)-1]
}

// stripComment removes an unquoted trailing " #..." comment.
func stripComment(s string) string {
	for i := 1; i < len(s); i++ {
		if s[i] == '#' && (s[i-1] == ' ' || s[i-1] == '\t') {
			return strings.TrimRight(s[:i], " \t")
		}
	}

	return s
}

// parseNumber accepts the literals JavaScript's Number() converts to finite
// values: decimal with optional sign, fraction and exponent, and 0x/0o/0b
// integers.
func parseNumber(s string) (float64, bool) {
	if len(s) > 2 && s[0] == '0' {
		base := 0

		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}

		if base != 0 {
			if strings.ContainsRune(s[2:], '_') {
				return 0, false
			}

			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return 0, false
			}

			return float64(n), true
		}
	}

	if !isDecimalLiteral(s) {
		return 0, false
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}

	return n, true
}

func isDecimalLiteral(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0

	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}

	if i < len(s) && s[i] == '.' {
		i++

		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}

	if digits == 0 {
		return false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}

		expDigits := 0

		for i < len(s) && isDigit(s[i]) {
			i++
			expDigits++
		}

		if expDigits == 0 {
			return false
		}
	}

	return i == len(s)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSeqItem(body string) bool {
	return body == "-" || strings.HasPrefix(body, "- ")
}

func indentOf(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}

	return n
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "#")
}
