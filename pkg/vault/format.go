package vault

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
	"github.com/calvinalkan/campaign-vault/pkg/frontmatter"
)

// Format is an on-disk document format.
type Format string

// Formats. The zero Format means "infer from the path".
const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts "markdown"/"md" and "json". The empty string is the
// zero Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}

	return "", fmt.Errorf("unknown format %q (want markdown or json)", s)
}

// Ext returns the file extension written for f.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return ".md"
	}

	return ".json"
}

// FormatForPath infers the format from the extension: .md, .markdown and
// .mdx are Markdown, anything else is JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx":
		return FormatMarkdown
	}

	return FormatJSON
}

var errRootNotObject = errors.New("document root is not an object")

// DecodeDocument splits raw into document and body. Markdown never fails;
// JSON must be a single standard JSON object.
func DecodeDocument(raw []byte, f Format) (*docval.Map, string, error) {
	if f == FormatMarkdown {
		meta, body := frontmatter.Decode(raw)

		return meta, body, nil
	}

	v, err := docval.ParseJSON(raw)
	if err != nil {
		return nil, "", err
	}

	m, ok := v.AsMap()
	if !ok {
		return nil, "", fmt.Errorf("%w: got %s", errRootNotObject, v.Kind())
	}

	return m, "", nil
}

// EncodeDocument renders doc in format f. JSON output is key-sorted, indented
// by two spaces and newline-terminated.
func EncodeDocument(doc *docval.Map, body string, f Format) []byte {
	if f == FormatMarkdown {
		return frontmatter.Encode(body, doc)
	}

	return docval.EncodeCanonicalJSON(docval.MapValue(doc))
}
