// Package frontmatter reads and writes Markdown documents with a metadata
// block in a small YAML subset:
//
//	---
//	id: npc/mira-01
//	type: npc
//	name: Mira
//	tags: [smith, "old guard"]
//	knowledge_scope:
//	  topics:
//	    - forge lore
//	relationship_ledger:
//	  allies:
//	    - id: npc/tomas-02
//	      notes: owes her a favour
//	---
//	Body text.
//
// # Grammar
//
// The block between the two '---' lines is parsed by recursive descent.
// parseBlock looks at the next non-blank, non-comment line and dispatches to
// parseSequence when it starts with "- " (or is a bare "-") and to
// parseMapping otherwise. Indentation alone determines nesting: a line indented
// less than the block it would belong to ends that block.
//
//   - "key: scalar" sets a scalar.
//   - "key:" takes the following more-indented block, or a sequence at the
//     same indent (the compact YAML form). Anything else makes it null.
//   - "- scalar" is a sequence item. "- key: value" starts a mapping item
//     whose further keys are indented to the column after the dash.
//     A bare "-" takes the following more-indented block.
//   - Lines starting with '#' are comments. An unquoted " #" starts a
//     trailing comment.
//
// Scalars are coerced: [a, b] is a flat list of comma-split scalars, {} is an
// empty mapping, quoted strings lose their quotes, true/false (any case) are
// booleans, null and ~ are null, JavaScript number literals are numbers, and
// everything else is a string.
//
// Anchors, aliases, tags, block scalars (| and >), multi-line plain scalars
// and flow mappings are not part of the subset.
//
// # Leniency
//
// [Decode] never fails. Lines it cannot place are skipped and malformed
// scalars are kept as strings, so a hand-edited document always loads.
//
// # Determinism
//
// [Encode] emits keys sorted at every depth and quotes strings only when the
// plain form would not decode back to the same string, so
// Decode(Encode(body, meta)) returns meta (keys sorted) and body unchanged.
package frontmatter

import (
	"strings"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
)

const delimiter = "---"

// Decode splits text into metadata and body. Without a leading '---' line and
// a matching closing '---' line the metadata is empty and the body is the
// whole text.
func Decode(text []byte) (*docval.Map, string) {
	src := string(text)

	yamlText, body, ok := split(src)
	if !ok {
		return docval.NewMap(), src
	}

	return parseDocument(yamlText), body
}

// DecodeString is [Decode] for string input.
func DecodeString(text string) (*docval.Map, string) {
	return Decode([]byte(text))
}

// split returns the text between the delimiter lines and everything after the
// closing delimiter line.
func split(src string) (string, string, bool) {
	first, rest, hasNewline := strings.Cut(src, "\n")
	if !hasNewline || trimCR(first) != delimiter {
		return "", "", false
	}

	offset := 0

	for offset <= len(rest) {
		line, after, more := strings.Cut(rest[offset:], "\n")
		if trimCR(line) == delimiter {
			yamlText := rest[:offset]
			if !more {
				return yamlText, "", true
			}

			return yamlText, after, true
		}

		if !more {
			break
		}

		offset += len(line) + 1
	}

	return "", "", false
}

func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}
