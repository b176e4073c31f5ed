package frontmatter_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
	"github.com/calvinalkan/campaign-vault/pkg/frontmatter"
)

// Contract: on the shared subset the codec agrees with a full YAML parser, and
// what Encode writes is valid YAML meaning the same document.
func Test_Decode_Matches_YAMLv3_When_Input_In_Shared_Subset(t *testing.T) {
	t.Parallel()

	docs := []string{
		"id: npc/mira-01\ntype: npc\nname: Mira\nlevel: 3\nratio: 0.25\nalive: true\nnothing: null",
		"tags: [smith, 'old guard', \"x, y\"]\naliases:\n  - The Smith\n  - Mira",
		"relationship_ledger:\n  allies:\n    - id: npc/tomas-02\n      notes: owes a favour\n    - Brann\n  rivals: []",
		"geography:\n  regions:\n  - Coast\n  - Highlands\n  climate: cold # trailing\n# comment\nname: North",
		"matrix:\n  - - a\n    - b\n  -\n    k: v\nempty: {}",
	}

	for _, doc := range docs {
		meta, _ := frontmatter.DecodeString("---\n" + doc + "\n---\n")

		var want map[string]any
		if err := yaml.Unmarshal([]byte(doc), &want); err != nil {
			t.Fatalf("yaml.v3 rejected %q: %v", doc, err)
		}

		if diff := cmp.Diff(normalizeYAML(want), meta.Interface()); diff != "" {
			t.Fatalf("decode disagrees with yaml.v3 for\n%s\n(-yaml.v3 +codec):\n%s", doc, diff)
		}
	}
}

func Test_Encode_Output_Parses_With_YAMLv3(t *testing.T) {
	t.Parallel()

	meta := docval.MapOf(
		"id", "npc/mira-01",
		"motto", "fire: and steel",
		"code", "007",
		"flag", "true",
		"weird", []any{"-", "# hash", " padded", "multi\nline", "it's"},
		"ledger", map[string]any{
			"allies": []any{map[string]any{"id": "npc/tomas-02", "notes": "friend"}, "Brann"},
			"rivals": []any{},
		},
		"matrix", []any{[]any{"a"}, map[string]any{"k": 1.5}},
		"scene", map[string]any{},
		"nothing", nil,
	)

	var got map[string]any
	if err := yaml.Unmarshal([]byte(frontmatter.MarshalYAML(meta)), &got); err != nil {
		t.Fatalf("yaml.v3 rejected encoded output: %v\n%s", err, frontmatter.MarshalYAML(meta))
	}

	if diff := cmp.Diff(meta.Interface(), normalizeYAML(got)); diff != "" {
		t.Fatalf("yaml.v3 reads a different document (-want +got):\n%s", diff)
	}
}

// normalizeYAML maps yaml.v3's decoded values onto the codec's value model:
// every number is a float64.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeYAML(item)
		}

		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeYAML(item)
		}

		return out
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
