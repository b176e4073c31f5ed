package backlinks_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/campaign-vault/pkg/backlinks"
	"github.com/calvinalkan/campaign-vault/pkg/docval"
	"github.com/calvinalkan/campaign-vault/pkg/entity"
)

func record(id, typ, name, path string, kv ...any) backlinks.Record {
	meta := docval.MapOf(kv...)
	meta.Set("id", docval.String(id))

	fields := meta.Clone()
	fields.Delete("id")

	return backlinks.Record{ID: id, Type: typ, Name: name, Metadata: meta, Fields: fields, Path: path}
}

func snapshot(recs ...backlinks.Record) *backlinks.Snapshot {
	snap := &backlinks.Snapshot{Root: "/vault", Entities: map[string]backlinks.Record{}}
	for _, r := range recs {
		snap.Entities[r.ID] = r
	}

	return snap
}

// Contract: each referencing entity appears once, ordered by name.
func Test_Compute_Returns_Each_Source_Once_Ordered_By_Name(t *testing.T) {
	t.Parallel()

	snap := snapshot(
		record("npc/tomas-02", "npc", "Tomas", "/vault/npc/tomas-02.md"),
		record("npc/zed", "npc", "zed", "/vault/npc/zed.md",
			"relationship_ledger", map[string]any{
				"allies": []any{map[string]any{"id": "npc/tomas-02"}},
				"rivals": []any{map[string]any{"id": " npc/tomas-02 "}},
			},
			"links", []any{"npc/tomas-02"},
		),
		record("quest/rescue", "quest", "Abduction", "quest/rescue.json",
			"references", []any{"npc/tomas-02"},
		),
		record("location/harbor", "location", "Harbor", "/vault/loc/harbor.md",
			"links", []any{"npc/someone-else"},
		),
	)

	got := backlinks.Compute("npc/tomas-02", snap, backlinks.Options{})

	want := []backlinks.Backlink{
		{ID: "quest/rescue", Type: "quest", Name: "Abduction", RelPath: "quest/rescue.json"},
		{ID: "npc/zed", Type: "npc", Name: "zed", RelPath: "npc/zed.md"},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("backlinks mismatch (-want +got):\n%s", diff)
	}
}

func Test_Compute_Orders_By_Id_When_Names_Tie_Or_Missing(t *testing.T) {
	t.Parallel()

	ref := []any{"npc/target"}
	snap := snapshot(
		record("npc/b", "npc", "Same", "b.md", "links", ref),
		record("npc/a", "npc", "same", "a.md", "links", ref),
		record("quest/c", "quest", "", "c.md", "links", ref),
		record("faction/q", "faction", "", "q.md", "links", ref),
	)

	got := backlinks.Compute("npc/target", snap, backlinks.Options{})

	var ids []string
	for _, b := range got {
		ids = append(ids, b.ID)
	}

	// "faction/q" < "quest/c" < "same" (npc/a, npc/b by id).
	want := []string{"faction/q", "quest/c", "npc/a", "npc/b"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func Test_Compute_Uses_Title_When_Name_Missing(t *testing.T) {
	t.Parallel()

	rec := record("session/3", "session", "", "session/3.md", "links", []any{"npc/x"})
	rec.Title = "Session Three"

	got := backlinks.Compute("npc/x", snapshot(rec), backlinks.Options{})
	if len(got) != 1 || got[0].Name != "Session Three" {
		t.Fatalf("got %+v", got)
	}
}

func Test_Compute_Searches_Only_Configured_Fields_When_Type_Configured(t *testing.T) {
	t.Parallel()

	snap := snapshot(
		record("domain/north", "domain", "North", "domain/north.md",
			"administrative_divisions", map[string]any{
				"counties": []any{map[string]any{"seat": "location/vale"}},
			},
		),
		record("npc/mira", "npc", "Mira", "npc/mira.md",
			"home", "location/vale",
		),
	)

	opts := backlinks.Options{
		FieldsByType: map[entity.Type][]string{
			entity.Domain: {"administrative_divisions"},
			entity.NPC:    {"relationship_ledger"},
		},
	}

	got := backlinks.Compute("location/vale", snap, opts)
	if len(got) != 1 || got[0].ID != "domain/north" {
		t.Fatalf("got %+v, want only domain/north", got)
	}

	// With the default list, "metadata" covers every key.
	got = backlinks.Compute("location/vale", snap, backlinks.Options{})
	if len(got) != 2 {
		t.Fatalf("got %+v, want both records", got)
	}
}

func Test_Compute_Returns_Empty_When_Snapshot_Nil(t *testing.T) {
	t.Parallel()

	got := backlinks.Compute("npc/x", nil, backlinks.Options{})
	if got == nil || len(got) != 0 {
		t.Fatalf("got %#v, want empty non-nil slice", got)
	}
}

func Test_ContainsID_Matches_Trimmed_Strings_At_Any_Depth(t *testing.T) {
	t.Parallel()

	cases := []struct {
		v    any
		want bool
	}{
		{"npc/a", true},
		{"  npc/a\n", true},
		{"npc/ab", false},
		{[]any{1, []any{map[string]any{"deep": "npc/a"}}}, true},
		{map[string]any{"npc/a": "key only"}, false},
		{3, false},
		{nil, false},
	}

	for _, tc := range cases {
		if got := backlinks.ContainsID(docval.MustFrom(tc.v), "npc/a"); got != tc.want {
			t.Errorf("ContainsID(%v)=%v, want %v", tc.v, got, tc.want)
		}
	}
}
