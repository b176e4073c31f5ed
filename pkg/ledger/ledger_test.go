package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
	"github.com/calvinalkan/campaign-vault/pkg/ledger"
)

var errNotFound = errors.New("not found")

func names(known map[string]string) ledger.Resolver {
	return ledger.ResolverFunc(func(_ context.Context, ref string) (string, error) {
		if id, ok := known[ref]; ok {
			return id, nil
		}

		return "", errNotFound
	})
}

func Test_Normalize_Resolves_Names_And_Keeps_Objects_When_All_Resolvable(t *testing.T) {
	t.Parallel()

	doc := docval.MapOf(
		"id", "npc/mira-01",
		"name", "Mira",
		"relationship_ledger", map[string]any{
			"allies":            []any{"Tomas", map[string]any{"id": "npc/vex", "notes": "uneasy truce"}},
			"rivals":            []any{},
			"debts_owed_by_npc": []any{" The Guild "},
			"gossip":            []any{"left alone"},
		},
	)
	before := doc.Clone()

	n := &ledger.Normalizer{Resolver: names(map[string]string{
		"Tomas":     "npc/tomas-02",
		"The Guild": "faction/guild",
	})}

	got, err := n.Normalize(context.Background(), doc)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	want := map[string]any{
		"id":   "npc/mira-01",
		"name": "Mira",
		"relationship_ledger": map[string]any{
			"allies": []any{
				map[string]any{"id": "npc/tomas-02"},
				map[string]any{"id": "npc/vex", "notes": "uneasy truce"},
			},
			"rivals":            []any{},
			"debts_owed_by_npc": []any{map[string]any{"id": "faction/guild"}},
			"gossip":            []any{"left alone"},
		},
	}

	if diff := cmp.Diff(want, got.Interface()); diff != "" {
		t.Fatalf("normalized mismatch (-want +got):\n%s", diff)
	}

	if !doc.Equal(before) {
		t.Fatalf("input modified")
	}
}

func Test_Normalize_Yields_Same_Result_When_Entry_Is_Name_Or_Object(t *testing.T) {
	t.Parallel()

	n := &ledger.Normalizer{Resolver: names(map[string]string{"Mira": "npc/mira-01"})}

	byName := docval.MapOf("relationship_ledger", map[string]any{"allies": []any{"Mira"}})
	byObject := docval.MapOf("relationship_ledger", map[string]any{"allies": []any{map[string]any{"id": "npc/mira-01"}}})

	a, err := n.Normalize(context.Background(), byName)
	if err != nil {
		t.Fatalf("by name: %v", err)
	}

	b, err := n.Normalize(context.Background(), byObject)
	if err != nil {
		t.Fatalf("by object: %v", err)
	}

	if !a.Equal(b) {
		t.Fatalf("shapes normalize differently:\n%s\n%s", docval.MapValue(a), docval.MapValue(b))
	}
}

func Test_Normalize_Returns_Error_When_Name_Unresolvable(t *testing.T) {
	t.Parallel()

	n := &ledger.Normalizer{Resolver: names(nil)}
	doc := docval.MapOf("relationship_ledger", map[string]any{
		"allies": []any{map[string]any{"id": "npc/tomas-02"}},
		"rivals": []any{"Mira"},
	})

	_, err := n.Normalize(context.Background(), doc)

	var lErr *ledger.Error
	if !errors.As(err, &lErr) {
		t.Fatalf("err=%v, want *ledger.Error", err)
	}

	if lErr.Bucket != "rivals" || lErr.Index != 0 || lErr.Ref != "Mira" {
		t.Fatalf("error context = %+v", lErr)
	}

	if !errors.Is(err, errNotFound) {
		t.Fatalf("resolver error not wrapped: %v", err)
	}

	if got, want := err.Error(), `relationship_ledger.rivals[0] "Mira": not found`; got != want {
		t.Fatalf("message=%q, want %q", got, want)
	}
}

func Test_Normalize_Returns_Error_When_Object_Id_Invalid(t *testing.T) {
	t.Parallel()

	n := &ledger.Normalizer{Resolver: names(nil)}

	for _, entry := range []any{
		map[string]any{"id": "not an id"},
		map[string]any{"notes": "no id"},
		42,
		nil,
	} {
		doc := docval.MapOf("relationship_ledger", map[string]any{"allies": []any{entry}})

		_, err := n.Normalize(context.Background(), doc)
		if !errors.Is(err, ledger.ErrInvalidEntry) {
			t.Fatalf("entry %v: err=%v, want ErrInvalidEntry", entry, err)
		}
	}
}

func Test_Normalize_Leaves_Document_When_No_Ledger_Or_Bad_Shape(t *testing.T) {
	t.Parallel()

	n := &ledger.Normalizer{}

	for _, doc := range []*docval.Map{
		docval.MapOf("id", "npc/a"),
		docval.MapOf("relationship_ledger", "not an object"),
		docval.MapOf("relationship_ledger", map[string]any{"allies": "Tomas"}),
	} {
		got, err := n.Normalize(context.Background(), doc)
		if err != nil {
			t.Fatalf("normalize %s: %v", docval.MapValue(doc), err)
		}

		if !got.Equal(doc) {
			t.Fatalf("document changed: %s", docval.MapValue(got))
		}
	}
}
