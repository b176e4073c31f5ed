package docval_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
)

func Test_SortKeys_Is_Idempotent_When_Applied_Twice(t *testing.T) {
	t.Parallel()

	inputs := []docval.Value{
		docval.Null(),
		docval.String("x"),
		docval.Seq(docval.Number(3), docval.Number(1)),
		docval.MapValue(docval.MapOf(
			"zeta", 1,
			"alpha", map[string]any{"b": true, "a": []any{"z", map[string]any{"y": 1, "x": 2}}},
			"mid", nil,
		)),
	}

	for _, in := range inputs {
		once := docval.SortKeys(in)
		twice := docval.SortKeys(once)

		if got, want := string(docval.MarshalJSONIndent(twice, "")), string(docval.MarshalJSONIndent(once, "")); got != want {
			t.Fatalf("sortKeys not idempotent\nonce:  %s\ntwice: %s", want, got)
		}
	}
}

func Test_SortKeys_Orders_Nested_Keys_When_Map_Is_Unsorted(t *testing.T) {
	t.Parallel()

	m := docval.NewMap()
	m.Set("type", docval.String("quest"))
	m.Set("id", docval.String("quest/rescue"))

	inner := docval.NewMap()
	inner.Set("b", docval.Number(2))
	inner.Set("a", docval.Number(1))
	m.Set("meta", docval.Seq(docval.MapValue(inner)))

	sorted := docval.SortKeys(docval.MapValue(m))

	got := string(docval.MarshalJSONIndent(sorted, ""))
	want := `{"id":"quest/rescue","meta":[{"a":1,"b":2}],"type":"quest"}`

	if got != want {
		t.Fatalf("got %s want %s", got, want)
	}

	// Input is untouched.
	if diff := cmp.Diff([]string{"type", "id", "meta"}, m.Keys()); diff != "" {
		t.Fatalf("input keys changed (-want +got):\n%s", diff)
	}
}

func Test_EncodeCanonicalJSON_Returns_Pretty_Output_With_Trailing_Newline(t *testing.T) {
	t.Parallel()

	doc := docval.MapOf(
		"type", "quest",
		"id", "quest/rescue",
		"name", "Rescue",
		"tags", []any{},
		"reward", map[string]any{},
		"steps", []any{"a", 2.5},
	)

	got := string(docval.EncodeCanonicalJSON(docval.MapValue(doc)))
	want := strings.Join([]string{
		"{",
		`  "id": "quest/rescue",`,
		`  "name": "Rescue",`,
		`  "reward": {},`,
		`  "steps": [`,
		`    "a",`,
		`    2.5`,
		`  ],`,
		`  "tags": [],`,
		`  "type": "quest"`,
		"}",
		"",
	}, "\n")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("canonical output mismatch (-want +got):\n%s", diff)
	}
}

func Test_ParseJSON_Preserves_Key_Order_When_Valid(t *testing.T) {
	t.Parallel()

	v, err := docval.ParseJSON([]byte(`{"z": 1, "a": {"y": null, "b": [true, "sé"]}, "n": -1.5e3}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	m, ok := v.AsMap()
	if !ok {
		t.Fatalf("want map, got %s", v.Kind())
	}

	if diff := cmp.Diff([]string{"z", "a", "n"}, m.Keys()); diff != "" {
		t.Fatalf("key order (-want +got):\n%s", diff)
	}

	want := map[string]any{
		"z": float64(1),
		"a": map[string]any{"y": nil, "b": []any{true, "sé"}},
		"n": float64(-1500),
	}

	if diff := cmp.Diff(want, m.Interface()); diff != "" {
		t.Fatalf("values (-want +got):\n%s", diff)
	}
}

func Test_ParseJSON_Returns_Error_When_Input_Is_Not_Standard_JSON(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"comment":        "{\"a\": 1 // note\n}",
		"trailing comma": `{"a": 1,}`,
		"truncated":      `{"a": `,
		"garbage":        `hello`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := docval.ParseJSON([]byte(input))
			if err == nil {
				t.Fatalf("expected error for %q", input)
			}
		})
	}

	_, err := docval.ParseJSON([]byte(`[1,]`))
	if !errors.Is(err, docval.ErrNotStandardJSON) {
		t.Fatalf("trailing comma: got %v, want ErrNotStandardJSON", err)
	}
}

func Test_FormatNumber_Matches_JavaScript_When_Various_Magnitudes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{-12, "-12"},
		{2.5, "2.5"},
		{0.000001, "0.000001"},
		{1e-7, "1e-7"},
		{1e21, "1e+21"},
		{123456789012, "123456789012"},
	}

	for _, tc := range cases {
		if got := docval.FormatNumber(tc.in); got != tc.want {
			t.Errorf("FormatNumber(%v)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func Test_Map_Set_Keeps_Position_When_Key_Exists(t *testing.T) {
	t.Parallel()

	m := docval.NewMap()
	m.Set("a", docval.Number(1))
	m.Set("b", docval.Number(2))
	m.Set("a", docval.Number(3))
	m.Delete("missing")

	if diff := cmp.Diff([]string{"a", "b"}, m.Keys()); diff != "" {
		t.Fatalf("keys (-want +got):\n%s", diff)
	}

	v, _ := m.Get("a")
	if n, _ := v.AsNumber(); n != 3 {
		t.Fatalf("a=%v, want 3", n)
	}

	m.Delete("a")

	if m.Has("a") || m.Len() != 1 {
		t.Fatalf("delete failed: keys=%v", m.Keys())
	}
}

func Test_Value_Clone_Is_Deep_When_Nested(t *testing.T) {
	t.Parallel()

	orig := docval.MapValue(docval.MapOf("list", []any{map[string]any{"k": "v"}}))
	clone := orig.Clone()

	cm, _ := clone.AsMap()
	list, _ := cm.Get("list")
	items, _ := list.AsSeq()
	inner, _ := items[0].AsMap()
	inner.Set("k", docval.String("changed"))

	if !orig.Equal(docval.MustFrom(map[string]any{"list": []any{map[string]any{"k": "v"}}})) {
		t.Fatalf("original mutated through clone: %s", orig)
	}
}
