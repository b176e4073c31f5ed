// Package backlinks finds the entities of a vault snapshot that reference a
// given entity id.
package backlinks

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
	"github.com/calvinalkan/campaign-vault/pkg/entity"
)

// Record is one entity as seen by a vault snapshot. Metadata is the document
// as read from disk; Fields is the same document without its identity keys
// (id, type, name, title).
type Record struct {
	ID       string
	Type     string
	Name     string
	Title    string
	Metadata *docval.Map
	Fields   *docval.Map
	Path     string
	MTime    time.Time
}

// Snapshot is a point-in-time view of every entity in a vault, keyed by id.
// Consumers treat it as read-only.
type Snapshot struct {
	Root     string
	Entities map[string]Record
}

// Backlink describes an entity that references the queried one.
type Backlink struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	RelPath string `json:"relPath"`
}

// Options selects the fields searched for references. FieldsByType wins over
// Default; with neither, [entity.DefaultBacklinkFields] is used.
type Options struct {
	FieldsByType map[entity.Type][]string
	Default      []string
}

func (o Options) fieldsFor(t string) []string {
	if fields, ok := o.FieldsByType[entity.Type(t)]; ok {
		return fields
	}

	if o.Default != nil {
		return o.Default
	}

	return entity.DefaultBacklinkFields
}

// Compute returns every entity in snap, other than targetID itself, whose
// candidate fields contain a string equal to targetID after trimming, at any
// depth. Each source entity appears at most once. The result is ordered by
// case-insensitive name (id when the name is empty), then by id.
func Compute(targetID string, snap *Snapshot, opts Options) []Backlink {
	targetID = strings.TrimSpace(targetID)
	if snap == nil || targetID == "" {
		return []Backlink{}
	}

	keys := make([]string, 0, len(snap.Entities))
	for k := range snap.Entities {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	seen := make(map[string]struct{}, len(keys))
	out := make([]Backlink, 0)

	for _, key := range keys {
		rec := snap.Entities[key]

		id := rec.ID
		if id == "" {
			id = key
		}

		if id == targetID {
			continue
		}

		if _, dup := seen[id]; dup {
			continue
		}

		if !references(rec, opts.fieldsFor(rec.Type), targetID) {
			continue
		}

		seen[id] = struct{}{}

		name := rec.Name
		if name == "" {
			name = rec.Title
		}

		out = append(out, Backlink{
			ID:      id,
			Type:    rec.Type,
			Name:    name,
			RelPath: relPath(snap.Root, rec.Path),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := sortKey(out[i]), sortKey(out[j])
		if a != b {
			return a < b
		}

		return out[i].ID < out[j].ID
	})

	return out
}

func sortKey(b Backlink) string {
	if b.Name != "" {
		return strings.ToLower(b.Name)
	}

	return strings.ToLower(b.ID)
}

func references(rec Record, fields []string, target string) bool {
	for _, field := range fields {
		v, ok := candidate(rec, field)
		if ok && ContainsID(v, target) {
			return true
		}
	}

	return false
}

// candidate resolves a candidate field name. "metadata" and "fields" name
// the record's maps; other names are top-level keys of Fields, then Metadata.
func candidate(rec Record, field string) (docval.Value, bool) {
	switch field {
	case "metadata":
		return docval.MapValue(rec.Metadata), rec.Metadata != nil
	case "fields":
		return docval.MapValue(rec.Fields), rec.Fields != nil
	}

	if v, ok := rec.Fields.Get(field); ok {
		return v, true
	}

	return rec.Metadata.Get(field)
}

// ContainsID reports whether v is, or contains at any depth, a string equal
// to id after trimming.
func ContainsID(v docval.Value, id string) bool {
	switch v.Kind() {
	case docval.KindString:
		s, _ := v.AsString()

		return strings.TrimSpace(s) == id
	case docval.KindSeq:
		items, _ := v.AsSeq()
		for _, item := range items {
			if ContainsID(item, id) {
				return true
			}
		}
	case docval.KindMap:
		m, _ := v.AsMap()

		found := false

		m.Range(func(_ string, item docval.Value) bool {
			found = ContainsID(item, id)

			return !found
		})

		return found
	}

	return false
}

func relPath(root, path string) string {
	if root != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(root, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}

	return filepath.ToSlash(path)
}
