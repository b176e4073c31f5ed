package entity

import (
	"fmt"
	"strings"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
)

// Issue is one field-level validation problem. Field is a dotted path such
// as "relationship_ledger.allies[0].id".
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Field == "" {
		return i.Message
	}

	return i.Field + ": " + i.Message
}

// ValidationError lists every issue found in one document.
type ValidationError struct {
	Type   Type
	Path   string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}

	return fmt.Sprintf("invalid %s document: %s", e.Type, strings.Join(parts, "; "))
}

// Validate checks doc against s and returns the entity with "type" set to
// s.Type. doc is not modified. path only annotates the error.
func (s *Schema) Validate(doc *docval.Map, path string) (Entity, error) {
	v := &validator{}

	id, hasID := doc.Get(KeyID)

	switch idStr, isStr := id.AsString(); {
	case !hasID || id.IsNull():
		v.add(KeyID, "is required")
	case !isStr:
		v.add(KeyID, "must be a string")
	case !ValidID(idStr):
		v.add(KeyID, fmt.Sprintf("%q is not a valid id", idStr))
	}

	if t, ok := doc.Get(KeyType); ok && t.Kind() != docval.KindString {
		v.add(KeyType, "must be a string")
	}

	// A non-string name is reported by the field checks below.
	if s.RequireName {
		name, ok := doc.Get(KeyName)
		nameStr, isStr := name.AsString()

		if !ok || name.IsNull() || (isStr && strings.TrimSpace(nameStr) == "") {
			v.add(KeyName, "must be a non-empty string")
		}
	}

	v.fields(doc, s.Fields, "")

	if len(v.issues) > 0 {
		return Entity{}, &ValidationError{Type: s.Type, Path: path, Issues: v.issues}
	}

	out := doc.Clone()
	out.Set(KeyType, docval.String(string(s.Type)))

	return Entity{Type: s.Type, Doc: out}, nil
}

type validator struct {
	issues []Issue
}

func (v *validator) add(field, msg string) {
	v.issues = append(v.issues, Issue{Field: field, Message: msg})
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}

	return prefix + "." + key
}

// fields checks the recognized keys of m. Absent and null values are allowed.
func (v *validator) fields(m *docval.Map, fields []Field, prefix string) {
	for _, f := range fields {
		val, ok := m.Get(f.Key)
		if !ok || val.IsNull() {
			continue
		}

		v.field(val, f, join(prefix, f.Key))
	}
}

func (v *validator) field(val docval.Value, f Field, path string) {
	switch f.Kind {
	case KindString:
		if val.Kind() != docval.KindString {
			v.add(path, "must be a string, got "+val.Kind().String())
		}
	case KindStringList:
		items, ok := val.AsSeq()
		if !ok {
			v.add(path, "must be a list of strings, got "+val.Kind().String())

			return
		}

		for i, item := range items {
			if item.Kind() != docval.KindString {
				v.add(fmt.Sprintf("%s[%d]", path, i), "must be a string, got "+item.Kind().String())
			}
		}
	case KindNumberOrString:
		if k := val.Kind(); k != docval.KindNumber && k != docval.KindString {
			v.add(path, "must be a number or string, got "+k.String())
		}
	case KindBool:
		if val.Kind() != docval.KindBool {
			v.add(path, "must be a boolean, got "+val.Kind().String())
		}
	case KindObject:
		m, ok := val.AsMap()
		if !ok {
			v.add(path, "must be an object, got "+val.Kind().String())

			return
		}

		v.fields(m, f.Fields, path)
	case KindLedger:
		v.ledger(val, path)
	}
}

func (v *validator) ledger(val docval.Value, path string) {
	m, ok := val.AsMap()
	if !ok {
		v.add(path, "must be an object, got "+val.Kind().String())

		return
	}

	for _, bucket := range LedgerBuckets {
		b, ok := m.Get(bucket)
		if !ok || b.IsNull() {
			continue
		}

		bucketPath := join(path, bucket)

		entries, ok := b.AsSeq()
		if !ok {
			v.add(bucketPath, "must be a list, got "+b.Kind().String())

			continue
		}

		for i, entry := range entries {
			v.ledgerEntry(entry, fmt.Sprintf("%s[%d]", bucketPath, i))
		}
	}
}

func (v *validator) ledgerEntry(entry docval.Value, path string) {
	if s, ok := entry.AsString(); ok {
		if strings.TrimSpace(s) == "" {
			v.add(path, "must not be empty")
		}

		return
	}

	m, ok := entry.AsMap()
	if !ok {
		v.add(path, "must be a name or an object with an id, got "+entry.Kind().String())

		return
	}

	id, ok := m.GetString(KeyID)

	switch {
	case !ok:
		v.add(path+".id", "must be a string")
	case !ValidID(id):
		v.add(path+".id", fmt.Sprintf("%q is not a valid id", id))
	}

	if notes, ok := m.Get("notes"); ok && !notes.IsNull() && notes.Kind() != docval.KindString {
		v.add(path+".notes", "must be a string, got "+notes.Kind().String())
	}
}
