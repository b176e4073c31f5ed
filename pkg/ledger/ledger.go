// Package ledger normalizes NPC relationship ledgers.
//
// Authors may write a ledger entry as a bare name ("Tomas") or as an object
// ({id: npc/tomas-02, notes: ...}). [Normalizer.Normalize] rewrites every
// entry into the object form, asking a [Resolver] to turn names into ids.
// Resolution failures abort normalization; no entry is ever dropped.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
	"github.com/calvinalkan/campaign-vault/pkg/entity"
)

// Resolver turns a display name or alias into a canonical entity id.
type Resolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// ResolverFunc adapts a function to [Resolver].
type ResolverFunc func(ctx context.Context, ref string) (string, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

// ErrInvalidEntry is wrapped when an object entry carries no valid id.
var ErrInvalidEntry = errors.New("ledger entry has no valid id")

// Error reports the entry normalization failed on.
type Error struct {
	Bucket string
	Index  int
	Ref    string
	Err    error
}

func (e *Error) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("relationship_ledger.%s[%d] %q: %v", e.Bucket, e.Index, e.Ref, e.Err)
	}

	return fmt.Sprintf("relationship_ledger.%s[%d]: %v", e.Bucket, e.Index, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Normalizer rewrites ledger entries into {id, notes?} objects.
type Normalizer struct {
	Resolver Resolver
}

// Normalize returns a copy of doc whose relationship_ledger buckets hold only
// object entries. doc is not modified. Documents without a ledger, and
// buckets that are not lists, are returned as they are; shape problems are
// left to the schema.
func (n *Normalizer) Normalize(ctx context.Context, doc *docval.Map) (*docval.Map, error) {
	ledger, ok := doc.GetMap(entity.KeyLedger)
	if !ok {
		return doc.Clone(), nil
	}

	out := doc.Clone()
	normalized := ledger.Clone()

	for _, bucket := range entity.LedgerBuckets {
		v, ok := ledger.Get(bucket)
		if !ok {
			continue
		}

		entries, ok := v.AsSeq()
		if !ok {
			continue
		}

		items := make([]docval.Value, 0, len(entries))

		for i, entry := range entries {
			item, err := n.entry(ctx, entry)
			if err != nil {
				ref, _ := entry.AsString()

				return nil, &Error{Bucket: bucket, Index: i, Ref: ref, Err: err}
			}

			items = append(items, item)
		}

		normalized.Set(bucket, docval.Seq(items...))
	}

	out.Set(entity.KeyLedger, docval.MapValue(normalized))

	return out, nil
}

func (n *Normalizer) entry(ctx context.Context, entry docval.Value) (docval.Value, error) {
	if m, ok := entry.AsMap(); ok {
		id, _ := m.GetString(entity.KeyID)
		if !entity.ValidID(id) {
			return docval.Value{}, fmt.Errorf("%w: %q", ErrInvalidEntry, id)
		}

		return docval.MapValue(m.Clone()), nil
	}

	ref, ok := entry.AsString()
	if !ok {
		return docval.Value{}, fmt.Errorf("%w: entry is a %s", ErrInvalidEntry, entry.Kind())
	}

	ref = strings.TrimSpace(ref)

	if n.Resolver == nil {
		return docval.Value{}, fmt.Errorf("cannot resolve %q: no resolver configured", ref)
	}

	id, err := n.Resolver.Resolve(ctx, ref)
	if err != nil {
		return docval.Value{}, err
	}

	if !entity.ValidID(id) {
		return docval.Value{}, fmt.Errorf("%w: resolver returned %q", ErrInvalidEntry, id)
	}

	return docval.MapValue(docval.MapOf(entity.KeyID, id)), nil
}
