package vaultindex

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/calvinalkan/campaign-vault/pkg/ledger"
	"github.com/calvinalkan/campaign-vault/pkg/vault"
)

var (
	// ErrUnresolved means no entity carries the reference as id, name, title
	// or alias.
	ErrUnresolved = errors.New("no entity matches")

	// ErrAmbiguous means more than one entity carries the reference.
	ErrAmbiguous = errors.New("matches several entities")
)

// minSimilarity is the Jaro-Winkler score a name needs to be suggested.
const minSimilarity = 0.85

const maxSuggestions = 3

// ResolveError wraps [ErrUnresolved] or [ErrAmbiguous]. The ref itself is
// not part of the message; callers such as the ledger normalizer already
// name it.
type ResolveError struct {
	Ref string

	// Candidates holds the sorted ids of an ambiguous match.
	Candidates []string

	// Suggestions holds ids with similar names when nothing matched.
	Suggestions []string

	Err error
}

func (e *ResolveError) Error() string {
	switch {
	case len(e.Candidates) > 0:
		return e.Err.Error() + ": " + strings.Join(e.Candidates, ", ")
	case len(e.Suggestions) > 0:
		return e.Err.Error() + " (did you mean " + strings.Join(e.Suggestions, ", ") + "?)"
	}

	return e.Err.Error()
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Resolver maps names to ids against an [Index].
type Resolver struct {
	Index vault.IndexLoader
}

var _ ledger.Resolver = (*Resolver)(nil)

// Resolve returns the id of the single entity whose id, name, title or alias
// equals ref, ignoring case and surrounding space. When nothing matches in
// the cached snapshot the vault is rescanned once before giving up.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	key := fold(ref)
	if key == "" {
		return "", &ResolveError{Ref: ref, Err: ErrUnresolved}
	}

	snap, err := r.Index.LoadVaultIndex(ctx, false)
	if err != nil {
		return "", err
	}

	ids := matches(snap, key)
	if len(ids) == 0 {
		snap, err = r.Index.LoadVaultIndex(ctx, true)
		if err != nil {
			return "", err
		}

		ids = matches(snap, key)
	}

	switch len(ids) {
	case 0:
		return "", &ResolveError{Ref: ref, Suggestions: suggest(snap, key), Err: ErrUnresolved}
	case 1:
		return ids[0], nil
	}

	return "", &ResolveError{Ref: ref, Candidates: ids, Err: ErrAmbiguous}
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func matches(snap *vault.Snapshot, key string) []string {
	var ids []string

	for id, rec := range snap.Entities {
		for _, label := range labels(rec) {
			if fold(label) == key {
				ids = append(ids, id)

				break
			}
		}
	}

	sort.Strings(ids)

	return ids
}

// labels returns every string a record can be referred to by.
func labels(rec vault.Record) []string {
	out := []string{rec.ID}

	if rec.Name != "" {
		out = append(out, rec.Name)
	}

	if rec.Title != "" {
		out = append(out, rec.Title)
	}

	v, _ := rec.Metadata.Get("aliases")
	items, _ := v.AsSeq()

	for _, item := range items {
		if s, ok := item.AsString(); ok && s != "" {
			out = append(out, s)
		}
	}

	return out
}

type suggestion struct {
	id    string
	score float64
}

// suggest ranks entities whose labels look or sound like key.
func suggest(snap *vault.Snapshot, key string) []string {
	keyPrimary, _ := matchr.DoubleMetaphone(key)

	var found []suggestion

	for id, rec := range snap.Entities {
		best := 0.0

		for _, label := range labels(rec) {
			label = fold(label)

			score := matchr.JaroWinkler(key, label, false)
			if score < minSimilarity && keyPrimary != "" {
				if p, _ := matchr.DoubleMetaphone(label); p == keyPrimary {
					score = minSimilarity
				}
			}

			if score > best {
				best = score
			}
		}

		if best >= minSimilarity {
			found = append(found, suggestion{id: id, score: best})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].score != found[j].score {
			return found[i].score > found[j].score
		}

		return found[i].id < found[j].id
	})

	if len(found) > maxSuggestions {
		found = found[:maxSuggestions]
	}

	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.id
	}

	return out
}
