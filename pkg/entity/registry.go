package entity

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Resolution errors.
var (
	ErrUnknownType   = errors.New("unknown entity type")
	ErrSchemaMissing = errors.New("no schema registered")
)

// Registry maps aliases and path segments to canonical types, and types to
// schemas. A Registry is not safe for concurrent mutation; configure it before
// handing it to an engine.
type Registry struct {
	aliases map[string]Type
	schemas map[Type]*Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		aliases: make(map[string]Type),
		schemas: make(map[Type]*Schema),
	}
}

var defaultAliases = map[Type][]string{
	NPC:       {"npcs", "character", "characters"},
	Quest:     {"quests", "mission", "missions"},
	Location:  {"locations", "loc", "locs", "place", "places"},
	Faction:   {"factions", "organization", "organizations", "guild", "guilds"},
	Monster:   {"monsters", "creature", "creatures", "bestiary"},
	Encounter: {"encounters"},
	Session:   {"sessions", "session-notes"},
	Domain:    {"domains", "domain-smith", "realm", "realms"},
}

// DefaultRegistry returns a registry with every canonical type, its aliases
// and its built-in schema.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	for _, t := range AllTypes() {
		r.RegisterSchema(builtinSchema(t))
		r.RegisterAlias(string(t), t)

		for _, alias := range defaultAliases[t] {
			r.RegisterAlias(alias, t)
		}
	}

	return r
}

// RegisterAlias maps alias (case-insensitive) to t. Later registrations
// replace earlier ones.
func (r *Registry) RegisterAlias(alias string, t Type) {
	key := strings.ToLower(strings.TrimSpace(alias))
	if key == "" {
		return
	}

	r.aliases[key] = t
}

// RegisterSchema installs s for s.Type.
func (r *Registry) RegisterSchema(s *Schema) {
	r.schemas[s.Type] = s
}

// Lookup maps an alias to its type.
func (r *Registry) Lookup(alias string) (Type, bool) {
	t, ok := r.aliases[strings.ToLower(strings.TrimSpace(alias))]

	return t, ok
}

// Schema returns the schema registered for t.
func (r *Registry) Schema(t Type) (*Schema, bool) {
	s, ok := r.schemas[t]

	return s, ok
}

// Types returns the types with a registered schema, sorted.
func (r *Registry) Types() []Type {
	out := make([]Type, 0, len(r.schemas))
	for t := range r.schemas {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// BacklinkFields returns each registered type's backlink candidate fields.
func (r *Registry) BacklinkFields() map[Type][]string {
	out := make(map[Type][]string, len(r.schemas))

	for t, s := range r.schemas {
		if len(s.BacklinkFields) > 0 {
			out[t] = append([]string(nil), s.BacklinkFields...)
		}
	}

	return out
}

// Resolution is the outcome of [Registry.Resolve].
type Resolution struct {
	Type   Type
	Schema *Schema
}

// Resolve picks the type of a document. A declared type that names a known
// alias wins. Otherwise the lower-cased path is split on '/' and '\' and the
// last segment that names an alias decides, so the directory closest to the
// file beats its ancestors.
func (r *Registry) Resolve(declared, path string) (Resolution, error) {
	t, ok := r.Lookup(declared)
	if !ok {
		t, ok = r.inferFromPath(path)
	}

	if !ok {
		if strings.TrimSpace(declared) != "" {
			return Resolution{}, fmt.Errorf("%w: %q", ErrUnknownType, declared)
		}

		return Resolution{}, fmt.Errorf("%w: no type declared and none inferable from path %q", ErrUnknownType, path)
	}

	s, ok := r.schemas[t]
	if !ok {
		return Resolution{Type: t}, fmt.Errorf("%w: type %q", ErrSchemaMissing, t)
	}

	return Resolution{Type: t, Schema: s}, nil
}

func (r *Registry) inferFromPath(path string) (Type, bool) {
	segments := strings.FieldsFunc(strings.ToLower(path), func(c rune) bool {
		return c == '/' || c == '\\'
	})

	for i := len(segments) - 1; i >= 0; i-- {
		if t, ok := r.aliases[segments[i]]; ok {
			return t, true
		}
	}

	return "", false
}
