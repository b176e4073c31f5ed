// Package entity resolves, validates and views campaign documents.
//
// A document is a [docval.Map]. The [Registry] decides which [Type] a document
// has from its declared type field or its path, and each type's [Schema]
// checks the fields it knows while letting every other key pass through.
// Typed views such as [NPCView] are derived from a validated [Entity].
package entity

import "github.com/calvinalkan/campaign-vault/pkg/docval"

// Type is a canonical entity type name.
type Type string

// Entity types.
const (
	NPC       Type = "npc"
	Quest     Type = "quest"
	Location  Type = "location"
	Faction   Type = "faction"
	Monster   Type = "monster"
	Encounter Type = "encounter"
	Session   Type = "session"
	Domain    Type = "domain"
)

// AllTypes returns the canonical types in a fixed order.
func AllTypes() []Type {
	return []Type{NPC, Quest, Location, Faction, Monster, Encounter, Session, Domain}
}

// IsValid reports whether t is one of the canonical types.
func (t Type) IsValid() bool {
	switch t {
	case NPC, Quest, Location, Faction, Monster, Encounter, Session, Domain:
		return true
	}

	return false
}

func (t Type) String() string { return string(t) }

// Document keys with meaning to the engine.
const (
	KeyID     = "id"
	KeyType   = "type"
	KeyName   = "name"
	KeyTitle  = "title"
	KeyLedger = "relationship_ledger"
)

// LedgerBuckets are the relationship_ledger keys, in document order.
var LedgerBuckets = []string{"allies", "rivals", "debts_owed_to_npc", "debts_owed_by_npc"}

// Entity is a validated document. Doc holds every key of the source document,
// with "type" set to Type.
type Entity struct {
	Type Type
	Doc  *docval.Map
}

// ID returns the "id" field.
func (e Entity) ID() string {
	s, _ := e.Doc.GetString(KeyID)

	return s
}

// Name returns the "name" field or "".
func (e Entity) Name() string {
	s, _ := e.Doc.GetString(KeyName)

	return s
}

// Title returns the "title" field or "".
func (e Entity) Title() string {
	s, _ := e.Doc.GetString(KeyTitle)

	return s
}

// DisplayName is the name, else the title, else the id.
func (e Entity) DisplayName() string {
	if n := e.Name(); n != "" {
		return n
	}

	if t := e.Title(); t != "" {
		return t
	}

	return e.ID()
}
