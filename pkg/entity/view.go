package entity

import (
	"fmt"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
)

// LedgerEntry is one normalized relationship reference.
type LedgerEntry struct {
	ID    string
	Notes string
}

// Ledger is an NPC's relationship ledger.
type Ledger struct {
	Allies         []LedgerEntry
	Rivals         []LedgerEntry
	DebtsOwedToNPC []LedgerEntry
	DebtsOwedByNPC []LedgerEntry
}

// Bucket returns the entries of the named bucket.
func (l Ledger) Bucket(name string) []LedgerEntry {
	switch name {
	case "allies":
		return l.Allies
	case "rivals":
		return l.Rivals
	case "debts_owed_to_npc":
		return l.DebtsOwedToNPC
	case "debts_owed_by_npc":
		return l.DebtsOwedByNPC
	}

	return nil
}

// NPCView is the typed form of an npc entity.
type NPCView struct {
	ID              string
	Name            string
	Aliases         []string
	Role            string
	KnowledgeTopics []string
	Ledger          Ledger
}

// NPC returns the typed view of an npc entity. Ledger entries that are still
// bare names are skipped; normalize the document first to see every entry.
func (e Entity) NPC() (NPCView, error) {
	if e.Type != NPC {
		return NPCView{}, fmt.Errorf("entity %s is a %s, not an npc", e.ID(), e.Type)
	}

	view := NPCView{
		ID:      e.ID(),
		Name:    e.Name(),
		Aliases: stringList(e.Doc, "aliases"),
	}

	view.Role, _ = e.Doc.GetString("role")

	if scope, ok := e.Doc.GetMap("knowledge_scope"); ok {
		view.KnowledgeTopics = stringList(scope, "topics")
	}

	if ledger, ok := e.Doc.GetMap(KeyLedger); ok {
		view.Ledger = Ledger{
			Allies:         ledgerEntries(ledger, "allies"),
			Rivals:         ledgerEntries(ledger, "rivals"),
			DebtsOwedToNPC: ledgerEntries(ledger, "debts_owed_to_npc"),
			DebtsOwedByNPC: ledgerEntries(ledger, "debts_owed_by_npc"),
		}
	}

	return view, nil
}

// DomainView is the typed form of a domain entity. The nested sections stay
// generic maps because authors extend them freely.
type DomainView struct {
	ID                      string
	Name                    string
	Geography               *docval.Map
	Politics                *docval.Map
	Economy                 *docval.Map
	AdministrativeDivisions *docval.Map
}

// Domain returns the typed view of a domain entity.
func (e Entity) Domain() (DomainView, error) {
	if e.Type != Domain {
		return DomainView{}, fmt.Errorf("entity %s is a %s, not a domain", e.ID(), e.Type)
	}

	view := DomainView{ID: e.ID(), Name: e.Name()}
	view.Geography, _ = e.Doc.GetMap("geography")
	view.Politics, _ = e.Doc.GetMap("politics")
	view.Economy, _ = e.Doc.GetMap("economy")
	view.AdministrativeDivisions, _ = e.Doc.GetMap("administrative_divisions")

	return view, nil
}

func stringList(m *docval.Map, key string) []string {
	v, _ := m.Get(key)
	items, _ := v.AsSeq()

	var out []string

	for _, item := range items {
		if s, ok := item.AsString(); ok {
			out = append(out, s)
		}
	}

	return out
}

func ledgerEntries(ledger *docval.Map, bucket string) []LedgerEntry {
	v, _ := ledger.Get(bucket)
	items, _ := v.AsSeq()

	var out []LedgerEntry

	for _, item := range items {
		m, ok := item.AsMap()
		if !ok {
			continue
		}

		id, _ := m.GetString(KeyID)
		notes, _ := m.GetString("notes")
		out = append(out, LedgerEntry{ID: id, Notes: notes})
	}

	return out
}
