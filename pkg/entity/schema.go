package entity

// FieldKind is the shape a recognized field must have.
type FieldKind uint8

// Field kinds.
const (
	KindString FieldKind = iota
	KindStringList
	KindNumberOrString
	KindBool
	KindObject
	KindLedger
)

func (k FieldKind) String() string {
	switch k {
	case KindStringList:
		return "list of strings"
	case KindNumberOrString:
		return "number or string"
	case KindBool:
		return "boolean"
	case KindObject:
		return "object"
	case KindLedger:
		return "relationship ledger"
	default:
		return "string"
	}
}

// Field is an optional recognized key. Object fields list their own
// recognized sub-keys in Fields; other sub-keys pass through.
type Field struct {
	Key    string
	Kind   FieldKind
	Fields []Field
}

// Schema is the structural contract of one entity type. Only "id" (and
// "name" when RequireName is set) are mandatory. Keys not listed in Fields
// are kept as they are.
type Schema struct {
	Type        Type
	RequireName bool
	Fields      []Field

	// BacklinkFields are the keys searched when this type's documents are
	// scanned for references to another entity.
	BacklinkFields []string
}

// DefaultBacklinkFields is the candidate field list used for types that do
// not configure their own.
var DefaultBacklinkFields = []string{"metadata", "fields", "relationships", "relationship_ledger", "links", "references"}

func str(key string) Field      { return Field{Key: key, Kind: KindString} }
func strList(key string) Field  { return Field{Key: key, Kind: KindStringList} }
func numOrStr(key string) Field { return Field{Key: key, Kind: KindNumberOrString} }

func object(key string, fields ...Field) Field {
	return Field{Key: key, Kind: KindObject, Fields: fields}
}

var commonFields = []Field{
	str(KeyName),
	str(KeyTitle),
	str("summary"),
	str("description"),
	strList("aliases"),
	strList("tags"),
	strList("links"),
	strList("references"),
}

func builtinSchema(t Type) *Schema {
	s := &Schema{Type: t, BacklinkFields: DefaultBacklinkFields}

	var extra []Field

	switch t {
	case NPC:
		s.RequireName = true
		extra = []Field{
			str("role"),
			str("faction"),
			str("location"),
			str("status"),
			numOrStr("age"),
			object("knowledge_scope",
				strList("topics"),
				strList("regions"),
				strList("secrets"),
				str("notes"),
			),
			object("scene_behavior",
				str("tone"),
				str("voice"),
				strList("goals"),
				strList("tactics"),
			),
			{Key: KeyLedger, Kind: KindLedger},
		}
	case Quest:
		extra = []Field{
			str("status"),
			str("giver"),
			str("location"),
			numOrStr("level"),
			numOrStr("reward"),
			strList("objectives"),
		}
	case Location:
		extra = []Field{
			str("region"),
			str("parent"),
			numOrStr("population"),
		}
	case Faction:
		extra = []Field{
			str("leader"),
			str("headquarters"),
			strList("goals"),
			strList("members"),
		}
	case Monster:
		extra = []Field{
			numOrStr("cr"),
			numOrStr("hp"),
			numOrStr("ac"),
			str("habitat"),
		}
	case Encounter:
		extra = []Field{
			str("location"),
			str("difficulty"),
			strList("monsters"),
		}
	case Session:
		extra = []Field{
			numOrStr("number"),
			str("date"),
			strList("players"),
		}
	case Domain:
		s.RequireName = true
		s.BacklinkFields = append(append([]string(nil), DefaultBacklinkFields...),
			"geography", "politics", "economy", "administrative_divisions")
		extra = []Field{
			object("geography",
				str("climate"),
				strList("terrain"),
				strList("regions"),
				numOrStr("area"),
			),
			object("politics",
				str("ruler"),
				str("government"),
				strList("factions"),
				numOrStr("stability"),
			),
			object("economy",
				str("currency"),
				strList("exports"),
				strList("imports"),
				numOrStr("wealth"),
			),
			object("administrative_divisions",
				str("capital"),
			),
		}
	}

	s.Fields = append(append([]Field(nil), commonFields...), extra...)

	return s
}
