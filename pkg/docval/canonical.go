package docval

// SortKeys returns a copy of v with every map's keys in lexicographic order,
// recursively. Sequence order is preserved and scalars pass through.
//
// SortKeys is idempotent: SortKeys(SortKeys(v)) equals SortKeys(v), including
// key order.
func SortKeys(v Value) Value {
	switch v.kind {
	case KindSeq:
		items := make([]Value, len(v.seq))
		for i, item := range v.seq {
			items[i] = SortKeys(item)
		}

		return Value{kind: KindSeq, seq: items}
	case KindMap:
		return Value{kind: KindMap, m: SortMapKeys(v.m)}
	default:
		return v
	}
}

// SortMapKeys is [SortKeys] for a map.
func SortMapKeys(m *Map) *Map {
	out := NewMap()

	for _, k := range m.SortedKeys() {
		v, _ := m.Get(k)
		out.Set(k, SortKeys(v))
	}

	return out
}

// EncodeCanonicalJSON renders v for version-controlled files: keys sorted,
// two-space indentation, trailing newline.
func EncodeCanonicalJSON(v Value) []byte {
	out := MarshalJSONIndent(SortKeys(v), "  ")

	return append(out, '\n')
}
