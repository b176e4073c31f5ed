package docval

import (
	"slices"
	"sort"
)

// Map is an insertion-ordered string-keyed mapping.
//
// Setting an existing key replaces its value in place and keeps its position.
// Map is not safe for concurrent mutation.
type Map struct {
	keys []string
	vals map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map {
	return &Map{vals: map[string]Value{}}
}

// MapOf builds a map from alternating key/value pairs. Panics on odd length or
// non-string keys. Intended for tests and literals.
func MapOf(kv ...any) *Map {
	if len(kv)%2 != 0 {
		panic("docval.MapOf: odd number of arguments")
	}

	m := NewMap()

	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			panic("docval.MapOf: key is not a string")
		}

		m.Set(key, MustFrom(kv[i+1]))
	}

	return m
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// Keys returns the keys in insertion order. The slice is a copy.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}

	return slices.Clone(m.keys)
}

// SortedKeys returns the keys in lexicographic byte order.
func (m *Map) SortedKeys() []string {
	keys := m.Keys()
	sort.Strings(keys)

	return keys
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}

	v, ok := m.vals[key]

	return v, ok
}

// GetString returns the value under key when it is a string.
func (m *Map) GetString(key string) (string, bool) {
	v, ok := m.Get(key)
	if !ok {
		return "", false
	}

	return v.AsString()
}

// GetMap returns the value under key when it is a map.
func (m *Map) GetMap(key string) (*Map, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}

	return v.AsMap()
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)

	return ok
}

// Set stores v under key.
func (m *Map) Set(key string, v Value) {
	if m.vals == nil {
		m.vals = map[string]Value{}
	}

	if _, exists := m.vals[key]; !exists {
		m.keys = append(m.keys, key)
	}

	m.vals[key] = v
}

// Delete removes key. Missing keys are ignored.
func (m *Map) Delete(key string) {
	if m == nil {
		return
	}

	if _, ok := m.vals[key]; !ok {
		return
	}

	delete(m.vals, key)

	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}

	for _, k := range m.keys {
		if !fn(k, m.vals[k]) {
			return
		}
	}
}

// Clone returns a deep copy. Cloning nil returns an empty map.
func (m *Map) Clone() *Map {
	out := NewMap()
	if m == nil {
		return out
	}

	out.keys = slices.Clone(m.keys)
	for k, v := range m.vals {
		out.vals[k] = v.Clone()
	}

	return out
}

// Equal reports deep equality ignoring key order.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}

	equal := true

	m.Range(func(k string, v Value) bool {
		ov, ok := o.Get(k)
		if !ok || !v.Equal(ov) {
			equal = false

			return false
		}

		return true
	})

	return equal
}

// Interface converts the map to map[string]any.
func (m *Map) Interface() map[string]any {
	out := make(map[string]any, m.Len())

	m.Range(func(k string, v Value) bool {
		out[k] = v.Interface()

		return true
	})

	return out
}
