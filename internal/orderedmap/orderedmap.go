// Package orderedmap implements an insertion-order-preserving map keyed
// by name, the shape the spec requires for PreparedModule's rows, params,
// and queries so that emission order is deterministic. Grounded on the
// teacher's load.Schema, which keeps a name-keyed lookup alongside a
// Position.Index to preserve declaration order.
package orderedmap

import "encoding/json"

// Map is a slice of values plus a name-to-index side index. Iterate via
// Values() to get first-insertion order.
type Map[V any] struct {
	index  map[string]int
	keys   []string
	values []V
}

// New returns an empty Map.
func New[V any]() *Map[V] {
	return &Map[V]{index: make(map[string]int)}
}

// Get returns the value stored for name and whether it was present.
func (m *Map[V]) Get(name string) (V, bool) {
	var zero V
	i, ok := m.index[name]
	if !ok {
		return zero, false
	}
	return m.values[i], true
}

// GetIndex returns the insertion index for name and whether it was present.
func (m *Map[V]) GetIndex(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// Append inserts a new value under name, returning its index. The caller
// must ensure name is not already present; use Get first if unsure.
func (m *Map[V]) Append(name string, v V) int {
	i := len(m.values)
	m.index[name] = i
	m.keys = append(m.keys, name)
	m.values = append(m.values, v)
	return i
}

// Set overwrites the value already stored at name's index.
func (m *Map[V]) Set(name string, v V) {
	i := m.index[name]
	m.values[i] = v
}

// At returns the value at a given insertion index.
func (m *Map[V]) At(i int) V { return m.values[i] }

// SetAt overwrites the value at a given insertion index.
func (m *Map[V]) SetAt(i int, v V) { m.values[i] = v }

// Len returns the number of entries.
func (m *Map[V]) Len() int { return len(m.values) }

// Keys returns names in insertion order.
func (m *Map[V]) Keys() []string { return m.keys }

// Values returns values in insertion order.
func (m *Map[V]) Values() []V { return m.values }

// MarshalJSON renders the map as a plain array in insertion order,
// since insertion order is the map's whole reason for existing and each
// element already carries its own Name field.
func (m *Map[V]) MarshalJSON() ([]byte, error) {
	if m.values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.values)
}
