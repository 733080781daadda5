package scope

import (
	"encoding/json"
	"maps"
	"slices"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Slot is the key-value mapping owned by one execution unit.
// Keys keep their insertion order. A Slot is not safe for concurrent use;
// the store hands each unit its own.
type Slot struct {
	values *orderedmap.OrderedMap[string, any]
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	return &Slot{values: orderedmap.New[string, any]()}
}

// SlotOf builds a slot from a plain map. Keys are inserted in sorted order
// so the resulting key listing is deterministic.
func SlotOf(data map[string]any) *Slot {
	s := NewSlot()
	for _, k := range slices.Sorted(maps.Keys(data)) {
		s.values.Set(k, data[k])
	}

	return s
}

// Set inserts or overwrites key. Overwriting keeps the original position.
func (s *Slot) Set(key string, value any) {
	s.values.Set(key, value)
}

// Lookup returns the value stored under key and whether it was present.
func (s *Slot) Lookup(key string) (any, bool) {
	return s.values.Get(key)
}

// Has reports whether key exists, regardless of its value.
func (s *Slot) Has(key string) bool {
	_, ok := s.values.Get(key)
	return ok
}

// Delete removes key. Missing keys are ignored.
func (s *Slot) Delete(key string) {
	s.values.Delete(key)
}

// Len returns the number of entries.
func (s *Slot) Len() int {
	if s == nil {
		return 0
	}

	return s.values.Len()
}

// Keys returns all keys in insertion order.
func (s *Slot) Keys() []string {
	if s == nil {
		return []string{}
	}

	keys := make([]string, 0, s.values.Len())
	for pair := s.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}

	return keys
}

// Map returns the entries as a new plain map.
func (s *Slot) Map() map[string]any {
	if s == nil {
		return map[string]any{}
	}

	m := make(map[string]any, s.values.Len())
	for pair := s.values.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}

	return m
}

// Clone returns an independent copy with the same key order.
// Values are copied by assignment; reference values stay shared.
func (s *Slot) Clone() *Slot {
	c := NewSlot()
	if s == nil {
		return c
	}

	for pair := s.values.Oldest(); pair != nil; pair = pair.Next() {
		c.values.Set(pair.Key, pair.Value)
	}

	return c
}

// Merge combines data into the slot as a flat union.
// With overwrite, keys from data replace existing ones; without it only
// keys absent from the slot are added. New keys are appended in sorted order.
func (s *Slot) Merge(data map[string]any, overwrite bool) {
	for _, k := range slices.Sorted(maps.Keys(data)) {
		if !overwrite && s.Has(k) {
			continue
		}

		s.values.Set(k, data[k])
	}
}

// Range calls fn for each entry in insertion order until fn returns false.
func (s *Slot) Range(fn func(key string, value any) bool) {
	if s == nil {
		return
	}

	for pair := s.values.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// MarshalJSON encodes the slot as a JSON object in insertion order.
func (s *Slot) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(s.values)
}
