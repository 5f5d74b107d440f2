// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ordered provides a map that remembers first-insertion order.
// Chart grouping relies on it so categories, series and tree nodes come out
// in the order they were first seen in the data.
package ordered

import (
	"slices"
	"sort"
)

// Map is an insertion-ordered map. The zero value is not usable; call New.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// New creates an empty ordered map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{
		keys:   make([]K, 0),
		values: make(map[K]V),
	}
}

// Set stores value under key. A new key is appended to the order; an
// existing key keeps its position.
func (m *Map[K, V]) Set(key K, value V) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// GetOrInit returns the value under key, storing newValue() first if absent.
func (m *Map[K, V]) GetOrInit(key K, newValue func() V) V {
	if v, ok := m.values[key]; ok {
		return v
	}
	v := newValue()
	m.Set(key, v)
	return v
}

// Keys returns a copy of the keys in order.
func (m *Map[K, V]) Keys() []K {
	return slices.Clone(m.keys)
}

// Values returns the values in key order.
func (m *Map[K, V]) Values() []V {
	result := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		result = append(result, m.values[k])
	}
	return result
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// SortKeys reorders the keys with a stable sort.
func (m *Map[K, V]) SortKeys(less func(a, b K) bool) {
	sort.SliceStable(m.keys, func(i, j int) bool {
		return less(m.keys[i], m.keys[j])
	})
}

// Range iterates over the map in order until fn returns false.
func (m *Map[K, V]) Range(fn func(key K, value V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			break
		}
	}
}
