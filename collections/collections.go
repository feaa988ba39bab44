package collections

import (
	"cmp"
	"slices"
)

// OrderedMap is a map that remembers insertion order.
type OrderedMap[K comparable, V comparable] struct {
	keys []K
	m    map[K]V
}

func NewOrderedMap[K comparable, V comparable]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		keys: make([]K, 0, 10),
		m:    make(map[K]V, 10),
	}
}

// Add inserts value under key. Adding an existing key is a no-op.
func (o *OrderedMap[K, V]) Add(key K, value V) {
	if _, ok := o.m[key]; ok {
		return
	}
	o.keys = append(o.keys, key)
	o.m[key] = value
}

// Rename moves the value stored under oldKey to newKey without changing
// its position. It fails if oldKey is missing or newKey is taken.
func (o *OrderedMap[K, V]) Rename(oldKey, newKey K) bool {
	v, ok := o.m[oldKey]
	if !ok {
		return false
	}
	if _, taken := o.m[newKey]; taken {
		return false
	}
	delete(o.m, oldKey)
	o.m[newKey] = v
	o.keys[slices.Index(o.keys, oldKey)] = newKey
	return true
}

func (o *OrderedMap[K, V]) List() []V {
	ret := make([]V, 0, len(o.keys))
	for _, k := range o.keys {
		ret = append(ret, o.m[k])
	}
	return ret
}

func (o *OrderedMap[K, V]) Keys() []K {
	return slices.Clone(o.keys)
}

func (o *OrderedMap[K, V]) Len() int {
	return len(o.keys)
}

func (o *OrderedMap[K, V]) Get(key K) (v V, ok bool) {
	v, ok = o.m[key]
	return
}

func (o *OrderedMap[K, V]) Remove(key K) {
	if _, ok := o.m[key]; !ok {
		return
	}
	delete(o.m, key)
	if i := slices.Index(o.keys, key); i >= 0 {
		o.keys = slices.Delete(o.keys, i, i+1)
	}
}

type Multimap[K cmp.Ordered, V comparable] struct {
	m map[K][]V
}

func NewMultimap[K cmp.Ordered, V comparable]() *Multimap[K, V] {
	return &Multimap[K, V]{m: make(map[K][]V)}
}

func (m *Multimap[K, V]) Add(key K, value V) {
	m.m[key] = append(m.m[key], value)
}

// AddUnique adds value under key unless it's already there.
func (m *Multimap[K, V]) AddUnique(key K, value V) {
	if slices.Contains(m.m[key], value) {
		return
	}
	m.Add(key, value)
}

func (m *Multimap[K, V]) Get(key K) ([]V, bool) {

	value, ok := m.m[key]
	return value, ok
}

// Keys returns the keys in ascending order.
func (m *Multimap[K, V]) Keys() []K {

	ret := make([]K, 0, len(m.m))
	for k := range m.m {
		ret = append(ret, k)
	}
	slices.Sort(ret)
	return ret
}
