package syncmap

import "sync"

// Map is a typed wrapper over sync.Map.
type Map[K comparable, V any] struct {
	syncMap sync.Map
}

func (m *Map[K, V]) LoadOrStore(key K, value V) (V, bool) {
	val, loaded := m.syncMap.LoadOrStore(key, value)
	return val.(V), loaded
}

func (m *Map[K, V]) Load(key K) (V, bool) {
	val, ok := m.syncMap.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return val.(V), true
}

func (m *Map[K, V]) Exists(key K) bool {
	_, ok := m.syncMap.Load(key)
	return ok
}

func (m *Map[K, V]) Store(key K, value V) {
	m.syncMap.Store(key, value)
}

func (m *Map[K, V]) Delete(key K) {
	m.syncMap.Delete(key)
}
