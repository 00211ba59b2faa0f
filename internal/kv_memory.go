package internal

import (
	"sort"
	"strings"
	"sync"
)

// MemoryKV provides thread-safe in-process storage
type MemoryKV struct {
	mu    sync.RWMutex
	pairs map[string][]byte
}

// NewMemoryKV creates an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		pairs: make(map[string][]byte),
	}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.pairs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pairs[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.pairs, key)
	return nil
}

func (m *MemoryKV) Scan(prefix string) ([]KeyValuePair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	pairs := make([]KeyValuePair, 0)
	for key, value := range m.pairs {
		if strings.HasPrefix(key, prefix) {
			pairs = append(pairs, KeyValuePair{Key: key, Value: append([]byte(nil), value...)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

// Len returns the number of stored keys
func (m *MemoryKV) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pairs)
}

func (m *MemoryKV) Close() error {
	return nil
}
