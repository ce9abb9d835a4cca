// Package cache stores normalization results between runs so unchanged
// documentation pages and source files are not normalized again.
//
// The caller creates a cache, passes it to the engine and decides when to
// evict; the engine holds no cache of its own.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/agentstation/apidrift/pkg/errors"
)

// Cache is a byte store keyed by content hash.
type Cache interface {
	// Get returns the value for key and whether it was present
	Get(key string) ([]byte, bool, error)

	// Set stores a value under key
	Set(key string, value []byte) error

	// Delete removes key; removing a missing key is not an error
	Delete(key string) error

	// Clear removes every entry
	Clear() error

	// Len returns the number of entries
	Len() (int, error)
}

// Key hashes the JSON encoding of v under a namespace, e.g.
// Key("doc", entries) for one documentation page.
func Key(namespace string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.WrapParse("json", "", err)
	}
	sum := sha256.Sum256(data)
	return namespace + ":" + hex.EncodeToString(sum[:]), nil
}

// Memory is an in-process Cache. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string][]byte)}
}

// Get implements Cache.
func (m *Memory) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set implements Cache.
func (m *Memory) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete implements Cache.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Clear implements Cache.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string][]byte)
	return nil
}

// Len implements Cache.
func (m *Memory) Len() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}
