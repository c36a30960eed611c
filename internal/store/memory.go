package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNotFound is returned when no value is stored under a key.
	ErrNotFound = errors.New("no value for key")
)

// KV is a flat key-value store with JSON-encoded values.
// go-app's app.BrowserStorage (window.localStorage) satisfies it as well.
type KV interface {
	Get(key string, v any) error
	Set(key string, v any) error
}

// MemoryStore is a concurrency-safe in-memory KV. Values are kept as
// encoded JSON, the same way localStorage keeps strings, so callers never
// share memory with what they stored.
type MemoryStore struct {
	mu sync.RWMutex

	// key: storage key, value: JSON document
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string][]byte),
	}
}

// Set encodes v and stores it under key, replacing any previous value.
func (s *MemoryStore) Set(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = b
	return nil
}

// Get decodes the value stored under key into v.
func (s *MemoryStore) Get(key string, v any) error {
	s.mu.RLock()
	b, ok := s.data[key]
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}

// SetRaw stores an already encoded document, as another client sharing the
// storage might have written it.
func (s *MemoryStore) SetRaw(key string, raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = append([]byte(nil), raw...)
}
