package city

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/i474232898/weather-cities/internal/store"
)

// StorageKey is the key the tracked list is serialized under.
const StorageKey = "cities"

var (
	// ErrDuplicate is returned by Add when a city with the same id is tracked.
	ErrDuplicate = errors.New("city already added")
)

// Store is the ordered, id-unique list of tracked cities. Every mutation
// writes the full list back to the underlying KV; the last write wins.
type Store struct {
	mu     sync.RWMutex
	kv     store.KV
	cities []City
}

// NewStore creates an empty Store backed by kv. Call Load to hydrate it.
func NewStore(kv store.KV) *Store {
	return &Store{kv: kv}
}

// Load replaces the in-memory list with the one persisted in the KV.
// A missing or unreadable value leaves the store empty.
func (s *Store) Load() error {
	var stored []City
	err := s.kv.Get(StorageKey, &stored)
	switch {
	case errors.Is(err, store.ErrNotFound):
		stored = nil
	case err != nil:
		log.Printf("city: discarding unreadable %q value: %v", StorageKey, err)
		stored = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = normalize(stored)
	return nil
}

// Add appends c unless a city with the same id is already tracked.
func (s *Store) Add(c City) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid city: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if indexOf(s.cities, c.ID) >= 0 {
		return ErrDuplicate
	}
	s.cities = append(s.cities, c)
	return s.persist()
}

// Remove drops the city with the given id.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.cities[:0:0]
	for _, c := range s.cities {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.cities = kept
	return s.persist()
}

// SetAll replaces the whole list. Invalid records are dropped and repeated
// ids keep their first occurrence.
func (s *Store) SetAll(cities []City) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cities = normalize(cities)
	return s.persist()
}

// List returns a copy of the tracked cities in insertion order.
func (s *Store) List() []City {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]City, len(s.cities))
	copy(out, s.cities)
	return out
}

// Get returns the city with the given id.
func (s *Store) Get(id string) (City, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.cities, id); i >= 0 {
		return s.cities[i], true
	}
	return City{}, false
}

// Contains reports whether a city matches id, or has the same name
// ignoring case.
func (s *Store) Contains(id, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.cities {
		if c.ID == id || strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// Len returns the number of tracked cities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.cities)
}

// persist must be called with mu held.
func (s *Store) persist() error {
	out := s.cities
	if out == nil {
		out = []City{}
	}
	if err := s.kv.Set(StorageKey, out); err != nil {
		return fmt.Errorf("persist cities: %w", err)
	}
	return nil
}

func normalize(cities []City) []City {
	out := make([]City, 0, len(cities))
	seen := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		if err := c.Validate(); err != nil {
			log.Printf("city: dropping invalid record %+v: %v", c, err)
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

func indexOf(cities []City, id string) int {
	for i, c := range cities {
		if c.ID == id {
			return i
		}
	}
	return -1
}
