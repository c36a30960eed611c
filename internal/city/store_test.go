package city

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-cities/internal/store"
)

// failingKV rejects every write.
type failingKV struct{ store.MemoryStore }

func (f *failingKV) Set(string, any) error { return errors.New("quota exceeded") }

func persisted(t *testing.T, kv store.KV) []City {
	t.Helper()
	var out []City
	require.NoError(t, kv.Get(StorageKey, &out))
	return out
}

func TestNewID(t *testing.T) {
	assert.Equal(t, "kyiv-703448", NewID("Kyiv", 703448))
	assert.Equal(t, "new-york-5128581", NewID("New York", 5128581))
	assert.Equal(t, "rio-de-janeiro-3451190", NewID("Rio  de\tJaneiro", 3451190))
}

func TestStoreAdd(t *testing.T) {
	kv := store.NewMemoryStore()
	s := NewStore(kv)

	kyiv := City{ID: "kyiv-123", Name: "Kyiv"}
	require.NoError(t, s.Add(kyiv))

	assert.Equal(t, []City{kyiv}, s.List())
	assert.Equal(t, []City{kyiv}, persisted(t, kv))
}

func TestStoreAddDuplicate(t *testing.T) {
	s := NewStore(store.NewMemoryStore())
	kyiv := City{ID: "kyiv-123", Name: "Kyiv"}
	require.NoError(t, s.Add(kyiv))

	err := s.Add(kyiv)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Equal(t, 1, s.Len())
}

func TestStoreAddInvalid(t *testing.T) {
	s := NewStore(store.NewMemoryStore())

	assert.Error(t, s.Add(City{ID: "", Name: "Kyiv"}))
	assert.Error(t, s.Add(City{ID: "kyiv-1", Name: ""}))
	assert.Zero(t, s.Len())
}

func TestStoreRemove(t *testing.T) {
	kv := store.NewMemoryStore()
	s := NewStore(kv)
	require.NoError(t, s.SetAll([]City{
		{ID: "kyiv-123", Name: "Kyiv"},
		{ID: "lviv-456", Name: "Lviv"},
	}))

	require.NoError(t, s.Remove("kyiv-123"))

	want := []City{{ID: "lviv-456", Name: "Lviv"}}
	assert.Equal(t, want, s.List())
	assert.Equal(t, want, persisted(t, kv))

	// Unknown ids leave the list untouched.
	require.NoError(t, s.Remove("odesa-789"))
	assert.Equal(t, want, s.List())
}

func TestStoreRemoveLastPersistsEmptyList(t *testing.T) {
	kv := store.NewMemoryStore()
	s := NewStore(kv)
	require.NoError(t, s.Add(City{ID: "kyiv-123", Name: "Kyiv"}))
	require.NoError(t, s.Remove("kyiv-123"))

	assert.Equal(t, []City{}, persisted(t, kv))
}

func TestStoreSetAllPreservesOrderAndDeduplicates(t *testing.T) {
	s := NewStore(store.NewMemoryStore())

	require.NoError(t, s.SetAll([]City{
		{ID: "lviv-456", Name: "Lviv"},
		{ID: "kyiv-123", Name: "Kyiv"},
		{ID: "lviv-456", Name: "Lviv (again)"},
		{ID: "", Name: "broken"},
	}))

	assert.Equal(t, []City{
		{ID: "lviv-456", Name: "Lviv"},
		{ID: "kyiv-123", Name: "Kyiv"},
	}, s.List())
}

func TestStoreLoad(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(StorageKey, []City{{ID: "kyiv-123", Name: "Kyiv"}}))

	s := NewStore(kv)
	require.NoError(t, s.Load())

	c, ok := s.Get("kyiv-123")
	assert.True(t, ok)
	assert.Equal(t, "Kyiv", c.Name)
}

func TestStoreLoadMissingAndCorrupt(t *testing.T) {
	kv := store.NewMemoryStore()
	s := NewStore(kv)
	require.NoError(t, s.Load())
	assert.Zero(t, s.Len())

	kv.SetRaw(StorageKey, []byte("not json"))
	require.NoError(t, s.Load())
	assert.Zero(t, s.Len())
}

func TestStoreContains(t *testing.T) {
	s := NewStore(store.NewMemoryStore())
	require.NoError(t, s.Add(City{ID: "kyiv-123", Name: "Kyiv"}))

	assert.True(t, s.Contains("kyiv-123", "other"))
	assert.True(t, s.Contains("kyiv-999", "KYIV"))
	assert.False(t, s.Contains("lviv-456", "Lviv"))
}

func TestStoreListIsACopy(t *testing.T) {
	s := NewStore(store.NewMemoryStore())
	require.NoError(t, s.Add(City{ID: "kyiv-123", Name: "Kyiv"}))

	list := s.List()
	list[0].Name = "changed"

	c, _ := s.Get("kyiv-123")
	assert.Equal(t, "Kyiv", c.Name)
}

func TestStorePersistError(t *testing.T) {
	s := NewStore(&failingKV{})

	err := s.Add(City{ID: "kyiv-123", Name: "Kyiv"})
	assert.Error(t, err)
}
