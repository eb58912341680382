package archive

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRecord builds a record for tests.
func testRecord(name string, display float64) Record {
	return Record{
		Name:         name,
		Value:        display * 1_000_000,
		DisplayValue: display,
		Scale:        "Millions",
		Source:       "extracted",
		Description:  "test value",
	}
}

// runStoreSuite exercises the Store contract against any implementation.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		record := testRecord("net_sales", 7983)
		require.NoError(t, store.Save("conv-1", record))

		loaded, err := store.Load("conv-1", "net_sales")
		require.NoError(t, err)
		assert.Equal(t, record, loaded)
	})

	t.Run("LoadMissing", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		_, err := store.Load("conv-1", "absent")
		assert.True(t, errors.Is(err, ErrNotFound))

		require.NoError(t, store.Save("conv-1", testRecord("a", 1)))
		_, err = store.Load("conv-2", "a")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("UpsertKeepsSequence", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Save("conv-1", testRecord("a", 1)))
		require.NoError(t, store.Save("conv-1", testRecord("b", 2)))
		require.NoError(t, store.Save("conv-1", testRecord("a", 99)))

		loaded, err := store.Load("conv-1", "a")
		require.NoError(t, err)
		assert.Equal(t, 99.0, loaded.DisplayValue)

		infos, err := store.List("conv-1")
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, "a", infos[0].Name)
		assert.Equal(t, 1, infos[0].Sequence)
		assert.Equal(t, "b", infos[1].Name)
		assert.Equal(t, 2, infos[1].Sequence)
	})

	t.Run("ListOrderedBySequence", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		for i, name := range []string{"first", "second", "third"} {
			require.NoError(t, store.Save("conv-1", testRecord(name, float64(i))))
		}

		infos, err := store.List("conv-1")
		require.NoError(t, err)
		require.Len(t, infos, 3)
		for i, want := range []string{"first", "second", "third"} {
			assert.Equal(t, want, infos[i].Name)
			assert.Equal(t, i+1, infos[i].Sequence)
			assert.Equal(t, "conv-1", infos[i].ConversationID)
			assert.False(t, infos[i].Timestamp.IsZero())
		}
	})

	t.Run("ListUnknownConversation", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		infos, err := store.List("nope")
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Save("conv-1", testRecord("a", 1)))
		require.NoError(t, store.Delete("conv-1", "a"))

		_, err := store.Load("conv-1", "a")
		assert.True(t, errors.Is(err, ErrNotFound))

		// Deleting a missing record is not an error.
		assert.NoError(t, store.Delete("conv-1", "absent"))
	})

	t.Run("DeleteConversation", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		require.NoError(t, store.Save("conv-1", testRecord("a", 1)))
		require.NoError(t, store.Save("conv-1", testRecord("b", 2)))
		require.NoError(t, store.Save("conv-2", testRecord("a", 3)))

		require.NoError(t, store.DeleteConversation("conv-1"))

		infos, err := store.List("conv-1")
		require.NoError(t, err)
		assert.Empty(t, infos)

		// Other conversations are untouched.
		loaded, err := store.Load("conv-2", "a")
		require.NoError(t, err)
		assert.Equal(t, 3.0, loaded.DisplayValue)
	})

	t.Run("ClosedStore", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save("conv-1", testRecord("a", 1)))
		require.NoError(t, store.Close())

		assert.ErrorIs(t, store.Save("conv-1", testRecord("b", 2)), ErrStoreClosed)
		_, err := store.Load("conv-1", "a")
		assert.ErrorIs(t, err, ErrStoreClosed)
		_, err = store.List("conv-1")
		assert.ErrorIs(t, err, ErrStoreClosed)
		assert.ErrorIs(t, store.Delete("conv-1", "a"), ErrStoreClosed)
		assert.ErrorIs(t, store.DeleteConversation("conv-1"), ErrStoreClosed)
	})
}

// TestMemoryStore runs the contract suite against the in-memory archive.
func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

// TestSQLiteStore runs the contract suite against the SQLite archive.
func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		store, err := NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	})
}

// TestSQLiteStore_File verifies records survive reopening a file-backed
// archive.
func TestSQLiteStore_File(t *testing.T) {
	path := t.TempDir() + "/archive.db"

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("conv-1", testRecord("net_sales", 7983)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load("conv-1", "net_sales")
	require.NoError(t, err)
	assert.Equal(t, 7983.0, loaded.DisplayValue)
	assert.Equal(t, "Millions", loaded.Scale)
}

// TestMemoryStore_CloseIdempotent verifies double close is safe.
func TestMemoryStore_CloseIdempotent(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())
}
