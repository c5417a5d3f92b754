package btree

import (
	"path/filepath"
	"testing"

	"github.com/arjunmenon/pagebase/internal/storage"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "btree.db")
	pager, err := storage.Open(path)
	require.NoError(t, err)
	cache := storage.NewCache(pager, 50, nil)
	t.Cleanup(func() { cache.Close() })
	return New(cache, 0)
}

func TestInsertAndSearchSingleKey(t *testing.T) {
	idx := newTestIndex(t)

	hash := HashKey(KeyInt, int32(42))
	require.NoError(t, idx.Insert(hash, 7))

	got, err := idx.Search(hash)
	require.NoError(t, err)
	require.EqualValues(t, 7, got)
}

func TestSearchMissingKeyReturnsNotFound(t *testing.T) {
	idx := newTestIndex(t)
	_, err := idx.Search(HashKey(KeyInt, int32(1)))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestInsertRejectsDuplicateKey(t *testing.T) {
	idx := newTestIndex(t)
	hash := HashKey(KeyString, "alice")
	require.NoError(t, idx.Insert(hash, 1))
	err := idx.Insert(hash, 2)
	require.ErrorIs(t, err, ErrDuplicateKey)
}

func TestInsertManyKeysTriggersSplitsAndAllRemainFindable(t *testing.T) {
	idx := newTestIndex(t)

	const n = 200
	for i := 0; i < n; i++ {
		hash := HashKey(KeyInt, int32(i))
		require.NoError(t, idx.Insert(hash, uint32(i+1000)))
	}
	require.NotZero(t, idx.RootPage)

	for i := 0; i < n; i++ {
		hash := HashKey(KeyInt, int32(i))
		got, err := idx.Search(hash)
		require.NoError(t, err)
		require.EqualValues(t, i+1000, got)
	}
}

func TestDeleteIsIntentionallyUnimplemented(t *testing.T) {
	idx := newTestIndex(t)
	err := idx.Delete(HashKey(KeyInt, int32(1)))
	require.ErrorIs(t, err, ErrDeleteNotImplemented)
}

func TestHashKeyStableAcrossEquivalentInputs(t *testing.T) {
	require.Equal(t, HashKey(KeyInt, int32(5)), HashKey(KeyInt, 5))
	require.Equal(t, HashKey(KeyString, "same"), HashKey(KeyString, "same"))
	require.NotEqual(t, HashKey(KeyString, "a"), HashKey(KeyString, "b"))
}
