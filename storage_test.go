package numgen

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorageContract(t *testing.T, storage Storage) {
	ctx := context.Background()

	_, err := storage.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	require.NoError(t, storage.Set(ctx, "k", []byte(`[1,2,3]`)))
	data, err := storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[1,2,3]`, string(data))

	require.NoError(t, storage.Set(ctx, "k", []byte(`[]`)))
	data, err = storage.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	require.NoError(t, storage.Delete(ctx, "k"))
	_, err = storage.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	// deleting twice is not an error
	assert.NoError(t, storage.Delete(ctx, "k"))

	assert.ErrorIs(t, storage.Set(ctx, "", []byte("x")), ErrInvalidParameters)
}

func TestMemoryStorage(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	testStorageContract(t, storage)

	t.Run("returned data is a copy", func(t *testing.T) {
		ctx := context.Background()
		require.NoError(t, storage.Set(ctx, "copy", []byte("abc")))
		data, err := storage.Get(ctx, "copy")
		require.NoError(t, err)
		data[0] = 'z'

		again, err := storage.Get(ctx, "copy")
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})
}

func TestBuntStorage(t *testing.T) {
	t.Run("in memory", func(t *testing.T) {
		storage, err := NewBuntStorage(":memory:")
		require.NoError(t, err)
		defer storage.Close()

		testStorageContract(t, storage)
	})

	t.Run("file survives reopen", func(t *testing.T) {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "history.db")

		storage, err := NewBuntStorage(path)
		require.NoError(t, err)
		store := NewHistoryStore(storage, nil, nil)
		for i := 1; i <= 3; i++ {
			require.NoError(t, store.Insert(ctx, testEntry(i)))
		}
		require.NoError(t, storage.Close())

		reopened, err := NewBuntStorage(path)
		require.NoError(t, err)
		defer reopened.Close()

		entries := NewHistoryStore(reopened, nil, nil).Load(ctx)
		assert.Equal(t, []string{"3", "2", "1"}, ids(entries))
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewBuntStorage("")
		assert.ErrorIs(t, err, ErrInvalidParameters)
	})
}
