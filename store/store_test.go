package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// adapterCases runs the contract checks shared by every backend.
func adapterCases(t *testing.T, open func(t *testing.T) Adapter) {
	ctx := context.Background()

	t.Run("get missing key", func(t *testing.T) {
		st := open(t)
		_, err := st.Get(ctx, "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		st := open(t)
		require.NoError(t, st.Set(ctx, "k", []byte(`{"a":1}`)))

		v, err := st.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":1}`), v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		st := open(t)
		require.NoError(t, st.Set(ctx, "k", []byte(`{"a":1}`)))
		require.NoError(t, st.Set(ctx, "k", []byte(`{"a":2}`)))

		v, err := st.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":2}`), v)
	})

	t.Run("delete", func(t *testing.T) {
		st := open(t)
		require.NoError(t, st.Set(ctx, "k", []byte(`{}`)))
		require.NoError(t, st.Delete(ctx, "k"))

		_, err := st.Get(ctx, "k")
		assert.ErrorIs(t, err, ErrNotFound)

		// Deleting a missing key is not an error.
		assert.NoError(t, st.Delete(ctx, "k"))
	})
}

func TestMemoryAdapter(t *testing.T) {
	adapterCases(t, func(t *testing.T) Adapter {
		return NewMemory()
	})
}

func TestFileAdapter(t *testing.T) {
	adapterCases(t, func(t *testing.T) Adapter {
		f, err := NewFile(filepath.Join(t.TempDir(), "state.json"))
		require.NoError(t, err)
		return f
	})
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()
	require.NoError(t, st.Set(ctx, "k", []byte(`{"a":1}`)))

	v, err := st.Get(ctx, "k")
	require.NoError(t, err)
	v[0] = 'X'

	again, err := st.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), again, "callers must not be able to mutate stored bytes")
}

func TestFilePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	f, err := NewFile(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(ctx, "account:a1:ledger", []byte(`{"cash":"99000"}`)))

	f2, err := NewFile(path)
	require.NoError(t, err)
	v, err := f2.Get(ctx, "account:a1:ledger")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"cash":"99000"}`), v)
}

func TestFileRejectsInvalidJSON(t *testing.T) {
	ctx := context.Background()
	f, err := NewFile(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	err = f.Set(ctx, "k", []byte("not json"))
	assert.Error(t, err)

	_, err = f.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound, "rejected write must not land")
}

func TestFileCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	f, err := NewFile(path)
	require.NoError(t, err)

	_, err = f.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrNotFound)
}
