package storage

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveAndOpen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	path, err := store.Save(context.Background(), "receipt-abc.jpg", []byte("image bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "receipt-abc.jpg"), path)

	reader, err := store.Open(context.Background(), path)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, []byte("image bytes"), data)
}

func TestLocalStorage_OpenMissingFile(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "does/not/exist.jpg")
	assert.Error(t, err)
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(".jpg"))
	assert.True(t, Allowed(".jpeg"))
	assert.True(t, Allowed(".png"))
	assert.False(t, Allowed(".txt"))
	assert.False(t, Allowed(".pdf"))
}
