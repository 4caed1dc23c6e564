package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/ssml-speech/internal/filestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EmptyDir(t *testing.T) {
	t.Parallel()

	_, err := filestore.New("")
	require.ErrorIs(t, err, filestore.ErrEmptyDir)
}

func TestStore_Save(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "audio")

	store, err := filestore.New(dir)
	require.NoError(t, err)

	path, err := store.Save(context.Background(), "hello.wav", []byte("RIFF"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hello.wav"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), data)
}

func TestStore_Save_Overwrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := filestore.New(dir)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), "hello.wav", []byte("a much longer first payload"))
	require.NoError(t, err)

	path, err := store.Save(context.Background(), "hello.wav", []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestStore_Save_RejectsPaths(t *testing.T) {
	t.Parallel()

	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "..", "../escape.wav", "nested/hello.wav"} {
		_, err = store.Save(context.Background(), name, []byte("RIFF"))
		require.ErrorIs(t, err, filestore.ErrInvalidName, name)
	}
}

func TestStore_Save_CanceledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	store, err := filestore.New(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Save(ctx, "hello.wav", []byte("RIFF"))
	require.ErrorIs(t, err, context.Canceled)

	_, statErr := os.Stat(filepath.Join(dir, "hello.wav"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}
