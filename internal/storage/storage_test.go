package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*LocalStorageService, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := NewLocalStorageService("http://localhost:8080", filepath.Join(dir, "uploads"))
	require.NoError(t, err)
	return svc, dir
}

func TestLocalStorageService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestStorage(t)

	key := "items/7/photo.png"
	require.NoError(t, svc.SaveFile(ctx, key, strings.NewReader("png-bytes")))

	exists, size, err := svc.FileExists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(9), size)

	file, err := svc.ReadFile(ctx, key)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, svc.DeleteFile(ctx, key))
	exists, _, err = svc.FileExists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageService_RejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	svc, dir := newTestStorage(t)

	// A file outside the upload tree that a traversal key would reach.
	secret := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("top-secret"), 0600))

	for _, key := range []string{
		"../../secret.txt",
		"..",
		"items/../../../secret.txt",
	} {
		t.Run(key, func(t *testing.T) {
			_, err := svc.ReadFile(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKey)

			_, _, err = svc.FileExists(ctx, key)
			assert.ErrorIs(t, err, ErrInvalidKey)

			assert.ErrorIs(t, svc.DeleteFile(ctx, key), ErrInvalidKey)
			assert.ErrorIs(t, svc.SaveFile(ctx, key, strings.NewReader("x")), ErrInvalidKey)
		})
	}

	// The file outside the tree is untouched.
	data, err := os.ReadFile(secret)
	require.NoError(t, err)
	assert.Equal(t, "top-secret", string(data))
}
