package storage

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLocalStorage(t *testing.T) *LocalStorage {
	storage, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/", "test-secret", zap.NewNop())
	require.NoError(t, err)
	return storage
}

func TestNewLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewLocalStorage(tempDir, "http://localhost:8080", "secret", zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, storage)
	require.Equal(t, tempDir, storage.basePath)

	_, err = os.Stat(tempDir)
	require.NoError(t, err, "Base directory should be created")

	_, err = NewLocalStorage(tempDir, "http://localhost:8080", "", zap.NewNop())
	require.Error(t, err)
}

func TestLocalStorage_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	storage := newTestLocalStorage(t)

	key := "42/1700000000000-abcd1234-hello.txt"
	content := "Hello, world!"

	err := storage.Put(ctx, key, strings.NewReader(content), int64(len(content)), "text/plain")
	require.NoError(t, err)

	expectedPath, err := storage.getPathFromKey(key)
	require.NoError(t, err)
	fileInfo, err := os.Stat(expectedPath)
	require.NoError(t, err, "File should exist after put")
	require.Equal(t, int64(len(content)), fileInfo.Size())

	exists, err := storage.Exists(ctx, key)
	require.NoError(t, err)
	require.True(t, exists)

	size, err := storage.Size(ctx, key)
	require.NoError(t, err)
	require.EqualValues(t, len(content), size)

	readCloser, err := storage.Get(ctx, key)
	require.NoError(t, err)
	retrieved, err := io.ReadAll(readCloser)
	require.NoError(t, err)
	readCloser.Close()
	require.Equal(t, content, string(retrieved))

	require.NoError(t, storage.Delete(ctx, key))

	exists, err = storage.Exists(ctx, key)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestLocalStorage_GetNonExistent(t *testing.T) {
	storage := newTestLocalStorage(t)

	_, err := storage.Get(context.Background(), "1/missing")
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_SizeNonExistent(t *testing.T) {
	storage := newTestLocalStorage(t)

	_, err := storage.Size(context.Background(), "1/missing")
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorage_DeleteNonExistent(t *testing.T) {
	storage := newTestLocalStorage(t)

	err := storage.Delete(context.Background(), "1/missing")
	require.NoError(t, err)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	storage := newTestLocalStorage(t)

	for _, key := range []string{"../etc/passwd", "/abs", "1//x", "1/./x", ""} {
		err := storage.Put(context.Background(), key, strings.NewReader("x"), 1, "text/plain")
		require.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestLocalStorage_PutSizeMismatch(t *testing.T) {
	ctx := context.Background()
	storage := newTestLocalStorage(t)

	err := storage.Put(ctx, "1/short", bytes.NewReader(make([]byte, 10)), 20, "application/octet-stream")
	require.Error(t, err)

	exists, err := storage.Exists(ctx, "1/short")
	require.NoError(t, err)
	require.False(t, exists, "partial uploads must not be visible")
}

func TestLocalStorage_SignedURLs(t *testing.T) {
	storage := newTestLocalStorage(t)
	key := "7/1700000000000-zzzz0000-report.pdf"

	raw, err := storage.SignedGetURL(context.Background(), key, time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "/blobs/"+key, u.Path)

	expires := u.Query().Get("expires")
	signature := u.Query().Get("signature")
	require.NoError(t, storage.VerifySignature("GET", key, expires, signature, time.Now()))

	require.ErrorIs(t, storage.VerifySignature("PUT", key, expires, signature, time.Now()), ErrInvalidSignature)
	require.ErrorIs(t, storage.VerifySignature("GET", "7/other", expires, signature, time.Now()), ErrInvalidSignature)
	require.ErrorIs(t, storage.VerifySignature("GET", key, expires, signature, time.Now().Add(2*time.Minute)), ErrInvalidSignature)
	require.ErrorIs(t, storage.VerifySignature("GET", key, "nope", signature, time.Now()), ErrInvalidSignature)

	putURL, err := storage.SignedPutURL(context.Background(), key, "application/pdf", 0)
	require.NoError(t, err)
	pu, err := url.Parse(putURL)
	require.NoError(t, err)
	require.NoError(t, storage.VerifySignature("PUT", key, pu.Query().Get("expires"), pu.Query().Get("signature"), time.Now()))
}
