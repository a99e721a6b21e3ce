package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubObjectStorage_PutAndGet(t *testing.T) {
	store := NewStubObjectStorage()
	ctx := context.Background()

	body := strings.NewReader("receipt bytes")
	err := store.PutObject(ctx, "orders/abc/change-receipts/r1.jpg", "image/jpeg", body, 13)
	require.NoError(t, err)

	data, ok := store.GetObject("orders/abc/change-receipts/r1.jpg")
	require.True(t, ok)
	assert.Equal(t, "receipt bytes", string(data))

	exists, err := store.ObjectExists(ctx, "orders/abc/change-receipts/r1.jpg")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStubObjectStorage_PutObjectValidation(t *testing.T) {
	store := NewStubObjectStorage()
	ctx := context.Background()

	assert.Error(t, store.PutObject(ctx, "", "image/png", strings.NewReader("x"), 1))
	assert.Error(t, store.PutObject(ctx, "key", "image/png", nil, 0))
}

func TestStubObjectStorage_DeleteObject(t *testing.T) {
	store := NewStubObjectStorage()
	ctx := context.Background()

	require.NoError(t, store.PutObject(ctx, "key", "image/png", strings.NewReader("x"), 1))
	require.NoError(t, store.DeleteObject(ctx, "key"))

	exists, err := store.ObjectExists(ctx, "key")
	require.NoError(t, err)
	assert.False(t, exists)

	// Deleting again is not an error
	require.NoError(t, store.DeleteObject(ctx, "key"))
}

func TestStubObjectStorage_GenerateDownloadURL(t *testing.T) {
	store := NewStubObjectStorage()

	url, expiresAt, err := store.GenerateDownloadURL(context.Background(), "orders/abc/r1.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/download/orders/abc/r1.pdf")
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	_, _, err = store.GenerateDownloadURL(context.Background(), "", time.Minute)
	assert.Error(t, err)
}
