package storage

import (
	"bytes"
	"context"
	"io"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStorage(t *testing.T) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("miniredis unavailable: %v", err)
	}
	t.Cleanup(srv.Close)
	st, err := NewRedisStorage("redis://" + srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st, srv
}

func TestRedisStoragePutGet(t *testing.T) {
	st, srv := newRedisStorage(t)
	ctx := context.Background()

	err := st.Put(ctx, "processing", "processing-receipts/carol-1.pdf", bytes.NewReader([]byte("%PDF-1.7")), Metadata{
		ContentType: "application/pdf",
		Custom:      map[string]string{"user_id": "carol"},
	})
	require.NoError(t, err)
	assert.True(t, srv.Exists("obj:data:processing/processing-receipts/carol-1.pdf"))
	assert.True(t, srv.Exists("obj:meta:processing/processing-receipts/carol-1.pdf"))

	ok, err := st.Exists(ctx, "processing", "processing-receipts/carol-1.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	md, err := st.GetMetadata(ctx, "processing", "processing-receipts/carol-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(8), md.Size)
	assert.Equal(t, "application/pdf", md.ContentType)
	assert.Equal(t, "carol", md.Custom["user_id"])

	rc, err := st.GetReader(ctx, "processing", "processing-receipts/carol-1.pdf")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	assert.Equal(t, "%PDF-1.7", string(got))
	assert.Equal(t, "redis://processing/processing-receipts/carol-1.pdf", st.URI("processing", "processing-receipts/carol-1.pdf"))
}

func TestRedisStorageMissing(t *testing.T) {
	st, _ := newRedisStorage(t)
	ctx := context.Background()

	ok, err := st.Exists(ctx, "landing", "ghost.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = st.GetMetadata(ctx, "landing", "ghost.png")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = st.GetReader(ctx, "landing", "ghost.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStorageObjectWithoutMetadata(t *testing.T) {
	st, srv := newRedisStorage(t)
	require.NoError(t, srv.Set("obj:data:landing/dave-x.jpg", "\xff\xd8\xff\xe0"))

	md, err := st.GetMetadata(context.Background(), "landing", "dave-x.jpg")
	require.NoError(t, err)
	assert.Equal(t, int64(4), md.Size)
	assert.Empty(t, md.ContentType)
}

func TestRedisKeysDoNotCollide(t *testing.T) {
	assert.NotEqual(t, objectKey("meta:landing", "a.png"), metaKey("landing", "a.png"))
	assert.NotEqual(t, metaKey("data:landing", "a.png"), objectKey("landing", "a.png"))
}

func TestNewRedisStorageUnreachable(t *testing.T) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("miniredis unavailable: %v", err)
	}
	addr := srv.Addr()
	srv.Close()

	st, err := NewRedisStorage("redis://" + addr)
	require.Error(t, err)
	assert.Nil(t, st)
	assert.Contains(t, err.Error(), "connect redis")
}
