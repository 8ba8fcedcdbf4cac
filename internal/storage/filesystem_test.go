package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemPutGet(t *testing.T) {
	fs, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	err = fs.Put(ctx, "processing", "processing-receipts/alice-1.png", bytes.NewReader([]byte("png-bytes")), Metadata{
		ContentType: "image/png",
		Custom:      map[string]string{"User_ID": "alice"},
	})
	require.NoError(t, err)

	ok, err := fs.Exists(ctx, "processing", "processing-receipts/alice-1.png")
	require.NoError(t, err)
	assert.True(t, ok)

	md, err := fs.GetMetadata(ctx, "processing", "processing-receipts/alice-1.png")
	require.NoError(t, err)
	assert.Equal(t, int64(9), md.Size)
	assert.Equal(t, "image/png", md.ContentType)
	assert.Equal(t, "alice", md.Custom["user_id"])

	rc, err := fs.GetReader(ctx, "processing", "processing-receipts/alice-1.png")
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(got))

	assert.Contains(t, fs.URI("processing", "processing-receipts/alice-1.png"), "processing/processing-receipts/alice-1.png")
}

func TestFilesystemMissingObject(t *testing.T) {
	fs, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ok, err := fs.Exists(ctx, "landing", "nope.jpg")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = fs.GetMetadata(ctx, "landing", "nope.jpg")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fs.GetReader(ctx, "landing", "nope.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesystemWithoutSidecar(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFilesystemStorage(dir)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "landing"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "landing", "bob-receipt.pdf"), []byte("%PDF-1.4"), 0644))

	md, err := fs.GetMetadata(context.Background(), "landing", "bob-receipt.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(8), md.Size)
	assert.Empty(t, md.ContentType)
	assert.Empty(t, md.Custom)
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	fs, err := NewFilesystemStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = fs.Exists(ctx, "landing", "../../etc/passwd")
	assert.Error(t, err)
	_, err = fs.Exists(ctx, "..", "x")
	assert.Error(t, err)
	err = fs.Put(ctx, ".meta", "x", bytes.NewReader(nil), Metadata{})
	assert.Error(t, err)
}
