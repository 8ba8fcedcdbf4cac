package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GCP_PROJECT", "acme")
	t.Setenv("MAX_FILE_SIZE_MB", "")
	t.Setenv("ALLOWED_CONTENT_TYPES", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("IDENTITY_BACKEND", "")
	t.Setenv("QUEUE_BACKEND", "")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "acme", c.ProjectID)
	assert.Equal(t, "acme.appspot.com", c.DestinationBucket)
	assert.Equal(t, "receipts-for-extraction", c.ExtractionTopic)
	assert.Equal(t, 5, c.MaxFileSizeMB)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}, c.AllowedContentTypes)
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 60*time.Second, c.RequestTimeout)
	assert.Equal(t, StorageFilesystem, c.StorageBackend)
	assert.Equal(t, IdentityStatic, c.IdentityBackend)
	assert.Equal(t, QueueNats, c.QueueBackend)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_FILE_SIZE_MB", "10")
	t.Setenv("PORT", "9090")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("DESTINATION_BUCKET", "receipts-processing")
	t.Setenv("ALLOWED_CONTENT_TYPES", "image/jpg, image/png,image/png")
	t.Setenv("VISION_DISABLED", "true")
	t.Setenv("STORAGE_BACKEND", "REDIS")
	t.Setenv("IDENTITY_BACKEND", "")
	t.Setenv("QUEUE_BACKEND", "")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, c.MaxFileSizeMB)
	assert.Equal(t, ":9090", c.HTTPAddr)
	assert.Equal(t, "receipts-processing", c.DestinationBucket)
	assert.Equal(t, []string{"image/jpeg", "image/png"}, c.AllowedContentTypes)
	assert.True(t, c.VisionDisabled)
	assert.Equal(t, StorageRedis, c.StorageBackend)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("IDENTITY_BACKEND", "")
	t.Setenv("QUEUE_BACKEND", "")

	t.Setenv("MAX_FILE_SIZE_MB", "five")
	_, err := Load()
	assert.ErrorContains(t, err, "MAX_FILE_SIZE_MB")

	t.Setenv("MAX_FILE_SIZE_MB", "0")
	_, err = Load()
	assert.ErrorContains(t, err, "must be positive")

	t.Setenv("MAX_FILE_SIZE_MB", "5")
	t.Setenv("QUEUE_BACKEND", "dbos")
	t.Setenv("DBOS_SYSTEM_DATABASE_URL", "")
	_, err = Load()
	assert.ErrorContains(t, err, "DBOS_SYSTEM_DATABASE_URL")

	t.Setenv("QUEUE_BACKEND", "kafka")
	_, err = Load()
	assert.ErrorContains(t, err, "QUEUE_BACKEND")

	t.Setenv("QUEUE_BACKEND", "")
	t.Setenv("IDENTITY_BACKEND", "postgres")
	t.Setenv("IDENTITY_DATABASE_URL", "")
	_, err = Load()
	assert.ErrorContains(t, err, "IDENTITY_DATABASE_URL")
}

func TestParseContentTypes(t *testing.T) {
	assert.Empty(t, ParseContentTypes(" , "))
	assert.Equal(t, []string{"application/pdf"}, ParseContentTypes("APPLICATION/PDF"))
}
