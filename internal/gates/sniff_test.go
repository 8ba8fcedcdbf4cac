package gates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    MediaType
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, JPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00}, PNG},
		{"webp", []byte("RIFF\x24\x00\x00\x00WEBPVP8 "), WEBP},
		{"pdf", []byte("%PDF-1.7\n"), PDF},
		{"riff but not webp", []byte("RIFF\x24\x00\x00\x00WAVEfmt "), Unknown},
		{"truncated riff", []byte("RIFF\x24\x00"), Unknown},
		{"truncated png", []byte{0x89, 'P', 'N', 'G'}, Unknown},
		{"pdf marker not at offset 0", []byte(" %PDF-1.7"), Unknown},
		{"gif", []byte("GIF89a"), Unknown},
		{"text", []byte("hello world"), Unknown},
		{"empty", nil, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.payload))
			// pure function of the bytes
			assert.Equal(t, Classify(tt.payload), Classify(tt.payload))
		})
	}
}

func TestMediaTypeAttributes(t *testing.T) {
	assert.Equal(t, "image/jpeg", JPEG.MIME())
	assert.Equal(t, "jpg", JPEG.Ext())
	assert.Equal(t, "png", PNG.Ext())
	assert.Equal(t, "webp", WEBP.Ext())
	assert.Equal(t, "application/pdf", PDF.MIME())
	assert.Equal(t, "pdf", PDF.Ext())

	assert.True(t, JPEG.IsImage())
	assert.True(t, PNG.IsImage())
	assert.True(t, WEBP.IsImage())
	assert.False(t, PDF.IsImage())
	assert.False(t, Unknown.IsImage())
}
