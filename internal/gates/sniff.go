package gates

import (
	"bytes"

	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// MediaType is the signature-derived type of a payload
type MediaType string

const (
	JPEG    MediaType = "JPEG"
	PNG     MediaType = "PNG"
	WEBP    MediaType = "WEBP"
	PDF     MediaType = "PDF"
	Unknown MediaType = "UNKNOWN"
)

var (
	sigJPEG = []byte{0xFF, 0xD8, 0xFF}
	sigPNG  = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	sigRIFF = []byte("RIFF")
	sigWEBP = []byte("WEBP")
	sigPDF  = []byte("%PDF")
)

// Classify inspects leading bytes only. Declared content types are never consulted.
func Classify(payload []byte) MediaType {
	switch {
	case bytes.HasPrefix(payload, sigJPEG):
		return JPEG
	case bytes.HasPrefix(payload, sigPNG):
		return PNG
	case len(payload) >= 12 && bytes.Equal(payload[0:4], sigRIFF) && bytes.Equal(payload[8:12], sigWEBP):
		return WEBP
	case bytes.HasPrefix(payload, sigPDF):
		return PDF
	default:
		return Unknown
	}
}

// MIME returns the content type stored with the relocated object
func (m MediaType) MIME() string {
	switch m {
	case JPEG:
		return pipeline.MimeJPEG
	case PNG:
		return pipeline.MimePNG
	case WEBP:
		return pipeline.MimeWEBP
	case PDF:
		return pipeline.MimePDF
	default:
		return "application/octet-stream"
	}
}

// Ext is the file extension used in relocation keys
func (m MediaType) Ext() string {
	switch m {
	case JPEG:
		return "jpg"
	case PNG:
		return "png"
	case WEBP:
		return "webp"
	case PDF:
		return "pdf"
	default:
		return "bin"
	}
}

// IsImage reports whether moderation and OCR apply
func (m MediaType) IsImage() bool {
	return m == JPEG || m == PNG || m == WEBP
}
