package vision

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// Prepare shrinks JPEG and PNG images whose longer side exceeds maxDim so the
// annotate request stays small. Anything it cannot decode is returned as is.
func Prepare(data []byte, maxDim int) []byte {
	if maxDim <= 0 {
		return data
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return data
	}
	if cfg.Width <= maxDim && cfg.Height <= maxDim {
		return data
	}

	var enc imaging.Format
	switch format {
	case "jpeg":
		enc = imaging.JPEG
	case "png":
		enc = imaging.PNG
	default:
		return data
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	resized := imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, enc, imaging.JPEGQuality(jpeg.DefaultQuality)); err != nil {
		return data
	}
	return buf.Bytes()
}
