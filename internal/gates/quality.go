package gates

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/tendant/receipt-ingestion/internal/vision"
	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// QualityPolicy: an OCR outage never blocks a receipt
const QualityPolicy = FailOpen

// MinTextLength is the shortest trimmed OCR text accepted as a receipt
const MinTextLength = 10

// TextDetector returns OCR annotations; the first one holds the full text
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) ([]vision.TextAnnotation, error)
}

// QualityGate rejects images with too little readable text.
// A nil TextDetector skips the check.
type QualityGate struct {
	ocr TextDetector
}

func NewQualityGate(ocr TextDetector) *QualityGate {
	return &QualityGate{ocr: ocr}
}

func (g *QualityGate) Check(ctx context.Context, image []byte) Decision {
	if g.ocr == nil {
		return Decision{Passed: true, Skipped: true}
	}
	ann, err := g.ocr.DetectText(ctx, image)
	if err != nil {
		return Decision{Passed: true, Err: err}
	}
	if len(ann) == 0 || utf8.RuneCountInString(strings.TrimSpace(ann[0].Description)) < MinTextLength {
		return reject(pipeline.CodeLowTextContent, "Insufficient textual content detected.")
	}
	return pass()
}
