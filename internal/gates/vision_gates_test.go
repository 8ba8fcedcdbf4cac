package gates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tendant/receipt-ingestion/internal/vision"
	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

type stubModerator struct {
	result vision.SafeSearch
	err    error
}

func (s stubModerator) SafeSearch(context.Context, []byte) (vision.SafeSearch, error) {
	return s.result, s.err
}

type stubOCR struct {
	ann []vision.TextAnnotation
	err error
}

func (s stubOCR) DetectText(context.Context, []byte) ([]vision.TextAnnotation, error) {
	return s.ann, s.err
}

func TestSafetyGate(t *testing.T) {
	safe := vision.SafeSearch{Adult: vision.VeryUnlikely, Violence: vision.Unlikely, Racy: vision.Possible}
	tests := []struct {
		name     string
		result   vision.SafeSearch
		passed   bool
		contains []string
	}{
		{"safe", safe, true, nil},
		{"adult very likely", vision.SafeSearch{Adult: vision.VeryLikely}, false, []string{"adult"}},
		{"violence likely", vision.SafeSearch{Violence: vision.Likely}, false, []string{"violence"}},
		{"racy and adult", vision.SafeSearch{Adult: vision.Likely, Racy: vision.VeryLikely}, false, []string{"adult", "racy"}},
		{"possible only", vision.SafeSearch{Adult: vision.Possible, Violence: vision.Possible, Racy: vision.Possible}, true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewSafetyGate(stubModerator{result: tt.result}).Check(context.Background(), []byte("img"))
			assert.Equal(t, tt.passed, d.Passed)
			if !tt.passed {
				assert.Equal(t, pipeline.CodeUnsafeContent, d.Code)
				for _, c := range tt.contains {
					assert.Contains(t, d.Reason, c)
				}
			}
		})
	}
}

func TestSafetyGateFailsOpen(t *testing.T) {
	assert.Equal(t, FailOpen, SafetyPolicy)

	d := NewSafetyGate(stubModerator{err: errors.New("vision: quota exceeded")}).Check(context.Background(), []byte("img"))
	assert.True(t, d.Passed)
	assert.Error(t, d.Err)
	assert.Equal(t, "fail_open", d.Label())

	d = NewSafetyGate(nil).Check(context.Background(), []byte("img"))
	assert.True(t, d.Passed)
	assert.Equal(t, "skipped", d.Label())
}

func TestQualityGate(t *testing.T) {
	tests := []struct {
		name   string
		ann    []vision.TextAnnotation
		passed bool
	}{
		{"no annotations", nil, false},
		{"short text", []vision.TextAnnotation{{Description: "  TOTAL  "}}, false},
		{"nine chars", []vision.TextAnnotation{{Description: "123456789"}}, false},
		{"ten chars", []vision.TextAnnotation{{Description: "\n1234567890\n"}}, true},
		{"receipt", []vision.TextAnnotation{{Description: "ACME STORE\nTOTAL 12.50\nTHANK YOU FOR SHOPPING WITH US"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewQualityGate(stubOCR{ann: tt.ann}).Check(context.Background(), []byte("img"))
			assert.Equal(t, tt.passed, d.Passed)
			if !tt.passed {
				assert.Equal(t, pipeline.CodeLowTextContent, d.Code)
			}
		})
	}
}

func TestQualityGateFailsOpen(t *testing.T) {
	assert.Equal(t, FailOpen, QualityPolicy)

	d := NewQualityGate(stubOCR{err: errors.New("vision: Bad image data.")}).Check(context.Background(), []byte("img"))
	assert.True(t, d.Passed)
	assert.Equal(t, "fail_open", d.Label())

	assert.True(t, NewQualityGate(nil).Check(context.Background(), nil).Passed)
}
