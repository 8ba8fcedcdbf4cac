package gates

import (
	"context"
	"fmt"
	"strings"

	"github.com/tendant/receipt-ingestion/internal/vision"
	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// SafetyPolicy: a moderation outage never blocks a receipt
const SafetyPolicy = FailOpen

// Moderator returns safe-search likelihoods for an image
type Moderator interface {
	SafeSearch(ctx context.Context, image []byte) (vision.SafeSearch, error)
}

// SafetyGate rejects images that moderation flags as adult, violent or racy.
// A nil Moderator skips the check.
type SafetyGate struct {
	mod Moderator
}

func NewSafetyGate(mod Moderator) *SafetyGate {
	return &SafetyGate{mod: mod}
}

func (g *SafetyGate) Check(ctx context.Context, image []byte) Decision {
	if g.mod == nil {
		return Decision{Passed: true, Skipped: true}
	}
	ss, err := g.mod.SafeSearch(ctx, image)
	if err != nil {
		return Decision{Passed: true, Err: err}
	}

	var flagged []string
	if ss.Adult.AtLeastLikely() {
		flagged = append(flagged, "adult")
	}
	if ss.Violence.AtLeastLikely() {
		flagged = append(flagged, "violence")
	}
	if ss.Racy.AtLeastLikely() {
		flagged = append(flagged, "racy")
	}
	if len(flagged) > 0 {
		return reject(pipeline.CodeUnsafeContent, fmt.Sprintf("Unsafe content detected in image (%s).", strings.Join(flagged, ", ")))
	}
	return pass()
}
