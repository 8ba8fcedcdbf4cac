// Package queue announces relocated receipts to the extraction pipeline.
package queue

import (
	"context"

	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// Announcer publishes one extraction announcement and returns only once the
// broker has acknowledged it.
type Announcer interface {
	Announce(ctx context.Context, a pipeline.ExtractionAnnouncement) (Receipt, error)
}

// Receipt identifies an acknowledged publish
type Receipt struct {
	DeliveryID string
}
