package queue

import (
	"context"
	"fmt"

	"github.com/tendant/receipt-ingestion/pkg/pipeline"
)

// Enqueuer starts a named workflow with the given input and returns its id
type Enqueuer interface {
	EnqueueByName(ctx context.Context, workflowName string, input any) (string, error)
}

// DBOSAnnouncer hands announcements to a DBOS workflow queue.
// The workflow id serves as the delivery id.
type DBOSAnnouncer struct {
	enq      Enqueuer
	workflow string
}

// NewDBOSAnnouncer targets workflow on the runtime's queue
func NewDBOSAnnouncer(enq Enqueuer, workflow string) *DBOSAnnouncer {
	return &DBOSAnnouncer{enq: enq, workflow: workflow}
}

func (a *DBOSAnnouncer) Announce(ctx context.Context, msg pipeline.ExtractionAnnouncement) (Receipt, error) {
	id, err := a.enq.EnqueueByName(ctx, a.workflow, msg)
	if err != nil {
		return Receipt{}, fmt.Errorf("enqueue %s: %w", a.workflow, err)
	}
	return Receipt{DeliveryID: id}, nil
}
