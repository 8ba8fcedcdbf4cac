package dbosruntime

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type enqueuer struct {
	db         *sql.DB
	queue      string
	appName    string
	appVersion string
}

func newEnqueuer(db *sql.DB, cfg Config) *enqueuer {
	return &enqueuer{
		db:         db,
		queue:      cfg.QueueName,
		appName:    cfg.AppName,
		appVersion: cfg.ApplicationVersion,
	}
}

// enqueue inserts an ENQUEUED row into dbos.workflow_status so that any
// worker (in any language) registered for workflowName and listening on the
// queue picks it up. The input is stored as a single-element JSON argument list.
func (e *enqueuer) enqueue(ctx context.Context, workflowName string, input any) (string, error) {
	args, err := json.Marshal([]any{input})
	if err != nil {
		return "", fmt.Errorf("failed to marshal input: %w", err)
	}

	workflowID := uuid.NewString()
	now := time.Now().UnixMilli()

	query := `
		INSERT INTO dbos.workflow_status (
			workflow_uuid,
			status,
			name,
			queue_name,
			inputs,
			executor_id,
			application_version,
			application_id,
			created_at,
			updated_at
		) VALUES ($1, 'ENQUEUED', $2, $3, $4, '', $5, $6, $7, $7)
	`
	_, err = e.db.ExecContext(ctx, query,
		workflowID,
		workflowName,
		e.queue,
		string(args),
		e.appVersion,
		e.appName,
		now,
	)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue workflow: %w", err)
	}
	return workflowID, nil
}
