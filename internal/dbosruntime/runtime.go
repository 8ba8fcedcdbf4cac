package dbosruntime

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dbos-inc/dbos-transact-golang/dbos"
	_ "github.com/lib/pq"
)

// Runtime owns the DBOS context used to persist queued workflows.
// The gateway only enqueues; extraction workers register and run the workflows.
type Runtime struct {
	dbosContext dbos.DBOSContext
	config      Config
	db          *sql.DB
	enq         *enqueuer
}

// NewRuntime creates a new DBOS runtime instance
func NewRuntime(ctx context.Context, cfg Config) (*Runtime, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("DBOS_SYSTEM_DATABASE_URL is required")
	}
	if cfg.AppName == "" {
		return nil, errors.New("DBOS app name is required")
	}
	cfg.WithDefaults()

	dbosCtx, err := dbos.NewDBOSContext(ctx, dbos.Config{
		DatabaseURL:        cfg.DatabaseURL,
		AppName:            cfg.AppName,
		ApplicationVersion: cfg.ApplicationVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create dbos context: %w", err)
	}

	// Direct SQL handle for enqueueing workflows by name
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		dbosContext: dbosCtx,
		config:      cfg,
		db:          db,
		enq:         newEnqueuer(db, cfg),
	}, nil
}

// Launch starts the DBOS runtime, migrating the system schema if needed
func (r *Runtime) Launch() error {
	return dbos.Launch(r.dbosContext)
}

// Shutdown gracefully shuts down the DBOS runtime
func (r *Runtime) Shutdown(timeout time.Duration) error {
	dbos.Shutdown(r.dbosContext, timeout)
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// EnqueueByName places workflowName on the configured queue
func (r *Runtime) EnqueueByName(ctx context.Context, workflowName string, input any) (string, error) {
	return r.enq.enqueue(ctx, workflowName, input)
}

// QueueName returns the configured queue name
func (r *Runtime) QueueName() string {
	return r.config.QueueName
}
