package dbosruntime

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// minimal subset of the DBOS system schema touched by enqueue
const testSchema = `
	CREATE SCHEMA IF NOT EXISTS dbos;
	CREATE TABLE dbos.workflow_status (
		workflow_uuid TEXT PRIMARY KEY,
		status TEXT,
		name TEXT,
		queue_name TEXT,
		inputs TEXT,
		executor_id TEXT,
		application_version TEXT,
		application_id TEXT,
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	);
`

func TestConfigDefaults(t *testing.T) {
	c := Config{}
	c.WithDefaults()
	assert.Equal(t, "receipts", c.QueueName)

	c = Config{QueueName: "custom"}
	c.WithDefaults()
	assert.Equal(t, "custom", c.QueueName)
}

func TestNewRuntimeRequiresDatabaseURL(t *testing.T) {
	_, err := NewRuntime(context.Background(), Config{AppName: "x"})
	assert.Error(t, err)
}

func TestEnqueue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dbos_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	db, err := sql.Open("postgres", connStr)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, testSchema)
	require.NoError(t, err)

	cfg := Config{AppName: "receipt-ingestion", ApplicationVersion: "v1"}
	cfg.WithDefaults()
	e := newEnqueuer(db, cfg)

	id1, err := e.enqueue(ctx, "extract_receipt", map[string]string{"file_path": "s3://b/k", "user_id": "u"})
	require.NoError(t, err)
	id2, err := e.enqueue(ctx, "extract_receipt", map[string]string{"file_path": "s3://b/k", "user_id": "u"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	var status, name, queue, inputs string
	err = db.QueryRowContext(ctx,
		`SELECT status, name, queue_name, inputs FROM dbos.workflow_status WHERE workflow_uuid = $1`, id1,
	).Scan(&status, &name, &queue, &inputs)
	require.NoError(t, err)
	assert.Equal(t, "ENQUEUED", status)
	assert.Equal(t, "extract_receipt", name)
	assert.Equal(t, "receipts", queue)
	assert.JSONEq(t, `[{"file_path":"s3://b/k","user_id":"u"}]`, inputs)
}
