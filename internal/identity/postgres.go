package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresDirectory reads owners from the receipt_owners table
type PostgresDirectory struct {
	db *sql.DB
}

// OpenPostgresDirectory opens a lib/pq connection and prepares the table
func OpenPostgresDirectory(ctx context.Context, databaseURL string) (*PostgresDirectory, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open identity database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach identity database: %w", err)
	}
	return NewPostgresDirectory(ctx, db)
}

// NewPostgresDirectory wraps db and creates the owners table if missing
func NewPostgresDirectory(ctx context.Context, db *sql.DB) (*PostgresDirectory, error) {
	d := &PostgresDirectory{db: db}
	if err := d.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure receipt_owners table: %w", err)
	}
	return d, nil
}

func (d *PostgresDirectory) ensureTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS receipt_owners (
			id TEXT PRIMARY KEY,
			disabled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	_, err := d.db.ExecContext(ctx, query)
	return err
}

func (d *PostgresDirectory) Lookup(ctx context.Context, ownerID string) (Account, error) {
	query := `SELECT disabled FROM receipt_owners WHERE id = $1`

	var disabled bool
	err := d.db.QueryRowContext(ctx, query, ownerID).Scan(&disabled)
	if errors.Is(err, sql.ErrNoRows) {
		return Account{}, fmt.Errorf("%s: %w", ownerID, ErrNotFound)
	}
	if err != nil {
		return Account{}, fmt.Errorf("failed to look up owner: %w", err)
	}
	return Account{ID: ownerID, Disabled: disabled}, nil
}

// Upsert creates or updates an owner
func (d *PostgresDirectory) Upsert(ctx context.Context, a Account) error {
	query := `
		INSERT INTO receipt_owners (id, disabled)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET disabled = EXCLUDED.disabled
	`
	if _, err := d.db.ExecContext(ctx, query, a.ID, a.Disabled); err != nil {
		return fmt.Errorf("failed to upsert owner: %w", err)
	}
	return nil
}

// Close closes the database handle
func (d *PostgresDirectory) Close() error {
	return d.db.Close()
}
