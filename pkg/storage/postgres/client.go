// Package postgres provides a PostgreSQL implementation of the item store.
//
// Read-modify-write updates lock the affected row with SELECT ... FOR UPDATE,
// so concurrent updates of the same item are serialized by the database while
// updates of different items proceed in parallel.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/linkmind/recall-go/pkg/storage"
)

// uniqueViolation is the PostgreSQL error code for unique-constraint violations.
const uniqueViolation = "23505"

// itemColumns is the column list shared by all SELECT queries.
const itemColumns = `id, owner_id, content_ref, ease_factor, interval_days, repetitions,
	next_review_at, last_reviewed_at, total_reviews, correct_reviews, status,
	created_at, updated_at`

// Client implements ItemStore using PostgreSQL as the backend.
type Client struct {
	// db is the PostgreSQL database connection pool.
	db *sqlx.DB

	// tableName is the name of the table storing review items.
	tableName string
}

// Config contains configuration for creating a PostgreSQL ItemStore.
type Config struct {
	// Host is the PostgreSQL server host.
	Host string

	// Port is the PostgreSQL server port.
	Port int

	// User is the database user.
	User string

	// Password is the database password.
	Password string

	// DBName is the database name.
	DBName string

	// TableName is the name of the table to use.
	TableName string

	// SSLMode is the SSL mode (disable, require, verify-full, ...).
	SSLMode string
}

// NewClient creates a new PostgreSQL ItemStore client.
//
// Parameters:
//   - cfg: Configuration containing connection parameters and table name
//
// Returns:
//   - *Client: The PostgreSQL client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}

	client := &Client{
		db:        db,
		tableName: cfg.TableName,
	}

	// Initialize table structure
	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table structure.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id BIGINT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			content_ref TEXT NOT NULL,
			ease_factor DOUBLE PRECISION NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 1,
			repetitions INTEGER NOT NULL DEFAULT 0,
			next_review_at TIMESTAMPTZ NOT NULL,
			last_reviewed_at TIMESTAMPTZ,
			total_reviews INTEGER NOT NULL DEFAULT 0,
			correct_reviews INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'new',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (owner_id, content_ref)
		)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	dueIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_owner_due ON %s(owner_id, next_review_at)
	`, c.tableName, c.tableName)
	if _, err := c.db.ExecContext(ctx, dueIndex); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// Insert stores a new item.
//
// A violation of the (owner_id, content_ref) unique constraint is reported
// as storage.ErrDuplicateItem.
func (c *Client) Insert(ctx context.Context, item *storage.Item) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, owner_id, content_ref, ease_factor, interval_days, repetitions,
		 next_review_at, last_reviewed_at, total_reviews, correct_reviews, status,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, c.tableName)

	_, err := c.db.ExecContext(ctx, query,
		item.ID,
		item.OwnerID,
		item.ContentRef,
		item.EaseFactor,
		item.IntervalDays,
		item.Repetitions,
		item.NextReviewAt,
		item.LastReviewedAt,
		item.TotalReviews,
		item.CorrectReviews,
		item.Status,
		item.CreatedAt,
		item.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return storage.ErrDuplicateItem
		}
		return fmt.Errorf("Insert: %w", err)
	}

	return nil
}

// Get retrieves an item by ID, scoped to the given owner.
func (c *Client) Get(ctx context.Context, ownerID string, id int64) (*storage.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1 AND owner_id = $2
	`, itemColumns, c.tableName)

	var item storage.Item
	err := c.db.GetContext(ctx, &item, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	return &item, nil
}

// Update atomically applies a read-modify-write to a single item.
//
// The row is locked with FOR UPDATE for the duration of the transaction.
func (c *Client) Update(ctx context.Context, ownerID string, id int64, apply func(*storage.Item) error) (*storage.Item, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = $1 AND owner_id = $2 FOR UPDATE
	`, itemColumns, c.tableName)

	var item storage.Item
	err = tx.GetContext(ctx, &item, query, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	if err := apply(&item); err != nil {
		return nil, err
	}

	updateQuery := fmt.Sprintf(`
		UPDATE %s SET
			ease_factor = $1, interval_days = $2, repetitions = $3,
			next_review_at = $4, last_reviewed_at = $5,
			total_reviews = $6, correct_reviews = $7, status = $8, updated_at = $9
		WHERE id = $10 AND owner_id = $11
	`, c.tableName)

	_, err = tx.ExecContext(ctx, updateQuery,
		item.EaseFactor,
		item.IntervalDays,
		item.Repetitions,
		item.NextReviewAt,
		item.LastReviewedAt,
		item.TotalReviews,
		item.CorrectReviews,
		item.Status,
		item.UpdatedAt,
		id,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	return &item, nil
}

// ListDue returns items due at the given time, oldest due first.
func (c *Client) ListDue(ctx context.Context, ownerID string, now time.Time, limit int) ([]*storage.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE owner_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC
		LIMIT $3
	`, itemColumns, c.tableName)

	var items []*storage.Item
	if err := c.db.SelectContext(ctx, &items, query, ownerID, now, limit); err != nil {
		return nil, fmt.Errorf("ListDue: %w", err)
	}

	return items, nil
}

// CountDue returns the number of items due at the given time.
func (c *Client) CountDue(ctx context.Context, ownerID string, now time.Time) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s WHERE owner_id = $1 AND next_review_at <= $2
	`, c.tableName)

	var count int
	if err := c.db.GetContext(ctx, &count, query, ownerID, now); err != nil {
		return 0, fmt.Errorf("CountDue: %w", err)
	}

	return count, nil
}

// ListByOwner returns all items belonging to an owner.
func (c *Client) ListByOwner(ctx context.Context, ownerID string) ([]*storage.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE owner_id = $1 ORDER BY id
	`, itemColumns, c.tableName)

	var items []*storage.Item
	if err := c.db.SelectContext(ctx, &items, query, ownerID); err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}

	return items, nil
}

// DeleteByContentRef deletes the item for (owner, contentRef) if present.
//
// Deleting an absent item is a no-op, not an error.
func (c *Client) DeleteByContentRef(ctx context.Context, ownerID, contentRef string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE owner_id = $1 AND content_ref = $2
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query, ownerID, contentRef); err != nil {
		return fmt.Errorf("DeleteByContentRef: %w", err)
	}

	return nil
}

// Close closes the database connection pool.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
