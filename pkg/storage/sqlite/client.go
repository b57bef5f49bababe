// Package sqlite provides a SQLite implementation of the item store.
//
// SQLite is a lightweight, file-based database suitable for local development
// and single-node deployments. SQLite serializes writers at the database
// level, so transactions opened in immediate mode are sufficient to make
// read-modify-write updates atomic without row locks.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/linkmind/recall-go/pkg/storage"
)

// itemColumns is the column list shared by all SELECT queries.
const itemColumns = `id, owner_id, content_ref, ease_factor, interval_days, repetitions,
	next_review_at, last_reviewed_at, total_reviews, correct_reviews, status,
	created_at, updated_at`

// Client implements ItemStore using SQLite as the backend.
type Client struct {
	// db is the SQLite database connection.
	db *sqlx.DB

	// tableName is the name of the table storing review items.
	tableName string
}

// Config contains configuration for creating a SQLite ItemStore.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TableName is the name of the table to use.
	TableName string
}

// NewClient creates a new SQLite ItemStore client.
//
// Parameters:
//   - cfg: Configuration containing database path and table name
//
// Returns:
//   - *Client: The SQLite client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	// Create parent directory if it doesn't exist
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	// _txlock=immediate makes every transaction take the write lock up
	// front, which keeps concurrent read-modify-write updates from
	// deadlocking on a lock upgrade.
	dsn := cfg.DBPath + "?_foreign_keys=1&_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
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
//
// The unique index on (owner_id, content_ref) enforces one item per piece
// of enrolled content; the (owner_id, next_review_at) index serves the
// due-queue and due-count queries.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			owner_id TEXT NOT NULL,
			content_ref TEXT NOT NULL,
			ease_factor REAL NOT NULL DEFAULT 2.5,
			interval_days INTEGER NOT NULL DEFAULT 1,
			repetitions INTEGER NOT NULL DEFAULT 0,
			next_review_at DATETIME NOT NULL,
			last_reviewed_at DATETIME,
			total_reviews INTEGER NOT NULL DEFAULT 0,
			correct_reviews INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'new',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	uniqueIndex := fmt.Sprintf(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_owner_ref ON %s(owner_id, content_ref)
	`, c.tableName, c.tableName)
	if _, err := c.db.ExecContext(ctx, uniqueIndex); err != nil {
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
// A violation of the (owner_id, content_ref) unique index is reported as
// storage.ErrDuplicateItem.
func (c *Client) Insert(ctx context.Context, item *storage.Item) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, owner_id, content_ref, ease_factor, interval_days, repetitions,
		 next_review_at, last_reviewed_at, total_reviews, correct_reviews, status,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return storage.ErrDuplicateItem
		}
		return fmt.Errorf("Insert: %w", err)
	}

	return nil
}

// Get retrieves an item by ID, scoped to the given owner.
func (c *Client) Get(ctx context.Context, ownerID string, id int64) (*storage.Item, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = ? AND owner_id = ?
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
// The transaction holds the database write lock for its duration (immediate
// mode), so concurrent updates of the same item are serialized.
func (c *Client) Update(ctx context.Context, ownerID string, id int64, apply func(*storage.Item) error) (*storage.Item, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = ? AND owner_id = ?
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
			ease_factor = ?, interval_days = ?, repetitions = ?,
			next_review_at = ?, last_reviewed_at = ?,
			total_reviews = ?, correct_reviews = ?, status = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?
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
		WHERE owner_id = ? AND next_review_at <= ?
		ORDER BY next_review_at ASC
		LIMIT ?
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
		SELECT COUNT(*) FROM %s WHERE owner_id = ? AND next_review_at <= ?
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
		SELECT %s FROM %s WHERE owner_id = ? ORDER BY id
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
		DELETE FROM %s WHERE owner_id = ? AND content_ref = ?
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query, ownerID, contentRef); err != nil {
		return fmt.Errorf("DeleteByContentRef: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
