// Package mysql provides a MySQL implementation of the item store.
//
// Read-modify-write updates lock the affected row with SELECT ... FOR UPDATE,
// so concurrent updates of the same item are serialized by the database while
// updates of different items proceed in parallel.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/linkmind/recall-go/pkg/storage"
)

// duplicateEntry is the MySQL error number for duplicate-key violations.
const duplicateEntry = 1062

// itemColumns is the column list shared by all SELECT queries.
const itemColumns = `id, owner_id, content_ref, ease_factor, interval_days, repetitions,
	next_review_at, last_reviewed_at, total_reviews, correct_reviews, status,
	created_at, updated_at`

// Client implements ItemStore using MySQL as the backend.
type Client struct {
	// db is the MySQL database connection pool.
	db *sqlx.DB

	// tableName is the name of the table storing review items.
	tableName string
}

// Config contains configuration for creating a MySQL ItemStore.
type Config struct {
	// Host is the MySQL server host.
	Host string

	// Port is the MySQL server port.
	Port int

	// User is the database user.
	User string

	// Password is the database password.
	Password string

	// DBName is the database name.
	DBName string

	// TableName is the name of the table to use.
	TableName string
}

// NewClient creates a new MySQL ItemStore client.
//
// Parameters:
//   - cfg: Configuration containing connection parameters and table name
//
// Returns:
//   - *Client: The MySQL client instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	// parseTime makes the driver scan DATETIME columns into time.Time.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
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
			owner_id VARCHAR(191) NOT NULL,
			content_ref VARCHAR(191) NOT NULL,
			ease_factor DOUBLE NOT NULL DEFAULT 2.5,
			interval_days INT NOT NULL DEFAULT 1,
			repetitions INT NOT NULL DEFAULT 0,
			next_review_at DATETIME(6) NOT NULL,
			last_reviewed_at DATETIME(6) NULL,
			total_reviews INT NOT NULL DEFAULT 0,
			correct_reviews INT NOT NULL DEFAULT 0,
			status VARCHAR(16) NOT NULL DEFAULT 'new',
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			UNIQUE KEY uniq_owner_ref (owner_id, content_ref),
			KEY idx_owner_due (owner_id, next_review_at)
		)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// Insert stores a new item.
//
// A violation of the (owner_id, content_ref) unique key is reported as
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
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntry {
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
// The row is locked with FOR UPDATE for the duration of the transaction.
func (c *Client) Update(ctx context.Context, ownerID string, id int64, apply func(*storage.Item) error) (*storage.Item, error) {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = ? AND owner_id = ? FOR UPDATE
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

// Close closes the database connection pool.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
