// Package storage provides interfaces and types for review-item persistence.
//
// It defines the ItemStore interface that all storage backends must satisfy,
// along with the Item record type and the sentinel errors backends report.
package storage

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors reported by storage backends.
//
// Backends translate driver-specific failures (unique-constraint violations,
// empty result sets) into these values so callers can match with errors.Is
// without knowing which backend is configured.
var (
	// ErrNotFound indicates that no item matched the requested identity.
	ErrNotFound = errors.New("item not found")

	// ErrDuplicateItem indicates that an insert violated the
	// (owner_id, content_ref) uniqueness constraint.
	ErrDuplicateItem = errors.New("item already exists")
)

// Item is the persisted form of a review-scheduling record.
//
// This type is defined in the storage package to avoid circular dependencies
// with the core package. It mirrors the core.MemoryItem structure. The
// interval column is named interval_days because "interval" is a reserved
// word in PostgreSQL and MySQL.
type Item struct {
	// ID is the unique identifier of the item, assigned at creation.
	ID int64 `db:"id"`

	// OwnerID identifies the user who owns this schedule.
	OwnerID string `db:"owner_id"`

	// ContentRef identifies the external content being remembered.
	// Unique per owner.
	ContentRef string `db:"content_ref"`

	// EaseFactor is the SM-2 ease factor (>= 1.3).
	EaseFactor float64 `db:"ease_factor"`

	// IntervalDays is the number of days until the next review (>= 1).
	IntervalDays int `db:"interval_days"`

	// Repetitions is the count of consecutive successful reviews.
	Repetitions int `db:"repetitions"`

	// NextReviewAt is when the item next becomes due.
	NextReviewAt time.Time `db:"next_review_at"`

	// LastReviewedAt is when the item was last reviewed (nil if never).
	LastReviewedAt *time.Time `db:"last_reviewed_at"`

	// TotalReviews counts all submitted reviews for this item.
	TotalReviews int `db:"total_reviews"`

	// CorrectReviews counts reviews graded as a pass.
	CorrectReviews int `db:"correct_reviews"`

	// Status is the derived learning-status label.
	Status string `db:"status"`

	// CreatedAt is when the item was created.
	CreatedAt time.Time `db:"created_at"`

	// UpdatedAt is when the item was last modified.
	UpdatedAt time.Time `db:"updated_at"`
}

// ItemStore defines the interface for review-item storage backends.
//
// All backends (SQLite, PostgreSQL, MySQL) must implement this interface.
// Implementations must guarantee that Update applies its callback atomically
// with respect to the single affected row, and that Insert enforces the
// (owner_id, content_ref) uniqueness constraint at the database level.
type ItemStore interface {
	// Insert stores a new item.
	//
	// Returns ErrDuplicateItem if an item already exists for the same
	// (owner, contentRef) pair. The check and the insert are atomic: of
	// two concurrent inserts for the same pair, exactly one succeeds.
	Insert(ctx context.Context, item *Item) error

	// Get retrieves an item by ID, scoped to the given owner.
	//
	// Returns ErrNotFound if no such item exists for that owner.
	Get(ctx context.Context, ownerID string, id int64) (*Item, error)

	// Update atomically applies a read-modify-write to a single item.
	//
	// The item is loaded inside a transaction, apply mutates it in place,
	// and the result is written back before the transaction commits. Two
	// concurrent updates of the same item never interleave: the second
	// observes the state committed by the first. If apply returns an
	// error the transaction is rolled back and nothing is persisted.
	//
	// Returns the updated item, or ErrNotFound if no such item exists
	// for that owner.
	Update(ctx context.Context, ownerID string, id int64, apply func(*Item) error) (*Item, error)

	// ListDue returns items with next_review_at <= now, ordered ascending
	// by next_review_at (oldest due first), truncated to limit.
	ListDue(ctx context.Context, ownerID string, now time.Time, limit int) ([]*Item, error)

	// CountDue returns the number of items with next_review_at <= now.
	CountDue(ctx context.Context, ownerID string, now time.Time) (int, error)

	// ListByOwner returns all items belonging to an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]*Item, error)

	// DeleteByContentRef deletes the item for (owner, contentRef) if it
	// exists. Deleting an absent item is not an error.
	DeleteByContentRef(ctx context.Context, ownerID, contentRef string) error

	// Close closes the store and releases resources.
	Close() error
}
