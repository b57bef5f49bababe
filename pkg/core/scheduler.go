package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/linkmind/recall-go/pkg/sm2"
	"github.com/linkmind/recall-go/pkg/storage"
	mysqlStore "github.com/linkmind/recall-go/pkg/storage/mysql"
	postgresStore "github.com/linkmind/recall-go/pkg/storage/postgres"
	sqliteStore "github.com/linkmind/recall-go/pkg/storage/sqlite"
)

// Client is the spaced-repetition review scheduler.
//
// It decides when each enrolled piece of content should next be shown to
// its owner and adapts that schedule from review outcomes using the SM-2
// algorithm. The client has no background goroutines or timers: dueness is
// evaluated lazily at query time by comparing next_review_at against the
// current clock.
//
// The client is thread-safe and can be used concurrently from multiple
// goroutines. Submissions for the same item are serialized by the store's
// single-item transaction; submissions for different items are independent.
//
// Example usage:
//
//	config, _ := core.LoadConfigFromEnv()
//	client, _ := core.NewClient(config)
//	defer client.Close()
//
//	item, _ := client.Enroll(ctx, "user_001", "content_42")
//	due, _ := client.GetDueSet(ctx, "user_001", 0)
//	item, _ = client.SubmitReview(ctx, "user_001", item.ID, 4)
type Client struct {
	// config contains the client configuration.
	config *Config

	// store is the item store for schedule persistence.
	store storage.ItemStore

	// node generates unique IDs for memory items.
	node *snowflake.Node

	// mu protects concurrent access to the client.
	mu sync.RWMutex
}

// NewClient creates a new review scheduler client.
//
// The client is initialized with an item store (SQLite, PostgreSQL, or
// MySQL) and a snowflake ID generator.
//
// Parameters:
//   - cfg: Configuration containing store and scheduler settings
//
// Returns a new Client instance, or an error if initialization fails.
//
// Example:
//
//	config := &core.Config{
//	    Store: core.StoreConfig{
//	        Provider: "sqlite",
//	        Config: map[string]interface{}{
//	            "db_path":    "./recall.db",
//	            "table_name": "review_items",
//	        },
//	    },
//	}
//	client, err := core.NewClient(config)
func NewClient(cfg *Config) (*Client, error) {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Initialize storage
	store, err := initStore(cfg.Store)
	if err != nil {
		return nil, NewReviewError("NewClient", err)
	}

	// Initialize snowflake ID generator
	nodeID := cfg.Scheduler.NodeID
	if nodeID == 0 {
		nodeID = 1
	}
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, NewReviewError("NewClient", err)
	}

	return &Client{
		config: cfg,
		store:  store,
		node:   node,
	}, nil
}

// Enroll puts a piece of content under active recall for an owner.
//
// The item starts in its initial state: status new, ease factor 2.5,
// interval 1 day, and immediately due (next review at enrollment time).
//
// Enrollment is atomic with respect to the uniqueness invariant: of two
// concurrent enrollments for the same (owner, contentRef), exactly one
// succeeds and the other fails with ErrAlreadyEnrolled.
//
// Parameters:
//   - ctx: Context for cancellation
//   - ownerID: Identifier of the owning user
//   - contentRef: Opaque identifier of the content to remember
//
// Returns the created MemoryItem, or ErrAlreadyEnrolled if the pair is
// already enrolled.
func (c *Client) Enroll(ctx context.Context, ownerID, contentRef string) (*MemoryItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ownerID == "" || contentRef == "" {
		return nil, NewReviewError("Enroll", ErrInvalidInput)
	}

	item := newMemoryItem(c.node.Generate().Int64(), ownerID, contentRef, time.Now().UTC())

	if err := c.store.Insert(ctx, toStorageItem(item)); err != nil {
		if errors.Is(err, storage.ErrDuplicateItem) {
			return nil, NewReviewError("Enroll", ErrAlreadyEnrolled)
		}
		return nil, NewReviewError("Enroll", err)
	}

	return item, nil
}

// GetDueSet returns the owner's items that are due for review, ordered
// oldest-due first and truncated to limit.
//
// A limit of 0 applies the configured default (DefaultDueLimit unless
// overridden); a negative limit fails with ErrInvalidLimit. The call is
// side-effect-free.
func (c *Client) GetDueSet(ctx context.Context, ownerID string, limit int) ([]*MemoryItem, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if limit < 0 {
		return nil, NewReviewError("GetDueSet", ErrInvalidLimit)
	}
	if limit == 0 {
		limit = c.dueLimit()
	}

	items, err := c.store.ListDue(ctx, ownerID, time.Now().UTC(), limit)
	if err != nil {
		return nil, NewReviewError("GetDueSet", err)
	}

	return fromStorageItems(items), nil
}

// CountDue returns the total number of the owner's items currently due,
// regardless of any due-set limit.
func (c *Client) CountDue(ctx context.Context, ownerID string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count, err := c.store.CountDue(ctx, ownerID, time.Now().UTC())
	if err != nil {
		return 0, NewReviewError("CountDue", err)
	}

	return count, nil
}

// SubmitReview records the outcome of reviewing an item and reschedules it.
//
// The quality score is validated before any state is touched; out-of-range
// scores fail with ErrInvalidQuality and leave the item unchanged. On
// success the SM-2 update, the status reclassification, the counters, and
// the timestamps are all applied in a single atomic store update, so a
// concurrent submission for the same item observes either the old state or
// the new one, never a mix.
//
// Parameters:
//   - ctx: Context for cancellation
//   - ownerID: Identifier of the owning user
//   - itemID: ID of the item that was reviewed
//   - quality: Quality score (0-5); 3 and above counts as correct
//
// Returns the updated MemoryItem, ErrInvalidQuality for an out-of-range
// score, or ErrNotFound if no such item exists for that owner.
func (c *Client) SubmitReview(ctx context.Context, ownerID string, itemID int64, quality int) (*MemoryItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !sm2.ValidQuality(quality) {
		return nil, NewReviewError("SubmitReview", ErrInvalidQuality)
	}

	updated, err := c.store.Update(ctx, ownerID, itemID, func(it *storage.Item) error {
		now := time.Now().UTC()
		result := sm2.Update(quality, it.EaseFactor, it.IntervalDays, it.Repetitions)

		it.EaseFactor = result.EaseFactor
		it.IntervalDays = result.Interval
		it.Repetitions = result.Repetitions
		it.Status = string(sm2.Classify(quality, result.Repetitions))
		it.LastReviewedAt = &now
		it.NextReviewAt = now.AddDate(0, 0, result.Interval)
		it.TotalReviews++
		if sm2.IsPass(quality) {
			it.CorrectReviews++
		}
		it.UpdatedAt = now
		return nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, NewReviewError("SubmitReview", ErrNotFound)
		}
		return nil, NewReviewError("SubmitReview", err)
	}

	return fromStorageItem(updated), nil
}

// Remove takes a piece of content out of the review queue.
//
// Removal is idempotent: removing content that is not enrolled is not an
// error. The referenced content itself is untouched.
func (c *Client) Remove(ctx context.Context, ownerID, contentRef string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteByContentRef(ctx, ownerID, contentRef); err != nil {
		return NewReviewError("Remove", err)
	}

	return nil
}

// Close closes the client and releases the underlying store.
//
// Example:
//
//	defer client.Close()
func (c *Client) Close() error {
	if c.store != nil {
		return c.store.Close()
	}
	return nil
}

// dueLimit returns the configured default due-set size.
func (c *Client) dueLimit() int {
	if c.config.Scheduler.DueLimit > 0 {
		return c.config.Scheduler.DueLimit
	}
	return DefaultDueLimit
}

// initStore initializes the storage backend.
func initStore(cfg StoreConfig) (storage.ItemStore, error) {
	switch cfg.Provider {
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:    stringSetting(cfg.Config, "db_path"),
			TableName: stringSetting(cfg.Config, "table_name"),
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:      stringSetting(cfg.Config, "host"),
			Port:      intSetting(cfg.Config, "port"),
			User:      stringSetting(cfg.Config, "user"),
			Password:  stringSetting(cfg.Config, "password"),
			DBName:    stringSetting(cfg.Config, "db_name"),
			TableName: stringSetting(cfg.Config, "table_name"),
			SSLMode:   stringSetting(cfg.Config, "ssl_mode"),
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:      stringSetting(cfg.Config, "host"),
			Port:      intSetting(cfg.Config, "port"),
			User:      stringSetting(cfg.Config, "user"),
			Password:  stringSetting(cfg.Config, "password"),
			DBName:    stringSetting(cfg.Config, "db_name"),
			TableName: stringSetting(cfg.Config, "table_name"),
		})
	default:
		return nil, ErrInvalidConfig
	}
}
