package core

import (
	"context"
	"math"
	"time"

	"github.com/linkmind/recall-go/pkg/sm2"
)

// GetStats computes a summary of the owner's review state.
//
// The snapshot is built by scanning all of the owner's items:
//   - ByStatus: count of items per learning status
//   - DueToday: items whose next review time has passed
//   - TotalReviews / CorrectReviews: counter sums across items
//   - Accuracy: rounded integer percentage, 0 when nothing was reviewed
//
// The scan is read-only. Concurrent writes may land between row reads, so
// the aggregate is eventually consistent, but every individual item is
// read in a committed state.
func (c *Client) GetStats(ctx context.Context, ownerID string) (*StatsSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	items, err := c.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, NewReviewError("GetStats", err)
	}

	now := time.Now().UTC()
	snapshot := &StatsSnapshot{
		ByStatus: make(map[sm2.Status]int),
	}

	for _, it := range items {
		snapshot.ByStatus[sm2.Status(it.Status)]++
		if !it.NextReviewAt.After(now) {
			snapshot.DueToday++
		}
		snapshot.TotalReviews += it.TotalReviews
		snapshot.CorrectReviews += it.CorrectReviews
	}

	if snapshot.TotalReviews > 0 {
		ratio := float64(snapshot.CorrectReviews) / float64(snapshot.TotalReviews)
		snapshot.Accuracy = int(math.Round(ratio * 100))
	}

	return snapshot, nil
}
