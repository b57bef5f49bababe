package core_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	recall "github.com/linkmind/recall-go/pkg/core"
	"github.com/linkmind/recall-go/pkg/sm2"
)

// newTestClient creates a scheduler client backed by a throwaway SQLite
// database.
func newTestClient(t *testing.T) *recall.Client {
	t.Helper()

	config := &recall.Config{
		Store: recall.StoreConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path":    filepath.Join(t.TempDir(), "recall_test.db"),
				"table_name": "review_items",
			},
		},
	}

	client, err := recall.NewClient(config)
	require.NoError(t, err)
	require.NotNil(t, client)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestNewClientInvalidConfig(t *testing.T) {
	_, err := recall.NewClient(&recall.Config{
		Store: recall.StoreConfig{Provider: "redis"},
	})
	assert.ErrorIs(t, err, recall.ErrInvalidConfig)
}

func TestEnroll(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	item, err := client.Enroll(ctx, "user_001", "content_42")
	require.NoError(t, err)

	assert.NotZero(t, item.ID)
	assert.Equal(t, "user_001", item.OwnerID)
	assert.Equal(t, "content_42", item.ContentRef)
	assert.Equal(t, sm2.DefaultEaseFactor, item.EaseFactor)
	assert.Equal(t, 1, item.IntervalDays)
	assert.Equal(t, 0, item.Repetitions)
	assert.Equal(t, sm2.StatusNew, item.Status)
	assert.Nil(t, item.LastReviewedAt)
	assert.Equal(t, 0, item.TotalReviews)

	// A freshly enrolled item is immediately due.
	due, err := client.GetDueSet(ctx, "user_001", 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, item.ID, due[0].ID)
}

func TestEnrollDuplicate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.Enroll(ctx, "user_001", "content_42")
	require.NoError(t, err)

	_, err = client.Enroll(ctx, "user_001", "content_42")
	assert.ErrorIs(t, err, recall.ErrAlreadyEnrolled)

	// The same content for a different owner is independent.
	_, err = client.Enroll(ctx, "user_002", "content_42")
	assert.NoError(t, err)
}

func TestEnrollInvalidInput(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.Enroll(ctx, "", "content_42")
	assert.ErrorIs(t, err, recall.ErrInvalidInput)

	_, err = client.Enroll(ctx, "user_001", "")
	assert.ErrorIs(t, err, recall.ErrInvalidInput)
}

func TestEnrollConcurrent(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	const attempts = 8

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = client.Enroll(ctx, "user_001", "content_42")
		}(i)
	}
	wg.Wait()

	// Exactly one enrollment wins; every other attempt observes the
	// duplicate.
	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, recall.ErrAlreadyEnrolled)
		}
	}
	assert.Equal(t, 1, successes)
}

func TestGetDueSetLimits(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		_, err := client.Enroll(ctx, "user_001", fmt.Sprintf("content_%02d", i))
		require.NoError(t, err)
	}

	// Limit 0 applies the default.
	due, err := client.GetDueSet(ctx, "user_001", 0)
	require.NoError(t, err)
	assert.Len(t, due, recall.DefaultDueLimit)

	// An explicit limit truncates.
	due, err = client.GetDueSet(ctx, "user_001", 3)
	require.NoError(t, err)
	assert.Len(t, due, 3)

	// A limit above the due count returns everything.
	due, err = client.GetDueSet(ctx, "user_001", 100)
	require.NoError(t, err)
	assert.Len(t, due, 15)

	// Negative limits are rejected.
	_, err = client.GetDueSet(ctx, "user_001", -1)
	assert.ErrorIs(t, err, recall.ErrInvalidLimit)
}

func TestGetDueSetConfiguredDefault(t *testing.T) {
	config := &recall.Config{
		Store: recall.StoreConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path":    filepath.Join(t.TempDir(), "recall_test.db"),
				"table_name": "review_items",
			},
		},
		Scheduler: recall.SchedulerConfig{DueLimit: 2},
	}

	client, err := recall.NewClient(config)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := client.Enroll(ctx, "user_001", fmt.Sprintf("content_%d", i))
		require.NoError(t, err)
	}

	due, err := client.GetDueSet(ctx, "user_001", 0)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestGetDueSetOwnerIsolation(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.Enroll(ctx, "user_001", "content_a")
	require.NoError(t, err)
	_, err = client.Enroll(ctx, "user_002", "content_b")
	require.NoError(t, err)

	due, err := client.GetDueSet(ctx, "user_001", 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "content_a", due[0].ContentRef)

	due, err = client.GetDueSet(ctx, "user_003", 0)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestCountDue(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	count, err := client.CountDue(ctx, "user_001")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for i := 0; i < 15; i++ {
		_, err := client.Enroll(ctx, "user_001", fmt.Sprintf("content_%02d", i))
		require.NoError(t, err)
	}

	// CountDue reports the full backlog, not just one due-set page.
	count, err = client.CountDue(ctx, "user_001")
	require.NoError(t, err)
	assert.Equal(t, 15, count)
}

func TestSubmitReviewSuccess(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	item, err := client.Enroll(ctx, "user_001", "content_42")
	require.NoError(t, err)

	updated, err := client.SubmitReview(ctx, "user_001", item.ID, 4)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.Repetitions)
	assert.Equal(t, 1, updated.IntervalDays)
	assert.Equal(t, sm2.DefaultEaseFactor, updated.EaseFactor)
	assert.Equal(t, sm2.StatusReviewing, updated.Status)
	assert.Equal(t, 1, updated.TotalReviews)
	assert.Equal(t, 1, updated.CorrectReviews)
	require.NotNil(t, updated.LastReviewedAt)
	assert.True(t, updated.NextReviewAt.After(*updated.LastReviewedAt))

	// The item is scheduled in the future, so it drops out of the due set.
	due, err := client.GetDueSet(ctx, "user_001", 0)
	require.NoError(t, err)
	assert.Empty(t, due)

	stats, err := client.GetStats(ctx, "user_001")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalReviews)
	assert.Equal(t, 1, stats.CorrectReviews)
	assert.Equal(t, 100, stats.Accuracy)
	assert.Equal(t, 0, stats.DueToday)
	assert.Equal(t, map[sm2.Status]int{sm2.StatusReviewing: 1}, stats.ByStatus)
}

func TestSubmitReviewInvalidQuality(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	item, err := client.Enroll(ctx, "user_001", "content_42")
	require.NoError(t, err)

	for _, quality := range []int{-1, 6, 10} {
		_, err := client.SubmitReview(ctx, "user_001", item.ID, quality)
		assert.ErrorIs(t, err, recall.ErrInvalidQuality, "quality %d", quality)
	}

	// A rejected submission leaves the item untouched.
	stats, err := client.GetStats(ctx, "user_001")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalReviews)
}

func TestSubmitReviewNotFound(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.SubmitReview(ctx, "user_001", 12345, 4)
	assert.ErrorIs(t, err, recall.ErrNotFound)

	// Another owner's item is out of reach.
	item, err := client.Enroll(ctx, "user_001", "content_42")
	require.NoError(t, err)

	_, err = client.SubmitReview(ctx, "user_002", item.ID, 4)
	assert.ErrorIs(t, err, recall.ErrNotFound)
}

func TestSubmitReviewMasteryProgression(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	item, err := client.Enroll(ctx, "user_001", "content_42")
	require.NoError(t, err)

	// First perfect recall: streak starts, 1-day interval.
	updated, err := client.SubmitReview(ctx, "user_001", item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Repetitions)
	assert.Equal(t, 1, updated.IntervalDays)
	assert.InDelta(t, 2.6, updated.EaseFactor, 1e-9)
	assert.Equal(t, sm2.StatusReviewing, updated.Status)

	// Second perfect recall: fixed 6-day interval.
	updated, err = client.SubmitReview(ctx, "user_001", item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Repetitions)
	assert.Equal(t, 6, updated.IntervalDays)
	assert.InDelta(t, 2.7, updated.EaseFactor, 1e-9)
	assert.Equal(t, sm2.StatusReviewing, updated.Status)

	// Third perfect recall crosses the mastery threshold and the interval
	// grows multiplicatively: round(6 * 2.7) = 16.
	updated, err = client.SubmitReview(ctx, "user_001", item.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Repetitions)
	assert.Equal(t, 16, updated.IntervalDays)
	assert.InDelta(t, 2.8, updated.EaseFactor, 1e-9)
	assert.Equal(t, sm2.StatusMastered, updated.Status)

	stats, err := client.GetStats(ctx, "user_001")
	require.NoError(t, err)
	assert.Equal(t, map[sm2.Status]int{sm2.StatusMastered: 1}, stats.ByStatus)
	assert.Equal(t, 3, stats.TotalReviews)
	assert.Equal(t, 100, stats.Accuracy)
}

func TestSubmitReviewFailureResets(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	item, err := client.Enroll(ctx, "user_001", "content_42")
	require.NoError(t, err)

	_, err = client.SubmitReview(ctx, "user_001", item.ID, 5)
	require.NoError(t, err)

	updated, err := client.SubmitReview(ctx, "user_001", item.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, updated.Repetitions)
	assert.Equal(t, 1, updated.IntervalDays)
	assert.Equal(t, sm2.StatusLearning, updated.Status)
	assert.Equal(t, 2, updated.TotalReviews)
	assert.Equal(t, 1, updated.CorrectReviews)

	stats, err := client.GetStats(ctx, "user_001")
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Accuracy)
}

func TestRemove(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	item, err := client.Enroll(ctx, "user_001", "content_42")
	require.NoError(t, err)

	require.NoError(t, client.Remove(ctx, "user_001", "content_42"))

	_, err = client.SubmitReview(ctx, "user_001", item.ID, 4)
	assert.ErrorIs(t, err, recall.ErrNotFound)

	// Removal is idempotent.
	assert.NoError(t, client.Remove(ctx, "user_001", "content_42"))

	// Removed content can be re-enrolled from scratch.
	fresh, err := client.Enroll(ctx, "user_001", "content_42")
	require.NoError(t, err)
	assert.NotEqual(t, item.ID, fresh.ID)
	assert.Equal(t, sm2.StatusNew, fresh.Status)
}

func TestGetStatsEmpty(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	stats, err := client.GetStats(ctx, "user_001")
	require.NoError(t, err)

	assert.Empty(t, stats.ByStatus)
	assert.Equal(t, 0, stats.DueToday)
	assert.Equal(t, 0, stats.TotalReviews)
	assert.Equal(t, 0, stats.Accuracy)
}

func TestGetStatsMixedStatuses(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	// One item left untouched, one passed, one failed.
	_, err := client.Enroll(ctx, "user_001", "untouched")
	require.NoError(t, err)

	passed, err := client.Enroll(ctx, "user_001", "passed")
	require.NoError(t, err)
	_, err = client.SubmitReview(ctx, "user_001", passed.ID, 4)
	require.NoError(t, err)

	failed, err := client.Enroll(ctx, "user_001", "failed")
	require.NoError(t, err)
	_, err = client.SubmitReview(ctx, "user_001", failed.ID, 0)
	require.NoError(t, err)

	stats, err := client.GetStats(ctx, "user_001")
	require.NoError(t, err)

	assert.Equal(t, map[sm2.Status]int{
		sm2.StatusNew:       1,
		sm2.StatusReviewing: 1,
		sm2.StatusLearning:  1,
	}, stats.ByStatus)
	assert.Equal(t, 1, stats.DueToday)
	assert.Equal(t, 2, stats.TotalReviews)
	assert.Equal(t, 1, stats.CorrectReviews)
	assert.Equal(t, 50, stats.Accuracy)
}
