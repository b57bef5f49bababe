// Package core provides the review scheduler client and its public types.
package core

import (
	"time"

	"github.com/linkmind/recall-go/pkg/sm2"
)

// MemoryItem is the scheduling record for one piece of content under
// active recall for one owner.
//
// The scheduler never inspects the content itself; ContentRef is an opaque
// identifier supplied by the surrounding application. At most one MemoryItem
// exists per (owner, contentRef) pair.
//
// Example:
//
//	item := &core.MemoryItem{
//	    ID:         1234567890,
//	    OwnerID:    "user_001",
//	    ContentRef: "content_42",
//	    EaseFactor: 2.5,
//	}
type MemoryItem struct {
	// ID is the unique identifier of the item, assigned at creation.
	ID int64 `json:"id"`

	// OwnerID identifies the user who owns this schedule. Immutable.
	OwnerID string `json:"owner_id"`

	// ContentRef identifies the external content being remembered.
	// Immutable and unique per owner.
	ContentRef string `json:"content_ref"`

	// EaseFactor governs interval growth. Never below 1.3; defaults to 2.5.
	EaseFactor float64 `json:"ease_factor"`

	// IntervalDays is the number of days until the next review (>= 1).
	IntervalDays int `json:"interval_days"`

	// Repetitions counts consecutive successful reviews. Resets to 0 on
	// a failed review.
	Repetitions int `json:"repetitions"`

	// NextReviewAt is when the item next becomes due. An item is due
	// when the current time is at or past this value.
	NextReviewAt time.Time `json:"next_review_at"`

	// LastReviewedAt is when the item was last reviewed (nil if never).
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`

	// TotalReviews counts all submitted reviews. Never decreases.
	TotalReviews int `json:"total_reviews"`

	// CorrectReviews counts reviews graded as a pass (quality >= 3).
	// Never decreases and never exceeds TotalReviews.
	CorrectReviews int `json:"correct_reviews"`

	// Status is the derived learning status. It is always a function of
	// the latest review outcome and is never set directly by a caller.
	Status sm2.Status `json:"status"`

	// CreatedAt is when the item was enrolled.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the item was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// Due reports whether the item is due for review at the given time.
func (m *MemoryItem) Due(now time.Time) bool {
	return !m.NextReviewAt.After(now)
}

// newMemoryItem builds a MemoryItem in its initial state.
//
// All enrolled items pass through here, so the defaults (ease factor 2.5,
// interval 1 day, status new, immediately due) hold structurally rather
// than by call-site discipline.
func newMemoryItem(id int64, ownerID, contentRef string, now time.Time) *MemoryItem {
	return &MemoryItem{
		ID:           id,
		OwnerID:      ownerID,
		ContentRef:   contentRef,
		EaseFactor:   sm2.DefaultEaseFactor,
		IntervalDays: sm2.DefaultInterval,
		Repetitions:  0,
		NextReviewAt: now,
		Status:       sm2.StatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// StatsSnapshot summarizes an owner's review state at a point in time.
//
// It is computed by scanning the owner's items; against an actively
// mutating store the aggregate counts are eventually consistent, but each
// individual item is read atomically.
type StatsSnapshot struct {
	// ByStatus maps each status label to the count of items currently in
	// that status. Statuses with no items are omitted.
	ByStatus map[sm2.Status]int `json:"by_status"`

	// DueToday is the count of items currently due.
	DueToday int `json:"due_today"`

	// TotalReviews is the sum of TotalReviews across all items.
	TotalReviews int `json:"total_reviews"`

	// CorrectReviews is the sum of CorrectReviews across all items.
	CorrectReviews int `json:"correct_reviews"`

	// Accuracy is round(100 * CorrectReviews / TotalReviews), or 0 when
	// no reviews have been submitted.
	Accuracy int `json:"accuracy"`
}
