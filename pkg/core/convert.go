package core

import (
	"github.com/linkmind/recall-go/pkg/sm2"
	"github.com/linkmind/recall-go/pkg/storage"
)

// toStorageItem converts a core.MemoryItem to storage.Item.
//
// This function is used internally to convert between package types
// to avoid circular dependencies.
func toStorageItem(m *MemoryItem) *storage.Item {
	return &storage.Item{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		ContentRef:     m.ContentRef,
		EaseFactor:     m.EaseFactor,
		IntervalDays:   m.IntervalDays,
		Repetitions:    m.Repetitions,
		NextReviewAt:   m.NextReviewAt,
		LastReviewedAt: m.LastReviewedAt,
		TotalReviews:   m.TotalReviews,
		CorrectReviews: m.CorrectReviews,
		Status:         string(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// fromStorageItem converts a storage.Item to core.MemoryItem.
//
// This function is used internally to convert between package types
// to avoid circular dependencies.
func fromStorageItem(it *storage.Item) *MemoryItem {
	return &MemoryItem{
		ID:             it.ID,
		OwnerID:        it.OwnerID,
		ContentRef:     it.ContentRef,
		EaseFactor:     it.EaseFactor,
		IntervalDays:   it.IntervalDays,
		Repetitions:    it.Repetitions,
		NextReviewAt:   it.NextReviewAt,
		LastReviewedAt: it.LastReviewedAt,
		TotalReviews:   it.TotalReviews,
		CorrectReviews: it.CorrectReviews,
		Status:         sm2.Status(it.Status),
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}

// fromStorageItems converts a slice of storage.Item to a slice of core.MemoryItem.
//
// This function is used internally for batch conversion between package types.
func fromStorageItems(items []*storage.Item) []*MemoryItem {
	result := make([]*MemoryItem, len(items))
	for i, it := range items {
		result[i] = fromStorageItem(it)
	}
	return result
}
