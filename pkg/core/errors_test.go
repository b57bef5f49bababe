package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	recall "github.com/linkmind/recall-go/pkg/core"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "ErrNotFound",
			err:      recall.ErrNotFound,
			expected: "memory item not found",
		},
		{
			name:     "ErrAlreadyEnrolled",
			err:      recall.ErrAlreadyEnrolled,
			expected: "content already enrolled",
		},
		{
			name:     "ErrInvalidQuality",
			err:      recall.ErrInvalidQuality,
			expected: "quality must be between 0 and 5",
		},
		{
			name:     "ErrInvalidLimit",
			err:      recall.ErrInvalidLimit,
			expected: "limit must be positive",
		},
		{
			name:     "ErrInvalidConfig",
			err:      recall.ErrInvalidConfig,
			expected: "invalid configuration",
		},
		{
			name:     "ErrConnectionFailed",
			err:      recall.ErrConnectionFailed,
			expected: "connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestReviewError(t *testing.T) {
	originalErr := errors.New("original error")
	revErr := recall.NewReviewError("test_operation", originalErr)

	assert.Error(t, revErr)
	assert.Contains(t, revErr.Error(), "test_operation")
	assert.Contains(t, revErr.Error(), "original error")

	// Verify ReviewError structure
	var target *recall.ReviewError
	if errors.As(revErr, &target) {
		assert.Equal(t, "test_operation", target.Op)
		assert.Equal(t, originalErr, target.Err)
	}
}

func TestReviewErrorUnwrap(t *testing.T) {
	originalErr := errors.New("original error")
	revErr := recall.NewReviewError("test_operation", originalErr)

	unwrapped := errors.Unwrap(revErr)
	assert.Equal(t, originalErr, unwrapped)
}

func TestNewReviewErrorNil(t *testing.T) {
	assert.Nil(t, recall.NewReviewError("test_operation", nil))
}

func TestReviewErrorMatchesSentinel(t *testing.T) {
	revErr := recall.NewReviewError("Enroll", recall.ErrAlreadyEnrolled)
	assert.True(t, errors.Is(revErr, recall.ErrAlreadyEnrolled))
	assert.False(t, errors.Is(revErr, recall.ErrNotFound))
}
