package sm2_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linkmind/recall-go/pkg/sm2"
)

func TestUpdateFirstSuccess(t *testing.T) {
	// Any passing quality on a fresh item yields a 1-day interval and
	// starts the success streak.
	for quality := 3; quality <= 5; quality++ {
		result := sm2.Update(quality, sm2.DefaultEaseFactor, 1, 0)
		assert.Equal(t, 1, result.Interval, "quality %d", quality)
		assert.Equal(t, 1, result.Repetitions, "quality %d", quality)
	}
}

func TestUpdateSecondSuccess(t *testing.T) {
	for quality := 3; quality <= 5; quality++ {
		result := sm2.Update(quality, sm2.DefaultEaseFactor, 1, 1)
		assert.Equal(t, 6, result.Interval, "quality %d", quality)
		assert.Equal(t, 2, result.Repetitions, "quality %d", quality)
	}
}

func TestUpdateLaterSuccess(t *testing.T) {
	// From the third success onward the interval is the product of the
	// previous interval and the pre-update ease factor, rounded half
	// away from zero.
	tests := []struct {
		name         string
		quality      int
		easeFactor   float64
		interval     int
		repetitions  int
		wantInterval int
	}{
		{name: "exact product", quality: 4, easeFactor: 2.5, interval: 6, repetitions: 2, wantInterval: 15},
		{name: "rounds down", quality: 4, easeFactor: 2.2, interval: 6, repetitions: 2, wantInterval: 13},
		{name: "rounds up", quality: 5, easeFactor: 2.3, interval: 6, repetitions: 3, wantInterval: 14},
		{name: "half rounds away from zero", quality: 3, easeFactor: 1.3, interval: 5, repetitions: 2, wantInterval: 7},
		{name: "long streak", quality: 5, easeFactor: 2.5, interval: 100, repetitions: 10, wantInterval: 250},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := sm2.Update(tt.quality, tt.easeFactor, tt.interval, tt.repetitions)
			assert.Equal(t, tt.wantInterval, result.Interval)
			assert.Equal(t, tt.repetitions+1, result.Repetitions)
		})
	}
}

func TestUpdateFailureResets(t *testing.T) {
	// A failing quality resets the streak and the interval regardless of
	// how far the item had progressed.
	for quality := 0; quality <= 2; quality++ {
		result := sm2.Update(quality, 2.8, 120, 7)
		assert.Equal(t, 0, result.Repetitions, "quality %d", quality)
		assert.Equal(t, 1, result.Interval, "quality %d", quality)
	}
}

func TestUpdateEaseFactorByQuality(t *testing.T) {
	// The ease-factor delta depends only on quality: +0.1 at 5, 0 at 4,
	// and increasingly negative below that.
	tests := []struct {
		quality   int
		wantDelta float64
	}{
		{quality: 5, wantDelta: 0.1},
		{quality: 4, wantDelta: 0.0},
		{quality: 3, wantDelta: -0.14},
		{quality: 2, wantDelta: -0.32},
		{quality: 1, wantDelta: -0.54},
		{quality: 0, wantDelta: -0.8},
	}

	for _, tt := range tests {
		result := sm2.Update(tt.quality, sm2.DefaultEaseFactor, 6, 2)
		assert.InDelta(t, sm2.DefaultEaseFactor+tt.wantDelta, result.EaseFactor, 1e-9,
			"quality %d", tt.quality)
	}
}

func TestUpdateEaseFactorFloor(t *testing.T) {
	// The ease factor never drops below 1.3, even across repeated
	// failures from the floor itself.
	result := sm2.Update(0, sm2.MinEaseFactor, 1, 0)
	assert.Equal(t, sm2.MinEaseFactor, result.EaseFactor)

	for quality := 0; quality <= 5; quality++ {
		result := sm2.Update(quality, 1.4, 10, 4)
		assert.GreaterOrEqual(t, result.EaseFactor, sm2.MinEaseFactor, "quality %d", quality)
	}
}

func TestUpdatePerfectRecallScenario(t *testing.T) {
	result := sm2.Update(5, 2.5, 1, 0)
	assert.InDelta(t, 2.6, result.EaseFactor, 1e-9)
	assert.Equal(t, 1, result.Interval)
	assert.Equal(t, 1, result.Repetitions)
}

func TestUpdateBlackoutScenario(t *testing.T) {
	result := sm2.Update(0, 2.5, 6, 1)
	assert.InDelta(t, 1.7, result.EaseFactor, 1e-9)
	assert.Equal(t, 1, result.Interval)
	assert.Equal(t, 0, result.Repetitions)
}

func TestUpdateDeterministic(t *testing.T) {
	first := sm2.Update(4, 2.1, 14, 3)
	second := sm2.Update(4, 2.1, 14, 3)
	assert.Equal(t, first, second)
}

func TestIsPass(t *testing.T) {
	assert.False(t, sm2.IsPass(0))
	assert.False(t, sm2.IsPass(2))
	assert.True(t, sm2.IsPass(3))
	assert.True(t, sm2.IsPass(5))
}

func TestValidQuality(t *testing.T) {
	assert.False(t, sm2.ValidQuality(-1))
	assert.True(t, sm2.ValidQuality(0))
	assert.True(t, sm2.ValidQuality(5))
	assert.False(t, sm2.ValidQuality(6))
}
