// Package sm2 implements the SuperMemo-2 spaced-repetition algorithm.
//
// SM-2 schedules reviews of a learned item from three pieces of state:
//   - Ease factor: multiplier controlling how quickly intervals grow
//   - Interval: days until the next review
//   - Repetitions: count of consecutive successful reviews
//
// A review is graded with a quality score from 0 to 5, where 3 and above
// counts as a pass. The algorithm is deterministic: the same inputs always
// produce the same output, which makes it straightforward to unit test
// independently of any persistence layer.
package sm2

import "math"

// Algorithm constants. The ease-factor coefficients are fixed properties
// of SM-2, not tunables.
const (
	// MinEaseFactor is the floor for the ease factor. SM-2 never allows
	// the ease factor to drop below 1.3, no matter how many failed
	// reviews accumulate.
	MinEaseFactor = 1.3

	// DefaultEaseFactor is the ease factor assigned to newly enrolled items.
	DefaultEaseFactor = 2.5

	// DefaultInterval is the interval in days assigned to newly enrolled items.
	DefaultInterval = 1

	// PassThreshold is the minimum quality score that counts as a
	// successful recall. Scores 0-2 are failures, 3-5 are passes.
	PassThreshold = 3

	// MinQuality and MaxQuality bound the valid quality score range.
	MinQuality = 0
	MaxQuality = 5
)

// Result contains the scheduling parameters produced by one application
// of the SM-2 update rule.
type Result struct {
	// EaseFactor is the updated ease factor, clamped to MinEaseFactor.
	EaseFactor float64

	// Interval is the updated interval in days until the next review.
	// Always >= 1.
	Interval int

	// Repetitions is the updated count of consecutive successful reviews.
	// Resets to 0 on a failed review.
	Repetitions int
}

// Update applies the SM-2 update rule to the current scheduling state.
//
// On a pass (quality >= PassThreshold):
//   - repetitions increments
//   - the interval is 1 day after the first success, 6 days after the
//     second, and round(interval * easeFactor) afterwards
//
// On a fail (quality < PassThreshold):
//   - repetitions resets to 0
//   - the interval resets to 1 day
//
// The ease factor is recalculated in both cases:
//
//	newEF = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// and clamped to MinEaseFactor. A quality of 5 raises the ease factor by
// 0.1; a quality of 0 lowers it by 0.8. There is no upper bound.
//
// The interval product is rounded half away from zero (math.Round), so
// an exact .5 always rounds up. The ease factor used for the interval
// product is the input ease factor, not the recalculated one.
//
// Parameters:
//   - quality: Quality score (0-5). Callers must validate the range.
//   - easeFactor: Current ease factor
//   - interval: Current interval in days
//   - repetitions: Current consecutive-success count
//
// Returns the updated scheduling parameters.
func Update(quality int, easeFactor float64, interval, repetitions int) Result {
	r := Result{}

	if quality >= PassThreshold {
		switch repetitions {
		case 0:
			r.Interval = 1
		case 1:
			r.Interval = 6
		default:
			r.Interval = int(math.Round(float64(interval) * easeFactor))
		}
		r.Repetitions = repetitions + 1
	} else {
		r.Interval = 1
		r.Repetitions = 0
	}

	if r.Interval < DefaultInterval {
		r.Interval = DefaultInterval
	}

	q := float64(quality)
	r.EaseFactor = easeFactor + (0.1 - (5.0-q)*(0.08+(5.0-q)*0.02))
	if r.EaseFactor < MinEaseFactor {
		r.EaseFactor = MinEaseFactor
	}

	return r
}

// IsPass reports whether a quality score counts as a successful recall.
func IsPass(quality int) bool {
	return quality >= PassThreshold
}

// ValidQuality reports whether a quality score is within the 0-5 range.
func ValidQuality(quality int) bool {
	return quality >= MinQuality && quality <= MaxQuality
}
