package sm2

// Status is the coarse learning status of a scheduled item.
//
// Status is always derived from review outcomes, never set directly:
// StatusNew applies only to items that have not yet been reviewed, and
// every review overwrites the status with the result of Classify.
type Status string

const (
	// StatusNew marks an item that has been enrolled but never reviewed.
	StatusNew Status = "new"

	// StatusLearning marks an item whose last review was a failure.
	StatusLearning Status = "learning"

	// StatusReviewing marks an item whose last review was a pass but
	// that has not yet met the mastery criteria.
	StatusReviewing Status = "reviewing"

	// StatusMastered marks an item answered with quality >= 4 after at
	// least three consecutive successful reviews.
	StatusMastered Status = "mastered"
)

// Classify derives the learning status from a review outcome.
//
// The rules, checked in order:
//   - mastered: quality >= 4 and repetitions >= 3
//   - reviewing: quality >= PassThreshold
//   - learning: everything else
//
// repetitions is the post-update consecutive-success count (Result.Repetitions),
// not the pre-review value. Classify never returns StatusNew; that label is
// assigned at enrollment and replaced on the first review.
func Classify(quality, repetitions int) Status {
	switch {
	case quality >= 4 && repetitions >= 3:
		return StatusMastered
	case quality >= PassThreshold:
		return StatusReviewing
	default:
		return StatusLearning
	}
}

// Valid reports whether s is one of the defined status labels.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusReviewing, StatusMastered:
		return true
	}
	return false
}
