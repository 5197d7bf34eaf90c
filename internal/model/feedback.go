package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// MinRatingValue is the lowest rating a participant can assign.
	MinRatingValue = 1
	// MaxRatingValue is the highest rating a participant can assign.
	MaxRatingValue = 5
)

var (
	ErrInvalidFeedback = errors.New("invalid_feedback")
	ErrInvalidRating   = errors.New("invalid_rating")
)

// WorkshopFeedback captures one participant submission.
type WorkshopFeedback struct {
	ID             string    `gorm:"primaryKey;size:36"`
	Name           string    `gorm:"not null;size:200"`
	Department     string    `gorm:"not null;size:200"`
	Feedback       string    `gorm:"not null;size:4000"`
	Rating         *int      `gorm:"type:integer"`
	RatingSpeakerA *int      `gorm:"type:integer"`
	RatingSpeakerB *int      `gorm:"type:integer"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index"`
}

// NewWorkshopFeedback validates a draft and assigns an identifier.
func NewWorkshopFeedback(name string, department string, feedback string, rating *int, ratingSpeakerA *int, ratingSpeakerB *int) (WorkshopFeedback, error) {
	trimmedName := strings.TrimSpace(name)
	trimmedDepartment := strings.TrimSpace(department)
	trimmedFeedback := strings.TrimSpace(feedback)

	if trimmedName == "" {
		return WorkshopFeedback{}, fmt.Errorf("%w: missing name", ErrInvalidFeedback)
	}
	if trimmedDepartment == "" {
		return WorkshopFeedback{}, fmt.Errorf("%w: missing department", ErrInvalidFeedback)
	}
	if trimmedFeedback == "" {
		return WorkshopFeedback{}, fmt.Errorf("%w: missing feedback", ErrInvalidFeedback)
	}

	for _, ratingValue := range []*int{rating, ratingSpeakerA, ratingSpeakerB} {
		if validationErr := ValidateRating(ratingValue); validationErr != nil {
			return WorkshopFeedback{}, validationErr
		}
	}

	return WorkshopFeedback{
		ID:             uuid.NewString(),
		Name:           trimmedName,
		Department:     trimmedDepartment,
		Feedback:       trimmedFeedback,
		Rating:         rating,
		RatingSpeakerA: ratingSpeakerA,
		RatingSpeakerB: ratingSpeakerB,
	}, nil
}

// ValidateRating accepts an absent rating or an integer within the inclusive rating range.
func ValidateRating(rating *int) error {
	if rating == nil {
		return nil
	}
	if *rating < MinRatingValue || *rating > MaxRatingValue {
		return fmt.Errorf("%w: rating %d out of range", ErrInvalidRating, *rating)
	}
	return nil
}

// RatingOrZero treats an absent rating as zero for ordering purposes.
func (feedback WorkshopFeedback) RatingOrZero() int {
	if feedback.Rating == nil {
		return 0
	}
	return *feedback.Rating
}

// FeedbackStatistics summarizes a feedback list. Unrated records are excluded
// from both the numerator and the denominator of the average.
type FeedbackStatistics struct {
	TotalCount    int
	RatedCount    int
	AverageRating float64
}

// ComputeFeedbackStatistics derives display statistics from the given records.
func ComputeFeedbackStatistics(records []WorkshopFeedback) FeedbackStatistics {
	statistics := FeedbackStatistics{TotalCount: len(records)}

	ratingSum := 0
	for _, record := range records {
		if record.Rating == nil {
			continue
		}
		statistics.RatedCount++
		ratingSum += *record.Rating
	}

	if statistics.RatedCount > 0 {
		statistics.AverageRating = float64(ratingSum) / float64(statistics.RatedCount)
	}

	return statistics
}

// SortFeedbackByRating orders records by rating descending, treating absent
// ratings as zero. The sort is stable so equal ratings keep their prior
// relative order and sorting an already sorted list is a no-op.
func SortFeedbackByRating(records []WorkshopFeedback) []WorkshopFeedback {
	sorted := make([]WorkshopFeedback, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(left int, right int) bool {
		return sorted[left].RatingOrZero() > sorted[right].RatingOrZero()
	})
	return sorted
}
