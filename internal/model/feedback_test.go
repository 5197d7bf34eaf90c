package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/model"
)

func intPointer(value int) *int {
	return &value
}

func TestNewWorkshopFeedbackAcceptsCompleteDraft(testingT *testing.T) {
	record, creationErr := model.NewWorkshopFeedback("Ana", "Eng", "Great, thanks!", intPointer(5), intPointer(4), nil)
	require.NoError(testingT, creationErr)
	require.NotEmpty(testingT, record.ID)
	require.Equal(testingT, "Ana", record.Name)
	require.Equal(testingT, "Eng", record.Department)
	require.Equal(testingT, "Great, thanks!", record.Feedback)
	require.Equal(testingT, 5, *record.Rating)
	require.Equal(testingT, 4, *record.RatingSpeakerA)
	require.Nil(testingT, record.RatingSpeakerB)
}

func TestNewWorkshopFeedbackAcceptsAbsentRatings(testingT *testing.T) {
	record, creationErr := model.NewWorkshopFeedback("Ana", "Eng", "Great session", nil, nil, nil)
	require.NoError(testingT, creationErr)
	require.Nil(testingT, record.Rating)
}

func TestNewWorkshopFeedbackRejectsMissingRequiredFields(testingT *testing.T) {
	testCases := []struct {
		name       string
		department string
		feedback   string
	}{
		{"", "Eng", "Great"},
		{"Ana", "", "Great"},
		{"Ana", "Eng", ""},
		{"   ", "Eng", "Great"},
	}

	for _, testCase := range testCases {
		_, creationErr := model.NewWorkshopFeedback(testCase.name, testCase.department, testCase.feedback, nil, nil, nil)
		require.ErrorIs(testingT, creationErr, model.ErrInvalidFeedback)
	}
}

func TestNewWorkshopFeedbackRejectsOutOfRangeRatings(testingT *testing.T) {
	for _, ratingValue := range []int{0, 6, -1, 100} {
		_, creationErr := model.NewWorkshopFeedback("Ana", "Eng", "Great", intPointer(ratingValue), nil, nil)
		require.ErrorIs(testingT, creationErr, model.ErrInvalidRating)
	}
}

func TestNewWorkshopFeedbackTrimsWhitespace(testingT *testing.T) {
	record, creationErr := model.NewWorkshopFeedback("  Ana  ", " Eng ", " Great ", nil, nil, nil)
	require.NoError(testingT, creationErr)
	require.Equal(testingT, "Ana", record.Name)
	require.Equal(testingT, "Eng", record.Department)
	require.Equal(testingT, "Great", record.Feedback)
}

func TestComputeFeedbackStatisticsOmitsUnratedRecords(testingT *testing.T) {
	records := []model.WorkshopFeedback{
		{Rating: intPointer(5)},
		{},
		{Rating: intPointer(3)},
		{},
	}

	statistics := model.ComputeFeedbackStatistics(records)
	require.Equal(testingT, 4, statistics.TotalCount)
	require.Equal(testingT, 2, statistics.RatedCount)
	require.InDelta(testingT, 4.0, statistics.AverageRating, 0.0001)
}

func TestComputeFeedbackStatisticsWithNoRatedRecords(testingT *testing.T) {
	statistics := model.ComputeFeedbackStatistics([]model.WorkshopFeedback{{}, {}})
	require.Equal(testingT, 2, statistics.TotalCount)
	require.Equal(testingT, 0, statistics.RatedCount)
	require.Zero(testingT, statistics.AverageRating)
}

func TestSortFeedbackByRatingIsStablePermutation(testingT *testing.T) {
	records := []model.WorkshopFeedback{
		{ID: "a", Rating: intPointer(3)},
		{ID: "b"},
		{ID: "c", Rating: intPointer(5)},
		{ID: "d", Rating: intPointer(3)},
		{ID: "e", Rating: intPointer(1)},
	}

	sorted := model.SortFeedbackByRating(records)

	require.Len(testingT, sorted, len(records))
	require.Equal(testingT, "c", sorted[0].ID)
	require.Equal(testingT, "a", sorted[1].ID)
	require.Equal(testingT, "d", sorted[2].ID)
	require.Equal(testingT, "e", sorted[3].ID)
	require.Equal(testingT, "b", sorted[4].ID)

	// The input order is untouched.
	require.Equal(testingT, "a", records[0].ID)
}

func TestSortFeedbackByRatingIsIdempotent(testingT *testing.T) {
	records := []model.WorkshopFeedback{
		{ID: "a", Rating: intPointer(2)},
		{ID: "b", Rating: intPointer(4)},
		{ID: "c"},
	}

	sortedOnce := model.SortFeedbackByRating(records)
	sortedTwice := model.SortFeedbackByRating(sortedOnce)
	require.Equal(testingT, sortedOnce, sortedTwice)
}

func TestRatingOrZeroTreatsAbsentAsZero(testingT *testing.T) {
	require.Equal(testingT, 0, model.WorkshopFeedback{}.RatingOrZero())
	require.Equal(testingT, 4, model.WorkshopFeedback{Rating: intPointer(4)}.RatingOrZero())
}
