package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/model"
)

func TestCreateFeedbackStoresSubmittedFields(testingT *testing.T) {
	harness := newTestHarness(testingT)

	recorder, context := newJSONContext(testingT, http.MethodPost, "/api/feedback", gin.H{
		"name":             "Ana",
		"department":       "Eng",
		"feedback":         "Great, thanks!",
		"rating":           5,
		"rating_speaker_a": 4,
	})
	harness.publicHandlers.CreateFeedback(context)
	require.Equal(testingT, http.StatusOK, recorder.Code)

	var stored model.WorkshopFeedback
	require.NoError(testingT, harness.database.First(&stored).Error)
	require.Equal(testingT, "Ana", stored.Name)
	require.Equal(testingT, "Eng", stored.Department)
	require.Equal(testingT, "Great, thanks!", stored.Feedback)
	require.Equal(testingT, 5, *stored.Rating)
	require.Equal(testingT, 4, *stored.RatingSpeakerA)
	require.Nil(testingT, stored.RatingSpeakerB)
}

func TestCreateFeedbackWithMissingFieldsInsertsNothing(testingT *testing.T) {
	harness := newTestHarness(testingT)

	payloads := []gin.H{
		{"department": "Eng", "feedback": "Great"},
		{"name": "Ana", "feedback": "Great"},
		{"name": "Ana", "department": "Eng"},
		{"name": "  ", "department": "Eng", "feedback": "Great"},
	}

	for _, payload := range payloads {
		recorder, context := newJSONContext(testingT, http.MethodPost, "/api/feedback", payload)
		harness.publicHandlers.CreateFeedback(context)
		require.Equal(testingT, http.StatusBadRequest, recorder.Code)

		var responseBody struct {
			Error string `json:"error"`
		}
		decodeJSONBody(testingT, recorder, &responseBody)
		require.Equal(testingT, "missing_fields", responseBody.Error)
	}

	var recordCount int64
	require.NoError(testingT, harness.database.Model(&model.WorkshopFeedback{}).Count(&recordCount).Error)
	require.Zero(testingT, recordCount)
}

func TestCreateFeedbackRejectsOutOfRangeRating(testingT *testing.T) {
	harness := newTestHarness(testingT)

	for _, ratingValue := range []int{0, 6} {
		recorder, context := newJSONContext(testingT, http.MethodPost, "/api/feedback", gin.H{
			"name":       "Ana",
			"department": "Eng",
			"feedback":   "Great",
			"rating":     ratingValue,
		})
		harness.publicHandlers.CreateFeedback(context)
		require.Equal(testingT, http.StatusBadRequest, recorder.Code)

		var responseBody struct {
			Error string `json:"error"`
		}
		decodeJSONBody(testingT, recorder, &responseBody)
		require.Equal(testingT, "invalid_rating", responseBody.Error)
	}
}

func TestSocialLinksOmitsEmptyValues(testingT *testing.T) {
	harness := newTestHarness(testingT)
	require.NoError(testingT, harness.database.Create(&model.Setting{
		Key:   model.SettingKeyInstagramURL,
		Value: "https://instagram.com/workshop",
	}).Error)
	require.NoError(testingT, harness.database.Create(&model.Setting{
		Key:   model.SettingKeyLinkedInURL,
		Value: "",
	}).Error)

	recorder, context := newJSONContext(testingT, http.MethodGet, "/api/social-links", nil)
	harness.publicHandlers.SocialLinks(context)
	require.Equal(testingT, http.StatusOK, recorder.Code)

	var responseBody map[string]string
	decodeJSONBody(testingT, recorder, &responseBody)
	require.Equal(testingT, "https://instagram.com/workshop", responseBody[model.SettingKeyInstagramURL])
	require.NotContains(testingT, responseBody, model.SettingKeyLinkedInURL)
	require.NotContains(testingT, responseBody, model.SettingKeyWhatsappURL)
}

func TestSocialLinksWithEmptyConfigurationReturnsEmptySet(testingT *testing.T) {
	harness := newTestHarness(testingT)

	recorder, context := newJSONContext(testingT, http.MethodGet, "/api/social-links", nil)
	harness.publicHandlers.SocialLinks(context)
	require.Equal(testingT, http.StatusOK, recorder.Code)

	var responseBody map[string]string
	decodeJSONBody(testingT, recorder, &responseBody)
	require.Empty(testingT, responseBody)
}

func TestRevealAdminLoginCompletesOnExactGesture(testingT *testing.T) {
	harness := newTestHarness(testingT)

	recorder, context := newJSONContext(testingT, http.MethodPost, "/api/admin/reveal", gin.H{
		"keys": []string{"x", "x", "x", "x", "x"},
	})
	harness.publicHandlers.RevealAdminLogin(context)
	require.Equal(testingT, http.StatusOK, recorder.Code)

	var responseBody struct {
		Reveal bool `json:"reveal"`
	}
	decodeJSONBody(testingT, recorder, &responseBody)
	require.True(testingT, responseBody.Reveal)
}

func TestRevealAdminLoginRejectsShortOrBrokenGestures(testingT *testing.T) {
	harness := newTestHarness(testingT)

	payloads := []gin.H{
		{"keys": []string{"x", "x", "x", "x"}},
		{"keys": []string{"x", "x", "q", "x", "x"}},
		{"keys": []string{}},
		// A spacebar press arrives as " " and must break the run even
		// when five x presses surround it.
		{"keys": []string{"x", "x", " ", "x", "x", "x"}},
		{"keys": []string{"x", "x", "Shift", "x", "x", "x"}},
	}

	for _, payload := range payloads {
		recorder, context := newJSONContext(testingT, http.MethodPost, "/api/admin/reveal", payload)
		harness.publicHandlers.RevealAdminLogin(context)
		require.Equal(testingT, http.StatusOK, recorder.Code)

		var responseBody struct {
			Reveal bool `json:"reveal"`
		}
		decodeJSONBody(testingT, recorder, &responseBody)
		require.False(testingT, responseBody.Reveal)
	}
}

func TestCreateFeedbackIsRateLimitedPerClient(testingT *testing.T) {
	harness := newTestHarness(testingT)

	submit := func() int {
		recorder, context := newJSONContext(testingT, http.MethodPost, "/api/feedback", gin.H{
			"name":       "Ana",
			"department": "Eng",
			"feedback":   "Great",
		})
		context.Request.RemoteAddr = "203.0.113.7:1234"
		harness.publicHandlers.CreateFeedback(context)
		return recorder.Code
	}

	for submissionIndex := 0; submissionIndex < 6; submissionIndex++ {
		require.Equal(testingT, http.StatusOK, submit())
	}
	require.Equal(testingT, http.StatusTooManyRequests, submit())
}

func TestCreateFeedbackRateLimitIsIndependentPerClient(testingT *testing.T) {
	harness := newTestHarness(testingT)

	submitFrom := func(remoteAddr string) int {
		recorder, context := newJSONContext(testingT, http.MethodPost, "/api/feedback", gin.H{
			"name":       "Ana",
			"department": "Eng",
			"feedback":   "Great",
		})
		context.Request.RemoteAddr = remoteAddr
		harness.publicHandlers.CreateFeedback(context)
		return recorder.Code
	}

	for submissionIndex := 0; submissionIndex < 7; submissionIndex++ {
		submitFrom("203.0.113.7:1234")
	}
	require.Equal(testingT, http.StatusTooManyRequests, submitFrom("203.0.113.7:1234"))

	// A different client keeps its full allowance.
	for submissionIndex := 0; submissionIndex < 6; submissionIndex++ {
		require.Equal(testingT, http.StatusOK, submitFrom("198.51.100.9:1234"))
	}
}
