package httpapi

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/model"
	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/storage"
	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/viewflow"
)

const (
	errorValueInvalidJSON   = "invalid_json"
	errorValueMissingFields = "missing_fields"
	errorValueInvalidRating = "invalid_rating"
	errorValueSaveFailed    = "save_failed"
	errorValueRateLimited   = "rate_limited"

	jsonKeyError  = "error"
	jsonKeyReveal = "reveal"

	defaultRateWindow            = 30 * time.Second
	defaultMaxRequestsPerIPCount = 6
	rateWindowPruneThreshold     = 1024
)

// clientRateWindow tracks one client's submissions within its own window, so
// a client arriving late never inherits a window another client opened.
type clientRateWindow struct {
	requestCount  int
	windowStarted time.Time
}

// PublicHandlers serves the unauthenticated surface: feedback submission,
// the social links shown under the form, and the admin-reveal gesture check.
type PublicHandlers struct {
	database          *gorm.DB
	logger            *zap.Logger
	gestureKey        rune
	gestureLength     int
	rateWindow        time.Duration
	maxRequestsPerIP  int
	rateWindowsByIP   map[string]clientRateWindow
	rateCountersMutex sync.Mutex
}

// NewPublicHandlers wires the public routes.
func NewPublicHandlers(database *gorm.DB, logger *zap.Logger, gestureKey rune, gestureLength int) *PublicHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublicHandlers{
		database:         database,
		logger:           logger,
		gestureKey:       gestureKey,
		gestureLength:    gestureLength,
		rateWindow:       defaultRateWindow,
		maxRequestsPerIP: defaultMaxRequestsPerIPCount,
		rateWindowsByIP:  make(map[string]clientRateWindow),
	}
}

type createFeedbackRequest struct {
	Name           string `json:"name"`
	Department     string `json:"department"`
	Feedback       string `json:"feedback"`
	Rating         *int   `json:"rating"`
	RatingSpeakerA *int   `json:"rating_speaker_a"`
	RatingSpeakerB *int   `json:"rating_speaker_b"`
}

type feedbackResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Department     string `json:"department"`
	Feedback       string `json:"feedback"`
	Rating         *int   `json:"rating"`
	RatingSpeakerA *int   `json:"rating_speaker_a"`
	RatingSpeakerB *int   `json:"rating_speaker_b"`
	CreatedAt      int64  `json:"created_at"`
}

// CreateFeedback validates and stores one submission.
func (handlers *PublicHandlers) CreateFeedback(context *gin.Context) {
	if handlers.isRateLimited(context.ClientIP()) {
		context.JSON(http.StatusTooManyRequests, gin.H{jsonKeyError: errorValueRateLimited})
		return
	}

	var payload createFeedbackRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	record, validationErr := model.NewWorkshopFeedback(
		payload.Name,
		payload.Department,
		payload.Feedback,
		payload.Rating,
		payload.RatingSpeakerA,
		payload.RatingSpeakerB,
	)
	if validationErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: feedbackValidationErrorValue(validationErr)})
		return
	}

	if saveErr := handlers.database.Create(&record).Error; saveErr != nil {
		handlers.logger.Warn("create_feedback", zap.Error(saveErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusOK, toFeedbackResponse(record))
}

// SocialLinks returns the configured outbound links, omitting empty values.
// A read failure degrades to an empty set rather than an error page.
func (handlers *PublicHandlers) SocialLinks(context *gin.Context) {
	links, loadErr := storage.LoadSocialLinks(handlers.database)
	if loadErr != nil {
		handlers.logger.Warn("load_social_links", zap.Error(loadErr))
		links = model.SocialLinks{}
	}

	response := gin.H{}
	if links.InstagramURL != "" {
		response[model.SettingKeyInstagramURL] = links.InstagramURL
	}
	if links.LinkedInURL != "" {
		response[model.SettingKeyLinkedInURL] = links.LinkedInURL
	}
	if links.WhatsappURL != "" {
		response[model.SettingKeyWhatsappURL] = links.WhatsappURL
	}

	context.JSON(http.StatusOK, response)
}

type revealGestureRequest struct {
	Keys []string `json:"keys"`
}

// RevealAdminLogin evaluates the recent keystroke window server-side so the
// trigger key never ships in client-deliverable code.
func (handlers *PublicHandlers) RevealAdminLogin(context *gin.Context) {
	var payload revealGestureRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	detector, detectorErr := viewflow.NewKeystrokeDetector(handlers.gestureKey, handlers.gestureLength)
	if detectorErr != nil {
		handlers.logger.Warn("build_keystroke_detector", zap.Error(detectorErr))
		context.JSON(http.StatusOK, gin.H{jsonKeyReveal: false})
		return
	}

	completed := false
	for _, keyText := range payload.Keys {
		// Every reported key feeds the window, whitespace included; a
		// spacebar press must break the run like any other foreign key.
		keyRunes := []rune(keyText)
		if len(keyRunes) == 0 {
			continue
		}
		if detector.Observe(keyRunes[0]) {
			completed = true
		}
	}

	context.JSON(http.StatusOK, gin.H{jsonKeyReveal: completed})
}

func (handlers *PublicHandlers) isRateLimited(clientIP string) bool {
	handlers.rateCountersMutex.Lock()
	defer handlers.rateCountersMutex.Unlock()

	now := time.Now()
	if len(handlers.rateWindowsByIP) >= rateWindowPruneThreshold {
		for trackedIP, trackedWindow := range handlers.rateWindowsByIP {
			if now.Sub(trackedWindow.windowStarted) > handlers.rateWindow {
				delete(handlers.rateWindowsByIP, trackedIP)
			}
		}
	}

	window, tracked := handlers.rateWindowsByIP[clientIP]
	if !tracked || now.Sub(window.windowStarted) > handlers.rateWindow {
		window = clientRateWindow{windowStarted: now}
	}
	window.requestCount++
	handlers.rateWindowsByIP[clientIP] = window
	return window.requestCount > handlers.maxRequestsPerIP
}

func feedbackValidationErrorValue(validationErr error) string {
	if errors.Is(validationErr, model.ErrInvalidRating) {
		return errorValueInvalidRating
	}
	return errorValueMissingFields
}

func toFeedbackResponse(record model.WorkshopFeedback) feedbackResponse {
	return feedbackResponse{
		ID:             record.ID,
		Name:           record.Name,
		Department:     record.Department,
		Feedback:       record.Feedback,
		Rating:         record.Rating,
		RatingSpeakerA: record.RatingSpeakerA,
		RatingSpeakerB: record.RatingSpeakerB,
		CreatedAt:      record.CreatedAt.Unix(),
	}
}
