package httpapi

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/model"
	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/storage"
)

const (
	errorValueQueryFailed     = "query_failed"
	errorValueUnknownFeedback = "unknown_feedback"
	errorValueNothingToUpdate = "nothing_to_update"
	errorValueDeleteFailed    = "delete_failed"
	errorValueInvalidSort     = "invalid_sort"
	errorValueInvalidLink     = "invalid_link"

	sortOrderRecent = "recent"
	sortOrderRating = "rating"

	queryParameterSort = "sort"
	pathParameterID    = "id"

	csvContentType             = "text/csv"
	csvFileNamePattern         = `attachment; filename="workshop-feedback-%s.csv"`
	csvExportDateLayout        = "2006-01-02"
	feedbackOrderByCreatedDesc = "created_at desc"
)

var csvExportHeader = []string{"Name", "Department", "Feedback", "Rating", "Date"}

// AdminHandlers implements the dashboard API: feedback CRUD, sorting,
// statistics, CSV export and social-link configuration.
type AdminHandlers struct {
	database *gorm.DB
	logger   *zap.Logger
}

// NewAdminHandlers wires the dashboard routes.
func NewAdminHandlers(database *gorm.DB, logger *zap.Logger) *AdminHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandlers{database: database, logger: logger}
}

type listFeedbackResponse struct {
	Feedback []feedbackResponse `json:"feedback"`
}

type feedbackStatisticsResponse struct {
	TotalCount    int      `json:"total_count"`
	RatedCount    int      `json:"rated_count"`
	AverageRating *float64 `json:"average_rating"`
}

type updateFeedbackRequest struct {
	Name           *string `json:"name"`
	Department     *string `json:"department"`
	Feedback       *string `json:"feedback"`
	Rating         *int    `json:"rating"`
	RatingSpeakerA *int    `json:"rating_speaker_a"`
	RatingSpeakerB *int    `json:"rating_speaker_b"`
}

type socialLinksRequest struct {
	InstagramURL string `json:"instagram_url"`
	LinkedInURL  string `json:"linkedin_url"`
	WhatsappURL  string `json:"whatsapp_url"`
}

type socialLinksResponse struct {
	InstagramURL string `json:"instagram_url"`
	LinkedInURL  string `json:"linkedin_url"`
	WhatsappURL  string `json:"whatsapp_url"`
}

// ListFeedback returns all records, most recent first, optionally re-sorted
// by rating. The rating sort is stable and treats absent ratings as zero.
func (handlers *AdminHandlers) ListFeedback(context *gin.Context) {
	sortOrder := strings.TrimSpace(context.DefaultQuery(queryParameterSort, sortOrderRecent))
	if sortOrder != sortOrderRecent && sortOrder != sortOrderRating {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidSort})
		return
	}

	records, queryErr := handlers.fetchFeedback()
	if queryErr != nil {
		handlers.logger.Warn("list_feedback", zap.Error(queryErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}

	if sortOrder == sortOrderRating {
		records = model.SortFeedbackByRating(records)
	}

	responses := make([]feedbackResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, toFeedbackResponse(record))
	}

	context.JSON(http.StatusOK, listFeedbackResponse{Feedback: responses})
}

// FeedbackStatistics recomputes the dashboard counters from the stored
// records on every request; nothing is cached or stored separately.
func (handlers *AdminHandlers) FeedbackStatistics(context *gin.Context) {
	records, queryErr := handlers.fetchFeedback()
	if queryErr != nil {
		handlers.logger.Warn("feedback_statistics", zap.Error(queryErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}

	statistics := model.ComputeFeedbackStatistics(records)
	response := feedbackStatisticsResponse{
		TotalCount: statistics.TotalCount,
		RatedCount: statistics.RatedCount,
	}
	if statistics.RatedCount > 0 {
		averageRating := statistics.AverageRating
		response.AverageRating = &averageRating
	}

	context.JSON(http.StatusOK, response)
}

// CreateFeedback lets the admin enter a record on a participant's behalf.
func (handlers *AdminHandlers) CreateFeedback(context *gin.Context) {
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
		handlers.logger.Warn("admin_create_feedback", zap.Error(saveErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusOK, toFeedbackResponse(record))
}

// UpdateFeedback applies a partial edit to an existing record.
func (handlers *AdminHandlers) UpdateFeedback(context *gin.Context) {
	record, found := handlers.resolveFeedback(context)
	if !found {
		return
	}

	var payload updateFeedbackRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	changed := false
	if payload.Name != nil {
		trimmedName := strings.TrimSpace(*payload.Name)
		if trimmedName == "" {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingFields})
			return
		}
		record.Name = trimmedName
		changed = true
	}
	if payload.Department != nil {
		trimmedDepartment := strings.TrimSpace(*payload.Department)
		if trimmedDepartment == "" {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingFields})
			return
		}
		record.Department = trimmedDepartment
		changed = true
	}
	if payload.Feedback != nil {
		trimmedFeedback := strings.TrimSpace(*payload.Feedback)
		if trimmedFeedback == "" {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingFields})
			return
		}
		record.Feedback = trimmedFeedback
		changed = true
	}
	for _, update := range []struct {
		value  *int
		target **int
	}{
		{payload.Rating, &record.Rating},
		{payload.RatingSpeakerA, &record.RatingSpeakerA},
		{payload.RatingSpeakerB, &record.RatingSpeakerB},
	} {
		if update.value == nil {
			continue
		}
		if validationErr := model.ValidateRating(update.value); validationErr != nil {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidRating})
			return
		}
		*update.target = update.value
		changed = true
	}

	if !changed {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueNothingToUpdate})
		return
	}

	if saveErr := handlers.database.Save(&record).Error; saveErr != nil {
		handlers.logger.Warn("update_feedback", zap.Error(saveErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusOK, toFeedbackResponse(record))
}

// DeleteFeedback removes one record by identifier.
func (handlers *AdminHandlers) DeleteFeedback(context *gin.Context) {
	record, found := handlers.resolveFeedback(context)
	if !found {
		return
	}

	if deleteErr := handlers.database.Delete(&model.WorkshopFeedback{}, "id = ?", record.ID).Error; deleteErr != nil {
		handlers.logger.Warn("delete_feedback", zap.Error(deleteErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueDeleteFailed})
		return
	}

	context.JSON(http.StatusOK, gin.H{jsonKeyStatus: statusValueOK})
}

// ExportFeedbackCSV streams every record as a CSV download. encoding/csv
// quotes any field containing quotes, commas or newlines and doubles
// embedded quotes, so the output survives a standard CSV parser round trip.
func (handlers *AdminHandlers) ExportFeedbackCSV(context *gin.Context) {
	records, queryErr := handlers.fetchFeedback()
	if queryErr != nil {
		handlers.logger.Warn("export_feedback", zap.Error(queryErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}

	context.Header("Content-Type", csvContentType)
	context.Header("Content-Disposition", fmt.Sprintf(csvFileNamePattern, time.Now().Format(csvExportDateLayout)))

	csvWriter := csv.NewWriter(context.Writer)
	_ = csvWriter.Write(csvExportHeader)
	for _, record := range records {
		ratingText := ""
		if record.Rating != nil {
			ratingText = strconv.Itoa(*record.Rating)
		}
		_ = csvWriter.Write([]string{
			record.Name,
			record.Department,
			record.Feedback,
			ratingText,
			record.CreatedAt.Format(csvExportDateLayout),
		})
	}
	csvWriter.Flush()
}

// SocialLinks returns the full configuration record, empty values included.
func (handlers *AdminHandlers) SocialLinks(context *gin.Context) {
	links, loadErr := storage.LoadSocialLinks(handlers.database)
	if loadErr != nil {
		handlers.logger.Warn("load_social_links", zap.Error(loadErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}

	context.JSON(http.StatusOK, toSocialLinksResponse(links))
}

// SaveSocialLinks validates and atomically replaces all three link values.
func (handlers *AdminHandlers) SaveSocialLinks(context *gin.Context) {
	var payload socialLinksRequest
	if bindErr := context.BindJSON(&payload); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}

	links := model.SocialLinks{
		InstagramURL: strings.TrimSpace(payload.InstagramURL),
		LinkedInURL:  strings.TrimSpace(payload.LinkedInURL),
		WhatsappURL:  strings.TrimSpace(payload.WhatsappURL),
	}

	if validationErr := links.Validate(); validationErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidLink})
		return
	}

	if saveErr := storage.ReplaceSocialLinks(handlers.database, links); saveErr != nil {
		handlers.logger.Warn("save_social_links", zap.Error(saveErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}

	context.JSON(http.StatusOK, toSocialLinksResponse(links))
}

func (handlers *AdminHandlers) fetchFeedback() ([]model.WorkshopFeedback, error) {
	var records []model.WorkshopFeedback
	if queryErr := handlers.database.Order(feedbackOrderByCreatedDesc).Find(&records).Error; queryErr != nil {
		return nil, queryErr
	}
	return records, nil
}

func (handlers *AdminHandlers) resolveFeedback(context *gin.Context) (model.WorkshopFeedback, bool) {
	feedbackID := strings.TrimSpace(context.Param(pathParameterID))

	var record model.WorkshopFeedback
	queryErr := handlers.database.First(&record, "id = ?", feedbackID).Error
	if queryErr != nil {
		if errors.Is(queryErr, gorm.ErrRecordNotFound) {
			context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueUnknownFeedback})
			return model.WorkshopFeedback{}, false
		}
		handlers.logger.Warn("resolve_feedback", zap.Error(queryErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return model.WorkshopFeedback{}, false
	}

	return record, true
}

func toSocialLinksResponse(links model.SocialLinks) socialLinksResponse {
	return socialLinksResponse{
		InstagramURL: links.InstagramURL,
		LinkedInURL:  links.LinkedInURL,
		WhatsappURL:  links.WhatsappURL,
	}
}
