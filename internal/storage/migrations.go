package storage

import (
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/model"
)

// AutoMigrate runs database migrations for the storage layer models.
func AutoMigrate(database *gorm.DB) error {
	return database.AutoMigrate(&model.WorkshopFeedback{}, &model.Setting{})
}
