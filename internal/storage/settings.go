package storage

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MarkoPoloResearchLab/workshop_feedback/internal/model"
)

const (
	errorMessageLoadSocialLinks    = "storage: load social links"
	errorMessageReplaceSocialLinks = "storage: replace social links"

	settingColumnKey   = "key"
	settingColumnValue = "value"
)

// LoadSocialLinks reads every setting row and folds it into the closed record.
// Missing rows yield empty link fields.
func LoadSocialLinks(database *gorm.DB) (model.SocialLinks, error) {
	var settings []model.Setting
	if queryErr := database.Find(&settings).Error; queryErr != nil {
		return model.SocialLinks{}, fmt.Errorf("%s: %w", errorMessageLoadSocialLinks, queryErr)
	}
	return model.SocialLinksFromSettings(settings), nil
}

// ReplaceSocialLinks upserts all three link rows inside a single transaction
// so a failure never leaves a partially applied configuration.
func ReplaceSocialLinks(database *gorm.DB, links model.SocialLinks) error {
	transactionErr := database.Transaction(func(transaction *gorm.DB) error {
		settings := links.Settings()
		return transaction.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: settingColumnKey}},
			DoUpdates: clause.AssignmentColumns([]string{settingColumnValue}),
		}).Create(&settings).Error
	})
	if transactionErr != nil {
		return fmt.Errorf("%s: %w", errorMessageReplaceSocialLinks, transactionErr)
	}
	return nil
}
