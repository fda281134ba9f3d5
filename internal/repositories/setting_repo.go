package repositories

import (
	"fmt"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository defines the interface for content-settings data access.
type SettingRepository interface {
	GetAll() ([]models.Setting, error)
	Get(key string) (*models.Setting, error)
	Upsert(setting *models.Setting) error
	Delete(key string) error
}

// GORMSettingRepository is a GORM implementation of SettingRepository.
type GORMSettingRepository struct {
	db *gorm.DB
}

// NewGORMSettingRepository creates a new instance of GORMSettingRepository.
func NewGORMSettingRepository(db *gorm.DB) *GORMSettingRepository {
	return &GORMSettingRepository{
		db: db,
	}
}

// GetAll retrieves every content setting.
func (r *GORMSettingRepository) GetAll() ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.db.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// Get retrieves a single setting by key.
func (r *GORMSettingRepository) Get(key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.First(&setting, "key = ?", key).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("setting with key %s not found", key)
		}
		return nil, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return &setting, nil
}

// Upsert creates or replaces a setting.
func (r *GORMSettingRepository) Upsert(setting *models.Setting) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(setting).Error
	if err != nil {
		return fmt.Errorf("failed to upsert setting %s: %w", setting.Key, err)
	}
	return nil
}

// Delete removes a setting by key.
func (r *GORMSettingRepository) Delete(key string) error {
	res := r.db.Delete(&models.Setting{}, "key = ?", key)
	if res.Error != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("setting with key %s not found for deletion", key)
	}
	return nil
}
