package services

import (
	"storefront/internal/models"
	"storefront/internal/repositories"
)

// SettingService handles the CMS-style content settings (banners, contact
// details, policy text). Reads are public, writes are admin-gated at the
// handler.
type SettingService struct {
	repo repositories.SettingRepository
}

// NewSettingService creates a new SettingService.
func NewSettingService(repo repositories.SettingRepository) *SettingService {
	return &SettingService{
		repo: repo,
	}
}

// ListSettings retrieves every content setting.
func (s *SettingService) ListSettings() ([]models.Setting, error) {
	return s.repo.GetAll()
}

// GetSetting retrieves a single setting by key.
func (s *SettingService) GetSetting(key string) (*models.Setting, error) {
	return s.repo.Get(key)
}

// PutSetting creates or replaces a setting.
func (s *SettingService) PutSetting(setting *models.Setting) error {
	return s.repo.Upsert(setting)
}

// DeleteSetting removes a setting by key.
func (s *SettingService) DeleteSetting(key string) error {
	return s.repo.Delete(key)
}
