package repositories

import "storefront/internal/models"

// UserRepository defines the interface for user data access. Update is used
// by the token flows (password reset, email verification, phone OTP) to
// persist hashed tokens and clear them on use.
type UserRepository interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	Update(user *models.User) error
}
