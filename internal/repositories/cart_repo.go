package repositories

import (
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartRepository defines the interface for cart data access. A user has at
// most one cart; GetByUserID creates an empty one on first access.
type CartRepository interface {
	GetByUserID(userID string) (*models.Cart, error)
	Save(cart *models.Cart) error
	Clear(userID string) error
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByUserID retrieves the user's cart, creating an empty one if absent.
func (r *GORMCartRepository) GetByUserID(userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.Preload("Items").First(&cart, "user_id = ?", userID).Error
	if err == gorm.ErrRecordNotFound {
		cart = models.Cart{ID: uuid.New().String(), UserID: userID}
		if err := r.db.Create(&cart).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart for user %s: %w", userID, err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// Save persists the cart and its items.
func (r *GORMCartRepository) Save(cart *models.Cart) error {
	for i := range cart.Items {
		if cart.Items[i].ID == "" {
			cart.Items[i].ID = uuid.New().String()
		}
		cart.Items[i].CartID = cart.ID
	}
	if err := r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(cart).Error; err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Clear removes every item from the user's cart. Clearing a user with no
// cart is a no-op.
func (r *GORMCartRepository) Clear(userID string) error {
	var cart models.Cart
	err := r.db.First(&cart, "user_id = ?", userID).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	if err := r.db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
