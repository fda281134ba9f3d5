package repositories

import (
	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// never deleted, only status-transitioned, so there is no Delete.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetByUserID(userID string) ([]models.Order, error)
	Create(order *models.Order) error
	Update(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
}
