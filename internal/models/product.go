package models

import "gorm.io/gorm"

// Product represents a product in the catalog.
type Product struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name        string  `json:"name" validate:"required,min=3,max=100"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	Category    string  `json:"category" gorm:"index;type:varchar(100)" validate:"omitempty,max=100"`
	ImageURL    string  `json:"image_url,omitempty" validate:"omitempty,url"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	gorm.Model          // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Cart holds a user's not-yet-ordered items. One cart per user; cleared when
// a payment succeeds or a COD order is verified.
type Cart struct {
	ID     string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36)"`
	Items  []CartItem `json:"items" gorm:"foreignKey:CartID"`
	gorm.Model
}

// CartItem is a product/quantity pair in a cart.
type CartItem struct {
	ID        string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"type:varchar(36)" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	gorm.Model
}

// Setting is a CMS-style content entry (banner text, contact details, policy
// pages) keyed by name. Public to read, admin to write.
type Setting struct {
	Key   string `json:"key" gorm:"primaryKey;type:varchar(100)" validate:"required,max=100"`
	Value string `json:"value" gorm:"type:text"`
	gorm.Model
}
