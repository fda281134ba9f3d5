package models

import "time"

// OrderItem represents a single item within an order. Status uses the admin
// (titlecase) vocabulary; see status.go.
type OrderItem struct {
	ID              string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID         string     `json:"-" gorm:"index;type:varchar(36)"`
	ProductID       string     `json:"product_id" gorm:"type:varchar(36)" validate:"required"`
	ProductName     string     `json:"product_name"`
	Quantity        int        `json:"quantity" validate:"required,gt=0"`
	Price           float64    `json:"price"` // Price at the time of order
	Status          ItemStatus `json:"status"`
	CancelRequested bool       `json:"cancel_requested"`
	CancelReason    string     `json:"cancel_reason,omitempty"`
	Reviewed        bool       `json:"reviewed"`
}

// DeliveryAddress is the address snapshot taken at checkout. Changing the
// address book afterwards must not affect orders already placed.
type DeliveryAddress struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	City     string `json:"city"`
	State    string `json:"state"`
	PostCode string `json:"post_code"`
	Country  string `json:"country"`
}

// Order represents a customer order. There is a single canonical item
// collection and a single canonical status; the legacy dual shapes are
// produced at the serialization boundary by the legacy package.
type Order struct {
	ID     string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Items  []OrderItem `json:"items" gorm:"foreignKey:OrderID"`

	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`

	PaymentMethod   string     `json:"payment_method"`
	PaymentStatus   string     `json:"payment_status"`
	PaymentIntentID string     `json:"payment_intent_id,omitempty"`
	IsPaid          bool       `json:"is_paid"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`

	DeliveryAddress DeliveryAddress `json:"delivery_address" gorm:"embedded;embeddedPrefix:delivery_"`
	TrackingNumber  string          `json:"tracking_number,omitempty"`
	ManifestID      string          `json:"manifest_id,omitempty"`
	DeliveryStatus  string          `json:"delivery_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PaymentResult is the normalized record extracted from a payment-provider
// webhook and handed to the payment-success path.
type PaymentResult struct {
	Provider  string `json:"provider"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
	Method    string `json:"method"`
	Contact   string `json:"contact,omitempty"`
}

// PendingCODOrder is the transient pre-order held while a cash-on-delivery
// checkout awaits code verification. Only the bcrypt hash of the code is
// stored, never the plaintext. Promoted to a real Order on verification or
// dropped when the expiry elapses.
type PendingCODOrder struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Email           string          `json:"email"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     float64         `json:"total_amount"`
	DeliveryAddress DeliveryAddress `json:"delivery_address"`
	CodeHash        string          `json:"code_hash"`
	ExpiresAt       time.Time       `json:"expires_at"`
	CreatedAt       time.Time       `json:"created_at"`
}
