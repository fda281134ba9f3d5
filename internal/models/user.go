package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles checked by the role middleware.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// User represents a user of the store. The one-time token fields hold bcrypt
// hashes with an expiry and are cleared upon use; plaintext tokens are only
// ever sent to the user.
type User struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Phone    string `json:"phone,omitempty" gorm:"type:varchar(20)" validate:"omitempty,e164"`
	Password string `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"`
	Role     string `json:"role" gorm:"type:varchar(20);default:customer"`

	EmailVerified bool `json:"email_verified"`

	ResetTokenHash    string     `json:"-" gorm:"type:varchar(255)"`
	ResetTokenExpiry  *time.Time `json:"-"`
	VerifyTokenHash   string     `json:"-" gorm:"type:varchar(255)"`
	VerifyTokenExpiry *time.Time `json:"-"`
	PhoneOTPHash      string     `json:"-" gorm:"type:varchar(255)"`
	PhoneOTPExpiry    *time.Time `json:"-"`

	gorm.Model // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Address is a saved shipping address in the user's address book.
type Address struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	UserID   string `json:"user_id" gorm:"index;type:varchar(36)"`
	FullName string `json:"full_name" validate:"required,min=2,max=100"`
	Phone    string `json:"phone" validate:"required"`
	Line1    string `json:"line1" validate:"required,max=200"`
	Line2    string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City     string `json:"city" validate:"required,max=100"`
	State    string `json:"state" validate:"required,max=100"`
	PostCode string `json:"post_code" validate:"required,max=20"`
	Country  string `json:"country" validate:"required,max=100"`
	gorm.Model
}

// Snapshot copies the address into the immutable form stored on an order.
func (a Address) Snapshot() DeliveryAddress {
	return DeliveryAddress{
		FullName: a.FullName,
		Phone:    a.Phone,
		Line1:    a.Line1,
		Line2:    a.Line2,
		City:     a.City,
		State:    a.State,
		PostCode: a.PostCode,
		Country:  a.Country,
	}
}
