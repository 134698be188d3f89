package models

import "time"

// Client books without an account; identified per professional by email.
type Client struct {
	ID             uint `gorm:"primaryKey" json:"id"`
	ProfessionalID uint `gorm:"index" json:"professional_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Phone string `gorm:"size:20" json:"phone"`
	Email string `gorm:"size:100;index" json:"email"`

	StripeCustomerID      string `gorm:"size:64" json:"-"`
	StripePaymentMethodID string `gorm:"size:64" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
