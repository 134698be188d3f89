package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ProfessionalID uint         `gorm:"index" json:"professional_id"`
	Professional   Professional `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	ClientID uint   `json:"client_id"`
	Client   Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"client"`

	ServiceID uint    `json:"service_id"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"service"`
	Addons    string  `gorm:"size:255" json:"addons"`

	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationMin int       `json:"duration_min"`

	Amount   float64 `json:"amount"`
	Currency string  `gorm:"size:3" json:"currency"`

	Status string `gorm:"size:20;default:'pending_payment'" json:"status"`
	Notes  string `gorm:"size:255" json:"notes"`

	CheckoutSessionID string     `gorm:"size:128;index" json:"-"`
	PaymentIntentID   string     `gorm:"size:128" json:"-"`
	PaidAt            *time.Time `json:"paid_at"`

	CancellationFee        float64 `json:"cancellation_fee"`
	CancellationFeePercent float64 `json:"cancellation_fee_percent"`
	CancellationChargeID   string  `gorm:"size:128" json:"-"`
	CancelledBy            string  `gorm:"size:20" json:"cancelled_by"`

	ConfirmedAt *time.Time `json:"confirmed_at"`
	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
