package models

import (
	"time"

	"github.com/thesuite/booking-api/internal/timezone"
)

// Professional is a beauty / grooming professional taking bookings.
// AuthUserID is the subject issued by the external auth provider.
type Professional struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	AuthUserID string `gorm:"size:64;uniqueIndex;not null" json:"-"`

	Name      string `gorm:"size:100;not null" json:"name"`
	Slug      string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
	Email     string `gorm:"size:100" json:"email"`
	Phone     string `gorm:"size:20" json:"phone"`
	Address   string `gorm:"size:255" json:"address"`
	Bio       string `gorm:"type:text" json:"bio"`
	AvatarURL string `gorm:"size:512" json:"avatar_url"`

	Timezone          string `gorm:"size:64;default:'America/New_York'" json:"timezone"`
	MinAdvanceMinutes int    `gorm:"default:120" json:"min_advance_minutes"`
	Currency          string `gorm:"size:3;default:'usd'" json:"currency"`

	// NULL means no cancellation policy configured.
	CancellationPolicy []byte `gorm:"type:jsonb" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Professional) Location() *time.Location {
	if p == nil {
		return timezone.Location("")
	}
	return timezone.Location(p.Timezone)
}
