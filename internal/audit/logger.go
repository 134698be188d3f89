package audit

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/thesuite/booking-api/internal/models"
)

// Writer persists audit rows.
type Writer interface {
	Write(ctx context.Context, entry *models.AuditLog) error
}

type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Write(ctx context.Context, entry *models.AuditLog) error {
	return l.db.WithContext(ctx).Create(entry).Error
}

// Entry builds the row for ev, encoding metadata as JSON.
func Entry(ev Event) *models.AuditLog {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	return &models.AuditLog{
		ProfessionalID: ev.ProfessionalID,
		Actor:          ev.Actor,
		Action:         ev.Action,
		Entity:         ev.Entity,
		EntityID:       ev.EntityID,
		Metadata:       metaJSON,
	}
}

var _ Writer = (*Logger)(nil)
