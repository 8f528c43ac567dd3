package audit

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

const writeTimeout = 5 * time.Second

type Logger struct {
	db    *gorm.DB
	clock func() time.Time
}

func New(db *gorm.DB, clock func() time.Time) *Logger {
	if clock == nil {
		clock = time.Now
	}
	return &Logger{db: db, clock: clock}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (l *Logger) Log(ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	row := models.AuditLog{
		UserID:    optional(ev.UserID),
		Action:    ev.Action,
		Entity:    ev.Entity,
		EntityID:  optional(ev.EntityID),
		Metadata:  metaJSON,
		CreatedAt: l.clock().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	return l.db.WithContext(ctx).Create(&row).Error
}
