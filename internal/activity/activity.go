// Package activity records the per-appointment change history.
package activity

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/dealer-crm/internal/ids"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

// MaxEntries caps ListForAppointment.
const MaxEntries = 100

type Repository interface {
	Create(ctx context.Context, entry *models.ActivityLog) error
	ListByAppointment(ctx context.Context, appointmentID string, limit int) ([]models.ActivityLog, error)
}

// Entry is one change to record. Values are already rendered as strings.
type Entry struct {
	AppointmentID string
	UserID        string
	UserName      string
	Action        string
	FieldChanged  *string
	OldValue      *string
	NewValue      *string
}

type Logger struct {
	repo  Repository
	ids   ids.Generator
	clock func() time.Time
}

func NewLogger(repo Repository, gen ids.Generator, clock func() time.Time) *Logger {
	if clock == nil {
		clock = time.Now
	}
	if gen == nil {
		gen = ids.NewUUIDGenerator()
	}
	return &Logger{repo: repo, ids: gen, clock: clock}
}

// Record appends one immutable entry.
func (l *Logger) Record(ctx context.Context, e Entry) (*models.ActivityLog, error) {
	if e.AppointmentID == "" || e.Action == "" {
		return nil, errors.New("activity: appointment id and action are required")
	}

	row := &models.ActivityLog{
		LogID:         l.ids.NewID(ids.PrefixLog),
		AppointmentID: e.AppointmentID,
		UserID:        e.UserID,
		UserName:      e.UserName,
		Action:        e.Action,
		FieldChanged:  e.FieldChanged,
		OldValue:      e.OldValue,
		NewValue:      e.NewValue,
		Timestamp:     l.clock().UTC(),
	}
	if err := l.repo.Create(ctx, row); err != nil {
		return nil, err
	}
	return row, nil
}

// ListForAppointment returns the newest entries first.
func (l *Logger) ListForAppointment(ctx context.Context, appointmentID string) ([]models.ActivityLog, error) {
	return l.repo.ListByAppointment(ctx, appointmentID, MaxEntries)
}
