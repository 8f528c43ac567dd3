package appointment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dealer-crm/internal/activity"
	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/settings"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/ids"
	"github.com/BruksfildServices01/dealer-crm/internal/logging"
	"github.com/BruksfildServices01/dealer-crm/internal/metrics"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/usecase/duplicate"
)

// ======================================================
// COLLABORATORS
// ======================================================

type DuplicateChecker interface {
	Check(ctx context.Context, phone, vehicleReg string) (duplicate.Result, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, e activity.Entry) (*models.ActivityLog, error)
}

type ReminderScheduler interface {
	EnqueueReminder(ctx context.Context, appointmentID, assignedTo string) (*models.Task, error)
	CompleteForAppointment(ctx context.Context, appointmentID string) (int, error)
}

type AllowedValues interface {
	AllowedValues(ctx context.Context, kind settings.Kind) ([]string, error)
}

// Options carries the ambient settings shared by the use cases.
type Options struct {
	BookingPrefix string
	Location      *time.Location
	Clock         func() time.Time
	IDs           ids.Generator
	Logger        *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.BookingPrefix == "" {
		o.BookingPrefix = "#SILB"
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.IDs == nil {
		o.IDs = ids.NewUUIDGenerator()
	}
	o.Logger = logging.OrNop(o.Logger)
	return o
}

// ======================================================
// SEQUENCES
// ======================================================

const maxSequenceAttempts = 5

// withSequenceRetry runs fn in a transaction and starts over when another
// writer claimed the same sl_no.
func withSequenceRetry(ctx context.Context, repo domain.Repository, fn func(tx domain.Repository) error) error {
	for attempt := 1; ; attempt++ {
		err := repo.WithTx(ctx, fn)
		if !errors.Is(err, domain.ErrSequenceTaken) {
			return err
		}
		if attempt == maxSequenceAttempts {
			return httperr.ErrConflict("sequence_conflict", "Could not allocate a serial number, please retry.")
		}
		metrics.SequenceRetries.Inc()
	}
}

// ======================================================
// SIDE EFFECTS
// ======================================================

// sideEffects performs best-effort writes after the appointment itself is
// persisted. Failures are logged and counted, never returned.
type sideEffects struct {
	activity ActivityRecorder
	tasks    ReminderScheduler
	logger   *zap.Logger
}

func (e sideEffects) record(ctx context.Context, entry activity.Entry) {
	if e.activity == nil {
		return
	}
	if _, err := e.activity.Record(context.WithoutCancel(ctx), entry); err != nil {
		metrics.SideEffectFailures.WithLabelValues("activity_log").Inc()
		e.logger.Warn("activity log write failed",
			zap.String("appointment_id", entry.AppointmentID),
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

func (e sideEffects) enqueueReminder(ctx context.Context, ap *models.Appointment) {
	if e.tasks == nil {
		return
	}
	if _, err := e.tasks.EnqueueReminder(context.WithoutCancel(ctx), ap.AppointmentID, ap.AssignedCREUser); err != nil {
		metrics.SideEffectFailures.WithLabelValues("reminder_enqueue").Inc()
		e.logger.Warn("reminder enqueue failed",
			zap.String("appointment_id", ap.AppointmentID),
			zap.Error(err),
		)
	}
}

func (e sideEffects) completeReminder(ctx context.Context, appointmentID string) {
	if e.tasks == nil {
		return
	}
	if _, err := e.tasks.CompleteForAppointment(context.WithoutCancel(ctx), appointmentID); err != nil {
		metrics.SideEffectFailures.WithLabelValues("reminder_complete").Inc()
		e.logger.Warn("reminder completion failed",
			zap.String("appointment_id", appointmentID),
			zap.Error(err),
		)
	}
}
