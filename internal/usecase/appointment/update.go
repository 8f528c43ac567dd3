package appointment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dealer-crm/internal/activity"
	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/settings"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/ids"
	"github.com/BruksfildServices01/dealer-crm/internal/metrics"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/timezone"
	"github.com/BruksfildServices01/dealer-crm/internal/validators"
)

type UpdateAppointment struct {
	repo    domain.Repository
	allowed AllowedValues
	effects sideEffects
	opts    Options
}

func NewUpdateAppointment(
	repo domain.Repository,
	allowed AllowedValues,
	activity ActivityRecorder,
	tasks ReminderScheduler,
	opts Options,
) *UpdateAppointment {
	opts = opts.withDefaults()
	return &UpdateAppointment{
		repo:    repo,
		allowed: allowed,
		effects: sideEffects{activity: activity, tasks: tasks, logger: opts.Logger},
		opts:    opts,
	}
}

func normalizePatch(p *domain.Patch) {
	if p.CustomerPhone != nil {
		v := validators.NormalizePhone(*p.CustomerPhone)
		p.CustomerPhone = &v
	}
	if p.VehicleRegNo != nil {
		v := validators.NormalizeVehicleReg(*p.VehicleRegNo)
		p.VehicleRegNo = &v
	}
}

func (uc *UpdateAppointment) validatePatch(ctx context.Context, p domain.Patch) error {
	checkDate := func(field string, v *string) error {
		if v != nil && *v != "" && !timezone.IsDate(*v) {
			return httperr.ErrValidation("invalid_"+field, field+" must be YYYY-MM-DD")
		}
		return nil
	}
	if err := checkDate("appointment_date", p.AppointmentDate); err != nil {
		return err
	}
	if err := checkDate("reschedule_date", p.RescheduleDate); err != nil {
		return err
	}
	if p.AppointmentTime != nil && !timezone.IsClock(*p.AppointmentTime) {
		return httperr.ErrValidation("invalid_appointment_time", "appointment_time must be HH:MM")
	}
	if p.CurrentKM != nil && *p.CurrentKM < 0 {
		return httperr.ErrValidation("invalid_current_km", "current_km cannot be negative")
	}

	checkStatus := func(field string, v *string, builtin []string, kind settings.Kind, required bool) error {
		if v == nil {
			return nil
		}
		if *v == "" {
			if required {
				return httperr.ErrValidation("invalid_"+field, field+" cannot be empty")
			}
			return nil
		}
		configured, err := uc.allowed.AllowedValues(ctx, kind)
		if err != nil {
			return err
		}
		if !domain.AllowedValue(*v, builtin, configured) {
			return httperr.ErrValidation("invalid_"+field, fmt.Sprintf("%q is not a known %s", *v, field))
		}
		return nil
	}
	if err := checkStatus("n_minus_1_confirmation_status", p.N1Status, domain.BuiltinN1Statuses, settings.KindN1Statuses, true); err != nil {
		return err
	}
	if err := checkStatus("appointment_status", p.AppointmentStatus, domain.BuiltinAppointmentStatuses, settings.KindAppointmentStatuses, true); err != nil {
		return err
	}
	return checkStatus("appointment_day_outcome", p.AppointmentDayOutcome, domain.BuiltinOutcomes, settings.KindOutcomes, false)
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	actor *models.User,
	appointmentID string,
	patch domain.Patch,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// Load
	// --------------------------------------------------
	ap, err := uc.repo.GetByID(ctx, appointmentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrNotFound("appointment_not_found", "Appointment not found")
	}
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Permission + validation (before any write)
	// --------------------------------------------------
	now := uc.opts.Clock()
	if err := domain.AuthorizeUpdate(actor, ap, patch, timezone.Today(now, uc.opts.Location)); err != nil {
		return nil, err
	}

	normalizePatch(&patch)
	if err := uc.validatePatch(ctx, patch); err != nil {
		return nil, err
	}

	target, rescheduling := domain.RescheduleTarget(patch)
	if rescheduling {
		if err := domain.CanReschedule(ap.AppointmentStatus); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// Apply
	// --------------------------------------------------
	diffs := domain.Diff(ap, patch)
	fromDate := ap.AppointmentDate

	domain.Apply(ap, patch)
	ap.UpdatedAt = now.UTC()

	// --------------------------------------------------
	// Persist (reschedule spawns a successor atomically)
	// --------------------------------------------------
	var successor *models.Appointment
	if rescheduling {
		remarks := ""
		if patch.RescheduleRemarks != nil {
			remarks = *patch.RescheduleRemarks
		}
		domain.Reschedule(ap, fromDate, target, remarks, actor.Name, now.UTC())

		successor = domain.Successor(ap, target, now.UTC())
		successor.AppointmentID = uc.opts.IDs.NewID(ids.PrefixAppointment)

		err = withSequenceRetry(ctx, uc.repo, func(tx domain.Repository) error {
			if err := tx.Save(ctx, ap); err != nil {
				return err
			}
			seq, err := tx.LastSequences(ctx)
			if err != nil {
				return err
			}
			successor.SlNo = seq.LastSlNo + 1
			return tx.Create(ctx, successor)
		})
	} else {
		err = uc.repo.Save(ctx, ap)
	}
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Best-effort follow-ups
	// --------------------------------------------------
	for _, d := range diffs {
		field := string(d.Field)
		uc.effects.record(ctx, activity.Entry{
			AppointmentID: ap.AppointmentID,
			UserID:        actor.UserID,
			UserName:      actor.Name,
			Action:        "Updated " + field,
			FieldChanged:  &field,
			OldValue:      d.OldValue,
			NewValue:      d.NewValue,
		})
	}

	if successor != nil {
		metrics.AppointmentsRescheduled.Inc()
		uc.opts.Logger.Info("appointment rescheduled",
			zap.String("appointment_id", ap.AppointmentID),
			zap.String("successor_id", successor.AppointmentID),
			zap.String("booking_id", successor.BookingID),
		)
		uc.effects.record(ctx, activity.Entry{
			AppointmentID: successor.AppointmentID,
			UserID:        actor.UserID,
			UserName:      actor.Name,
			Action:        fmt.Sprintf("Rescheduled from %s to %s", fromDate, target),
		})
	}

	if domain.CompletesReminder(patch) {
		uc.effects.completeReminder(ctx, ap.AppointmentID)
	}

	return uc.repo.GetByID(ctx, ap.AppointmentID)
}
