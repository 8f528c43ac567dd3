package appointment

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dealer-crm/internal/activity"
	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/user"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/ids"
	"github.com/BruksfildServices01/dealer-crm/internal/metrics"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/timezone"
	"github.com/BruksfildServices01/dealer-crm/internal/validators"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	Branch          string `json:"branch" validate:"required"`
	AppointmentDate string `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointment_time" validate:"required,datetime=15:04"`
	Source          string `json:"source" validate:"required"`
	ServiceType     string `json:"service_type" validate:"required"`

	CustomerName  string  `json:"customer_name" validate:"required"`
	CustomerPhone string  `json:"customer_phone" validate:"required,phone"`
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`

	VehicleRegNo          *string `json:"vehicle_reg_no"`
	Model                 *string `json:"model"`
	CurrentKM             *int    `json:"current_km" validate:"omitempty,gte=0"`
	AllocatedSA           *string `json:"allocated_sa"`
	SpecificRepairRequest *string `json:"specific_repair_request"`

	OTSRecall             bool `json:"ots_recall"`
	PriorityCustomer      bool `json:"priority_customer"`
	DocketReadiness       bool `json:"docket_readiness"`
	RecoveredLostCustomer bool `json:"recovered_lost_customer"`

	// Honored only for CRM-level actors.
	AssignedCREUser *string `json:"assigned_cre_user"`
}

func (in *CreateAppointmentInput) normalize() {
	in.Branch = strings.TrimSpace(in.Branch)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.CustomerPhone = validators.NormalizePhone(in.CustomerPhone)
	in.CustomerEmail = validators.NilIfBlank(in.CustomerEmail)
	in.Model = validators.NilIfBlank(in.Model)
	in.AllocatedSA = validators.NilIfBlank(in.AllocatedSA)
	in.SpecificRepairRequest = validators.NilIfBlank(in.SpecificRepairRequest)
	in.AssignedCREUser = validators.NilIfBlank(in.AssignedCREUser)

	in.VehicleRegNo = validators.NilIfBlank(in.VehicleRegNo)
	if in.VehicleRegNo != nil {
		reg := validators.NormalizeVehicleReg(*in.VehicleRegNo)
		in.VehicleRegNo = &reg
	}
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo       domain.Repository
	duplicates DuplicateChecker
	effects    sideEffects
	opts       Options
}

func NewCreateAppointment(
	repo domain.Repository,
	duplicates DuplicateChecker,
	activity ActivityRecorder,
	tasks ReminderScheduler,
	opts Options,
) *CreateAppointment {
	opts = opts.withDefaults()
	return &CreateAppointment{
		repo:       repo,
		duplicates: duplicates,
		effects:    sideEffects{activity: activity, tasks: tasks, logger: opts.Logger},
		opts:       opts,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	actor *models.User,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// Role
	// --------------------------------------------------
	if !user.CanBook(actor.Role) {
		return nil, httperr.ErrPermissionDenied("role_not_allowed", "Your role cannot book appointments.")
	}

	// --------------------------------------------------
	// Input
	// --------------------------------------------------
	in.normalize()
	if err := validators.Struct(in); err != nil {
		return nil, err
	}

	assignee := actor.UserID
	if in.AssignedCREUser != nil && *in.AssignedCREUser != actor.UserID {
		if !user.IsAdmin(actor.Role) {
			return nil, httperr.ErrPermissionDenied("assignment_forbidden", "Only CRM can assign appointments to another user.")
		}
		assignee = *in.AssignedCREUser
	}

	// --------------------------------------------------
	// Duplicate snapshot
	// --------------------------------------------------
	reg := ""
	if in.VehicleRegNo != nil {
		reg = *in.VehicleRegNo
	}
	dup, err := uc.duplicates.Check(ctx, in.CustomerPhone, reg)
	if err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// Build
	// --------------------------------------------------
	now := uc.opts.Clock()
	ap := &models.Appointment{
		AppointmentID:              uc.opts.IDs.NewID(ids.PrefixAppointment),
		Branch:                     in.Branch,
		AppointmentDate:            in.AppointmentDate,
		AppointmentTime:            in.AppointmentTime,
		Source:                     in.Source,
		ServiceType:                in.ServiceType,
		AllocatedSA:                in.AllocatedSA,
		CustomerName:               in.CustomerName,
		CustomerPhone:              in.CustomerPhone,
		CustomerEmail:              in.CustomerEmail,
		VehicleRegNo:               in.VehicleRegNo,
		Model:                      in.Model,
		CurrentKM:                  in.CurrentKM,
		SpecificRepairRequest:      in.SpecificRepairRequest,
		OTSRecall:                  in.OTSRecall,
		PriorityCustomer:           in.PriorityCustomer,
		DocketReadiness:            in.DocketReadiness,
		RecoveredLostCustomer:      in.RecoveredLostCustomer,
		AssignedCREUser:            assignee,
		CreatedByUser:              actor.UserID,
		DuplicatePhoneLast30Days:   dup.DuplicatePhone,
		DuplicateVehicleLast30Days: dup.DuplicateVehicle,
	}
	domain.Book(ap, now.UTC())

	// --------------------------------------------------
	// Persist with fresh sequences
	// --------------------------------------------------
	prefix := uc.opts.BookingPrefix
	err = withSequenceRetry(ctx, uc.repo, func(tx domain.Repository) error {
		seq, err := tx.LastSequences(ctx)
		if err != nil {
			return err
		}
		ap.SlNo = seq.LastSlNo + 1
		ap.BookingID = domain.FormatBookingID(prefix, domain.NextBookingSeq(prefix, seq.LastBookingID))
		return tx.Create(ctx, ap)
	})
	if err != nil {
		return nil, err
	}

	metrics.AppointmentsCreated.WithLabelValues(ap.Branch).Inc()
	uc.opts.Logger.Info("appointment created",
		zap.String("appointment_id", ap.AppointmentID),
		zap.String("booking_id", ap.BookingID),
		zap.Int64("sl_no", ap.SlNo),
	)

	// --------------------------------------------------
	// Best-effort follow-ups
	// --------------------------------------------------
	uc.effects.record(ctx, activity.Entry{
		AppointmentID: ap.AppointmentID,
		UserID:        actor.UserID,
		UserName:      actor.Name,
		Action:        "Created appointment",
	})

	if ap.AppointmentDate == timezone.Tomorrow(now, uc.opts.Location) {
		uc.effects.enqueueReminder(ctx, ap)
	}

	return ap, nil
}
