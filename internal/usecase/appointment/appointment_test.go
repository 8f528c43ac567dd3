package appointment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/dealer-crm/internal/activity"
	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/infra/repository"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/testutil"
	"github.com/BruksfildServices01/dealer-crm/internal/usecase/duplicate"
	"github.com/BruksfildServices01/dealer-crm/internal/usecase/settings"
	tasks "github.com/BruksfildServices01/dealer-crm/internal/usecase/task"
)

type fixture struct {
	db       *gorm.DB
	repo     *repository.AppointmentGormRepository
	activity *activity.Logger
	tasks    *tasks.Scheduler

	create *CreateAppointment
	update *UpdateAppointment
	get    *GetAppointment
	list   *ListAppointments

	cre, cre2, reception, crm *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	gen := &testutil.SeqIDs{}

	repo := repository.NewAppointmentGormRepository(db)
	logger := activity.NewLogger(repository.NewActivityGormRepository(db), gen, testutil.Clock)
	scheduler := tasks.NewScheduler(repository.NewTaskGormRepository(db), repo, gen, testutil.Clock, nil)
	registry, err := settings.NewService(settings.ServiceConfig{
		Repository: repository.NewSettingsGormRepository(db),
		IDs:        gen,
		Clock:      testutil.Clock,
	})
	require.NoError(t, err)

	opts := Options{BookingPrefix: "#SILB", Clock: testutil.Clock, IDs: gen}
	detector := duplicate.NewDetector(repo, nil, testutil.Clock)

	return &fixture{
		db:        db,
		repo:      repo,
		activity:  logger,
		tasks:     scheduler,
		create:    NewCreateAppointment(repo, detector, logger, scheduler, opts),
		update:    NewUpdateAppointment(repo, registry, logger, scheduler, opts),
		get:       NewGetAppointment(repo),
		list:      NewListAppointments(repo, opts),
		cre:       testutil.CreateUser(t, db, "user_cre1", "Asha", "CRE"),
		cre2:      testutil.CreateUser(t, db, "user_cre2", "Bala", "CRE"),
		reception: testutil.CreateUser(t, db, "user_rec", "Chitra", "Receptionist"),
		crm:       testutil.CreateUser(t, db, "user_crm", "Dev", "CRM"),
	}
}

func input(date string) CreateAppointmentInput {
	reg := "ka 01 ab 1234"
	return CreateAppointmentInput{
		Branch:          "Main Branch",
		AppointmentDate: date,
		AppointmentTime: "10:30",
		Source:          "SDR",
		ServiceType:     "PMS",
		CustomerName:    "Ravi Kumar",
		CustomerPhone:   "98765-43210",
		VehicleRegNo:    &reg,
	}
}

func (f *fixture) book(t *testing.T, actor *models.User, in CreateAppointmentInput) *models.Appointment {
	t.Helper()
	ap, err := f.create.Execute(context.Background(), actor, in)
	require.NoError(t, err)
	return ap
}

func (f *fixture) updateLogs(t *testing.T, appointmentID string) []models.ActivityLog {
	t.Helper()
	logs, err := f.activity.ListForAppointment(context.Background(), appointmentID)
	require.NoError(t, err)

	var out []models.ActivityLog
	for _, l := range logs {
		if l.Action != "Created appointment" {
			out = append(out, l)
		}
	}
	return out
}

func (f *fixture) tasksFor(t *testing.T, appointmentID string) []models.Task {
	t.Helper()
	var list []models.Task
	require.NoError(t, f.db.Where("appointment_id = ?", appointmentID).Find(&list).Error)
	return list
}

func str(s string) *string { return &s }

// ======================================================
// CREATE
// ======================================================

func TestCreateAssignsIncreasingSequences(t *testing.T) {
	f := newFixture(t)

	a := f.book(t, f.cre, input(testutil.Today))
	b := f.book(t, f.reception, input(testutil.Today))
	c := f.book(t, f.crm, input(testutil.Tomorrow))

	assert.Equal(t, []int64{1, 2, 3}, []int64{a.SlNo, b.SlNo, c.SlNo})
	assert.Equal(t, "#SILB0001", a.BookingID)
	assert.Equal(t, "#SILB0002", b.BookingID)
	assert.Equal(t, "#SILB0003", c.BookingID)
}

func TestCreateNormalizesAndSetsDefaults(t *testing.T) {
	f := newFixture(t)

	ap := f.book(t, f.cre, input(testutil.Today))

	assert.Equal(t, "9876543210", ap.CustomerPhone)
	require.NotNil(t, ap.VehicleRegNo)
	assert.Equal(t, "KA01AB1234", *ap.VehicleRegNo)
	assert.Equal(t, domain.N1Pending, ap.N1Status)
	assert.Equal(t, domain.StatusBooked, ap.AppointmentStatus)
	assert.Empty(t, ap.RescheduleHistory)
	assert.False(t, ap.LostCustomer)
	assert.Equal(t, f.cre.UserID, ap.AssignedCREUser)
	assert.Equal(t, f.cre.UserID, ap.CreatedByUser)

	logs, err := f.activity.ListForAppointment(context.Background(), ap.AppointmentID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Created appointment", logs[0].Action)
	assert.Equal(t, "Asha", logs[0].UserName)
}

func TestCreateMarksDuplicatesAtBookingTime(t *testing.T) {
	f := newFixture(t)

	first := f.book(t, f.cre, input(testutil.Yesterday))
	assert.False(t, first.DuplicatePhoneLast30Days)
	assert.False(t, first.DuplicateVehicleLast30Days)

	in := input(testutil.Tomorrow)
	in.CustomerPhone = "9000000000"
	second := f.book(t, f.cre, in)
	assert.False(t, second.DuplicatePhoneLast30Days)
	assert.True(t, second.DuplicateVehicleLast30Days)

	in = input(testutil.Tomorrow)
	in.VehicleRegNo = nil
	third := f.book(t, f.cre, in)
	assert.True(t, third.DuplicatePhoneLast30Days)
	assert.False(t, third.DuplicateVehicleLast30Days)

	reloaded, err := f.get.Execute(context.Background(), first.AppointmentID)
	require.NoError(t, err)
	assert.False(t, reloaded.DuplicatePhoneLast30Days, "markers are a snapshot")
}

func TestCreateTomorrowEnqueuesReminderForAssignee(t *testing.T) {
	f := newFixture(t)

	today := f.book(t, f.cre, input(testutil.Today))
	assert.Empty(t, f.tasksFor(t, today.AppointmentID))

	tomorrow := f.book(t, f.cre, input(testutil.Tomorrow))
	list := f.tasksFor(t, tomorrow.AppointmentID)
	require.Len(t, list, 1)
	assert.Equal(t, "n_minus_1_reminder", list[0].TaskType)
	assert.Equal(t, "pending", list[0].Status)
	assert.Equal(t, f.cre.UserID, list[0].AssignedTo)
}

func TestCreateAssignment(t *testing.T) {
	f := newFixture(t)

	in := input(testutil.Tomorrow)
	in.AssignedCREUser = str(f.cre2.UserID)

	ap := f.book(t, f.crm, in)
	assert.Equal(t, f.cre2.UserID, ap.AssignedCREUser)
	assert.Equal(t, f.crm.UserID, ap.CreatedByUser)
	require.Len(t, f.tasksFor(t, ap.AppointmentID), 1)
	assert.Equal(t, f.cre2.UserID, f.tasksFor(t, ap.AppointmentID)[0].AssignedTo)

	_, err := f.create.Execute(context.Background(), f.cre, in)
	assert.True(t, httperr.IsBusiness(err, "assignment_forbidden"), "got %v", err)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)

	in := input(testutil.Today)
	in.CustomerName = "  "
	_, err := f.create.Execute(context.Background(), f.cre, in)
	assert.True(t, httperr.IsBusiness(err, "invalid_customer_name"), "got %v", err)

	in = input("10-03-2026")
	_, err = f.create.Execute(context.Background(), f.cre, in)
	assert.True(t, httperr.IsBusiness(err, "invalid_appointment_date"), "got %v", err)

	in = input(testutil.Today)
	in.CustomerEmail = str("not-an-email")
	_, err = f.create.Execute(context.Background(), f.cre, in)
	assert.True(t, httperr.IsKind(err, httperr.KindValidation), "got %v", err)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)

	guest := &models.User{UserID: "user_guest", Role: "Guest"}
	_, err := f.create.Execute(context.Background(), guest, input(testutil.Today))
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, activity.Entry) (*models.ActivityLog, error) {
	return nil, errors.New("disk full")
}

func TestCreateSurvivesActivityFailure(t *testing.T) {
	f := newFixture(t)
	core, logs := observer.New(zapcore.WarnLevel)

	uc := NewCreateAppointment(
		f.repo,
		duplicate.NewDetector(f.repo, nil, testutil.Clock),
		failingRecorder{},
		f.tasks,
		Options{Clock: testutil.Clock, Logger: zap.New(core)},
	)

	ap, err := uc.Execute(context.Background(), f.cre, input(testutil.Tomorrow))
	require.NoError(t, err)
	assert.Len(t, f.tasksFor(t, ap.AppointmentID), 1)

	require.Equal(t, 1, logs.FilterMessage("activity log write failed").Len())
}

// ======================================================
// UPDATE
// ======================================================

func TestUpdateNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.update.Execute(context.Background(), f.crm, "appt_missing", domain.Patch{N1Notes: str("x")})
	assert.True(t, httperr.IsKind(err, httperr.KindNotFound))
}

func TestUpdateByOtherCREIsDeniedWithoutWrites(t *testing.T) {
	f := newFixture(t)
	ap := f.book(t, f.cre, input(testutil.Today))

	_, err := f.update.Execute(context.Background(), f.cre2, ap.AppointmentID, domain.Patch{CustomerName: str("Someone Else")})
	assert.True(t, httperr.IsKind(err, httperr.KindPermissionDenied))

	got, err := f.get.Execute(context.Background(), ap.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", got.CustomerName)
	assert.Empty(t, f.updateLogs(t, ap.AppointmentID))
}

func TestUpdateEquivalentValuesLogNothing(t *testing.T) {
	f := newFixture(t)
	ap := f.book(t, f.cre, input(testutil.Today))

	got, err := f.update.Execute(context.Background(), f.cre, ap.AppointmentID, domain.Patch{
		N1Notes:      str(""),
		CancelReason: str("None"),
		CustomerName: str("Ravi Kumar"),
	})
	require.NoError(t, err)
	assert.Empty(t, f.updateLogs(t, ap.AppointmentID))
	assert.True(t, got.UpdatedAt.Equal(testutil.Now))

	stored, err := f.get.Execute(context.Background(), ap.AppointmentID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.Equal(testutil.Now), "updated_at %s", stored.UpdatedAt)
}

func TestUpdateRealChangeLogsOncePerField(t *testing.T) {
	f := newFixture(t)
	ap := f.book(t, f.cre, input(testutil.Today))

	yes := true
	got, err := f.update.Execute(context.Background(), f.cre, ap.AppointmentID, domain.Patch{
		Model:            str("Kiger"),
		PriorityCustomer: &yes,
	})
	require.NoError(t, err)
	assert.True(t, got.PriorityCustomer)

	logs := f.updateLogs(t, ap.AppointmentID)
	require.Len(t, logs, 2)

	byField := map[string]models.ActivityLog{}
	for _, l := range logs {
		require.NotNil(t, l.FieldChanged)
		byField[*l.FieldChanged] = l
	}

	model := byField["model"]
	assert.Equal(t, "Updated model", model.Action)
	assert.Nil(t, model.OldValue)
	assert.Equal(t, "Kiger", *model.NewValue)

	priority := byField["priority_customer"]
	assert.Equal(t, "false", *priority.OldValue)
	assert.Equal(t, "true", *priority.NewValue)
}

func TestUpdateOutcomePermissions(t *testing.T) {
	f := newFixture(t)
	today := f.book(t, f.cre, input(testutil.Today))
	later := f.book(t, f.cre, input(testutil.Tomorrow))
	outcome := domain.Patch{AppointmentDayOutcome: str(domain.OutcomeReported)}

	_, err := f.update.Execute(context.Background(), f.cre, today.AppointmentID, outcome)
	assert.True(t, httperr.IsBusiness(err, "outcome_forbidden"))

	_, err = f.update.Execute(context.Background(), f.reception, later.AppointmentID, outcome)
	assert.True(t, httperr.IsBusiness(err, "outcome_not_today"))

	got, err := f.update.Execute(context.Background(), f.reception, today.AppointmentID, outcome)
	require.NoError(t, err)
	require.NotNil(t, got.AppointmentDayOutcome)
	assert.Equal(t, domain.OutcomeReported, *got.AppointmentDayOutcome)

	_, err = f.update.Execute(context.Background(), f.crm, later.AppointmentID, domain.Patch{AssignedCREUser: str(f.cre2.UserID)})
	require.NoError(t, err)
}

func TestUpdateRejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)
	ap := f.book(t, f.cre, input(testutil.Today))

	_, err := f.update.Execute(context.Background(), f.crm, ap.AppointmentID, domain.Patch{AppointmentStatus: str("Teleported")})
	assert.True(t, httperr.IsBusiness(err, "invalid_appointment_status"), "got %v", err)
	assert.Empty(t, f.updateLogs(t, ap.AppointmentID))
}

func TestUpdateRejectsEmptyRequiredStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ap := f.book(t, f.cre, input(testutil.Tomorrow))

	_, err := f.update.Execute(ctx, f.crm, ap.AppointmentID, domain.Patch{AppointmentStatus: str("")})
	assert.True(t, httperr.IsBusiness(err, "invalid_appointment_status"), "got %v", err)

	_, err = f.update.Execute(ctx, f.crm, ap.AppointmentID, domain.Patch{N1Status: str("")})
	assert.True(t, httperr.IsBusiness(err, "invalid_n_minus_1_confirmation_status"), "got %v", err)

	got, err := f.get.Execute(ctx, ap.AppointmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, got.AppointmentStatus)
	assert.Equal(t, domain.N1Pending, got.N1Status)
	assert.Empty(t, f.updateLogs(t, ap.AppointmentID))

	pending := f.tasksFor(t, ap.AppointmentID)
	require.Len(t, pending, 1)
	assert.Equal(t, "pending", pending[0].Status)
}

func TestUpdateRescheduleSpawnsSuccessor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orig := f.book(t, f.cre, input(testutil.Tomorrow))
	other := f.book(t, f.cre, input(testutil.Today))

	got, err := f.update.Execute(ctx, f.cre, orig.AppointmentID, domain.Patch{
		AppointmentStatus: str(domain.StatusRescheduled),
		RescheduleDate:    str("2026-03-15"),
		RescheduleRemarks: str("customer travelling"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusRescheduled, got.AppointmentStatus)
	require.Len(t, got.RescheduleHistory, 1)
	entry := got.RescheduleHistory[0]
	assert.Equal(t, testutil.Tomorrow, entry.FromDate)
	assert.Equal(t, "2026-03-15", entry.ToDate)
	assert.Equal(t, "customer travelling", entry.Remarks)
	assert.Equal(t, "Asha", entry.RescheduledBy)

	list, err := f.repo.List(ctx, domain.Query{Equals: map[string]any{"booking_id": orig.BookingID}})
	require.NoError(t, err)
	require.Len(t, list, 2)

	var successor models.Appointment
	for _, ap := range list {
		if ap.AppointmentID != orig.AppointmentID {
			successor = ap
		}
	}
	assert.Equal(t, other.SlNo+1, successor.SlNo)
	assert.Equal(t, "2026-03-15", successor.AppointmentDate)
	assert.Equal(t, domain.N1Pending, successor.N1Status)
	assert.Equal(t, domain.StatusBooked, successor.AppointmentStatus)
	assert.False(t, successor.DocketReadiness)
	assert.True(t, successor.IsRescheduled)
	require.NotNil(t, successor.RescheduledFrom)
	assert.Equal(t, orig.AppointmentID, *successor.RescheduledFrom)
	assert.Equal(t, got.RescheduleHistory, successor.RescheduleHistory)

	logs, err := f.activity.ListForAppointment(ctx, successor.AppointmentID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Rescheduled from 2026-03-11 to 2026-03-15", logs[0].Action)

	_, err = f.update.Execute(ctx, f.cre, orig.AppointmentID, domain.Patch{
		AppointmentStatus: str(domain.StatusRescheduled),
		RescheduleDate:    str("2026-03-20"),
	})
	assert.True(t, httperr.IsBusiness(err, "already_rescheduled"))

	again, err := f.update.Execute(ctx, f.cre, successor.AppointmentID, domain.Patch{
		AppointmentStatus: str(domain.StatusRescheduled),
		RescheduleDate:    str("2026-03-20"),
	})
	require.NoError(t, err)
	require.Len(t, again.RescheduleHistory, 2)
	assert.Equal(t, "2026-03-15", again.RescheduleHistory[1].FromDate)
}

func TestUpdateRescheduledWithoutDateOnlyChangesStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ap := f.book(t, f.crm, input(testutil.Today))

	got, err := f.update.Execute(ctx, f.crm, ap.AppointmentID, domain.Patch{AppointmentStatus: str(domain.StatusRescheduled)})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRescheduled, got.AppointmentStatus)
	assert.Empty(t, got.RescheduleHistory)

	list, err := f.repo.List(ctx, domain.Query{Equals: map[string]any{"booking_id": ap.BookingID}})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateConfirmationCompletesOnlyMatchingReminder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.book(t, f.cre, input(testutil.Tomorrow))
	b := f.book(t, f.cre, input(testutil.Tomorrow))

	_, err := f.update.Execute(ctx, f.cre, a.AppointmentID, domain.Patch{N1Status: str(domain.N1Pending)})
	require.NoError(t, err)
	assert.Equal(t, "pending", f.tasksFor(t, a.AppointmentID)[0].Status)

	_, err = f.update.Execute(ctx, f.cre, a.AppointmentID, domain.Patch{N1Status: str(domain.N1Confirmed)})
	require.NoError(t, err)

	ta := f.tasksFor(t, a.AppointmentID)
	require.Len(t, ta, 1)
	assert.Equal(t, "completed", ta[0].Status)
	require.NotNil(t, ta[0].CompletedAt)

	tb := f.tasksFor(t, b.AppointmentID)
	require.Len(t, tb, 1)
	assert.Equal(t, "pending", tb[0].Status)
}

// ======================================================
// LIST
// ======================================================

func TestListDefaultsToToday(t *testing.T) {
	f := newFixture(t)
	f.book(t, f.cre, input(testutil.Today))
	f.book(t, f.cre, input(testutil.Tomorrow))

	list, err := f.list.Execute(context.Background(), domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, testutil.Today, list[0].AppointmentDate)

	list, err = f.list.Execute(context.Background(), domain.ListFilter{View: domain.ViewUpcoming})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, testutil.Tomorrow, list[0].AppointmentDate)
}
