package task

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/task"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/user"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/ids"
	"github.com/BruksfildServices01/dealer-crm/internal/logging"
	"github.com/BruksfildServices01/dealer-crm/internal/metrics"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

// View is a task enriched with a snapshot of its appointment.
type View struct {
	models.Task
	AppointmentInfo *models.AppointmentInfo `json:"appointment_info"`
}

type Scheduler struct {
	repo         domain.Repository
	appointments appointment.Repository
	ids          ids.Generator
	clock        func() time.Time
	logger       *zap.Logger
}

func NewScheduler(
	repo domain.Repository,
	appointments appointment.Repository,
	gen ids.Generator,
	clock func() time.Time,
	logger *zap.Logger,
) *Scheduler {
	if clock == nil {
		clock = time.Now
	}
	if gen == nil {
		gen = ids.NewUUIDGenerator()
	}
	return &Scheduler{
		repo:         repo,
		appointments: appointments,
		ids:          gen,
		clock:        clock,
		logger:       logging.OrNop(logger),
	}
}

// EnqueueReminder creates a pending N-1 confirmation task.
func (s *Scheduler) EnqueueReminder(ctx context.Context, appointmentID, assignedTo string) (*models.Task, error) {
	t := &models.Task{
		TaskID:        s.ids.NewID(ids.PrefixTask),
		TaskType:      string(domain.TypeN1Reminder),
		AppointmentID: appointmentID,
		AssignedTo:    assignedTo,
		Status:        string(domain.StatusPending),
		CreatedAt:     s.clock().UTC(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// CompleteForAppointment closes the oldest pending reminder of one
// appointment and reports how many tasks it completed (0 or 1). Other task
// types and other appointments are untouched.
func (s *Scheduler) CompleteForAppointment(ctx context.Context, appointmentID string) (int, error) {
	t, err := s.repo.FirstPending(ctx, appointmentID, domain.TypeN1Reminder)
	if errors.Is(err, domain.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	ok, err := s.repo.MarkCompleted(ctx, t.TaskID, s.clock().UTC())
	if err != nil || !ok {
		return 0, err
	}
	metrics.TasksCompleted.WithLabelValues("automatic").Inc()
	return 1, nil
}

// Complete marks a task done on behalf of actor. Completing an already
// completed task is a no-op.
func (s *Scheduler) Complete(ctx context.Context, actor *models.User, taskID string) (*models.Task, error) {
	t, err := s.repo.GetByID(ctx, taskID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrNotFound("task_not_found", "Task not found")
	}
	if err != nil {
		return nil, err
	}

	if user.EffectiveRole(actor.Role) == user.RoleCRE && t.AssignedTo != actor.UserID {
		return nil, httperr.ErrPermissionDenied("not_assigned", "You can only complete your own tasks.")
	}

	if domain.Status(t.Status) == domain.StatusCompleted {
		return t, nil
	}
	if err := domain.ValidateTransition(domain.Status(t.Status), domain.StatusCompleted); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	ok, err := s.repo.MarkCompleted(ctx, t.TaskID, now)
	if err != nil {
		return nil, err
	}
	if ok {
		metrics.TasksCompleted.WithLabelValues("manual").Inc()
	}

	return s.repo.GetByID(ctx, t.TaskID)
}

// ListForUser returns tasks visible to actor: CREs see their own, other
// roles see everyone's. status may be empty.
func (s *Scheduler) ListForUser(ctx context.Context, actor *models.User, status string) ([]View, error) {
	st := domain.Status(status)
	if st != "" && !st.Valid() {
		return nil, httperr.ErrValidation("invalid_status", "status must be pending or completed")
	}

	assignee := ""
	if user.EffectiveRole(actor.Role) == user.RoleCRE {
		assignee = actor.UserID
	}

	tasks, err := s.repo.List(ctx, assignee, st)
	if err != nil {
		return nil, err
	}

	apIDs := make([]string, 0, len(tasks))
	for _, t := range tasks {
		apIDs = append(apIDs, t.AppointmentID)
	}

	aps, err := s.appointments.FindByIDs(ctx, apIDs)
	if err != nil {
		return nil, err
	}
	info := make(map[string]models.AppointmentInfo, len(aps))
	for i := range aps {
		info[aps[i].AppointmentID] = aps[i].Info()
	}

	views := make([]View, 0, len(tasks))
	for _, t := range tasks {
		v := View{Task: t}
		if ai, ok := info[t.AppointmentID]; ok {
			v.AppointmentInfo = &ai
		}
		views = append(views, v)
	}
	return views, nil
}
