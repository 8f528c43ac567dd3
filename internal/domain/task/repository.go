package task

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

var ErrNotFound = errors.New("task: not found")

type Repository interface {
	Create(ctx context.Context, t *models.Task) error
	GetByID(ctx context.Context, taskID string) (*models.Task, error)

	// FirstPending returns the oldest pending task of the given type for one
	// appointment, or ErrNotFound.
	FirstPending(ctx context.Context, appointmentID string, typ Type) (*models.Task, error)

	// MarkCompleted moves a pending task to completed. It reports false when
	// the task was not pending anymore.
	MarkCompleted(ctx context.Context, taskID string, at time.Time) (bool, error)

	// List filters by assignee and status; empty values match everything.
	List(ctx context.Context, assignedTo string, status Status) ([]models.Task, error)
}
