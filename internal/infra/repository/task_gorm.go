package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/task"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

type TaskGormRepository struct {
	db *gorm.DB
}

var _ domain.Repository = (*TaskGormRepository)(nil)

func NewTaskGormRepository(db *gorm.DB) *TaskGormRepository {
	return &TaskGormRepository{db: db}
}

func (r *TaskGormRepository) Create(ctx context.Context, t *models.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TaskGormRepository) GetByID(ctx context.Context, taskID string) (*models.Task, error) {
	var t models.Task
	err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskGormRepository) FirstPending(
	ctx context.Context,
	appointmentID string,
	typ domain.Type,
) (*models.Task, error) {

	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ? AND task_type = ? AND status = ?",
			appointmentID, string(typ), string(domain.StatusPending)).
		Order("created_at, task_id").
		Limit(1).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, domain.ErrNotFound
	}
	return &tasks[0], nil
}

// MarkCompleted is a conditional update so two concurrent completions of
// the same task stamp completed_at once.
func (r *TaskGormRepository) MarkCompleted(ctx context.Context, taskID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("task_id = ? AND status = ?", taskID, string(domain.StatusPending)).
		Updates(map[string]any{
			"status":       string(domain.StatusCompleted),
			"completed_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *TaskGormRepository) List(
	ctx context.Context,
	assignedTo string,
	status domain.Status,
) ([]models.Task, error) {

	tx := r.db.WithContext(ctx)
	if assignedTo != "" {
		tx = tx.Where("assigned_to = ?", assignedTo)
	}
	if status != "" {
		tx = tx.Where("status = ?", string(status))
	}

	var tasks []models.Task
	if err := tx.Order("created_at DESC").Limit(1000).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
