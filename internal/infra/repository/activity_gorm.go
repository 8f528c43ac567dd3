package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/dealer-crm/internal/activity"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

type ActivityGormRepository struct {
	db *gorm.DB
}

var _ activity.Repository = (*ActivityGormRepository)(nil)

func NewActivityGormRepository(db *gorm.DB) *ActivityGormRepository {
	return &ActivityGormRepository{db: db}
}

func (r *ActivityGormRepository) Create(ctx context.Context, entry *models.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ActivityGormRepository) ListByAppointment(
	ctx context.Context,
	appointmentID string,
	limit int,
) ([]models.ActivityLog, error) {

	tx := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("timestamp DESC").
		Order("log_id DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var logs []models.ActivityLog
	if err := tx.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
