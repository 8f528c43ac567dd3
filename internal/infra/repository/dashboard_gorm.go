package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	domainappt "github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/dashboard"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

type DashboardGormRepository struct {
	db *gorm.DB
}

var _ domain.Reader = (*DashboardGormRepository)(nil)

func NewDashboardGormRepository(db *gorm.DB) *DashboardGormRepository {
	return &DashboardGormRepository{db: db}
}

func (r *DashboardGormRepository) appointments(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Appointment{})
}

func (r *DashboardGormRepository) CountOn(ctx context.Context, date string) (int64, error) {
	var n int64
	err := r.appointments(ctx).
		Where("appointment_date = ?", date).
		Count(&n).Error
	return n, err
}

func (r *DashboardGormRepository) CountPendingOn(ctx context.Context, date string) (int64, error) {
	var n int64
	err := r.appointments(ctx).
		Where("appointment_date = ? AND n_minus_1_confirmation_status = ?", date, domainappt.N1Pending).
		Count(&n).Error
	return n, err
}

func (r *DashboardGormRepository) GroupOn(
	ctx context.Context,
	group domain.Group,
	date string,
) ([]domain.Bucket, error) {

	switch group {
	case domain.GroupBranch, domain.GroupSA, domain.GroupCRE:
	default:
		return nil, fmt.Errorf("unknown dashboard group %q", group)
	}
	column := string(group)

	var rows []struct {
		BucketKey   *string
		BucketCount int64
	}
	if err := r.appointments(ctx).
		Select(column+" AS bucket_key, COUNT(*) AS bucket_count").
		Where("appointment_date = ?", date).
		Group(column).
		Order(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	buckets := make([]domain.Bucket, 0, len(rows))
	for _, row := range rows {
		key := ""
		if row.BucketKey != nil {
			key = *row.BucketKey
		}
		buckets = append(buckets, domain.Bucket{Key: key, Count: row.BucketCount})
	}
	return buckets, nil
}

func (r *DashboardGormRepository) Window(ctx context.Context, from string) (domain.WindowTotals, error) {
	var totals domain.WindowTotals
	err := r.appointments(ctx).
		Select(
			"COUNT(*) AS total, "+
				"COALESCE(SUM(CASE WHEN appointment_day_outcome = ? THEN 1 ELSE 0 END), 0) AS no_show, "+
				"COALESCE(SUM(CASE WHEN recovered_lost_customer = ? THEN 1 ELSE 0 END), 0) AS recovered",
			domainappt.OutcomeNoShow, true,
		).
		Where("appointment_date >= ?", from).
		Scan(&totals).Error
	return totals, err
}

func (r *DashboardGormRepository) Funnel(ctx context.Context, from string) ([]domain.FunnelRow, error) {
	var rows []domain.FunnelRow
	err := r.appointments(ctx).
		Select(
			"source AS source, COUNT(*) AS booked, "+
				"COALESCE(SUM(CASE WHEN appointment_status IN ? THEN 1 ELSE 0 END), 0) AS confirmed, "+
				"COALESCE(SUM(CASE WHEN appointment_day_outcome = ? THEN 1 ELSE 0 END), 0) AS reported",
			domainappt.ConfirmedStatuses, domainappt.OutcomeReported,
		).
		Where("appointment_date >= ?", from).
		Group("source").
		Order("source").
		Scan(&rows).Error
	return rows, err
}
