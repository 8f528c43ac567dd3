package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

var _ domain.Repository = (*AppointmentGormRepository)(nil)

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *AppointmentGormRepository) WithTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Sequences / create
// --------------------------------------------------

func (r *AppointmentGormRepository) LastSequences(
	ctx context.Context,
) (domain.Sequences, error) {

	var seq domain.Sequences

	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Select("COALESCE(MAX(sl_no), 0)").
		Scan(&seq.LastSlNo).Error; err != nil {
		return domain.Sequences{}, err
	}

	// Zero padding is fixed-width until the counter outgrows it, so longer
	// ids always sort after shorter ones.
	var last []string
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Order("LENGTH(booking_id) DESC").
		Order("booking_id DESC").
		Limit(1).
		Pluck("booking_id", &last).Error; err != nil {
		return domain.Sequences{}, err
	}
	if len(last) > 0 {
		seq.LastBookingID = last[0]
	}

	return seq, nil
}

func (r *AppointmentGormRepository) Create(
	ctx context.Context,
	ap *models.Appointment,
) error {
	err := r.db.WithContext(ctx).Create(ap).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrSequenceTaken
	}
	return err
}

// --------------------------------------------------
// Read
// --------------------------------------------------

func (r *AppointmentGormRepository) GetByID(
	ctx context.Context,
	appointmentID string,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		First(&ap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) FindByIDs(
	ctx context.Context,
	appointmentIDs []string,
) ([]models.Appointment, error) {

	if len(appointmentIDs) == 0 {
		return nil, nil
	}

	var list []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("appointment_id IN ?", appointmentIDs).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AppointmentGormRepository) List(
	ctx context.Context,
	q domain.Query,
) ([]models.Appointment, error) {

	tx := r.db.WithContext(ctx).Model(&models.Appointment{})

	d := q.Dates
	if d.Equal != "" {
		tx = tx.Where("appointment_date = ?", d.Equal)
	}
	if d.After != "" {
		tx = tx.Where("appointment_date > ?", d.After)
	}
	if d.From != "" {
		tx = tx.Where("appointment_date >= ?", d.From)
	}
	if d.Until != "" {
		tx = tx.Where("appointment_date <= ?", d.Until)
	}
	if d.To != "" {
		tx = tx.Where("appointment_date < ?", d.To)
	}

	if len(q.Equals) > 0 {
		tx = tx.Where(q.Equals)
	}

	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var list []models.Appointment
	if err := tx.
		Order("appointment_date ASC").
		Order("appointment_time ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// --------------------------------------------------
// Update
// --------------------------------------------------

func (r *AppointmentGormRepository) Save(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

// --------------------------------------------------
// Duplicates
// --------------------------------------------------

func matchColumn(field domain.MatchField) (string, error) {
	switch field {
	case domain.MatchPhone, domain.MatchVehicle:
		return string(field), nil
	}
	return "", fmt.Errorf("unknown match field %q", field)
}

func (r *AppointmentGormRepository) ExistsCreatedSince(
	ctx context.Context,
	field domain.MatchField,
	value string,
	since time.Time,
) (bool, error) {

	column, err := matchColumn(field)
	if err != nil {
		return false, err
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(column+" = ?", value).
		Where("created_at >= ?", since).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) ListCreatedSince(
	ctx context.Context,
	field domain.MatchField,
	value string,
	since time.Time,
	minDate string,
	limit int,
) ([]models.Appointment, error) {

	column, err := matchColumn(field)
	if err != nil {
		return nil, err
	}

	tx := r.db.WithContext(ctx).
		Where(column+" = ?", value).
		Where("created_at >= ?", since)
	if minDate != "" {
		tx = tx.Where("appointment_date >= ?", minDate)
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}

	var list []models.Appointment
	if err := tx.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
