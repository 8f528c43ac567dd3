package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

var (
	ErrNotFound = errors.New("appointment: not found")

	// ErrSequenceTaken means another writer claimed the same sl_no first.
	ErrSequenceTaken = errors.New("appointment: sequence already taken")
)

// Sequences holds the highest identifiers currently in use.
type Sequences struct {
	LastSlNo      int64
	LastBookingID string
}

// MatchField selects the column a duplicate lookup compares.
type MatchField string

const (
	MatchPhone   MatchField = "customer_phone"
	MatchVehicle MatchField = "vehicle_reg_no"
)

type Repository interface {
	// -------- Transactions --------
	WithTx(
		ctx context.Context,
		fn func(tx Repository) error,
	) error

	// -------- Sequences / create --------
	LastSequences(
		ctx context.Context,
	) (Sequences, error)

	Create(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Read --------
	GetByID(
		ctx context.Context,
		appointmentID string,
	) (*models.Appointment, error)

	FindByIDs(
		ctx context.Context,
		appointmentIDs []string,
	) ([]models.Appointment, error)

	List(
		ctx context.Context,
		q Query,
	) ([]models.Appointment, error)

	// -------- Update --------
	Save(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// -------- Duplicates --------
	ExistsCreatedSince(
		ctx context.Context,
		field MatchField,
		value string,
		since time.Time,
	) (bool, error)

	ListCreatedSince(
		ctx context.Context,
		field MatchField,
		value string,
		since time.Time,
		minDate string,
		limit int,
	) ([]models.Appointment, error)
}
