package settings

import (
	"context"
	"errors"
	"slices"

	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

var (
	ErrNotFound       = errors.New("settings: not found")
	ErrBranchNotFound = errors.New("settings: branch not found")
)

// Kind names one of the configurable value lists.
type Kind string

const (
	KindBranchTypes         Kind = "branch_types"
	KindBranches            Kind = "branches"
	KindServiceAdvisors     Kind = "service_advisors"
	KindSources             Kind = "sources"
	KindServiceTypes        Kind = "service_types"
	KindVehicleModels       Kind = "vehicle_models"
	KindN1Statuses          Kind = "n_minus_1_confirmation_statuses"
	KindAppointmentStatuses Kind = "appointment_statuses"
	KindOutcomes            Kind = "appointment_day_outcomes"
)

// Values returns the list stored under kind.
func Values(s *models.Settings, kind Kind) []string {
	switch kind {
	case KindBranchTypes:
		return s.BranchTypes
	case KindBranches:
		return s.Branches
	case KindServiceAdvisors:
		return s.ServiceAdvisors
	case KindSources:
		return s.Sources
	case KindServiceTypes:
		return s.ServiceTypes
	case KindVehicleModels:
		return s.VehicleModels
	case KindN1Statuses:
		return s.NMinus1ConfirmationStatuses
	case KindAppointmentStatuses:
		return s.AppointmentStatuses
	case KindOutcomes:
		return s.AppointmentDayOutcomes
	}
	return nil
}

// Defaults is the record seeded the first time settings are read.
func Defaults() models.Settings {
	return models.Settings{
		SettingsID:                  models.MainSettingsID,
		Version:                     1,
		BranchTypes:                 []string{"Sales", "Aftersales"},
		Branches:                    []string{"Main Branch", "North Branch", "South Branch"},
		ServiceAdvisors:             []string{"SA - John", "SA - Sarah", "SA - Mike"},
		Sources:                     []string{"SDR", "Incoming", "MYR", "Other"},
		ServiceTypes:                []string{"1FS", "2FS", "3FS", "PMS", "RR", "BP", "Others"},
		VehicleModels:               []string{"Kwid", "Triber", "Kiger", "Duster", "Pulse", "Scala", "Lodgy", "Fluence", "Koleos"},
		NMinus1ConfirmationStatuses: []string{"Pending", "Confirmed", "Not Reachable", "Rescheduled"},
		AppointmentStatuses:         []string{"Booked", "Confirmed", "Closed"},
		AppointmentDayOutcomes:      []string{"Reported", "Rescheduled", "Cancelled", "No-show"},
	}
}

// Contains reports whether value is listed under kind.
func Contains(s *models.Settings, kind Kind, value string) bool {
	return slices.Contains(Values(s, kind), value)
}

type Repository interface {
	// -------- Settings --------
	Get(ctx context.Context) (*models.Settings, error)
	Create(ctx context.Context, s *models.Settings) error
	Save(ctx context.Context, s *models.Settings) error

	// -------- Branches --------
	ListBranches(ctx context.Context) ([]models.Branch, error)
	GetBranch(ctx context.Context, branchID string) (*models.Branch, error)
	CreateBranch(ctx context.Context, b *models.Branch) error
	SaveBranch(ctx context.Context, b *models.Branch) error
	DeleteBranch(ctx context.Context, branchID string) error

	// -------- Preferences --------
	GetPreference(ctx context.Context, userID, page string) (*models.UserPreference, error)
	SavePreference(ctx context.Context, p *models.UserPreference) error
}
