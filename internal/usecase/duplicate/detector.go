package duplicate

import (
	"context"
	"time"

	"github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/timezone"
)

const (
	// Window is how far back a booking still counts as a duplicate.
	Window = 30 * 24 * time.Hour

	// perPathLimit caps each lookup path of CheckActive.
	perPathLimit = 10
)

type Result struct {
	DuplicatePhone   bool `json:"duplicate_phone"`
	DuplicateVehicle bool `json:"duplicate_vehicle"`
}

type Detector struct {
	repo  appointment.Repository
	loc   *time.Location
	clock func() time.Time
}

func NewDetector(repo appointment.Repository, loc *time.Location, clock func() time.Time) *Detector {
	if clock == nil {
		clock = time.Now
	}
	return &Detector{repo: repo, loc: loc, clock: clock}
}

// Check reports whether either key was booked within the trailing window,
// regardless of the appointment date. Empty keys are skipped.
func (d *Detector) Check(ctx context.Context, phone, vehicleReg string) (Result, error) {
	var res Result
	since := d.clock().UTC().Add(-Window)

	if phone != "" {
		found, err := d.repo.ExistsCreatedSince(ctx, appointment.MatchPhone, phone, since)
		if err != nil {
			return Result{}, err
		}
		res.DuplicatePhone = found
	}

	if vehicleReg != "" {
		found, err := d.repo.ExistsCreatedSince(ctx, appointment.MatchVehicle, vehicleReg, since)
		if err != nil {
			return Result{}, err
		}
		res.DuplicateVehicle = found
	}

	return res, nil
}

// CheckActive lists recent bookings for either key that are still today or
// ahead, de-duplicated by appointment id.
func (d *Detector) CheckActive(ctx context.Context, phone, vehicleReg string) ([]models.Appointment, error) {
	now := d.clock()
	since := now.UTC().Add(-Window)
	today := timezone.Today(now, d.loc)

	seen := map[string]bool{}
	out := []models.Appointment{}

	lookup := func(field appointment.MatchField, value string) error {
		if value == "" {
			return nil
		}
		list, err := d.repo.ListCreatedSince(ctx, field, value, since, today, perPathLimit)
		if err != nil {
			return err
		}
		for _, ap := range list {
			if seen[ap.AppointmentID] {
				continue
			}
			seen[ap.AppointmentID] = true
			out = append(out, ap)
		}
		return nil
	}

	if err := lookup(appointment.MatchPhone, phone); err != nil {
		return nil, err
	}
	if err := lookup(appointment.MatchVehicle, vehicleReg); err != nil {
		return nil, err
	}

	return out, nil
}
