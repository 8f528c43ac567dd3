package appointment

import (
	"context"
	"errors"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(ctx context.Context, appointmentID string) (*models.Appointment, error) {
	ap, err := uc.repo.GetByID(ctx, appointmentID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrNotFound("appointment_not_found", "Appointment not found")
	}
	return ap, err
}
