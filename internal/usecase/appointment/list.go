package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/appointment"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/timezone"
)

type ListAppointments struct {
	repo domain.Repository
	opts Options
}

func NewListAppointments(repo domain.Repository, opts Options) *ListAppointments {
	return &ListAppointments{repo: repo, opts: opts.withDefaults()}
}

// Execute lists appointments ordered by date then time, capped at
// domain.MaxListRows.
func (uc *ListAppointments) Execute(ctx context.Context, filter domain.ListFilter) ([]models.Appointment, error) {
	q, err := filter.Resolve(timezone.Today(uc.opts.Clock(), uc.opts.Location))
	if err != nil {
		return nil, err
	}

	list, err := uc.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Appointment{}
	}
	return list, nil
}
