package settings

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dealer-crm/internal/audit"
	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/settings"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/user"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/ids"
	"github.com/BruksfildServices01/dealer-crm/internal/logging"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

type ServiceConfig struct {
	Repository domain.Repository
	IDs        ids.Generator
	Clock      func() time.Time
	Audit      audit.Recorder
	Logger     *zap.Logger
}

// Service is the settings registry: the versioned value lists, branches and
// per-user page preferences.
type Service struct {
	repo   domain.Repository
	ids    ids.Generator
	clock  func() time.Time
	audit  audit.Recorder
	logger *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("settings: repository is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.IDs == nil {
		cfg.IDs = ids.NewUUIDGenerator()
	}
	return &Service{
		repo:   cfg.Repository,
		ids:    cfg.IDs,
		clock:  cfg.Clock,
		audit:  cfg.Audit,
		logger: logging.OrNop(cfg.Logger),
	}, nil
}

func requireCRM(actor *models.User) error {
	if !user.IsAdmin(actor.Role) {
		return httperr.ErrPermissionDenied("crm_only", "Only CRM can change settings.")
	}
	return nil
}

// ===============================
// Settings
// ===============================

// Get returns the settings record, seeding the defaults on first read.
func (s *Service) Get(ctx context.Context) (*models.Settings, error) {
	current, err := s.repo.Get(ctx)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	seed := domain.Defaults()
	seed.UpdatedAt = s.clock().UTC()
	if err := s.repo.Create(ctx, &seed); err != nil {
		return nil, err
	}
	s.logger.Info("seeded default settings")

	return s.repo.Get(ctx)
}

// AllowedValues lists the configured values of one kind.
func (s *Service) AllowedValues(ctx context.Context, kind domain.Kind) ([]string, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Values(current, kind), nil
}

// UpdateInput replaces the lists that are present.
type UpdateInput struct {
	BranchTypes                 *[]string `json:"branch_types"`
	Branches                    *[]string `json:"branches"`
	ServiceAdvisors             *[]string `json:"service_advisors"`
	Sources                     *[]string `json:"sources"`
	ServiceTypes                *[]string `json:"service_types"`
	VehicleModels               *[]string `json:"vehicle_models"`
	NMinus1ConfirmationStatuses *[]string `json:"n_minus_1_confirmation_statuses"`
	AppointmentStatuses         *[]string `json:"appointment_statuses"`
	AppointmentDayOutcomes      *[]string `json:"appointment_day_outcomes"`
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := map[string]bool{}
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func (s *Service) Update(ctx context.Context, actor *models.User, in UpdateInput) (*models.Settings, error) {
	if err := requireCRM(actor); err != nil {
		return nil, err
	}

	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	var changed []string
	replace := func(kind domain.Kind, dst *[]string, src *[]string) {
		if src == nil {
			return
		}
		*dst = cleanList(*src)
		changed = append(changed, string(kind))
	}
	replace(domain.KindBranchTypes, &current.BranchTypes, in.BranchTypes)
	replace(domain.KindBranches, &current.Branches, in.Branches)
	replace(domain.KindServiceAdvisors, &current.ServiceAdvisors, in.ServiceAdvisors)
	replace(domain.KindSources, &current.Sources, in.Sources)
	replace(domain.KindServiceTypes, &current.ServiceTypes, in.ServiceTypes)
	replace(domain.KindVehicleModels, &current.VehicleModels, in.VehicleModels)
	replace(domain.KindN1Statuses, &current.NMinus1ConfirmationStatuses, in.NMinus1ConfirmationStatuses)
	replace(domain.KindAppointmentStatuses, &current.AppointmentStatuses, in.AppointmentStatuses)
	replace(domain.KindOutcomes, &current.AppointmentDayOutcomes, in.AppointmentDayOutcomes)

	if len(changed) == 0 {
		return current, nil
	}

	current.Version++
	current.UpdatedAt = s.clock().UTC()
	if err := s.repo.Save(ctx, current); err != nil {
		return nil, err
	}

	audit.Emit(s.audit, audit.Event{
		UserID:   actor.UserID,
		Action:   audit.ActionSettingsUpdate,
		Entity:   audit.EntitySettings,
		EntityID: current.SettingsID,
		Metadata: map[string]any{"fields": changed, "version": current.Version},
	})

	return current, nil
}

// ===============================
// Branches
// ===============================

type BranchInput struct {
	Location  string  `json:"location" binding:"required"`
	Type      string  `json:"type" binding:"required"`
	Address   *string `json:"address"`
	IsPrimary bool    `json:"is_primary"`
}

type BranchPatch struct {
	Location  *string `json:"location"`
	Type      *string `json:"type"`
	Address   *string `json:"address"`
	IsPrimary *bool   `json:"is_primary"`
}

func (s *Service) ListBranches(ctx context.Context) ([]models.Branch, error) {
	return s.repo.ListBranches(ctx)
}

func (s *Service) CreateBranch(ctx context.Context, actor *models.User, in BranchInput) (*models.Branch, error) {
	if err := requireCRM(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Location) == "" {
		return nil, httperr.ErrValidation("invalid_location", "location is required")
	}

	b := &models.Branch{
		BranchID:  s.ids.NewID(ids.PrefixBranch),
		Location:  strings.TrimSpace(in.Location),
		Type:      in.Type,
		Address:   in.Address,
		IsPrimary: in.IsPrimary,
		CreatedAt: s.clock().UTC(),
	}
	if err := s.repo.CreateBranch(ctx, b); err != nil {
		return nil, err
	}

	audit.Emit(s.audit, audit.Event{
		UserID:   actor.UserID,
		Action:   audit.ActionBranchCreate,
		Entity:   audit.EntityBranch,
		EntityID: b.BranchID,
		Metadata: map[string]any{"location": b.Location},
	})
	return b, nil
}

func (s *Service) getBranch(ctx context.Context, branchID string) (*models.Branch, error) {
	b, err := s.repo.GetBranch(ctx, branchID)
	if errors.Is(err, domain.ErrBranchNotFound) {
		return nil, httperr.ErrNotFound("branch_not_found", "Branch not found")
	}
	return b, err
}

func (s *Service) UpdateBranch(ctx context.Context, actor *models.User, branchID string, in BranchPatch) (*models.Branch, error) {
	if err := requireCRM(actor); err != nil {
		return nil, err
	}

	b, err := s.getBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	if in.Location == nil && in.Type == nil && in.Address == nil && in.IsPrimary == nil {
		return nil, httperr.ErrValidation("no_fields", "No fields to update")
	}
	if in.Location != nil {
		b.Location = strings.TrimSpace(*in.Location)
	}
	if in.Type != nil {
		b.Type = *in.Type
	}
	if in.Address != nil {
		b.Address = in.Address
	}
	if in.IsPrimary != nil {
		b.IsPrimary = *in.IsPrimary
	}

	if err := s.repo.SaveBranch(ctx, b); err != nil {
		return nil, err
	}

	audit.Emit(s.audit, audit.Event{
		UserID:   actor.UserID,
		Action:   audit.ActionBranchUpdate,
		Entity:   audit.EntityBranch,
		EntityID: b.BranchID,
	})
	return b, nil
}

func (s *Service) DeleteBranch(ctx context.Context, actor *models.User, branchID string) error {
	if err := requireCRM(actor); err != nil {
		return err
	}

	b, err := s.getBranch(ctx, branchID)
	if err != nil {
		return err
	}
	if b.IsPrimary {
		return httperr.ErrPermissionDenied("primary_branch", "Cannot delete primary branch")
	}

	if err := s.repo.DeleteBranch(ctx, branchID); err != nil {
		if errors.Is(err, domain.ErrBranchNotFound) {
			return httperr.ErrNotFound("branch_not_found", "Branch not found")
		}
		return err
	}

	audit.Emit(s.audit, audit.Event{
		UserID:   actor.UserID,
		Action:   audit.ActionBranchDelete,
		Entity:   audit.EntityBranch,
		EntityID: branchID,
		Metadata: map[string]any{"location": b.Location},
	})
	return nil
}

// ===============================
// Preferences
// ===============================

type PreferenceInput struct {
	HiddenColumns []string `json:"hidden_columns"`
	ColumnOrder   []string `json:"column_order"`
}

// GetPreference returns the stored layout of page, or an empty one.
func (s *Service) GetPreference(ctx context.Context, userID, page string) (*models.UserPreference, error) {
	pref, err := s.repo.GetPreference(ctx, userID, page)
	if errors.Is(err, domain.ErrNotFound) {
		return &models.UserPreference{
			UserID:        userID,
			Page:          page,
			HiddenColumns: []string{},
			ColumnOrder:   []string{},
		}, nil
	}
	return pref, err
}

func (s *Service) SavePreference(ctx context.Context, userID, page string, in PreferenceInput) (*models.UserPreference, error) {
	if strings.TrimSpace(page) == "" {
		return nil, httperr.ErrValidation("invalid_page", "page is required")
	}

	pref := &models.UserPreference{
		UserID:        userID,
		Page:          page,
		HiddenColumns: in.HiddenColumns,
		ColumnOrder:   in.ColumnOrder,
	}
	if pref.HiddenColumns == nil {
		pref.HiddenColumns = []string{}
	}
	if pref.ColumnOrder == nil {
		pref.ColumnOrder = []string{}
	}

	if err := s.repo.SavePreference(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
