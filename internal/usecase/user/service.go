package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/dealer-crm/internal/audit"
	"github.com/BruksfildServices01/dealer-crm/internal/auth"
	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/user"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/ids"
	"github.com/BruksfildServices01/dealer-crm/internal/logging"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/validators"
)

type ServiceConfig struct {
	Repository   domain.Repository
	IDs          ids.Generator
	Clock        func() time.Time
	PrimaryAdmin string
	BcryptCost   int
	Audit        audit.Recorder
	Logger       *zap.Logger
}

// Service is the user directory. Every mutation requires a CRM-level actor.
type Service struct {
	repo         domain.Repository
	ids          ids.Generator
	clock        func() time.Time
	primaryAdmin string
	bcryptCost   int
	audit        audit.Recorder
	logger       *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repository == nil {
		return nil, errors.New("user: repository is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.IDs == nil {
		cfg.IDs = ids.NewUUIDGenerator()
	}
	if cfg.PrimaryAdmin == "" {
		cfg.PrimaryAdmin = "admin"
	}
	return &Service{
		repo:         cfg.Repository,
		ids:          cfg.IDs,
		clock:        cfg.Clock,
		primaryAdmin: cfg.PrimaryAdmin,
		bcryptCost:   cfg.BcryptCost,
		audit:        cfg.Audit,
		logger:       logging.OrNop(cfg.Logger),
	}, nil
}

func requireCRM(actor *models.User) error {
	if actor == nil || !domain.IsAdmin(actor.Role) {
		return httperr.ErrPermissionDenied("crm_only", "Permission denied")
	}
	return nil
}

func (s *Service) load(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, httperr.ErrNotFound("user_not_found", "User not found")
	}
	return u, err
}

func (s *Service) isPrimary(u *models.User) bool {
	return domain.IsPrimaryAdmin(u.Username, s.primaryAdmin)
}

func (s *Service) emit(actor *models.User, action, entityID string, meta any) {
	audit.Emit(s.audit, audit.Event{
		UserID:   actor.UserID,
		Action:   action,
		Entity:   audit.EntityUser,
		EntityID: entityID,
		Metadata: meta,
	})
}

// ===============================
// Reads
// ===============================

func (s *Service) List(ctx context.Context, actor *models.User) ([]models.User, error) {
	if err := requireCRM(actor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// ListCREs is open to any authenticated user.
func (s *Service) ListCREs(ctx context.Context) ([]models.User, error) {
	return s.repo.ListActiveByRole(ctx, domain.RoleCRE)
}

// ===============================
// Create
// ===============================

type CreateInput struct {
	Username     string   `json:"username" validate:"required"`
	Password     string   `json:"password" validate:"required"`
	Name         string   `json:"name" validate:"required"`
	Role         string   `json:"role" validate:"required,oneof=CRE Receptionist CRM DP"`
	Email        *string  `json:"email" validate:"omitempty,email"`
	Mobile       *string  `json:"mobile"`
	Department   string   `json:"department"`
	Designation  string   `json:"designation"`
	Branch       *string  `json:"branch"`
	IsActive     *bool    `json:"is_active"`
	IsLocked     bool     `json:"is_locked"`
	ModuleAccess []string `json:"module_access"`
}

func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.User, error) {
	if err := requireCRM(actor); err != nil {
		return nil, err
	}
	return s.create(ctx, in, actor)
}

func (s *Service) create(ctx context.Context, in CreateInput, actor *models.User) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = validators.NilIfBlank(in.Email)
	in.Mobile = validators.NilIfBlank(in.Mobile)
	in.Branch = validators.NilIfBlank(in.Branch)
	if err := validators.Struct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	access := in.ModuleAccess
	if access == nil {
		access = []string{}
	}

	now := s.clock().UTC()
	u := &models.User{
		UserID:       s.ids.NewID(ids.PrefixUser),
		Username:     in.Username,
		PasswordHash: hash,
		Name:         in.Name,
		Role:         in.Role,
		Email:        in.Email,
		Mobile:       in.Mobile,
		Department:   in.Department,
		Designation:  in.Designation,
		Branch:       in.Branch,
		IsActive:     active,
		IsLocked:     in.IsLocked,
		ModuleAccess: access,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, httperr.ErrConflict("username_taken", "Username already exists")
		}
		return nil, err
	}

	if actor != nil {
		s.emit(actor, audit.ActionUserCreate, u.UserID, map[string]any{"username": u.Username, "role": u.Role})
	}
	return u, nil
}

// Bootstrap creates a CRM account when username is not taken yet. It is
// used from the command line before any admin exists.
func (s *Service) Bootstrap(ctx context.Context, username, password, name string) (*models.User, bool, error) {
	existing, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	u, err := s.create(ctx, CreateInput{
		Username:    username,
		Password:    password,
		Name:        name,
		Role:        string(domain.RoleCRM),
		Department:  "Management",
		Designation: "Administrator",
	}, nil)
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("username", u.Username))
	return u, true, nil
}

// ===============================
// Update
// ===============================

type UpdateInput struct {
	Name         *string   `json:"name"`
	Role         *string   `json:"role" validate:"omitempty,oneof=CRE Receptionist CRM DP"`
	Email        *string   `json:"email" validate:"omitempty,email"`
	Mobile       *string   `json:"mobile"`
	Password     *string   `json:"password"`
	Department   *string   `json:"department"`
	Designation  *string   `json:"designation"`
	Branch       *string   `json:"branch"`
	IsActive     *bool     `json:"is_active"`
	IsLocked     *bool     `json:"is_locked"`
	ModuleAccess *[]string `json:"module_access"`
}

func (s *Service) Update(ctx context.Context, actor *models.User, userID string, in UpdateInput) (*models.User, error) {
	if err := requireCRM(actor); err != nil {
		return nil, err
	}
	if in.Email != nil && *in.Email == "" {
		in.Email = nil
	}
	if err := validators.Struct(in); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.isPrimary(u) {
		if in.IsActive != nil && !*in.IsActive {
			return nil, httperr.ErrPermissionDenied("primary_admin", "Cannot deactivate primary admin account")
		}
		if in.IsLocked != nil && *in.IsLocked {
			return nil, httperr.ErrPermissionDenied("primary_admin", "Cannot lock primary admin account")
		}
		if in.Role != nil && !domain.IsAdmin(*in.Role) {
			return nil, httperr.ErrPermissionDenied("primary_admin", "Cannot demote primary admin account")
		}
	}

	var changed []string
	setString := func(name string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = append(changed, name)
		}
	}
	setOptional := func(name string, dst **string, src *string) {
		if src != nil {
			*dst = validators.NilIfBlank(src)
			changed = append(changed, name)
		}
	}

	setString("name", &u.Name, in.Name)
	setString("role", &u.Role, in.Role)
	setString("department", &u.Department, in.Department)
	setString("designation", &u.Designation, in.Designation)
	setOptional("email", &u.Email, in.Email)
	setOptional("mobile", &u.Mobile, in.Mobile)
	setOptional("branch", &u.Branch, in.Branch)
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
		changed = append(changed, "is_active")
	}
	if in.IsLocked != nil {
		u.IsLocked = *in.IsLocked
		changed = append(changed, "is_locked")
	}
	if in.ModuleAccess != nil {
		u.ModuleAccess = *in.ModuleAccess
		if u.ModuleAccess == nil {
			u.ModuleAccess = []string{}
		}
		changed = append(changed, "module_access")
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
		changed = append(changed, "password")
	}

	if len(changed) == 0 {
		return u, nil
	}

	u.UpdatedAt = s.clock().UTC()
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.emit(actor, audit.ActionUserUpdate, u.UserID, map[string]any{"fields": changed})
	return u, nil
}

func (s *Service) ResetPassword(ctx context.Context, actor *models.User, userID, password string) error {
	if err := requireCRM(actor); err != nil {
		return err
	}
	if password == "" {
		return httperr.ErrValidation("invalid_password", "Password is required")
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.clock().UTC()
	if err := s.repo.Save(ctx, u); err != nil {
		return err
	}

	s.emit(actor, audit.ActionUserResetPassword, u.UserID, nil)
	return nil
}

// ToggleLock flips the lock flag and returns the updated user.
func (s *Service) ToggleLock(ctx context.Context, actor *models.User, userID string) (*models.User, error) {
	if err := requireCRM(actor); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.isPrimary(u) {
		return nil, httperr.ErrPermissionDenied("primary_admin", "Cannot lock primary admin account")
	}

	u.IsLocked = !u.IsLocked
	u.UpdatedAt = s.clock().UTC()
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}

	s.emit(actor, audit.ActionUserToggleLock, u.UserID, map[string]any{"is_locked": u.IsLocked})
	return u, nil
}

// Delete permanently removes an inactive user.
func (s *Service) Delete(ctx context.Context, actor *models.User, userID string) error {
	if err := requireCRM(actor); err != nil {
		return err
	}

	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if s.isPrimary(u) {
		return httperr.ErrPermissionDenied("primary_admin", "Cannot delete primary admin account")
	}
	if u.IsActive {
		return httperr.ErrPermissionDenied("user_active", "Can only delete inactive users. Deactivate the user first.")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return httperr.ErrNotFound("user_not_found", "User not found")
		}
		return err
	}

	s.emit(actor, audit.ActionUserDelete, userID, map[string]any{"username": u.Username})
	return nil
}
