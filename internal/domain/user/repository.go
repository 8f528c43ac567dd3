package user

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

var (
	ErrNotFound          = errors.New("user: not found")
	ErrDuplicateUsername = errors.New("user: username already exists")
)

type Repository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	FindByIDs(ctx context.Context, userIDs []string) ([]models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListActiveByRole(ctx context.Context, role Role) ([]models.User, error)

	Create(ctx context.Context, u *models.User) error
	Save(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, userID string) error
}
