package session

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

var ErrNotFound = errors.New("session: not found")

// Store persists login sessions. Get returns ErrNotFound for unknown or
// revoked sessions.
type Store interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
