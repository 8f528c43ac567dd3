package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/session"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

type SessionGormStore struct {
	db *gorm.DB
}

var _ domain.Store = (*SessionGormStore)(nil)

func NewSessionGormStore(db *gorm.DB) *SessionGormStore {
	return &SessionGormStore{db: db}
}

func (s *SessionGormStore) Create(ctx context.Context, sess *models.Session) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

func (s *SessionGormStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionGormStore) Delete(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Delete(&models.Session{}).Error
}
