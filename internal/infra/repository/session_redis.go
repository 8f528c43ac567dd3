package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/session"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

const sessionKeyPrefix = "crm:session:"

// SessionRedisStore keeps sessions as JSON values whose key TTL matches the
// session expiry.
type SessionRedisStore struct {
	client *redis.Client
	clock  func() time.Time
}

var _ domain.Store = (*SessionRedisStore)(nil)

func NewSessionRedisStore(client *redis.Client, clock func() time.Time) *SessionRedisStore {
	if clock == nil {
		clock = time.Now
	}
	return &SessionRedisStore{client: client, clock: clock}
}

func (s *SessionRedisStore) Create(ctx context.Context, sess *models.Session) error {
	ttl := sess.ExpiresAt.Sub(s.clock())
	if ttl <= 0 {
		return errors.New("session: already expired")
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKeyPrefix+sess.SessionID, payload, ttl).Err()
}

func (s *SessionRedisStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionRedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID).Err()
}
