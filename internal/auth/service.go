// Package auth issues and verifies login sessions. A session token is an
// HS256 JWT whose jti names a server-side session, so logout revokes it
// before expiry.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/dealer-crm/internal/audit"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/session"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/user"
	"github.com/BruksfildServices01/dealer-crm/internal/httperr"
	"github.com/BruksfildServices01/dealer-crm/internal/ids"
	"github.com/BruksfildServices01/dealer-crm/internal/logging"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

const DefaultTTL = 7 * 24 * time.Hour

type ServiceConfig struct {
	Users    user.Repository
	Sessions session.Store
	Secret   []byte
	TTL      time.Duration
	IDs      ids.Generator
	Clock    func() time.Time
	Audit    audit.Recorder
	Logger   *zap.Logger
}

type Service struct {
	users    user.Repository
	sessions session.Store
	secret   []byte
	ttl      time.Duration
	ids      ids.Generator
	clock    func() time.Time
	audit    audit.Recorder
	logger   *zap.Logger
}

func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Users == nil || cfg.Sessions == nil {
		return nil, errors.New("auth: users and sessions are required")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.IDs == nil {
		cfg.IDs = ids.NewUUIDGenerator()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Service{
		users:    cfg.Users,
		sessions: cfg.Sessions,
		secret:   cfg.Secret,
		ttl:      cfg.TTL,
		ids:      cfg.IDs,
		clock:    cfg.Clock,
		audit:    cfg.Audit,
		logger:   logging.OrNop(cfg.Logger),
	}, nil
}

// TTL is the lifetime of new sessions.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Result is a successful login.
type Result struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func invalidCredentials() error {
	return httperr.ErrUnauthenticated("invalid_credentials", "Invalid credentials")
}

func unauthenticated() error {
	return httperr.ErrUnauthenticated("invalid_session", "Not authenticated")
}

// Login checks the password before the lock flag so a locked account is
// only revealed to someone who knows its password.
func (s *Service) Login(ctx context.Context, username, password string) (*Result, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, invalidCredentials()
	}

	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, user.ErrNotFound) {
		s.failed(username, "", "unknown_user")
		return nil, invalidCredentials()
	}
	if err != nil {
		return nil, err
	}

	if !u.IsActive {
		s.failed(username, u.UserID, "inactive")
		return nil, invalidCredentials()
	}
	if !CheckPassword(u.PasswordHash, password) {
		s.failed(username, u.UserID, "wrong_password")
		return nil, invalidCredentials()
	}
	if u.IsLocked {
		s.failed(username, u.UserID, "locked")
		return nil, httperr.ErrPermissionDenied("account_locked", "Account is locked. Contact administrator.")
	}

	now := s.clock().UTC()
	sess := &models.Session{
		SessionID: s.ids.NewID(ids.PrefixSession),
		UserID:    u.UserID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	token, err := s.sign(sess)
	if err != nil {
		return nil, err
	}

	audit.Emit(s.audit, audit.Event{
		UserID:   u.UserID,
		Action:   audit.ActionLogin,
		Entity:   audit.EntitySession,
		EntityID: sess.SessionID,
	})
	return &Result{Token: token, ExpiresAt: sess.ExpiresAt, User: u}, nil
}

func (s *Service) failed(username, userID, reason string) {
	s.logger.Info("login rejected", zap.String("username", username), zap.String("reason", reason))
	audit.Emit(s.audit, audit.Event{
		UserID:   userID,
		Action:   audit.ActionLoginFailed,
		Entity:   audit.EntityUser,
		EntityID: userID,
		Metadata: map[string]any{"username": username, "reason": reason},
	})
}

// --------- Tokens ---------

func (s *Service) sign(sess *models.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sess.UserID,
		ID:        sess.SessionID,
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) parse(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, unauthenticated()
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, unauthenticated()
	}
	return claims, nil
}

// Authenticate resolves a session token to its active user.
func (s *Service) Authenticate(ctx context.Context, raw string) (*models.User, error) {
	if raw == "" {
		return nil, httperr.ErrUnauthenticated("not_authenticated", "Not authenticated")
	}

	claims, err := s.parse(raw)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, unauthenticated()
	}
	if err != nil {
		return nil, err
	}
	if sess.UserID != claims.Subject || !s.clock().Before(sess.ExpiresAt) {
		return nil, unauthenticated()
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, unauthenticated()
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, unauthenticated()
	}
	return u, nil
}

// Logout revokes the session behind raw. Unknown or invalid tokens are
// accepted silently.
func (s *Service) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return nil
	}
	claims, err := s.parse(raw)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		return err
	}

	audit.Emit(s.audit, audit.Event{
		UserID:   claims.Subject,
		Action:   audit.ActionLogout,
		Entity:   audit.EntitySession,
		EntityID: claims.ID,
	})
	return nil
}
