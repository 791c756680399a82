package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
)

// SessionStore is the slice of session storage the session service
// needs.
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, token string) (*model.Session, error)
	Touch(ctx context.Context, token string, expiresOn time.Time) error
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) (int, error)
}

// SessionService manages the server-side login sessions. Sessions are
// rolling: validation extends the expiry, but at most once per touch
// interval to keep read traffic from turning into write traffic.
type SessionService struct {
	store         SessionStore
	ttl           time.Duration
	touchInterval time.Duration
	now           func() time.Time
}

// SessionServiceConfig holds configuration for the session service
type SessionServiceConfig struct {
	Store         SessionStore
	TTL           time.Duration
	TouchInterval time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(cfg SessionServiceConfig) *SessionService {
	return &SessionService{
		store:         cfg.Store,
		ttl:           cfg.TTL,
		touchInterval: cfg.TouchInterval,
		now:           time.Now,
	}
}

// TTL returns the session lifetime, used to align the cookie max-age.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Establish creates a fresh session for userID and returns it.
func (s *SessionService) Establish(ctx context.Context, userID string) (*model.Session, error) {
	now := s.now()
	session := &model.Session{
		Token:     randomHex(32),
		UserID:    userID,
		ExpiresOn: now.Add(s.ttl),
		TouchedOn: now,
	}
	if err := s.store.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Validate resolves a session token. Unknown and expired tokens both
// return (nil, nil); the caller decides how to phrase the rejection.
// Valid sessions are touched when the last touch is older than the
// touch interval.
func (s *SessionService) Validate(ctx context.Context, token string) (*model.Session, error) {
	session, err := s.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if session == nil || session.Expired(now) {
		return nil, nil
	}

	if now.Sub(session.TouchedOn) >= s.touchInterval {
		session.ExpiresOn = now.Add(s.ttl)
		session.TouchedOn = now
		if err := s.store.Touch(ctx, token, session.ExpiresOn); err != nil {
			// The session is still valid; losing one touch only
			// shortens the rolling window.
			slog.Warn("session touch failed", "error", err)
		}
	}
	return session, nil
}

// Destroy removes a session so the token stops working immediately.
func (s *SessionService) Destroy(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

// PurgeExpired removes all lapsed sessions and returns how many went.
func (s *SessionService) PurgeExpired(ctx context.Context) (int, error) {
	return s.store.DeleteExpired(ctx)
}
