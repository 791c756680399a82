package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
)

type mockSessionStore struct {
	createFunc        func(ctx context.Context, session *model.Session) error
	getFunc           func(ctx context.Context, token string) (*model.Session, error)
	touchFunc         func(ctx context.Context, token string, expiresOn time.Time) error
	deleteFunc        func(ctx context.Context, token string) error
	deleteExpiredFunc func(ctx context.Context) (int, error)
}

func (m *mockSessionStore) Create(ctx context.Context, session *model.Session) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, session)
	}
	return nil
}

func (m *mockSessionStore) Get(ctx context.Context, token string) (*model.Session, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, token)
	}
	return nil, nil
}

func (m *mockSessionStore) Touch(ctx context.Context, token string, expiresOn time.Time) error {
	if m.touchFunc != nil {
		return m.touchFunc(ctx, token, expiresOn)
	}
	return nil
}

func (m *mockSessionStore) Delete(ctx context.Context, token string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, token)
	}
	return nil
}

func (m *mockSessionStore) DeleteExpired(ctx context.Context) (int, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

func newTestSessionService(store SessionStore) *SessionService {
	return NewSessionService(SessionServiceConfig{
		Store:         store,
		TTL:           14 * 24 * time.Hour,
		TouchInterval: 24 * time.Hour,
	})
}

func TestEstablish_CreatesSessionWithTTL(t *testing.T) {
	t.Parallel()
	var created *model.Session
	store := &mockSessionStore{
		createFunc: func(ctx context.Context, session *model.Session) error {
			created = session
			return nil
		},
	}
	svc := newTestSessionService(store)

	session, err := svc.Establish(context.Background(), "user:abc")
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if created == nil {
		t.Fatal("expected session to be persisted")
	}
	if session.UserID != "user:abc" {
		t.Errorf("expected user id user:abc, got %s", session.UserID)
	}
	if len(session.Token) != 64 {
		t.Errorf("expected 64-char hex token, got %d chars", len(session.Token))
	}
	ttl := session.ExpiresOn.Sub(session.TouchedOn)
	if ttl != 14*24*time.Hour {
		t.Errorf("expected 14-day expiry window, got %v", ttl)
	}
}

func TestEstablish_UniqueTokens(t *testing.T) {
	t.Parallel()
	svc := newTestSessionService(&mockSessionStore{})

	a, err := svc.Establish(context.Background(), "user:abc")
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	b, err := svc.Establish(context.Background(), "user:abc")
	if err != nil {
		t.Fatalf("Establish failed: %v", err)
	}
	if a.Token == b.Token {
		t.Error("expected distinct session tokens")
	}
}

func TestValidate_UnknownToken_ReturnsNil(t *testing.T) {
	t.Parallel()
	svc := newTestSessionService(&mockSessionStore{})

	session, err := svc.Validate(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if session != nil {
		t.Error("expected nil session for unknown token")
	}
}

func TestValidate_ExpiredToken_ReturnsNil(t *testing.T) {
	t.Parallel()
	store := &mockSessionStore{
		getFunc: func(ctx context.Context, token string) (*model.Session, error) {
			return &model.Session{
				Token:     token,
				UserID:    "user:abc",
				ExpiresOn: time.Now().Add(-time.Hour),
			}, nil
		},
	}
	svc := newTestSessionService(store)

	session, err := svc.Validate(context.Background(), "stale")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if session != nil {
		t.Error("expected nil session for expired token")
	}
}

func TestValidate_FreshSession_NotTouched(t *testing.T) {
	t.Parallel()
	touched := false
	now := time.Now()
	store := &mockSessionStore{
		getFunc: func(ctx context.Context, token string) (*model.Session, error) {
			return &model.Session{
				Token:     token,
				UserID:    "user:abc",
				ExpiresOn: now.Add(14 * 24 * time.Hour),
				TouchedOn: now.Add(-time.Hour),
			}, nil
		},
		touchFunc: func(ctx context.Context, token string, expiresOn time.Time) error {
			touched = true
			return nil
		},
	}
	svc := newTestSessionService(store)

	session, err := svc.Validate(context.Background(), "fresh")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if session == nil {
		t.Fatal("expected a valid session")
	}
	if touched {
		t.Error("session touched within the touch interval")
	}
}

func TestValidate_StaleTouch_ExtendsExpiry(t *testing.T) {
	t.Parallel()
	var touchedExpiry time.Time
	now := time.Now()
	store := &mockSessionStore{
		getFunc: func(ctx context.Context, token string) (*model.Session, error) {
			return &model.Session{
				Token:     token,
				UserID:    "user:abc",
				ExpiresOn: now.Add(24 * time.Hour),
				TouchedOn: now.Add(-25 * time.Hour),
			}, nil
		},
		touchFunc: func(ctx context.Context, token string, expiresOn time.Time) error {
			touchedExpiry = expiresOn
			return nil
		},
	}
	svc := newTestSessionService(store)

	session, err := svc.Validate(context.Background(), "active")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if session == nil {
		t.Fatal("expected a valid session")
	}
	if touchedExpiry.IsZero() {
		t.Fatal("expected the session to be touched")
	}
	if touchedExpiry.Before(now.Add(13 * 24 * time.Hour)) {
		t.Errorf("expected expiry pushed ~14 days out, got %v", touchedExpiry)
	}
	if !session.ExpiresOn.Equal(touchedExpiry) {
		t.Error("returned session does not reflect the extended expiry")
	}
}

func TestValidate_TouchFailure_StillValid(t *testing.T) {
	t.Parallel()
	now := time.Now()
	store := &mockSessionStore{
		getFunc: func(ctx context.Context, token string) (*model.Session, error) {
			return &model.Session{
				Token:     token,
				UserID:    "user:abc",
				ExpiresOn: now.Add(24 * time.Hour),
				TouchedOn: now.Add(-25 * time.Hour),
			}, nil
		},
		touchFunc: func(ctx context.Context, token string, expiresOn time.Time) error {
			return errors.New("db down")
		},
	}
	svc := newTestSessionService(store)

	session, err := svc.Validate(context.Background(), "active")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if session == nil {
		t.Error("touch failure should not invalidate the session")
	}
}

func TestDestroy_DelegatesToStore(t *testing.T) {
	t.Parallel()
	var deleted string
	store := &mockSessionStore{
		deleteFunc: func(ctx context.Context, token string) error {
			deleted = token
			return nil
		},
	}
	svc := newTestSessionService(store)

	if err := svc.Destroy(context.Background(), "tok"); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}
	if deleted != "tok" {
		t.Errorf("expected token tok deleted, got %q", deleted)
	}
}

func TestPurgeExpired_ReturnsCount(t *testing.T) {
	t.Parallel()
	store := &mockSessionStore{
		deleteExpiredFunc: func(ctx context.Context) (int, error) {
			return 3, nil
		},
	}
	svc := newTestSessionService(store)

	purged, err := svc.PurgeExpired(context.Background())
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 3 {
		t.Errorf("expected 3 purged, got %d", purged)
	}
}
