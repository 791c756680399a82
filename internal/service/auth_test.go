package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/database"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
)

type mockAuthUserStore struct {
	createFunc         func(ctx context.Context, user *model.User) error
	getByGoogleIDFunc  func(ctx context.Context, googleID string) (*model.User, error)
	updateIdentityFunc func(ctx context.Context, id string, user *model.User) (*model.User, error)
}

func (m *mockAuthUserStore) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	return nil
}

func (m *mockAuthUserStore) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	if m.getByGoogleIDFunc != nil {
		return m.getByGoogleIDFunc(ctx, googleID)
	}
	return nil, nil
}

func (m *mockAuthUserStore) UpdateIdentity(ctx context.Context, id string, user *model.User) (*model.User, error) {
	if m.updateIdentityFunc != nil {
		return m.updateIdentityFunc(ctx, id, user)
	}
	return nil, nil
}

type mockProvider struct {
	authCodeURLFunc func(state string) string
	exchangeFunc    func(ctx context.Context, code string) (*Identity, error)
}

func (m *mockProvider) AuthCodeURL(state string) string {
	if m.authCodeURLFunc != nil {
		return m.authCodeURLFunc(state)
	}
	return "https://example.com/consent?state=" + state
}

func (m *mockProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	if m.exchangeFunc != nil {
		return m.exchangeFunc(ctx, code)
	}
	return nil, errors.New("no exchange configured")
}

func newTestAuthService(users AuthUserStore, login, update IdentityProvider) *AuthService {
	return NewAuthService(AuthServiceConfig{
		Users: users,
		Tokens: NewTokenService(TokenServiceConfig{
			Secret:       "test-secret",
			Issuer:       "fall-guys-maps",
			TokenTTL:     time.Hour,
			LinkStateTTL: time.Hour,
		}),
		LoginProvider:  login,
		UpdateProvider: update,
	})
}

func testIdentity() *Identity {
	return &Identity{
		ExternalID:  "google-123",
		Provider:    "google",
		DisplayName: "Ada L",
		Email:       "ada@example.com",
		Photo:       "https://example.com/photo.jpg",
	}
}

func TestHandleLogin_ExistingUser(t *testing.T) {
	t.Parallel()
	existing := &model.User{ID: "user:abc", GoogleID: "google-123"}
	created := false
	users := &mockAuthUserStore{
		getByGoogleIDFunc: func(ctx context.Context, googleID string) (*model.User, error) {
			return existing, nil
		},
		createFunc: func(ctx context.Context, user *model.User) error {
			created = true
			return nil
		},
	}
	login := &mockProvider{
		exchangeFunc: func(ctx context.Context, code string) (*Identity, error) {
			return testIdentity(), nil
		},
	}
	svc := newTestAuthService(users, login, &mockProvider{})

	user, err := svc.HandleLogin(context.Background(), "code")
	if err != nil {
		t.Fatalf("HandleLogin failed: %v", err)
	}
	if user != existing {
		t.Error("expected the existing account to be returned")
	}
	if created {
		t.Error("existing account should not be recreated")
	}
}

func TestHandleLogin_FirstLogin_CreatesUser(t *testing.T) {
	t.Parallel()
	var created *model.User
	users := &mockAuthUserStore{
		createFunc: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	login := &mockProvider{
		exchangeFunc: func(ctx context.Context, code string) (*Identity, error) {
			return testIdentity(), nil
		},
	}
	svc := newTestAuthService(users, login, &mockProvider{})

	user, err := svc.HandleLogin(context.Background(), "code")
	if err != nil {
		t.Fatalf("HandleLogin failed: %v", err)
	}
	if created == nil {
		t.Fatal("expected a new account to be created")
	}
	if user.GoogleID != "google-123" {
		t.Errorf("expected google id google-123, got %s", user.GoogleID)
	}
	if !strings.HasPrefix(user.Nickname, "Player-") {
		t.Errorf("first-login nickname must be generated, got %q", user.Nickname)
	}
	if user.DisplayName != "Ada L" {
		t.Errorf("expected display name Ada L, got %s", user.DisplayName)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("expected email ada@example.com, got %s", user.Email)
	}
}

func TestHandleLogin_NicknameCollision_RetriesWithFreshName(t *testing.T) {
	t.Parallel()
	var nicknames []string
	users := &mockAuthUserStore{
		createFunc: func(ctx context.Context, user *model.User) error {
			nicknames = append(nicknames, user.Nickname)
			// First generated name is taken; the retry succeeds.
			if len(nicknames) == 1 {
				return database.ErrDuplicate
			}
			return nil
		},
	}
	login := &mockProvider{
		exchangeFunc: func(ctx context.Context, code string) (*Identity, error) {
			return testIdentity(), nil
		},
	}
	svc := newTestAuthService(users, login, &mockProvider{})

	user, err := svc.HandleLogin(context.Background(), "code")
	if err != nil {
		t.Fatalf("HandleLogin failed: %v", err)
	}
	if len(nicknames) != 2 {
		t.Fatalf("expected a retry after the collision, got %d attempts", len(nicknames))
	}
	if nicknames[0] == nicknames[1] {
		t.Error("the retry must generate a fresh nickname")
	}
	if user.Nickname != nicknames[1] {
		t.Errorf("expected the retried nickname, got %q", user.Nickname)
	}
}

func TestHandleLogin_ConcurrentFirstLogin_FallsBackToExisting(t *testing.T) {
	t.Parallel()
	winner := &model.User{ID: "user:winner", GoogleID: "google-123"}
	calls := 0
	users := &mockAuthUserStore{
		getByGoogleIDFunc: func(ctx context.Context, googleID string) (*model.User, error) {
			calls++
			// First lookup misses; after the insert loses the race the
			// retry finds the winner's record.
			if calls == 1 {
				return nil, nil
			}
			return winner, nil
		},
		createFunc: func(ctx context.Context, user *model.User) error {
			return database.ErrDuplicate
		},
	}
	login := &mockProvider{
		exchangeFunc: func(ctx context.Context, code string) (*Identity, error) {
			return testIdentity(), nil
		},
	}
	svc := newTestAuthService(users, login, &mockProvider{})

	user, err := svc.HandleLogin(context.Background(), "code")
	if err != nil {
		t.Fatalf("HandleLogin failed: %v", err)
	}
	if user != winner {
		t.Error("expected the concurrently created account to be returned")
	}
}

func TestHandleLogin_ProviderFailure(t *testing.T) {
	t.Parallel()
	login := &mockProvider{
		exchangeFunc: func(ctx context.Context, code string) (*Identity, error) {
			return nil, ErrProviderError
		},
	}
	svc := newTestAuthService(&mockAuthUserStore{}, login, &mockProvider{})

	_, err := svc.HandleLogin(context.Background(), "bad-code")
	if !errors.Is(err, ErrProviderError) {
		t.Errorf("expected ErrProviderError, got %v", err)
	}
}

func TestBeginAccountUpdate_StateBindsUser(t *testing.T) {
	t.Parallel()
	var capturedState string
	update := &mockProvider{
		authCodeURLFunc: func(state string) string {
			capturedState = state
			return "https://example.com/consent?state=" + state
		},
	}
	svc := newTestAuthService(&mockAuthUserStore{}, &mockProvider{}, update)

	url, err := svc.BeginAccountUpdate("user:abc")
	if err != nil {
		t.Fatalf("BeginAccountUpdate failed: %v", err)
	}
	if !strings.Contains(url, capturedState) {
		t.Error("consent URL does not carry the state token")
	}

	userID, err := svc.tokens.VerifyLinkState(capturedState)
	if err != nil {
		t.Fatalf("state token does not verify: %v", err)
	}
	if userID != "user:abc" {
		t.Errorf("state token bound to %s, expected user:abc", userID)
	}
}

func TestCompleteAccountUpdate_Succeeds(t *testing.T) {
	t.Parallel()
	linked := &model.User{ID: "user:abc", GoogleID: "google-123"}
	var updatedWith *model.User
	users := &mockAuthUserStore{
		getByGoogleIDFunc: func(ctx context.Context, googleID string) (*model.User, error) {
			return linked, nil
		},
		updateIdentityFunc: func(ctx context.Context, id string, user *model.User) (*model.User, error) {
			updatedWith = user
			return linked, nil
		},
	}
	update := &mockProvider{
		exchangeFunc: func(ctx context.Context, code string) (*Identity, error) {
			identity := testIdentity()
			identity.Email = "new@example.com"
			return identity, nil
		},
	}
	svc := newTestAuthService(users, &mockProvider{}, update)

	state, err := svc.tokens.IssueLinkState("user:abc")
	if err != nil {
		t.Fatalf("IssueLinkState failed: %v", err)
	}

	user, err := svc.CompleteAccountUpdate(context.Background(), state, "code")
	if err != nil {
		t.Fatalf("CompleteAccountUpdate failed: %v", err)
	}
	if user != linked {
		t.Error("expected the updated account to be returned")
	}
	if updatedWith == nil || updatedWith.Email != "new@example.com" {
		t.Error("refreshed identity fields were not applied")
	}
}

func TestCompleteAccountUpdate_BadState(t *testing.T) {
	t.Parallel()
	svc := newTestAuthService(&mockAuthUserStore{}, &mockProvider{}, &mockProvider{})

	_, err := svc.CompleteAccountUpdate(context.Background(), "garbage", "code")
	if !errors.Is(err, ErrAccountUpdateFailed) {
		t.Errorf("expected ErrAccountUpdateFailed, got %v", err)
	}
}

func TestCompleteAccountUpdate_DifferentAccount(t *testing.T) {
	t.Parallel()
	users := &mockAuthUserStore{
		getByGoogleIDFunc: func(ctx context.Context, googleID string) (*model.User, error) {
			// The Google account coming back belongs to someone else.
			return &model.User{ID: "user:other", GoogleID: "google-123"}, nil
		},
	}
	update := &mockProvider{
		exchangeFunc: func(ctx context.Context, code string) (*Identity, error) {
			return testIdentity(), nil
		},
	}
	svc := newTestAuthService(users, &mockProvider{}, update)

	state, err := svc.tokens.IssueLinkState("user:abc")
	if err != nil {
		t.Fatalf("IssueLinkState failed: %v", err)
	}

	_, err = svc.CompleteAccountUpdate(context.Background(), state, "code")
	if !errors.Is(err, ErrAccountUpdateFailed) {
		t.Errorf("expected ErrAccountUpdateFailed, got %v", err)
	}
}

func TestCompleteAccountUpdate_UnlinkedAccount(t *testing.T) {
	t.Parallel()
	update := &mockProvider{
		exchangeFunc: func(ctx context.Context, code string) (*Identity, error) {
			return testIdentity(), nil
		},
	}
	svc := newTestAuthService(&mockAuthUserStore{}, &mockProvider{}, update)

	state, err := svc.tokens.IssueLinkState("user:abc")
	if err != nil {
		t.Fatalf("IssueLinkState failed: %v", err)
	}

	_, err = svc.CompleteAccountUpdate(context.Background(), state, "code")
	if !errors.Is(err, ErrAccountUpdateFailed) {
		t.Errorf("expected ErrAccountUpdateFailed, got %v", err)
	}
}
