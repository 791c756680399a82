package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/database"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
)

// AuthUserStore is the slice of user storage the auth service needs.
type AuthUserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	UpdateIdentity(ctx context.Context, id string, user *model.User) (*model.User, error)
}

// AuthService handles sign-in and the account-link update handshake.
type AuthService struct {
	users  AuthUserStore
	tokens *TokenService
	login  IdentityProvider
	update IdentityProvider
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	Users          AuthUserStore
	Tokens         *TokenService
	LoginProvider  IdentityProvider
	UpdateProvider IdentityProvider
}

// NewAuthService creates a new auth service
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	return &AuthService{
		users:  cfg.Users,
		tokens: cfg.Tokens,
		login:  cfg.LoginProvider,
		update: cfg.UpdateProvider,
	}
}

// LoginURL builds the provider consent URL for a fresh sign-in.
func (s *AuthService) LoginURL(state string) string {
	return s.login.AuthCodeURL(state)
}

// HandleLogin completes a sign-in: the code is exchanged with the
// provider and the account is fetched, or created on first login.
func (s *AuthService) HandleLogin(ctx context.Context, code string) (*model.User, error) {
	identity, err := s.login.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByGoogleID(ctx, identity.ExternalID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	for attempt := 0; attempt < 3; attempt++ {
		user = newUserFromIdentity(identity)
		err := s.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, database.ErrDuplicate) {
			return nil, err
		}
		// A concurrent first login can win the insert; fall back to
		// the account it created. Otherwise the generated nickname
		// collided, so try again with a fresh one.
		existing, getErr := s.users.GetByGoogleID(ctx, identity.ExternalID)
		if getErr != nil {
			return nil, getErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("%w: could not allocate a nickname", database.ErrDuplicate)
}

// BeginAccountUpdate starts the account-link update flow for userID.
// The returned URL carries a signed, single-purpose state token so the
// callback can prove which user initiated it.
func (s *AuthService) BeginAccountUpdate(userID string) (string, error) {
	state, err := s.tokens.IssueLinkState(userID)
	if err != nil {
		return "", err
	}
	return s.update.AuthCodeURL(state), nil
}

// CompleteAccountUpdate finishes the account-link update flow. The
// state token must verify, and the Google account coming back must be
// the one already linked to that user. Every failure collapses into
// ErrAccountUpdateFailed so callers cannot probe which check tripped;
// the specifics are logged server-side.
func (s *AuthService) CompleteAccountUpdate(ctx context.Context, state, code string) (*model.User, error) {
	userID, err := s.tokens.VerifyLinkState(state)
	if err != nil {
		slog.Warn("account update rejected: bad state token", "error", err)
		return nil, ErrAccountUpdateFailed
	}

	identity, err := s.update.Exchange(ctx, code)
	if err != nil {
		slog.Warn("account update rejected: provider exchange failed", "error", err)
		return nil, ErrAccountUpdateFailed
	}

	linked, err := s.users.GetByGoogleID(ctx, identity.ExternalID)
	if err != nil {
		return nil, err
	}
	if linked == nil || linked.ID != userID {
		slog.Warn("account update rejected: google account not linked to initiating user", "user_id", userID)
		return nil, ErrAccountUpdateFailed
	}

	updated, err := s.users.UpdateIdentity(ctx, userID, newUserFromIdentity(identity))
	if err != nil {
		return nil, err
	}
	if updated == nil {
		slog.Warn("account update rejected: user vanished mid-flow", "user_id", userID)
		return nil, ErrAccountUpdateFailed
	}
	return updated, nil
}

// newUserFromIdentity builds a first-login account. The nickname is
// always generated, never taken from the provider; the user customizes
// it later through a profile update.
func newUserFromIdentity(identity *Identity) *model.User {
	return &model.User{
		Nickname:    "Player-" + randomHex(4),
		GoogleID:    identity.ExternalID,
		Provider:    identity.Provider,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		Photo:       identity.Photo,
	}
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(b)
}
