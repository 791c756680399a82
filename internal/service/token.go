package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
)

// Token purposes. Auth tokens ride the login cookie; link-state tokens
// exist only to carry the account-update handshake through the OAuth
// redirect and are never accepted as login credentials.
const (
	purposeAuth = "auth"
	purposeLink = "link"
)

// TokenClaims is the payload of every token this service signs.
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies the stateless credentials
type TokenService struct {
	secret       []byte
	issuer       string
	tokenTTL     time.Duration
	linkStateTTL time.Duration
}

// TokenServiceConfig holds configuration for the token service
type TokenServiceConfig struct {
	Secret       string
	Issuer       string
	TokenTTL     time.Duration
	LinkStateTTL time.Duration
}

// NewTokenService creates a new token service
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	return &TokenService{
		secret:       []byte(cfg.Secret),
		issuer:       cfg.Issuer,
		tokenTTL:     cfg.TokenTTL,
		linkStateTTL: cfg.LinkStateTTL,
	}
}

// AuthTokenTTL returns the lifetime of auth tokens, used to align the
// cookie max-age with the token expiry.
func (s *TokenService) AuthTokenTTL() time.Duration {
	return s.tokenTTL
}

// IssueAuthToken signs a login token for user
func (s *TokenService) IssueAuthToken(user *model.User) (string, error) {
	return s.sign(&TokenClaims{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: purposeAuth,
	}, s.tokenTTL)
}

// IssueLinkState signs the single-purpose state token that binds an
// account-update flow to the user who started it.
func (s *TokenService) IssueLinkState(userID string) (string, error) {
	return s.sign(&TokenClaims{
		UserID:  userID,
		Purpose: purposeLink,
	}, s.linkStateTTL)
}

// VerifyAuthToken validates a login token and returns its claims.
// Returns ErrTokenExpired when the token lapsed and ErrTokenInvalid
// for everything else that fails, including tokens of other purposes.
func (s *TokenService) VerifyAuthToken(token string) (*TokenClaims, error) {
	return s.verify(token, purposeAuth)
}

// VerifyLinkState validates an account-update state token and returns
// the user id it was issued for.
func (s *TokenService) VerifyLinkState(token string) (string, error) {
	claims, err := s.verify(token, purposeLink)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *TokenService) sign(claims *TokenClaims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) verify(token, purpose string) (*TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || claims.Purpose != purpose || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
