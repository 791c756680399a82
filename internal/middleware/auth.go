package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/service"
)

// Cookie names for the two credential substrates.
const (
	TokenCookie   = "jwt"
	SessionCookie = "sid"
)

// TokenVerifier validates stateless login tokens.
type TokenVerifier interface {
	VerifyAuthToken(token string) (*service.TokenClaims, error)
}

// SessionValidator resolves server-side session tokens. A (nil, nil)
// result means the token is unknown or lapsed.
type SessionValidator interface {
	Validate(ctx context.Context, token string) (*model.Session, error)
}

// UserSource loads accounts for authenticated requests.
type UserSource interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// userKey is the context key for the authenticated user
const userKey contextKey = "user"

// CurrentUser extracts the authenticated user from context, or nil.
func CurrentUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(userKey).(*model.User); ok {
		return user
	}
	return nil
}

// WithUser returns a context carrying user, the way the auth
// middlewares attach it.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ClearCookie expires a cookie so the client stops sending it.
func ClearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RequireToken gates a route on the signed token cookie. A missing
// cookie reads as unauthenticated; an expired cookie reads as a lapsed
// login, distinct from a malformed or forged one. Either way the bad
// cookie is cleared.
func RequireToken(tokens TokenVerifier, users UserSource) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(TokenCookie)
			if err != nil {
				model.NewUnauthenticatedError().WriteJSON(w)
				return
			}

			claims, err := tokens.VerifyAuthToken(cookie.Value)
			if err != nil {
				ClearCookie(w, TokenCookie)
				if errors.Is(err, service.ErrTokenExpired) {
					model.NewSessionExpiredError().WriteJSON(w)
				} else {
					model.NewUnauthenticatedError().WriteJSON(w)
				}
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				model.NewInternalError().WriteJSON(w)
				return
			}
			if user == nil {
				// Token outlived the account.
				ClearCookie(w, TokenCookie)
				model.NewUnauthenticatedError().WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// SoftToken attaches the user when a valid token cookie is present and
// proceeds anonymously otherwise. It never rejects the request.
func SoftToken(tokens TokenVerifier, users UserSource) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(TokenCookie)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.VerifyAuthToken(cookie.Value)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil || user == nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// RequireSession gates a route on the server-side session cookie. A
// missing cookie reads as unauthenticated; a cookie whose session is
// unknown or lapsed reads as an expired login and is cleared.
func RequireSession(sessions SessionValidator, users UserSource) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				model.NewUnauthenticatedError().WriteJSON(w)
				return
			}

			session, err := sessions.Validate(r.Context(), cookie.Value)
			if err != nil {
				model.NewInternalError().WriteJSON(w)
				return
			}
			if session == nil {
				ClearCookie(w, SessionCookie)
				model.NewSessionExpiredError().WriteJSON(w)
				return
			}

			user, err := users.GetByID(r.Context(), session.UserID)
			if err != nil {
				model.NewInternalError().WriteJSON(w)
				return
			}
			if user == nil {
				ClearCookie(w, SessionCookie)
				model.NewUnauthenticatedError().WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
