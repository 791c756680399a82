package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/middleware"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/service"
)

// stateCookie carries the CSRF state of a login flow between the
// redirect out and the callback.
const stateCookie = "oauth_state"

// UserStatusSource loads the lightweight status fields of an account.
type UserStatusSource interface {
	GetStatus(ctx context.Context, id string) (*model.UserStatus, error)
}

// AuthHandler handles the sign-in, account-update, and logout
// endpoints.
type AuthHandler struct {
	auth        *service.AuthService
	sessions    *service.SessionService
	tokens      *service.TokenService
	users       UserStatusSource
	frontendURL string
	secure      bool
}

// AuthHandlerConfig holds configuration for the auth handler
type AuthHandlerConfig struct {
	Auth          *service.AuthService
	Sessions      *service.SessionService
	Tokens        *service.TokenService
	Users         UserStatusSource
	FrontendURL   string
	SecureCookies bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		auth:        cfg.Auth,
		sessions:    cfg.Sessions,
		tokens:      cfg.Tokens,
		users:       cfg.Users,
		frontendURL: cfg.FrontendURL,
		secure:      cfg.SecureCookies,
	}
}

// GoogleLogin handles GET /api/public/user/auth/google - start sign-in
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := newState()
	h.setCookie(w, stateCookie, state, 10*time.Minute)
	http.Redirect(w, r, h.auth.LoginURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /api/public/user/auth/google/redirect -
// finish sign-in. Success establishes both credential substrates and
// bounces back to the frontend; any failure bounces to the login page.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	middleware.ClearCookie(w, stateCookie)

	query := r.URL.Query()
	if query.Get("error") != "" || query.Get("code") == "" {
		h.redirectLogin(w, r)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		slog.Warn("login rejected: state mismatch")
		h.redirectLogin(w, r)
		return
	}

	user, err := h.auth.HandleLogin(r.Context(), query.Get("code"))
	if err != nil {
		slog.Error("login failed", "error", err)
		h.redirectLogin(w, r)
		return
	}

	if err := h.establishLogin(r.Context(), w, user); err != nil {
		slog.Error("establishing login failed", "error", err)
		h.redirectLogin(w, r)
		return
	}

	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

// GoogleUpdate handles GET /api/user/auth/google/update - start the
// account-link update flow. Session-gated; the signed state token
// binds the flow to the current user.
func (h *AuthHandler) GoogleUpdate(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	url, err := h.auth.BeginAccountUpdate(user.ID)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GoogleUpdateCallback handles GET
// /api/public/user/auth/google/update/redirect - finish the
// account-link update flow. The state token is the authenticator here;
// all rejection reasons collapse into the same login bounce.
func (h *AuthHandler) GoogleUpdateCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("error") != "" || query.Get("code") == "" || query.Get("state") == "" {
		h.redirectLogin(w, r)
		return
	}

	user, err := h.auth.CompleteAccountUpdate(r.Context(), query.Get("state"), query.Get("code"))
	if err != nil {
		slog.Warn("account update failed", "error", err)
		h.redirectLogin(w, r)
		return
	}

	// Reissue the token so its claims match the refreshed account.
	if err := h.setTokenCookie(w, user); err != nil {
		slog.Error("reissuing token after account update failed", "error", err)
		h.redirectLogin(w, r)
		return
	}

	http.Redirect(w, r, h.frontendURL+"/profile", http.StatusTemporaryRedirect)
}

// LoginStatus handles GET /api/public/user/login/status - report
// whether the token cookie holds a live login. This endpoint never
// rejects; broken credentials just read as logged out.
func (h *AuthHandler) LoginStatus(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.TokenCookie)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"loggedIn": false})
		return
	}

	claims, err := h.tokens.VerifyAuthToken(cookie.Value)
	if err != nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"loggedIn": false})
		return
	}

	status, err := h.users.GetStatus(r.Context(), claims.UserID)
	if err != nil || status == nil {
		WriteJSON(w, http.StatusOK, map[string]interface{}{"loggedIn": false})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"loggedIn": true,
		"user":     status,
	})
}

// Logout handles POST /api/user/logout. Session-gated: the session is
// destroyed before the response goes out, then lapsed sessions are
// swept in the background as cheap bookkeeping.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookie); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			WriteError(w, MapServiceError(err))
			return
		}
	}

	middleware.ClearCookie(w, middleware.SessionCookie)
	middleware.ClearCookie(w, middleware.TokenCookie)
	WriteMessage(w, http.StatusOK, "Successfully logged out.")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := h.sessions.PurgeExpired(ctx); err != nil {
			slog.Warn("purging expired sessions failed", "error", err)
		}
	}()
}

// establishLogin sets both credential cookies for user.
func (h *AuthHandler) establishLogin(ctx context.Context, w http.ResponseWriter, user *model.User) error {
	if err := h.setTokenCookie(w, user); err != nil {
		return err
	}

	session, err := h.sessions.Establish(ctx, user.ID)
	if err != nil {
		return err
	}
	h.setCookie(w, middleware.SessionCookie, session.Token, h.sessions.TTL())
	return nil
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, user *model.User) error {
	token, err := h.tokens.IssueAuthToken(user)
	if err != nil {
		return err
	}
	h.setCookie(w, middleware.TokenCookie, token, h.tokens.AuthTokenTTL())
	return nil
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) redirectLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.frontendURL+"/login", http.StatusTemporaryRedirect)
}

func newState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
