package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/middleware"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/service"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// GetUser handles GET /api/public/user/{userId} - public profile view.
// Works with or without a login; a viewer's likes annotate the maps.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userId")
	if userID == "" {
		WriteError(w, invalidInputs())
		return
	}

	user, err := h.users.GetPublicUser(r.Context(), userID, middleware.CurrentUser(r.Context()))
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// GetProfile handles GET /api/user/profile - the caller's own profile,
// own maps and liked maps included.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	profile, err := h.users.GetProfile(r.Context(), user)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{"user": profile})
}

// UpdateUser handles PATCH /api/user - change nickname and/or status.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	var req model.UpdateUserRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, invalidInputs())
		return
	}
	if req.Empty() {
		WriteError(w, invalidInputs())
		return
	}
	if err := model.Validate(&req); err != nil {
		WriteError(w, invalidInputs())
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, &req)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"user": model.UserStatus{Nickname: updated.Nickname, Photo: updated.Photo},
	})
}

// DeleteUser handles DELETE /api/user - delete the account and
// everything it owns. Session-gated. The database cascade commits
// before the response; stored images are cleaned up afterwards since
// their loss is recoverable garbage, not broken state.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())

	imageKeys, err := h.users.DeleteAccount(r.Context(), user)
	if err != nil {
		WriteError(w, MapServiceError(err))
		return
	}

	middleware.ClearCookie(w, middleware.SessionCookie)
	middleware.ClearCookie(w, middleware.TokenCookie)
	WriteMessage(w, http.StatusOK, "Deleted user.")

	if len(imageKeys) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		h.users.CleanupImages(ctx, imageKeys)
		slog.Info("cleaned up deleted account images", "user_id", user.ID, "images", len(imageKeys))
	}()
}
