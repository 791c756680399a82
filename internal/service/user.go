package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/database"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/repository"
)

// UserStore is the slice of user storage the user service needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, nickname, status *string) (*model.User, error)
	DeleteAccountCascade(ctx context.Context, userID string, likedMapIDs []string) error
}

// UserService handles account pages and account removal.
type UserService struct {
	users    UserStore
	maps     MapStore
	likes    LikeStore
	uploader ImageUploader
	cdnBase  string
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	Users      UserStore
	Maps       MapStore
	Likes      LikeStore
	Uploader   ImageUploader
	CDNBaseURL string
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		users:    cfg.Users,
		maps:     cfg.Maps,
		likes:    cfg.Likes,
		uploader: cfg.Uploader,
		cdnBase:  cfg.CDNBaseURL,
	}
}

// GetPublicUser returns the public view of an account with its maps,
// annotated with the viewer's like state when a viewer is present.
func (s *UserService) GetPublicUser(ctx context.Context, userID string, viewer *model.User) (*model.PublicUser, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	likedSet, err := s.viewerLikes(ctx, viewer, user.Maps)
	if err != nil {
		return nil, err
	}

	maps, err := s.mapViewsByIDs(ctx, user.Maps, likedSet)
	if err != nil {
		return nil, err
	}

	return &model.PublicUser{
		ID:       user.ID,
		Nickname: user.Nickname,
		Status:   user.Status,
		Photo:    user.Photo,
		Maps:     maps,
	}, nil
}

// GetProfile returns the signed-in user's own page: account fields,
// their maps, and the maps they liked (newest like first).
func (s *UserService) GetProfile(ctx context.Context, user *model.User) (*model.Profile, error) {
	likedIDs, err := s.likes.MapIDsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	likedSet := make(map[string]bool, len(likedIDs))
	for _, id := range likedIDs {
		likedSet[id] = true
	}

	ownMaps, err := s.mapViewsByIDs(ctx, user.Maps, likedSet)
	if err != nil {
		return nil, err
	}
	likedMaps, err := s.mapViewsByIDs(ctx, likedIDs, likedSet)
	if err != nil {
		return nil, err
	}

	return &model.Profile{
		ID:          user.ID,
		Nickname:    user.Nickname,
		Status:      user.Status,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Photo:       user.Photo,
		Maps:        ownMaps,
		LikedMaps:   likedMaps,
	}, nil
}

// UpdateProfile applies a partial edit to the user's own account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, req.Nickname, req.Status)
	if err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrNicknameTaken
		}
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// DeleteAccount removes the account and all dependent records in one
// transaction and returns the image keys of the user's maps. Blob
// cleanup is the caller's follow-up; the account is gone either way.
func (s *UserService) DeleteAccount(ctx context.Context, user *model.User) ([]string, error) {
	ownMaps, err := s.maps.ListByCreator(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	var imageKeys []string
	for _, mc := range ownMaps {
		imageKeys = append(imageKeys, mc.Map.Images...)
	}

	likedIDs, err := s.likes.MapIDsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if err := s.users.DeleteAccountCascade(ctx, user.ID, likedIDs); err != nil {
		return nil, err
	}
	return imageKeys, nil
}

// CleanupImages deletes orphaned image blobs, logging failures instead
// of propagating them.
func (s *UserService) CleanupImages(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.uploader.Remove(ctx, keys); err != nil {
		slog.Error("orphaned image cleanup failed", "error", err)
	}
}

// viewerLikes returns which of the candidate maps viewer has liked,
// scoped to the candidates rather than the viewer's whole like
// history.
func (s *UserService) viewerLikes(ctx context.Context, viewer *model.User, candidates []string) (map[string]bool, error) {
	set := map[string]bool{}
	if viewer == nil || len(candidates) == 0 {
		return set, nil
	}
	ids, err := s.likes.MapIDsByUserIn(ctx, viewer.ID, candidates)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// mapViewsByIDs fetches maps by id and returns views in the order of
// ids, dropping ids whose map no longer exists.
func (s *UserService) mapViewsByIDs(ctx context.Context, ids []string, likedSet map[string]bool) ([]model.MapView, error) {
	results, err := s.maps.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*repository.MapWithCreator, len(results))
	for _, mc := range results {
		byID[mc.Map.ID] = mc
	}

	views := make([]model.MapView, 0, len(ids))
	for _, id := range ids {
		mc, ok := byID[id]
		if !ok {
			continue
		}
		views = append(views, buildMapView(mc, likedSet[mc.Map.ID], s.cdnBase))
	}
	return views, nil
}
