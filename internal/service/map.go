package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/database"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/repository"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/storage"
)

// PageSize is the fixed number of maps per browse page.
const PageSize = 10

// MapStore is the slice of map storage the map and user services need.
type MapStore interface {
	CreateWithOwner(ctx context.Context, m *model.Map) error
	GetByID(ctx context.Context, id string) (*repository.MapWithCreator, error)
	GetByIDs(ctx context.Context, ids []string) ([]*repository.MapWithCreator, error)
	ListByCreator(ctx context.Context, userID string) ([]*repository.MapWithCreator, error)
	List(ctx context.Context, filter repository.ListFilter) ([]*repository.MapWithCreator, error)
	Count(ctx context.Context, filter repository.ListFilter) (int, error)
	Update(ctx context.Context, id string, req *model.UpdateMapRequest) error
	DeleteCascade(ctx context.Context, m *model.Map) error
}

// LikeStore is the slice of like storage the map and user services
// need.
type LikeStore interface {
	Create(ctx context.Context, userID, mapID string) error
	Get(ctx context.Context, userID, mapID string) (*model.MapLike, error)
	DeleteWithCount(ctx context.Context, userID, mapID string) error
	MapIDsByUser(ctx context.Context, userID string) ([]string, error)
	MapIDsByUserIn(ctx context.Context, userID string, mapIDs []string) ([]string, error)
}

// ImageUploader stores and removes batches of image blobs.
type ImageUploader interface {
	Upload(ctx context.Context, blobs []storage.Blob) []string
	Remove(ctx context.Context, keys []string) error
}

// MapService owns every mutation that touches maps. Writes that span
// the document store and object storage are ordered so a failure
// leaves nothing half-applied: uploads precede the database
// transaction and are compensated on failure, deletes precede the
// database transaction and abort it when they fail.
type MapService struct {
	maps      MapStore
	likes     LikeStore
	uploader  ImageUploader
	normalize func([]byte) ([]byte, error)
	cdnBase   string
}

// MapServiceConfig holds configuration for the map service
type MapServiceConfig struct {
	Maps       MapStore
	Likes      LikeStore
	Uploader   ImageUploader
	Normalize  func([]byte) ([]byte, error)
	CDNBaseURL string
}

// NewMapService creates a new map service
func NewMapService(cfg MapServiceConfig) *MapService {
	return &MapService{
		maps:      cfg.Maps,
		likes:     cfg.Likes,
		uploader:  cfg.Uploader,
		normalize: cfg.Normalize,
		cdnBase:   strings.TrimRight(cfg.CDNBaseURL, "/"),
	}
}

// CreateMap publishes a map. Images are normalized and uploaded first;
// then the map record and the creator's back reference are written in
// one transaction. If that write fails the uploaded blobs are deleted
// again, so a rejected submission (including a duplicate share code)
// leaves no orphans behind.
func (s *MapService) CreateMap(ctx context.Context, user *model.User, req *model.CreateMapRequest, files [][]byte) (*model.MapView, error) {
	blobs := make([]storage.Blob, 0, len(files))
	for _, file := range files {
		data, err := s.normalize(file)
		if err != nil {
			// Abort before anything is stored; a submission with a
			// broken image is rejected whole.
			return nil, fmt.Errorf("%w: %v", ErrImageProcessingFailed, err)
		}
		blobs = append(blobs, storage.Blob{Data: data, ContentType: "image/jpeg", Ext: ".jpg"})
	}

	keys := s.uploader.Upload(ctx, blobs)
	if len(keys) == 0 {
		return nil, ErrNoImagesUploaded
	}

	m := &model.Map{
		Title:       req.Title,
		Description: req.Description,
		Code:        req.Code,
		Category:    model.Category(req.Category),
		Images:      keys,
		Creator:     user.ID,
	}

	if err := s.maps.CreateWithOwner(ctx, m); err != nil {
		if rbErr := s.uploader.Remove(ctx, keys); rbErr != nil {
			slog.Error("rollback of uploaded images failed", "keys", keys, "error", rbErr)
		}
		if errors.Is(err, database.ErrDuplicate) {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}

	view := s.view(&repository.MapWithCreator{Map: *m, CreatorNickname: user.Nickname}, false)
	return &view, nil
}

// GetMap fetches one map, annotated with the viewer's like state when
// a viewer is present.
func (s *MapService) GetMap(ctx context.Context, mapID string, viewer *model.User) (*model.MapView, error) {
	mc, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return nil, err
	}
	if mc == nil {
		return nil, ErrMapNotFound
	}

	liked := false
	if viewer != nil {
		like, err := s.likes.Get(ctx, viewer.ID, mc.Map.ID)
		if err != nil {
			return nil, err
		}
		liked = like != nil
	}

	view := s.view(mc, liked)
	return &view, nil
}

// ListMaps returns one browse page. Pages past the end come back
// empty rather than failing.
func (s *MapService) ListMaps(ctx context.Context, q *model.ListMapsQuery, viewer *model.User) (*model.MapPage, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}

	filter := repository.ListFilter{
		Search: q.Query,
		Sort:   q.Sort,
		Offset: (page - 1) * PageSize,
		Limit:  PageSize,
	}
	if q.Category != "" && q.Category != "All" {
		filter.Category = model.Category(q.Category)
	}

	total, err := s.maps.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	results, err := s.maps.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	pageIDs := make([]string, 0, len(results))
	for _, mc := range results {
		pageIDs = append(pageIDs, mc.Map.ID)
	}
	likedSet, err := s.likedSet(ctx, viewer, pageIDs)
	if err != nil {
		return nil, err
	}

	views := make([]model.MapView, 0, len(results))
	for _, mc := range results {
		views = append(views, s.view(mc, likedSet[mc.Map.ID]))
	}

	totalPages := (total + PageSize - 1) / PageSize
	return &model.MapPage{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalMaps:       total,
		ItemsPerPage:    PageSize,
		HasNextPage:     page*PageSize < total,
		HasPreviousPage: page > 1 && total > 0,
		Maps:            views,
	}, nil
}

// Like records user's like on a map and bumps its counter atomically.
func (s *MapService) Like(ctx context.Context, user *model.User, mapID string) error {
	mc, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return err
	}
	if mc == nil {
		return ErrMapNotFound
	}

	if err := s.likes.Create(ctx, user.ID, mc.Map.ID); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return ErrAlreadyLiked
		}
		return err
	}
	return nil
}

// Unlike removes user's like and drops the counter atomically.
func (s *MapService) Unlike(ctx context.Context, user *model.User, mapID string) error {
	mc, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return err
	}
	if mc == nil {
		return ErrMapNotFound
	}

	like, err := s.likes.Get(ctx, user.ID, mc.Map.ID)
	if err != nil {
		return err
	}
	if like == nil {
		return ErrNotLiked
	}

	// The store claims the row inside the transaction, so a racing
	// second unlike loses there rather than decrementing twice.
	if err := s.likes.DeleteWithCount(ctx, user.ID, mc.Map.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrNotLiked
		}
		return err
	}
	return nil
}

// UpdateMap applies a partial edit. Only the creator may edit, and the
// share code is immutable.
func (s *MapService) UpdateMap(ctx context.Context, user *model.User, mapID string, req *model.UpdateMapRequest) (*model.MapView, error) {
	mc, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return nil, err
	}
	if mc == nil {
		return nil, ErrMapNotFound
	}
	if mc.Map.Creator != user.ID {
		return nil, ErrNotMapOwner
	}

	if req.Images != nil {
		req.Images = s.stripCDNBase(req.Images)
	}

	if err := s.maps.Update(ctx, mc.Map.ID, req); err != nil {
		return nil, err
	}
	return s.GetMap(ctx, mc.Map.ID, user)
}

// DeleteMap removes a map and everything referencing it. The stored
// images go first: if object storage refuses, the operation aborts
// with the records intact, because dangling image keys are worse than
// a retryable delete.
func (s *MapService) DeleteMap(ctx context.Context, user *model.User, mapID string) error {
	mc, err := s.maps.GetByID(ctx, mapID)
	if err != nil {
		return err
	}
	if mc == nil {
		return ErrMapNotFound
	}
	if mc.Map.Creator != user.ID {
		return ErrNotMapOwner
	}

	if err := s.uploader.Remove(ctx, mc.Map.Images); err != nil {
		return fmt.Errorf("%w: %v", ErrImageDeleteFailed, err)
	}

	return s.maps.DeleteCascade(ctx, &mc.Map)
}

// likedSet returns which of the candidate maps viewer has liked, with
// one lookup bounded by the candidate list. Empty for anonymous
// viewers.
func (s *MapService) likedSet(ctx context.Context, viewer *model.User, candidates []string) (map[string]bool, error) {
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

func (s *MapService) view(mc *repository.MapWithCreator, liked bool) model.MapView {
	return buildMapView(mc, liked, s.cdnBase)
}

func (s *MapService) stripCDNBase(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, strings.TrimPrefix(strings.TrimPrefix(k, s.cdnBase), "/"))
	}
	return out
}

// buildMapView expands image keys to CDN URLs and attaches the creator
// summary and like annotation.
func buildMapView(mc *repository.MapWithCreator, liked bool, cdnBase string) model.MapView {
	urls := make([]string, 0, len(mc.Map.Images))
	for _, key := range mc.Map.Images {
		urls = append(urls, cdnBase+"/"+key)
	}

	return model.MapView{
		ID:          mc.Map.ID,
		Title:       mc.Map.Title,
		Description: mc.Map.Description,
		Code:        mc.Map.Code,
		Category:    mc.Map.Category,
		Images:      urls,
		Creator:     model.Creator{ID: mc.Map.Creator, Nickname: mc.CreatorNickname},
		LikesCount:  mc.Map.LikesCount,
		IsLiked:     liked,
		CreatedOn:   mc.Map.CreatedOn,
		UpdatedOn:   mc.Map.UpdatedOn,
	}
}
