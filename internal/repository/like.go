package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/database"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
)

// LikeRepository handles like persistence
type LikeRepository struct {
	db database.Database
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db database.Database) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create records a like and bumps the map's counter in one
// transaction. The (user, map) pair carries a unique index; a repeat
// like surfaces as database.ErrDuplicate and the counter is untouched.
func (r *LikeRepository) Create(ctx context.Context, userID, mapID string) error {
	id := newRecordID("like")

	batch := database.NewAtomicBatch().
		Add(`CREATE type::record($id) CONTENT {
			user: type::record($user),
			map: type::record($map),
			created_on: time::now()
		}`, map[string]interface{}{
			"id":   id,
			"user": userID,
			"map":  mapID,
		}).
		Add("UPDATE type::record($map_id) SET likes_count += 1", map[string]interface{}{
			"map_id": mapID,
		})

	if err := batch.Execute(ctx, r.db); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: map already liked", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// Get fetches a like by its (user, map) pair. Returns (nil, nil) when
// the user has not liked the map.
func (r *LikeRepository) Get(ctx context.Context, userID, mapID string) (*model.MapLike, error) {
	query := "SELECT * FROM like WHERE user = type::record($user) AND map = type::record($map) LIMIT 1"

	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{
		"user": userID,
		"map":  mapID,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseLike(result)
}

// DeleteWithCount removes a like and drops the map's counter in one
// transaction. The decrement is gated on the delete actually claiming
// a row, so two racing unlikes cannot drive the counter down twice:
// the loser's transaction throws and nothing is applied. That surfaces
// as database.ErrNotFound.
func (r *LikeRepository) DeleteWithCount(ctx context.Context, userID, mapID string) error {
	tb := database.NewTxBuilder()
	tb.Add("LET $claimed = (DELETE like WHERE user = type::record($user) AND map = type::record($map) RETURN BEFORE)", map[string]interface{}{
		"user": userID,
		"map":  mapID,
	})
	tb.AddRaw(`IF array::len($claimed) = 0 { THROW "like not found" }`)
	tb.Add("UPDATE type::record($target) SET likes_count -= 1", map[string]interface{}{
		"target": mapID,
	})

	if _, err := tb.Execute(ctx, r.db); err != nil {
		if strings.Contains(err.Error(), "like not found") {
			return fmt.Errorf("%w: like not found", database.ErrNotFound)
		}
		return err
	}
	return nil
}

// MapIDsByUserIn returns which of the candidate maps the user has
// liked. This is the per-page annotation lookup, bounded by the page
// size rather than by how much the user has liked overall.
func (r *LikeRepository) MapIDsByUserIn(ctx context.Context, userID string, mapIDs []string) ([]string, error) {
	if len(mapIDs) == 0 {
		return []string{}, nil
	}

	query := "SELECT map FROM like WHERE user = type::record($user) AND type::string(map) INSIDE $maps"

	results, err := r.db.Query(ctx, query, map[string]interface{}{
		"user": userID,
		"maps": mapIDs,
	})
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(results)
	if !ok {
		return []string{}, nil
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		if data, ok := record.(map[string]interface{}); ok {
			if id := extractRecordID(data["map"]); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

// MapIDsByUser returns the ids of maps the user liked, newest like
// first.
func (r *LikeRepository) MapIDsByUser(ctx context.Context, userID string) ([]string, error) {
	query := "SELECT map FROM like WHERE user = type::record($user) ORDER BY created_on DESC"

	results, err := r.db.Query(ctx, query, map[string]interface{}{"user": userID})
	if err != nil {
		return nil, err
	}

	records, ok := extractQueryResults(results)
	if !ok {
		return []string{}, nil
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		if data, ok := record.(map[string]interface{}); ok {
			if id := extractRecordID(data["map"]); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}

func parseLike(result interface{}) (*model.MapLike, error) {
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected like result format", database.ErrQuery)
	}

	return &model.MapLike{
		ID:        extractRecordID(data["id"]),
		User:      extractRecordID(data["user"]),
		Map:       extractRecordID(data["map"]),
		CreatedOn: getTime(data, "created_on"),
	}, nil
}
