package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/database"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
)

// MapWithCreator bundles a map with the creator's nickname, which the
// list and detail queries pull through the record link in one pass.
type MapWithCreator struct {
	Map             model.Map
	CreatorNickname string
}

// ListFilter narrows and orders the browse query.
type ListFilter struct {
	Category model.Category // empty matches all categories
	Search   string
	Sort     string // "popularity" or "dateAdded"
	Offset   int
	Limit    int
}

// MapRepository handles map persistence
type MapRepository struct {
	db database.Database
}

// NewMapRepository creates a new map repository
func NewMapRepository(db database.Database) *MapRepository {
	return &MapRepository{db: db}
}

// CreateWithOwner inserts the map and appends it to the creator's maps
// array in one transaction. A share-code collision surfaces as
// database.ErrDuplicate and nothing is written.
func (r *MapRepository) CreateWithOwner(ctx context.Context, m *model.Map) error {
	if m.ID == "" {
		m.ID = newRecordID("map")
	}
	if m.Images == nil {
		m.Images = []string{}
	}

	createQuery := `CREATE type::record($id) CONTENT {
		title: $title,
		description: $description,
		code: $code,
		category: $category,
		images: $images,
		creator: type::record($creator),
		likes_count: 0,
		created_on: time::now(),
		updated_on: time::now()
	}`

	batch := database.NewAtomicBatch().
		Add(createQuery, map[string]interface{}{
			"id":          m.ID,
			"title":       m.Title,
			"description": m.Description,
			"code":        m.Code,
			"category":    string(m.Category),
			"images":      m.Images,
			"creator":     m.Creator,
		}).
		Add("UPDATE type::record($creator) SET maps += $map_id, updated_on = time::now()", map[string]interface{}{
			"creator": m.Creator,
			"map_id":  m.ID,
		})

	if err := batch.Execute(ctx, r.db); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: map code already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// GetByID fetches a map and its creator's nickname. Returns (nil, nil)
// when the map does not exist.
func (r *MapRepository) GetByID(ctx context.Context, id string) (*MapWithCreator, error) {
	query := "SELECT *, creator.nickname AS creator_nickname FROM type::record($id)"

	result, err := r.db.QueryOne(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseMapRecord(result)
}

// GetByIDs fetches maps by id, preserving no particular order.
func (r *MapRepository) GetByIDs(ctx context.Context, ids []string) ([]*MapWithCreator, error) {
	if len(ids) == 0 {
		return []*MapWithCreator{}, nil
	}

	query := `SELECT *, creator.nickname AS creator_nickname FROM map
		WHERE type::string(id) INSIDE $ids`

	results, err := r.db.Query(ctx, query, map[string]interface{}{"ids": ids})
	if err != nil {
		return nil, err
	}
	return parseMapRecords(results)
}

// ListByCreator fetches a user's maps, newest first.
func (r *MapRepository) ListByCreator(ctx context.Context, userID string) ([]*MapWithCreator, error) {
	query := `SELECT *, creator.nickname AS creator_nickname FROM map
		WHERE creator = type::record($creator) ORDER BY created_on DESC`

	results, err := r.db.Query(ctx, query, map[string]interface{}{"creator": userID})
	if err != nil {
		return nil, err
	}
	return parseMapRecords(results)
}

// List fetches one browse page.
func (r *MapRepository) List(ctx context.Context, filter ListFilter) ([]*MapWithCreator, error) {
	where, vars := buildMapFilter(filter)

	order := "created_on DESC"
	if filter.Sort == "popularity" {
		order = "likes_count DESC, created_on DESC"
	}

	query := fmt.Sprintf(
		"SELECT *, creator.nickname AS creator_nickname FROM map%s ORDER BY %s LIMIT $limit START $start",
		where, order,
	)
	vars["limit"] = filter.Limit
	vars["start"] = filter.Offset

	results, err := r.db.Query(ctx, query, vars)
	if err != nil {
		return nil, err
	}
	return parseMapRecords(results)
}

// Count returns the number of maps the filter matches.
func (r *MapRepository) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, vars := buildMapFilter(filter)

	query := fmt.Sprintf("SELECT count() AS count FROM map%s GROUP ALL", where)

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	if data, ok := result.(map[string]interface{}); ok {
		return getInt(data, "count"), nil
	}
	return extractCountValue(result), nil
}

// Update applies a partial edit to a map.
func (r *MapRepository) Update(ctx context.Context, id string, req *model.UpdateMapRequest) error {
	setParts := []string{"updated_on = time::now()"}
	vars := map[string]interface{}{"id": id}

	if req.Title != nil {
		setParts = append(setParts, "title = $title")
		vars["title"] = *req.Title
	}
	if req.Description != nil {
		setParts = append(setParts, "description = $description")
		vars["description"] = *req.Description
	}
	if req.Category != nil {
		setParts = append(setParts, "category = $category")
		vars["category"] = *req.Category
	}
	if req.Images != nil {
		setParts = append(setParts, "images = $images")
		vars["images"] = req.Images
	}

	query := fmt.Sprintf("UPDATE type::record($id) SET %s", strings.Join(setParts, ", "))
	return r.db.Execute(ctx, query, vars)
}

// DeleteCascade removes the map, its likes, and the creator's back
// reference in one transaction.
func (r *MapRepository) DeleteCascade(ctx context.Context, m *model.Map) error {
	batch := database.NewAtomicBatch().
		Add("UPDATE type::record($creator) SET maps -= $map_id, updated_on = time::now()", map[string]interface{}{
			"creator": m.Creator,
			"map_id":  m.ID,
		}).
		Add("DELETE like WHERE map = type::record($map_id)", map[string]interface{}{
			"map_id": m.ID,
		}).
		Add("DELETE type::record($id)", map[string]interface{}{
			"id": m.ID,
		})

	return batch.Execute(ctx, r.db)
}

func buildMapFilter(filter ListFilter) (string, map[string]interface{}) {
	var parts []string
	vars := map[string]interface{}{}

	if filter.Category != "" {
		parts = append(parts, "category = $category")
		vars["category"] = string(filter.Category)
	}
	if filter.Search != "" {
		parts = append(parts, `(string::contains(string::lowercase(title), $search)
			OR string::contains(string::lowercase(description), $search)
			OR string::contains(string::lowercase(code), $search))`)
		vars["search"] = strings.ToLower(filter.Search)
	}

	if len(parts) == 0 {
		return "", vars
	}
	return " WHERE " + strings.Join(parts, " AND "), vars
}

func parseMapRecords(results []interface{}) ([]*MapWithCreator, error) {
	records, ok := extractQueryResults(results)
	if !ok {
		return []*MapWithCreator{}, nil
	}

	maps := make([]*MapWithCreator, 0, len(records))
	for _, record := range records {
		m, err := parseMapRecord(record)
		if err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	return maps, nil
}

func parseMapRecord(result interface{}) (*MapWithCreator, error) {
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected map result format", database.ErrQuery)
	}

	return &MapWithCreator{
		Map: model.Map{
			ID:          extractRecordID(data["id"]),
			Title:       getString(data, "title"),
			Description: getString(data, "description"),
			Code:        getString(data, "code"),
			Category:    model.Category(getString(data, "category")),
			Images:      getStringSlice(data, "images"),
			Creator:     extractRecordID(data["creator"]),
			LikesCount:  getInt(data, "likes_count"),
			CreatedOn:   getTime(data, "created_on"),
			UpdatedOn:   getTime(data, "updated_on"),
		},
		CreatorNickname: getString(data, "creator_nickname"),
	}, nil
}
