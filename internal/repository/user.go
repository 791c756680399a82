package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/database"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
)

// UserRepository handles user persistence
type UserRepository struct {
	db database.Database
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.Database) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user. The email and google_id columns carry
// unique indexes; violations surface as database.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = newRecordID("user")
	}
	if user.Maps == nil {
		user.Maps = []string{}
	}

	query := `CREATE type::record($id) CONTENT {
		nickname: $nickname,
		is_custom_name: $is_custom_name,
		status: $status,
		google_id: $google_id,
		provider: $provider,
		display_name: $display_name,
		email: $email,
		photo: $photo,
		maps: $maps,
		created_on: time::now(),
		updated_on: time::now()
	}`

	vars := map[string]interface{}{
		"id":             user.ID,
		"nickname":       user.Nickname,
		"is_custom_name": user.IsCustomName,
		"status":         user.Status,
		"google_id":      user.GoogleID,
		"provider":       user.Provider,
		"display_name":   user.DisplayName,
		"email":          strings.ToLower(user.Email),
		"photo":          user.Photo,
		"maps":           user.Maps,
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: user already exists", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// GetByID fetches a user by record id. Returns (nil, nil) when the
// user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, "SELECT * FROM type::record($id)", map[string]interface{}{
		"id": id,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseUser(result)
}

// GetByGoogleID fetches a user by the provider subject identifier.
// Returns (nil, nil) when no account is linked to it.
func (r *UserRepository) GetByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	result, err := r.db.QueryOne(ctx, "SELECT * FROM user WHERE google_id = $google_id LIMIT 1", map[string]interface{}{
		"google_id": googleID,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseUser(result)
}

// GetStatus fetches only the fields the login-status endpoint needs.
func (r *UserRepository) GetStatus(ctx context.Context, id string) (*model.UserStatus, error) {
	result, err := r.db.QueryOne(ctx, "SELECT nickname, photo FROM type::record($id)", map[string]interface{}{
		"id": id,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected user result format", database.ErrQuery)
	}
	return &model.UserStatus{
		Nickname: getString(data, "nickname"),
		Photo:    getString(data, "photo"),
	}, nil
}

// UpdateProfile applies a partial profile edit. Setting a nickname
// marks it as custom so provider syncs stop overwriting it.
func (r *UserRepository) UpdateProfile(ctx context.Context, id string, nickname, status *string) (*model.User, error) {
	setParts := []string{"updated_on = time::now()"}
	vars := map[string]interface{}{"id": id}

	if nickname != nil {
		setParts = append(setParts, "nickname = $nickname", "is_custom_name = true")
		vars["nickname"] = *nickname
	}
	if status != nil {
		setParts = append(setParts, "status = $status")
		vars["status"] = *status
	}

	query := fmt.Sprintf("UPDATE type::record($id) SET %s", strings.Join(setParts, ", "))

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		if isUniqueConstraintError(err) {
			return nil, fmt.Errorf("%w: nickname already taken", database.ErrDuplicate)
		}
		return nil, err
	}
	return parseUser(result)
}

// UpdateIdentity refreshes the provider-sourced fields after a
// successful account-link update.
func (r *UserRepository) UpdateIdentity(ctx context.Context, id string, user *model.User) (*model.User, error) {
	query := `UPDATE type::record($id) SET
		google_id = $google_id,
		provider = $provider,
		display_name = $display_name,
		email = $email,
		photo = $photo,
		updated_on = time::now()`

	vars := map[string]interface{}{
		"id":           id,
		"google_id":    user.GoogleID,
		"provider":     user.Provider,
		"display_name": user.DisplayName,
		"email":        strings.ToLower(user.Email),
		"photo":        user.Photo,
	}

	result, err := r.db.QueryOne(ctx, query, vars)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseUser(result)
}

// DeleteAccountCascade removes the user and everything hanging off it
// in one transaction: like counters on liked maps are decremented, the
// user's likes, maps, sessions, and finally the user record itself
// are deleted.
func (r *UserRepository) DeleteAccountCascade(ctx context.Context, userID string, likedMapIDs []string) error {
	batch := database.NewAtomicBatch()

	for _, mapID := range likedMapIDs {
		batch.Add("UPDATE type::record($id) SET likes_count -= 1", map[string]interface{}{
			"id": mapID,
		})
	}
	batch.Add("DELETE like WHERE user = type::record($user)", map[string]interface{}{
		"user": userID,
	})
	batch.Add("DELETE map WHERE creator = type::record($user)", map[string]interface{}{
		"user": userID,
	})
	batch.Add("DELETE session WHERE user_id = $user_id", map[string]interface{}{
		"user_id": userID,
	})
	batch.Add("DELETE type::record($id)", map[string]interface{}{
		"id": userID,
	})

	return batch.Execute(ctx, r.db)
}

// parseUser converts a SurrealDB record map into a model.User
func parseUser(result interface{}) (*model.User, error) {
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected user result format", database.ErrQuery)
	}

	return &model.User{
		ID:           extractRecordID(data["id"]),
		Nickname:     getString(data, "nickname"),
		IsCustomName: getBool(data, "is_custom_name"),
		Status:       getString(data, "status"),
		GoogleID:     getString(data, "google_id"),
		Provider:     getString(data, "provider"),
		DisplayName:  getString(data, "display_name"),
		Email:        getString(data, "email"),
		Photo:        getString(data, "photo"),
		Maps:         getStringSlice(data, "maps"),
		CreatedOn:    getTime(data, "created_on"),
		UpdatedOn:    getTime(data, "updated_on"),
	}, nil
}
