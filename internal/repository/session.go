package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/database"
	"github.com/AlonS3/fall-guys-custom-maps-backend/internal/model"
)

// SessionRepository handles server-side session persistence. Sessions
// are keyed by their opaque token, which carries a unique index.
type SessionRepository struct {
	db database.Database
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db database.Database) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `CREATE session CONTENT {
		token: $token,
		user_id: $user_id,
		expires_on: $expires_on,
		touched_on: $touched_on,
		created_on: time::now()
	}`

	vars := map[string]interface{}{
		"token":      session.Token,
		"user_id":    session.UserID,
		"expires_on": datetime(session.ExpiresOn),
		"touched_on": datetime(session.TouchedOn),
	}

	if err := r.db.Execute(ctx, query, vars); err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: session token collision", database.ErrDuplicate)
		}
		return err
	}
	return nil
}

// Get fetches a session by token. Returns (nil, nil) when the token is
// unknown; expiry is the caller's concern.
func (r *SessionRepository) Get(ctx context.Context, token string) (*model.Session, error) {
	result, err := r.db.QueryOne(ctx, "SELECT * FROM session WHERE token = $token LIMIT 1", map[string]interface{}{
		"token": token,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return parseSession(result)
}

// Touch extends a session's expiry and stamps the touch time.
func (r *SessionRepository) Touch(ctx context.Context, token string, expiresOn time.Time) error {
	query := "UPDATE session SET expires_on = $expires_on, touched_on = time::now() WHERE token = $token"

	return r.db.Execute(ctx, query, map[string]interface{}{
		"token":      token,
		"expires_on": datetime(expiresOn),
	})
}

// Delete removes a session by token
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	return r.db.Execute(ctx, "DELETE session WHERE token = $token", map[string]interface{}{
		"token": token,
	})
}

// DeleteExpired removes every session past its expiry and returns how
// many were removed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int, error) {
	query := "DELETE session WHERE expires_on < time::now() RETURN BEFORE"

	results, err := r.db.Query(ctx, query, nil)
	if err != nil {
		return 0, err
	}

	records, ok := extractQueryResults(results)
	if !ok {
		return 0, nil
	}
	return len(records), nil
}

func parseSession(result interface{}) (*model.Session, error) {
	data, ok := result.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: unexpected session result format", database.ErrQuery)
	}

	return &model.Session{
		Token:     getString(data, "token"),
		UserID:    getString(data, "user_id"),
		ExpiresOn: getTime(data, "expires_on"),
		TouchedOn: getTime(data, "touched_on"),
		CreatedOn: getTime(data, "created_on"),
	}, nil
}
