package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/linguacenter/apiserver/types"
)

// RefreshTokenRepository handles persistence for server-stored refresh
// tokens.
type RefreshTokenRepository struct {
	db DBTX
}

func NewRefreshTokenRepository(db DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

// Create inserts a refresh token for userID expiring at now+validity.
func (r *RefreshTokenRepository) Create(ctx context.Context, userID int, token string, validity time.Duration) error {
	const query = `
		INSERT INTO refresh_tokens (token, user_id, expires_at)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, token, userID, time.Now().Add(validity)); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

// Find returns the stored row for the given token string.
func (r *RefreshTokenRepository) Find(ctx context.Context, token string) (types.RefreshToken, error) {
	const query = `
		SELECT token, user_id, expires_at
		FROM refresh_tokens
		WHERE token = $1`
	var rt types.RefreshToken
	err := r.db.QueryRowContext(ctx, query, token).Scan(&rt.Token, &rt.UserID, &rt.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.RefreshToken{}, ErrNotFound
		}
		return types.RefreshToken{}, err
	}
	return rt, nil
}

// Delete removes a refresh token by its token string. Returns ErrNotFound
// when the token is already gone, so two concurrent rotations of the same
// token cannot both succeed.
func (r *RefreshTokenRepository) Delete(ctx context.Context, token string) error {
	const query = `DELETE FROM refresh_tokens WHERE token = $1`
	return execAffectingOne(ctx, r.db, query, token)
}

// DeleteForUser revokes every refresh token held by the user.
func (r *RefreshTokenRepository) DeleteForUser(ctx context.Context, userID int) error {
	const query = `DELETE FROM refresh_tokens WHERE user_id = $1`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
