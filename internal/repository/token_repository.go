package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/movietown/movietown-api/internal/model"
)

// TokenRepo persists refresh-token state.  Only the SHA-256 hash of a
// token ever reaches the table, so its contents cannot be replayed to
// mint a session.  Revocation is a soft delete; the row stays behind
// with revoked_at set.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// StoreRefresh records a refresh-token hash for the user.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, expiresAt time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, expires_at) VALUES (?,?,?)",
		userID, tokenHash, expiresAt)
	return err
}

// ValidateRefresh resolves a token hash to its owning user.  Revoked
// and expired tokens report sql.ErrNoRows, indistinguishable from a
// hash that was never issued.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	var tok model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&tok.ID, &tok.UserID, &tok.TokenHash, &tok.ExpiresAt, &tok.RevokedAt, &tok.CreatedAt)
	if err != nil {
		return 0, err
	}
	if tok.RevokedAt != nil {
		return 0, sql.ErrNoRows
	}
	if time.Now().UTC().After(tok.ExpiresAt) {
		return 0, sql.ErrNoRows
	}
	return tok.UserID, nil
}

// RevokeByHash revokes a single token.  Already-revoked rows are left
// as they are so the original revocation time survives.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes every active token of one user, the
// "log out everywhere" operation.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=NOW() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
