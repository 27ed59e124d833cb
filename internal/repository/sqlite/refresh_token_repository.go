package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskmaster/internal/domain"
	"taskmaster/internal/repository"
)

const createRefreshTokensTable = `
CREATE TABLE IF NOT EXISTS refresh_tokens (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	token TEXT NOT NULL UNIQUE,
	expires DATETIME NOT NULL,
	created DATETIME NOT NULL,
	revoked DATETIME NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
`

type RefreshTokenRepository struct {
	db *sql.DB
}

func NewRefreshTokenRepository(db *sql.DB) repository.RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRefreshTokensTable); err != nil {
		return fmt.Errorf("create refresh_tokens table: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO refresh_tokens (user_id, token, expires, created)
VALUES (?, ?, ?, ?)`,
		token.UserID,
		token.Token,
		token.Expires.UTC(),
		token.Created.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert refresh token: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("refresh token last insert id: %w", err)
	}
	token.ID = id
	return id, nil
}

func (r *RefreshTokenRepository) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	var (
		rt      domain.RefreshToken
		revoked sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, user_id, token, expires, created, revoked
FROM refresh_tokens
WHERE token = ?`,
		token,
	).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.Expires, &rt.Created, &revoked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan refresh token: %w", err)
	}
	if revoked.Valid {
		t := revoked.Time
		rt.Revoked = &t
	}
	return &rt, nil
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE refresh_tokens
SET revoked=?
WHERE id=? AND revoked IS NULL`,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return requireAffected(res, "refresh_tokens")
}
