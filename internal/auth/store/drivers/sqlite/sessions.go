package sqlite

import (
	"context"
	"time"

	"github.com/foldstash/foldstash/internal/auth/domain"
	"github.com/foldstash/foldstash/internal/auth/store"
)

type sessionsRepo struct {
	db dbtx
}

const sessionColumns = `id, user_id, access_token_hash, refresh_token_hash,
	access_expires_at, refresh_expires_at, user_agent, ip, created_at, updated_at`

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (
			id, user_id, access_token_hash, refresh_token_hash,
			access_expires_at, refresh_expires_at, user_agent, ip,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.AccessTokenHash, s.RefreshTokenHash,
		s.AccessExpiresAt.UTC(), s.RefreshExpiresAt.UTC(), s.UserAgent, s.IP,
		now, now,
	)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByAccessHash(ctx context.Context, hash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE access_token_hash = ?`, hash)
	return scanSession(row)
}

func (r *sessionsRepo) GetSessionByRefreshHash(ctx context.Context, hash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE refresh_token_hash = ?`, hash)
	return scanSession(row)
}

// UpdateSessionTokens rewrites the whole credential payload of one record, a
// rotate-in-place. The row keeps its id and created_at.
func (r *sessionsRepo) UpdateSessionTokens(ctx context.Context, s domain.Session) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET
			access_token_hash = ?,
			refresh_token_hash = ?,
			access_expires_at = ?,
			refresh_expires_at = ?,
			user_agent = ?,
			ip = ?,
			updated_at = ?
		WHERE id = ?`,
		s.AccessTokenHash, s.RefreshTokenHash,
		s.AccessExpiresAt.UTC(), s.RefreshExpiresAt.UTC(),
		s.UserAgent, s.IP, time.Now().UTC(), s.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *sessionsRepo) DeleteSession(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

func (r *sessionsRepo) DeleteSessionByAccessHash(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE access_token_hash = ?`, hash)
	return err
}

func (r *sessionsRepo) DeleteSessionByRefreshHash(ctx context.Context, hash string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token_hash = ?`, hash)
	return err
}

func (r *sessionsRepo) DeleteUserSessions(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE refresh_expires_at <= ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanSession(row rowScanner) (domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.AccessTokenHash,
		&s.RefreshTokenHash,
		&s.AccessExpiresAt,
		&s.RefreshExpiresAt,
		&s.UserAgent,
		&s.IP,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	return s, nil
}
