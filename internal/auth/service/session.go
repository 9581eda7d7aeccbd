package service

import (
	"context"
	"fmt"
	"time"

	"github.com/foldstash/foldstash/internal/auth/domain"
	"github.com/foldstash/foldstash/internal/auth/store"
	"github.com/foldstash/foldstash/pkg/cryptox"
	"github.com/foldstash/foldstash/pkg/idx"
	"github.com/foldstash/foldstash/pkg/slogx"
)

// Default token lifetimes. Access must always be strictly shorter than
// refresh; app config validation enforces the same for overrides.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 30 * 24 * time.Hour
)

// SessionService owns the token-pair lifecycle: mint, look up, rotate in
// place, revoke. It persists only fingerprints; raw tokens pass through and
// are gone once returned.
type SessionService struct {
	Store      store.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Create mints a fresh access/refresh pair for the user, persists the hashed
// record and returns the raw pair. This is the only place besides Rotate
// where raw tokens exist server-side.
func (s *SessionService) Create(
	ctx context.Context,
	userID string,
	meta domain.SessionMeta,
) (domain.SessionTokens, error) {
	accessToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.SessionTokens{}, fmt.Errorf("mint access token: %w", err)
	}
	refreshToken, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.SessionTokens{}, fmt.Errorf("mint refresh token: %w", err)
	}

	now := time.Now()
	record := domain.Session{
		ID:               idx.New().String(),
		UserID:           userID,
		AccessTokenHash:  cryptox.FingerprintToken(accessToken),
		RefreshTokenHash: cryptox.FingerprintToken(refreshToken),
		AccessExpiresAt:  now.Add(s.AccessTTL),
		RefreshExpiresAt: now.Add(s.RefreshTTL),
		UserAgent:        meta.UserAgent,
		IP:               meta.IP,
	}

	if err := s.Store.Sessions().CreateSession(ctx, record); err != nil {
		return domain.SessionTokens{}, err
	}

	return domain.SessionTokens{
		UserID:           userID,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  record.AccessExpiresAt,
		RefreshExpiresAt: record.RefreshExpiresAt,
	}, nil
}

// GetByAccessToken resolves a session by the raw access token. An expired
// record reads as store.ErrNotFound but is NOT deleted: access expiry is lazy
// and non-destructive so the refresh flow can still rotate the same record.
func (s *SessionService) GetByAccessToken(ctx context.Context, accessToken string) (domain.Session, error) {
	hash := cryptox.FingerprintToken(accessToken)

	record, err := s.Store.Sessions().GetSessionByAccessHash(ctx, hash)
	if err != nil {
		return domain.Session{}, err
	}
	if expired(record.AccessExpiresAt) {
		return domain.Session{}, store.ErrNotFound
	}
	return record, nil
}

// Rotate exchanges a raw refresh token for a brand-new pair, overwriting the
// SAME record in place. A refresh token past its expiry deletes the record
// outright, forcing re-authentication; that asymmetry with the access path is
// deliberate. Rotation is one-shot: once the new hashes are committed the old
// pair matches nothing, so a stolen-then-superseded refresh token is dead.
func (s *SessionService) Rotate(
	ctx context.Context,
	refreshToken string,
	meta domain.SessionMeta,
) (domain.SessionTokens, error) {
	log := slogx.FromContext(ctx)
	hash := cryptox.FingerprintToken(refreshToken)

	var tokens domain.SessionTokens

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		record, err := tx.Sessions().GetSessionByRefreshHash(ctx, hash)
		if err != nil {
			return err
		}

		if expired(record.RefreshExpiresAt) {
			// Destructive: a dead refresh token must not be reusable.
			if err := tx.Sessions().DeleteSession(ctx, record.ID); err != nil {
				return err
			}
			log.Info("session expired, deleted on rotate", "session_id", record.ID)
			return store.ErrNotFound
		}

		newAccess, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("mint access token: %w", err)
		}
		newRefresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("mint refresh token: %w", err)
		}

		now := time.Now()
		record.AccessTokenHash = cryptox.FingerprintToken(newAccess)
		record.RefreshTokenHash = cryptox.FingerprintToken(newRefresh)
		record.AccessExpiresAt = now.Add(s.AccessTTL)
		record.RefreshExpiresAt = now.Add(s.RefreshTTL)
		record.UserAgent = meta.UserAgent
		record.IP = meta.IP

		if err := tx.Sessions().UpdateSessionTokens(ctx, record); err != nil {
			// A concurrent rotation or logout already replaced or
			// removed the row; fail closed.
			return err
		}

		tokens = domain.SessionTokens{
			UserID:           record.UserID,
			AccessToken:      newAccess,
			RefreshToken:     newRefresh,
			AccessExpiresAt:  record.AccessExpiresAt,
			RefreshExpiresAt: record.RefreshExpiresAt,
		}
		return nil
	})
	if err != nil {
		return domain.SessionTokens{}, err
	}

	return tokens, nil
}

// RevokeByAccessToken deletes any session matching the raw access token.
// Idempotent: revoking an unknown or already-revoked token is not an error.
func (s *SessionService) RevokeByAccessToken(ctx context.Context, accessToken string) error {
	return s.Store.Sessions().DeleteSessionByAccessHash(ctx, cryptox.FingerprintToken(accessToken))
}

// RevokeByRefreshToken deletes any session matching the raw refresh token.
func (s *SessionService) RevokeByRefreshToken(ctx context.Context, refreshToken string) error {
	return s.Store.Sessions().DeleteSessionByRefreshHash(ctx, cryptox.FingerprintToken(refreshToken))
}

func expired(at time.Time) bool {
	return !at.After(time.Now())
}
