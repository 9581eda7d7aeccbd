package store

import (
	"context"
	"errors"
	"time"

	"github.com/foldstash/foldstash/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. Sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	Sessions() Sessions

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Session
	// rotation uses this so a half-rotated record can never be observed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the username or email is taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByLogin resolves a user by username or email. The caller is
	// expected to pass a trimmed, lowercased value.
	GetUserByLogin(ctx context.Context, login string) (domain.User, error)

	// DeleteUser removes a user; sessions cascade per schema.
	DeleteUser(ctx context.Context, userID string) error
}

type Sessions interface {
	// CreateSession stores a new session record. Token hashes must be
	// unique; a collision surfaces as an error, not silent replacement.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByAccessHash returns the record matching the access token
	// fingerprint regardless of expiry. Expiry policy lives in the
	// service layer.
	GetSessionByAccessHash(ctx context.Context, hash string) (domain.Session, error)

	// GetSessionByRefreshHash returns the record matching the refresh
	// token fingerprint regardless of expiry.
	GetSessionByRefreshHash(ctx context.Context, hash string) (domain.Session, error)

	// UpdateSessionTokens overwrites the hashes, expirations and metadata
	// of an existing record in place (same id), bumping updated_at. Used
	// for rotation. Returns ErrNotFound if the record vanished, which a
	// concurrent rotation or logout can legitimately cause.
	UpdateSessionTokens(ctx context.Context, s domain.Session) error

	// DeleteSession removes a record by id. Idempotent.
	DeleteSession(ctx context.Context, id string) error

	// DeleteSessionByAccessHash removes any record matching. Idempotent.
	DeleteSessionByAccessHash(ctx context.Context, hash string) error

	// DeleteSessionByRefreshHash removes any record matching. Idempotent.
	DeleteSessionByRefreshHash(ctx context.Context, hash string) error

	// DeleteUserSessions removes every session owned by a user (bulk
	// logout, e.g. after account deletion).
	DeleteUserSessions(ctx context.Context, userID string) error

	// DeleteExpiredSessions purges records whose refresh expiry has
	// passed, returning how many were removed. Rows with only a stale
	// access expiry are kept: they can still be rotated.
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}
