package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/foldstash/foldstash/internal/auth/domain"
	"github.com/foldstash/foldstash/internal/auth/store"
	"github.com/foldstash/foldstash/pkg/cryptox"
	"github.com/foldstash/foldstash/pkg/idx"
	"github.com/foldstash/foldstash/pkg/slogx"
)

// AuthService is the facade the transport layer talks to. It composes the
// credential checks with the session lifecycle so handlers never touch
// hashes or the store directly.
type AuthService struct {
	Store    store.Store
	Sessions *SessionService
}

// Register creates a user and signs them in atomically. All field validation
// happens up front; a username or email collision surfaces as ErrConflict
// without revealing which of the two collided.
func (s *AuthService) Register(
	ctx context.Context,
	name, username, email, password string,
	meta domain.SessionMeta,
) (domain.Identity, domain.SessionTokens, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.ToLower(strings.TrimSpace(email))

	if !validName(name) {
		return domain.Identity{}, domain.SessionTokens{}, invalidField("name",
			"name must be between 3 and 20 characters")
	}
	if !validUsername(username) {
		return domain.Identity{}, domain.SessionTokens{}, invalidField("username",
			"username must be 1 to 20 characters with no spaces")
	}
	if !validEmail(email) {
		return domain.Identity{}, domain.SessionTokens{}, invalidField("email",
			"email address is not valid")
	}
	if !strongPassword(password) {
		return domain.Identity{}, domain.SessionTokens{}, invalidField("password",
			"password must be at least 7 characters and mix letters, digits and symbols")
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Identity{}, domain.SessionTokens{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Identity{}, domain.SessionTokens{}, ErrConflict
		}
		return domain.Identity{}, domain.SessionTokens{}, err
	}

	tokens, err := s.Sessions.Create(ctx, user.ID, meta)
	if err != nil {
		return domain.Identity{}, domain.SessionTokens{}, err
	}

	log.Info("user registered", "user_id", user.ID, "username", username)
	return user.Identity(), tokens, nil
}

// Login verifies credentials and opens a session. The login field accepts a
// username or an email. Unknown account and wrong password collapse into the
// same ErrInvalidCredentials so callers cannot probe for registered accounts,
// and the hash is verified even for unknown logins to keep timing flat.
func (s *AuthService) Login(
	ctx context.Context,
	login, password string,
	meta domain.SessionMeta,
) (domain.Identity, domain.SessionTokens, error) {
	log := slogx.FromContext(ctx)

	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || password == "" {
		return domain.Identity{}, domain.SessionTokens{}, ErrInvalidCredentials
	}

	user, err := s.Store.Users().GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			cryptox.VerifyPassword(password, decoyHash)
			return domain.Identity{}, domain.SessionTokens{}, ErrInvalidCredentials
		}
		return domain.Identity{}, domain.SessionTokens{}, err
	}

	if !cryptox.VerifyPassword(password, user.PasswordHash) {
		log.Info("login rejected", "user_id", user.ID)
		return domain.Identity{}, domain.SessionTokens{}, ErrInvalidCredentials
	}

	tokens, err := s.Sessions.Create(ctx, user.ID, meta)
	if err != nil {
		return domain.Identity{}, domain.SessionTokens{}, err
	}

	log.Info("login accepted", "user_id", user.ID)
	return user.Identity(), tokens, nil
}

// Authenticate resolves a raw access token to the identity behind it.
// Expired or unknown tokens return ErrUnauthenticated; so does a session
// whose user has since been deleted, in which case the orphaned session is
// cleaned up.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (domain.Identity, error) {
	session, err := s.Sessions.GetByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, ErrUnauthenticated
		}
		return domain.Identity{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.Store.Sessions().DeleteSession(ctx, session.ID)
			return domain.Identity{}, ErrUnauthenticated
		}
		return domain.Identity{}, err
	}

	return user.Identity(), nil
}

// Refresh rotates a refresh token into a fresh pair and returns the identity
// alongside it. Any failure to rotate means the session is unrecoverable and
// the caller should drop its cookies.
func (s *AuthService) Refresh(
	ctx context.Context,
	refreshToken string,
	meta domain.SessionMeta,
) (domain.Identity, domain.SessionTokens, error) {
	tokens, err := s.Sessions.Rotate(ctx, refreshToken, meta)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Identity{}, domain.SessionTokens{}, ErrUnauthenticated
		}
		return domain.Identity{}, domain.SessionTokens{}, err
	}

	user, err := s.Store.Users().GetUserByID(ctx, tokens.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.Sessions.RevokeByRefreshToken(ctx, tokens.RefreshToken)
			return domain.Identity{}, domain.SessionTokens{}, ErrUnauthenticated
		}
		return domain.Identity{}, domain.SessionTokens{}, err
	}

	return user.Identity(), tokens, nil
}

// Logout revokes the session behind either token. Missing or already-revoked
// tokens are fine; logout never fails for being late.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken != "" {
		if err := s.Sessions.RevokeByAccessToken(ctx, accessToken); err != nil {
			return err
		}
	}
	if refreshToken != "" {
		if err := s.Sessions.RevokeByRefreshToken(ctx, refreshToken); err != nil {
			return err
		}
	}
	return nil
}

// decoyHash is a valid hash of a throwaway value, verified on unknown-login
// paths so a miss costs the same as a wrong password.
var decoyHash = func() string {
	h, err := cryptox.HashPassword("decoy-password-for-timing")
	if err != nil {
		panic(err)
	}
	return h
}()
