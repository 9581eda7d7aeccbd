package domain

import "time"

type User struct {
	ID           string
	Name         string // display name shown on the profile
	Username     string // unique, stored lowercase
	Email        string // unique, stored lowercase
	PasswordHash string // scrypt encoded, see pkg/cryptox
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the caller-facing view of a user. Downstream handlers only ever
// see this; the password hash never leaves the auth core.
type Identity struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Identity strips the credential material from a User.
func (u User) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Name:     u.Name,
		Username: u.Username,
		Email:    u.Email,
	}
}
