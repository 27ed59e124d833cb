package domain

import "time"

// RoleClient is the role granted to every self-registered user.
const RoleClient = "Client"

// User represents an account that can own tasks and authenticate against the API.
type User struct {
	ID             int64
	UserName       string
	Email          string
	FirstName      string
	LastName       string
	Phone          string
	PasswordHash   string
	IsActive       bool
	EmailConfirmed bool
	PhoneConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RefreshToken is an opaque credential exchanged for a new access token.
type RefreshToken struct {
	ID      int64
	UserID  int64
	Token   string
	Expires time.Time
	Created time.Time
	Revoked *time.Time
}

// IsExpired reports whether the token is past its expiry at now.
func (t RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.Expires)
}

// IsActive reports whether the token can still be exchanged.
func (t RefreshToken) IsActive(now time.Time) bool {
	return t.Revoked == nil && !t.IsExpired(now)
}
