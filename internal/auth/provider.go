package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrProviderUnavailable = errors.New("auth provider unavailable")
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Provider is the external authority that checks admin credentials.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*User, string, error)
	SignOut(ctx context.Context, token string) error
	// GetUser resolves a token issued by SignInWithPassword. Unknown or revoked
	// tokens fail with ErrInvalidCredentials.
	GetUser(ctx context.Context, token string) (*User, error)
}
