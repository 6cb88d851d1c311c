package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DemoAdminEmail    = "admin@example.com"
	DemoAdminPassword = "password"
)

// LocalProvider checks a single configured admin account against a bcrypt hash
// and keeps issued tokens in memory.
type LocalProvider struct {
	email string
	hash  []byte

	mu     sync.Mutex
	tokens map[string]string
}

func NewLocalProvider(email, passwordHash string) (*LocalProvider, error) {
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	return &LocalProvider{
		email:  strings.ToLower(strings.TrimSpace(email)),
		hash:   []byte(passwordHash),
		tokens: make(map[string]string),
	}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (p *LocalProvider) SignInWithPassword(ctx context.Context, email, password string) (*User, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	if strings.ToLower(strings.TrimSpace(email)) != p.email {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(p.hash, []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token := uuid.New().String()
	p.mu.Lock()
	p.tokens[token] = p.email
	p.mu.Unlock()

	return &User{ID: p.email, Email: p.email}, token, nil
}

func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	p.mu.Lock()
	delete(p.tokens, token)
	p.mu.Unlock()
	return nil
}

func (p *LocalProvider) GetUser(ctx context.Context, token string) (*User, error) {
	p.mu.Lock()
	email, ok := p.tokens[token]
	p.mu.Unlock()
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return &User{ID: email, Email: email}, nil
}
