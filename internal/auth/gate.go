package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/session"
)

type Status struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}

// Gate keeps the session's authenticated flag in step with the provider.
// It mutates the state it is given; callers own locking and saving.
type Gate struct {
	provider Provider
	logger   *slog.Logger
}

func NewGate(provider Provider, logger *slog.Logger) *Gate {
	return &Gate{provider: provider, logger: logger}
}

func (g *Gate) SignIn(ctx context.Context, st *session.State, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		st.SignOut()
		return ErrInvalidCredentials
	}

	user, token, err := g.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		st.SignOut()
		if errors.Is(err, ErrInvalidCredentials) {
			return ErrInvalidCredentials
		}
		g.logger.ErrorContext(ctx, "admin sign-in failed", "error", err)
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	st.Authenticated = true
	st.AdminEmail = user.Email
	st.ProviderToken = token
	st.Navigate(session.ViewAdmin)
	return nil
}

// SignOut always clears the local flag; a provider failure is only logged.
func (g *Gate) SignOut(ctx context.Context, st *session.State) {
	if st.ProviderToken != "" {
		if err := g.provider.SignOut(ctx, st.ProviderToken); err != nil {
			g.logger.WarnContext(ctx, "provider sign-out failed", "error", err)
		}
	}
	st.SignOut()
}

// CurrentSession re-checks the stored token. A token the provider rejects drops
// the flag; an unreachable provider keeps it. changed reports whether st was modified.
func (g *Gate) CurrentSession(ctx context.Context, st *session.State) (status Status, changed bool) {
	if !st.Authenticated {
		return Status{}, false
	}

	user, err := g.provider.GetUser(ctx, st.ProviderToken)
	switch {
	case err == nil:
		if user.Email != "" && user.Email != st.AdminEmail {
			st.AdminEmail = user.Email
			changed = true
		}
	case errors.Is(err, ErrInvalidCredentials):
		st.SignOut()
		return Status{}, true
	default:
		g.logger.WarnContext(ctx, "could not verify admin session", "error", err)
	}
	return Status{Authenticated: true, Email: st.AdminEmail}, changed
}
