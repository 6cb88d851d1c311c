package session

import (
	"context"
	"errors"
)

var ErrSessionNotFound = errors.New("session not found")

// Store persists session state between requests. Implementations return copies;
// callers must Save to publish changes.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
}
