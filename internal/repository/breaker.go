package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
)

var ErrStoreUnavailable = errors.New("customer store unavailable")

type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	OpenTimeout         time.Duration
}

// BreakerRepository fails fast while the wrapped remote store keeps failing.
// It never retries: one call in, at most one call out.
type BreakerRepository struct {
	next CustomerRepository
	cb   *gobreaker.CircuitBreaker[[]*domain.Customer]
}

func NewBreakerRepository(next CustomerRepository, s BreakerSettings, logger *slog.Logger) *BreakerRepository {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker[[]*domain.Customer](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("customer store breaker state changed",
				"breaker", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// caller-side outcomes say nothing about backend health
			return err == nil ||
				errors.Is(err, ErrDuplicateCustomer) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &BreakerRepository{next: next, cb: cb}
}

func (b *BreakerRepository) Insert(ctx context.Context, customer *domain.Customer) error {
	_, err := b.cb.Execute(func() ([]*domain.Customer, error) {
		return nil, b.next.Insert(ctx, customer)
	})
	return b.translate(err)
}

func (b *BreakerRepository) ListAll(ctx context.Context) ([]*domain.Customer, error) {
	customers, err := b.cb.Execute(func() ([]*domain.Customer, error) {
		return b.next.ListAll(ctx)
	})
	if err != nil {
		return nil, b.translate(err)
	}
	return customers, nil
}

func (b *BreakerRepository) Ping(ctx context.Context) error {
	return b.next.Ping(ctx)
}

func (b *BreakerRepository) Close() error {
	return b.next.Close()
}

func (b *BreakerRepository) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerRepository) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
