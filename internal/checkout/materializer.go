package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/repository"
)

// CustomerSaver is the only persistence capability checkout needs.
type CustomerSaver interface {
	Insert(ctx context.Context, customer *domain.Customer) error
}

type Option func(*Materializer)

// WithClock replaces time.Now for the purchase timestamp.
func WithClock(now func() time.Time) Option {
	return func(m *Materializer) { m.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Materializer) { m.newID = newID }
}

// WithSaveTimeout bounds the single save attempt. Zero keeps the caller's deadline.
func WithSaveTimeout(d time.Duration) Option {
	return func(m *Materializer) { m.saveTimeout = d }
}

// Materializer turns a live cart into an Order and a persisted Customer.
type Materializer struct {
	saver       CustomerSaver
	now         func() time.Time
	newID       func() string
	saveTimeout time.Duration
}

func NewMaterializer(saver CustomerSaver, opts ...Option) *Materializer {
	m := &Materializer{
		saver: saver,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Outcome is a materialized checkout. Replayed is set when the customer record
// already existed under the requested id.
type Outcome struct {
	Order    *domain.Order
	Customer *domain.Customer
	Replayed bool
}

// Materialize snapshots the cart, saves one customer record and clears the cart.
// The cart is cleared only after the save succeeded; on any error it is left as it was.
// info is expected to be validated by the caller.
func (m *Materializer) Materialize(ctx context.Context, cart *domain.Cart, info domain.CustomerInfo) (*domain.Order, *domain.Customer, error) {
	out, err := m.MaterializeAs(ctx, m.newID(), cart, info)
	if err != nil {
		return nil, nil, err
	}
	return out.Order, out.Customer, nil
}

// MaterializeAs is Materialize under a caller-chosen id. Submitting the same id twice
// stores one record: a duplicate insert counts as already done and still clears the cart.
func (m *Materializer) MaterializeAs(ctx context.Context, id string, cart *domain.Cart, info domain.CustomerInfo) (Outcome, error) {
	if cart == nil || cart.IsEmpty() {
		return Outcome{}, ErrEmptyCart
	}

	now := m.now()
	total := cart.Total()

	order := &domain.Order{
		ID:           id,
		Items:        cart.Items(),
		Total:        total,
		CustomerInfo: info,
		CreatedAt:    now,
	}
	customer := &domain.Customer{
		ID:            id,
		Name:          info.Name,
		Email:         info.Email,
		Phone:         info.Phone,
		PurchaseDate:  now,
		Total:         total,
		Items:         cart.Items(),
		PaymentMethod: domain.PaymentMethodPix,
	}

	saveCtx := ctx
	if m.saveTimeout > 0 {
		var cancel context.CancelFunc
		saveCtx, cancel = context.WithTimeout(ctx, m.saveTimeout)
		defer cancel()
	}

	replayed := false
	if err := m.saver.Insert(saveCtx, customer); err != nil {
		if !errors.Is(err, repository.ErrDuplicateCustomer) {
			return Outcome{}, fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
		replayed = true
	}

	cart.Clear()
	return Outcome{Order: order, Customer: customer, Replayed: replayed}, nil
}
