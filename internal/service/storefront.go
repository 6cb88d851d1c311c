package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/admin"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/auth"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/checkout"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/publisher"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/session"
)

type Catalog interface {
	All() []domain.Plan
	Get(id int64) (domain.Plan, error)
}

type Materializer interface {
	MaterializeAs(ctx context.Context, id string, cart *domain.Cart, info domain.CustomerInfo) (checkout.Outcome, error)
}

type Authenticator interface {
	SignIn(ctx context.Context, st *session.State, email, password string) error
	SignOut(ctx context.Context, st *session.State)
	CurrentSession(ctx context.Context, st *session.State) (auth.Status, bool)
}

type CustomerLister interface {
	List(ctx context.Context) ([]*domain.Customer, error)
}

// Locker serializes work on one session across processes sharing a session store.
type Locker interface {
	Lock(ctx context.Context, id string) (unlock func(), err error)
}

// Deps are the Storefront's collaborators. Locks is optional; without it sessions
// are only serialized within this process.
type Deps struct {
	Catalog   Catalog
	Sessions  session.Store
	Checkout  Materializer
	Gate      Authenticator
	Customers CustomerLister
	Publisher publisher.Publisher
	Logger    *slog.Logger
	Locks     Locker
}

// Storefront owns every session's state. Calls for the same session run one at a
// time from load to save; different sessions proceed in parallel.
type Storefront struct {
	catalog        Catalog
	sessions       session.Store
	checkout       Materializer
	gate           Authenticator
	customers      CustomerLister
	publisher      publisher.Publisher
	logger         *slog.Logger
	locks          *sessionLocks
	sharedLocks    Locker
	now            func() time.Time
	newID          func() string
	publishTimeout time.Duration
}

func New(d Deps) *Storefront {
	return &Storefront{
		catalog:        d.Catalog,
		sessions:       d.Sessions,
		checkout:       d.Checkout,
		gate:           d.Gate,
		customers:      d.Customers,
		publisher:      d.Publisher,
		logger:         d.Logger,
		locks:          newSessionLocks(),
		sharedLocks:    d.Locks,
		now:            time.Now,
		newID:          uuid.NewString,
		publishTimeout: 5 * time.Second,
	}
}

// CheckoutView is what the checkout form shows before submission.
type CheckoutView struct {
	Items            []domain.LineItem `json:"items"`
	Total            domain.Money      `json:"total"`
	PaymentReference string            `json:"pixCode,omitempty"`
}

func (s *Storefront) Plans() []domain.Plan {
	return s.catalog.All()
}

func (s *Storefront) Plan(id int64) (domain.Plan, error) {
	return s.catalog.Get(id)
}

// State returns the session's current state without changing it.
func (s *Storefront) State(ctx context.Context, sid string) (*session.State, error) {
	unlock, err := s.lock(ctx, sid)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.load(ctx, sid)
}

func (s *Storefront) AddItem(ctx context.Context, sid string, planID int64) (*session.State, error) {
	plan, err := s.catalog.Get(planID)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, sid, func(st *session.State) error {
		st.Cart.AddItem(plan)
		st.CartChanged()
		st.Navigate(session.ViewCart)
		return nil
	})
}

func (s *Storefront) RemoveItem(ctx context.Context, sid string, planID int64) (*session.State, error) {
	return s.update(ctx, sid, func(st *session.State) error {
		st.Cart.RemoveItem(planID)
		st.CartChanged()
		return nil
	})
}

func (s *Storefront) UpdateQuantity(ctx context.Context, sid string, planID int64, quantity int) (*session.State, error) {
	return s.update(ctx, sid, func(st *session.State) error {
		st.Cart.UpdateQuantity(planID, quantity)
		st.CartChanged()
		return nil
	})
}

func (s *Storefront) Navigate(ctx context.Context, sid string, view session.View) (*session.State, error) {
	return s.update(ctx, sid, func(st *session.State) error {
		st.Navigate(view)
		return nil
	})
}

// BeginCheckout moves a non-empty cart to the checkout view.
func (s *Storefront) BeginCheckout(ctx context.Context, sid string) (*CheckoutView, error) {
	var view *CheckoutView
	_, err := s.update(ctx, sid, func(st *session.State) error {
		if st.Cart.IsEmpty() {
			return checkout.ErrEmptyCart
		}
		st.Navigate(session.ViewCheckout)
		view = &CheckoutView{
			Items:            st.Cart.Items(),
			Total:            st.Cart.Total(),
			PaymentReference: PaymentReference(&st.Cart),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Checkout validates the buyer, materializes the cart and announces the order.
// On any failure the session's cart and view are left exactly as they were.
func (s *Storefront) Checkout(ctx context.Context, sid string, info domain.CustomerInfo) (*domain.Order, error) {
	info = info.Normalize()
	if err := info.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCustomerInfo, err)
	}

	out, err := s.materialize(ctx, sid, info)
	if err != nil {
		return nil, err
	}

	if !out.Replayed {
		s.publish(ctx, out.Customer)
	}
	return out.Order, nil
}

// materialize reserves a checkout id in the session before the customer record is
// written, so resubmitting the same cart after a lost session write reuses that id.
func (s *Storefront) materialize(ctx context.Context, sid string, info domain.CustomerInfo) (checkout.Outcome, error) {
	unlock, err := s.lock(ctx, sid)
	if err != nil {
		return checkout.Outcome{}, err
	}
	defer unlock()

	st, err := s.load(ctx, sid)
	if err != nil {
		return checkout.Outcome{}, err
	}
	if st.Cart.IsEmpty() {
		return checkout.Outcome{}, checkout.ErrEmptyCart
	}

	if st.CheckoutID == "" {
		st.CheckoutID = s.newID()
		if err := s.save(ctx, st); err != nil {
			return checkout.Outcome{}, err
		}
	}

	out, err := s.checkout.MaterializeAs(ctx, st.CheckoutID, &st.Cart, info)
	if err != nil {
		if errors.Is(err, checkout.ErrSaveFailed) {
			s.logger.ErrorContext(ctx, "checkout save failed", "session_id", sid, "error", err)
		}
		return checkout.Outcome{}, err
	}
	order := out.Order

	st.CheckoutID = ""
	st.LastOrder = order
	st.Navigate(session.ViewConfirmation)
	if err := s.save(ctx, st); err != nil {
		// the customer record is already stored, so the order stands
		s.logger.ErrorContext(ctx, "order saved but session update failed",
			"session_id", sid, "order_id", order.ID, "error", err)
	}

	if out.Replayed {
		s.logger.InfoContext(ctx, "checkout resubmitted for a stored order", "session_id", sid, "order_id", order.ID)
	} else {
		s.logger.InfoContext(ctx, "order materialized",
			"session_id", sid, "order_id", order.ID, "total", order.Total.String(), "items", len(order.Items))
	}
	return out, nil
}

func (s *Storefront) publish(ctx context.Context, customer *domain.Customer) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := s.publisher.PublishOrderMaterialized(pubCtx, customer); err != nil {
		s.logger.WarnContext(ctx, "order event not published", "order_id", customer.ID, "error", err)
	}
}

func (s *Storefront) LastOrder(ctx context.Context, sid string) (*domain.Order, error) {
	st, err := s.State(ctx, sid)
	if err != nil {
		return nil, err
	}
	if st.LastOrder == nil {
		return nil, ErrNoOrder
	}
	return st.LastOrder, nil
}

// SignIn always persists the outcome, so a failed attempt also clears a stale flag.
func (s *Storefront) SignIn(ctx context.Context, sid, email, password string) (auth.Status, error) {
	unlock, err := s.lock(ctx, sid)
	if err != nil {
		return auth.Status{}, err
	}
	defer unlock()

	st, err := s.load(ctx, sid)
	if err != nil {
		return auth.Status{}, err
	}

	signInErr := s.gate.SignIn(ctx, st, email, password)
	if err := s.save(ctx, st); err != nil {
		return auth.Status{}, err
	}
	if signInErr != nil {
		s.logger.WarnContext(ctx, "admin sign-in rejected", "session_id", sid)
		return auth.Status{}, signInErr
	}

	s.logger.InfoContext(ctx, "admin signed in", "session_id", sid, "email", st.AdminEmail)
	return auth.Status{Authenticated: true, Email: st.AdminEmail}, nil
}

func (s *Storefront) SignOut(ctx context.Context, sid string) error {
	_, err := s.update(ctx, sid, func(st *session.State) error {
		s.gate.SignOut(ctx, st)
		return nil
	})
	return err
}

func (s *Storefront) AuthStatus(ctx context.Context, sid string) (auth.Status, error) {
	unlock, err := s.lock(ctx, sid)
	if err != nil {
		return auth.Status{}, err
	}
	defer unlock()

	st, err := s.load(ctx, sid)
	if err != nil {
		return auth.Status{}, err
	}
	status, changed := s.gate.CurrentSession(ctx, st)
	if changed {
		if err := s.save(ctx, st); err != nil {
			return auth.Status{}, err
		}
	}
	return status, nil
}

// Customers lists customer records for a signed-in admin, filtered by term.
func (s *Storefront) Customers(ctx context.Context, sid, term string) ([]*domain.Customer, error) {
	st, err := s.State(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !st.Authenticated {
		return nil, ErrUnauthorized
	}

	customers, err := s.customers.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load customers", "error", err)
		return nil, err
	}
	return admin.Filter(customers, term), nil
}

// PaymentReference is the PIX code shown at checkout: the first line's plan reference.
func PaymentReference(cart *domain.Cart) string {
	items := cart.Items()
	if len(items) == 0 {
		return ""
	}
	return items[0].Plan.PaymentReference
}

func (s *Storefront) update(ctx context.Context, sid string, mutate func(*session.State) error) (*session.State, error) {
	unlock, err := s.lock(ctx, sid)
	if err != nil {
		return nil, err
	}
	defer unlock()

	st, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if err := mutate(st); err != nil {
		return nil, err
	}
	if err := s.save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// lock serializes work on one session: in process always, across replicas when a
// shared Locker is configured.
func (s *Storefront) lock(ctx context.Context, sid string) (func(), error) {
	unlockLocal := s.locks.Lock(sid)
	if s.sharedLocks == nil {
		return unlockLocal, nil
	}
	release, err := s.sharedLocks.Lock(ctx, sid)
	if err != nil {
		unlockLocal()
		return nil, fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return func() {
		release()
		unlockLocal()
	}, nil
}

func (s *Storefront) load(ctx context.Context, sid string) (*session.State, error) {
	st, err := s.sessions.Get(ctx, sid)
	if errors.Is(err, session.ErrSessionNotFound) {
		return session.New(sid, s.now()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return st, nil
}

func (s *Storefront) save(ctx context.Context, st *session.State) error {
	st.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, st); err != nil {
		return fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	return nil
}
