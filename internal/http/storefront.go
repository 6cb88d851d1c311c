package http

import (
	"context"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/auth"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/service"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/session"
)

// Storefront is the application surface the handlers drive.
type Storefront interface {
	Plans() []domain.Plan
	Plan(id int64) (domain.Plan, error)

	State(ctx context.Context, sid string) (*session.State, error)
	AddItem(ctx context.Context, sid string, planID int64) (*session.State, error)
	RemoveItem(ctx context.Context, sid string, planID int64) (*session.State, error)
	UpdateQuantity(ctx context.Context, sid string, planID int64, quantity int) (*session.State, error)
	Navigate(ctx context.Context, sid string, view session.View) (*session.State, error)

	BeginCheckout(ctx context.Context, sid string) (*service.CheckoutView, error)
	Checkout(ctx context.Context, sid string, info domain.CustomerInfo) (*domain.Order, error)
	LastOrder(ctx context.Context, sid string) (*domain.Order, error)

	SignIn(ctx context.Context, sid, email, password string) (auth.Status, error)
	SignOut(ctx context.Context, sid string) error
	AuthStatus(ctx context.Context, sid string) (auth.Status, error)
	Customers(ctx context.Context, sid, term string) ([]*domain.Customer, error)
}
