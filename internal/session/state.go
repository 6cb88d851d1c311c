package session

import (
	"time"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
)

type View string

const (
	ViewProducts     View = "products"
	ViewCart         View = "cart"
	ViewCheckout     View = "checkout"
	ViewConfirmation View = "confirmation"
	ViewAdmin        View = "admin"
	ViewLogin        View = "login"
)

func (v View) Valid() bool {
	switch v {
	case ViewProducts, ViewCart, ViewCheckout, ViewConfirmation, ViewAdmin, ViewLogin:
		return true
	}
	return false
}

// State is everything one visitor's session owns. CheckoutID is the customer id
// reserved for the current cart contents.
type State struct {
	ID            string        `json:"id"`
	Cart          domain.Cart   `json:"cart"`
	View          View          `json:"view"`
	Authenticated bool          `json:"authenticated"`
	AdminEmail    string        `json:"adminEmail,omitempty"`
	ProviderToken string        `json:"providerToken,omitempty"`
	LastOrder     *domain.Order `json:"lastOrder,omitempty"`
	CheckoutID    string        `json:"checkoutId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

func New(id string, now time.Time) *State {
	return &State{
		ID:        id,
		View:      ViewProducts,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *State) Clone() *State {
	cp := *s
	cp.Cart = *s.Cart.Clone()
	if s.LastOrder != nil {
		order := *s.LastOrder
		order.Items = append([]domain.LineItem(nil), s.LastOrder.Items...)
		cp.LastOrder = &order
	}
	return &cp
}

// CartChanged drops the reserved checkout id; the next checkout is a new purchase.
func (s *State) CartChanged() {
	s.CheckoutID = ""
}

// Navigate switches the view. Admin and login collapse to whichever one matches the auth flag.
func (s *State) Navigate(v View) {
	switch v {
	case ViewAdmin, ViewLogin:
		if s.Authenticated {
			s.View = ViewAdmin
		} else {
			s.View = ViewLogin
		}
	default:
		s.View = v
	}
}

func (s *State) SignOut() {
	s.Authenticated = false
	s.AdminEmail = ""
	s.ProviderToken = ""
	if s.View == ViewAdmin {
		s.View = ViewLogin
	}
}
