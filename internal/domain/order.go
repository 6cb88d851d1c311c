package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

const PaymentMethodPix = "pix"

var (
	ErrNameRequired  = errors.New("name is required")
	ErrInvalidEmail  = errors.New("email is invalid")
	ErrPhoneRequired = errors.New("phone is required")
)

type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Normalize trims surrounding whitespace from every field.
func (ci CustomerInfo) Normalize() CustomerInfo {
	return CustomerInfo{
		Name:  strings.TrimSpace(ci.Name),
		Email: strings.TrimSpace(ci.Email),
		Phone: strings.TrimSpace(ci.Phone),
	}
}

// Validate applies the checkout form's required-field rules. Call it on normalized input.
func (ci CustomerInfo) Validate() error {
	if ci.Name == "" {
		return ErrNameRequired
	}
	addr, err := mail.ParseAddress(ci.Email)
	if err != nil || addr.Address != ci.Email || !strings.Contains(ci.Email, "@") {
		return ErrInvalidEmail
	}
	if ci.Phone == "" {
		return ErrPhoneRequired
	}
	return nil
}

// Order is the snapshot shown on the confirmation view.
type Order struct {
	ID           string       `json:"id"`
	Items        []LineItem   `json:"items"`
	Total        Money        `json:"total"`
	CustomerInfo CustomerInfo `json:"customerInfo"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Customer is the persisted record of a completed order.
type Customer struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	PurchaseDate  time.Time  `json:"purchaseDate"`
	Total         Money      `json:"total"`
	Items         []LineItem `json:"items"`
	PaymentMethod string     `json:"paymentMethod"`
}
