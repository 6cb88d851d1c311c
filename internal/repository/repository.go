package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
)

var (
	ErrDuplicateCustomer = errors.New("customer with this id already exists")
	ErrInvalidRecord     = errors.New("invalid customer record")
)

// purchaseDateFormat is fixed-width so stored text dates sort chronologically.
const purchaseDateFormat = "2006-01-02T15:04:05.000000Z07:00"

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// CustomerRepository is the persistence collaborator for customer records.
// Consumers depend on this interface; the backend is picked once at startup.
type CustomerRepository interface {
	// Insert stores a new record. A second insert with the same id fails with ErrDuplicateCustomer.
	Insert(ctx context.Context, customer *domain.Customer) error

	// ListAll returns every record ordered by purchase date, newest first.
	ListAll(ctx context.Context) ([]*domain.Customer, error)

	Ping(ctx context.Context) error
	Close() error
}

// record is the stored shape shared by the SQL and document backends.
type record struct {
	ID            string
	Name          string
	Email         string
	Phone         string
	PurchaseDate  string
	Total         domain.Money
	PaymentMethod string
	Items         string
}

func toRecord(c *domain.Customer) (*record, error) {
	items := c.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal customer items: %w", err)
	}
	return &record{
		ID:            c.ID,
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		PurchaseDate:  c.PurchaseDate.UTC().Format(purchaseDateFormat),
		Total:         c.Total,
		PaymentMethod: c.PaymentMethod,
		Items:         string(itemsJSON),
	}, nil
}

func (r *record) toCustomer() (*domain.Customer, error) {
	purchased, err := time.Parse(time.RFC3339Nano, r.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("%w: purchase_date %q: %v", ErrInvalidRecord, r.PurchaseDate, err)
	}
	var items []domain.LineItem
	if err := json.Unmarshal([]byte(r.Items), &items); err != nil {
		return nil, fmt.Errorf("%w: items: %v", ErrInvalidRecord, err)
	}
	return &domain.Customer{
		ID:            r.ID,
		Name:          r.Name,
		Email:         r.Email,
		Phone:         r.Phone,
		PurchaseDate:  purchased,
		Total:         r.Total,
		Items:         items,
		PaymentMethod: r.PaymentMethod,
	}, nil
}

func cloneCustomer(c *domain.Customer) *domain.Customer {
	cp := *c
	cp.Items = make([]domain.LineItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
