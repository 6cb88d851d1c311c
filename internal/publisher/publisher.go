package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
)

const (
	DefaultTopic = "storefront-orders"

	EventOrderMaterialized = "order.materialized"
)

type OrderEvent struct {
	CustomerID   string            `json:"customer_id"`
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	Total        domain.Money      `json:"total"`
	Items        []domain.LineItem `json:"items"`
	PurchaseDate time.Time         `json:"purchase_date"`
}

func NewOrderEvent(c *domain.Customer) OrderEvent {
	return OrderEvent{
		CustomerID:   c.ID,
		Name:         c.Name,
		Email:        c.Email,
		Total:        c.Total,
		Items:        c.Items,
		PurchaseDate: c.PurchaseDate.UTC(),
	}
}

// Publisher announces completed orders. Delivery is best effort.
type Publisher interface {
	PublishOrderMaterialized(ctx context.Context, customer *domain.Customer) error
	Close() error
}

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishOrderMaterialized(ctx context.Context, customer *domain.Customer) error {
	payload, err := json.Marshal(NewOrderEvent(customer))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	p.logger.InfoContext(ctx, "order event",
		"event_type", EventOrderMaterialized,
		"customer_id", customer.ID,
		"payload", string(payload))
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
