package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
)

// MemoryRepository keeps records in process memory. Used for demo mode and tests;
// everything is lost on restart.
type MemoryRepository struct {
	mu        sync.RWMutex
	customers []*domain.Customer
	ids       map[string]struct{}
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{ids: make(map[string]struct{})}
}

func (m *MemoryRepository) Insert(ctx context.Context, customer *domain.Customer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.ids[customer.ID]; exists {
		return ErrDuplicateCustomer
	}
	m.ids[customer.ID] = struct{}{}
	m.customers = append(m.customers, cloneCustomer(customer))
	return nil
}

func (m *MemoryRepository) ListAll(ctx context.Context) ([]*domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	out := make([]*domain.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, cloneCustomer(c))
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PurchaseDate.After(out[j].PurchaseDate)
	})
	return out, nil
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryRepository) Close() error {
	return nil
}
