package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
	"golang.org/x/sync/singleflight"
)

var ErrCustomersUnavailable = errors.New("customer records unavailable")

type CustomerLister interface {
	ListAll(ctx context.Context) ([]*domain.Customer, error)
}

// Service is the read side of the admin area.
type Service struct {
	repo        CustomerLister
	location    *time.Location
	group       singleflight.Group
	loadTimeout time.Duration
}

func NewService(repo CustomerLister, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{repo: repo, location: location, loadTimeout: 10 * time.Second}
}

// List returns every customer record, newest purchase first. Concurrent calls share
// one backend read, so the returned records must be treated as read-only.
// The shared read is detached from any single caller; each caller stops waiting
// when its own ctx is done.
func (s *Service) List(ctx context.Context) ([]*domain.Customer, error) {
	ch := s.group.DoChan("customers", func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
		defer cancel()
		return s.repo.ListAll(loadCtx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCustomersUnavailable, res.Err)
		}
		return res.Val.([]*domain.Customer), nil
	}
}

// Filter keeps customers whose name, email or phone contains term, ignoring case.
// An empty term keeps everything.
func Filter(customers []*domain.Customer, term string) []*domain.Customer {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return customers
	}

	out := make([]*domain.Customer, 0, len(customers))
	for _, c := range customers {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Email), term) ||
			strings.Contains(strings.ToLower(c.Phone), term) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Service) Location() *time.Location {
	return s.location
}
