package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultPlans []byte

var (
	ErrPlanNotFound   = errors.New("plan not found")
	ErrInvalidCatalog = errors.New("invalid catalog")
)

// Catalog is the immutable list of purchasable plans.
type Catalog struct {
	plans []domain.Plan
	byID  map[int64]int
}

type catalogFile struct {
	Plans []domain.Plan `yaml:"plans"`
}

// Load reads the catalog from path, or the built-in plans when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultPlans
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read catalog file: %w", err)
		}
		data = b
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	return New(f.Plans...)
}

func New(plans ...domain.Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: no plans", ErrInvalidCatalog)
	}
	c := &Catalog{
		plans: make([]domain.Plan, 0, len(plans)),
		byID:  make(map[int64]int, len(plans)),
	}
	for _, p := range plans {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: plan %d has no name", ErrInvalidCatalog, p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: plan %d has a negative price", ErrInvalidCatalog, p.ID)
		}
		if p.Price.HasSubCents() {
			return nil, fmt.Errorf("%w: plan %d price %s is finer than a centavo", ErrInvalidCatalog, p.ID, p.Price.Decimal.String())
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate plan id %d", ErrInvalidCatalog, p.ID)
		}
		c.byID[p.ID] = len(c.plans)
		c.plans = append(c.plans, p)
	}
	return c, nil
}

func (c *Catalog) All() []domain.Plan {
	out := make([]domain.Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

func (c *Catalog) Get(id int64) (domain.Plan, error) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Plan{}, ErrPlanNotFound
	}
	return c.plans[i], nil
}
