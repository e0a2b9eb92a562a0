package memory

import (
	"sync"

	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

// OrderRepository provides in-memory order storage, partitioned by company
type OrderRepository struct {
	mu       sync.RWMutex
	expected int
	tenants  map[entities.CompanyID]*partition[entities.OrderID, *entities.Order]
}

// NewOrderRepository creates a new in-memory order repository
func NewOrderRepository(expectedOrders int) *OrderRepository {
	return &OrderRepository{
		expected: expectedOrders,
		tenants:  make(map[entities.CompanyID]*partition[entities.OrderID, *entities.Order]),
	}
}

// Verify interface compliance
var _ repositories.OrderRepository = (*OrderRepository)(nil)

var orderOrder = lessFuncs[entities.Order]{
	"order_date": func(a, b *entities.Order) bool { return a.OrderDate.Before(b.OrderDate) },
	"total":      func(a, b *entities.Order) bool { return a.Total().LessThan(b.Total()) },
	"status":     func(a, b *entities.Order) bool { return a.Status < b.Status },
}

// LoadOrders loads orders into the repository
func (r *OrderRepository) LoadOrders(orders []*entities.Order) error {
	for _, o := range orders {
		if err := r.SaveOrder(o); err != nil {
			return err
		}
	}
	return nil
}

// SaveOrder inserts or replaces an order
func (r *OrderRepository) SaveOrder(order *entities.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tenants[order.CompanyID]
	if !ok {
		p = newPartition[entities.OrderID, *entities.Order](r.expected)
		r.tenants[order.CompanyID] = p
	}
	p.put(order.ID, order.Clone())
	return nil
}

// GetOrder returns an order by id within a company
func (r *OrderRepository) GetOrder(companyID entities.CompanyID, id entities.OrderID) (*entities.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.tenants[companyID]; ok {
		if o, ok := p.get(id); ok {
			return (*o).Clone(), nil
		}
	}
	return nil, perrors.NotFound("memory/OrderRepository.GetOrder", "order not found: %s", id)
}

// UpdateOrder applies fn to a copy of the stored order and stores the
// result only if fn succeeds
func (r *OrderRepository) UpdateOrder(companyID entities.CompanyID, id entities.OrderID, fn func(*entities.Order) error) (*entities.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.tenants[companyID]; ok {
		if stored, ok := p.get(id); ok {
			updated := (*stored).Clone()
			if err := fn(updated); err != nil {
				return nil, err
			}
			p.put(id, updated)
			return updated.Clone(), nil
		}
	}
	return nil, perrors.NotFound("memory/OrderRepository.UpdateOrder", "order not found: %s", id)
}

func matchesOrder(o *entities.Order, filter repositories.OrderFilter) bool {
	if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
		return false
	}
	if filter.Status != nil && *filter.Status != o.Status {
		return false
	}
	if !filter.From.IsZero() && o.OrderDate.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && o.OrderDate.After(filter.To) {
		return false
	}
	if filter.ProductID != "" {
		for _, l := range o.Lines {
			if l.ProductID == filter.ProductID {
				return true
			}
		}
		return false
	}
	return true
}

// FindOrders returns the filtered, sorted and windowed orders plus the
// number of matches before windowing
func (r *OrderRepository) FindOrders(companyID entities.CompanyID, filter repositories.OrderFilter, page repositories.Page) ([]*entities.Order, int, error) {
	matched, err := r.GetOrders(companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	items, total := paginate(matched, page, orderOrder)
	return items, total, nil
}

// GetOrders returns every matching order in creation order, unpaginated
func (r *OrderRepository) GetOrders(companyID entities.CompanyID, filter repositories.OrderFilter) ([]*entities.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.tenants[companyID]
	if !ok {
		return []*entities.Order{}, nil
	}

	matched := make([]*entities.Order, 0, len(p.rows))
	for _, o := range p.rows {
		if matchesOrder(o, filter) {
			matched = append(matched, o.Clone())
		}
	}
	return matched, nil
}
