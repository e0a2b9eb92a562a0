package memory

import (
	"sync"

	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

// CustomerRepository provides in-memory customer storage, partitioned by company
type CustomerRepository struct {
	mu       sync.RWMutex
	expected int
	tenants  map[entities.CompanyID]*partition[entities.CustomerID, entities.Customer]
}

// NewCustomerRepository creates a new in-memory customer repository
func NewCustomerRepository(expectedCustomers int) *CustomerRepository {
	return &CustomerRepository{
		expected: expectedCustomers,
		tenants:  make(map[entities.CompanyID]*partition[entities.CustomerID, entities.Customer]),
	}
}

// Verify interface compliance
var _ repositories.CustomerRepository = (*CustomerRepository)(nil)

var customerOrder = lessFuncs[entities.Customer]{
	"name":       func(a, b *entities.Customer) bool { return a.Name < b.Name },
	"code":       func(a, b *entities.Customer) bool { return a.Code < b.Code },
	"region":     func(a, b *entities.Customer) bool { return a.Region < b.Region },
	"tier":       func(a, b *entities.Customer) bool { return a.Tier < b.Tier },
	"created_at": func(a, b *entities.Customer) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

// LoadCustomers loads customers into the repository
func (r *CustomerRepository) LoadCustomers(customers []*entities.Customer) error {
	for _, c := range customers {
		if err := r.SaveCustomer(c); err != nil {
			return err
		}
	}
	return nil
}

// SaveCustomer inserts or replaces a customer. Codes are unique within a company.
func (r *CustomerRepository) SaveCustomer(customer *entities.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tenants[customer.CompanyID]
	if !ok {
		p = newPartition[entities.CustomerID, entities.Customer](r.expected)
		r.tenants[customer.CompanyID] = p
	}
	for i := range p.rows {
		if p.rows[i].Code == customer.Code && p.rows[i].ID != customer.ID {
			return perrors.Conflict("memory/CustomerRepository.SaveCustomer", "duplicate customer code %s", customer.Code)
		}
	}
	p.put(customer.ID, *customer)
	return nil
}

// UpdateCustomer applies fn to a copy of the stored customer and stores the
// result only if fn, validation and the code check succeed
func (r *CustomerRepository) UpdateCustomer(
	companyID entities.CompanyID,
	id entities.CustomerID,
	fn func(*entities.Customer) error,
) (*entities.Customer, error) {
	const op = "memory/CustomerRepository.UpdateCustomer"

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tenants[companyID]
	if !ok {
		return nil, perrors.NotFound(op, "customer not found: %s", id)
	}
	stored, ok := p.get(id)
	if !ok {
		return nil, perrors.NotFound(op, "customer not found: %s", id)
	}

	updated := *stored
	if err := fn(&updated); err != nil {
		return nil, err
	}
	updated.ID, updated.CompanyID = id, companyID
	if err := updated.Validate(); err != nil {
		return nil, perrors.Invalid(op, err)
	}
	for i := range p.rows {
		if p.rows[i].Code == updated.Code && p.rows[i].ID != id {
			return nil, perrors.Conflict(op, "duplicate customer code %s", updated.Code)
		}
	}
	p.put(id, updated)

	cp := updated
	return &cp, nil
}

// GetCustomer returns a customer by id within a company
func (r *CustomerRepository) GetCustomer(companyID entities.CompanyID, id entities.CustomerID) (*entities.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.tenants[companyID]; ok {
		if c, ok := p.get(id); ok {
			cp := *c
			return &cp, nil
		}
	}
	return nil, perrors.NotFound("memory/CustomerRepository.GetCustomer", "customer not found: %s", id)
}

// FindCustomers returns the filtered, sorted and windowed customers plus the
// number of matches before windowing
func (r *CustomerRepository) FindCustomers(companyID entities.CompanyID, filter repositories.CustomerFilter, page repositories.Page) ([]*entities.Customer, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.tenants[companyID]
	if !ok {
		return []*entities.Customer{}, 0, nil
	}

	matched := make([]*entities.Customer, 0, len(p.rows))
	for i := range p.rows {
		c := &p.rows[i]
		if (filter.Channel != nil && *filter.Channel != c.Channel) ||
			(filter.Tier != nil && *filter.Tier != c.Tier) ||
			!equalFoldOrEmpty(filter.Region, c.Region) ||
			!matchesQuery(filter.Query, c.Name, c.Code) {
			continue
		}
		cp := *c
		matched = append(matched, &cp)
	}

	items, total := paginate(matched, page, customerOrder)
	return items, total, nil
}

// GetAllCustomers returns every customer of a company in creation order
func (r *CustomerRepository) GetAllCustomers(companyID entities.CompanyID) ([]*entities.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var customers []*entities.Customer
	if p, ok := r.tenants[companyID]; ok {
		for i := range p.rows {
			cp := p.rows[i]
			customers = append(customers, &cp)
		}
	}
	return customers, nil
}

// DeleteCustomer removes a customer
func (r *CustomerRepository) DeleteCustomer(companyID entities.CompanyID, id entities.CustomerID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.tenants[companyID]; ok {
		if p.remove(id, func(v *entities.Customer) entities.CustomerID { return v.ID }) {
			return nil
		}
	}
	return perrors.NotFound("memory/CustomerRepository.DeleteCustomer", "customer not found: %s", id)
}
