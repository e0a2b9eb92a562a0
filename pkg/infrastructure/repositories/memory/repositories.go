package memory

import (
	"fmt"

	"github.com/vsinha/vantax/pkg/domain/services"
)

// Repositories bundles one in-memory store per aggregate
type Repositories struct {
	Companies  *CompanyRepository
	Users      *UserRepository
	Products   *ProductRepository
	Customers  *CustomerRepository
	Promotions *PromotionRepository
	Orders     *OrderRepository
}

// NewRepositories creates empty stores
func NewRepositories() *Repositories {
	return &Repositories{
		Companies:  NewCompanyRepository(8),
		Users:      NewUserRepository(),
		Products:   NewProductRepository(64),
		Customers:  NewCustomerRepository(64),
		Promotions: NewPromotionRepository(),
		Orders:     NewOrderRepository(256),
	}
}

// Load seeds every store from a dataset. Companies go first so that the
// tenant partitions exist before their records arrive.
func (r *Repositories) Load(d *services.Dataset) error {
	if err := r.Companies.LoadCompanies(d.Companies); err != nil {
		return fmt.Errorf("load companies: %w", err)
	}
	if err := r.Users.LoadUsers(d.Users); err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if err := r.Products.LoadProducts(d.Products); err != nil {
		return fmt.Errorf("load products: %w", err)
	}
	if err := r.Customers.LoadCustomers(d.Customers); err != nil {
		return fmt.Errorf("load customers: %w", err)
	}
	if err := r.Promotions.LoadPromotions(d.Promotions); err != nil {
		return fmt.Errorf("load promotions: %w", err)
	}
	if err := r.Orders.LoadOrders(d.Orders); err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	return nil
}
