package repositories

import "github.com/vsinha/vantax/pkg/domain/entities"

// CustomerFilter narrows a customer listing. Zero values match everything.
type CustomerFilter struct {
	Channel *entities.Channel
	Region  string
	Tier    *entities.Tier
	Query   string
}

// CustomerRepository provides access to trade customers
type CustomerRepository interface {
	GetCustomer(companyID entities.CompanyID, id entities.CustomerID) (*entities.Customer, error)
	FindCustomers(companyID entities.CompanyID, filter CustomerFilter, page Page) ([]*entities.Customer, int, error)
	GetAllCustomers(companyID entities.CompanyID) ([]*entities.Customer, error)
	SaveCustomer(customer *entities.Customer) error
	UpdateCustomer(companyID entities.CompanyID, id entities.CustomerID, fn func(*entities.Customer) error) (*entities.Customer, error)
	DeleteCustomer(companyID entities.CompanyID, id entities.CustomerID) error
	LoadCustomers(customers []*entities.Customer) error
}
