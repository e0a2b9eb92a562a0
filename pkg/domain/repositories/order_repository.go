package repositories

import (
	"time"

	"github.com/vsinha/vantax/pkg/domain/entities"
)

// OrderFilter narrows an order listing. From and To are inclusive.
type OrderFilter struct {
	CustomerID entities.CustomerID
	ProductID  entities.ProductID
	Status     *entities.OrderStatus
	From       time.Time
	To         time.Time
}

// OrderRepository provides access to sales orders
type OrderRepository interface {
	GetOrder(companyID entities.CompanyID, id entities.OrderID) (*entities.Order, error)
	FindOrders(companyID entities.CompanyID, filter OrderFilter, page Page) ([]*entities.Order, int, error)
	GetOrders(companyID entities.CompanyID, filter OrderFilter) ([]*entities.Order, error)
	SaveOrder(order *entities.Order) error
	UpdateOrder(companyID entities.CompanyID, id entities.OrderID, fn func(*entities.Order) error) (*entities.Order, error)
	LoadOrders(orders []*entities.Order) error
}
