package customers

import (
	"context"
	"slices"

	"github.com/benbjohnson/clock"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/application/icontext"
	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	"github.com/vsinha/vantax/pkg/infrastructure/events"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap"
)

// Service manages the trade customers of each company
type Service struct {
	customers  repositories.CustomerRepository
	orders     repositories.OrderRepository
	promotions repositories.PromotionRepository
	publisher  events.Publisher
	clock      clock.Clock
	log        *zap.Logger
}

// NewService creates a customer service
func NewService(
	customers repositories.CustomerRepository,
	orders repositories.OrderRepository,
	promotions repositories.PromotionRepository,
	publisher events.Publisher,
	clk clock.Clock,
	log *zap.Logger,
) *Service {
	return &Service{
		customers:  customers,
		orders:     orders,
		promotions: promotions,
		publisher:  publisher,
		clock:      clk,
		log:        log,
	}
}

var _ services.CustomerService = (*Service)(nil)

func (s *Service) ListCustomers(ctx context.Context, companyID entities.CompanyID, filter repositories.CustomerFilter, page repositories.Page) (*dto.ListResult[*entities.Customer], error) {
	items, total, err := s.customers.FindCustomers(companyID, filter, page)
	if err != nil {
		return nil, err
	}
	return dto.NewListResult(items, total, page), nil
}

func (s *Service) GetCustomer(ctx context.Context, companyID entities.CompanyID, id entities.CustomerID) (*entities.Customer, error) {
	return s.customers.GetCustomer(companyID, id)
}

func (s *Service) CreateCustomer(ctx context.Context, companyID entities.CompanyID, in dto.CustomerInput) (*entities.Customer, error) {
	customer, err := entities.NewCustomer(
		entities.NewCustomerID(),
		companyID,
		in.Code, in.Name, in.Channel, in.Region, in.Tier,
		s.clock.Now().UTC(),
	)
	if err != nil {
		return nil, perrors.Invalid("customers/CreateCustomer", err)
	}
	if err := s.customers.SaveCustomer(customer); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewCustomerEvent(events.CustomerCreatedEvent, customer, icontext.Actor(ctx)))
	return customer, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, companyID entities.CompanyID, id entities.CustomerID, in dto.CustomerInput) (*entities.Customer, error) {
	customer, err := s.customers.UpdateCustomer(companyID, id, func(c *entities.Customer) error {
		updated, err := entities.NewCustomer(
			c.ID,
			companyID,
			in.Code, in.Name, in.Channel, in.Region, in.Tier,
			c.CreatedAt,
		)
		if err != nil {
			return perrors.Invalid("customers/UpdateCustomer", err)
		}
		*c = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewCustomerEvent(events.CustomerUpdatedEvent, customer, icontext.Actor(ctx)))
	return customer, nil
}

// DeleteCustomer removes a customer without orders that no promotion targets
func (s *Service) DeleteCustomer(ctx context.Context, companyID entities.CompanyID, id entities.CustomerID) error {
	const op = "customers/DeleteCustomer"

	existing, err := s.customers.GetCustomer(companyID, id)
	if err != nil {
		return err
	}
	orders, err := s.orders.GetOrders(companyID, repositories.OrderFilter{CustomerID: id})
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return perrors.Conflict(op, "customer %s has %d orders", existing.Code, len(orders))
	}
	promotions, err := s.promotions.GetAllPromotions(companyID)
	if err != nil {
		return err
	}
	for _, p := range promotions {
		if slices.Contains(p.CustomerIDs, id) {
			return perrors.Conflict(op, "customer %s is targeted by promotion %s", existing.Code, p.ID)
		}
	}
	if err := s.customers.DeleteCustomer(companyID, id); err != nil {
		return err
	}

	s.publish(ctx, events.NewCustomerEvent(events.CustomerDeletedEvent, existing, icontext.Actor(ctx)))
	return nil
}

func (s *Service) publish(ctx context.Context, event entities.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish event", zap.String("event_type", event.Type), zap.Error(err))
	}
}
