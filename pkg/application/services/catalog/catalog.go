package catalog

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

// Service manages the product catalog of each company
type Service struct {
	products   repositories.ProductRepository
	orders     repositories.OrderRepository
	promotions repositories.PromotionRepository
	publisher  events.Publisher
	clock      clock.Clock
	log        *zap.Logger
}

// NewService creates a catalog service
func NewService(
	products repositories.ProductRepository,
	orders repositories.OrderRepository,
	promotions repositories.PromotionRepository,
	publisher events.Publisher,
	clk clock.Clock,
	log *zap.Logger,
) *Service {
	return &Service{
		products:   products,
		orders:     orders,
		promotions: promotions,
		publisher:  publisher,
		clock:      clk,
		log:        log,
	}
}

var _ services.ProductService = (*Service)(nil)

func (s *Service) ListProducts(ctx context.Context, companyID entities.CompanyID, filter repositories.ProductFilter, page repositories.Page) (*dto.ListResult[*entities.Product], error) {
	items, total, err := s.products.FindProducts(companyID, filter, page)
	if err != nil {
		return nil, err
	}
	return dto.NewListResult(items, total, page), nil
}

func (s *Service) GetProduct(ctx context.Context, companyID entities.CompanyID, id entities.ProductID) (*entities.Product, error) {
	return s.products.GetProduct(companyID, id)
}

// CreateProduct validates and stores a new product with a generated ID
func (s *Service) CreateProduct(ctx context.Context, companyID entities.CompanyID, in dto.ProductInput) (*entities.Product, error) {
	product, err := entities.NewProduct(
		entities.NewProductID(),
		companyID,
		in.SKU, in.Name, in.Category, in.Brand,
		in.UnitPrice, in.UnitCost,
		in.Status,
		s.clock.Now().UTC(),
	)
	if err != nil {
		return nil, perrors.Invalid("catalog/CreateProduct", err)
	}
	if err := s.products.SaveProduct(product); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewProductEvent(events.ProductCreatedEvent, product, icontext.Actor(ctx)))
	return product, nil
}

// UpdateProduct replaces the writable fields of an existing product
func (s *Service) UpdateProduct(ctx context.Context, companyID entities.CompanyID, id entities.ProductID, in dto.ProductInput) (*entities.Product, error) {
	product, err := s.products.UpdateProduct(companyID, id, func(p *entities.Product) error {
		updated, err := entities.NewProduct(
			p.ID,
			companyID,
			in.SKU, in.Name, in.Category, in.Brand,
			in.UnitPrice, in.UnitCost,
			in.Status,
			p.CreatedAt,
		)
		if err != nil {
			return perrors.Invalid("catalog/UpdateProduct", err)
		}
		*p = *updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewProductEvent(events.ProductUpdatedEvent, product, icontext.Actor(ctx)))
	return product, nil
}

// DeleteProduct removes a product that no order or promotion refers to.
// Products with sales history are discontinued instead.
func (s *Service) DeleteProduct(ctx context.Context, companyID entities.CompanyID, id entities.ProductID) error {
	const op = "catalog/DeleteProduct"

	existing, err := s.products.GetProduct(companyID, id)
	if err != nil {
		return err
	}
	orders, err := s.orders.GetOrders(companyID, repositories.OrderFilter{ProductID: id})
	if err != nil {
		return err
	}
	if len(orders) > 0 {
		return perrors.Conflict(op, "product %s has %d orders, discontinue it instead", existing.SKU, len(orders))
	}
	promotions, err := s.promotions.GetAllPromotions(companyID)
	if err != nil {
		return err
	}
	for _, p := range promotions {
		if slices.Contains(p.ProductIDs, id) {
			return perrors.Conflict(op, "product %s is part of promotion %s", existing.SKU, p.ID)
		}
	}
	if err := s.products.DeleteProduct(companyID, id); err != nil {
		return err
	}

	s.publish(ctx, events.NewProductEvent(events.ProductDeletedEvent, existing, icontext.Actor(ctx)))
	return nil
}

// publish logs journal failures; the write itself already happened
func (s *Service) publish(ctx context.Context, event entities.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish event", zap.String("event_type", event.Type), zap.Error(err))
	}
}
