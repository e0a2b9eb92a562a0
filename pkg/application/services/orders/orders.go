package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/application/icontext"
	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	"github.com/vsinha/vantax/pkg/infrastructure/events"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// errNothingToApply aborts a promotion update that would book no spend
var errNothingToApply = errors.New("promotion has nothing to apply")

// Service captures sales orders. Line prices always come from the catalog
// and the best running promotion is applied automatically.
type Service struct {
	orders     repositories.OrderRepository
	products   repositories.ProductRepository
	customers  repositories.CustomerRepository
	promotions repositories.PromotionRepository
	publisher  events.Publisher
	clock      clock.Clock
	log        *zap.Logger
}

// NewService creates an order service
func NewService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	customers repositories.CustomerRepository,
	promotions repositories.PromotionRepository,
	publisher events.Publisher,
	clk clock.Clock,
	log *zap.Logger,
) *Service {
	return &Service{
		orders:     orders,
		products:   products,
		customers:  customers,
		promotions: promotions,
		publisher:  publisher,
		clock:      clk,
		log:        log,
	}
}

var _ services.OrderService = (*Service)(nil)

func (s *Service) ListOrders(ctx context.Context, companyID entities.CompanyID, filter repositories.OrderFilter, page repositories.Page) (*dto.ListResult[*entities.Order], error) {
	items, total, err := s.orders.FindOrders(companyID, filter, page)
	if err != nil {
		return nil, err
	}
	return dto.NewListResult(items, total, page), nil
}

func (s *Service) GetOrder(ctx context.Context, companyID entities.CompanyID, id entities.OrderID) (*entities.Order, error) {
	return s.orders.GetOrder(companyID, id)
}

// CreateOrder prices the requested lines, applies the best promotion and
// stores the order as Pending
func (s *Service) CreateOrder(ctx context.Context, companyID entities.CompanyID, in dto.OrderInput) (*entities.Order, error) {
	const op = "orders/CreateOrder"

	if _, err := s.customers.GetCustomer(companyID, in.CustomerID); err != nil {
		if perrors.ErrorCode(err) == perrors.ENotFound {
			return nil, perrors.Invalid(op, fmt.Errorf("unknown customer %s", in.CustomerID))
		}
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, perrors.Invalid(op, fmt.Errorf("order must have at least one line"))
	}

	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = s.clock.Now()
	}
	orderDate = orderDate.UTC()

	lines := make([]entities.OrderLine, 0, len(in.Lines))
	for i, l := range in.Lines {
		if l.Quantity <= 0 {
			return nil, perrors.Invalid(op, fmt.Errorf("line %d: quantity must be positive, got %d", i+1, l.Quantity))
		}
		product, err := s.products.GetProduct(companyID, l.ProductID)
		if err != nil {
			if perrors.ErrorCode(err) == perrors.ENotFound {
				return nil, perrors.Invalid(op, fmt.Errorf("line %d: unknown product %s", i+1, l.ProductID))
			}
			return nil, err
		}
		if product.Status == entities.ProductDiscontinued {
			return nil, &perrors.Error{
				Code: perrors.EUnprocessableEntity,
				Op:   op,
				Msg:  fmt.Sprintf("line %d: product %s is discontinued", i+1, product.SKU),
			}
		}
		lines = append(lines, entities.OrderLine{
			ProductID: product.ID,
			Quantity:  l.Quantity,
			UnitPrice: product.UnitPrice,
			Discount:  decimal.Zero,
		})
	}

	promotion, err := s.applyBestPromotion(companyID, in.CustomerID, orderDate, lines)
	if err != nil {
		return nil, err
	}
	var promotionID entities.PromotionID
	if promotion != nil {
		promotionID = promotion.ID
	}

	order, err := entities.NewOrder(entities.NewOrderID(), companyID, in.CustomerID, orderDate, entities.OrderPending, lines, promotionID)
	if err == nil {
		err = s.orders.SaveOrder(order)
	}
	if err != nil {
		if promotion != nil {
			s.releaseSpend(companyID, promotionID, sumDiscounts(lines))
		}
		if perrors.ErrorCode(err) == perrors.EInternal {
			return nil, perrors.Invalid(op, err)
		}
		return nil, err
	}

	actor := icontext.Actor(ctx)
	s.publish(ctx, events.NewOrderEvent(events.OrderCreatedEvent, order, actor))
	if promotion != nil {
		event := events.NewPromotionEvent(events.PromotionSpendRecordedEvent, promotion, actor)
		event.Data["amount"] = order.DiscountTotal().String()
		event.Data["order_id"] = string(order.ID)
		s.publish(ctx, event)
	}
	return order, nil
}

// applyBestPromotion tries the running promotions that cover the customer
// and at least one line, highest discount first, and books the discount of
// the first one with budget left. Discounts are written into lines. The
// budget check and spend booking happen under the promotion store's lock,
// so concurrent orders cannot overspend.
func (s *Service) applyBestPromotion(companyID entities.CompanyID, customerID entities.CustomerID, orderDate time.Time, lines []entities.OrderLine) (*entities.Promotion, error) {
	all, err := s.promotions.GetAllPromotions(companyID)
	if err != nil {
		return nil, err
	}

	var candidates []*entities.Promotion
	for _, p := range all {
		if p.Status != entities.PromotionActive || !p.RunsOn(orderDate) || !p.DiscountPct.IsPositive() {
			continue
		}
		for _, l := range lines {
			if p.Covers(customerID, l.ProductID) {
				candidates = append(candidates, p)
				break
			}
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DiscountPct.GreaterThan(candidates[j].DiscountPct)
	})

	for _, candidate := range candidates {
		var discounts []decimal.Decimal
		updated, err := s.promotions.UpdatePromotion(companyID, candidate.ID, func(p *entities.Promotion) error {
			if p.Status != entities.PromotionActive || !p.RunsOn(orderDate) {
				return errNothingToApply
			}
			var total decimal.Decimal
			discounts, total = allocateDiscounts(p, customerID, lines, p.RemainingBudget())
			if !total.IsPositive() {
				return errNothingToApply
			}
			return p.RecordSpend(total)
		})
		if errors.Is(err, errNothingToApply) {
			continue
		}
		if err != nil {
			return nil, err
		}
		for i := range lines {
			lines[i].Discount = discounts[i]
		}
		return updated, nil
	}
	return nil, nil
}

// allocateDiscounts computes the per-line discount of p, in line order,
// until the remaining budget runs out
func allocateDiscounts(p *entities.Promotion, customerID entities.CustomerID, lines []entities.OrderLine, remaining decimal.Decimal) ([]decimal.Decimal, decimal.Decimal) {
	discounts := make([]decimal.Decimal, len(lines))
	total := decimal.Zero
	for i, l := range lines {
		discounts[i] = decimal.Zero
		if !p.Covers(customerID, l.ProductID) || !remaining.IsPositive() {
			continue
		}
		d := l.Gross().Mul(p.DiscountPct).Div(hundred).Round(2)
		if d.GreaterThan(remaining) {
			d = remaining
		}
		discounts[i] = d
		remaining = remaining.Sub(d)
		total = total.Add(d)
	}
	return discounts, total
}

// UpdateStatus moves an order through its lifecycle. Cancelling a promoted
// order gives its discount back to the promotion budget.
func (s *Service) UpdateStatus(ctx context.Context, companyID entities.CompanyID, id entities.OrderID, to entities.OrderStatus) (*entities.Order, error) {
	var from entities.OrderStatus
	order, err := s.orders.UpdateOrder(companyID, id, func(o *entities.Order) error {
		from = o.Status
		if err := o.Transition(to); err != nil {
			return &perrors.Error{Code: perrors.EUnprocessableEntity, Op: "orders/UpdateStatus", Msg: err.Error()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if to == entities.OrderCancelled && order.PromotionID != "" {
		s.releaseSpend(companyID, order.PromotionID, order.DiscountTotal())
	}

	event := events.NewOrderEvent(events.OrderStatusChangedEvent, order, icontext.Actor(ctx))
	event.Data["from"] = from.String()
	s.publish(ctx, event)
	return order, nil
}

// releaseSpend returns amount to a promotion's budget. Failures are logged;
// the order change that triggered it has already happened.
func (s *Service) releaseSpend(companyID entities.CompanyID, id entities.PromotionID, amount decimal.Decimal) {
	if !amount.IsPositive() {
		return
	}
	_, err := s.promotions.UpdatePromotion(companyID, id, func(p *entities.Promotion) error {
		p.Spend = decimal.Max(decimal.Zero, p.Spend.Sub(amount))
		return nil
	})
	if err != nil {
		s.log.Warn("Failed to release promotion spend",
			zap.String("promotion_id", string(id)),
			zap.String("amount", amount.String()),
			zap.Error(err))
	}
}

func sumDiscounts(lines []entities.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Discount)
	}
	return total
}

func (s *Service) publish(ctx context.Context, event entities.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish event", zap.String("event_type", event.Type), zap.Error(err))
	}
}
