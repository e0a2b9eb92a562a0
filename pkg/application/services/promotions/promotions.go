package promotions

import (
	"context"
	"fmt"

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

// Service manages trade promotions: planning, lifecycle and budget burn
type Service struct {
	promotions repositories.PromotionRepository
	products   repositories.ProductRepository
	customers  repositories.CustomerRepository
	publisher  events.Publisher
	clock      clock.Clock
	log        *zap.Logger
}

// NewService creates a promotion service
func NewService(
	promotions repositories.PromotionRepository,
	products repositories.ProductRepository,
	customers repositories.CustomerRepository,
	publisher events.Publisher,
	clk clock.Clock,
	log *zap.Logger,
) *Service {
	return &Service{
		promotions: promotions,
		products:   products,
		customers:  customers,
		publisher:  publisher,
		clock:      clk,
		log:        log,
	}
}

var _ services.PromotionService = (*Service)(nil)

func (s *Service) ListPromotions(ctx context.Context, companyID entities.CompanyID, filter repositories.PromotionFilter, page repositories.Page) (*dto.ListResult[*entities.Promotion], error) {
	items, total, err := s.promotions.FindPromotions(companyID, filter, page)
	if err != nil {
		return nil, err
	}
	return dto.NewListResult(items, total, page), nil
}

func (s *Service) GetPromotion(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID) (*entities.Promotion, error) {
	return s.promotions.GetPromotion(companyID, id)
}

// CreatePromotion stores a new Draft promotion with no spend
func (s *Service) CreatePromotion(ctx context.Context, companyID entities.CompanyID, in dto.PromotionInput) (*entities.Promotion, error) {
	const op = "promotions/CreatePromotion"

	if err := s.checkReferences(companyID, in); err != nil {
		return nil, perrors.Invalid(op, err)
	}
	promotion, err := entities.NewPromotion(
		entities.NewPromotionID(),
		companyID,
		in.Name,
		in.Type,
		entities.PromotionDraft,
		in.StartDate, in.EndDate,
		in.DiscountPct, in.Budget, decimal.Zero,
		in.ProductIDs, in.CustomerIDs,
		s.clock.Now().UTC(),
	)
	if err != nil {
		return nil, perrors.Invalid(op, err)
	}
	if err := s.promotions.SavePromotion(promotion); err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewPromotionEvent(events.PromotionCreatedEvent, promotion, icontext.Actor(ctx)))
	return promotion, nil
}

// UpdatePromotion edits the plan of a Draft or Planned promotion. Status
// and spend are left untouched.
func (s *Service) UpdatePromotion(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID, in dto.PromotionInput) (*entities.Promotion, error) {
	const op = "promotions/UpdatePromotion"

	if err := s.checkReferences(companyID, in); err != nil {
		return nil, perrors.Invalid(op, err)
	}
	promotion, err := s.promotions.UpdatePromotion(companyID, id, func(p *entities.Promotion) error {
		if p.Status != entities.PromotionDraft && p.Status != entities.PromotionPlanned {
			return &perrors.Error{
				Code: perrors.EUnprocessableEntity,
				Op:   op,
				Msg:  fmt.Sprintf("%s promotions cannot be edited", p.Status),
			}
		}
		p.Name = in.Name
		p.Type = in.Type
		p.StartDate = entities.Day(in.StartDate)
		p.EndDate = entities.Day(in.EndDate)
		p.DiscountPct = in.DiscountPct
		p.Budget = in.Budget
		p.ProductIDs = in.ProductIDs
		p.CustomerIDs = in.CustomerIDs
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewPromotionEvent(events.PromotionUpdatedEvent, promotion, icontext.Actor(ctx)))
	return promotion, nil
}

// Transition moves a promotion through its lifecycle
func (s *Service) Transition(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID, to entities.PromotionStatus) (*entities.Promotion, error) {
	var from entities.PromotionStatus
	promotion, err := s.promotions.UpdatePromotion(companyID, id, func(p *entities.Promotion) error {
		from = p.Status
		if err := p.Transition(to); err != nil {
			return &perrors.Error{Code: perrors.EUnprocessableEntity, Op: "promotions/Transition", Msg: err.Error()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := events.NewPromotionEvent(events.PromotionStatusChangedEvent, promotion, icontext.Actor(ctx))
	event.Data["from"] = from.String()
	s.publish(ctx, event)
	return promotion, nil
}

// RecordSpend books amount against an active promotion's budget. The
// budget is a hard ceiling.
func (s *Service) RecordSpend(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID, amount decimal.Decimal) (*entities.Promotion, error) {
	promotion, err := s.promotions.UpdatePromotion(companyID, id, func(p *entities.Promotion) error {
		if err := p.RecordSpend(amount); err != nil {
			return &perrors.Error{Code: perrors.EUnprocessableEntity, Op: "promotions/RecordSpend", Msg: err.Error()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	event := events.NewPromotionEvent(events.PromotionSpendRecordedEvent, promotion, icontext.Actor(ctx))
	event.Data["amount"] = amount.String()
	s.publish(ctx, event)
	return promotion, nil
}

// checkReferences makes sure every targeted product and customer exists in the company
func (s *Service) checkReferences(companyID entities.CompanyID, in dto.PromotionInput) error {
	for _, id := range in.ProductIDs {
		if _, err := s.products.GetProduct(companyID, id); err != nil {
			if perrors.ErrorCode(err) == perrors.ENotFound {
				return fmt.Errorf("unknown product %s", id)
			}
			return err
		}
	}
	for _, id := range in.CustomerIDs {
		if _, err := s.customers.GetCustomer(companyID, id); err != nil {
			if perrors.ErrorCode(err) == perrors.ENotFound {
				return fmt.Errorf("unknown customer %s", id)
			}
			return err
		}
	}
	return nil
}

func (s *Service) publish(ctx context.Context, event entities.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("Failed to publish event", zap.String("event_type", event.Type), zap.Error(err))
	}
}
