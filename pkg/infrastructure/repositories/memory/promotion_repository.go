package memory

import (
	"sync"

	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

// PromotionRepository provides in-memory promotion storage, partitioned by company
type PromotionRepository struct {
	mu      sync.RWMutex
	tenants map[entities.CompanyID]*partition[entities.PromotionID, *entities.Promotion]
}

// NewPromotionRepository creates a new in-memory promotion repository
func NewPromotionRepository() *PromotionRepository {
	return &PromotionRepository{
		tenants: make(map[entities.CompanyID]*partition[entities.PromotionID, *entities.Promotion]),
	}
}

// Verify interface compliance
var _ repositories.PromotionRepository = (*PromotionRepository)(nil)

var promotionOrder = lessFuncs[entities.Promotion]{
	"name":       func(a, b *entities.Promotion) bool { return a.Name < b.Name },
	"start_date": func(a, b *entities.Promotion) bool { return a.StartDate.Before(b.StartDate) },
	"end_date":   func(a, b *entities.Promotion) bool { return a.EndDate.Before(b.EndDate) },
	"budget":     func(a, b *entities.Promotion) bool { return a.Budget.LessThan(b.Budget) },
	"spend":      func(a, b *entities.Promotion) bool { return a.Spend.LessThan(b.Spend) },
	"created_at": func(a, b *entities.Promotion) bool { return a.CreatedAt.Before(b.CreatedAt) },
}

// LoadPromotions loads promotions into the repository
func (r *PromotionRepository) LoadPromotions(promotions []*entities.Promotion) error {
	for _, p := range promotions {
		if err := r.SavePromotion(p); err != nil {
			return err
		}
	}
	return nil
}

// SavePromotion inserts or replaces a promotion
func (r *PromotionRepository) SavePromotion(promotion *entities.Promotion) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tenants[promotion.CompanyID]
	if !ok {
		p = newPartition[entities.PromotionID, *entities.Promotion](16)
		r.tenants[promotion.CompanyID] = p
	}
	p.put(promotion.ID, promotion.Clone())
	return nil
}

// GetPromotion returns a promotion by id within a company
func (r *PromotionRepository) GetPromotion(companyID entities.CompanyID, id entities.PromotionID) (*entities.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.tenants[companyID]; ok {
		if promo, ok := p.get(id); ok {
			return (*promo).Clone(), nil
		}
	}
	return nil, perrors.NotFound("memory/PromotionRepository.GetPromotion", "promotion not found: %s", id)
}

// UpdatePromotion applies fn to a copy of the stored promotion and stores
// the result only if fn and validation succeed
func (r *PromotionRepository) UpdatePromotion(
	companyID entities.CompanyID,
	id entities.PromotionID,
	fn func(*entities.Promotion) error,
) (*entities.Promotion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.tenants[companyID]
	if !ok {
		return nil, perrors.NotFound("memory/PromotionRepository.UpdatePromotion", "promotion not found: %s", id)
	}
	stored, ok := p.get(id)
	if !ok {
		return nil, perrors.NotFound("memory/PromotionRepository.UpdatePromotion", "promotion not found: %s", id)
	}

	updated := (*stored).Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	if err := updated.Validate(); err != nil {
		return nil, perrors.Invalid("memory/PromotionRepository.UpdatePromotion", err)
	}
	p.put(id, updated)
	return updated.Clone(), nil
}

// FindPromotions returns the filtered, sorted and windowed promotions plus
// the number of matches before windowing
func (r *PromotionRepository) FindPromotions(companyID entities.CompanyID, filter repositories.PromotionFilter, page repositories.Page) ([]*entities.Promotion, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.tenants[companyID]
	if !ok {
		return []*entities.Promotion{}, 0, nil
	}

	matched := make([]*entities.Promotion, 0, len(p.rows))
	for _, promo := range p.rows {
		if (filter.Status != nil && *filter.Status != promo.Status) ||
			(filter.Type != nil && *filter.Type != promo.Type) ||
			(filter.ActiveOn != nil && !promo.RunsOn(*filter.ActiveOn)) {
			continue
		}
		matched = append(matched, promo.Clone())
	}

	items, total := paginate(matched, page, promotionOrder)
	return items, total, nil
}

// GetAllPromotions returns every promotion of a company in creation order
func (r *PromotionRepository) GetAllPromotions(companyID entities.CompanyID) ([]*entities.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var promotions []*entities.Promotion
	if p, ok := r.tenants[companyID]; ok {
		for _, promo := range p.rows {
			promotions = append(promotions, promo.Clone())
		}
	}
	return promotions, nil
}
