package repositories

import (
	"time"

	"github.com/vsinha/vantax/pkg/domain/entities"
)

// PromotionFilter narrows a promotion listing. Zero values match everything.
type PromotionFilter struct {
	Status   *entities.PromotionStatus
	Type     *entities.PromotionType
	ActiveOn *time.Time
}

// PromotionRepository provides access to trade promotions
type PromotionRepository interface {
	GetPromotion(companyID entities.CompanyID, id entities.PromotionID) (*entities.Promotion, error)
	FindPromotions(companyID entities.CompanyID, filter PromotionFilter, page Page) ([]*entities.Promotion, int, error)
	GetAllPromotions(companyID entities.CompanyID) ([]*entities.Promotion, error)
	SavePromotion(promotion *entities.Promotion) error

	// UpdatePromotion applies fn to the stored promotion under the store's
	// write lock, so read-modify-write sequences like spend accrual are atomic.
	UpdatePromotion(companyID entities.CompanyID, id entities.PromotionID, fn func(*entities.Promotion) error) (*entities.Promotion, error)
	LoadPromotions(promotions []*entities.Promotion) error
}
