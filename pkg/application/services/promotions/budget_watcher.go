package promotions

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	"github.com/vsinha/vantax/pkg/infrastructure/events"
	"go.uber.org/zap"
)

type watchKey struct {
	company entities.CompanyID
	id      entities.PromotionID
}

// BudgetWatcher logs a warning the first time a promotion's spend reaches
// thresholdPct of its budget. The alert re-arms if spend falls back below
// the threshold, as it does when a promoted order is cancelled.
type BudgetWatcher struct {
	promotions repositories.PromotionRepository
	threshold  decimal.Decimal
	log        *zap.Logger

	mu      sync.Mutex
	alerted map[watchKey]bool
}

// NewBudgetWatcher creates a watcher; subscribe it to the bus with
// events.PromotionSpendRecordedEvent.
func NewBudgetWatcher(promotions repositories.PromotionRepository, thresholdPct float64, log *zap.Logger) *BudgetWatcher {
	return &BudgetWatcher{
		promotions: promotions,
		threshold:  decimal.NewFromFloat(thresholdPct),
		log:        log,
		alerted:    make(map[watchKey]bool),
	}
}

var _ events.EventHandler = (*BudgetWatcher)(nil)

func (w *BudgetWatcher) CanHandle(eventType string) bool {
	return eventType == events.PromotionSpendRecordedEvent
}

func (w *BudgetWatcher) Handle(event entities.Event) error {
	promotion, err := w.promotions.GetPromotion(event.CompanyID, entities.PromotionID(event.Subject))
	if err != nil {
		return err
	}
	if !promotion.Budget.IsPositive() {
		return nil
	}

	key := watchKey{company: promotion.CompanyID, id: promotion.ID}
	burn := promotion.Spend.Div(promotion.Budget).Mul(decimal.NewFromInt(100))

	w.mu.Lock()
	defer w.mu.Unlock()
	if burn.LessThan(w.threshold) {
		delete(w.alerted, key)
		return nil
	}
	if w.alerted[key] {
		return nil
	}
	w.alerted[key] = true

	w.log.Warn("Promotion budget nearly exhausted",
		zap.String("company_id", string(promotion.CompanyID)),
		zap.String("promotion_id", string(promotion.ID)),
		zap.String("spend", promotion.Spend.String()),
		zap.String("budget", promotion.Budget.String()),
		zap.String("burn_pct", burn.StringFixed(1)))
	return nil
}

// Alerted reports whether the promotion is currently over the threshold
func (w *BudgetWatcher) Alerted(companyID entities.CompanyID, id entities.PromotionID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.alerted[watchKey{company: companyID, id: id}]
}
