package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/application/services/analytics"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

const (
	RuleNegativeROI  = "promotion_negative_roi"
	RuleBudgetBurn   = "promotion_budget_burn"
	RuleRevenueDrop  = "product_revenue_drop"
	RuleDormantBuyer = "customer_dormant"

	// MaxQuestionLength bounds the questions Ask accepts, in bytes
	MaxQuestionLength = 500

	comparisonDays = 30
)

// Service turns a company's figures into findings and answers
type Service struct {
	catalog    *Catalog
	analytics  services.AnalyticsService
	companies  repositories.CompanyRepository
	orders     repositories.OrderRepository
	products   repositories.ProductRepository
	customers  repositories.CustomerRepository
	promotions repositories.PromotionRepository
	clock      clock.Clock
}

// NewService creates an insight service answering from catalog
func NewService(
	catalog *Catalog,
	analytics services.AnalyticsService,
	companies repositories.CompanyRepository,
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	customers repositories.CustomerRepository,
	promotions repositories.PromotionRepository,
	clk clock.Clock,
) *Service {
	return &Service{
		catalog:    catalog,
		analytics:  analytics,
		companies:  companies,
		orders:     orders,
		products:   products,
		customers:  customers,
		promotions: promotions,
		clock:      clk,
	}
}

var _ services.InsightService = (*Service)(nil)

// facts is the data an answer template is rendered with
type facts struct {
	*dto.Dashboard
	Company    string
	Days       int
	TopProduct *dto.ProductRevenue
	TopChannel *dto.Breakdown
}

// Ask answers a free-text question with the best matching catalog rule,
// filled in with the company's figures for the default analytics window
func (s *Service) Ask(ctx context.Context, companyID entities.CompanyID, question string) (*dto.Answer, error) {
	const op = "insights/Ask"

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, perrors.Invalid(op, fmt.Errorf("question cannot be empty"))
	}
	if len(question) > MaxQuestionLength {
		return nil, perrors.Invalid(op, fmt.Errorf("question is longer than %d characters", MaxQuestionLength))
	}

	company, err := s.companies.GetCompany(companyID)
	if err != nil {
		return nil, err
	}
	dashboard, err := s.analytics.Dashboard(ctx, companyID, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	f := facts{
		Dashboard: dashboard,
		Company:   company.Name,
		Days:      int(analytics.DefaultRange / (24 * time.Hour)),
	}
	if len(dashboard.TopProducts) > 0 {
		f.TopProduct = &dashboard.TopProducts[0]
	}
	if len(dashboard.RevenueByChannel) > 0 {
		f.TopChannel = &dashboard.RevenueByChannel[0]
	}

	rule := s.catalog.Match(question)
	answer, err := rule.render(company.Currency, f)
	if err != nil {
		return nil, &perrors.Error{Code: perrors.EInternal, Op: op, Err: err}
	}
	return &dto.Answer{Question: question, Rule: rule.Name, Answer: answer}, nil
}

// Generate runs the data rules and returns their findings, most severe first
func (s *Service) Generate(ctx context.Context, companyID entities.CompanyID) ([]dto.Insight, error) {
	company, err := s.companies.GetCompany(companyID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.GetOrders(companyID, repositories.OrderFilter{})
	if err != nil {
		return nil, err
	}
	billable := orders[:0]
	for _, o := range orders {
		if o.Status != entities.OrderCancelled {
			billable = append(billable, o)
		}
	}

	promotions, err := s.promotions.GetAllPromotions(companyID)
	if err != nil {
		return nil, err
	}
	products, err := s.products.GetAllProducts(companyID)
	if err != nil {
		return nil, err
	}
	customers, err := s.customers.GetAllCustomers(companyID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	money := func(d decimal.Decimal) string { return formatMoney(company.Currency, d) }

	var found []dto.Insight
	found = append(found, s.promotionInsights(promotions, billable, money)...)
	found = append(found, s.productInsights(products, billable, now, money)...)
	found = append(found, s.customerInsights(customers, billable, now)...)

	sort.SliceStable(found, func(i, j int) bool { return found[i].Severity > found[j].Severity })
	if found == nil {
		found = []dto.Insight{}
	}
	return found, nil
}

func (s *Service) promotionInsights(promotions []*entities.Promotion, orders []*entities.Order, money func(decimal.Decimal) string) []dto.Insight {
	revenue := make(map[entities.PromotionID]decimal.Decimal)
	for _, o := range orders {
		if o.PromotionID != "" {
			revenue[o.PromotionID] = revenue[o.PromotionID].Add(o.Total())
		}
	}

	burnLimit := decimal.NewFromFloat(s.catalog.Thresholds.BudgetBurnPct).Div(decimal.NewFromInt(100))
	var found []dto.Insight
	for _, p := range promotions {
		if !p.Spend.IsPositive() {
			continue
		}
		if roi := analytics.ROI(revenue[p.ID], p.Spend); roi.IsNegative() {
			found = append(found, dto.Insight{
				Rule:     RuleNegativeROI,
				Severity: dto.SeverityCritical,
				Subject:  string(p.ID),
				Title:    fmt.Sprintf("%s is losing money", p.Name),
				Message: fmt.Sprintf("%s returned %s in promoted revenue on %s of spend, an ROI of %s.",
					p.Name, money(revenue[p.ID]), money(p.Spend), formatPercent(roi)),
			})
		}
		if p.Budget.IsPositive() {
			burn := p.Spend.Div(p.Budget)
			if burn.GreaterThanOrEqual(burnLimit) {
				found = append(found, dto.Insight{
					Rule:     RuleBudgetBurn,
					Severity: dto.SeverityWarning,
					Subject:  string(p.ID),
					Title:    fmt.Sprintf("%s is nearly out of budget", p.Name),
					Message: fmt.Sprintf("%s has spent %s of its %s budget (%s); %s remains.",
						p.Name, money(p.Spend), money(p.Budget), formatPercent(burn), money(p.RemainingBudget())),
				})
			}
		}
	}
	return found
}

// productInsights compares each product's net revenue over the last
// comparisonDays with the window before it
func (s *Service) productInsights(products []*entities.Product, orders []*entities.Order, now time.Time, money func(decimal.Decimal) string) []dto.Insight {
	window := comparisonDays * 24 * time.Hour
	currentStart, priorStart := now.Add(-window), now.Add(-2*window)

	current := make(map[entities.ProductID]decimal.Decimal)
	prior := make(map[entities.ProductID]decimal.Decimal)
	for _, o := range orders {
		if o.OrderDate.After(now) || !o.OrderDate.After(priorStart) {
			continue
		}
		bucket := prior
		if o.OrderDate.After(currentStart) {
			bucket = current
		}
		for _, l := range o.Lines {
			bucket[l.ProductID] = bucket[l.ProductID].Add(l.Net())
		}
	}

	dropLimit := decimal.NewFromFloat(s.catalog.Thresholds.RevenueDropPct).Div(decimal.NewFromInt(100))
	var found []dto.Insight
	for _, p := range products {
		before, after := prior[p.ID], current[p.ID]
		if !before.IsPositive() {
			continue
		}
		drop := before.Sub(after).Div(before)
		if drop.LessThan(dropLimit) {
			continue
		}
		found = append(found, dto.Insight{
			Rule:     RuleRevenueDrop,
			Severity: dto.SeverityWarning,
			Subject:  string(p.ID),
			Title:    fmt.Sprintf("%s revenue is down %s", p.Name, formatPercent(drop)),
			Message: fmt.Sprintf("%s (%s) made %s in the last %d days against %s in the %d days before.",
				p.Name, p.SKU, money(after), comparisonDays, money(before), comparisonDays),
		})
	}
	return found
}

func (s *Service) customerInsights(customers []*entities.Customer, orders []*entities.Order, now time.Time) []dto.Insight {
	days := s.catalog.Thresholds.DormantDays
	cutoff := now.AddDate(0, 0, -days)

	last := make(map[entities.CustomerID]time.Time)
	for _, o := range orders {
		if o.OrderDate.After(last[o.CustomerID]) {
			last[o.CustomerID] = o.OrderDate
		}
	}

	var found []dto.Insight
	for _, c := range customers {
		lastOrder, ordered := last[c.ID]
		if ordered && lastOrder.After(cutoff) {
			continue
		}
		msg := fmt.Sprintf("%s (%s, %s) has never placed an order.", c.Name, c.Channel, c.Region)
		if ordered {
			msg = fmt.Sprintf("%s (%s, %s) last ordered on %s, %d days ago.",
				c.Name, c.Channel, c.Region, lastOrder.Format("2006-01-02"), int(now.Sub(lastOrder).Hours()/24))
		}
		found = append(found, dto.Insight{
			Rule:     RuleDormantBuyer,
			Severity: dto.SeverityInfo,
			Subject:  string(c.ID),
			Title:    fmt.Sprintf("No orders from %s in %d days", c.Name, days),
			Message:  msg,
		})
	}
	return found
}
