package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PromotionType represents the mechanic of a trade promotion
type PromotionType int

const (
	Discount PromotionType = iota
	BOGO
	Rebate
	Display
)

// String method for PromotionType enum
func (t PromotionType) String() string {
	switch t {
	case Discount:
		return "Discount"
	case BOGO:
		return "BOGO"
	case Rebate:
		return "Rebate"
	case Display:
		return "Display"
	default:
		return "Unknown"
	}
}

// ParsePromotionType parses the textual form of a PromotionType
func ParsePromotionType(s string) (PromotionType, error) {
	return parseEnum("promotion type", s, []PromotionType{Discount, BOGO, Rebate, Display})
}

func (t PromotionType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *PromotionType) UnmarshalText(b []byte) error {
	v, err := ParsePromotionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// PromotionStatus represents the lifecycle stage of a promotion
type PromotionStatus int

const (
	PromotionDraft PromotionStatus = iota
	PromotionPlanned
	PromotionActive
	PromotionCompleted
	PromotionCancelled
)

// String method for PromotionStatus enum
func (s PromotionStatus) String() string {
	switch s {
	case PromotionDraft:
		return "Draft"
	case PromotionPlanned:
		return "Planned"
	case PromotionActive:
		return "Active"
	case PromotionCompleted:
		return "Completed"
	case PromotionCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// ParsePromotionStatus parses the textual form of a PromotionStatus
func ParsePromotionStatus(s string) (PromotionStatus, error) {
	return parseEnum("promotion status", s, []PromotionStatus{
		PromotionDraft, PromotionPlanned, PromotionActive, PromotionCompleted, PromotionCancelled,
	})
}

func (s PromotionStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *PromotionStatus) UnmarshalText(b []byte) error {
	v, err := ParsePromotionStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Terminal reports whether no further transitions are possible
func (s PromotionStatus) Terminal() bool {
	return s == PromotionCompleted || s == PromotionCancelled
}

var promotionTransitions = map[PromotionStatus][]PromotionStatus{
	PromotionDraft:   {PromotionPlanned, PromotionCancelled},
	PromotionPlanned: {PromotionActive, PromotionCancelled},
	PromotionActive:  {PromotionCompleted, PromotionCancelled},
}

// Promotion is a funded trade activity applied to a set of products and customers.
// Empty ProductIDs or CustomerIDs mean the promotion applies to all of them.
type Promotion struct {
	ID          PromotionID     `json:"id"`
	CompanyID   CompanyID       `json:"company_id"`
	Name        string          `json:"name"`
	Type        PromotionType   `json:"type"`
	Status      PromotionStatus `json:"status"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	Budget      decimal.Decimal `json:"budget"`
	Spend       decimal.Decimal `json:"spend"`
	ProductIDs  []ProductID     `json:"product_ids"`
	CustomerIDs []CustomerID    `json:"customer_ids"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewPromotion creates a validated Promotion. Start and end dates are
// truncated to the day.
func NewPromotion(
	id PromotionID,
	companyID CompanyID,
	name string,
	promoType PromotionType,
	status PromotionStatus,
	startDate, endDate time.Time,
	discountPct, budget, spend decimal.Decimal,
	productIDs []ProductID,
	customerIDs []CustomerID,
	createdAt time.Time,
) (*Promotion, error) {
	p := &Promotion{
		ID:          id,
		CompanyID:   companyID,
		Name:        strings.TrimSpace(name),
		Type:        promoType,
		Status:      status,
		StartDate:   Day(startDate),
		EndDate:     Day(endDate),
		DiscountPct: discountPct,
		Budget:      budget,
		Spend:       spend,
		ProductIDs:  productIDs,
		CustomerIDs: customerIDs,
		CreatedAt:   createdAt,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

var hundred = decimal.NewFromInt(100)

// Validate checks the promotion invariants
func (p *Promotion) Validate() error {
	if string(p.ID) == "" {
		return fmt.Errorf("promotion id cannot be empty")
	}
	if string(p.CompanyID) == "" {
		return fmt.Errorf("company id cannot be empty")
	}
	if p.Name == "" {
		return fmt.Errorf("promotion name cannot be empty")
	}
	if p.StartDate.After(p.EndDate) {
		return fmt.Errorf("start date %s cannot be after end date %s",
			p.StartDate.Format("2006-01-02"), p.EndDate.Format("2006-01-02"))
	}
	if p.DiscountPct.IsNegative() || p.DiscountPct.GreaterThan(hundred) {
		return fmt.Errorf("discount percent must be between 0 and 100, got %s", p.DiscountPct)
	}
	if p.Budget.IsNegative() {
		return fmt.Errorf("budget cannot be negative, got %s", p.Budget)
	}
	if p.Spend.IsNegative() {
		return fmt.Errorf("spend cannot be negative, got %s", p.Spend)
	}
	if p.Spend.GreaterThan(p.Budget) {
		return fmt.Errorf("spend %s exceeds budget %s", p.Spend, p.Budget)
	}
	return nil
}

// CanTransition reports whether the promotion may move to status to
func (p *Promotion) CanTransition(to PromotionStatus) bool {
	for _, s := range promotionTransitions[p.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves the promotion to status to
func (p *Promotion) Transition(to PromotionStatus) error {
	if !p.CanTransition(to) {
		return fmt.Errorf("promotion cannot move from %s to %s", p.Status, to)
	}
	p.Status = to
	return nil
}

// RemainingBudget is the unspent part of the budget
func (p *Promotion) RemainingBudget() decimal.Decimal {
	return p.Budget.Sub(p.Spend)
}

// RecordSpend adds amount to the promotion spend. Only active promotions
// accrue spend and the budget is a hard ceiling.
func (p *Promotion) RecordSpend(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("spend amount must be positive, got %s", amount)
	}
	if p.Status != PromotionActive {
		return fmt.Errorf("cannot record spend on %s promotion", p.Status)
	}
	if p.Spend.Add(amount).GreaterThan(p.Budget) {
		return fmt.Errorf("spend of %s exceeds remaining budget %s", amount, p.RemainingBudget())
	}
	p.Spend = p.Spend.Add(amount)
	return nil
}

// RunsOn reports whether t falls inside the promotion window, inclusive of both ends
func (p *Promotion) RunsOn(t time.Time) bool {
	d := Day(t)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// Covers reports whether the promotion applies to the customer/product pair
func (p *Promotion) Covers(customerID CustomerID, productID ProductID) bool {
	if len(p.CustomerIDs) > 0 {
		found := false
		for _, id := range p.CustomerIDs {
			if id == customerID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(p.ProductIDs) > 0 {
		for _, id := range p.ProductIDs {
			if id == productID {
				return true
			}
		}
		return false
	}
	return true
}

// Clone returns a deep copy
func (p *Promotion) Clone() *Promotion {
	c := *p
	c.ProductIDs = append([]ProductID(nil), p.ProductIDs...)
	c.CustomerIDs = append([]CustomerID(nil), p.CustomerIDs...)
	return &c
}
