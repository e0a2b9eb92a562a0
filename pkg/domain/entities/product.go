package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ProductStatus represents whether a product can still be sold
type ProductStatus int

const (
	ProductActive ProductStatus = iota
	ProductDiscontinued
)

// String method for ProductStatus enum
func (s ProductStatus) String() string {
	switch s {
	case ProductActive:
		return "Active"
	case ProductDiscontinued:
		return "Discontinued"
	default:
		return "Unknown"
	}
}

// ParseProductStatus parses the textual form of a ProductStatus
func ParseProductStatus(s string) (ProductStatus, error) {
	return parseEnum("product status", s, []ProductStatus{ProductActive, ProductDiscontinued})
}

func (s ProductStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *ProductStatus) UnmarshalText(b []byte) error {
	v, err := ParseProductStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Product represents a sellable SKU in a company's catalog
type Product struct {
	ID        ProductID       `json:"id"`
	CompanyID CompanyID       `json:"company_id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Brand     string          `json:"brand"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	Status    ProductStatus   `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewProduct creates a validated Product
func NewProduct(
	id ProductID,
	companyID CompanyID,
	sku, name, category, brand string,
	unitPrice, unitCost decimal.Decimal,
	status ProductStatus,
	createdAt time.Time,
) (*Product, error) {
	p := &Product{
		ID:        id,
		CompanyID: companyID,
		SKU:       strings.ToUpper(strings.TrimSpace(sku)),
		Name:      strings.TrimSpace(name),
		Category:  strings.TrimSpace(category),
		Brand:     strings.TrimSpace(brand),
		UnitPrice: unitPrice,
		UnitCost:  unitCost,
		Status:    status,
		CreatedAt: createdAt,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the product invariants
func (p *Product) Validate() error {
	if string(p.ID) == "" {
		return fmt.Errorf("product id cannot be empty")
	}
	if string(p.CompanyID) == "" {
		return fmt.Errorf("company id cannot be empty")
	}
	if p.SKU == "" {
		return fmt.Errorf("sku cannot be empty")
	}
	if p.Name == "" {
		return fmt.Errorf("product name cannot be empty")
	}
	if p.Category == "" {
		return fmt.Errorf("category cannot be empty")
	}
	if p.UnitPrice.IsNegative() {
		return fmt.Errorf("unit price cannot be negative, got %s", p.UnitPrice)
	}
	if p.UnitCost.IsNegative() {
		return fmt.Errorf("unit cost cannot be negative, got %s", p.UnitCost)
	}
	if p.Status != ProductActive && p.Status != ProductDiscontinued {
		return fmt.Errorf("invalid product status %d", p.Status)
	}
	return nil
}

// Margin returns the gross margin as a percentage of the unit price
func (p *Product) Margin() decimal.Decimal {
	if p.UnitPrice.IsZero() {
		return decimal.Zero
	}
	return p.UnitPrice.Sub(p.UnitCost).Div(p.UnitPrice).Mul(decimal.NewFromInt(100)).Round(2)
}
