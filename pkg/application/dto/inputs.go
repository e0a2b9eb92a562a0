package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/domain/entities"
)

// ProductInput carries the writable fields of a product
type ProductInput struct {
	SKU       string                 `json:"sku"`
	Name      string                 `json:"name"`
	Category  string                 `json:"category"`
	Brand     string                 `json:"brand"`
	UnitPrice decimal.Decimal        `json:"unit_price"`
	UnitCost  decimal.Decimal        `json:"unit_cost"`
	Status    entities.ProductStatus `json:"status"`
}

// CustomerInput carries the writable fields of a customer
type CustomerInput struct {
	Code    string           `json:"code"`
	Name    string           `json:"name"`
	Channel entities.Channel `json:"channel"`
	Region  string           `json:"region"`
	Tier    entities.Tier    `json:"tier"`
}

// PromotionInput carries the writable fields of a promotion. New promotions
// always start as Draft; status moves through Transition.
type PromotionInput struct {
	Name        string                 `json:"name"`
	Type        entities.PromotionType `json:"type"`
	StartDate   time.Time              `json:"start_date"`
	EndDate     time.Time              `json:"end_date"`
	DiscountPct decimal.Decimal        `json:"discount_pct"`
	Budget      decimal.Decimal        `json:"budget"`
	ProductIDs  []entities.ProductID   `json:"product_ids"`
	CustomerIDs []entities.CustomerID  `json:"customer_ids"`
}

// OrderLineInput is a requested product and quantity; prices come from the catalog
type OrderLineInput struct {
	ProductID entities.ProductID `json:"product_id"`
	Quantity  entities.Quantity  `json:"quantity"`
}

// OrderInput is a new sales order. A zero OrderDate means now.
type OrderInput struct {
	CustomerID entities.CustomerID `json:"customer_id"`
	OrderDate  time.Time           `json:"order_date"`
	Lines      []OrderLineInput    `json:"lines"`
}
