package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/domain/entities"
)

// Dashboard holds the headline KPIs of a company for a date range
type Dashboard struct {
	From              time.Time         `json:"from"`
	To                time.Time         `json:"to"`
	Revenue           decimal.Decimal   `json:"revenue"`
	Orders            int               `json:"orders"`
	AverageOrderValue decimal.Decimal   `json:"average_order_value"`
	Units             entities.Quantity `json:"units"`
	ActiveCustomers   int               `json:"active_customers"`
	ActivePromotions  int               `json:"active_promotions"`
	TradeSpend        decimal.Decimal   `json:"trade_spend"`
	PromotedRevenue   decimal.Decimal   `json:"promoted_revenue"`
	PromotionROI      decimal.Decimal   `json:"promotion_roi"`
	TopProducts       []ProductRevenue  `json:"top_products"`
	RevenueByChannel  []Breakdown       `json:"revenue_by_channel"`
	RevenueByRegion   []Breakdown       `json:"revenue_by_region"`
}

// ProductRevenue is a product's contribution to revenue
type ProductRevenue struct {
	ProductID entities.ProductID `json:"product_id"`
	SKU       string             `json:"sku"`
	Name      string             `json:"name"`
	Units     entities.Quantity  `json:"units"`
	Revenue   decimal.Decimal    `json:"revenue"`
}

// Breakdown is revenue grouped by a single dimension such as channel or region
type Breakdown struct {
	Key     string          `json:"key"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// Bucket is the width of a revenue series step
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketWeek  Bucket = "week"
	BucketMonth Bucket = "month"
)

// SeriesPoint is the revenue of one bucket starting at Start
type SeriesPoint struct {
	Start   time.Time       `json:"start"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// RevenueSeries is a gap-free revenue time series
type RevenueSeries struct {
	Bucket Bucket        `json:"bucket"`
	Points []SeriesPoint `json:"points"`
}

// ActivityGrid counts orders by weekday (Monday first) and UTC hour
type ActivityGrid struct {
	Days  []string   `json:"days"`
	Cells [7][24]int `json:"cells"`
	Max   int        `json:"max"`
	Total int        `json:"total"`
}
