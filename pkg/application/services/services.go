// Package services declares the application services exposed to the
// transports, together with logging decorators for each of them.
package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
)

// TenantService resolves the company a request acts on
type TenantService interface {
	// Resolve accepts a company ID or slug
	Resolve(ctx context.Context, ref string) (*entities.Company, error)
	List(ctx context.Context) ([]*entities.Company, error)
}

// AuthService issues and verifies access tokens
type AuthService interface {
	Login(ctx context.Context, companyID entities.CompanyID, email, password string) (*dto.Token, error)
	Verify(ctx context.Context, token string) (*dto.Claims, error)
	Me(ctx context.Context, companyID entities.CompanyID, userID entities.UserID) (*entities.User, error)
}

// ProductService manages the product catalog
type ProductService interface {
	ListProducts(ctx context.Context, companyID entities.CompanyID, filter repositories.ProductFilter, page repositories.Page) (*dto.ListResult[*entities.Product], error)
	GetProduct(ctx context.Context, companyID entities.CompanyID, id entities.ProductID) (*entities.Product, error)
	CreateProduct(ctx context.Context, companyID entities.CompanyID, in dto.ProductInput) (*entities.Product, error)
	UpdateProduct(ctx context.Context, companyID entities.CompanyID, id entities.ProductID, in dto.ProductInput) (*entities.Product, error)
	DeleteProduct(ctx context.Context, companyID entities.CompanyID, id entities.ProductID) error
}

// CustomerService manages trade customers
type CustomerService interface {
	ListCustomers(ctx context.Context, companyID entities.CompanyID, filter repositories.CustomerFilter, page repositories.Page) (*dto.ListResult[*entities.Customer], error)
	GetCustomer(ctx context.Context, companyID entities.CompanyID, id entities.CustomerID) (*entities.Customer, error)
	CreateCustomer(ctx context.Context, companyID entities.CompanyID, in dto.CustomerInput) (*entities.Customer, error)
	UpdateCustomer(ctx context.Context, companyID entities.CompanyID, id entities.CustomerID, in dto.CustomerInput) (*entities.Customer, error)
	DeleteCustomer(ctx context.Context, companyID entities.CompanyID, id entities.CustomerID) error
}

// PromotionService manages trade promotions and their budgets
type PromotionService interface {
	ListPromotions(ctx context.Context, companyID entities.CompanyID, filter repositories.PromotionFilter, page repositories.Page) (*dto.ListResult[*entities.Promotion], error)
	GetPromotion(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID) (*entities.Promotion, error)
	CreatePromotion(ctx context.Context, companyID entities.CompanyID, in dto.PromotionInput) (*entities.Promotion, error)
	UpdatePromotion(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID, in dto.PromotionInput) (*entities.Promotion, error)
	Transition(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID, to entities.PromotionStatus) (*entities.Promotion, error)
	RecordSpend(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID, amount decimal.Decimal) (*entities.Promotion, error)
}

// OrderService captures sales orders
type OrderService interface {
	ListOrders(ctx context.Context, companyID entities.CompanyID, filter repositories.OrderFilter, page repositories.Page) (*dto.ListResult[*entities.Order], error)
	GetOrder(ctx context.Context, companyID entities.CompanyID, id entities.OrderID) (*entities.Order, error)
	CreateOrder(ctx context.Context, companyID entities.CompanyID, in dto.OrderInput) (*entities.Order, error)
	UpdateStatus(ctx context.Context, companyID entities.CompanyID, id entities.OrderID, to entities.OrderStatus) (*entities.Order, error)
}

// AnalyticsService aggregates sales into KPIs and series
type AnalyticsService interface {
	Dashboard(ctx context.Context, companyID entities.CompanyID, from, to time.Time) (*dto.Dashboard, error)
	RevenueSeries(ctx context.Context, companyID entities.CompanyID, from, to time.Time, bucket dto.Bucket) (*dto.RevenueSeries, error)
	ActivityGrid(ctx context.Context, companyID entities.CompanyID, from, to time.Time) (*dto.ActivityGrid, error)
}

// InsightService derives findings from a company's data
type InsightService interface {
	Generate(ctx context.Context, companyID entities.CompanyID) ([]dto.Insight, error)
	Ask(ctx context.Context, companyID entities.CompanyID, question string) (*dto.Answer, error)
}

// ForecastService projects product demand
type ForecastService interface {
	ProductDemand(ctx context.Context, companyID entities.CompanyID, productID entities.ProductID, horizon int) (*dto.Forecast, error)
}
