package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap"
)

// logOutcome writes one debug line per call. Internal errors are logged at
// error level since they never reach the client in full.
func logOutcome(log *zap.Logger, msg string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields, zap.Duration("took", time.Since(start)))
	if err != nil {
		fields = append(fields, zap.Error(err))
		if perrors.ErrorCode(err) == perrors.EInternal {
			log.Error("failed to "+msg, fields...)
			return
		}
		log.Debug("failed to "+msg, fields...)
		return
	}
	log.Debug(msg, fields...)
}

func company(id entities.CompanyID) zap.Field {
	return zap.String("company_id", string(id))
}

// AuthLogger logs AuthService calls. Passwords and tokens are never logged.
type AuthLogger struct {
	log     *zap.Logger
	service AuthService
}

func NewAuthLogger(log *zap.Logger, s AuthService) *AuthLogger {
	return &AuthLogger{log: log, service: s}
}

var _ AuthService = (*AuthLogger)(nil)

func (l *AuthLogger) Login(ctx context.Context, companyID entities.CompanyID, email, password string) (token *dto.Token, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "log in", start, err, company(companyID), zap.String("email", email))
	}(time.Now())
	return l.service.Login(ctx, companyID, email, password)
}

func (l *AuthLogger) Verify(ctx context.Context, token string) (claims *dto.Claims, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "verify token", start, err)
	}(time.Now())
	return l.service.Verify(ctx, token)
}

func (l *AuthLogger) Me(ctx context.Context, companyID entities.CompanyID, userID entities.UserID) (user *entities.User, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "find current user", start, err, company(companyID), zap.String("user_id", string(userID)))
	}(time.Now())
	return l.service.Me(ctx, companyID, userID)
}

// ProductLogger logs ProductService calls
type ProductLogger struct {
	log     *zap.Logger
	service ProductService
}

func NewProductLogger(log *zap.Logger, s ProductService) *ProductLogger {
	return &ProductLogger{log: log, service: s}
}

var _ ProductService = (*ProductLogger)(nil)

func (l *ProductLogger) ListProducts(ctx context.Context, companyID entities.CompanyID, filter repositories.ProductFilter, page repositories.Page) (res *dto.ListResult[*entities.Product], err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "list products", start, err, company(companyID))
	}(time.Now())
	return l.service.ListProducts(ctx, companyID, filter, page)
}

func (l *ProductLogger) GetProduct(ctx context.Context, companyID entities.CompanyID, id entities.ProductID) (p *entities.Product, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "find product", start, err, company(companyID), zap.String("product_id", string(id)))
	}(time.Now())
	return l.service.GetProduct(ctx, companyID, id)
}

func (l *ProductLogger) CreateProduct(ctx context.Context, companyID entities.CompanyID, in dto.ProductInput) (p *entities.Product, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "create product", start, err, company(companyID), zap.String("sku", in.SKU))
	}(time.Now())
	return l.service.CreateProduct(ctx, companyID, in)
}

func (l *ProductLogger) UpdateProduct(ctx context.Context, companyID entities.CompanyID, id entities.ProductID, in dto.ProductInput) (p *entities.Product, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "update product", start, err, company(companyID), zap.String("product_id", string(id)))
	}(time.Now())
	return l.service.UpdateProduct(ctx, companyID, id, in)
}

func (l *ProductLogger) DeleteProduct(ctx context.Context, companyID entities.CompanyID, id entities.ProductID) (err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "delete product", start, err, company(companyID), zap.String("product_id", string(id)))
	}(time.Now())
	return l.service.DeleteProduct(ctx, companyID, id)
}

// CustomerLogger logs CustomerService calls
type CustomerLogger struct {
	log     *zap.Logger
	service CustomerService
}

func NewCustomerLogger(log *zap.Logger, s CustomerService) *CustomerLogger {
	return &CustomerLogger{log: log, service: s}
}

var _ CustomerService = (*CustomerLogger)(nil)

func (l *CustomerLogger) ListCustomers(ctx context.Context, companyID entities.CompanyID, filter repositories.CustomerFilter, page repositories.Page) (res *dto.ListResult[*entities.Customer], err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "list customers", start, err, company(companyID))
	}(time.Now())
	return l.service.ListCustomers(ctx, companyID, filter, page)
}

func (l *CustomerLogger) GetCustomer(ctx context.Context, companyID entities.CompanyID, id entities.CustomerID) (c *entities.Customer, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "find customer", start, err, company(companyID), zap.String("customer_id", string(id)))
	}(time.Now())
	return l.service.GetCustomer(ctx, companyID, id)
}

func (l *CustomerLogger) CreateCustomer(ctx context.Context, companyID entities.CompanyID, in dto.CustomerInput) (c *entities.Customer, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "create customer", start, err, company(companyID), zap.String("code", in.Code))
	}(time.Now())
	return l.service.CreateCustomer(ctx, companyID, in)
}

func (l *CustomerLogger) UpdateCustomer(ctx context.Context, companyID entities.CompanyID, id entities.CustomerID, in dto.CustomerInput) (c *entities.Customer, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "update customer", start, err, company(companyID), zap.String("customer_id", string(id)))
	}(time.Now())
	return l.service.UpdateCustomer(ctx, companyID, id, in)
}

func (l *CustomerLogger) DeleteCustomer(ctx context.Context, companyID entities.CompanyID, id entities.CustomerID) (err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "delete customer", start, err, company(companyID), zap.String("customer_id", string(id)))
	}(time.Now())
	return l.service.DeleteCustomer(ctx, companyID, id)
}

// PromotionLogger logs PromotionService calls
type PromotionLogger struct {
	log     *zap.Logger
	service PromotionService
}

func NewPromotionLogger(log *zap.Logger, s PromotionService) *PromotionLogger {
	return &PromotionLogger{log: log, service: s}
}

var _ PromotionService = (*PromotionLogger)(nil)

func (l *PromotionLogger) ListPromotions(ctx context.Context, companyID entities.CompanyID, filter repositories.PromotionFilter, page repositories.Page) (res *dto.ListResult[*entities.Promotion], err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "list promotions", start, err, company(companyID))
	}(time.Now())
	return l.service.ListPromotions(ctx, companyID, filter, page)
}

func (l *PromotionLogger) GetPromotion(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID) (p *entities.Promotion, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "find promotion", start, err, company(companyID), zap.String("promotion_id", string(id)))
	}(time.Now())
	return l.service.GetPromotion(ctx, companyID, id)
}

func (l *PromotionLogger) CreatePromotion(ctx context.Context, companyID entities.CompanyID, in dto.PromotionInput) (p *entities.Promotion, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "create promotion", start, err, company(companyID), zap.String("name", in.Name))
	}(time.Now())
	return l.service.CreatePromotion(ctx, companyID, in)
}

func (l *PromotionLogger) UpdatePromotion(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID, in dto.PromotionInput) (p *entities.Promotion, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "update promotion", start, err, company(companyID), zap.String("promotion_id", string(id)))
	}(time.Now())
	return l.service.UpdatePromotion(ctx, companyID, id, in)
}

func (l *PromotionLogger) Transition(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID, to entities.PromotionStatus) (p *entities.Promotion, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "transition promotion", start, err, company(companyID),
			zap.String("promotion_id", string(id)), zap.Stringer("to", to))
	}(time.Now())
	return l.service.Transition(ctx, companyID, id, to)
}

func (l *PromotionLogger) RecordSpend(ctx context.Context, companyID entities.CompanyID, id entities.PromotionID, amount decimal.Decimal) (p *entities.Promotion, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "record promotion spend", start, err, company(companyID),
			zap.String("promotion_id", string(id)), zap.Stringer("amount", amount))
	}(time.Now())
	return l.service.RecordSpend(ctx, companyID, id, amount)
}

// OrderLogger logs OrderService calls
type OrderLogger struct {
	log     *zap.Logger
	service OrderService
}

func NewOrderLogger(log *zap.Logger, s OrderService) *OrderLogger {
	return &OrderLogger{log: log, service: s}
}

var _ OrderService = (*OrderLogger)(nil)

func (l *OrderLogger) ListOrders(ctx context.Context, companyID entities.CompanyID, filter repositories.OrderFilter, page repositories.Page) (res *dto.ListResult[*entities.Order], err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "list orders", start, err, company(companyID))
	}(time.Now())
	return l.service.ListOrders(ctx, companyID, filter, page)
}

func (l *OrderLogger) GetOrder(ctx context.Context, companyID entities.CompanyID, id entities.OrderID) (o *entities.Order, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "find order", start, err, company(companyID), zap.String("order_id", string(id)))
	}(time.Now())
	return l.service.GetOrder(ctx, companyID, id)
}

func (l *OrderLogger) CreateOrder(ctx context.Context, companyID entities.CompanyID, in dto.OrderInput) (o *entities.Order, err error) {
	defer func(start time.Time) {
		fields := []zap.Field{company(companyID), zap.String("customer_id", string(in.CustomerID)), zap.Int("lines", len(in.Lines))}
		if o != nil && o.PromotionID != "" {
			fields = append(fields, zap.String("promotion_id", string(o.PromotionID)))
		}
		logOutcome(l.log, "create order", start, err, fields...)
	}(time.Now())
	return l.service.CreateOrder(ctx, companyID, in)
}

func (l *OrderLogger) UpdateStatus(ctx context.Context, companyID entities.CompanyID, id entities.OrderID, to entities.OrderStatus) (o *entities.Order, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "update order status", start, err, company(companyID),
			zap.String("order_id", string(id)), zap.Stringer("to", to))
	}(time.Now())
	return l.service.UpdateStatus(ctx, companyID, id, to)
}

// AnalyticsLogger logs AnalyticsService calls
type AnalyticsLogger struct {
	log     *zap.Logger
	service AnalyticsService
}

func NewAnalyticsLogger(log *zap.Logger, s AnalyticsService) *AnalyticsLogger {
	return &AnalyticsLogger{log: log, service: s}
}

var _ AnalyticsService = (*AnalyticsLogger)(nil)

func (l *AnalyticsLogger) Dashboard(ctx context.Context, companyID entities.CompanyID, from, to time.Time) (d *dto.Dashboard, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "compute dashboard", start, err, company(companyID))
	}(time.Now())
	return l.service.Dashboard(ctx, companyID, from, to)
}

func (l *AnalyticsLogger) RevenueSeries(ctx context.Context, companyID entities.CompanyID, from, to time.Time, bucket dto.Bucket) (s *dto.RevenueSeries, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "compute revenue series", start, err, company(companyID), zap.String("bucket", string(bucket)))
	}(time.Now())
	return l.service.RevenueSeries(ctx, companyID, from, to, bucket)
}

func (l *AnalyticsLogger) ActivityGrid(ctx context.Context, companyID entities.CompanyID, from, to time.Time) (g *dto.ActivityGrid, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "compute activity grid", start, err, company(companyID))
	}(time.Now())
	return l.service.ActivityGrid(ctx, companyID, from, to)
}

// InsightLogger logs InsightService calls
type InsightLogger struct {
	log     *zap.Logger
	service InsightService
}

func NewInsightLogger(log *zap.Logger, s InsightService) *InsightLogger {
	return &InsightLogger{log: log, service: s}
}

var _ InsightService = (*InsightLogger)(nil)

func (l *InsightLogger) Generate(ctx context.Context, companyID entities.CompanyID) (found []dto.Insight, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "generate insights", start, err, company(companyID), zap.Int("insights", len(found)))
	}(time.Now())
	return l.service.Generate(ctx, companyID)
}

func (l *InsightLogger) Ask(ctx context.Context, companyID entities.CompanyID, question string) (a *dto.Answer, err error) {
	defer func(start time.Time) {
		fields := []zap.Field{company(companyID)}
		if a != nil {
			fields = append(fields, zap.String("rule", a.Rule))
		}
		logOutcome(l.log, "answer question", start, err, fields...)
	}(time.Now())
	return l.service.Ask(ctx, companyID, question)
}

// ForecastLogger logs ForecastService calls
type ForecastLogger struct {
	log     *zap.Logger
	service ForecastService
}

func NewForecastLogger(log *zap.Logger, s ForecastService) *ForecastLogger {
	return &ForecastLogger{log: log, service: s}
}

var _ ForecastService = (*ForecastLogger)(nil)

func (l *ForecastLogger) ProductDemand(ctx context.Context, companyID entities.CompanyID, productID entities.ProductID, horizon int) (f *dto.Forecast, err error) {
	defer func(start time.Time) {
		logOutcome(l.log, "forecast product demand", start, err, company(companyID),
			zap.String("product_id", string(productID)), zap.Int("horizon", horizon))
	}(time.Now())
	return l.service.ProductDemand(ctx, companyID, productID, horizon)
}
