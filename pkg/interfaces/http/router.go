package http

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap"
)

const handlerName = "vantax"

// Backend is every service the HTTP API delegates to
type Backend struct {
	Tenants    services.TenantService
	Auth       services.AuthService
	Products   services.ProductService
	Customers  services.CustomerService
	Promotions services.PromotionService
	Orders     services.OrderService
	Analytics  services.AnalyticsService
	Insights   services.InsightService
	Forecasts  services.ForecastService
	Events     repositories.EventJournal
}

// NewHandler builds the root handler. Request metrics are registered on reg,
// which is also what /metrics exposes.
func NewHandler(log *zap.Logger, reg *prometheus.Registry, b Backend) http.Handler {
	api := NewAPI(log)
	h := &handler{api: api, b: b}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		Logging(log),
		Metrics(handlerName, newMetrics(reg)),
		middleware.Recoverer,
		SetCORS,
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		api.Err(w, r, &perrors.Error{Code: perrors.ENotFound, Msg: "path not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		api.Err(w, r, &perrors.Error{Code: perrors.EMethodNotAllowed, Msg: r.Method + " is not allowed here"})
	})

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/companies", h.handleListCompanies)
		r.Post("/auth/login", h.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(Tenant(api, b.Tenants), Authenticate(api, b.Auth))
			write := RequirePermission(api, entities.PermWrite)

			r.Get("/auth/me", h.handleMe)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", h.handleListProducts)
				r.With(write).Post("/", h.handleCreateProduct)
				r.Get("/{productID}", h.handleGetProduct)
				r.With(write).Put("/{productID}", h.handleUpdateProduct)
				r.With(write).Delete("/{productID}", h.handleDeleteProduct)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", h.handleListCustomers)
				r.With(write).Post("/", h.handleCreateCustomer)
				r.Get("/{customerID}", h.handleGetCustomer)
				r.With(write).Put("/{customerID}", h.handleUpdateCustomer)
				r.With(write).Delete("/{customerID}", h.handleDeleteCustomer)
			})

			r.Route("/promotions", func(r chi.Router) {
				r.Get("/", h.handleListPromotions)
				r.With(write).Post("/", h.handleCreatePromotion)
				r.Get("/{promotionID}", h.handleGetPromotion)
				r.With(write).Put("/{promotionID}", h.handleUpdatePromotion)
				r.With(write).Post("/{promotionID}/status", h.handlePromotionStatus)
				r.With(write).Post("/{promotionID}/spend", h.handlePromotionSpend)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", h.handleListOrders)
				r.With(write).Post("/", h.handleCreateOrder)
				r.Get("/{orderID}", h.handleGetOrder)
				r.With(write).Post("/{orderID}/status", h.handleOrderStatus)
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Get("/dashboard", h.handleDashboard)
				r.Get("/revenue", h.handleRevenue)
				r.Get("/activity", h.handleActivity)
			})

			r.Get("/insights", h.handleInsights)
			r.Post("/insights/ask", h.handleAsk)
			r.Get("/forecasts/{productID}", h.handleForecast)
			r.Get("/events", h.handleEvents)
		})
	})

	return r
}

type handler struct {
	api *API
	b   Backend
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.api.Respond(w, r, http.StatusOK, map[string]string{"status": "pass"})
}
