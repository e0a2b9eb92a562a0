package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultHorizon = 3
	MaxHorizon     = 24

	MethodLinear = "linear"
	MethodMean   = "mean"

	// z is the two-sided 95% normal quantile used for the band
	z = 1.96
)

// Service projects monthly product demand from order history
type Service struct {
	orders   repositories.OrderRepository
	products repositories.ProductRepository
	clock    clock.Clock
}

// NewService creates a forecast service
func NewService(orders repositories.OrderRepository, products repositories.ProductRepository, clk clock.Clock) *Service {
	return &Service{orders: orders, products: products, clock: clk}
}

var _ services.ForecastService = (*Service)(nil)

// ProductDemand fits a least-squares line through the monthly units sold
// from the first month with sales up to the current month and extends it
// horizon months ahead. The band is ±1.96 residual standard deviations and
// every figure is clamped at zero. Fewer than two months of history give a
// flat projection of the mean.
func (s *Service) ProductDemand(ctx context.Context, companyID entities.CompanyID, productID entities.ProductID, horizon int) (*dto.Forecast, error) {
	const op = "forecast/ProductDemand"

	if horizon == 0 {
		horizon = DefaultHorizon
	}
	if horizon < 1 || horizon > MaxHorizon {
		return nil, perrors.Invalid(op, fmt.Errorf("horizon must be between 1 and %d months, got %d", MaxHorizon, horizon))
	}
	if _, err := s.products.GetProduct(companyID, productID); err != nil {
		return nil, err
	}
	orders, err := s.orders.GetOrders(companyID, repositories.OrderFilter{ProductID: productID})
	if err != nil {
		return nil, err
	}

	history := monthlyUnits(orders, productID, monthStart(s.clock.Now()))
	f := &dto.Forecast{ProductID: productID, History: history}

	xs := make([]float64, len(history))
	ys := make([]float64, len(history))
	for i, h := range history {
		xs[i], ys[i] = float64(i), float64(h.Units)
	}

	switch {
	case len(history) >= 2:
		f.Method = MethodLinear
		f.Intercept, f.Slope = stat.LinearRegression(xs, ys, nil, false)
		f.StdDev = residualStdDev(xs, ys, f.Intercept, f.Slope)
	case len(history) == 1:
		f.Method = MethodMean
		f.Intercept = ys[0]
	default:
		f.Method = MethodMean
	}

	next := monthStart(s.clock.Now()).AddDate(0, 1, 0)
	f.Points = make([]dto.ForecastPoint, horizon)
	for k := 0; k < horizon; k++ {
		expected := f.Intercept + f.Slope*float64(len(history)+k)
		f.Points[k] = dto.ForecastPoint{
			Month:    next.AddDate(0, k, 0),
			Expected: clamp(expected),
			Lower:    clamp(expected - z*f.StdDev),
			Upper:    clamp(expected + z*f.StdDev),
		}
	}

	f.Slope = round(f.Slope)
	f.Intercept = round(f.Intercept)
	f.StdDev = round(f.StdDev)
	return f, nil
}

// monthlyUnits sums non-cancelled units of productID per calendar month,
// zero-filling every month from the first sale up to and including the
// month starting at through
func monthlyUnits(orders []*entities.Order, productID entities.ProductID, through time.Time) []dto.MonthlyUnits {
	byMonth := make(map[time.Time]entities.Quantity)
	var first time.Time
	for _, o := range orders {
		if o.Status == entities.OrderCancelled {
			continue
		}
		m := monthStart(o.OrderDate)
		if m.After(through) {
			continue
		}
		for _, l := range o.Lines {
			if l.ProductID == productID {
				byMonth[m] += l.Quantity
			}
		}
		if first.IsZero() || m.Before(first) {
			first = m
		}
	}

	history := []dto.MonthlyUnits{}
	if first.IsZero() {
		return history
	}
	for m := first; !m.After(through); m = m.AddDate(0, 1, 0) {
		history = append(history, dto.MonthlyUnits{Month: m, Units: byMonth[m]})
	}
	return history
}

// residualStdDev is the standard error of the fit with n-2 degrees of freedom
func residualStdDev(xs, ys []float64, intercept, slope float64) float64 {
	if len(xs) <= 2 {
		return 0
	}
	var sse float64
	for i := range xs {
		r := ys[i] - (intercept + slope*xs[i])
		sse += r * r
	}
	return math.Sqrt(sse / float64(len(xs)-2))
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func clamp(v float64) float64 {
	return round(math.Max(0, v))
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
