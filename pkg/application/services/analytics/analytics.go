package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRange is the window used when no start date is given
	DefaultRange = 30 * 24 * time.Hour

	// TopProducts is the length of the dashboard product ranking
	TopProducts = 5

	// MaxSeriesPoints bounds the number of buckets one series request may produce
	MaxSeriesPoints = 1000
)

// Weekdays labels the rows of the activity grid
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Service aggregates a company's order book. Cancelled orders never count.
type Service struct {
	orders     repositories.OrderRepository
	products   repositories.ProductRepository
	customers  repositories.CustomerRepository
	promotions repositories.PromotionRepository
	clock      clock.Clock
}

// NewService creates an analytics service
func NewService(
	orders repositories.OrderRepository,
	products repositories.ProductRepository,
	customers repositories.CustomerRepository,
	promotions repositories.PromotionRepository,
	clk clock.Clock,
) *Service {
	return &Service{
		orders:     orders,
		products:   products,
		customers:  customers,
		promotions: promotions,
		clock:      clk,
	}
}

var _ services.AnalyticsService = (*Service)(nil)

// snapshot is everything a dashboard is computed from
type snapshot struct {
	orders     []*entities.Order
	products   map[entities.ProductID]*entities.Product
	customers  map[entities.CustomerID]*entities.Customer
	promotions []*entities.Promotion
}

// Dashboard computes the headline KPIs for [from, to]. Zero bounds default
// to the last DefaultRange up to now.
func (s *Service) Dashboard(ctx context.Context, companyID entities.CompanyID, from, to time.Time) (*dto.Dashboard, error) {
	from, to, err := s.window("analytics/Dashboard", from, to)
	if err != nil {
		return nil, err
	}
	snap, err := s.load(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	d := &dto.Dashboard{From: from, To: to}

	var g errgroup.Group
	g.Go(func() error {
		d.Revenue, d.Orders, d.Units, d.ActiveCustomers = totals(snap.orders)
		if d.Orders > 0 {
			d.AverageOrderValue = d.Revenue.Div(decimal.NewFromInt(int64(d.Orders))).Round(2)
		}
		return nil
	})
	g.Go(func() error {
		d.ActivePromotions, d.TradeSpend, d.PromotedRevenue = promotionFigures(snap, from, to)
		d.PromotionROI = ROI(d.PromotedRevenue, d.TradeSpend)
		return nil
	})
	g.Go(func() error {
		d.TopProducts = topProducts(snap, TopProducts)
		return nil
	})
	g.Go(func() error {
		d.RevenueByChannel = breakdown(snap, func(c *entities.Customer) string { return c.Channel.String() })
		d.RevenueByRegion = breakdown(snap, func(c *entities.Customer) string { return c.Region })
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

// load fetches the orders in range and the reference data in parallel
func (s *Service) load(ctx context.Context, companyID entities.CompanyID, from, to time.Time) (*snapshot, error) {
	snap := &snapshot{}
	var (
		products  []*entities.Product
		customers []*entities.Customer
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orders, err := s.billableOrders(ctx, companyID, from, to)
		snap.orders = orders
		return err
	})
	g.Go(func() error {
		var err error
		products, err = s.products.GetAllProducts(companyID)
		return err
	})
	g.Go(func() error {
		var err error
		customers, err = s.customers.GetAllCustomers(companyID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.promotions, err = s.promotions.GetAllPromotions(companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.products = make(map[entities.ProductID]*entities.Product, len(products))
	for _, p := range products {
		snap.products[p.ID] = p
	}
	snap.customers = make(map[entities.CustomerID]*entities.Customer, len(customers))
	for _, c := range customers {
		snap.customers[c.ID] = c
	}
	return snap, nil
}

// billableOrders returns the non-cancelled orders dated inside [from, to]
func (s *Service) billableOrders(ctx context.Context, companyID entities.CompanyID, from, to time.Time) ([]*entities.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	orders, err := s.orders.GetOrders(companyID, repositories.OrderFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}
	kept := orders[:0]
	for _, o := range orders {
		if o.Status != entities.OrderCancelled {
			kept = append(kept, o)
		}
	}
	return kept, nil
}

func (s *Service) window(op string, from, to time.Time) (time.Time, time.Time, error) {
	if to.IsZero() {
		to = s.clock.Now()
	}
	if from.IsZero() {
		from = to.Add(-DefaultRange)
	}
	from, to = from.UTC(), to.UTC()
	if from.After(to) {
		return from, to, perrors.Invalid(op, fmt.Errorf("from %s is after to %s",
			from.Format(time.RFC3339), to.Format(time.RFC3339)))
	}
	return from, to, nil
}

// ROI is the return on trade spend, (revenue - spend) / spend, rounded to
// four places. No spend means no return.
func ROI(revenue, spend decimal.Decimal) decimal.Decimal {
	if !spend.IsPositive() {
		return decimal.Zero
	}
	return revenue.Sub(spend).Div(spend).Round(4)
}

func totals(orders []*entities.Order) (decimal.Decimal, int, entities.Quantity, int) {
	revenue := decimal.Zero
	var units entities.Quantity
	customers := make(map[entities.CustomerID]struct{})
	for _, o := range orders {
		revenue = revenue.Add(o.Total())
		units += o.Units()
		customers[o.CustomerID] = struct{}{}
	}
	return revenue, len(orders), units, len(customers)
}

// promotionFigures counts active promotions overlapping the window. Spend
// and revenue both come from the promoted orders inside the window.
func promotionFigures(snap *snapshot, from, to time.Time) (int, decimal.Decimal, decimal.Decimal) {
	active := 0
	first, last := entities.Day(from), entities.Day(to)
	for _, p := range snap.promotions {
		if p.Status == entities.PromotionActive && !p.StartDate.After(last) && !p.EndDate.Before(first) {
			active++
		}
	}

	spend, promoted := decimal.Zero, decimal.Zero
	for _, o := range snap.orders {
		if o.PromotionID != "" {
			spend = spend.Add(o.DiscountTotal())
			promoted = promoted.Add(o.Total())
		}
	}
	return active, spend, promoted
}

func topProducts(snap *snapshot, n int) []dto.ProductRevenue {
	byProduct := make(map[entities.ProductID]*dto.ProductRevenue)
	for _, o := range snap.orders {
		for _, l := range o.Lines {
			pr, ok := byProduct[l.ProductID]
			if !ok {
				pr = &dto.ProductRevenue{ProductID: l.ProductID, Revenue: decimal.Zero}
				if p, found := snap.products[l.ProductID]; found {
					pr.SKU, pr.Name = p.SKU, p.Name
				}
				byProduct[l.ProductID] = pr
			}
			pr.Units += l.Quantity
			pr.Revenue = pr.Revenue.Add(l.Net())
		}
	}

	ranked := make([]dto.ProductRevenue, 0, len(byProduct))
	for _, pr := range byProduct {
		ranked = append(ranked, *pr)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// breakdown groups order revenue by a customer attribute, largest first
func breakdown(snap *snapshot, key func(*entities.Customer) string) []dto.Breakdown {
	groups := make(map[string]*dto.Breakdown)
	for _, o := range snap.orders {
		k := "Unknown"
		if c, ok := snap.customers[o.CustomerID]; ok {
			k = key(c)
		}
		b, ok := groups[k]
		if !ok {
			b = &dto.Breakdown{Key: k, Revenue: decimal.Zero}
			groups[k] = b
		}
		b.Orders++
		b.Revenue = b.Revenue.Add(o.Total())
	}

	result := make([]dto.Breakdown, 0, len(groups))
	for _, b := range groups {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Revenue.Equal(result[j].Revenue) {
			return result[i].Revenue.GreaterThan(result[j].Revenue)
		}
		return result[i].Key < result[j].Key
	})
	return result
}

// RevenueSeries returns one point per bucket between from and to, including
// buckets without orders
func (s *Service) RevenueSeries(ctx context.Context, companyID entities.CompanyID, from, to time.Time, bucket dto.Bucket) (*dto.RevenueSeries, error) {
	const op = "analytics/RevenueSeries"

	if bucket == "" {
		bucket = dto.BucketDay
	}
	if bucket != dto.BucketDay && bucket != dto.BucketWeek && bucket != dto.BucketMonth {
		return nil, perrors.Invalid(op, fmt.Errorf("unknown bucket %q, expected day, week or month", bucket))
	}
	from, to, err := s.window(op, from, to)
	if err != nil {
		return nil, err
	}

	var starts []time.Time
	for t := BucketStart(from, bucket); !t.After(to); t = nextBucket(t, bucket) {
		if len(starts) == MaxSeriesPoints {
			return nil, perrors.Invalid(op, fmt.Errorf("range produces more than %d %s buckets", MaxSeriesPoints, bucket))
		}
		starts = append(starts, t)
	}

	orders, err := s.billableOrders(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	index := make(map[time.Time]int, len(starts))
	points := make([]dto.SeriesPoint, len(starts))
	for i, t := range starts {
		index[t] = i
		points[i] = dto.SeriesPoint{Start: t, Revenue: decimal.Zero}
	}
	for _, o := range orders {
		i, ok := index[BucketStart(o.OrderDate, bucket)]
		if !ok {
			continue
		}
		points[i].Orders++
		points[i].Revenue = points[i].Revenue.Add(o.Total())
	}
	return &dto.RevenueSeries{Bucket: bucket, Points: points}, nil
}

// BucketStart truncates t to the start of its bucket. Weeks start on Monday.
func BucketStart(t time.Time, bucket dto.Bucket) time.Time {
	d := entities.Day(t)
	switch bucket {
	case dto.BucketWeek:
		return d.AddDate(0, 0, -weekdayIndex(d))
	case dto.BucketMonth:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return d
	}
}

func nextBucket(t time.Time, bucket dto.Bucket) time.Time {
	switch bucket {
	case dto.BucketWeek:
		return t.AddDate(0, 0, 7)
	case dto.BucketMonth:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 0, 1)
	}
}

// weekdayIndex maps Monday to 0 and Sunday to 6
func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// ActivityGrid counts orders in [from, to] by weekday and UTC hour
func (s *Service) ActivityGrid(ctx context.Context, companyID entities.CompanyID, from, to time.Time) (*dto.ActivityGrid, error) {
	from, to, err := s.window("analytics/ActivityGrid", from, to)
	if err != nil {
		return nil, err
	}
	orders, err := s.billableOrders(ctx, companyID, from, to)
	if err != nil {
		return nil, err
	}

	grid := &dto.ActivityGrid{Days: Weekdays}
	for _, o := range orders {
		t := o.OrderDate.UTC()
		day, hour := weekdayIndex(t), t.Hour()
		grid.Cells[day][hour]++
		grid.Total++
		if grid.Cells[day][hour] > grid.Max {
			grid.Max = grid.Cells[day][hour]
		}
	}
	return grid, nil
}
