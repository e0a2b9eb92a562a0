package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/vantax/pkg/application/dto"
	testdata "github.com/vsinha/vantax/pkg/infrastructure/testing"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

func newTestService(t *testing.T) *Service {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(testdata.Now)
	repos := testdata.BuildTestRepositories()
	return NewService(repos.Orders, repos.Products, repos.Customers, repos.Promotions, clk)
}

var (
	march    = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	marchEnd = time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
)

func TestService_Dashboard(t *testing.T) {
	svc := newTestService(t)

	d, err := svc.Dashboard(context.Background(), "acme", march, marchEnd)
	require.NoError(t, err)

	// O3 is cancelled and O4 falls in February
	assert.Equal(t, "230", d.Revenue.String())
	assert.Equal(t, 2, d.Orders)
	assert.Equal(t, "115", d.AverageOrderValue.String())
	assert.EqualValues(t, 17, d.Units)
	assert.Equal(t, 2, d.ActiveCustomers)
	assert.Equal(t, 2, d.ActivePromotions)
	// O1 is the only promoted order, with 10 off
	assert.Equal(t, "10", d.TradeSpend.String())
	assert.Equal(t, "190", d.PromotedRevenue.String())
	assert.Equal(t, "18", d.PromotionROI.String())

	wantTop := []dto.ProductRevenue{
		{ProductID: "P-CHIPS", SKU: "CHIPS-125", Name: "Salted Chips", Units: 7, Revenue: decimal.NewFromInt(140)},
		{ProductID: "P-COLA", SKU: "COLA-330", Name: "Cola 330ml", Units: 10, Revenue: decimal.NewFromInt(90)},
	}
	if diff := cmp.Diff(wantTop, d.TopProducts, decimalEqual); diff != "" {
		t.Errorf("top products mismatch (-want +got):\n%s", diff)
	}

	wantChannels := []dto.Breakdown{
		{Key: "ModernTrade", Orders: 1, Revenue: decimal.NewFromInt(190)},
		{Key: "GeneralTrade", Orders: 1, Revenue: decimal.NewFromInt(40)},
	}
	if diff := cmp.Diff(wantChannels, d.RevenueByChannel, decimalEqual); diff != "" {
		t.Errorf("channel breakdown mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, d.RevenueByRegion, 2)
	assert.Equal(t, "North", d.RevenueByRegion[0].Key)
}

func TestService_DashboardSpendFollowsWindow(t *testing.T) {
	svc := newTestService(t)

	// both promotions run through this window but none of their orders do
	d, err := svc.Dashboard(context.Background(), "acme",
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), testdata.Now)
	require.NoError(t, err)
	assert.Equal(t, 2, d.ActivePromotions)
	assert.True(t, d.TradeSpend.IsZero(), "spend %s", d.TradeSpend)
	assert.True(t, d.PromotedRevenue.IsZero())
	assert.True(t, d.PromotionROI.IsZero(), "roi %s", d.PromotionROI)

	d, err = svc.Dashboard(context.Background(), "acme",
		time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 3, 23, 59, 59, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "10", d.TradeSpend.String())
	assert.Equal(t, "18", d.PromotionROI.String())
}

func TestService_DashboardDefaultsAndTenancy(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	d, err := svc.Dashboard(ctx, "acme", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, testdata.Now, d.To)
	assert.Equal(t, testdata.Now.Add(-DefaultRange), d.From)
	assert.Equal(t, 2, d.Orders)

	d, err = svc.Dashboard(ctx, "globex", march, marchEnd)
	require.NoError(t, err)
	assert.Equal(t, "50", d.Revenue.String())
	assert.True(t, d.PromotionROI.IsZero(), "no spend means zero ROI")

	d, err = svc.Dashboard(ctx, "initech", march, marchEnd)
	require.NoError(t, err)
	assert.Equal(t, 0, d.Orders)
	assert.True(t, d.AverageOrderValue.IsZero())

	_, err = svc.Dashboard(ctx, "acme", marchEnd, march)
	assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err))
}

func TestService_RevenueSeries(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	series, err := svc.RevenueSeries(ctx, "acme", march, time.Date(2025, 3, 7, 23, 0, 0, 0, time.UTC), dto.BucketDay)
	require.NoError(t, err)
	require.Len(t, series.Points, 7)
	assert.Equal(t, march, series.Points[0].Start)
	assert.True(t, series.Points[0].Revenue.IsZero())
	assert.Equal(t, "190", series.Points[2].Revenue.String())
	assert.Equal(t, "40", series.Points[3].Revenue.String())
	assert.Equal(t, 0, series.Points[4].Orders, "cancelled orders are excluded")

	series, err = svc.RevenueSeries(ctx, "acme", march, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), dto.BucketWeek)
	require.NoError(t, err)
	require.Len(t, series.Points, 2)
	assert.Equal(t, time.Date(2025, 2, 24, 0, 0, 0, 0, time.UTC), series.Points[0].Start)
	assert.Equal(t, 2, series.Points[1].Orders)

	series, err = svc.RevenueSeries(ctx, "acme", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), marchEnd, dto.BucketMonth)
	require.NoError(t, err)
	require.Len(t, series.Points, 3)
	assert.True(t, series.Points[0].Revenue.IsZero())
	assert.Equal(t, "200", series.Points[1].Revenue.String())
	assert.Equal(t, "230", series.Points[2].Revenue.String())
}

func TestService_RevenueSeriesErrors(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.RevenueSeries(ctx, "acme", march, marchEnd, dto.Bucket("hour"))
	assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err))

	_, err = svc.RevenueSeries(ctx, "acme", time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), marchEnd, dto.BucketDay)
	assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err))
}

func TestService_ActivityGrid(t *testing.T) {
	svc := newTestService(t)

	grid, err := svc.ActivityGrid(context.Background(), "acme", march, marchEnd)
	require.NoError(t, err)
	assert.Equal(t, Weekdays, grid.Days)
	assert.Equal(t, 1, grid.Cells[0][9], "O1 is a Monday 09:00 order")
	assert.Equal(t, 1, grid.Cells[1][14], "O2 is a Tuesday 14:00 order")
	assert.Equal(t, 0, grid.Cells[2][9], "O3 is cancelled")
	assert.Equal(t, 1, grid.Max)
	assert.Equal(t, 2, grid.Total)
}

func TestROI(t *testing.T) {
	tests := []struct {
		revenue, spend int64
		want           string
	}{
		{190, 105, "0.8095"},
		{0, 95, "-1"},
		{100, 0, "0"},
		{300, 100, "2"},
	}
	for _, tt := range tests {
		got := ROI(decimal.NewFromInt(tt.revenue), decimal.NewFromInt(tt.spend))
		if got.String() != tt.want {
			t.Errorf("ROI(%d, %d): expected %s, got %s", tt.revenue, tt.spend, tt.want, got)
		}
	}
}
