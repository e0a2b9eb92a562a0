package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/infrastructure/events"
	"github.com/vsinha/vantax/pkg/infrastructure/repositories/memory"
	testdata "github.com/vsinha/vantax/pkg/infrastructure/testing"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (*Service, *memory.Repositories, *events.MemoryJournal) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(testdata.Now)
	journal := events.NewMemoryJournal(100)
	bus := events.NewBus(journal, clk, zaptest.NewLogger(t), 16)
	t.Cleanup(bus.Close)
	repos := testdata.BuildTestRepositories()
	svc := NewService(repos.Orders, repos.Products, repos.Customers, repos.Promotions, bus, clk, zaptest.NewLogger(t))
	return svc, repos, journal
}

func spendOf(t *testing.T, repos *memory.Repositories, id entities.PromotionID) decimal.Decimal {
	t.Helper()
	p, err := repos.Promotions.GetPromotion("acme", id)
	require.NoError(t, err)
	return p.Spend
}

func TestService_CreateOrderAppliesBestPromotion(t *testing.T) {
	svc, repos, journal := newTestService(t)
	ctx := context.Background()
	in := dto.OrderInput{
		CustomerID: "C-MART",
		Lines:      []dto.OrderLineInput{{ProductID: "P-COLA", Quantity: 10}},
	}

	// PR-BIG offers 20% but only 5 of its budget is left
	order, err := svc.CreateOrder(ctx, "acme", in)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderPending, order.Status)
	assert.Equal(t, testdata.Now, order.OrderDate)
	assert.Equal(t, entities.PromotionID("PR-BIG"), order.PromotionID)
	assert.Equal(t, "5", order.DiscountTotal().String())
	assert.Equal(t, "95", order.Total().String())
	assert.True(t, spendOf(t, repos, "PR-BIG").Equal(decimal.NewFromInt(100)))

	// with PR-BIG exhausted the next best promotion takes over
	order, err = svc.CreateOrder(ctx, "acme", in)
	require.NoError(t, err)
	assert.Equal(t, entities.PromotionID("PR-COLA"), order.PromotionID)
	assert.Equal(t, "10", order.DiscountTotal().String())
	assert.True(t, spendOf(t, repos, "PR-COLA").Equal(decimal.NewFromInt(20)))

	stored, _ := journal.List(ctx, "acme", time.Time{}, 0)
	require.Len(t, stored, 4)
	assert.Equal(t, events.PromotionSpendRecordedEvent, stored[0].Type)
	assert.Equal(t, "10", stored[0].Data["amount"])
	assert.Equal(t, events.OrderCreatedEvent, stored[1].Type)
}

func TestService_CreateOrderDiscountsCoveredLinesOnly(t *testing.T) {
	svc, _, _ := newTestService(t)

	order, err := svc.CreateOrder(context.Background(), "acme", dto.OrderInput{
		CustomerID: "C-SPAZA",
		Lines: []dto.OrderLineInput{
			{ProductID: "P-COLA", Quantity: 5},
			{ProductID: "P-CHIPS", Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.PromotionID("PR-COLA"), order.PromotionID)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, "10", order.Lines[0].UnitPrice.String(), "prices come from the catalog")
	assert.Equal(t, "5", order.Lines[0].Discount.String())
	assert.True(t, order.Lines[1].Discount.IsZero())
	assert.Equal(t, "85", order.Total().String())
}

func TestService_CreateOrderOutsidePromotionWindow(t *testing.T) {
	svc, _, _ := newTestService(t)

	order, err := svc.CreateOrder(context.Background(), "acme", dto.OrderInput{
		CustomerID: "C-MART",
		OrderDate:  time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC),
		Lines:      []dto.OrderLineInput{{ProductID: "P-COLA", Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Empty(t, order.PromotionID)
	assert.Equal(t, "30", order.Total().String())
}

func TestService_CreateOrderErrors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   dto.OrderInput
		code string
	}{
		{
			name: "unknown customer",
			in:   dto.OrderInput{CustomerID: "G-CUST", Lines: []dto.OrderLineInput{{ProductID: "P-COLA", Quantity: 1}}},
			code: perrors.EInvalid,
		},
		{
			name: "no lines",
			in:   dto.OrderInput{CustomerID: "C-MART"},
			code: perrors.EInvalid,
		},
		{
			name: "zero quantity",
			in:   dto.OrderInput{CustomerID: "C-MART", Lines: []dto.OrderLineInput{{ProductID: "P-COLA", Quantity: 0}}},
			code: perrors.EInvalid,
		},
		{
			name: "product of another company",
			in:   dto.OrderInput{CustomerID: "C-MART", Lines: []dto.OrderLineInput{{ProductID: "G-TEA", Quantity: 1}}},
			code: perrors.EInvalid,
		},
		{
			name: "discontinued product",
			in:   dto.OrderInput{CustomerID: "C-MART", Lines: []dto.OrderLineInput{{ProductID: "P-OLD", Quantity: 1}}},
			code: perrors.EUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(ctx, "acme", tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.code, perrors.ErrorCode(err), "unexpected error: %v", err)
		})
	}
}

func TestService_UpdateStatus(t *testing.T) {
	svc, _, journal := newTestService(t)
	ctx := context.Background()

	order, err := svc.UpdateStatus(ctx, "acme", "O2", entities.OrderShipped)
	require.NoError(t, err)
	assert.Equal(t, entities.OrderShipped, order.Status)

	_, err = svc.UpdateStatus(ctx, "acme", "O3", entities.OrderConfirmed)
	assert.Equal(t, perrors.EUnprocessableEntity, perrors.ErrorCode(err), "cancelled orders are final")

	_, err = svc.UpdateStatus(ctx, "acme", "O1", entities.OrderCancelled)
	assert.Equal(t, perrors.EUnprocessableEntity, perrors.ErrorCode(err), "delivered orders cannot be cancelled")

	_, err = svc.UpdateStatus(ctx, "acme", "O9", entities.OrderConfirmed)
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(err))

	stored, _ := journal.List(ctx, "acme", time.Time{}, 0)
	require.Len(t, stored, 1)
	assert.Equal(t, events.OrderStatusChangedEvent, stored[0].Type)
	assert.Equal(t, "Confirmed", stored[0].Data["from"])
}

func TestService_CancelReleasesPromotionSpend(t *testing.T) {
	svc, repos, _ := newTestService(t)
	ctx := context.Background()

	order, err := svc.CreateOrder(ctx, "acme", dto.OrderInput{
		CustomerID: "C-SPAZA",
		Lines:      []dto.OrderLineInput{{ProductID: "P-COLA", Quantity: 10}},
	})
	require.NoError(t, err)
	require.Equal(t, entities.PromotionID("PR-COLA"), order.PromotionID)
	assert.True(t, spendOf(t, repos, "PR-COLA").Equal(decimal.NewFromInt(20)))

	_, err = svc.UpdateStatus(ctx, "acme", order.ID, entities.OrderCancelled)
	require.NoError(t, err)
	assert.True(t, spendOf(t, repos, "PR-COLA").Equal(decimal.NewFromInt(10)))
}

func TestService_CreateOrderConcurrentBudget(t *testing.T) {
	svc, repos, _ := newTestService(t)
	ctx := context.Background()

	// leave 45 of PR-COLA's 1000 budget
	_, err := repos.Promotions.UpdatePromotion("acme", "PR-COLA", func(p *entities.Promotion) error {
		p.Spend = decimal.NewFromInt(955)
		return nil
	})
	require.NoError(t, err)

	const workers = 20
	created := make([]*entities.Order, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			created[i], errs[i] = svc.CreateOrder(ctx, "acme", dto.OrderInput{
				CustomerID: "C-SPAZA",
				Lines:      []dto.OrderLineInput{{ProductID: "P-COLA", Quantity: 10}},
			})
		}(i)
	}
	wg.Wait()

	booked := decimal.Zero
	promoted := 0
	for i := range created {
		require.NoError(t, errs[i])
		if created[i].PromotionID == "PR-COLA" {
			promoted++
			booked = booked.Add(created[i].DiscountTotal())
		} else {
			assert.True(t, created[i].DiscountTotal().IsZero(), "order %s discounted without a promotion", created[i].ID)
		}
	}

	promo, err := repos.Promotions.GetPromotion("acme", "PR-COLA")
	require.NoError(t, err)
	assert.True(t, promo.Spend.LessThanOrEqual(promo.Budget), "spend %s exceeds budget %s", promo.Spend, promo.Budget)
	assert.True(t, promo.Spend.Equal(decimal.NewFromInt(1000)), "spend %s", promo.Spend)
	assert.True(t, booked.Equal(decimal.NewFromInt(45)), "order discounts %s", booked)
	assert.Equal(t, 5, promoted, "four full discounts of 10 and one of 5")
}
