package promotions

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
	"github.com/vsinha/vantax/pkg/domain/repositories"
	"github.com/vsinha/vantax/pkg/infrastructure/events"
	testdata "github.com/vsinha/vantax/pkg/infrastructure/testing"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (*Service, *events.MemoryJournal) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(testdata.Now)
	journal := events.NewMemoryJournal(1000)
	bus := events.NewBus(journal, clk, zaptest.NewLogger(t), 256)
	t.Cleanup(bus.Close)
	repos := testdata.BuildTestRepositories()
	return NewService(repos.Promotions, repos.Products, repos.Customers, bus, clk, zaptest.NewLogger(t)), journal
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestService_CreatePromotion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := dto.PromotionInput{
		Name: "Chips Easter", Type: entities.BOGO,
		StartDate: day("2025-04-01"), EndDate: day("2025-04-21"),
		DiscountPct: decimal.NewFromInt(50), Budget: decimal.NewFromInt(2500),
		ProductIDs: []entities.ProductID{"P-CHIPS"},
	}
	promotion, err := svc.CreatePromotion(ctx, "acme", in)
	require.NoError(t, err)
	assert.Equal(t, entities.PromotionDraft, promotion.Status)
	assert.True(t, promotion.Spend.IsZero())

	in.ProductIDs = []entities.ProductID{"G-TEA"}
	_, err = svc.CreatePromotion(ctx, "acme", in)
	assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err), "products of other companies cannot be targeted")

	in.ProductIDs = nil
	in.StartDate, in.EndDate = in.EndDate, in.StartDate
	_, err = svc.CreatePromotion(ctx, "acme", in)
	assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err))
}

func TestService_UpdatePromotion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := dto.PromotionInput{
		Name: "Chips Winter Extended", Type: entities.Discount,
		StartDate: day("2025-06-01"), EndDate: day("2025-09-30"),
		DiscountPct: decimal.NewFromInt(7), Budget: decimal.NewFromInt(800),
	}
	updated, err := svc.UpdatePromotion(ctx, "acme", "PR-DRAFT", in)
	require.NoError(t, err)
	assert.Equal(t, "Chips Winter Extended", updated.Name)
	assert.Equal(t, entities.PromotionDraft, updated.Status)

	_, err = svc.UpdatePromotion(ctx, "acme", "PR-COLA", in)
	assert.Equal(t, perrors.EUnprocessableEntity, perrors.ErrorCode(err), "active promotions are frozen")
}

func TestService_Transition(t *testing.T) {
	svc, journal := newTestService(t)
	ctx := context.Background()

	p, err := svc.Transition(ctx, "acme", "PR-DRAFT", entities.PromotionPlanned)
	require.NoError(t, err)
	assert.Equal(t, entities.PromotionPlanned, p.Status)

	_, err = svc.Transition(ctx, "acme", "PR-DRAFT", entities.PromotionCompleted)
	assert.Equal(t, perrors.EUnprocessableEntity, perrors.ErrorCode(err))

	_, err = svc.Transition(ctx, "globex", "PR-DRAFT", entities.PromotionActive)
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(err))

	stored, _ := journal.List(ctx, "acme", time.Time{}, 0)
	require.Len(t, stored, 1)
	assert.Equal(t, events.PromotionStatusChangedEvent, stored[0].Type)
	assert.Equal(t, "Draft", stored[0].Data["from"])
	assert.Equal(t, "Planned", stored[0].Data["status"])
}

func TestService_RecordSpend(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.RecordSpend(ctx, "acme", "PR-BIG", decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.True(t, p.Spend.Equal(decimal.NewFromInt(100)))

	_, err = svc.RecordSpend(ctx, "acme", "PR-BIG", decimal.NewFromInt(1))
	assert.Equal(t, perrors.EUnprocessableEntity, perrors.ErrorCode(err), "budget is a hard ceiling")

	_, err = svc.RecordSpend(ctx, "acme", "PR-DRAFT", decimal.NewFromInt(1))
	assert.Equal(t, perrors.EUnprocessableEntity, perrors.ErrorCode(err), "only active promotions accrue spend")
}

func TestService_RecordSpendConcurrently(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// PR-COLA has 990 left; 200 workers each try to spend 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordSpend(ctx, "acme", "PR-COLA", decimal.NewFromInt(10)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 99, succeeded)
	p, err := svc.GetPromotion(ctx, "acme", "PR-COLA")
	require.NoError(t, err)
	assert.True(t, p.Spend.Equal(p.Budget), "expected spend %s to reach budget %s", p.Spend, p.Budget)
}

func TestService_ListPromotions(t *testing.T) {
	svc, _ := newTestService(t)
	status := entities.PromotionActive

	result, err := svc.ListPromotions(context.Background(), "acme",
		repositories.PromotionFilter{Status: &status}, repositories.Page{Sort: "budget"})
	require.NoError(t, err)
	require.Equal(t, 2, result.Total)
	assert.Equal(t, entities.PromotionID("PR-BIG"), result.Items[0].ID)
	assert.Equal(t, entities.PromotionID("PR-COLA"), result.Items[1].ID)
}
