package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/application/icontext"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	"github.com/vsinha/vantax/pkg/infrastructure/events"
	"github.com/vsinha/vantax/pkg/infrastructure/repositories/memory"
	testdata "github.com/vsinha/vantax/pkg/infrastructure/testing"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) (*Service, *events.MemoryJournal) {
	svc, journal, _ := newTestServiceWithRepos(t)
	return svc, journal
}

func newTestServiceWithRepos(t *testing.T) (*Service, *events.MemoryJournal, *memory.Repositories) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(testdata.Now)
	journal := events.NewMemoryJournal(100)
	bus := events.NewBus(journal, clk, zaptest.NewLogger(t), 16)
	t.Cleanup(bus.Close)
	repos := testdata.BuildTestRepositories()
	return NewService(repos.Products, repos.Orders, repos.Promotions, bus, clk, zaptest.NewLogger(t)), journal, repos
}

func savePromotion(t *testing.T, repos *memory.Repositories, id entities.PromotionID, products []entities.ProductID, customers []entities.CustomerID) {
	t.Helper()
	promo, err := entities.NewPromotion(id, "acme", "Launch "+string(id), entities.Discount, entities.PromotionDraft,
		time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(10), decimal.NewFromInt(500), decimal.Zero,
		products, customers, testdata.Now)
	require.NoError(t, err)
	require.NoError(t, repos.Promotions.SavePromotion(promo))
}

func managerContext() context.Context {
	return icontext.SetPrincipal(context.Background(), icontext.Principal{
		UserID: "u-manager", CompanyID: "acme", Role: entities.Manager,
	})
}

func TestService_CreateProduct(t *testing.T) {
	svc, journal := newTestService(t)
	ctx := managerContext()

	product, err := svc.CreateProduct(ctx, "acme", dto.ProductInput{
		SKU: "water-500", Name: "Still Water", Category: "Beverages", Brand: "Spring",
		UnitPrice: decimal.NewFromInt(8), UnitCost: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "WATER-500", product.SKU)
	assert.Equal(t, testdata.Now, product.CreatedAt)

	got, err := svc.GetProduct(ctx, "acme", product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, got.Name)

	stored, err := journal.List(ctx, "acme", time.Time{}, 0)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, events.ProductCreatedEvent, stored[0].Type)
	assert.Equal(t, entities.UserID("u-manager"), stored[0].Actor)
}

func TestService_CreateProductErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := managerContext()

	_, err := svc.CreateProduct(ctx, "acme", dto.ProductInput{SKU: "X", Name: "", Category: "Snacks"})
	assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err))

	_, err = svc.CreateProduct(ctx, "acme", dto.ProductInput{
		SKU: "cola-330", Name: "Cola again", Category: "Beverages", UnitPrice: decimal.NewFromInt(1),
	})
	assert.Equal(t, perrors.EConflict, perrors.ErrorCode(err))

	// SKUs are only unique within a company
	_, err = svc.CreateProduct(ctx, "globex", dto.ProductInput{
		SKU: "cola-330", Name: "Globex Cola", Category: "Beverages", UnitPrice: decimal.NewFromInt(1),
	})
	assert.NoError(t, err)
}

func TestService_UpdateAndDeleteProduct(t *testing.T) {
	svc, journal := newTestService(t)
	ctx := managerContext()

	updated, err := svc.UpdateProduct(ctx, "acme", "P-CHIPS", dto.ProductInput{
		SKU: "CHIPS-125", Name: "Salted Chips XL", Category: "Snacks", Brand: "Crunch",
		UnitPrice: decimal.NewFromInt(22), UnitCost: decimal.NewFromInt(12),
		Status: entities.ProductDiscontinued,
	})
	require.NoError(t, err)
	assert.Equal(t, "Salted Chips XL", updated.Name)
	assert.Equal(t, entities.ProductDiscontinued, updated.Status)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), updated.CreatedAt)

	_, err = svc.UpdateProduct(ctx, "globex", "P-CHIPS", dto.ProductInput{SKU: "X", Name: "X", Category: "X"})
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(err))

	err = svc.DeleteProduct(ctx, "acme", "P-CHIPS")
	assert.Equal(t, perrors.EConflict, perrors.ErrorCode(err), "products with orders cannot be deleted")

	require.NoError(t, svc.DeleteProduct(ctx, "acme", "P-OLD"))
	_, err = svc.GetProduct(ctx, "acme", "P-OLD")
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(err))

	stored, _ := journal.List(ctx, "acme", time.Time{}, 0)
	require.Len(t, stored, 2)
	assert.Equal(t, events.ProductDeletedEvent, stored[0].Type)
}

func TestService_DeleteProductInPromotion(t *testing.T) {
	svc, _, repos := newTestServiceWithRepos(t)
	ctx := managerContext()

	product, err := svc.CreateProduct(ctx, "acme", dto.ProductInput{
		SKU: "NEW-1", Name: "Launch Soda", Category: "Beverages", UnitPrice: decimal.NewFromInt(9),
	})
	require.NoError(t, err)
	savePromotion(t, repos, "PR-LAUNCH", []entities.ProductID{product.ID}, nil)

	err = svc.DeleteProduct(ctx, "acme", product.ID)
	assert.Equal(t, perrors.EConflict, perrors.ErrorCode(err))
	assert.Contains(t, perrors.ErrorMessage(err), "PR-LAUNCH")

	_, err = svc.GetProduct(ctx, "acme", product.ID)
	assert.NoError(t, err, "product must survive a rejected delete")
}

func TestService_UpdateDeletedProduct(t *testing.T) {
	svc, journal := newTestService(t)
	ctx := managerContext()

	require.NoError(t, svc.DeleteProduct(ctx, "acme", "P-OLD"))
	_, err := svc.UpdateProduct(ctx, "acme", "P-OLD", dto.ProductInput{
		SKU: "OLD-1L", Name: "Old Cordial", Category: "Beverages", UnitPrice: decimal.NewFromInt(5),
	})
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(err))

	_, err = svc.GetProduct(ctx, "acme", "P-OLD")
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(err), "update must not recreate a deleted product")

	_, err = svc.UpdateProduct(ctx, "acme", "P-COLA", dto.ProductInput{SKU: "CHIPS-125", Name: "Cola", Category: "Beverages"})
	assert.Equal(t, perrors.EConflict, perrors.ErrorCode(err))

	stored, _ := journal.List(ctx, "acme", time.Time{}, 0)
	require.Len(t, stored, 1)
	assert.Equal(t, events.ProductDeletedEvent, stored[0].Type)
}

func TestService_ListProducts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.ListProducts(ctx, "acme", repositories.ProductFilter{Category: "beverages"}, repositories.Page{Sort: "name"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, repositories.DefaultPageLimit, result.Limit)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Cola 330ml", result.Items[0].Name)
	assert.Equal(t, "Old Cordial", result.Items[1].Name)

	result, err = svc.ListProducts(ctx, "initech", repositories.ProductFilter{}, repositories.Page{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Total)
	assert.NotNil(t, result.Items)
}
