package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

func newProduct(companyID entities.CompanyID, id entities.ProductID, sku, name, category string, price int64) *entities.Product {
	return &entities.Product{
		ID:        id,
		CompanyID: companyID,
		SKU:       sku,
		Name:      name,
		Category:  category,
		Brand:     "Fizz",
		UnitPrice: decimal.NewFromInt(price),
		UnitCost:  decimal.NewFromInt(price / 2),
		Status:    entities.ProductActive,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestProductRepository_SaveProduct(t *testing.T) {
	repo := NewProductRepository(10)

	product := newProduct("acme", "P1", "COLA-330", "Cola 330ml", "Beverages", 12)
	if err := repo.SaveProduct(product); err != nil {
		t.Fatalf("Failed to save product: %v", err)
	}

	retrieved, err := repo.GetProduct("acme", "P1")
	if err != nil {
		t.Fatalf("Failed to get product: %v", err)
	}
	if retrieved.SKU != product.SKU {
		t.Errorf("Expected SKU %s, got %s", product.SKU, retrieved.SKU)
	}

	// Mutating the returned copy must not leak into the store
	retrieved.Name = "changed"
	again, _ := repo.GetProduct("acme", "P1")
	if again.Name != "Cola 330ml" {
		t.Errorf("Expected stored name to be unchanged, got %s", again.Name)
	}
}

func TestProductRepository_TenantIsolation(t *testing.T) {
	repo := NewProductRepository(10)

	if err := repo.SaveProduct(newProduct("acme", "P1", "COLA-330", "Cola", "Beverages", 12)); err != nil {
		t.Fatalf("Failed to save product: %v", err)
	}
	// Same SKU is allowed in a different company
	if err := repo.SaveProduct(newProduct("globex", "P2", "COLA-330", "Cola", "Beverages", 12)); err != nil {
		t.Fatalf("Expected same SKU in another company to succeed: %v", err)
	}

	_, err := repo.GetProduct("globex", "P1")
	if err == nil {
		t.Fatal("Expected cross-tenant lookup to fail, got none")
	}
	if !strings.Contains(err.Error(), "product not found") {
		t.Errorf("Expected 'product not found', got: %v", err)
	}
}

func TestProductRepository_SaveProduct_DuplicateSKU(t *testing.T) {
	repo := NewProductRepository(10)

	if err := repo.SaveProduct(newProduct("acme", "P1", "COLA-330", "Cola", "Beverages", 12)); err != nil {
		t.Fatalf("Failed to save product: %v", err)
	}
	err := repo.SaveProduct(newProduct("acme", "P2", "COLA-330", "Cola Zero", "Beverages", 12))
	if err == nil {
		t.Fatal("Expected error when saving duplicate SKU, got none")
	}
	if !strings.Contains(err.Error(), "duplicate sku") {
		t.Errorf("Expected error message to contain 'duplicate sku', got: %v", err)
	}
}

func TestProductRepository_FindProducts(t *testing.T) {
	repo := NewProductRepository(10)
	products := []*entities.Product{
		newProduct("acme", "P1", "COLA-330", "Cola 330ml", "Beverages", 12),
		newProduct("acme", "P2", "CHIPS-100", "Salted Chips", "Snacks", 20),
		newProduct("acme", "P3", "COLA-1L", "Cola 1L", "Beverages", 25),
		newProduct("acme", "P4", "WATER-500", "Still Water", "beverages", 8),
	}
	if err := repo.LoadProducts(products); err != nil {
		t.Fatalf("Failed to load products: %v", err)
	}

	items, total, err := repo.FindProducts("acme", repositories.ProductFilter{Category: "BEVERAGES"}, repositories.Page{Sort: "price"})
	if err != nil {
		t.Fatalf("Failed to find products: %v", err)
	}
	if total != 3 {
		t.Fatalf("Expected 3 beverages, got %d", total)
	}
	got := []entities.ProductID{items[0].ID, items[1].ID, items[2].ID}
	want := []entities.ProductID{"P4", "P1", "P3"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Expected price order %v, got %v", want, got)
	}

	items, total, _ = repo.FindProducts("acme", repositories.ProductFilter{Query: "cola"}, repositories.Page{Limit: 1, Offset: 1})
	if total != 2 {
		t.Errorf("Expected 2 matches for 'cola', got %d", total)
	}
	if len(items) != 1 || items[0].ID != "P3" {
		t.Errorf("Expected second page to contain P3, got %v", items)
	}

	discontinued := entities.ProductDiscontinued
	_, total, _ = repo.FindProducts("acme", repositories.ProductFilter{Status: &discontinued}, repositories.Page{})
	if total != 0 {
		t.Errorf("Expected no discontinued products, got %d", total)
	}
}

func TestProductRepository_DeleteProduct(t *testing.T) {
	repo := NewProductRepository(10)
	_ = repo.LoadProducts([]*entities.Product{
		newProduct("acme", "P1", "A", "A", "Beverages", 1),
		newProduct("acme", "P2", "B", "B", "Beverages", 1),
		newProduct("acme", "P3", "C", "C", "Beverages", 1),
	})

	if err := repo.DeleteProduct("acme", "P1"); err != nil {
		t.Fatalf("Failed to delete product: %v", err)
	}
	// The index must still resolve rows that shifted down
	if p, err := repo.GetProduct("acme", "P3"); err != nil || p.SKU != "C" {
		t.Errorf("Expected P3 to survive delete of P1, got %v, %v", p, err)
	}
	if err := repo.DeleteProduct("acme", "P1"); err == nil {
		t.Error("Expected second delete to fail, got none")
	}
}

func TestProductRepository_ConcurrentAccess(t *testing.T) {
	repo := NewProductRepository(100)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := entities.ProductID(fmt.Sprintf("P%d", i))
			_ = repo.SaveProduct(newProduct("acme", id, fmt.Sprintf("SKU-%d", i), "Item", "Beverages", 1))
			_, _, _ = repo.FindProducts("acme", repositories.ProductFilter{}, repositories.Page{})
		}(i)
	}
	wg.Wait()

	all, _ := repo.GetAllProducts("acme")
	if len(all) != 20 {
		t.Errorf("Expected 20 products, got %d", len(all))
	}
}

func TestProductRepository_UpdateProduct(t *testing.T) {
	repo := NewProductRepository(10)
	_ = repo.LoadProducts([]*entities.Product{
		newProduct("acme", "P1", "COLA-330", "Cola", "Beverages", 12),
		newProduct("acme", "P2", "CHIPS-125", "Chips", "Snacks", 20),
	})

	updated, err := repo.UpdateProduct("acme", "P1", func(p *entities.Product) error {
		p.Name = "Cola Zero"
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to update product: %v", err)
	}
	if updated.Name != "Cola Zero" {
		t.Errorf("Expected updated name, got %s", updated.Name)
	}

	_, err = repo.UpdateProduct("acme", "P1", func(p *entities.Product) error {
		p.SKU = "CHIPS-125"
		return nil
	})
	if perrors.ErrorCode(err) != perrors.EConflict {
		t.Errorf("Expected conflict on duplicate SKU, got %v", err)
	}

	_, err = repo.UpdateProduct("acme", "P1", func(p *entities.Product) error {
		p.Name = ""
		return nil
	})
	if perrors.ErrorCode(err) != perrors.EInvalid {
		t.Errorf("Expected invalid product to be rejected, got %v", err)
	}

	stored, _ := repo.GetProduct("acme", "P1")
	if stored.Name != "Cola Zero" || stored.SKU != "COLA-330" {
		t.Errorf("Expected failed updates to leave the product untouched, got %s/%s", stored.SKU, stored.Name)
	}

	if _, err := repo.UpdateProduct("globex", "P1", func(*entities.Product) error { return nil }); perrors.ErrorCode(err) != perrors.ENotFound {
		t.Errorf("Expected cross-tenant update to fail with not found, got %v", err)
	}
}

func TestProductRepository_UpdateAfterDelete(t *testing.T) {
	repo := NewProductRepository(10)
	_ = repo.SaveProduct(newProduct("acme", "P1", "COLA-330", "Cola", "Beverages", 12))

	if err := repo.DeleteProduct("acme", "P1"); err != nil {
		t.Fatalf("Failed to delete product: %v", err)
	}
	called := false
	_, err := repo.UpdateProduct("acme", "P1", func(p *entities.Product) error {
		called = true
		return nil
	})
	if perrors.ErrorCode(err) != perrors.ENotFound {
		t.Errorf("Expected not found, got %v", err)
	}
	if called {
		t.Error("Expected update func not to run for a deleted product")
	}
	if _, err := repo.GetProduct("acme", "P1"); err == nil {
		t.Error("Expected deleted product to stay deleted")
	}
}
