package services

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/domain/entities"
)

func validDataset() *Dataset {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return &Dataset{
		Companies: []*entities.Company{
			{ID: "acme", Name: "Acme", Slug: "acme", Currency: "ZAR", Active: true},
			{ID: "globex", Name: "Globex", Slug: "globex", Currency: "USD", Active: true},
		},
		Users: []*entities.User{
			{ID: "u1", CompanyID: "acme", Email: "a@acme.com", Name: "A", Role: entities.Admin, PasswordHash: "x"},
			{ID: "u2", CompanyID: "globex", Email: "b@globex.com", Name: "B", Role: entities.Admin, PasswordHash: "x"},
		},
		Products: []*entities.Product{
			{ID: "P1", CompanyID: "acme", SKU: "COLA", Name: "Cola", Category: "Beverages", UnitPrice: decimal.NewFromInt(10), CreatedAt: now},
			{ID: "P9", CompanyID: "globex", SKU: "TEA", Name: "Tea", Category: "Beverages", UnitPrice: decimal.NewFromInt(5), CreatedAt: now},
		},
		Customers: []*entities.Customer{
			{ID: "C1", CompanyID: "acme", Code: "SHOP", Name: "Shop", Region: "North"},
		},
		Promotions: []*entities.Promotion{
			{ID: "PR1", CompanyID: "acme", Name: "Promo", ProductIDs: []entities.ProductID{"P1"}},
		},
		Orders: []*entities.Order{
			{
				ID: "O1", CompanyID: "acme", CustomerID: "C1", OrderDate: now, PromotionID: "PR1",
				Lines: []entities.OrderLine{{ProductID: "P1", Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
			},
		},
	}
}

func TestValidateDataset_Valid(t *testing.T) {
	result := ValidateDataset(validDataset())
	if !result.Valid() {
		t.Errorf("Expected valid dataset, got errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
}

func TestValidateDataset_CrossTenantReference(t *testing.T) {
	d := validDataset()
	// P9 exists, but belongs to another company
	d.Orders[0].Lines[0].ProductID = "P9"

	result := ValidateDataset(d)
	if result.Valid() {
		t.Fatal("Expected cross-tenant product reference to be rejected")
	}
	if !strings.Contains(strings.Join(result.Errors, ";"), "order O1 references unknown product P9") {
		t.Errorf("Expected unknown product error, got %v", result.Errors)
	}
}

func TestValidateDataset_UnknownCompanyAndMissingAdmin(t *testing.T) {
	d := validDataset()
	d.Customers = append(d.Customers, &entities.Customer{ID: "C2", CompanyID: "initech", Code: "X", Name: "X", Region: "R"})
	d.Users = d.Users[:1]

	result := ValidateDataset(d)
	joined := strings.Join(result.Errors, ";")
	if !strings.Contains(joined, "customer C2 references unknown company initech") {
		t.Errorf("Expected unknown company error, got %v", result.Errors)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "globex has no admin") {
		t.Errorf("Expected missing admin warning for globex, got %v", result.Warnings)
	}
}
