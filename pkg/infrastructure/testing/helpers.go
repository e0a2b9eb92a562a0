package testing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/services"
	"github.com/vsinha/vantax/pkg/infrastructure/repositories/memory"
	"golang.org/x/crypto/bcrypt"
)

// Now is the reference instant of the fixture; tests pin their clocks to it
var Now = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

// Password is the plain-text password of every fixture user
const Password = "correct-horse"

// BuildTestDataset builds the two-tenant retail scenario used across the
// service and transport tests. Company "acme" carries the interesting data;
// "globex" exists to prove tenant isolation and "dormant" is inactive.
func BuildTestDataset() *services.Dataset {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return &services.Dataset{
		Companies: []*entities.Company{
			mustCreateCompany("acme", "Acme Foods", "acme", true, created),
			mustCreateCompany("globex", "Globex Beverages", "globex", true, created),
			mustCreateCompany("dormant", "Dormant Traders", "dormant", false, created),
		},
		Users: []*entities.User{
			mustCreateUser("u-admin", "acme", "admin@acme.test", entities.Admin, string(hash), true),
			mustCreateUser("u-manager", "acme", "manager@acme.test", entities.Manager, string(hash), true),
			mustCreateUser("u-viewer", "acme", "viewer@acme.test", entities.Viewer, string(hash), true),
			mustCreateUser("u-gone", "acme", "gone@acme.test", entities.Analyst, string(hash), false),
			mustCreateUser("u-globex", "globex", "admin@globex.test", entities.Admin, string(hash), true),
			mustCreateUser("u-dormant", "dormant", "admin@dormant.test", entities.Admin, string(hash), true),
		},
		Products: []*entities.Product{
			mustCreateProduct("P-COLA", "acme", "COLA-330", "Cola 330ml", "Beverages", "Fizz", 10, 6, entities.ProductActive),
			mustCreateProduct("P-CHIPS", "acme", "CHIPS-125", "Salted Chips", "Snacks", "Crunch", 20, 12, entities.ProductActive),
			mustCreateProduct("P-OLD", "acme", "OLD-1L", "Old Cordial", "Beverages", "Fizz", 5, 3, entities.ProductDiscontinued),
			mustCreateProduct("G-TEA", "globex", "TEA-100", "Green Tea", "Beverages", "Leaf", 50, 20, entities.ProductActive),
		},
		Customers: []*entities.Customer{
			mustCreateCustomer("C-MART", "acme", "MART-01", "MegaMart", entities.ModernTrade, "North", entities.TierA),
			mustCreateCustomer("C-SPAZA", "acme", "SPAZA-07", "Corner Spaza", entities.GeneralTrade, "South", entities.TierC),
			mustCreateCustomer("C-IDLE", "acme", "IDLE-99", "Idle Wholesale", entities.Wholesale, "North", entities.TierB),
			mustCreateCustomer("G-CUST", "globex", "GLX-01", "Globex Outlet", entities.ModernTrade, "West", entities.TierA),
		},
		Promotions: []*entities.Promotion{
			mustCreatePromotion("PR-COLA", "acme", "Cola March", entities.PromotionActive,
				"2025-03-01", "2025-03-31", 10, 1000, 10, []entities.ProductID{"P-COLA"}, nil),
			mustCreatePromotion("PR-BIG", "acme", "MegaMart Cola Blitz", entities.PromotionActive,
				"2025-03-01", "2025-03-31", 20, 100, 95, []entities.ProductID{"P-COLA"}, []entities.CustomerID{"C-MART"}),
			mustCreatePromotion("PR-DRAFT", "acme", "Chips Winter", entities.PromotionDraft,
				"2025-06-01", "2025-08-31", 5, 500, 0, []entities.ProductID{"P-CHIPS"}, nil),
		},
		Orders: []*entities.Order{
			mustCreateOrder("O1", "acme", "C-MART", "2025-03-03T09:00:00Z", entities.OrderDelivered, "PR-COLA",
				line("P-COLA", 10, 10, 10), line("P-CHIPS", 5, 20, 0)),
			mustCreateOrder("O2", "acme", "C-SPAZA", "2025-03-04T14:00:00Z", entities.OrderConfirmed, "",
				line("P-CHIPS", 2, 20, 0)),
			mustCreateOrder("O3", "acme", "C-MART", "2025-03-05T09:30:00Z", entities.OrderCancelled, "",
				line("P-COLA", 100, 10, 0)),
			mustCreateOrder("O4", "acme", "C-SPAZA", "2025-02-10T09:15:00Z", entities.OrderDelivered, "",
				line("P-COLA", 20, 10, 0)),
			mustCreateOrder("O9", "globex", "G-CUST", "2025-03-03T10:00:00Z", entities.OrderPending, "",
				line("G-TEA", 1, 50, 0)),
		},
	}
}

// BuildTestRepositories loads BuildTestDataset into fresh in-memory stores
func BuildTestRepositories() *memory.Repositories {
	repos := memory.NewRepositories()
	if err := repos.Load(BuildTestDataset()); err != nil {
		panic(err)
	}
	return repos
}

// mustCreateCompany is a helper for tests - panics on validation error
func mustCreateCompany(id, name, slug string, active bool, created time.Time) *entities.Company {
	c, err := entities.NewCompany(entities.CompanyID(id), name, slug, "FMCG", "ZAR", "enterprise", active, created)
	if err != nil {
		panic(err)
	}
	return c
}

// mustCreateUser is a helper for tests - panics on validation error
func mustCreateUser(id, companyID, email string, role entities.Role, hash string, active bool) *entities.User {
	u, err := entities.NewUser(entities.UserID(id), entities.CompanyID(companyID), email, email, role, hash, active, Now)
	if err != nil {
		panic(err)
	}
	return u
}

// mustCreateProduct is a helper for tests - panics on validation error
func mustCreateProduct(id, companyID, sku, name, category, brand string, price, cost int64, status entities.ProductStatus) *entities.Product {
	p, err := entities.NewProduct(
		entities.ProductID(id),
		entities.CompanyID(companyID),
		sku, name, category, brand,
		decimal.NewFromInt(price),
		decimal.NewFromInt(cost),
		status,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		panic(err)
	}
	return p
}

// mustCreateCustomer is a helper for tests - panics on validation error
func mustCreateCustomer(id, companyID, code, name string, channel entities.Channel, region string, tier entities.Tier) *entities.Customer {
	c, err := entities.NewCustomer(entities.CustomerID(id), entities.CompanyID(companyID), code, name, channel, region, tier,
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		panic(err)
	}
	return c
}

// mustCreatePromotion is a helper for tests - panics on validation error
func mustCreatePromotion(
	id, companyID, name string,
	status entities.PromotionStatus,
	start, end string,
	pct, budget, spend int64,
	products []entities.ProductID,
	customers []entities.CustomerID,
) *entities.Promotion {
	p, err := entities.NewPromotion(
		entities.PromotionID(id),
		entities.CompanyID(companyID),
		name,
		entities.Discount,
		status,
		mustParse("2006-01-02", start),
		mustParse("2006-01-02", end),
		decimal.NewFromInt(pct),
		decimal.NewFromInt(budget),
		decimal.NewFromInt(spend),
		products,
		customers,
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		panic(err)
	}
	return p
}

// mustCreateOrder is a helper for tests - panics on validation error
func mustCreateOrder(
	id, companyID, customerID, date string,
	status entities.OrderStatus,
	promotionID string,
	lines ...entities.OrderLine,
) *entities.Order {
	o, err := entities.NewOrder(
		entities.OrderID(id),
		entities.CompanyID(companyID),
		entities.CustomerID(customerID),
		mustParse(time.RFC3339, date),
		status,
		lines,
		entities.PromotionID(promotionID),
	)
	if err != nil {
		panic(err)
	}
	return o
}

func line(productID string, qty, price, discount int64) entities.OrderLine {
	return entities.OrderLine{
		ProductID: entities.ProductID(productID),
		Quantity:  entities.Quantity(qty),
		UnitPrice: decimal.NewFromInt(price),
		Discount:  decimal.NewFromInt(discount),
	}
}

func mustParse(layout, value string) time.Time {
	t, err := time.Parse(layout, value)
	if err != nil {
		panic(err)
	}
	return t
}
