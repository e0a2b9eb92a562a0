package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/services"
	"golang.org/x/crypto/bcrypt"
)

// Scenario file names inside a scenario directory
const (
	CompaniesFile  = "companies.csv"
	UsersFile      = "users.csv"
	ProductsFile   = "products.csv"
	CustomersFile  = "customers.csv"
	PromotionsFile = "promotions.csv"
	OrdersFile     = "orders.csv"
)

const listSeparator = ";"

var (
	companiesHeader  = []string{"id", "name", "slug", "industry", "currency", "plan", "active", "created_at"}
	usersHeader      = []string{"id", "company_id", "email", "name", "role", "password", "active"}
	productsHeader   = []string{"id", "company_id", "sku", "name", "category", "brand", "unit_price", "unit_cost", "status"}
	customersHeader  = []string{"id", "company_id", "code", "name", "channel", "region", "tier"}
	promotionsHeader = []string{"id", "company_id", "name", "type", "status", "start_date", "end_date", "discount_pct", "budget", "spend", "product_ids", "customer_ids"}
	ordersHeader     = []string{"order_id", "company_id", "customer_id", "order_date", "status", "promotion_id", "product_id", "quantity", "unit_price", "discount"}
)

// Loader handles loading seed scenarios from CSV files
type Loader struct {
	// BcryptCost is the cost used to hash the plain-text passwords of seeded users
	BcryptCost int
	// SeedTime stamps records whose file has no created_at column
	SeedTime time.Time
}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{
		BcryptCost: bcrypt.DefaultCost,
		SeedTime:   time.Now().UTC(),
	}
}

// LoadScenario loads every scenario file found in dir. Companies are
// required, the other files are optional.
func (l *Loader) LoadScenario(dir string) (*services.Dataset, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scenario %s is not a directory", dir)
	}

	dataset := &services.Dataset{}
	if dataset.Companies, err = l.LoadCompanies(filepath.Join(dir, CompaniesFile)); err != nil {
		return nil, err
	}

	optional := func(name string, load func(string) error) error {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil
		}
		return load(path)
	}

	steps := []struct {
		name string
		load func(string) error
	}{
		{UsersFile, func(p string) (err error) { dataset.Users, err = l.LoadUsers(p); return }},
		{ProductsFile, func(p string) (err error) { dataset.Products, err = l.LoadProducts(p); return }},
		{CustomersFile, func(p string) (err error) { dataset.Customers, err = l.LoadCustomers(p); return }},
		{PromotionsFile, func(p string) (err error) { dataset.Promotions, err = l.LoadPromotions(p); return }},
		{OrdersFile, func(p string) (err error) { dataset.Orders, err = l.LoadOrders(p); return }},
	}
	for _, step := range steps {
		if err := optional(step.name, step.load); err != nil {
			return nil, err
		}
	}

	return dataset, nil
}

// LoadCompanies loads companies from a CSV file
func (l *Loader) LoadCompanies(filename string) ([]*entities.Company, error) {
	records, err := readRecords(filename, "companies", companiesHeader)
	if err != nil {
		return nil, err
	}

	var companies []*entities.Company
	for i, record := range records {
		company, err := parseCompany(record)
		if err != nil {
			return nil, fmt.Errorf("companies CSV row %d: %w", i+2, err)
		}
		companies = append(companies, company)
	}
	return companies, nil
}

// LoadUsers loads users from a CSV file, hashing the plain-text password column
func (l *Loader) LoadUsers(filename string) ([]*entities.User, error) {
	records, err := readRecords(filename, "users", usersHeader)
	if err != nil {
		return nil, err
	}

	var users []*entities.User
	for i, record := range records {
		user, err := l.parseUser(record)
		if err != nil {
			return nil, fmt.Errorf("users CSV row %d: %w", i+2, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// LoadProducts loads products from a CSV file
func (l *Loader) LoadProducts(filename string) ([]*entities.Product, error) {
	records, err := readRecords(filename, "products", productsHeader)
	if err != nil {
		return nil, err
	}

	var products []*entities.Product
	for i, record := range records {
		product, err := l.parseProduct(record)
		if err != nil {
			return nil, fmt.Errorf("products CSV row %d: %w", i+2, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// LoadCustomers loads customers from a CSV file
func (l *Loader) LoadCustomers(filename string) ([]*entities.Customer, error) {
	records, err := readRecords(filename, "customers", customersHeader)
	if err != nil {
		return nil, err
	}

	var customers []*entities.Customer
	for i, record := range records {
		customer, err := l.parseCustomer(record)
		if err != nil {
			return nil, fmt.Errorf("customers CSV row %d: %w", i+2, err)
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

// LoadPromotions loads promotions from a CSV file. Product and customer
// lists are separated by ';' and may be empty.
func (l *Loader) LoadPromotions(filename string) ([]*entities.Promotion, error) {
	records, err := readRecords(filename, "promotions", promotionsHeader)
	if err != nil {
		return nil, err
	}

	var promotions []*entities.Promotion
	for i, record := range records {
		promotion, err := l.parsePromotion(record)
		if err != nil {
			return nil, fmt.Errorf("promotions CSV row %d: %w", i+2, err)
		}
		promotions = append(promotions, promotion)
	}
	return promotions, nil
}

// LoadOrders loads orders from a CSV file. Each row is one order line;
// consecutive or scattered rows sharing an order_id form a single order.
func (l *Loader) LoadOrders(filename string) ([]*entities.Order, error) {
	records, err := readRecords(filename, "orders", ordersHeader)
	if err != nil {
		return nil, err
	}

	var orders []*entities.Order
	byID := make(map[entities.OrderID]*entities.Order)
	for i, record := range records {
		row := i + 2
		header, line, err := parseOrderRow(record)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", row, err)
		}

		existing, ok := byID[header.ID]
		if !ok {
			header.Lines = []entities.OrderLine{line}
			byID[header.ID] = header
			orders = append(orders, header)
			continue
		}
		if existing.CompanyID != header.CompanyID || existing.CustomerID != header.CustomerID ||
			!existing.OrderDate.Equal(header.OrderDate) || existing.Status != header.Status ||
			existing.PromotionID != header.PromotionID {
			return nil, fmt.Errorf("orders CSV row %d: order %s header fields differ from earlier rows", row, header.ID)
		}
		existing.Lines = append(existing.Lines, line)
	}

	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("orders CSV order %s: %w", o.ID, err)
		}
	}
	return orders, nil
}

// Helper functions for parsing CSV records

// readRecords opens filename, checks the header and returns the data rows
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseCompany(record []string) (*entities.Company, error) {
	active, err := parseBool(record[6])
	if err != nil {
		return nil, fmt.Errorf("invalid active: %s", record[6])
	}
	createdAt, err := time.Parse(time.RFC3339, strings.TrimSpace(record[7]))
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %s", record[7])
	}
	return entities.NewCompany(entities.CompanyID(record[0]), record[1], record[2], record[3], record[4], record[5], active, createdAt.UTC())
}

func (l *Loader) parseUser(record []string) (*entities.User, error) {
	role, err := entities.ParseRole(record[4])
	if err != nil {
		return nil, err
	}
	if record[5] == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(record[5]), l.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	active, err := parseBool(record[6])
	if err != nil {
		return nil, fmt.Errorf("invalid active: %s", record[6])
	}
	return entities.NewUser(entities.UserID(record[0]), entities.CompanyID(record[1]), record[2], record[3], role, string(hash), active, l.SeedTime)
}

func (l *Loader) parseProduct(record []string) (*entities.Product, error) {
	unitPrice, err := decimal.NewFromString(strings.TrimSpace(record[6]))
	if err != nil {
		return nil, fmt.Errorf("invalid unit_price: %s", record[6])
	}
	unitCost, err := decimal.NewFromString(strings.TrimSpace(record[7]))
	if err != nil {
		return nil, fmt.Errorf("invalid unit_cost: %s", record[7])
	}
	status, err := entities.ParseProductStatus(record[8])
	if err != nil {
		return nil, err
	}
	return entities.NewProduct(entities.ProductID(record[0]), entities.CompanyID(record[1]), record[2], record[3], record[4], record[5], unitPrice, unitCost, status, l.SeedTime)
}

func (l *Loader) parseCustomer(record []string) (*entities.Customer, error) {
	channel, err := entities.ParseChannel(record[4])
	if err != nil {
		return nil, err
	}
	tier, err := entities.ParseTier(record[6])
	if err != nil {
		return nil, err
	}
	return entities.NewCustomer(entities.CustomerID(record[0]), entities.CompanyID(record[1]), record[2], record[3], channel, record[5], tier, l.SeedTime)
}

func (l *Loader) parsePromotion(record []string) (*entities.Promotion, error) {
	promoType, err := entities.ParsePromotionType(record[3])
	if err != nil {
		return nil, err
	}
	status, err := entities.ParsePromotionStatus(record[4])
	if err != nil {
		return nil, err
	}
	startDate, err := time.Parse("2006-01-02", strings.TrimSpace(record[5]))
	if err != nil {
		return nil, fmt.Errorf("invalid start_date: %s", record[5])
	}
	endDate, err := time.Parse("2006-01-02", strings.TrimSpace(record[6]))
	if err != nil {
		return nil, fmt.Errorf("invalid end_date: %s", record[6])
	}

	amounts := make([]decimal.Decimal, 3)
	for i, col := range []int{7, 8, 9} {
		raw := strings.TrimSpace(record[col])
		if raw == "" {
			amounts[i] = decimal.Zero
			continue
		}
		if amounts[i], err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("invalid %s: %s", promotionsHeader[col], record[col])
		}
	}

	var productIDs []entities.ProductID
	for _, id := range splitList(record[10]) {
		productIDs = append(productIDs, entities.ProductID(id))
	}
	var customerIDs []entities.CustomerID
	for _, id := range splitList(record[11]) {
		customerIDs = append(customerIDs, entities.CustomerID(id))
	}

	return entities.NewPromotion(
		entities.PromotionID(record[0]), entities.CompanyID(record[1]), record[2],
		promoType, status, startDate, endDate,
		amounts[0], amounts[1], amounts[2],
		productIDs, customerIDs, l.SeedTime,
	)
}

func parseOrderRow(record []string) (*entities.Order, entities.OrderLine, error) {
	orderDate, err := time.Parse(time.RFC3339, strings.TrimSpace(record[3]))
	if err != nil {
		return nil, entities.OrderLine{}, fmt.Errorf("invalid order_date: %s", record[3])
	}
	status, err := entities.ParseOrderStatus(record[4])
	if err != nil {
		return nil, entities.OrderLine{}, err
	}
	quantity, err := strconv.ParseInt(strings.TrimSpace(record[7]), 10, 64)
	if err != nil {
		return nil, entities.OrderLine{}, fmt.Errorf("invalid quantity: %s", record[7])
	}
	unitPrice, err := decimal.NewFromString(strings.TrimSpace(record[8]))
	if err != nil {
		return nil, entities.OrderLine{}, fmt.Errorf("invalid unit_price: %s", record[8])
	}
	discount := decimal.Zero
	if raw := strings.TrimSpace(record[9]); raw != "" {
		if discount, err = decimal.NewFromString(raw); err != nil {
			return nil, entities.OrderLine{}, fmt.Errorf("invalid discount: %s", record[9])
		}
	}

	order := &entities.Order{
		ID:          entities.OrderID(record[0]),
		CompanyID:   entities.CompanyID(record[1]),
		CustomerID:  entities.CustomerID(record[2]),
		OrderDate:   orderDate.UTC(),
		Status:      status,
		PromotionID: entities.PromotionID(strings.TrimSpace(record[5])),
	}
	line := entities.OrderLine{
		ProductID: entities.ProductID(record[6]),
		Quantity:  entities.Quantity(quantity),
		UnitPrice: unitPrice,
		Discount:  discount,
	}
	return order, line, nil
}

func parseBool(s string) (bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return true, nil
	}
	return strconv.ParseBool(s)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
