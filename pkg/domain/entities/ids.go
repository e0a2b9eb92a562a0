package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CompanyID identifies a tenant
type CompanyID string

// UserID identifies a user within a company
type UserID string

// ProductID identifies a catalog product
type ProductID string

// CustomerID identifies a trade customer (retailer, wholesaler, ...)
type CustomerID string

// PromotionID identifies a trade promotion
type PromotionID string

// OrderID identifies a sales order
type OrderID string

// Quantity represents an integer quantity of selling units
type Quantity int64

// NewUserID returns a random user identifier
func NewUserID() UserID { return UserID(uuid.NewString()) }

// NewProductID returns a random product identifier
func NewProductID() ProductID { return ProductID(uuid.NewString()) }

// NewCustomerID returns a random customer identifier
func NewCustomerID() CustomerID { return CustomerID(uuid.NewString()) }

// NewPromotionID returns a random promotion identifier
func NewPromotionID() PromotionID { return PromotionID(uuid.NewString()) }

// NewOrderID returns a random order identifier
func NewOrderID() OrderID { return OrderID(uuid.NewString()) }

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Day truncates t to midnight UTC. Promotion windows and report buckets are
// day-granular.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseEnum matches s case-insensitively against the String() form of the
// candidates, ignoring spaces, dashes and underscores.
func parseEnum[T fmt.Stringer](kind, s string, candidates []T) (T, error) {
	norm := normalizeEnum(s)
	for _, c := range candidates {
		if normalizeEnum(c.String()) == norm {
			return c, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s: %q", kind, s)
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s))
}
