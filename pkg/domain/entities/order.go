package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment state of an order
type OrderStatus int

const (
	OrderPending OrderStatus = iota
	OrderConfirmed
	OrderShipped
	OrderDelivered
	OrderCancelled
)

// String method for OrderStatus enum
func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "Pending"
	case OrderConfirmed:
		return "Confirmed"
	case OrderShipped:
		return "Shipped"
	case OrderDelivered:
		return "Delivered"
	case OrderCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// ParseOrderStatus parses the textual form of an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	return parseEnum("order status", s, []OrderStatus{
		OrderPending, OrderConfirmed, OrderShipped, OrderDelivered, OrderCancelled,
	})
}

func (s OrderStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *OrderStatus) UnmarshalText(b []byte) error {
	v, err := ParseOrderStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderShipped, OrderCancelled},
	OrderShipped:   {OrderDelivered},
}

// OrderLine is a single product line. Discount is the absolute amount taken
// off the line, not a percentage.
type OrderLine struct {
	ProductID ProductID       `json:"product_id"`
	Quantity  Quantity        `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

// Gross is the undiscounted line value
func (l OrderLine) Gross() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Net is the line value after discount
func (l OrderLine) Net() decimal.Decimal {
	return l.Gross().Sub(l.Discount)
}

// Order is a customer's sales order
type Order struct {
	ID          OrderID     `json:"id"`
	CompanyID   CompanyID   `json:"company_id"`
	CustomerID  CustomerID  `json:"customer_id"`
	OrderDate   time.Time   `json:"order_date"`
	Status      OrderStatus `json:"status"`
	Lines       []OrderLine `json:"lines"`
	PromotionID PromotionID `json:"promotion_id,omitempty"`
}

// NewOrder creates a validated Order
func NewOrder(
	id OrderID,
	companyID CompanyID,
	customerID CustomerID,
	orderDate time.Time,
	status OrderStatus,
	lines []OrderLine,
	promotionID PromotionID,
) (*Order, error) {
	o := &Order{
		ID:          id,
		CompanyID:   companyID,
		CustomerID:  customerID,
		OrderDate:   orderDate.UTC(),
		Status:      status,
		Lines:       lines,
		PromotionID: promotionID,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the order invariants
func (o *Order) Validate() error {
	if string(o.ID) == "" {
		return fmt.Errorf("order id cannot be empty")
	}
	if string(o.CompanyID) == "" {
		return fmt.Errorf("company id cannot be empty")
	}
	if string(o.CustomerID) == "" {
		return fmt.Errorf("customer id cannot be empty")
	}
	if o.OrderDate.IsZero() {
		return fmt.Errorf("order date cannot be empty")
	}
	if len(o.Lines) == 0 {
		return fmt.Errorf("order must have at least one line")
	}
	for i, l := range o.Lines {
		if string(l.ProductID) == "" {
			return fmt.Errorf("line %d: product id cannot be empty", i+1)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("line %d: quantity must be positive, got %d", i+1, l.Quantity)
		}
		if l.UnitPrice.IsNegative() {
			return fmt.Errorf("line %d: unit price cannot be negative, got %s", i+1, l.UnitPrice)
		}
		if l.Discount.IsNegative() || l.Discount.GreaterThan(l.Gross()) {
			return fmt.Errorf("line %d: discount %s outside 0..%s", i+1, l.Discount, l.Gross())
		}
	}
	return nil
}

// Subtotal is the sum of undiscounted line values
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Gross())
	}
	return total
}

// DiscountTotal is the sum of line discounts
func (o *Order) DiscountTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Discount)
	}
	return total
}

// Total is the amount invoiced
func (o *Order) Total() decimal.Decimal {
	return o.Subtotal().Sub(o.DiscountTotal())
}

// Units is the total quantity across lines
func (o *Order) Units() Quantity {
	var n Quantity
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}

// CanTransition reports whether the order may move to status to
func (o *Order) CanTransition(to OrderStatus) bool {
	for _, s := range orderTransitions[o.Status] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition moves the order to status to
func (o *Order) Transition(to OrderStatus) error {
	if !o.CanTransition(to) {
		return fmt.Errorf("order cannot move from %s to %s", o.Status, to)
	}
	o.Status = to
	return nil
}

// Clone returns a deep copy
func (o *Order) Clone() *Order {
	c := *o
	c.Lines = append([]OrderLine(nil), o.Lines...)
	return &c
}
