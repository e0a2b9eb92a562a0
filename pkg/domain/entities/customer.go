package entities

import (
	"fmt"
	"strings"
	"time"
)

// Channel is the route-to-market a customer belongs to
type Channel int

const (
	ModernTrade Channel = iota
	GeneralTrade
	Wholesale
	ECommerce
)

// String method for Channel enum
func (c Channel) String() string {
	switch c {
	case ModernTrade:
		return "ModernTrade"
	case GeneralTrade:
		return "GeneralTrade"
	case Wholesale:
		return "Wholesale"
	case ECommerce:
		return "ECommerce"
	default:
		return "Unknown"
	}
}

// Channels lists every channel in declaration order
var Channels = []Channel{ModernTrade, GeneralTrade, Wholesale, ECommerce}

// ParseChannel parses the textual form of a Channel
func ParseChannel(s string) (Channel, error) {
	return parseEnum("channel", s, Channels)
}

func (c Channel) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Channel) UnmarshalText(b []byte) error {
	v, err := ParseChannel(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Tier ranks customers by strategic importance
type Tier int

const (
	TierA Tier = iota
	TierB
	TierC
)

// String method for Tier enum
func (t Tier) String() string {
	switch t {
	case TierA:
		return "A"
	case TierB:
		return "B"
	case TierC:
		return "C"
	default:
		return "Unknown"
	}
}

// ParseTier parses the textual form of a Tier
func ParseTier(s string) (Tier, error) {
	return parseEnum("tier", s, []Tier{TierA, TierB, TierC})
}

func (t Tier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Customer is a trade account that places orders
type Customer struct {
	ID        CustomerID `json:"id"`
	CompanyID CompanyID  `json:"company_id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	Channel   Channel    `json:"channel"`
	Region    string     `json:"region"`
	Tier      Tier       `json:"tier"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewCustomer creates a validated Customer
func NewCustomer(id CustomerID, companyID CompanyID, code, name string, channel Channel, region string, tier Tier, createdAt time.Time) (*Customer, error) {
	c := &Customer{
		ID:        id,
		CompanyID: companyID,
		Code:      strings.ToUpper(strings.TrimSpace(code)),
		Name:      strings.TrimSpace(name),
		Channel:   channel,
		Region:    strings.TrimSpace(region),
		Tier:      tier,
		CreatedAt: createdAt,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the customer invariants
func (c *Customer) Validate() error {
	if string(c.ID) == "" {
		return fmt.Errorf("customer id cannot be empty")
	}
	if string(c.CompanyID) == "" {
		return fmt.Errorf("company id cannot be empty")
	}
	if c.Code == "" {
		return fmt.Errorf("customer code cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("customer name cannot be empty")
	}
	if c.Region == "" {
		return fmt.Errorf("region cannot be empty")
	}
	if c.Channel < ModernTrade || c.Channel > ECommerce {
		return fmt.Errorf("invalid channel %d", c.Channel)
	}
	if c.Tier < TierA || c.Tier > TierC {
		return fmt.Errorf("invalid tier %d", c.Tier)
	}
	return nil
}
