package entities

import (
	"fmt"
	"strings"
	"time"
)

// Company is a tenant of the platform. Every other record belongs to exactly one company.
type Company struct {
	ID        CompanyID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Industry  string    `json:"industry"`
	Currency  string    `json:"currency"`
	Plan      string    `json:"plan"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCompany creates a validated Company
func NewCompany(id CompanyID, name, slug, industry, currency, plan string, active bool, createdAt time.Time) (*Company, error) {
	c := &Company{
		ID:        id,
		Name:      strings.TrimSpace(name),
		Slug:      strings.ToLower(strings.TrimSpace(slug)),
		Industry:  industry,
		Currency:  strings.ToUpper(currency),
		Plan:      plan,
		Active:    active,
		CreatedAt: createdAt,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the company invariants
func (c *Company) Validate() error {
	if string(c.ID) == "" {
		return fmt.Errorf("company id cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("company name cannot be empty")
	}
	if !slugPattern.MatchString(c.Slug) {
		return fmt.Errorf("invalid company slug %q", c.Slug)
	}
	if len(c.Currency) != 3 {
		return fmt.Errorf("currency must be a 3-letter code, got %q", c.Currency)
	}
	return nil
}
