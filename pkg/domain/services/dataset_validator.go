package services

import (
	"fmt"

	"github.com/vsinha/vantax/pkg/domain/entities"
)

// Dataset is a full set of records for one or more companies, as loaded
// from a seed scenario
type Dataset struct {
	Companies  []*entities.Company
	Users      []*entities.User
	Products   []*entities.Product
	Customers  []*entities.Customer
	Promotions []*entities.Promotion
	Orders     []*entities.Order
}

// ValidationResult contains the results of dataset validation
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no errors were found
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

type tenantKey[ID comparable] struct {
	company entities.CompanyID
	id      ID
}

// ValidateDataset checks referential integrity: every record must point at
// an existing company, and cross references (order -> customer/product,
// promotion -> product/customer) must stay inside the same company.
func ValidateDataset(d *Dataset) *ValidationResult {
	result := &ValidationResult{
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
	}

	companies := make(map[entities.CompanyID]bool, len(d.Companies))
	for _, c := range d.Companies {
		if companies[c.ID] {
			result.Errors = append(result.Errors, fmt.Sprintf("duplicate company id %s", c.ID))
		}
		companies[c.ID] = true
	}

	requireCompany := func(kind, id string, companyID entities.CompanyID) {
		if !companies[companyID] {
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s references unknown company %s", kind, id, companyID))
		}
	}

	adminsPerCompany := make(map[entities.CompanyID]int)
	for _, u := range d.Users {
		requireCompany("user", string(u.ID), u.CompanyID)
		if u.Role == entities.Admin {
			adminsPerCompany[u.CompanyID]++
		}
	}

	products := make(map[tenantKey[entities.ProductID]]*entities.Product, len(d.Products))
	for _, p := range d.Products {
		requireCompany("product", string(p.ID), p.CompanyID)
		products[tenantKey[entities.ProductID]{p.CompanyID, p.ID}] = p
	}

	customers := make(map[tenantKey[entities.CustomerID]]bool, len(d.Customers))
	for _, c := range d.Customers {
		requireCompany("customer", string(c.ID), c.CompanyID)
		customers[tenantKey[entities.CustomerID]{c.CompanyID, c.ID}] = true
	}

	promotions := make(map[tenantKey[entities.PromotionID]]bool, len(d.Promotions))
	for _, p := range d.Promotions {
		requireCompany("promotion", string(p.ID), p.CompanyID)
		promotions[tenantKey[entities.PromotionID]{p.CompanyID, p.ID}] = true
		for _, pid := range p.ProductIDs {
			if _, ok := products[tenantKey[entities.ProductID]{p.CompanyID, pid}]; !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("promotion %s references unknown product %s", p.ID, pid))
			}
		}
		for _, cid := range p.CustomerIDs {
			if !customers[tenantKey[entities.CustomerID]{p.CompanyID, cid}] {
				result.Errors = append(result.Errors, fmt.Sprintf("promotion %s references unknown customer %s", p.ID, cid))
			}
		}
	}

	for _, o := range d.Orders {
		requireCompany("order", string(o.ID), o.CompanyID)
		if !customers[tenantKey[entities.CustomerID]{o.CompanyID, o.CustomerID}] {
			result.Errors = append(result.Errors, fmt.Sprintf("order %s references unknown customer %s", o.ID, o.CustomerID))
		}
		if o.PromotionID != "" && !promotions[tenantKey[entities.PromotionID]{o.CompanyID, o.PromotionID}] {
			result.Errors = append(result.Errors, fmt.Sprintf("order %s references unknown promotion %s", o.ID, o.PromotionID))
		}
		for _, l := range o.Lines {
			p, ok := products[tenantKey[entities.ProductID]{o.CompanyID, l.ProductID}]
			if !ok {
				result.Errors = append(result.Errors, fmt.Sprintf("order %s references unknown product %s", o.ID, l.ProductID))
				continue
			}
			if p.Status == entities.ProductDiscontinued && o.OrderDate.After(p.CreatedAt) && o.Status == entities.OrderPending {
				result.Warnings = append(result.Warnings, fmt.Sprintf("pending order %s contains discontinued product %s", o.ID, p.SKU))
			}
		}
	}

	for _, c := range d.Companies {
		if adminsPerCompany[c.ID] == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("company %s has no admin user", c.Slug))
		}
	}

	return result
}
