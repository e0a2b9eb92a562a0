package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/domain/services"
)

// Config holds configuration for output generation
type Config struct {
	Format  string
	Verbose bool
}

// CompanySummary counts the records a scenario holds for one company
type CompanySummary struct {
	ID         entities.CompanyID `json:"id"`
	Name       string             `json:"name"`
	Active     bool               `json:"active"`
	Users      int                `json:"users"`
	Products   int                `json:"products"`
	Customers  int                `json:"customers"`
	Promotions int                `json:"promotions"`
	Orders     int                `json:"orders"`
	Revenue    decimal.Decimal    `json:"revenue"`
}

// Summary is the result of validating a scenario
type Summary struct {
	Scenario  string           `json:"scenario"`
	Valid     bool             `json:"valid"`
	Companies []CompanySummary `json:"companies"`
	Errors    []string         `json:"errors"`
	Warnings  []string         `json:"warnings"`
}

// Summarize counts d per company. Revenue excludes cancelled orders.
func Summarize(scenario string, d *services.Dataset, result *services.ValidationResult) *Summary {
	byID := make(map[entities.CompanyID]*CompanySummary, len(d.Companies))
	for _, c := range d.Companies {
		byID[c.ID] = &CompanySummary{ID: c.ID, Name: c.Name, Active: c.Active}
	}
	get := func(id entities.CompanyID) *CompanySummary {
		if s, ok := byID[id]; ok {
			return s
		}
		// records of unknown companies are already reported by validation
		return &CompanySummary{}
	}

	for _, u := range d.Users {
		get(u.CompanyID).Users++
	}
	for _, p := range d.Products {
		get(p.CompanyID).Products++
	}
	for _, c := range d.Customers {
		get(c.CompanyID).Customers++
	}
	for _, p := range d.Promotions {
		get(p.CompanyID).Promotions++
	}
	for _, o := range d.Orders {
		s := get(o.CompanyID)
		s.Orders++
		if o.Status != entities.OrderCancelled {
			s.Revenue = s.Revenue.Add(o.Total())
		}
	}

	summary := &Summary{
		Scenario:  scenario,
		Valid:     result.Valid(),
		Companies: make([]CompanySummary, 0, len(byID)),
		Errors:    result.Errors,
		Warnings:  result.Warnings,
	}
	for _, s := range byID {
		summary.Companies = append(summary.Companies, *s)
	}
	sort.Slice(summary.Companies, func(i, j int) bool {
		return summary.Companies[i].ID < summary.Companies[j].ID
	})
	return summary
}

// Generate writes s to w in the configured format
func Generate(w io.Writer, s *Summary, config Config) error {
	switch config.Format {
	case "text", "":
		return generateTextOutput(w, s, config)
	case "json":
		return generateJSONOutput(w, s)
	case "csv":
		return generateCSVOutput(w, s)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(w io.Writer, s *Summary, config Config) error {
	status := "valid"
	if !s.Valid {
		status = "INVALID"
	}
	fmt.Fprintf(w, "Scenario %s: %s\n", s.Scenario, status)
	fmt.Fprintf(w, "==========\n\n")

	fmt.Fprintf(w, "%-12s %-24s %-8s %6s %9s %10s %11s %8s %14s\n",
		"Company", "Name", "Active", "Users", "Products", "Customers", "Promotions", "Orders", "Revenue")
	for _, c := range s.Companies {
		fmt.Fprintf(w, "%-12s %-24s %-8t %6s %9s %10s %11s %8s %14s\n",
			c.ID, c.Name, c.Active,
			humanize.Comma(int64(c.Users)),
			humanize.Comma(int64(c.Products)),
			humanize.Comma(int64(c.Customers)),
			humanize.Comma(int64(c.Promotions)),
			humanize.Comma(int64(c.Orders)),
			c.Revenue.StringFixed(2))
	}
	fmt.Fprintln(w)

	if len(s.Errors) > 0 {
		fmt.Fprintf(w, "Errors (%d):\n", len(s.Errors))
		for _, e := range s.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		fmt.Fprintln(w)
	}
	if len(s.Warnings) > 0 && config.Verbose {
		fmt.Fprintf(w, "Warnings (%d):\n", len(s.Warnings))
		for _, warning := range s.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	} else if len(s.Warnings) > 0 {
		fmt.Fprintf(w, "%d warnings, use --verbose to list them\n", len(s.Warnings))
	}
	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(w io.Writer, s *Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// generateCSVOutput writes one row per company
func generateCSVOutput(w io.Writer, s *Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"company_id", "name", "active", "users", "products", "customers", "promotions", "orders", "revenue"}); err != nil {
		return err
	}
	for _, c := range s.Companies {
		record := []string{
			string(c.ID),
			c.Name,
			strconv.FormatBool(c.Active),
			strconv.Itoa(c.Users),
			strconv.Itoa(c.Products),
			strconv.Itoa(c.Customers),
			strconv.Itoa(c.Promotions),
			strconv.Itoa(c.Orders),
			c.Revenue.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
