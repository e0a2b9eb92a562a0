package insights

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Thresholds tune the data rules run by Generate
type Thresholds struct {
	BudgetBurnPct  float64 `yaml:"budget_burn_pct"`
	RevenueDropPct float64 `yaml:"revenue_drop_pct"`
	DormantDays    int     `yaml:"dormant_days"`
}

// Rule answers questions that mention its keywords
type Rule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Answer   string   `yaml:"answer"`

	keywords map[string]struct{}
	tmpl     *template.Template
}

// Catalog is the ordered set of question rules plus the data rule thresholds
type Catalog struct {
	Thresholds Thresholds `yaml:"thresholds"`
	Fallback   Rule       `yaml:"fallback"`
	Rules      []Rule     `yaml:"rules"`
}

// DefaultCatalog returns the built-in rule catalog
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultRules)
}

// LoadCatalog reads a rule catalog from path. An empty path selects the
// built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read insight rules: %w", err)
	}
	c, err := ParseCatalog(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and compiles a YAML rule catalog. Unknown fields are
// rejected and missing thresholds take their default values.
func ParseCatalog(b []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("invalid insight rules: %w", err)
	}

	if c.Thresholds.BudgetBurnPct <= 0 {
		c.Thresholds.BudgetBurnPct = 90
	}
	if c.Thresholds.RevenueDropPct <= 0 {
		c.Thresholds.RevenueDropPct = 20
	}
	if c.Thresholds.DormantDays <= 0 {
		c.Thresholds.DormantDays = 60
	}

	if c.Fallback.Name == "" || c.Fallback.Answer == "" {
		return nil, fmt.Errorf("insight rules need a fallback with a name and an answer")
	}
	if err := c.Fallback.compile(); err != nil {
		return nil, err
	}
	seen := map[string]bool{c.Fallback.Name: true}
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: name cannot be empty", i+1)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("rule %d: duplicate name %q", i+1, r.Name)
		}
		seen[r.Name] = true
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %q: needs at least one keyword", r.Name)
		}
		if err := r.compile(); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func (r *Rule) compile() error {
	r.keywords = make(map[string]struct{}, len(r.Keywords))
	for _, k := range r.Keywords {
		r.keywords[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	t, err := template.New(r.Name).Funcs(templateFuncs("")).Parse(r.Answer)
	if err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	r.tmpl = t
	return nil
}

// Match picks the rule with the most distinct keyword hits in question.
// Earlier rules win ties and the fallback answers when nothing matches.
func (c *Catalog) Match(question string) *Rule {
	tokens := tokenize(question)
	best, bestScore := &c.Fallback, 0
	for i := range c.Rules {
		r := &c.Rules[i]
		hits := make(map[string]struct{})
		for _, tok := range tokens {
			if _, ok := r.keywords[tok]; ok {
				hits[tok] = struct{}{}
			}
		}
		if len(hits) > bestScore {
			best, bestScore = r, len(hits)
		}
	}
	return best
}

// render executes the rule template with money formatted in currency
func (r *Rule) render(currency string, data interface{}) (string, error) {
	t, err := r.tmpl.Clone()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Funcs(templateFuncs(currency)).Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rule %q: %w", r.Name, err)
	}
	return strings.Join(strings.Fields(buf.String()), " "), nil
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func templateFuncs(currency string) template.FuncMap {
	return template.FuncMap{
		"money":   func(d decimal.Decimal) string { return formatMoney(currency, d) },
		"count":   formatCount,
		"percent": formatPercent,
	}
}

func formatMoney(currency string, d decimal.Decimal) string {
	f, _ := d.Float64()
	s := humanize.FormatFloat("#,###.##", f)
	if currency == "" {
		return s
	}
	return currency + " " + s
}

func formatCount(v interface{}) string {
	switch n := v.(type) {
	case int:
		return humanize.Comma(int64(n))
	case int64:
		return humanize.Comma(n)
	case entities.Quantity:
		return humanize.Comma(int64(n))
	default:
		return fmt.Sprint(v)
	}
}

// formatPercent renders a ratio such as 0.25 as "25.0%"
func formatPercent(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}
