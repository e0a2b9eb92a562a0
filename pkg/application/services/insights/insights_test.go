package insights

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/vantax/pkg/application/dto"
	"github.com/vsinha/vantax/pkg/application/services/analytics"
	"github.com/vsinha/vantax/pkg/domain/entities"
	"github.com/vsinha/vantax/pkg/infrastructure/repositories/memory"
	testdata "github.com/vsinha/vantax/pkg/infrastructure/testing"
	perrors "github.com/vsinha/vantax/pkg/platform/errors"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return newTestServiceFor(t, testdata.BuildTestRepositories())
}

func newTestServiceFor(t *testing.T, repos *memory.Repositories) *Service {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	clk := clock.NewMock()
	clk.Set(testdata.Now)
	stats := analytics.NewService(repos.Orders, repos.Products, repos.Customers, repos.Promotions, clk)
	return NewService(catalog, stats, repos.Companies, repos.Orders, repos.Products, repos.Customers, repos.Promotions, clk)
}

func TestService_Generate(t *testing.T) {
	svc := newTestService(t)

	found, err := svc.Generate(context.Background(), "acme")
	require.NoError(t, err)

	type finding struct {
		rule     string
		severity dto.Severity
		subject  string
	}
	var got []finding
	for _, f := range found {
		got = append(got, finding{f.Rule, f.Severity, f.Subject})
	}
	want := []finding{
		{RuleNegativeROI, dto.SeverityCritical, "PR-BIG"},
		{RuleBudgetBurn, dto.SeverityWarning, "PR-BIG"},
		{RuleRevenueDrop, dto.SeverityWarning, "P-COLA"},
		{RuleDormantBuyer, dto.SeverityInfo, "C-IDLE"},
	}
	assert.Equal(t, want, got)

	assert.Contains(t, found[0].Message, "ROI of -100.0%")
	assert.Equal(t, "Cola 330ml revenue is down 55.0%", found[2].Title)
	assert.Contains(t, found[2].Message, "ZAR 90.00 in the last 30 days against ZAR 200.00")
	assert.Contains(t, found[3].Message, "never placed an order")
}

func TestService_GenerateBudgetBurnAnyStatus(t *testing.T) {
	repos := testdata.BuildTestRepositories()
	done, err := entities.NewPromotion("PR-DONE", "acme", "Chips Summer", entities.Discount, entities.PromotionCompleted,
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(5), decimal.NewFromInt(200), decimal.NewFromInt(190),
		[]entities.ProductID{"P-CHIPS"}, nil, testdata.Now)
	require.NoError(t, err)
	require.NoError(t, repos.Promotions.SavePromotion(done))

	found, err := newTestServiceFor(t, repos).Generate(context.Background(), "acme")
	require.NoError(t, err)

	var burn *dto.Insight
	for i := range found {
		if found[i].Rule == RuleBudgetBurn && found[i].Subject == "PR-DONE" {
			burn = &found[i]
		}
	}
	require.NotNil(t, burn, "completed promotions are checked for budget burn too")
	assert.Contains(t, burn.Message, "(95.0%)")
}

func TestService_GenerateQuietCompany(t *testing.T) {
	svc := newTestService(t)

	found, err := svc.Generate(context.Background(), "globex")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	_, err = svc.Generate(context.Background(), "initech")
	assert.Equal(t, perrors.ENotFound, perrors.ErrorCode(err))
}

func TestService_Ask(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		question string
		rule     string
		contains string
	}{
		{"What was our revenue?", "revenue", "Acme Foods booked ZAR 230.00 in revenue over the last 30 days from 2 orders."},
		{"Which product is our top seller", "top_products", "Salted Chips (CHIPS-125) leads with ZAR 140.00 from 7 units."},
		{"How much trade spend so far?", "trade_spend", "ZAR 10.00"},
		{"ROI of our promotions", "promotions", "an ROI of 1800.0%"},
		{"which channel is strongest", "channels", "ModernTrade is the strongest channel"},
		{"hello there", "help", "for Acme Foods"},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			answer, err := svc.Ask(ctx, "acme", tt.question)
			require.NoError(t, err)
			assert.Equal(t, tt.rule, answer.Rule)
			assert.Contains(t, answer.Answer, tt.contains)
			assert.NotContains(t, answer.Answer, "\n")
		})
	}
}

func TestService_AskRejectsBadQuestions(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ask(ctx, "acme", "   ")
	assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err))

	_, err = svc.Ask(ctx, "acme", strings.Repeat("revenue ", 100))
	assert.Equal(t, perrors.EInvalid, perrors.ErrorCode(err))
}

func TestCatalog_Match(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	// "trade" is also a channel keyword; earlier rules win ties
	assert.Equal(t, "trade_spend", catalog.Match("TRADE SPEND!").Name)
	assert.Equal(t, "channels", catalog.Match("revenue by channel and region").Name)
	assert.Equal(t, "help", catalog.Match("").Name)
}

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing fallback",
			yaml:    "rules:\n  - name: a\n    keywords: [x]\n    answer: hi\n",
			wantErr: "fallback",
		},
		{
			name:    "unknown field",
			yaml:    "fallback: {name: help, answer: hi}\nextra: true\n",
			wantErr: "field extra not found",
		},
		{
			name:    "broken template",
			yaml:    "fallback: {name: help, answer: hi}\nrules:\n  - name: a\n    keywords: [x]\n    answer: \"{{.Revenue\"\n",
			wantErr: `rule "a"`,
		},
		{
			name:    "duplicate name",
			yaml:    "fallback: {name: help, answer: hi}\nrules:\n  - {name: help, keywords: [x], answer: hi}\n",
			wantErr: "duplicate name",
		},
		{
			name:    "no keywords",
			yaml:    "fallback: {name: help, answer: hi}\nrules:\n  - {name: a, answer: hi}\n",
			wantErr: "at least one keyword",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
thresholds:
  dormant_days: 7
fallback:
  name: nope
  answer: "Ask me about stock."
rules:
  - name: stock
    keywords: [stock, inventory]
    answer: "{{count .Units}} units moved."
`), 0o600))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, 7, catalog.Thresholds.DormantDays)
	assert.Equal(t, 90.0, catalog.Thresholds.BudgetBurnPct, "unset thresholds keep their defaults")
	assert.Equal(t, "stock", catalog.Match("inventory levels").Name)

	_, err = LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	builtin, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Equal(t, "help", builtin.Fallback.Name)
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "ZAR 1,234.50", formatMoney("ZAR", decimal.RequireFromString("1234.5")))
	assert.Equal(t, "12,000", formatCount(12000))
	assert.Equal(t, "25.0%", formatPercent(decimal.RequireFromString("0.25")))
}
