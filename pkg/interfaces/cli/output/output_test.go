package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/vantax/pkg/domain/services"
	testdata "github.com/vsinha/vantax/pkg/infrastructure/testing"
)

func testSummary() *Summary {
	return Summarize("fixture", testdata.BuildTestDataset(), &services.ValidationResult{
		Warnings: []string{"customer C-IDLE has no orders"},
	})
}

func TestSummarize(t *testing.T) {
	s := testSummary()

	assert.True(t, s.Valid)
	require.Len(t, s.Companies, 3)
	acme := s.Companies[0]
	assert.Equal(t, "acme", string(acme.ID))
	assert.Equal(t, 4, acme.Users)
	assert.Equal(t, 3, acme.Products)
	assert.Equal(t, 3, acme.Customers)
	assert.Equal(t, 3, acme.Promotions)
	assert.Equal(t, 4, acme.Orders)
	// O3 is cancelled
	assert.Equal(t, "430", acme.Revenue.String())

	assert.Equal(t, "dormant", string(s.Companies[1].ID))
	assert.False(t, s.Companies[1].Active)
	assert.Equal(t, "50", s.Companies[2].Revenue.String())
}

func TestGenerate(t *testing.T) {
	s := testSummary()

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Generate(&buf, s, Config{Format: "text"}))
		out := buf.String()
		assert.Contains(t, out, "Scenario fixture: valid")
		assert.Contains(t, out, "430.00")
		assert.Contains(t, out, "1 warnings, use --verbose")
	})

	t.Run("text verbose", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Generate(&buf, s, Config{Format: "text", Verbose: true}))
		assert.Contains(t, buf.String(), "customer C-IDLE has no orders")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Generate(&buf, s, Config{Format: "json"}))
		var decoded Summary
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, "fixture", decoded.Scenario)
		assert.Len(t, decoded.Companies, 3)
	})

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Generate(&buf, s, Config{Format: "csv"}))
		records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, "company_id", records[0][0])
		assert.Equal(t, []string{"acme", "Acme Foods", "true", "4", "3", "3", "3", "4", "430.00"}, records[1])
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.Error(t, Generate(&bytes.Buffer{}, s, Config{Format: "gantt"}))
	})
}
