package commands

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var demoScenario = filepath.Join("..", "..", "..", "..", "scenarios", "demo")

func TestValidate_Demo(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Validate(ValidateConfig{Scenario: demoScenario, Format: "text"}, &buf))

	out := buf.String()
	assert.Contains(t, out, ": valid")
	assert.Contains(t, out, "diplomat-sa")
	assert.Contains(t, out, "nexus-foods")
}

func TestValidate_Invalid(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	write("companies.csv", "id,name,slug,industry,currency,plan,active,created_at\n"+
		"acme,Acme Foods,acme,FMCG,ZAR,starter,true,2024-01-01T00:00:00Z\n")
	write("products.csv", "id,company_id,sku,name,category,brand,unit_price,unit_cost,status\n"+
		"p-1,ghost,SKU-1,Widget,Misc,Brand,10,5,active\n")

	var buf bytes.Buffer
	err := Validate(ValidateConfig{Scenario: dir, Format: "text"}, &buf)
	assert.ErrorIs(t, err, ErrInvalidScenario)
	assert.Contains(t, buf.String(), "INVALID")
	assert.Contains(t, buf.String(), "ghost")
}

func TestValidate_Errors(t *testing.T) {
	assert.Error(t, Validate(ValidateConfig{}, io.Discard))
	assert.Error(t, Validate(ValidateConfig{Scenario: filepath.Join(t.TempDir(), "missing")}, io.Discard))
	assert.Error(t, Validate(ValidateConfig{Scenario: demoScenario, Format: "gantt"}, io.Discard))
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	cfg := ServeConfig{
		Scenario:        demoScenario,
		JournalPath:     filepath.Join(t.TempDir(), "journal.db"),
		ShutdownTimeout: time.Second,
		LoginRate:       1,
		LoginBurst:      5,
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- run(ctx, cfg, ln, zaptest.NewLogger(t)) }()

	client := &http.Client{
		Timeout:   5 * time.Second,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	resp, err := client.Get("http://" + ln.Addr().String() + "/api/v1/companies")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "diplomat-sa")
	assert.NotContains(t, string(body), "legacy-trading")

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_InvalidScenario(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = run(context.Background(), ServeConfig{Scenario: t.TempDir()}, ln, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "load scenario")
}
