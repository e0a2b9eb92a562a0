package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vsinha/vantax/pkg/application/services"
	"github.com/vsinha/vantax/pkg/application/services/analytics"
	"github.com/vsinha/vantax/pkg/application/services/auth"
	"github.com/vsinha/vantax/pkg/application/services/catalog"
	"github.com/vsinha/vantax/pkg/application/services/customers"
	"github.com/vsinha/vantax/pkg/application/services/forecast"
	"github.com/vsinha/vantax/pkg/application/services/insights"
	"github.com/vsinha/vantax/pkg/application/services/orders"
	"github.com/vsinha/vantax/pkg/application/services/promotions"
	"github.com/vsinha/vantax/pkg/application/services/tenancy"
	"github.com/vsinha/vantax/pkg/domain/repositories"
	domain "github.com/vsinha/vantax/pkg/domain/services"
	"github.com/vsinha/vantax/pkg/infrastructure/events"
	"github.com/vsinha/vantax/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/vantax/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/vantax/pkg/interfaces/cli"
	vhttp "github.com/vsinha/vantax/pkg/interfaces/http"
	"github.com/vsinha/vantax/pkg/platform/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const eventQueueSize = 1024

// ServeConfig holds the options of the serve command
type ServeConfig struct {
	HTTPBindAddress string
	Scenario        string
	LogLevel        string
	LogFormat       string
	JournalPath     string
	InsightRules    string
	ShutdownTimeout time.Duration
	LoginRate       float64
	LoginBurst      int
}

func (c *ServeConfig) opts() []cli.Opt {
	return []cli.Opt{
		cli.NewOpt(&c.HTTPBindAddress, "http-bind-address", ":8080", "address the HTTP API listens on"),
		cli.NewOpt(&c.Scenario, "scenario", "scenarios/demo", "directory of the CSV seed scenario"),
		cli.NewOpt(&c.LogLevel, "log-level", "info", "minimum log level: debug, info, warn or error"),
		cli.NewOpt(&c.LogFormat, "log-format", "console", "log encoding: console or json"),
		cli.NewOpt(&c.JournalPath, "journal-path", "", "SQLite file for the activity journal; empty keeps it in memory"),
		cli.NewOpt(&c.InsightRules, "insight-rules", "", "YAML file replacing the built-in insight rules"),
		cli.NewOpt(&c.ShutdownTimeout, "shutdown-timeout", 10*time.Second, "time allowed for in-flight requests on shutdown"),
		cli.NewOpt(&c.LoginRate, "login-rate", 1.0, "sustained login attempts per second for one company and email"),
		cli.NewOpt(&c.LoginBurst, "login-burst", 5, "login attempts allowed in a burst"),
	}
}

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cfg := &ServeConfig{}
	opts := cfg.opts()
	v := cli.NewViper()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API over a seed scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli.Resolve(v, opts)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Serve(ctx, *cfg, cmd.ErrOrStderr())
		},
	}
	cli.BindOptions(v, cmd, opts)
	return cmd
}

// Serve runs the API until ctx is cancelled, then drains in-flight
// requests for at most cfg.ShutdownTimeout.
func Serve(ctx context.Context, cfg ServeConfig, logOutput io.Writer) error {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log, err := logger.New(logOutput, logger.Config{Format: cfg.LogFormat, Level: level})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ln, err := net.Listen("tcp", cfg.HTTPBindAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.HTTPBindAddress, err)
	}
	return run(ctx, cfg, ln, log)
}

// run serves on ln; split from Serve so tests can pick the listener
func run(ctx context.Context, cfg ServeConfig, ln net.Listener, log *zap.Logger) error {
	app, err := newApp(ctx, cfg, log)
	if err != nil {
		ln.Close()
		return err
	}
	defer app.close()

	server := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Listening", zap.String("transport", "http"), zap.String("addr", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// app is the wired backend of one serve run
type app struct {
	handler http.Handler
	bus     *events.Bus
	journal repositories.EventJournal
	log     *zap.Logger
}

func (a *app) close() {
	a.bus.Close()
	if err := a.journal.Close(); err != nil {
		a.log.Warn("Failed to close journal", zap.Error(err))
	}
}

func newApp(ctx context.Context, cfg ServeConfig, log *zap.Logger) (*app, error) {
	start := time.Now()
	dataset, err := csv.NewLoader().LoadScenario(cfg.Scenario)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	result := domain.ValidateDataset(dataset)
	for _, w := range result.Warnings {
		log.Warn("Scenario warning", zap.String("warning", w))
	}
	if !result.Valid() {
		return nil, fmt.Errorf("scenario %s is invalid: %s", cfg.Scenario, strings.Join(result.Errors, "; "))
	}
	repos := memory.NewRepositories()
	if err := repos.Load(dataset); err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	log.Info("Scenario loaded",
		zap.String("scenario", cfg.Scenario),
		zap.Int("companies", len(dataset.Companies)),
		zap.Int("orders", len(dataset.Orders)),
		zap.Duration("took", time.Since(start)))

	rules, err := insights.LoadCatalog(cfg.InsightRules)
	if err != nil {
		return nil, err
	}

	authCfg, err := auth.LoadConfig()
	if err != nil {
		return nil, err
	}
	authCfg.LoginRate = rate.Limit(cfg.LoginRate)
	authCfg.LoginBurst = cfg.LoginBurst
	if authCfg.SecretGenerated {
		log.Warn("VANTAX_JWT_SECRET is not set, generated a random secret; tokens will not survive a restart")
	}

	var journal repositories.EventJournal
	if cfg.JournalPath != "" {
		j, err := events.OpenSQLiteJournal(ctx, cfg.JournalPath, log)
		if err != nil {
			return nil, err
		}
		journal = j
	} else {
		journal = events.NewMemoryJournal(0)
	}

	clk := clock.New()
	bus := events.NewBus(journal, clk, log, eventQueueSize)
	bus.Subscribe([]string{events.PromotionSpendRecordedEvent},
		promotions.NewBudgetWatcher(repos.Promotions, rules.Thresholds.BudgetBurnPct, log))

	authSvc, err := auth.NewService(authCfg, repos.Users, bus, clk, log)
	if err != nil {
		bus.Close()
		journal.Close()
		return nil, err
	}
	analyticsSvc := analytics.NewService(repos.Orders, repos.Products, repos.Customers, repos.Promotions, clk)
	insightSvc := insights.NewService(rules, analyticsSvc,
		repos.Companies, repos.Orders, repos.Products, repos.Customers, repos.Promotions, clk)

	backend := vhttp.Backend{
		Tenants:    tenancy.NewService(repos.Companies),
		Auth:       services.NewAuthLogger(log, authSvc),
		Products:   services.NewProductLogger(log, catalog.NewService(repos.Products, repos.Orders, repos.Promotions, bus, clk, log)),
		Customers:  services.NewCustomerLogger(log, customers.NewService(repos.Customers, repos.Orders, repos.Promotions, bus, clk, log)),
		Promotions: services.NewPromotionLogger(log, promotions.NewService(repos.Promotions, repos.Products, repos.Customers, bus, clk, log)),
		Orders: services.NewOrderLogger(log,
			orders.NewService(repos.Orders, repos.Products, repos.Customers, repos.Promotions, bus, clk, log)),
		Analytics: services.NewAnalyticsLogger(log, analyticsSvc),
		Insights:  services.NewInsightLogger(log, insightSvc),
		Forecasts: services.NewForecastLogger(log, forecast.NewService(repos.Orders, repos.Products, clk)),
		Events:    journal,
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &app{
		handler: vhttp.NewHandler(log, reg, backend),
		bus:     bus,
		journal: journal,
		log:     log,
	}, nil
}
