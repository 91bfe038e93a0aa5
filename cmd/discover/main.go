// Command discover runs a single discovery pass against a local SQLite
// lead store and prints the run summary as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"github.com/octobees/leads-generator/discovery/internal/config"
	"github.com/octobees/leads-generator/discovery/internal/database"
	"github.com/octobees/leads-generator/discovery/internal/dto"
	"github.com/octobees/leads-generator/discovery/internal/logging"
	"github.com/octobees/leads-generator/discovery/internal/provider/registry"
	"github.com/octobees/leads-generator/discovery/internal/repository"
	"github.com/octobees/leads-generator/discovery/internal/service"
	"github.com/octobees/leads-generator/discovery/internal/service/discovery"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "discover:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var (
		country  = flag.String("country", "Ghana", "target market")
		industry = flag.String("industry", "SMEs", "industry category")
		city     = flag.String("city", "", "city to search (required)")
		dbPath   = flag.String("db", cfg.SQLitePath, "SQLite database file")
		export   = flag.String("export", "", "write the whole collection as CSV to this file after the run")
		timeout  = flag.Duration("timeout", cfg.DiscoveryTimeout, "upper bound for the run, 0 for none")
	)
	flag.Parse()

	q, err := service.ParseQuery(dto.DiscoverRequest{Country: *country, Industry: *industry, City: *city})
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := withDeadline(ctx, *timeout)
	defer cancel()

	db, err := database.OpenSQLite(ctx, *dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewSQLiteLeadsRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	orchestrator, err := discovery.New(registry.FromConfig(ctx, cfg.Providers, nil, logger), discovery.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("%w: see GOOGLE_PLACES_API_KEY, YELP_API_KEY, DIRECTORY_BACKEND_URL and the AI keys", err)
	}

	svc := service.NewLeadsService(repo, orchestrator,
		service.WithPhoneRegion(cfg.DefaultPhoneRegion),
		service.WithLogger(logger),
	)

	resp, err := svc.Discover(ctx, q)
	if err != nil {
		return err
	}

	if *export != "" {
		if err := exportCSV(context.WithoutCancel(ctx), svc, *export); err != nil {
			return err
		}
		logger.Info("collection exported", zap.String("path", *export))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// withDeadline bounds ctx by d. A non-positive d leaves the run
// unbounded apart from signals.
func withDeadline(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func exportCSV(ctx context.Context, svc *service.LeadsService, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if _, err := svc.ExportCSV(ctx, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
