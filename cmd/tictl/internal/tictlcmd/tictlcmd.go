// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package tictlcmd provides shared wiring for tictl commands: reading config,
// getting the T-Invest token, and constructing clients, caches and stores.
package tictlcmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/internal/pkg/kvcache"
	"github.com/bufdev/tictl/internal/pkg/tinvest"
	"github.com/bufdev/tictl/internal/standard/xos"
	"github.com/bufdev/tictl/internal/tictl/tictlconfig"
	"github.com/bufdev/tictl/internal/tictl/tictlexport"
	"github.com/bufdev/tictl/internal/tictl/tictlinstruments"
	"github.com/bufdev/tictl/internal/tictl/tictlpath"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/bufdev/tictl/internal/tictl/tictlreport"
	"github.com/bufdev/tictl/internal/tictl/tictlsheets"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	// DirFlagName is the flag name for the tictl directory.
	DirFlagName = "dir"
	// DirFlagUsage is the usage of the tictl directory flag.
	DirFlagUsage = "The tictl directory containing tictl.yaml"
	// tinvestTokenEnvVar is the environment variable name for the T-Invest API token.
	tinvestTokenEnvVar = "TINVEST_TOKEN"
)

// ReadConfig expands dirPath and reads the configuration file within it.
func ReadConfig(dirPath string) (*tictlconfig.Config, error) {
	dirPath, err := xos.ExpandHome(dirPath)
	if err != nil {
		return nil, err
	}
	return tictlconfig.ReadConfig(dirPath)
}

// NewClient constructs a T-Invest client.
//
// The token is read from TINVEST_TOKEN, falling back to the .env file in the
// tictl directory.
func NewClient(container appext.Container, config *tictlconfig.Config) (tinvest.Client, error) {
	token := container.Env(tinvestTokenEnvVar)
	if token == "" {
		envFilePath := tictlpath.EnvFilePath(config.DirPath)
		values, err := godotenv.Read(envFilePath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envFilePath, err)
		}
		token = values[tinvestTokenEnvVar]
	}
	if token == "" {
		return nil, errors.New("TINVEST_TOKEN environment variable is required, set it to your T-Invest API token or add it to .env in the tictl directory")
	}
	return tinvest.NewClient(
		container.Logger(),
		token,
		tinvest.ClientWithBaseURLs(config.BaseURLs...),
		tinvest.ClientWithTimeout(config.Timeout),
	), nil
}

// Reporter assembles reports and owns the instrument cache.
type Reporter struct {
	tictlreport.Assembler
	cache kvcache.Store
}

// Close closes the instrument cache.
func (r *Reporter) Close() error {
	return r.cache.Close()
}

// NewReporter constructs a Reporter from the container and config.
func NewReporter(ctx context.Context, container appext.Container, config *tictlconfig.Config) (*Reporter, error) {
	client, err := NewClient(container, config)
	if err != nil {
		return nil, err
	}
	cache, err := kvcache.Open(ctx, tictlpath.InstrumentCacheDBPath(config.DirPath))
	if err != nil {
		return nil, fmt.Errorf("opening instrument cache: %w", err)
	}
	logger := container.Logger()
	purged, err := cache.Purge(ctx)
	if err != nil {
		return nil, errors.Join(err, cache.Close())
	}
	if purged > 0 {
		logger.Debug("purged expired instrument metadata", "entries", purged)
	}
	options := []tictlreport.AssemblerOption{
		tictlreport.AssemblerWithGroupField(config.GroupField),
		tictlreport.AssemblerWithCurrency(config.ReportingCurrency),
		tictlreport.AssemblerWithCashName(config.CashName),
		tictlreport.AssemblerWithPause(config.RequestPause),
	}
	if !config.PortfolioAggregate {
		options = append(options, tictlreport.AssemblerWithoutPortfolioAggregate())
	}
	return &Reporter{
		Assembler: tictlreport.NewAssembler(
			logger,
			tictlreport.NewProvider(logger, client, config.ReportingCurrency),
			tictlinstruments.NewResolver(logger, client, cache, tictlinstruments.ResolverWithTTL(config.CacheTTL)),
			options...,
		),
		cache: cache,
	}, nil
}

// BuildReport assembles a single report.
func BuildReport(ctx context.Context, container appext.Container, config *tictlconfig.Config) (_ *tictlreport.Report, retErr error) {
	reporter, err := NewReporter(ctx, container, config)
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = errors.Join(retErr, reporter.Close())
	}()
	return reporter.Assemble(ctx)
}

// OpenSheetStore opens the sheet store of the tictl directory.
func OpenSheetStore(ctx context.Context, config *tictlconfig.Config) (tictlsheets.Store, error) {
	store, err := tictlsheets.Open(ctx, tictlpath.SheetsDBPath(config.DirPath))
	if err != nil {
		return nil, fmt.Errorf("opening sheet store: %w", err)
	}
	return store, nil
}

// Sync assembles a report with reporter and renders it to store, and to
// csvDirPath when non-empty.
func Sync(
	ctx context.Context,
	logger *slog.Logger,
	config *tictlconfig.Config,
	reporter tictlreport.Assembler,
	store tictlsheets.Store,
	csvDirPath string,
) error {
	logger = logger.With("run_id", uuid.NewString())
	logger.Info("sync started")
	report, err := reporter.Assemble(ctx)
	if err != nil {
		return err
	}
	renderer := tictlreport.Renderer(store)
	if csvDirPath != "" {
		csvDir, err := tictlexport.NewCSVDir(csvDirPath)
		if err != nil {
			return err
		}
		renderer = tictlreport.MultiRenderer(store, csvDir)
	}
	if err := tictlreport.Render(ctx, renderer, report, config.SheetNames); err != nil {
		return err
	}
	for _, category := range tictlposition.AllCategories {
		records := report.Categories[category]
		logger.Info(
			"category synced",
			"category", string(category),
			"rows", len(records),
			"value", tictlposition.SumPositionValue(records).StringFixed(2),
		)
	}
	logger.Info("sync finished", "positions", len(report.Positions), "total", report.Total())
	return nil
}
