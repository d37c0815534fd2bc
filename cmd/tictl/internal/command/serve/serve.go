// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package serve implements the "serve" command.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/tictlcmd"
	"github.com/bufdev/tictl/internal/tictl/tictlserve"
	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"
)

const (
	// addressFlagName is the flag name for the listen address.
	addressFlagName = "address"
	// scheduleFlagName is the flag name for the sync schedule.
	scheduleFlagName = "schedule"
	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

// NewCommand returns a new serve command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Serve stored sheets over HTTP",
		Long: `Serve stored sheets read-only over HTTP.

Routes:
  GET /sheets              list sheets
  GET /sheets/{name}       one sheet as JSON, formatted for display
  GET /sheets/{name}.csv   one sheet as CSV

With a schedule (serve.schedule in tictl.yaml, or --schedule), sync runs
periodically in the background. The schedule is a standard five-field cron
expression or a descriptor such as "@every 1h".`,
		Args: appcmd.NoArgs,
		Run: builder.NewRunFunc(
			func(ctx context.Context, container appext.Container) error {
				return run(ctx, container, flags)
			},
		),
		BindFlags: flags.Bind,
	}
}

type flags struct {
	// Dir is the tictl directory containing tictl.yaml.
	Dir string
	// Address overrides serve.address.
	Address string
	// Schedule overrides serve.schedule.
	Schedule string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tictlcmd.DirFlagName, ".", tictlcmd.DirFlagUsage)
	flagSet.StringVar(&f.Address, addressFlagName, "", "Listen address, overrides serve.address")
	flagSet.StringVar(&f.Schedule, scheduleFlagName, "", "Sync schedule, overrides serve.schedule")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	config, err := tictlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	address := config.ServeAddress
	if flags.Address != "" {
		address = flags.Address
	}
	schedule := config.ServeSchedule
	if flags.Schedule != "" {
		if _, err := cron.ParseStandard(flags.Schedule); err != nil {
			return appcmd.NewInvalidArgumentErrorf("invalid --schedule %q: %v", flags.Schedule, err)
		}
		schedule = flags.Schedule
	}
	logger := container.Logger()
	store, err := tictlcmd.OpenSheetStore(ctx, config)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, store.Close())
	}()
	if schedule != "" {
		reporter, err := tictlcmd.NewReporter(ctx, container, config)
		if err != nil {
			return err
		}
		defer func() {
			retErr = errors.Join(retErr, reporter.Close())
		}()
		scheduler := cron.New(cron.WithLogger(cronLogger{logger: logger}))
		if _, err := scheduler.AddJob(schedule, newSyncJob(logger, func() {
			if err := tictlcmd.Sync(ctx, logger, config, reporter, store, ""); err != nil {
				logger.Error("scheduled sync failed", "error", err)
			}
		})); err != nil {
			return fmt.Errorf("scheduling sync: %w", err)
		}
		scheduler.Start()
		logger.Info("sync scheduled", "schedule", schedule)
		// Stop waits for a running sync to finish before the store closes.
		defer func() {
			<-scheduler.Stop().Done()
		}()
	}
	server := &http.Server{
		Addr:              address,
		Handler:           tictlserve.NewHandler(logger, store, config.ReportingCurrency),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	serveErrC := make(chan error, 1)
	go func() {
		serveErrC <- server.ListenAndServe()
	}()
	logger.Info("serving sheets", "address", address)
	select {
	case err := <-serveErrC:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serveErrC; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newSyncJob wraps sync so that a tick arriving while a previous sync is
// still running is skipped.
func newSyncJob(logger *slog.Logger, sync func()) cron.Job {
	return cron.NewChain(cron.SkipIfStillRunning(cronLogger{logger: logger})).Then(cron.FuncJob(sync))
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.logger.Debug("cron "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.logger.Error("cron "+msg, append(keysAndValues, "error", err)...)
}
