// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package positions implements the "positions" command.
package positions

import (
	"context"
	"strings"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/tictlcmd"
	"github.com/bufdev/tictl/internal/pkg/cliio"
	"github.com/bufdev/tictl/internal/tictl/tictlposition"
	"github.com/bufdev/tictl/internal/tictl/tictlreport"
	"github.com/spf13/pflag"
)

const (
	// viewFlagName is the flag name for the view to print.
	viewFlagName = "view"
	// formatFlagName is the flag name for the output format.
	formatFlagName = "format"
	viewRaw        = "raw"
	viewAggregated = "aggregated"
)

// NewCommand returns a new positions command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Print one view of the position report",
		Long: `Print one view of the position report.

Views:
  raw         one row per position and account, cash last per account
  aggregated  the whole portfolio aggregated by the configured field
  shares, bonds, etfs, currencies, futures, other, money
              the per-category aggregates`,
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
	// View is the view to print.
	View string
	// Format is the output format (table, csv, json).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tictlcmd.DirFlagName, ".", tictlcmd.DirFlagUsage)
	flagSet.StringVar(&f.View, viewFlagName, viewRaw, "View to print (raw, aggregated, shares, bonds, etfs, currencies, futures, other, money)")
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	view := strings.ToLower(flags.View)
	category, isCategory := tictlposition.ParseCategory(view)
	if view != viewRaw && view != viewAggregated && !isCategory {
		return appcmd.NewInvalidArgumentErrorf("unknown view %q", flags.View)
	}
	config, err := tictlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	if view == viewAggregated && !config.PortfolioAggregate {
		return appcmd.NewInvalidArgumentError("the aggregated view requires report.aggregate_by to be set")
	}
	report, err := tictlcmd.BuildReport(ctx, container, config)
	if err != nil {
		return err
	}
	records := selectView(report, view, category)
	return cliio.WriteSheet(
		container.Stdout(),
		format,
		tictlposition.RecordsTable(records),
		config.ReportingCurrency,
		nil,
	)
}

func selectView(report *tictlreport.Report, view string, category tictlposition.Category) []tictlposition.Record {
	switch view {
	case viewRaw:
		return report.Positions
	case viewAggregated:
		return report.Aggregated
	default:
		return report.Categories[category]
	}
}
