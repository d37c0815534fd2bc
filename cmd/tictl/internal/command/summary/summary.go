// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package summary implements the "summary" command.
package summary

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/tictlcmd"
	"github.com/bufdev/tictl/internal/pkg/cliio"
	"github.com/bufdev/tictl/internal/pkg/sheet"
	"github.com/bufdev/tictl/internal/tictl/tictlsummary"
	"github.com/spf13/pflag"
)

// formatFlagName is the flag name for the output format.
const formatFlagName = "format"

// NewCommand returns a new summary command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Print position value by category",
		Args:  appcmd.NoArgs,
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
	// Format is the output format (table, csv, json).
	Format string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tictlcmd.DirFlagName, ".", tictlcmd.DirFlagUsage)
	flagSet.StringVar(&f.Format, formatFlagName, "table", "Output format (table, csv, json)")
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	config, err := tictlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	report, err := tictlcmd.BuildReport(ctx, container, config)
	if err != nil {
		return err
	}
	totalsRow := []string{
		"TOTAL",
		sheet.FormatMoney(tictlsummary.Total(report.Summary), config.ReportingCurrency),
	}
	return cliio.WriteSheet(
		container.Stdout(),
		format,
		tictlsummary.NewTable(report.Summary),
		config.ReportingCurrency,
		totalsRow,
	)
}
