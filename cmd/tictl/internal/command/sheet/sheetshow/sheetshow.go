// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sheetshow implements the "sheet show" command.
package sheetshow

import (
	"context"
	"errors"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/tictlcmd"
	"github.com/bufdev/tictl/internal/pkg/cliio"
	"github.com/bufdev/tictl/internal/tictl/tictlsheets"
	"github.com/spf13/pflag"
)

// formatFlagName is the flag name for the output format.
const formatFlagName = "format"

// NewCommand returns a new sheet show command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name + " NAME",
		Short: "Print a stored sheet",
		Args:  appcmd.ExactArgs(1),
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

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	format, err := cliio.ParseFormat(flags.Format)
	if err != nil {
		return appcmd.NewInvalidArgumentError(err.Error())
	}
	config, err := tictlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	store, err := tictlcmd.OpenSheetStore(ctx, config)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, store.Close())
	}()
	name := container.Arg(0)
	sheet, err := store.ReadSheet(ctx, name)
	if err != nil {
		if errors.Is(err, tictlsheets.ErrSheetNotFound) {
			return appcmd.NewInvalidArgumentErrorf("sheet %q not found, run sync first", name)
		}
		return err
	}
	return cliio.WriteSheet(container.Stdout(), format, sheet.Table, config.ReportingCurrency, nil)
}
