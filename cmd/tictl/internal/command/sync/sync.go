// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sync implements the "sync" command.
package sync

import (
	"context"
	"errors"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/tictlcmd"
	"github.com/bufdev/tictl/internal/standard/xos"
	"github.com/spf13/pflag"
)

// csvDirFlagName is the flag name for the CSV mirror directory.
const csvDirFlagName = "csv-dir"

// NewCommand returns a new sync command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Build the position report and write every sheet",
		Long: `Build the position report and write every sheet.

Positions of all open accounts are fetched, aggregated, and split by category.
Each sheet in the sheet store is fully replaced, including empty ones, which
keep only their header. With --csv-dir, every sheet is also written as
<name>.csv to the given directory.`,
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
	// CSVDir is the directory to mirror sheets to as CSV files.
	CSVDir string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tictlcmd.DirFlagName, ".", tictlcmd.DirFlagUsage)
	flagSet.StringVar(&f.CSVDir, csvDirFlagName, "", "Also write every sheet as CSV to this directory")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	config, err := tictlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	csvDirPath, err := xos.ExpandHome(flags.CSVDir)
	if err != nil {
		return err
	}
	reporter, err := tictlcmd.NewReporter(ctx, container, config)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, reporter.Close())
	}()
	store, err := tictlcmd.OpenSheetStore(ctx, config)
	if err != nil {
		return err
	}
	defer func() {
		retErr = errors.Join(retErr, store.Close())
	}()
	return tictlcmd.Sync(ctx, container.Logger(), config, reporter, store, csvDirPath)
}
