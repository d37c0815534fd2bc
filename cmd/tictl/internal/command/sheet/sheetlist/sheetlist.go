// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sheetlist implements the "sheet list" command.
package sheetlist

import (
	"context"
	"errors"
	"strconv"
	"time"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/tictlcmd"
	"github.com/bufdev/tictl/internal/pkg/cliio"
	"github.com/spf13/pflag"
)

// formatFlagName is the flag name for the output format.
const formatFlagName = "format"

var headers = []string{"name", "rows", "filtered", "updated_at", "revision"}

// NewCommand returns a new sheet list command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "List stored sheets",
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
	infos, err := store.ListSheets(ctx)
	if err != nil {
		return err
	}
	if format == cliio.FormatJSON {
		return cliio.WriteJSON(container.Stdout(), infos...)
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			strconv.Itoa(info.Rows),
			strconv.FormatBool(info.Filtered),
			info.UpdatedAt.Format(time.RFC3339),
			info.Revision,
		})
	}
	if format == cliio.FormatCSV {
		return cliio.WriteCSVRecords(container.Stdout(), append([][]string{headers}, rows...))
	}
	return cliio.WriteTable(container.Stdout(), headers, rows)
}
