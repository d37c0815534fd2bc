// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sheetexport implements the "sheet export" command.
package sheetexport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/tictlcmd"
	"github.com/bufdev/tictl/internal/tictl/tictlexport"
	"github.com/bufdev/tictl/internal/tictl/tictlsheets"
	"github.com/spf13/pflag"
)

// outputFlagName is the flag name for the output zip file path.
const outputFlagName = "output"

// NewCommand returns a new sheet export command that archives every sheet as CSV.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Export every stored sheet as CSV files in a zip archive",
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
	// Output is the path to the output zip file.
	Output string
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tictlcmd.DirFlagName, ".", tictlcmd.DirFlagUsage)
	flagSet.StringVarP(&f.Output, outputFlagName, "o", "", "Output zip file path (required)")
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
	if flags.Output == "" {
		return appcmd.NewInvalidArgumentError("--output (-o) is required")
	}
	if !strings.HasSuffix(flags.Output, ".zip") {
		return appcmd.NewInvalidArgumentError("output file must have a .zip extension")
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
	sheets := make([]*tictlsheets.Sheet, 0, len(infos))
	for _, info := range infos {
		sheet, err := store.ReadSheet(ctx, info.Name)
		if err != nil {
			return err
		}
		sheets = append(sheets, sheet)
	}
	outputFile, err := os.Create(flags.Output)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer func() {
		retErr = errors.Join(retErr, outputFile.Close())
	}()
	if err := tictlexport.WriteZip(outputFile, sheets); err != nil {
		return fmt.Errorf("creating zip archive: %w", err)
	}
	container.Logger().Info("zip archive created", "path", flags.Output, "sheets", len(sheets))
	return nil
}
