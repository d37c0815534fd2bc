// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sheetdropfilters implements the "sheet dropfilters" command.
package sheetdropfilters

import (
	"context"
	"errors"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/tictlcmd"
	"github.com/spf13/pflag"
)

// NewCommand returns a new sheet dropfilters command.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Remove the filter from every stored sheet",
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tictlcmd.DirFlagName, ".", tictlcmd.DirFlagUsage)
}

func run(ctx context.Context, container appext.Container, flags *flags) (retErr error) {
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
	dropped, err := store.DropAllFilters(ctx)
	if err != nil {
		return err
	}
	container.Logger().Info("filters dropped", "sheets", dropped)
	return nil
}
