// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package probe implements the "probe" command.
package probe

import (
	"context"
	"fmt"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/tictlcmd"
	"github.com/spf13/pflag"
)

// NewCommand returns a new probe command for testing API connectivity.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	flags := newFlags()
	return &appcmd.Command{
		Use:   name,
		Short: "Probe the T-Invest API",
		Long: `Probe the T-Invest API.

Calls UsersService/GetInfo with the configured token and base URLs and prints
the raw JSON response. Nothing is cached or written.`,
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
}

func newFlags() *flags {
	return &flags{}
}

// Bind registers the flag definitions with the given flag set.
func (f *flags) Bind(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.Dir, tictlcmd.DirFlagName, ".", tictlcmd.DirFlagUsage)
}

func run(ctx context.Context, container appext.Container, flags *flags) error {
	config, err := tictlcmd.ReadConfig(flags.Dir)
	if err != nil {
		return err
	}
	client, err := tictlcmd.NewClient(container, config)
	if err != nil {
		return err
	}
	info, err := client.GetInfo(ctx)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	_, err = fmt.Fprintf(container.Stdout(), "%s\n", info)
	return err
}
