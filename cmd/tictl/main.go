// Copyright 2026 Peter Edge
//
// All rights reserved.

package main

import (
	"context"

	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/config"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/positions"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/probe"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/serve"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/sheet"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/summary"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/sync"
)

func main() {
	appcmd.Main(context.Background(), newRootCommand("tictl"))
}

// newRootCommand creates the root tictl command with all sub-commands.
func newRootCommand(name string) *appcmd.Command {
	builder := appext.NewBuilder(name)
	return &appcmd.Command{
		Use:   name,
		Short: "Aggregate and reclassify T-Invest positions",
		Long: `Aggregate and reclassify T-Invest positions.

Positions of every open account are fetched from the T-Invest API, priced in
the reporting currency, aggregated across accounts, split by category, and
summarized. Results are written to sheets in a local store (sync), printed
(positions, summary), or served over HTTP (serve).

The API token is read from the TINVEST_TOKEN environment variable, or from a
.env file in the tictl directory.`,
		BindPersistentFlags: builder.BindRoot,
		SubCommands: []*appcmd.Command{
			config.NewCommand("config", builder),
			sync.NewCommand("sync", builder),
			positions.NewCommand("positions", builder),
			summary.NewCommand("summary", builder),
			sheet.NewCommand("sheet", builder),
			serve.NewCommand("serve", builder),
			probe.NewCommand("probe", builder),
		},
	}
}
