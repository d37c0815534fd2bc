// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package config implements the "config" command group.
package config

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/config/configedit"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/config/configinit"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/config/configvalidate"
)

// NewCommand returns a new config command group for tictl.yaml.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Manage tictl.yaml: report grouping, sheet names, API endpoints and serve schedule",
		Long: `Manage tictl.yaml in the tictl directory.

The file sets the T-Invest base URLs and request pacing, the field positions
are aggregated by, the reporting currency, the instrument cache TTL, the
sheet names written by sync, and the address and schedule of serve. The API
token is never stored here; set TINVEST_TOKEN or add it to .env.`,
		SubCommands: []*appcmd.Command{
			configinit.NewCommand("init", builder),
			configedit.NewCommand("edit", builder),
			configvalidate.NewCommand("validate", builder),
		},
	}
}
