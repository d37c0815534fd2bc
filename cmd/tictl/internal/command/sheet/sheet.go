// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package sheet implements the "sheet" command group.
package sheet

import (
	"buf.build/go/app/appcmd"
	"buf.build/go/app/appext"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/sheet/sheetdropfilters"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/sheet/sheetexport"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/sheet/sheetlist"
	"github.com/bufdev/tictl/cmd/tictl/internal/command/sheet/sheetshow"
)

// NewCommand returns a new sheet command group.
func NewCommand(name string, builder appext.SubCommandBuilder) *appcmd.Command {
	return &appcmd.Command{
		Use:   name,
		Short: "Inspect the sheet store",
		SubCommands: []*appcmd.Command{
			sheetlist.NewCommand("list", builder),
			sheetshow.NewCommand("show", builder),
			sheetdropfilters.NewCommand("dropfilters", builder),
			sheetexport.NewCommand("export", builder),
		},
	}
}
