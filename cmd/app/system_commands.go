package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vau/cmd/app/commands"
	"github.com/allisson/vau/internal/app"
	"github.com/allisson/vau/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the local VAU proxy server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run pseudonym store migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.PseudonymStore, cfg.DBConnectionString)
			},
		},
	}
}
