package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/vau/cmd/app/commands"
	"github.com/allisson/vau/internal/app"
	"github.com/allisson/vau/internal/config"
)

var formatFlag = &cli.StringFlag{
	Name:    "format",
	Aliases: []string{"f"},
	Value:   "text",
	Usage:   "Output format: 'text' or 'json'",
}

func getVAUCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "request",
			Usage: "Send a single request through the VAU secure channel",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "method",
					Aliases: []string{"X"},
					Value:   "GET",
					Usage:   "HTTP method of the inner request",
				},
				&cli.StringFlag{
					Name:     "path",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Path (and query) of the inner request, resolved against VAU_UPSTREAM_URL",
				},
				&cli.StringSliceFlag{
					Name:    "header",
					Aliases: []string{"H"},
					Usage:   "Inner request header in 'Name: value' form (repeatable)",
				},
				&cli.StringFlag{
					Name:    "data",
					Aliases: []string{"d"},
					Usage:   "Body of the inner request",
				},
				formatFlag,
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				transportUseCase, err := container.TransportUseCase()
				if err != nil {
					return err
				}

				return commands.RunRequest(
					ctx,
					transportUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					commands.RequestOptions{
						UpstreamURL: container.Config().VAUUpstreamURL,
						Method:      cmd.String("method"),
						Path:        cmd.String("path"),
						Headers:     cmd.StringSlice("header"),
						Body:        cmd.String("data"),
					},
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "certificate",
			Usage: "Show the fingerprint of the VAU encryption certificate",
			Flags: []cli.Flag{formatFlag},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				provider, err := container.CertificateProvider()
				if err != nil {
					return err
				}

				return commands.RunShowCertificate(
					ctx,
					provider,
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "pseudonym",
			Usage: "Show the stored user pseudonym",
			Flags: []cli.Flag{formatFlag},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				transportUseCase, err := container.TransportUseCase()
				if err != nil {
					return err
				}

				return commands.RunShowPseudonym(
					ctx,
					transportUseCase,
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "reset-pseudonym",
			Usage: "Forget the stored user pseudonym",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer func() { _ = container.Shutdown(ctx) }()

				transportUseCase, err := container.TransportUseCase()
				if err != nil {
					return err
				}

				return commands.RunResetPseudonym(
					ctx,
					transportUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
				)
			},
		},
	}
}

func newContainer() (*app.Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return app.NewContainer(cfg), nil
}
