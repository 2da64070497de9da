package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/chirino/data-gateway/internal/cmd/cleanup"
	"github.com/chirino/data-gateway/internal/cmd/migrate"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "data-gateway",
		Usage: "Multi-tenant data-access gateway for the workflow document store",
		Commands: []*cli.Command{
			migrate.Command(),
			cleanup.Command(),
		},
	}
	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
