package migrate

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/chirino/data-gateway/internal/config"
	gatewaymongo "github.com/chirino/data-gateway/internal/store/mongo"
	"github.com/urfave/cli/v3"
)

// Command returns the migrate sub-command.
func Command() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the document-store collections and indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Sources:  cli.EnvVars("DATA_GATEWAY_DB_URL"),
				Usage:    "MongoDB connection URL",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "db-name",
				Sources: cli.EnvVars("DATA_GATEWAY_DB_NAME"),
				Usage:   "Logical database name",
				Value:   config.DefaultConfig().DBName,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := config.DefaultConfig()
			cfg.DBURL = cmd.String("db-url")
			cfg.DBName = cmd.String("db-name")
			cfg.MigrateAtStart = true

			log.Info("Running migration", "database", cfg.ResolvedDBName())
			ds, err := gatewaymongo.Connect(config.WithContext(ctx, &cfg))
			if err != nil {
				return err
			}
			defer ds.Close(ctx)

			log.Info("Migration completed successfully")
			return nil
		},
	}
}
