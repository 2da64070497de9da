package cleanup

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/chirino/data-gateway/internal/config"
	"github.com/chirino/data-gateway/internal/observe"
	storemetrics "github.com/chirino/data-gateway/internal/store/metrics"
	gatewaymongo "github.com/chirino/data-gateway/internal/store/mongo"
	"github.com/urfave/cli/v3"
)

// Command returns the cleanup sub-command.
func Command() *cli.Command {
	cfg := config.DefaultConfig()
	return &cli.Command{
		Name:  "cleanup",
		Usage: "Delete documents older than the retention horizon from every collection",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "db-url",
				Sources:     cli.EnvVars("DATA_GATEWAY_DB_URL"),
				Destination: &cfg.DBURL,
				Usage:       "MongoDB connection URL",
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "db-name",
				Sources:     cli.EnvVars("DATA_GATEWAY_DB_NAME"),
				Destination: &cfg.DBName,
				Value:       cfg.DBName,
				Usage:       "Logical database name",
			},
			&cli.IntFlag{
				Name:        "retention-days",
				Sources:     cli.EnvVars("DATA_GATEWAY_RETENTION_DAYS"),
				Destination: &cfg.RetentionDays,
				Value:       cfg.RetentionDays,
				Usage:       "Retention horizon in days",
			},
			&cli.StringFlag{
				Name:        "metrics-labels",
				Sources:     cli.EnvVars("DATA_GATEWAY_METRICS_LABELS"),
				Destination: &cfg.MetricsLabels,
				Value:       cfg.MetricsLabels,
				Usage:       "Constant key=value labels added to all metrics",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			labels, err := observe.ParseMetricsLabels(cfg.MetricsLabels)
			if err != nil {
				return err
			}
			observe.InitMetrics(labels)

			ctx = config.WithContext(ctx, &cfg)
			ds, err := gatewaymongo.Connect(ctx)
			if err != nil {
				return err
			}
			defer ds.Close(ctx)

			report, err := storemetrics.Wrap(ds).Cleanup(ctx, cfg.RetentionDays)
			if err != nil {
				return err
			}
			var total int64
			for _, n := range report {
				total += n
			}
			log.Info("Cleanup completed", "retentionDays", cfg.RetentionDays, "deleted", total)
			return nil
		},
	}
}
