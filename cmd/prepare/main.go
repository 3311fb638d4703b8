// Command prepare downloads the Titanic passenger list, cleans it and
// writes titanic.csv to the working directory.
//
// It takes no arguments. Logging and the optional warehouse export are
// configured through the environment (see internal/config).
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/JonMunkholm/titanicprep/internal/config"
	"github.com/JonMunkholm/titanicprep/internal/dataset"
	"github.com/JonMunkholm/titanicprep/internal/logging"
	"github.com/JonMunkholm/titanicprep/internal/report"
	"github.com/JonMunkholm/titanicprep/internal/warehouse"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("prepare failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// A missing .env file is normal
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	if envErr == nil {
		slog.Debug("loaded .env file")
	}

	preparer := dataset.NewPreparer()

	if cfg.Database.ExportEnabled() {
		pool, err := warehouse.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()
		preparer.Exporter = warehouse.New(pool, cfg.Database.Table)
		slog.Info("warehouse export enabled", "table", cfg.Database.Table)
	}

	res, err := preparer.Run(ctx)
	if err != nil {
		return err
	}

	summary := report.Summarize(res.Table)
	slog.Info("prepare complete",
		"run_id", res.RunID.String(),
		"rows", res.Rows,
		"cabin_missing", summary.Missing(dataset.CabinColumn),
		"path", res.OutputPath,
		"duration_ms", res.Duration.Milliseconds(),
	)

	return report.Render(os.Stdout, summary)
}
