// Command klinika runs the multi-clinic veterinary practice API.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/erazemk/klinika/internal/config"
	"github.com/erazemk/klinika/internal/logging"
	"github.com/erazemk/klinika/internal/requestid"
	"github.com/erazemk/klinika/internal/tenant"
)

var (
	version = "dev"
	cli     struct {
		EnvFile string `name:"env-file" type:"path" help:"Load variables from this file instead of ./.env."`
		DB      string `short:"d" help:"SQLite database path (overrides KLINIKA_DB)."`
		Log     string `short:"l" help:"Also write logs to this file (overrides KLINIKA_LOG)."`
		Version kong.VersionFlag

		Serve   serveCmd   `cmd:"" default:"withargs" help:"Run the API server (default)."`
		Init    initCmd    `cmd:"" help:"Create a database with a first clinic and its administrator."`
		Migrate migrateCmd `cmd:"" help:"Apply pending database migrations."`
	}
)

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("klinika"),
		kong.Description("Multi-clinic veterinary practice API."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	cfg, err := config.Load(cli.EnvFile)
	kctx.FatalIfErrorf(err)
	if cli.DB != "" {
		cfg.DB = cli.DB
	}
	if cli.Log != "" {
		cfg.Log = cli.Log
	}

	// INFO/WARN go to stdout, ERROR to stderr, and everything to the log
	// file if one is configured.
	closeLog, err := logging.Setup(cfg.Log, requestid.LoggerExtractor(), tenant.LoggerExtractor())
	kctx.FatalIfErrorf(err)

	err = kctx.Run(cfg)
	closeLog()
	if err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}
