// Package cmd provides the maintenance subcommands of catalog-server.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"go.uber.org/zap"

	"sgci.io/catalog/internal/config"
	"sgci.io/catalog/internal/logging"
	"sgci.io/catalog/internal/store"
)

const utilUsage = `util command requires a subcommand

Available subcommands:
  load-data         Load sgciResources data files into the store
  verify-resources  Report stored documents that do not map to a resource
  compact-db        Compact and optimize database`

// ExecuteUtil runs a utility command with the given arguments.
func ExecuteUtil(args []string) error {
	if len(args) < 1 {
		return errors.New(utilUsage)
	}

	subcommand := args[0]
	subArgs := args[1:]

	switch subcommand {
	case "load-data":
		return ExecuteLoadData(subArgs)
	case "verify-resources":
		return ExecuteVerifyResources(subArgs)
	case "compact-db":
		return ExecuteCompactDB(subArgs)
	default:
		return fmt.Errorf("unknown util subcommand: %s", subcommand)
	}
}

// commonFlags registers the flags every subcommand shares.
type commonFlags struct {
	dbPath  string
	verbose bool
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.dbPath, "db", config.EnvOr("DB_PATH", config.DefaultDatabasePath), "Path to SQLite database")
	fs.BoolVar(&c.verbose, "verbose", false, "Enable verbose output")
}

func (c *commonFlags) logger() (*zap.Logger, error) {
	cfg := logging.DefaultConfig()
	cfg.Format = logging.FormatConsole
	if c.verbose {
		cfg.Level = "debug"
	}
	return logging.NewLogger(cfg)
}

func (c *commonFlags) open(ctx context.Context, logger *zap.Logger) (*store.SQLiteStore, error) {
	st, err := store.Open(ctx, c.dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return st, nil
}
