package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/lamkw/datapipe/internal/core"
	"github.com/lamkw/datapipe/internal/store/postgres"
)

var importCmd = &cobra.Command{
	Use:     "import",
	Aliases: []string{"load"},
	Short:   "Load formatted files into the record store idempotently",
	Long: `Reads the family's formatted files and bulk-inserts them in
dependency order. Records whose natural key or full tuple already
exists are skipped; dependent records with unresolvable parents are
dropped or reassigned per entity policy. Re-running the same import is
a no-op.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := runLogger("import")

		st, pool, err := openStore(ctx, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		_, err = core.ImportFamily(ctx, cfg.Data.Dirs(), st, family, logger)
		return err
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Snapshot the store contents to export files",
	Long: `Reads the family's full store contents, resolves foreign keys to
their natural-key form, and writes one export file per entity kind.
Read-only with respect to the store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := runLogger("export")

		st, pool, err := openStore(ctx, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		_, err = core.ExportFamily(ctx, cfg.Data.Dirs(), st, family, logger)
		return err
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all stored rows of a family",
	Long: `Deletes every stored row of the family, children before parents so
reference constraints hold. This is the pipeline's only destructive
operation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := runLogger("reset")

		st, pool, err := openStore(ctx, logger)
		if err != nil {
			return err
		}
		defer pool.Close()

		return core.Reset(ctx, st, family, logger)
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
}

// openStore connects the pgx pool from config, verifies the connection,
// and ensures the schema exists.
func openStore(ctx context.Context, logger *slog.Logger) (*postgres.Store, *pgxpool.Pool, error) {
	if err := cfg.Database.RequireURL(); err != nil {
		return nil, nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing database URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxConns)
	poolCfg.MinConns = int32(cfg.Database.MinConns)
	poolCfg.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	st := postgres.New(pool)
	if err := st.Bootstrap(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	logger.Debug("store ready", "max_conns", cfg.Database.MaxConns)
	return st, pool, nil
}
