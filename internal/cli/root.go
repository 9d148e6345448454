// Package cli wires the pipeline stages to a cobra command surface:
// clean, format, import, export, and reset, each operating on one
// entity family per invocation.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lamkw/datapipe/internal/config"
	"github.com/lamkw/datapipe/internal/core"
	"github.com/lamkw/datapipe/internal/logging"
)

var (
	cfg    *config.Config
	family string
)

var rootCmd = &cobra.Command{
	Use:   "datapipe [command]",
	Short: "Batch pipeline: clean, format, import, and export entity feeds",
	Long: `datapipe normalizes messy raw feeds into canonical flat files and
loads them into the relational store idempotently. Each stage reads a
complete input and writes a complete output; stages can be re-run in
any combination without duplicating stored records.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		slog.Debug("configuration loaded", "config", cfg.String())

		if _, ok := firstFamilyDef(); !ok {
			return fmt.Errorf("unknown family %q (known: %v)", family, core.Families())
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&family, "family", "f", "commerce",
		"entity family to process (commerce or catalog)")
}

// Execute runs the CLI. A failed stage exits non-zero after logging the
// cause; partial-stage output is never left behind silently.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("stage failed", "error", err)
		os.Exit(1)
	}
}

// runLogger builds the logger for one invocation.
func runLogger(command string) *slog.Logger {
	logger := logging.ForRun(uuid.NewString(), command)
	logger.Info("stage starting", "family", family)
	return logger
}

func firstFamilyDef() (core.EntityDefinition, bool) {
	defs := core.ByFamily(family)
	if len(defs) == 0 {
		return core.EntityDefinition{}, false
	}
	return defs[0], true
}
