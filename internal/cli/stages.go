package cli

import (
	"github.com/spf13/cobra"

	"github.com/lamkw/datapipe/internal/core"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Normalize raw inputs into cleaned files",
	Long: `Reads the family's raw files, applies field normalization and
derivations, drops rows failing mandatory-field checks, deduplicates
first-occurrence-wins, and writes the cleaned files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := runLogger("clean")
		_, err := core.CleanFamily(cfg.Data.Dirs(), family, logger)
		return err
	},
}

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Project cleaned files onto the final load schema",
	Long: `Reads the family's cleaned files, projects them onto the fixed
ordered column set the loader expects, and canonicalizes decimal
columns to two fractional digits. No rows are added or removed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := runLogger("format")
		_, err := core.FormatFamily(cfg.Data.Dirs(), family, logger)
		return err
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(formatCmd)
}
