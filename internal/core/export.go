package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lamkw/datapipe/internal/csv"
)

// Export snapshots the store contents of one entity to its export file,
// foreign keys in natural-key form. Read-only with respect to the store.
func Export(ctx context.Context, dirs Dirs, st Store, def EntityDefinition, logger *slog.Logger) (ExportStats, error) {
	stats := ExportStats{Entity: def.Info.Key}

	rows, err := st.List(ctx, def.Info.Key)
	if err != nil {
		return stats, fmt.Errorf("listing %s: %w", def.Info.Key, err)
	}
	stats.Rows = len(rows)

	outPath := filepath.Join(dirs.Exports, exportFile(def.Info.Key))
	if err := csv.Write(outPath, def.ExportColumns, rowMaps(rows)); err != nil {
		return stats, fmt.Errorf("writing export %s: %w", def.Info.Key, err)
	}

	logger.Info("export complete", "entity", def.Info.Key, "rows", stats.Rows)
	return stats, nil
}
