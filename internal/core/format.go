package core

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lamkw/datapipe/internal/csv"
	"github.com/lamkw/datapipe/internal/normalize"
)

// Format runs the format stage for one entity: project cleaned rows onto
// the final ordered column set and canonicalize decimal columns to
// exactly two fractional digits. No rows are added or removed.
func Format(dirs Dirs, def EntityDefinition, logger *slog.Logger) (FormatStats, error) {
	stats := FormatStats{Entity: def.Info.Key}

	inPath := filepath.Join(dirs.Cleaned, cleanedFile(def.Info.Key))
	_, maps, err := csv.ReadRows(inPath)
	if err != nil {
		return stats, missingInput(inPath, err)
	}

	out := make([]map[string]string, len(maps))
	for i, m := range maps {
		row := make(map[string]string, len(def.Columns))
		for _, col := range def.Columns {
			row[col] = m[col]
		}
		for _, col := range def.DecimalCols {
			row[col] = normalize.Decimal(row[col])
		}
		out[i] = row
	}
	stats.Rows = len(out)

	outPath := filepath.Join(dirs.Formatted, formattedFile(def.Info.Key))
	if err := csv.Write(outPath, def.Columns, out); err != nil {
		return stats, fmt.Errorf("writing formatted %s: %w", def.Info.Key, err)
	}

	logger.Info("format complete", "entity", def.Info.Key, "rows", stats.Rows)
	return stats, nil
}
