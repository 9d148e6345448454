package core

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lamkw/datapipe/internal/csv"
)

// Clean runs the clean stage for one entity: read the raw batch, apply
// field normalizers and derivations, drop rows failing mandatory-field
// checks, and deduplicate first-occurrence-wins. The surviving rows are
// written to the cleaned file.
func Clean(dirs Dirs, def EntityDefinition, logger *slog.Logger) (CleanStats, error) {
	stats := CleanStats{Entity: def.Info.Key}

	rawPath := filepath.Join(dirs.Raw, def.Info.RawFile)
	rows, err := readRaw(def, rawPath)
	if err != nil {
		return stats, err
	}
	stats.Processed = len(rows)

	seen := make(map[string]bool)
	kept := make([]Row, 0, len(rows))

rowLoop:
	for _, row := range rows {
		row = row.Clone()
		for _, spec := range def.Fields {
			if spec.Normalizer != nil {
				row[spec.Name] = spec.Normalizer(row[spec.Name])
			}
		}
		if def.Derive != nil {
			row = def.Derive(row)
		}

		for _, col := range def.Mandatory {
			if row[col] == "" {
				stats.Dropped++
				continue rowLoop
			}
		}

		if def.DedupKey != nil {
			key := def.DedupKey(row)
			if seen[key] {
				stats.Deduped++
				continue
			}
			seen[key] = true
		}
		kept = append(kept, row)
	}
	stats.Kept = len(kept)

	outPath := filepath.Join(dirs.Cleaned, cleanedFile(def.Info.Key))
	if err := csv.Write(outPath, def.CleanColumns, rowMaps(kept)); err != nil {
		return stats, fmt.Errorf("writing cleaned %s: %w", def.Info.Key, err)
	}

	logger.Info("clean complete",
		"entity", def.Info.Key,
		"processed", stats.Processed,
		"dropped", stats.Dropped,
		"deduped", stats.Deduped,
		"kept", stats.Kept,
	)
	return stats, nil
}

// readRaw dispatches to the entity's raw reader, defaulting to CSV.
func readRaw(def EntityDefinition, path string) ([]Row, error) {
	if def.ReadRaw != nil {
		rows, err := def.ReadRaw(path)
		if err != nil {
			return nil, missingInput(path, err)
		}
		return rows, nil
	}

	_, maps, err := csv.ReadRows(path)
	if err != nil {
		return nil, missingInput(path, err)
	}
	rows := make([]Row, len(maps))
	for i, m := range maps {
		rows[i] = Row(m)
	}
	return rows, nil
}

func rowMaps(rows []Row) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, r := range rows {
		out[i] = map[string]string(r)
	}
	return out
}
