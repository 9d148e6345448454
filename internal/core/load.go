package core

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/lamkw/datapipe/internal/csv"
)

// Import runs the load stage for one entity: resolve foreign natural
// keys against the store, apply the per-entity conflict policy, and
// bulk-insert the surviving rows. Re-running the same batch against the
// same store is a no-op.
//
// The lookup-then-insert sequence assumes a single writer; concurrent
// pipeline runs against one store are not supported.
func Import(ctx context.Context, dirs Dirs, st Store, def EntityDefinition, logger *slog.Logger) (LoadStats, error) {
	stats := LoadStats{Entity: def.Info.Key}

	inPath := filepath.Join(dirs.Formatted, formattedFile(def.Info.Key))
	_, maps, err := csv.ReadRows(inPath)
	if err != nil {
		return stats, missingInput(inPath, err)
	}
	stats.Processed = len(maps)

	rows := make([]Row, len(maps))
	for i, m := range maps {
		rows[i] = Row(m)
	}

	rows, err = resolveRefs(ctx, st, def, rows, &stats)
	if err != nil {
		return stats, err
	}

	rows, err = filterConflicts(ctx, st, def, rows, &stats)
	if err != nil {
		return stats, err
	}

	inserted, err := st.Insert(ctx, def.Info.Key, rows)
	if err != nil {
		return stats, fmt.Errorf("inserting %s: %w", def.Info.Key, err)
	}
	stats.Inserted = inserted
	// Conflicts the store caught that the pre-checks did not.
	stats.Skipped += len(rows) - inserted

	logger.Info("import complete",
		"entity", def.Info.Key,
		"processed", stats.Processed,
		"inserted", stats.Inserted,
		"skipped", stats.Skipped,
		"dropped_ref", stats.DroppedRef,
		"reassigned", stats.Reassigned,
	)
	return stats, nil
}

// resolveRefs applies each RefSpec: rows whose parent key is unknown are
// dropped or reassigned to the first loaded parent, per policy.
func resolveRefs(ctx context.Context, st Store, def EntityDefinition, rows []Row, stats *LoadStats) ([]Row, error) {
	for _, ref := range def.Refs {
		known, err := st.Keys(ctx, ref.Parent)
		if err != nil {
			return nil, fmt.Errorf("fetching %s keys: %w", ref.Parent, err)
		}

		fallback := ""
		if ref.OnMissing == RefReassign {
			fallback, err = firstParentKey(ctx, st, ref)
			if err != nil {
				return nil, err
			}
		}

		kept := rows[:0]
		for _, row := range rows {
			if known[row[ref.Column]] {
				kept = append(kept, row)
				continue
			}
			switch ref.OnMissing {
			case RefReassign:
				if fallback != "" {
					row[ref.Column] = fallback
					stats.Reassigned++
					kept = append(kept, row)
					continue
				}
				// No parent exists at all; nothing to reassign to.
				stats.DroppedRef++
			case RefDrop:
				stats.DroppedRef++
			}
		}
		rows = kept
	}
	return rows, nil
}

// firstParentKey returns the natural key of the first stored parent row,
// or "" when the parent table is empty.
func firstParentKey(ctx context.Context, st Store, ref RefSpec) (string, error) {
	parents, err := st.List(ctx, ref.Parent)
	if err != nil {
		return "", fmt.Errorf("listing %s for fallback: %w", ref.Parent, err)
	}
	if len(parents) == 0 {
		return "", nil
	}
	return parents[0][ref.ParentKey], nil
}

// filterConflicts removes rows already present in the store, by natural
// key or by full-tuple identity, and guards against repeats within the
// batch itself.
func filterConflicts(ctx context.Context, st Store, def EntityDefinition, rows []Row, stats *LoadStats) ([]Row, error) {
	if def.NaturalKey != nil {
		existing, err := st.Keys(ctx, def.Info.Key)
		if err != nil {
			return nil, fmt.Errorf("fetching %s keys: %w", def.Info.Key, err)
		}
		kept := rows[:0]
		for _, row := range rows {
			key := def.NaturalKey(row)
			if existing[key] {
				stats.Skipped++
				continue
			}
			existing[key] = true
			kept = append(kept, row)
		}
		rows = kept
	}

	if def.TupleKey != nil {
		stored, err := st.List(ctx, def.Info.Key)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", def.Info.Key, err)
		}
		existing := make(map[string]bool, len(stored))
		for _, row := range stored {
			existing[def.TupleKey(row)] = true
		}
		kept := rows[:0]
		for _, row := range rows {
			key := def.TupleKey(row)
			if existing[key] {
				stats.Skipped++
				continue
			}
			existing[key] = true
			kept = append(kept, row)
		}
		rows = kept
	}

	return rows, nil
}
