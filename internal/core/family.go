package core

import (
	"context"
	"fmt"
	"log/slog"
)

// familyDefs returns a family's definitions or an error naming the
// unknown family.
func familyDefs(family string) ([]EntityDefinition, error) {
	defs := ByFamily(family)
	if len(defs) == 0 {
		return nil, fmt.Errorf("unknown family: %s", family)
	}
	return defs, nil
}

// CleanFamily cleans every entity of a family.
func CleanFamily(dirs Dirs, family string, logger *slog.Logger) ([]CleanStats, error) {
	defs, err := familyDefs(family)
	if err != nil {
		return nil, err
	}
	out := make([]CleanStats, 0, len(defs))
	for _, def := range defs {
		stats, err := Clean(dirs, def, logger)
		if err != nil {
			return out, err
		}
		out = append(out, stats)
	}
	return out, nil
}

// FormatFamily formats every entity of a family.
func FormatFamily(dirs Dirs, family string, logger *slog.Logger) ([]FormatStats, error) {
	defs, err := familyDefs(family)
	if err != nil {
		return nil, err
	}
	out := make([]FormatStats, 0, len(defs))
	for _, def := range defs {
		stats, err := Format(dirs, def, logger)
		if err != nil {
			return out, err
		}
		out = append(out, stats)
	}
	return out, nil
}

// ImportFamily loads every entity of a family in dependency order, so
// dependents resolve against parents loaded in the same run.
func ImportFamily(ctx context.Context, dirs Dirs, st Store, family string, logger *slog.Logger) ([]LoadStats, error) {
	defs, err := familyDefs(family)
	if err != nil {
		return nil, err
	}
	out := make([]LoadStats, 0, len(defs))
	for _, def := range defs {
		stats, err := Import(ctx, dirs, st, def, logger)
		if err != nil {
			return out, err
		}
		out = append(out, stats)
	}
	return out, nil
}

// ExportFamily snapshots every entity of a family.
func ExportFamily(ctx context.Context, dirs Dirs, st Store, family string, logger *slog.Logger) ([]ExportStats, error) {
	defs, err := familyDefs(family)
	if err != nil {
		return nil, err
	}
	out := make([]ExportStats, 0, len(defs))
	for _, def := range defs {
		stats, err := Export(ctx, dirs, st, def, logger)
		if err != nil {
			return out, err
		}
		out = append(out, stats)
	}
	return out, nil
}
