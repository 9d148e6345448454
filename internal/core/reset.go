package core

import (
	"context"
	"fmt"
	"log/slog"
)

// Reset deletes all rows of a family, children before parents, so that
// reference constraints hold throughout. This is the pipeline's only
// destructive operation.
func Reset(ctx context.Context, st Store, family string, logger *slog.Logger) error {
	defs := ByFamily(family)
	if len(defs) == 0 {
		return fmt.Errorf("unknown family: %s", family)
	}

	for i := len(defs) - 1; i >= 0; i-- {
		key := defs[i].Info.Key
		if err := st.DeleteAll(ctx, key); err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
		logger.Info("table cleared", "entity", key)
	}
	return nil
}
