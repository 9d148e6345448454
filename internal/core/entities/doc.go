// Package entities registers the entity definitions for both pipeline
// families with the core registry. Import it for side effects:
//
//	import _ "github.com/lamkw/datapipe/internal/core/entities"
//
// Registration order within each file is dependency order (parents
// first); import and reset rely on it.
package entities
