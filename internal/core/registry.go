package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]EntityDefinition)
	families   = make(map[string][]string) // family -> entity keys, dependency order
	registryMu sync.RWMutex
)

// Register adds an entity definition to the registry. Registration order
// within a family is significant: parents must be registered before
// their dependents. Panics on a duplicate key.
func Register(def EntityDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	key := def.Info.Key
	if _, exists := registry[key]; exists {
		panic(fmt.Sprintf("entity already registered: %s", key))
	}
	if len(def.ExportColumns) == 0 {
		def.ExportColumns = def.Columns
	}
	if len(def.CleanColumns) == 0 {
		def.CleanColumns = def.Columns
	}

	registry[key] = def
	families[def.Info.Family] = append(families[def.Info.Family], key)
}

// Get returns an entity definition by key.
func Get(key string) (EntityDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[key]
	return def, ok
}

// ByFamily returns a family's entity definitions in dependency order
// (parents before children).
func ByFamily(family string) []EntityDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	keys := families[family]
	defs := make([]EntityDefinition, 0, len(keys))
	for _, k := range keys {
		defs = append(defs, registry[k])
	}
	return defs
}

// Families returns all registered family names, sorted.
func Families() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(families))
	for f := range families {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// EntityCount returns the number of registered entities.
func EntityCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered entities. Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]EntityDefinition)
	families = make(map[string][]string)
}
