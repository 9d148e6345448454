// Package core implements the batch pipeline: clean, format, import,
// export, and reset stages over registered entity definitions. It has no
// storage-engine or CLI dependencies; persistence sits behind the Store
// interface and each stage works on full snapshots.
package core

import "context"

// Row is a single record keyed by column name. All pipeline stages pass
// plain rows; typed conversion happens only at the store boundary.
type Row map[string]string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FieldSpec names a raw column and the normalizer applied to it during
// the clean stage.
type FieldSpec struct {
	Name       string
	Normalizer func(string) string
}

// KeyFunc derives an identity string from a row. Used for intra-batch
// dedup, natural-key conflict skipping, and full-tuple identity.
type KeyFunc func(Row) string

// RefPolicy decides what happens to a dependent row whose parent key
// cannot be resolved at load time.
type RefPolicy int

const (
	// RefDrop discards the row entirely (orders, reviews).
	RefDrop RefPolicy = iota
	// RefReassign substitutes the first loaded parent key (books).
	RefReassign
)

// RefSpec declares a foreign natural-key column and its resolution
// policy.
type RefSpec struct {
	Column    string // column holding the parent's natural key
	Parent    string // parent entity key in the registry
	ParentKey string // column holding the natural key in parent rows
	OnMissing RefPolicy
}

// ReadRawFunc reads a raw input file into rows. Entities backed by plain
// CSV leave it nil and get the default CSV reader.
type ReadRawFunc func(path string) ([]Row, error)

// EntityInfo carries identification and file naming for one entity kind.
type EntityInfo struct {
	Key     string // "customers"
	Family  string // "commerce"
	Label   string // "Customers"
	RawFile string // file name under the raw directory
}

// EntityDefinition contains everything the pipeline needs to process one
// entity kind. Registration order within a family is dependency order:
// parents first, so import walks it forward and reset walks it backward.
type EntityDefinition struct {
	Info    EntityInfo
	ReadRaw ReadRawFunc

	// Clean stage.
	Fields       []FieldSpec
	Derive       func(Row) Row // optional row derivation after field normalization
	Mandatory    []string      // row dropped when any of these is empty
	DedupKey     KeyFunc       // intra-batch dedup, first occurrence wins
	CleanColumns []string      // header of the cleaned file

	// Format stage.
	Columns     []string // final ordered column set
	DecimalCols []string // canonicalized to two fractional digits

	// Load stage.
	NaturalKey KeyFunc // nil for entities identified only by full tuple
	TupleKey   KeyFunc // nil unless full-tuple identity applies
	Refs       []RefSpec

	// Export stage.
	ExportColumns []string
}

// Store is the record store boundary. Implementations must treat Insert
// as conflict-skipping: rows violating a natural-key constraint are
// silently not inserted and excluded from the returned count.
type Store interface {
	// Keys returns the set of natural keys currently stored for entity.
	Keys(ctx context.Context, entity string) (map[string]bool, error)
	// Insert bulk-inserts rows, skipping conflicts, and returns the
	// number actually inserted. A row either fully inserts or is skipped.
	Insert(ctx context.Context, entity string, rows []Row) (int, error)
	// List returns all stored rows with foreign keys resolved to their
	// natural-key form, in insertion order.
	List(ctx context.Context, entity string) ([]Row, error)
	// DeleteAll removes every row of the entity.
	DeleteAll(ctx context.Context, entity string) error
}

// Dirs holds the pipeline's file-system layout.
type Dirs struct {
	Raw       string
	Cleaned   string
	Formatted string
	Exports   string
}

// CleanStats summarizes one entity's clean stage.
type CleanStats struct {
	Entity    string
	Processed int
	Dropped   int // failed a mandatory-field check
	Deduped   int // later duplicate of an already-kept key
	Kept      int
}

// FormatStats summarizes one entity's format stage.
type FormatStats struct {
	Entity string
	Rows   int
}

// LoadStats summarizes one entity's import stage.
type LoadStats struct {
	Entity     string
	Processed  int
	Inserted   int
	Skipped    int // natural key or tuple already present
	DroppedRef int // parent key unresolved, drop policy
	Reassigned int // parent key unresolved, reassign policy
}

// ExportStats summarizes one entity's export stage.
type ExportStats struct {
	Entity string
	Rows   int
}

func cleanedFile(key string) string   { return key + "_cleaned.csv" }
func formattedFile(key string) string { return key + "_formatted.csv" }
func exportFile(key string) string    { return key + "_export.csv" }
