// Package catalog defines the catalog capability consumed by the
// validator and provides an in-memory implementation loaded from YAML.
package catalog

//go:generate go tool mockgen -destination=mock/mock.go -package=mock . Reader

import (
	"github.com/brimdata/sqlsem/types"
)

// Table is a relation known to a catalog.
type Table interface {
	// QualifiedName returns the fully-qualified name, e.g. [SALES EMP].
	QualifiedName() []string
	// RowType returns the record type of the table's rows.
	RowType() *types.Type
	// Monotonic reports whether the named column is monotonic across
	// the table's rows.
	Monotonic(column string) bool
}

// Reader resolves names against a catalog.  Lookups of absent objects
// return nil with a nil error; an error reports a failure of the catalog
// itself.
type Reader interface {
	Table(names []string) (Table, error)
	NamedType(names []string) (*types.Type, error)
	// SchemaObjects lists the names of objects directly below the
	// partially-qualified name prefix.  An empty prefix lists the
	// top-level objects.
	SchemaObjects(prefix []string) ([]string, error)
}
