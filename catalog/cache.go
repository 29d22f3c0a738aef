package catalog

import (
	"strings"

	"github.com/brimdata/sqlsem/types"
	arc "github.com/hashicorp/golang-lru/arc/v2"
)

// Cached is a Reader that remembers the results of table and type lookups
// made through an underlying Reader, including misses.
type Cached struct {
	Reader
	tables *arc.ARCCache[string, Table]
	types  *arc.ARCCache[string, *types.Type]
}

// NewCached wraps r with adaptive replacement caches holding up to size
// tables and size named types.
func NewCached(r Reader, size int) (*Cached, error) {
	tables, err := arc.NewARC[string, Table](size)
	if err != nil {
		return nil, err
	}
	typs, err := arc.NewARC[string, *types.Type](size)
	if err != nil {
		return nil, err
	}
	return &Cached{Reader: r, tables: tables, types: typs}, nil
}

func cacheKey(names []string) string {
	return strings.Join(names, "\x00")
}

func (c *Cached) Table(names []string) (Table, error) {
	key := cacheKey(names)
	if t, ok := c.tables.Get(key); ok {
		return t, nil
	}
	t, err := c.Reader.Table(names)
	if err != nil {
		return nil, err
	}
	c.tables.Add(key, t)
	return t, nil
}

func (c *Cached) NamedType(names []string) (*types.Type, error) {
	key := cacheKey(names)
	if t, ok := c.types.Get(key); ok {
		return t, nil
	}
	t, err := c.Reader.NamedType(names)
	if err != nil {
		return nil, err
	}
	c.types.Add(key, t)
	return t, nil
}

// Purge empties the caches.
func (c *Cached) Purge() {
	c.tables.Purge()
	c.types.Purge()
}
