package catalog

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/brimdata/sqlsem/collation"
	"github.com/brimdata/sqlsem/types"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Document is the YAML form of an in-memory catalog.
type Document struct {
	// DefaultSchema qualifies one-part table names.
	DefaultSchema string   `yaml:"default_schema"`
	Schemas       []Schema `yaml:"schemas"`
}

type Schema struct {
	Name   string      `yaml:"name"`
	Tables []TableSpec `yaml:"tables"`
	Types  []Column    `yaml:"types"`
}

type TableSpec struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

// Column describes a column or, within Schema.Types, a named type.
type Column struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Precision *int   `yaml:"precision"`
	Scale     int    `yaml:"scale"`
	Nullable  *bool  `yaml:"nullable"`
	Collation string `yaml:"collation"`
	Monotonic bool   `yaml:"monotonic"`
}

// Option configures a Memory catalog.
type Option func(*Memory)

// CaseInsensitive makes name lookups ignore case.
func CaseInsensitive() Option {
	return func(m *Memory) {
		m.fold = true
	}
}

// Memory is a Reader over a fixed set of schemas.
type Memory struct {
	defaultSchema string
	schemas       []string
	tables        map[string]*memTable
	types         map[string]*types.Type
	children      map[string][]string
	fold          bool
}

type memTable struct {
	names     []string
	row       *types.Type
	monotonic map[string]bool
}

func (t *memTable) QualifiedName() []string {
	return t.names
}

func (t *memTable) RowType() *types.Type {
	return t.row
}

func (t *memTable) Monotonic(column string) bool {
	return t.monotonic[column]
}

// Load reads a YAML catalog document from path.
func Load(f *types.Factory, path string, opts ...Option) (*Memory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(f, b, opts...)
}

// Parse builds a catalog from YAML text.
func Parse(f *types.Factory, text []byte, opts ...Option) (*Memory, error) {
	var doc Document
	if err := yaml.Unmarshal(text, &doc); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return New(f, doc, opts...)
}

// New builds a catalog from a document.
func New(f *types.Factory, doc Document, opts ...Option) (*Memory, error) {
	m := &Memory{
		defaultSchema: doc.DefaultSchema,
		tables:        make(map[string]*memTable),
		types:         make(map[string]*types.Type),
		children:      make(map[string][]string),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, schema := range doc.Schemas {
		m.schemas = append(m.schemas, schema.Name)
		m.children[""] = append(m.children[""], schema.Name)
		for _, spec := range schema.Tables {
			names := []string{schema.Name, spec.Name}
			key := m.key(names)
			if _, ok := m.tables[key]; ok {
				return nil, fmt.Errorf("catalog: duplicate table %s.%s", schema.Name, spec.Name)
			}
			t := &memTable{names: names, monotonic: make(map[string]bool)}
			var fields []types.Field
			for _, col := range spec.Columns {
				typ, err := col.resolve(f)
				if err != nil {
					return nil, fmt.Errorf("catalog: table %s.%s: %w", schema.Name, spec.Name, err)
				}
				if col.Collation == "" && typ.IsChar() {
					typ = f.WithCollation(typ, collation.Default(collation.Implicit))
				}
				fields = append(fields, types.Field{Name: col.Name, Type: typ})
				if col.Monotonic {
					t.monotonic[col.Name] = true
				}
			}
			t.row = f.Row(fields)
			m.tables[key] = t
			m.children[m.key(names[:1])] = append(m.children[m.key(names[:1])], spec.Name)
		}
		for _, spec := range schema.Types {
			typ, err := spec.resolve(f)
			if err != nil {
				return nil, fmt.Errorf("catalog: type %s.%s: %w", schema.Name, spec.Name, err)
			}
			m.types[m.key([]string{schema.Name, spec.Name})] = typ
		}
	}
	return m, nil
}

func (c Column) resolve(f *types.Factory) (*types.Type, error) {
	name, ok := types.LookupName(c.Type)
	if !ok {
		return nil, fmt.Errorf("column %s: unknown type %q", c.Name, c.Type)
	}
	prec := name.DefaultPrecision()
	if c.Precision != nil {
		prec = *c.Precision
	}
	var typ *types.Type
	switch {
	case name == types.Decimal:
		typ = f.Decimal(prec, c.Scale)
	case c.Collation != "":
		coll, err := collation.New(c.Collation, collation.Implicit)
		if err != nil {
			return nil, err
		}
		if name != types.Char && name != types.Varchar {
			return nil, fmt.Errorf("column %s: collation on non-character type %s", c.Name, name)
		}
		typ = f.Char(name, prec, coll)
	default:
		typ = f.SqlPrecision(name, prec)
	}
	nullable := true
	if c.Nullable != nil {
		nullable = *c.Nullable
	}
	return f.Nullable(typ, nullable), nil
}

// key returns the map key of a qualified name.  When folding, names are
// NFC-normalized and Unicode case-folded, as the validator matches them.
func (m *Memory) key(names []string) string {
	if !m.fold {
		return strings.Join(names, ".")
	}
	// A Caser is stateful and the catalog is shared between goroutines.
	fold := cases.Fold()
	folded := make([]string, len(names))
	for k, name := range names {
		folded[k] = fold.String(norm.NFC.String(name))
	}
	return strings.Join(folded, ".")
}

// qualify prefixes one-part names with the default schema.
func (m *Memory) qualify(names []string) []string {
	if len(names) == 1 && m.defaultSchema != "" {
		return []string{m.defaultSchema, names[0]}
	}
	return names
}

func (m *Memory) Table(names []string) (Table, error) {
	if t, ok := m.tables[m.key(m.qualify(names))]; ok {
		return t, nil
	}
	return nil, nil
}

func (m *Memory) NamedType(names []string) (*types.Type, error) {
	return m.types[m.key(m.qualify(names))], nil
}

func (m *Memory) SchemaObjects(prefix []string) ([]string, error) {
	var out []string
	if len(prefix) == 0 && m.defaultSchema != "" {
		out = append(out, m.children[m.key([]string{m.defaultSchema})]...)
	}
	out = append(out, m.children[m.key(prefix)]...)
	slices.Sort(out)
	return slices.Compact(out), nil
}
