package operator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/brimdata/sqlsem/types"
)

// Catalog is a registry of operators keyed by name and syntax.  A name
// may map to several overloads.
type Catalog struct {
	types  *types.Factory
	byName map[string][]*Operator
	byKind map[Kind]*Operator
	all    []*Operator
}

func NewCatalog(f *types.Factory) *Catalog {
	return &Catalog{
		types:  f,
		byName: make(map[string][]*Operator),
		byKind: make(map[Kind]*Operator),
	}
}

func (c *Catalog) Types() *types.Factory {
	return c.types
}

// Register adds op to the catalog.
func (c *Catalog) Register(op *Operator) error {
	if err := op.validate(); err != nil {
		return err
	}
	key := strings.ToUpper(op.Name)
	for _, existing := range c.byName[key] {
		if existing.Syntax == op.Syntax && sameCount(existing.Count, op.Count) && existing.Checker == nil && op.Checker == nil {
			return fmt.Errorf("operator %s (%s) already registered", op.Name, op.Syntax)
		}
	}
	c.byName[key] = append(c.byName[key], op)
	if _, ok := c.byKind[op.Kind]; !ok {
		c.byKind[op.Kind] = op
	}
	c.all = append(c.all, op)
	return nil
}

func sameCount(a, b OperandCount) bool {
	return a.Min == b.Min && a.Max == b.Max && len(a.Set) == 0 && len(b.Set) == 0
}

func (c *Catalog) mustRegister(ops ...*Operator) {
	for _, op := range ops {
		if err := c.Register(op); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the overloads of name with a compatible syntax.  Function
// lookups also match FunctionID operators and vice versa.
func (c *Catalog) Lookup(name string, syntax Syntax) []*Operator {
	var out []*Operator
	for _, op := range c.byName[strings.ToUpper(name)] {
		if op.Syntax == syntax || isFunctionSyntax(op.Syntax) && isFunctionSyntax(syntax) {
			out = append(out, op)
		}
	}
	return out
}

func isFunctionSyntax(s Syntax) bool {
	return s == FunctionSyntax || s == FunctionID
}

// LookupAny returns the overloads of name regardless of syntax.
func (c *Catalog) LookupAny(name string) []*Operator {
	return c.byName[strings.ToUpper(name)]
}

// ByKind returns the first operator registered with kind k.
func (c *Catalog) ByKind(k Kind) *Operator {
	return c.byKind[k]
}

// MustKind is like ByKind but panics if the kind is not registered.
func (c *Catalog) MustKind(k Kind) *Operator {
	op := c.byKind[k]
	if op == nil {
		panic(fmt.Sprintf("operator catalog has no %s operator", k))
	}
	return op
}

// Operators returns all registered operators in registration order.
func (c *Catalog) Operators() []*Operator {
	return c.all
}

// FunctionNames returns the sorted names of all function-syntax operators.
func (c *Catalog) FunctionNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, op := range c.all {
		if isFunctionSyntax(op.Syntax) && !seen[op.Name] {
			seen[op.Name] = true
			names = append(names, op.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Unresolved returns a placeholder for a function call whose name is not
// yet bound to an overload.  The validator resolves it against a Catalog.
func Unresolved(name string) *Operator {
	return &Operator{Name: strings.ToUpper(name), Kind: Function, Syntax: FunctionSyntax, Count: AtLeast(0), unresolved: true}
}

// IsUnresolved reports whether op was created by Unresolved.
func (o *Operator) IsUnresolved() bool {
	return o.unresolved
}
