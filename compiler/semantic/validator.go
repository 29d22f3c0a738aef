// Package semantic validates SQL statement trees: it resolves names,
// derives a type for every expression, checks operator applications and
// enforces the aggregation and windowing rules.
package semantic

import (
	"fmt"
	"sort"
	"time"

	"github.com/brimdata/sqlsem/catalog"
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/compiler/sexpr"
	"github.com/brimdata/sqlsem/types"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Validator validates statements against a catalog.  A Validator handles
// one statement at a time.
type Validator struct {
	catalog catalog.Reader
	ops     *operator.Catalog
	types   *types.Factory
	logger  *zap.Logger
	config  Config
	metrics *Metrics
	matcher nameMatcher
	last    *Result
}

// New returns a Validator that resolves tables through reader and
// operators through ops.  Types are created with f, which must be the
// factory of ops.  A nil logger disables logging.
func New(reader catalog.Reader, ops *operator.Catalog, f *types.Factory, logger *zap.Logger, cfg Config) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CatalogCacheSize > 0 {
		if cached, err := catalog.NewCached(reader, cfg.CatalogCacheSize); err == nil {
			reader = cached
		}
	}
	return &Validator{
		catalog: reader,
		ops:     ops,
		types:   f,
		logger:  logger,
		config:  cfg,
		matcher: newNameMatcher(cfg.CaseSensitive),
	}
}

// SetMetrics attaches m to v.  A nil m disables metrics.
func (v *Validator) SetMetrics(m *Metrics) {
	v.metrics = m
}

// Validate rewrites the statement rooted at root into canonical form and
// validates it.  The source tree is not modified; the Result refers to
// the rewritten tree.
func (v *Validator) Validate(tree *ast.Tree, root ast.ID) (*Result, error) {
	start := time.Now()
	res, err := v.validate(tree, root)
	v.metrics.observe(start, err)
	return res, err
}

func (v *Validator) validate(tree *ast.Tree, root ast.ID) (*Result, error) {
	runID := ksuid.New().String()
	logger := v.logger.With(zap.String("run", runID))
	out, newRoot, err := Rewrite(v.ops, tree, root)
	if err != nil {
		return nil, err
	}
	if logger.Core().Enabled(zapcore.DebugLevel) {
		logger.Debug("statement rewritten", zap.String("tree", sexpr.Format(out, newRoot)))
	}
	a := v.newAnalyzer(out, logger)
	if err := a.validateStatement(newRoot); err != nil {
		logger.Debug("validation failed", zap.Error(err))
		return nil, err
	}
	res := &Result{Tree: out, Root: newRoot, RunID: runID, a: a}
	v.last = res
	logger.Debug("statement validated", zap.Stringer("type", res.Type()))
	return res, nil
}

// DeriveType derives the type of expression id of tree in scope, which
// may come from a previous Result.  A nil scope is the empty root scope.
func (v *Validator) DeriveType(scope *Scope, tree *ast.Tree, id ast.ID) (*types.Type, error) {
	a := v.newAnalyzer(tree, v.logger)
	if v.last != nil && v.last.Tree == tree {
		a = v.last.a
	}
	if scope == nil {
		scope = a.root
	}
	if err := a.registerSubqueries(scope, id); err != nil {
		return nil, err
	}
	if err := a.inferUnknownTypes(scope, id, types.Unknown); err != nil {
		return nil, err
	}
	return a.deriveType(scope, id)
}

type analyzer struct {
	*Validator
	tree        *ast.Tree
	logger      *zap.Logger
	root        *Scope
	namespaces  map[ast.ID]*Namespace
	clauses     map[clauseKey]*Scope
	joinScopes  map[ast.ID]*Scope
	exprScopes  map[ast.ID]*Scope
	nodeTypes   map[ast.ID]*types.Type
	qualified   map[ast.ID][]string
	selectLists map[ast.ID][]ast.ID
	overloads   map[ast.ID]*operator.Operator
	likes       map[ast.ID]string
	params      map[int]*types.Type
	frames      map[ast.ID]Frame
	aliases     int
}

func (v *Validator) newAnalyzer(tree *ast.Tree, logger *zap.Logger) *analyzer {
	return &analyzer{
		Validator:   v,
		tree:        tree,
		logger:      logger,
		root:        newScope(RootScope, nil, ast.Nil),
		namespaces:  make(map[ast.ID]*Namespace),
		clauses:     make(map[clauseKey]*Scope),
		joinScopes:  make(map[ast.ID]*Scope),
		exprScopes:  make(map[ast.ID]*Scope),
		nodeTypes:   make(map[ast.ID]*types.Type),
		qualified:   make(map[ast.ID][]string),
		selectLists: make(map[ast.ID][]ast.ID),
		overloads:   make(map[ast.ID]*operator.Operator),
		likes:       make(map[ast.ID]string),
		params:      make(map[int]*types.Type),
		frames:      make(map[ast.ID]Frame),
	}
}

// setType records the type of id.  The unknown type is never recorded.
func (a *analyzer) setType(id ast.ID, t *types.Type) {
	if t.IsUnknown() {
		return
	}
	a.nodeTypes[id] = t
}

func (a *analyzer) validateStatement(root ast.ID) error {
	kind := a.tree.Kind(root)
	switch {
	case kind.IsQuery(), kind == operator.MultisetQuery:
		if err := a.registerQuery(a.root, nil, root, root, "", false); err != nil {
			return err
		}
		return a.validateNamespace(a.namespaces[root], nil)
	case kind.IsDML():
		if err := a.registerQuery(a.root, nil, root, root, "", false); err != nil {
			return err
		}
		return a.validateDML(root)
	}
	if err := a.registerSubqueries(a.root, root); err != nil {
		return err
	}
	if err := a.inferUnknownTypes(a.root, root, types.Unknown); err != nil {
		return err
	}
	_, err := a.validateExpr(a.root, root)
	return err
}

// Frame describes a validated window frame.  Lower and Upper are signed
// row or range offsets from the current row with PRECEDING negative.
// Size is the number of rows of a bounded ROWS frame.
type Frame struct {
	Rows    bool
	Lower   int64
	Upper   int64
	Size    int64
	Bounded bool
}

// Result holds the outcome of a successful validation.
type Result struct {
	Tree  *ast.Tree
	Root  ast.ID
	RunID string
	a     *analyzer
}

// Type returns the type of the statement: the row type of a query or the
// type of an expression.
func (r *Result) Type() *types.Type {
	if ns := r.a.namespaces[r.Root]; ns != nil {
		return ns.rowType
	}
	return r.TypeOf(r.Root)
}

// TypeOf returns the derived type of node id or nil.
func (r *Result) TypeOf(id ast.ID) *types.Type {
	return r.a.nodeTypes[id]
}

// NamespaceOf returns the namespace registered for a relation-valued node
// or the node that introduced it.
func (r *Result) NamespaceOf(id ast.ID) *Namespace {
	return r.a.namespaces[id]
}

// ScopeOf returns the scope in which expression id was validated.
func (r *Result) ScopeOf(id ast.ID) *Scope {
	return r.a.exprScopes[id]
}

// ClauseScope returns the scope serving clause c of SELECT sel.
func (r *Result) ClauseScope(sel ast.ID, c Clause) *Scope {
	return r.a.clauses[clauseKey{sel, c}]
}

// JoinScope returns the scope of the ON condition of JOIN join.
func (r *Result) JoinScope(join ast.ID) *Scope {
	return r.a.joinScopes[join]
}

// SelectList returns the expanded select list of SELECT sel: stars
// replaced by qualified column references and every item aliased.
func (r *Result) SelectList(sel ast.ID) []ast.ID {
	return r.a.selectLists[sel]
}

// QualifiedName returns the fully qualified form of identifier id.
func (r *Result) QualifiedName(id ast.ID) []string {
	return r.a.qualified[id]
}

// LikeRegexp returns the regular expression equivalent to the literal
// pattern of a LIKE call.
func (r *Result) LikeRegexp(id ast.ID) (string, bool) {
	re, ok := r.a.likes[id]
	return re, ok
}

// Overload returns the operator chosen for call id.
func (r *Result) Overload(id ast.ID) *operator.Operator {
	return r.a.overloads[id]
}

// Frame returns the validated frame of OVER call id.
func (r *Result) Frame(id ast.ID) (Frame, bool) {
	f, ok := r.a.frames[id]
	return f, ok
}

// ParameterRowType returns a record with one field per dynamic parameter,
// in index order, holding its inferred type.
func (r *Result) ParameterRowType() *types.Type {
	indexes := make([]int, 0, len(r.a.params))
	for k := range r.a.params {
		indexes = append(indexes, k)
	}
	sort.Ints(indexes)
	fields := make([]types.Field, 0, len(indexes))
	for _, k := range indexes {
		fields = append(fields, types.Field{Name: fmt.Sprintf("?%d", k), Type: r.a.params[k]})
	}
	return r.a.types.Row(fields)
}
