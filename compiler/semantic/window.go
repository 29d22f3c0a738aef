package semantic

import (
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
	"github.com/shopspring/decimal"
)

// window is a window specification with any reference to a named window
// expanded.
type window struct {
	node      ast.ID
	partition []ast.ID
	order     []ast.ID
	rows      bool
	lower     ast.ID
	upper     ast.ID
}

func (w *window) framed() bool {
	return w.lower != ast.Nil || w.upper != ast.Nil
}

type boundKind int

const (
	currentRow boundKind = iota
	preceding
	following
	unboundedPreceding
	unboundedFollowing
)

type bound struct {
	kind boundKind
	// offset is the signed distance from the current row when the bound
	// is a numeric constant.
	offset  decimal.Decimal
	numeric bool
}

func (b bound) finite() bool {
	return b.kind == currentRow || b.numeric
}

// maxWindowRefs bounds the chain of window references followed before a
// cycle is reported.
const maxWindowRefs = 64

// deriveOver types a windowed aggregate after validating its window.
func (a *analyzer) deriveOver(scope *Scope, id ast.ID, call *ast.Call) (*types.Type, error) {
	aggID := call.Arg(0)
	agg := a.tree.Call(aggID)
	if agg == nil || !agg.Op.IsAggregate() {
		return nil, a.errorf(aggID, NotAnAggregate, "OVER must be applied to aggregate function")
	}
	w, err := a.resolveWindow(scope, call.Arg(1), 0)
	if err != nil {
		return nil, err
	}
	frame, err := a.validateWindow(scope, w, agg.Op)
	if err != nil {
		return nil, err
	}
	a.frames[id] = frame
	t, err := a.deriveOperator(scope, aggID, agg, true)
	if err != nil {
		return nil, err
	}
	a.setType(aggID, t)
	a.exprScopes[aggID] = scope
	return t, nil
}

// findWindow returns the WINDOW clause entry named name of the SELECT
// owning scope.
func (a *analyzer) findWindow(scope *Scope, name string) ast.ID {
	sel := scope.Select()
	if sel == ast.Nil {
		return ast.Nil
	}
	for _, w := range a.items(a.tree.Operand(sel, operator.SelectWindow)) {
		ident := a.tree.Identifier(a.tree.Operand(w, operator.WindowName))
		if ident != nil && a.matcher.match(ident.Last(), name) {
			return w
		}
	}
	return ast.Nil
}

// resolveWindow expands a window name or an inline specification that
// refers to another window.
func (a *analyzer) resolveWindow(scope *Scope, id ast.ID, depth int) (*window, error) {
	if ident := a.tree.Identifier(id); ident != nil {
		w := a.findWindow(scope, ident.Last())
		if w == ast.Nil {
			return nil, a.errorf(id, WindowNotFound, "Window '%s' not found", ident.Last())
		}
		if depth > maxWindowRefs {
			return nil, a.errorf(id, ValidationCycle, "Window '%s' refers to itself", ident.Last())
		}
		return a.resolveWindow(scope, w, depth+1)
	}
	call := a.tree.Call(id)
	if call == nil || call.Op.Kind != operator.Window {
		return nil, a.errorf(id, Internal, "OVER requires a window specification")
	}
	w := &window{
		node:      id,
		partition: a.items(call.Arg(operator.WindowPartition)),
		order:     a.items(call.Arg(operator.WindowOrder)),
		rows:      a.truth(call.Arg(operator.WindowRows)),
		lower:     call.Arg(operator.WindowLower),
		upper:     call.Arg(operator.WindowUpper),
	}
	ref := call.Arg(operator.WindowRef)
	if ref == ast.Nil {
		return w, nil
	}
	base, err := a.resolveWindow(scope, ref, depth+1)
	if err != nil {
		return nil, err
	}
	switch {
	case len(w.partition) > 0:
		return nil, a.errorf(call.Arg(operator.WindowPartition), WindowRefIllegal, "PARTITION BY not allowed with existing window reference")
	case len(w.order) > 0 && len(base.order) > 0:
		return nil, a.errorf(call.Arg(operator.WindowOrder), WindowRefIllegal, "ORDER BY not allowed in both base and referenced windows")
	case base.framed():
		return nil, a.errorf(ref, WindowRefIllegal, "Referenced window cannot have framing declarations")
	}
	w.partition = base.partition
	if len(w.order) == 0 {
		w.order = base.order
	}
	return w, nil
}

// validateWindowClause validates the named windows of a SELECT.
func (a *analyzer) validateWindowClause(sel ast.ID, scope *Scope) error {
	seen := make(map[string]bool)
	for _, id := range a.items(a.tree.Operand(sel, operator.SelectWindow)) {
		ident := a.tree.Identifier(a.tree.Operand(id, operator.WindowName))
		if ident == nil {
			return a.errorf(id, Internal, "window in WINDOW clause has no name")
		}
		key := a.matcher.key(ident.Last())
		if seen[key] {
			return a.errorf(id, DuplicateWindowName, "Duplicate window names not allowed")
		}
		seen[key] = true
		w, err := a.resolveWindow(scope, id, 0)
		if err != nil {
			return err
		}
		frame, err := a.validateWindow(scope, w, nil)
		if err != nil {
			return err
		}
		a.frames[id] = frame
	}
	return nil
}

// validateWindow validates the keys and frame of w for a call of op, which
// is nil for a window declared in a WINDOW clause.
func (a *analyzer) validateWindow(scope *Scope, w *window, op *operator.Operator) (Frame, error) {
	for _, p := range w.partition {
		if err := a.inferUnknownTypes(scope, p, types.Unknown); err != nil {
			return Frame{}, err
		}
		if _, err := a.validateExpr(scope, p); err != nil {
			return Frame{}, err
		}
	}
	for _, o := range w.order {
		if err := a.inferUnknownTypes(scope, o, types.Unknown); err != nil {
			return Frame{}, err
		}
		if _, err := a.validateExpr(scope, o); err != nil {
			return Frame{}, err
		}
	}
	ranking := op != nil && op.Kind.IsRanking()
	monotonic := a.containsMonotonic(scope)
	if !w.framed() {
		if ranking && len(w.order) == 0 && !monotonic {
			return Frame{}, a.errorf(w.node, RankRequiresOrderBy, "Function '%s' requires an ORDER BY clause in its window specification", op.Name)
		}
		return Frame{Rows: w.rows}, nil
	}
	if ranking {
		return Frame{}, a.errorf(w.node, RankDisallowsFrame, "ROWS or RANGE not allowed with function '%s'", op.Name)
	}
	var orderType *types.Type
	if len(w.order) > 0 {
		if len(w.order) > 1 && !w.rows {
			return Frame{}, a.errorf(w.node, CompoundOrderByRange, "RANGE clause cannot be used with compound ORDER BY clause")
		}
		orderType = a.nodeTypes[w.order[0]]
	} else if !w.rows && !monotonic {
		return Frame{}, a.errorf(w.node, RangeRequiresOrderBy, "Window specification must contain an ORDER BY clause")
	}
	lower, err := a.frameBound(scope, w.lower, w.rows, orderType)
	if err != nil {
		return Frame{}, err
	}
	upper, err := a.frameBound(scope, w.upper, w.rows, orderType)
	if err != nil {
		return Frame{}, err
	}
	switch {
	case lower.kind == unboundedFollowing:
		return Frame{}, a.errorf(w.lower, BadLowerBound, "UNBOUNDED FOLLOWING cannot be specified for the lower frame boundary")
	case upper.kind == unboundedPreceding:
		return Frame{}, a.errorf(w.upper, BadUpperBound, "UNBOUNDED PRECEDING cannot be specified for the upper frame boundary")
	case lower.kind == currentRow && upper.kind == preceding:
		return Frame{}, a.errorf(w.upper, CurrentRowPreceding, "Upper frame boundary cannot be PRECEDING when lower boundary is CURRENT ROW")
	case lower.kind == following && (upper.kind == preceding || upper.kind == currentRow):
		return Frame{}, a.errorf(w.upper, FollowingBeforePreceding, "Upper frame boundary cannot be PRECEDING or CURRENT ROW when lower boundary is FOLLOWING")
	}
	frame := Frame{Rows: w.rows}
	if lower.finite() && upper.finite() {
		if upper.offset.LessThan(lower.offset) {
			return Frame{}, a.errorf(w.node, NegativeFrameSize, "Window has negative size")
		}
		frame.Bounded = true
		frame.Lower = lower.offset.IntPart()
		frame.Upper = upper.offset.IntPart()
		if w.rows {
			frame.Size = frame.Upper - frame.Lower + 1
		}
	}
	return frame, nil
}

// frameBound classifies a frame boundary.  An absent bound is CURRENT
// ROW.  A ROWS offset must be a non-negative integer literal; a RANGE
// offset may be any numeric or interval constant matching the ORDER BY
// key.
func (a *analyzer) frameBound(scope *Scope, id ast.ID, rows bool, orderType *types.Type) (bound, error) {
	if id == ast.Nil {
		return bound{kind: currentRow}, nil
	}
	switch a.symbol(id) {
	case operator.SymCurrentRow:
		return bound{kind: currentRow}, nil
	case operator.SymUnboundedPrec:
		return bound{kind: unboundedPreceding}, nil
	case operator.SymUnboundedFoll:
		return bound{kind: unboundedFollowing}, nil
	}
	b := bound{kind: preceding}
	switch a.tree.Kind(id) {
	case operator.Preceding:
	case operator.Following:
		b.kind = following
	default:
		return bound{}, a.errorf(id, FrameBoundNotConstant, "Window boundary must be constant")
	}
	value := a.tree.Operand(id, 0)
	lit := a.tree.Literal(value)
	if lit == nil || lit.IsNull() {
		return bound{}, a.errorf(value, FrameBoundNotConstant, "Window boundary must be constant")
	}
	t, err := a.deriveType(scope, id)
	if err != nil {
		return bound{}, err
	}
	d, numeric := lit.Decimal()
	if rows && (lit.Tag != ast.ExactLit || !d.IsInteger() || d.IsNegative()) {
		return bound{}, a.errorf(value, WrongNumericKind, "ROWS value must be a non-negative integral constant")
	}
	if !rows && orderType != nil {
		switch {
		case orderType.IsNumeric():
			if !t.IsNumeric() {
				return bound{}, a.errorf(value, TypeFamilyMismatch, "Data Type mismatch between ORDER BY and RANGE clause")
			}
		case orderType.IsDatetime():
			if !t.IsInterval() {
				return bound{}, a.errorf(value, TypeFamilyMismatch, "Data Type mismatch between ORDER BY and RANGE clause")
			}
		default:
			return bound{}, a.errorf(value, TypeFamilyMismatch, "Data type of ORDER BY prohibits use of RANGE clause")
		}
	}
	if numeric {
		b.numeric = true
		b.offset = d
		if b.kind == preceding {
			b.offset = d.Neg()
		}
	}
	return b, nil
}

// containsMonotonic reports whether a relation in the FROM clause of the
// SELECT owning scope has a monotonic column.
func (a *analyzer) containsMonotonic(scope *Scope) bool {
	sel := scope.selectScope()
	if sel == nil {
		return false
	}
	for _, child := range sel.children {
		if child.Namespace.IsValid() && child.Namespace.anyMonotonic() {
			return true
		}
	}
	return false
}
