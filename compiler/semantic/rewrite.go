package semantic

import (
	"fmt"
	"slices"

	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
)

// Rewrite normalizes a statement into the canonical SELECT-based shape
// the validator expects.  The source tree is left untouched; the result is
// a new tree.  Nodes shared within the source remain shared in the result
// and every rewritten node keeps the location of the node it replaces.
func Rewrite(ops *operator.Catalog, src *ast.Tree, root ast.ID) (*ast.Tree, ast.ID, error) {
	r := &rewriter{
		src:  src,
		dst:  ast.NewTree(),
		memo: make(map[ast.ID]ast.ID),
		ops:  ops,
	}
	for _, k := range []operator.Kind{operator.Select, operator.As, operator.Equals} {
		if ops.ByKind(k) == nil {
			return nil, ast.Nil, fmt.Errorf("operator catalog has no %s operator", k)
		}
	}
	r.sel = ops.ByKind(operator.Select)
	r.as = ops.ByKind(operator.As)
	r.eq = ops.ByKind(operator.Equals)
	return r.dst, r.node(root, true), nil
}

type rewriter struct {
	src  *ast.Tree
	dst  *ast.Tree
	memo map[ast.ID]ast.ID
	ops  *operator.Catalog
	sel  *operator.Operator
	as   *operator.Operator
	eq   *operator.Operator
}

func (r *rewriter) node(id ast.ID, top bool) ast.ID {
	if id == ast.Nil {
		return ast.Nil
	}
	if out, ok := r.memo[id]; ok {
		return out
	}
	var out ast.ID
	switch n := r.src.Node(id).(type) {
	case *ast.Call:
		out = r.call(n, top)
	case *ast.List:
		items := make([]ast.ID, len(n.Items))
		for k, item := range n.Items {
			items[k] = r.node(item, false)
		}
		out = r.dst.Add(&ast.List{Items: items, Loc: n.Loc})
	default:
		out = r.dst.Import(r.src, id)
	}
	r.memo[id] = out
	return out
}

func (r *rewriter) call(n *ast.Call, top bool) ast.ID {
	args := make([]ast.ID, max(len(n.Args), len(n.Op.Slots)))
	for k, arg := range n.Args {
		args[k] = r.node(arg, false)
	}
	op := n.Op
	if op.IsUnresolved() {
		if overloads := r.ops.Lookup(op.Name, operator.FunctionSyntax); len(overloads) == 1 {
			op = overloads[0]
		}
	}
	switch op.Kind {
	case operator.OrderBy:
		return r.orderBy(args, n.Loc)
	case operator.ExplicitTable:
		return r.selectStar(args[0], ast.Nil, n.Loc)
	case operator.Values, operator.Union, operator.Except, operator.Intersect:
		out := r.dst.Add(&ast.Call{Op: op, Args: args, Loc: n.Loc})
		if top {
			return r.selectStar(out, ast.Nil, n.Loc)
		}
		return out
	case operator.Insert:
		args[operator.InsertSourceSelect] = args[operator.InsertSource]
	case operator.Delete:
		from := r.target(args[operator.DeleteTarget], args[operator.DeleteAlias])
		sel := r.selectStar(from, ast.Nil, n.Loc)
		args[operator.DeleteSourceSelect] = r.withWhere(sel, args[operator.DeleteCondition])
	case operator.Update:
		args[operator.UpdateSourceSelect] = r.updateSelect(args, n.Loc)
	case operator.Case:
		if args[operator.CaseValue] != ast.Nil {
			args[operator.CaseWhen] = r.searchedWhens(args[operator.CaseValue], args[operator.CaseWhen])
			args[operator.CaseValue] = ast.Nil
		}
	}
	return r.dst.Add(&ast.Call{Op: op, Args: args, Loc: n.Loc})
}

// orderBy pushes an ORDER BY into the SELECT it decorates or, when that
// is not possible, wraps the query as SELECT * FROM (query) ORDER BY.
func (r *rewriter) orderBy(args []ast.ID, loc ast.Loc) ast.ID {
	query, order := args[operator.OrderByQuery], args[operator.OrderByList]
	if sel := r.dst.Call(query); sel != nil && sel.Op.Kind == operator.Select && sel.Arg(operator.SelectOrder) == ast.Nil {
		selArgs := slices.Clone(sel.Args)
		selArgs[operator.SelectOrder] = order
		return r.dst.Add(&ast.Call{Op: sel.Op, Args: selArgs, Loc: loc})
	}
	return r.selectStar(query, order, loc)
}

func (r *rewriter) star() ast.ID {
	return r.dst.NewIdentifier("*")
}

func (r *rewriter) selectStar(from, order ast.ID, loc ast.Loc) ast.ID {
	args := make([]ast.ID, len(r.sel.Slots))
	args[operator.SelectList] = r.dst.NewList(r.star())
	args[operator.SelectFrom] = from
	args[operator.SelectOrder] = order
	return r.dst.Add(&ast.Call{Op: r.sel, Args: args, Loc: loc})
}

func (r *rewriter) withWhere(sel, cond ast.ID) ast.ID {
	c := r.dst.Call(sel)
	args := slices.Clone(c.Args)
	args[operator.SelectWhere] = cond
	return r.dst.Add(&ast.Call{Op: c.Op, Args: args, Loc: c.Loc})
}

// target returns a fresh copy of a DML target table, aliased if the
// statement names an alias.
func (r *rewriter) target(table, alias ast.ID) ast.ID {
	from := r.dst.Import(r.dst, table)
	if alias != ast.Nil {
		from = r.dst.Add(&ast.Call{Op: r.as, Args: []ast.ID{from, r.dst.Import(r.dst, alias)}, Loc: r.dst.Loc(table)})
	}
	return from
}

// updateSelect builds SELECT *, src0 AS EXPR$0, ... FROM target WHERE
// cond.  The SET sources are shared with the UPDATE call so that their
// derived types are visible from both.
func (r *rewriter) updateSelect(args []ast.ID, loc ast.Loc) ast.ID {
	items := []ast.ID{r.star()}
	for k, src := range r.dst.Items(args[operator.UpdateSources]) {
		alias := r.dst.NewIdentifier(fmt.Sprintf("EXPR$%d", k))
		items = append(items, r.dst.Add(&ast.Call{Op: r.as, Args: []ast.ID{src, alias}, Loc: r.dst.Loc(src)}))
	}
	selArgs := make([]ast.ID, len(r.sel.Slots))
	selArgs[operator.SelectList] = r.dst.NewList(items...)
	selArgs[operator.SelectFrom] = r.target(args[operator.UpdateTarget], args[operator.UpdateAlias])
	selArgs[operator.SelectWhere] = args[operator.UpdateCondition]
	return r.dst.Add(&ast.Call{Op: r.sel, Args: selArgs, Loc: loc})
}

// searchedWhens turns the WHEN values of a simple CASE into equality
// tests against the case value.  Each test gets its own copy of the
// value.
func (r *rewriter) searchedWhens(value, whens ast.ID) ast.ID {
	var tests []ast.ID
	for k, w := range r.dst.Items(whens) {
		v := value
		if k > 0 {
			v = r.dst.Import(r.dst, value)
		}
		tests = append(tests, r.dst.Add(&ast.Call{Op: r.eq, Args: []ast.ID{v, w}, Loc: r.dst.Loc(w)}))
	}
	return r.dst.Add(&ast.List{Items: tests, Loc: r.dst.Loc(whens)})
}
