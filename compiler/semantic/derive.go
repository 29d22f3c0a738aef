package semantic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/brimdata/sqlsem/collation"
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
	"github.com/shellyln/go-sql-like-expr/likeexpr"
	"github.com/shopspring/decimal"
)

// deriveType returns the type of expression id in scope.  A type is
// computed once per node; later calls read it back.
func (a *analyzer) deriveType(scope *Scope, id ast.ID) (*types.Type, error) {
	if a.tree.Kind(id).IsQuery() {
		return a.deriveQuery(id)
	}
	if t, ok := a.nodeTypes[id]; ok {
		return t, nil
	}
	t, err := a.deriveImpl(scope, id)
	if err != nil {
		return nil, err
	}
	a.setType(id, t)
	if _, ok := a.exprScopes[id]; !ok {
		a.exprScopes[id] = scope
	}
	return t, nil
}

// deriveSoft is deriveType for probes: a failure yields the unknown type.
func (a *analyzer) deriveSoft(scope *Scope, id ast.ID) *types.Type {
	t, err := a.deriveType(scope, id)
	if err != nil {
		return types.Unknown
	}
	return t
}

func (a *analyzer) deriveImpl(scope *Scope, id ast.ID) (*types.Type, error) {
	switch n := a.tree.Node(id).(type) {
	case *ast.Literal:
		return a.literalType(id, n)
	case *ast.Identifier:
		return a.deriveIdentifier(scope, id, n)
	case *ast.DynamicParam:
		return types.Unknown, nil
	case *ast.List:
		return a.deriveList(scope, id, n)
	case *ast.DataTypeSpec:
		return a.resolveDataType(id, n)
	case *ast.IntervalQualifier:
		return a.types.Interval(n.Qualifier), nil
	case *ast.Call:
		return a.deriveCall(scope, id, n)
	}
	return nil, a.errorf(id, Internal, "cannot derive the type of node %d", id)
}

var (
	minInt32 = decimal.NewFromInt(math.MinInt32)
	maxInt32 = decimal.NewFromInt(math.MaxInt32)
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

func (a *analyzer) literalType(id ast.ID, lit *ast.Literal) (*types.Type, error) {
	f := a.types
	switch lit.Tag {
	case ast.BooleanLit:
		t, _ := lit.Truth()
		return f.Nullable(f.Sql(types.Boolean), t == ast.Unknown), nil
	case ast.ExactLit:
		d, ok := lit.Decimal()
		if !ok {
			break
		}
		return a.exactType(d), nil
	case ast.ApproxLit:
		return f.Sql(types.Double), nil
	case ast.CharLit:
		v, ok := lit.Value.(ast.CharValue)
		if !ok {
			break
		}
		return f.Char(types.Char, utf8.RuneCountInString(v.Value), a.charLiteralCollation(v)), nil
	case ast.BinaryLit:
		b, _ := lit.Value.([]byte)
		return f.SqlPrecision(types.Binary, len(b)), nil
	case ast.DateLit:
		return f.Sql(types.Date), nil
	case ast.TimeLit:
		return f.SqlPrecision(types.Time, lit.Precision), nil
	case ast.TimestampLit:
		return f.SqlPrecision(types.Timestamp, lit.Precision), nil
	case ast.IntervalYearMonthLit, ast.IntervalDayTimeLit:
		v, ok := lit.Value.(ast.IntervalValue)
		if !ok {
			break
		}
		return f.Interval(v.Qualifier), nil
	case ast.SymbolLit:
		return f.Sql(types.Symbol), nil
	case ast.NullLit:
		return f.Null(), nil
	}
	return nil, a.errorf(id, Internal, "malformed %s literal", lit.Tag)
}

// exactType types an exact numeric literal: INTEGER or BIGINT when it is
// an integer in range, otherwise DECIMAL with the literal's digits.
func (a *analyzer) exactType(d decimal.Decimal) *types.Type {
	if d.Exponent() >= 0 {
		switch {
		case d.GreaterThanOrEqual(minInt32) && d.LessThanOrEqual(maxInt32):
			return a.types.Sql(types.Integer)
		case d.GreaterThanOrEqual(minInt64) && d.LessThanOrEqual(maxInt64):
			return a.types.Sql(types.Bigint)
		}
		return a.types.Decimal(len(d.Abs().String()), 0)
	}
	digits := len(new(big.Int).Abs(d.Coefficient()).String())
	scale := int(-d.Exponent())
	return a.types.Decimal(max(digits, scale), scale)
}

func (a *analyzer) charLiteralCollation(v ast.CharValue) collation.Collation {
	if v.Collation != nil {
		return v.Collation.WithCoercibility(collation.Explicit)
	}
	coll := a.config.literalCollation()
	if v.Charset != "" {
		if cs, err := collation.CanonicalCharset(v.Charset); err == nil && cs != coll.Charset {
			coll = collation.Collation{Name: cs + "$en_US", Charset: cs, Coercibility: collation.Coercible}
		}
	}
	return coll
}

func (a *analyzer) deriveIdentifier(scope *Scope, id ast.ID, ident *ast.Identifier) (*types.Type, error) {
	if ident.IsSimple() {
		if t, ok := a.nullaryCall(id, ident.Names[0]); ok {
			return t, nil
		}
	}
	r, err := a.resolveIdentifier(scope, id, ident)
	if err != nil {
		return nil, err
	}
	a.qualified[id] = r.names
	t := r.typ
	if ident.Collation != nil && t.IsChar() {
		t = a.types.WithCollation(t, ident.Collation.WithCoercibility(collation.Explicit))
	}
	return t, nil
}

// nullaryCall probes whether name is a function called without
// parentheses, such as CURRENT_DATE.
func (a *analyzer) nullaryCall(id ast.ID, name string) (*types.Type, bool) {
	for _, op := range a.ops.Lookup(name, operator.FunctionID) {
		if op.Syntax != operator.FunctionID || op.Return == nil {
			continue
		}
		t, err := op.Return(&operator.CallBinding{Op: op, Types: a.types})
		if err == nil && t != nil {
			a.overloads[id] = op
			return t, true
		}
	}
	return nil, false
}

// deriveList types a list of values, e.g. the right operand of IN, as the
// least restrictive type of its items.
func (a *analyzer) deriveList(scope *Scope, id ast.ID, list *ast.List) (*types.Type, error) {
	ts := make([]*types.Type, 0, len(list.Items))
	unknown := false
	for _, item := range list.Items {
		t, err := a.deriveType(scope, item)
		if err != nil {
			return nil, err
		}
		unknown = unknown || t.IsUnknown()
		ts = append(ts, t)
	}
	if unknown || len(ts) == 0 {
		return types.Unknown, nil
	}
	t := a.types.LeastRestrictive(ts...)
	if t == nil {
		return nil, a.errorf(id, IncompatibleValueType, "Values in expression list must have compatible types")
	}
	return t, nil
}

func (a *analyzer) deriveCall(scope *Scope, id ast.ID, call *ast.Call) (*types.Type, error) {
	switch call.Op.Kind {
	case operator.As, operator.Descending, operator.Preceding, operator.Following:
		return a.deriveType(scope, call.Arg(0))
	case operator.ScalarQuery:
		return a.deriveType(scope, call.Arg(0))
	case operator.Exists:
		if _, err := a.deriveType(scope, call.Arg(0)); err != nil {
			return nil, err
		}
		a.overloads[id] = call.Op
		return a.types.Sql(types.Boolean), nil
	case operator.MultisetQuery:
		ns := a.namespaces[id]
		if ns == nil {
			return nil, a.errorf(id, Internal, "multiset query is not registered")
		}
		if err := a.validateNamespace(ns, nil); err != nil {
			return nil, err
		}
		return ns.rowType.Fields[0].Type, nil
	case operator.MultisetValue:
		return a.deriveMultiset(scope, id, call)
	case operator.Row:
		return a.deriveRow(scope, call)
	case operator.Case:
		return a.deriveCase(scope, id, call)
	case operator.Cast:
		return a.deriveCast(scope, id, call)
	case operator.Over:
		return a.deriveOver(scope, id, call)
	case operator.Dot:
		return a.deriveDot(scope, id, call)
	case operator.In, operator.NotIn:
		return a.deriveIn(scope, id, call)
	case operator.Window:
		return types.Unknown, nil
	}
	return a.deriveOperator(scope, id, call, false)
}

// deriveQuery validates a query used as an expression.  A single-column
// query has the nullable type of its column; otherwise it has its row
// type.
func (a *analyzer) deriveQuery(id ast.ID) (*types.Type, error) {
	ns := a.namespaces[id]
	if ns == nil {
		return nil, a.errorf(id, Internal, "query is not registered")
	}
	if err := a.validateNamespace(ns, nil); err != nil {
		return nil, err
	}
	if len(ns.rowType.Fields) == 1 {
		return a.types.Nullable(ns.rowType.Fields[0].Type, true), nil
	}
	return ns.rowType, nil
}

func (a *analyzer) deriveRow(scope *Scope, call *ast.Call) (*types.Type, error) {
	fields := make([]types.Field, len(call.Args))
	for k, arg := range call.Args {
		t, err := a.deriveType(scope, arg)
		if err != nil {
			return nil, err
		}
		if t.IsUnknown() {
			return types.Unknown, nil
		}
		fields[k] = types.Field{Name: fmt.Sprintf("EXPR$%d", k), Type: t}
	}
	return a.types.Row(fields), nil
}

func (a *analyzer) deriveMultiset(scope *Scope, id ast.ID, call *ast.Call) (*types.Type, error) {
	ts := make([]*types.Type, len(call.Args))
	for k, arg := range call.Args {
		t, err := a.deriveType(scope, arg)
		if err != nil {
			return nil, err
		}
		if t.IsUnknown() {
			return types.Unknown, nil
		}
		ts[k] = t
	}
	elem := a.types.LeastRestrictive(ts...)
	if elem == nil {
		return nil, a.errorf(id, IncompatibleValueType, "Parameters must be of the same type")
	}
	return a.types.Multiset(elem), nil
}

func (a *analyzer) deriveDot(scope *Scope, id ast.ID, call *ast.Call) (*types.Type, error) {
	row, err := a.deriveType(scope, call.Arg(0))
	if err != nil {
		return nil, err
	}
	name := a.tree.Identifier(call.Arg(1))
	if name == nil {
		return nil, a.errorf(call.Arg(1), Internal, "field name must be an identifier")
	}
	if !row.IsRow() {
		return nil, a.errorf(id, UnknownField, "Cannot access field '%s' of non-record type %s", name.Last(), row)
	}
	f, ok := a.field(row, name.Last())
	if !ok {
		e := a.errorf(call.Arg(1), UnknownField, "Unknown field '%s'", name.Last())
		e.Suggestions = suggest(name.Last(), row.FieldNames(), a.config.Suggestions)
		return nil, e
	}
	return a.types.Nullable(f.Type, f.Type.Nullable || row.Nullable), nil
}

func (a *analyzer) deriveIn(scope *Scope, id ast.ID, call *ast.Call) (*types.Type, error) {
	left, err := a.deriveType(scope, call.Arg(0))
	if err != nil {
		return nil, err
	}
	right := call.Arg(1)
	var rt *types.Type
	if a.tree.Kind(right).IsQuery() {
		if _, err := a.deriveQuery(right); err != nil {
			return nil, err
		}
		rt = a.namespaces[right].rowType
		if len(rt.Fields) == 1 {
			rt = rt.Fields[0].Type
		}
	} else if rt, err = a.deriveType(scope, right); err != nil {
		return nil, err
	}
	if left.IsUnknown() || rt.IsUnknown() {
		return nil, a.errorf(id, IllegalNullLiteral, "Illegal use of dynamic parameter")
	}
	if !types.CanCompare(left, rt) {
		return nil, a.errorf(id, OperandTypeMismatch, "Values passed to %s operator must have compatible types", call.Op.Name)
	}
	a.overloads[id] = call.Op
	return a.types.Nullable(a.types.Sql(types.Boolean), left.Nullable || rt.Nullable), nil
}

// isNull reports whether id is a bare NULL literal.
func (a *analyzer) isNull(id ast.ID) bool {
	lit := a.tree.Literal(id)
	return lit != nil && lit.IsNull()
}

// deriveCase types a searched CASE as the least restrictive type of its
// non-NULL branches.  Bare NULL branches are stamped with the result.
func (a *analyzer) deriveCase(scope *Scope, id ast.ID, call *ast.Call) (*types.Type, error) {
	whens := a.items(call.Arg(operator.CaseWhen))
	thens := a.items(call.Arg(operator.CaseThen))
	if len(whens) != len(thens) {
		return nil, a.errorf(id, Internal, "CASE has %d WHEN and %d THEN branches", len(whens), len(thens))
	}
	for _, w := range whens {
		t, err := a.deriveType(scope, w)
		if err != nil {
			return nil, err
		}
		if !t.IsBoolean() && !t.IsNull() && !t.IsUnknown() {
			return nil, a.errorf(w, ConditionNotBoolean, "Expected a boolean type")
		}
	}
	branches := thens
	els := call.Arg(operator.CaseElse)
	nullable := els == ast.Nil
	if els != ast.Nil {
		branches = append(append([]ast.ID(nil), thens...), els)
	}
	var known []*types.Type
	var nulls []ast.ID
	for _, b := range branches {
		if a.isNull(b) {
			nulls = append(nulls, b)
			nullable = true
			continue
		}
		t, err := a.deriveType(scope, b)
		if err != nil {
			return nil, err
		}
		if t.IsUnknown() {
			// A dynamic parameter may be bound to NULL.
			nullable = true
			continue
		}
		if t.IsNull() {
			nullable = true
			continue
		}
		known = append(known, t)
	}
	if len(known) == 0 {
		return nil, a.errorf(id, IllegalNullLiteral, "ELSE clause or at least one THEN clause must be non-NULL")
	}
	res := a.types.LeastRestrictive(known...)
	if res == nil {
		return nil, a.errorf(id, IncompatibleValueType, "Illegal mixing of types in CASE or COALESCE statement")
	}
	res = a.types.Nullable(res, nullable || res.Nullable)
	for _, n := range nulls {
		a.setType(n, res)
	}
	return res, nil
}

func (a *analyzer) deriveCast(scope *Scope, id ast.ID, call *ast.Call) (*types.Type, error) {
	target, err := a.deriveType(scope, call.Arg(1))
	if err != nil {
		return nil, err
	}
	src, err := a.deriveType(scope, call.Arg(0))
	if err != nil {
		return nil, err
	}
	if src.IsUnknown() {
		return a.types.Nullable(target, true), nil
	}
	if !src.IsNull() && !types.CanCast(target, src) {
		return nil, a.errorf(id, CastIllegal, "Cast function cannot convert value of type %s to type %s", src, target)
	}
	a.overloads[id] = call.Op
	return a.types.Nullable(target, src.Nullable), nil
}

// resolveDataType resolves the target of a CAST through the built-in type
// names and then the catalog.
func (a *analyzer) resolveDataType(id ast.ID, spec *ast.DataTypeSpec) (*types.Type, error) {
	f := a.types
	if len(spec.Names) == 1 {
		if name, ok := types.LookupName(spec.Names[0]); ok {
			prec := spec.Precision
			if prec <= 0 {
				prec = name.DefaultPrecision()
			}
			switch name {
			case types.Decimal:
				return f.Decimal(prec, spec.Scale), nil
			case types.Char, types.Varchar:
				coll := collation.Default(collation.Implicit)
				if spec.Charset != "" {
					cs, err := collation.CanonicalCharset(spec.Charset)
					if err != nil {
						return nil, a.errorf(id, UnknownDatatype, "Unknown character set '%s'", spec.Charset)
					}
					if cs != coll.Charset {
						coll = collation.Collation{Name: cs + "$en_US", Charset: cs, Coercibility: collation.Implicit}
					}
				}
				return f.Char(name, prec, coll), nil
			}
			return f.SqlPrecision(name, prec), nil
		}
	}
	t, err := a.catalog.NamedType(spec.Names)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, a.errorf(id, UnknownDatatype, "Unknown datatype name '%s'", strings.Join(spec.Names, "."))
	}
	return f.Import(t), nil
}

// deriveOperator types a call through its operator's strategies.
// windowed is set for the aggregate of an OVER call.
func (a *analyzer) deriveOperator(scope *Scope, id ast.ID, call *ast.Call, windowed bool) (*types.Type, error) {
	op := call.Op
	args := call.Args
	if op.Kind == operator.Count && len(args) == 1 && a.isStar(args[0]) {
		args = nil
	}
	if op.Kind.IsRanking() && !windowed {
		return nil, a.errorf(id, OverRequired, "OVER clause is necessary for window functions")
	}
	opScope := scope
	if op.IsAggregate() && !windowed {
		for _, arg := range args {
			if nested := a.findAggregate(arg); nested != ast.Nil {
				return nil, a.errorf(nested, NestedAggregate, "Aggregate expressions cannot be nested")
			}
		}
		opScope = scope.operandScope(true)
	}
	operands := make([]*types.Type, len(args))
	nulls := make([]bool, len(args))
	for k, arg := range args {
		t, err := a.deriveType(opScope, arg)
		if err != nil {
			return nil, err
		}
		if t.IsUnknown() {
			return nil, a.errorf(arg, IllegalNullLiteral, "Illegal use of dynamic parameter")
		}
		operands[k] = t
		nulls[k] = a.isNull(arg)
	}
	chosen, err := a.resolveOverload(id, op, operands, nulls)
	if err != nil {
		return nil, err
	}
	if err := a.checkCollations(id, chosen, operands); err != nil {
		return nil, err
	}
	switch chosen.Kind {
	case operator.Like, operator.NotLike, operator.Similar, operator.NotSimilar:
		if err := a.checkLike(id, chosen, args); err != nil {
			return nil, err
		}
	}
	return a.returnType(id, chosen, operands, nulls)
}

func (a *analyzer) isStar(id ast.ID) bool {
	ident := a.tree.Identifier(id)
	return ident != nil && ident.IsStar()
}

// resolveOverload picks the operator for a call: the first candidate
// whose arity and operand checker accept the operand types.
func (a *analyzer) resolveOverload(id ast.ID, op *operator.Operator, operands []*types.Type, nulls []bool) (*operator.Operator, error) {
	candidates := []*operator.Operator{op}
	if op.IsUnresolved() || op.Syntax == operator.FunctionSyntax && !op.Count.Allows(len(operands)) {
		if overloads := a.ops.Lookup(op.Name, operator.FunctionSyntax); len(overloads) > 0 {
			candidates = overloads
		} else if op.IsUnresolved() {
			e := a.errorf(id, UnknownFunction, "No match found for function signature %s", op.Signature(a.describe(operands)))
			e.Suggestions = suggest(op.Name, a.ops.FunctionNames(), a.config.Suggestions)
			return nil, e
		}
	}
	var arity []*operator.Operator
	for _, c := range candidates {
		if c.Count.Allows(len(operands)) {
			arity = append(arity, c)
		}
	}
	if len(arity) == 0 {
		return nil, a.errorf(id, ArityMismatch, "Invalid number of arguments to function '%s'. Was expecting %s arguments", op.Name, candidates[0].Count)
	}
	b := &operator.CallBinding{Types: a.types, Operands: operands, Nulls: nulls}
	var sigs []string
	for _, c := range arity {
		b.Op = c
		if c.Checker == nil || c.Checker.Check(b) {
			a.overloads[id] = c
			return c, nil
		}
		sigs = append(sigs, c.Checker.Signatures(c)...)
	}
	actual := arity[0].Signature(a.describe(operands))
	if len(arity) == 1 {
		e := a.errorf(id, OperandTypeMismatch, "Cannot apply '%s' to arguments of type '%s'. Supported form(s): %s",
			arity[0].Name, actual, strings.Join(sigs, ", "))
		e.Signatures = sigs
		return nil, e
	}
	e := a.errorf(id, NoMatchingOverload, "No match found for function signature %s", actual)
	e.Signatures = sigs
	return nil, e
}

func (a *analyzer) describe(operands []*types.Type) []string {
	out := make([]string, len(operands))
	for k, t := range operands {
		out[k] = fmt.Sprintf("<%s>", a.types.Nullable(t, true))
	}
	return out
}

// checkCollations applies the coercibility rules to the character
// operands of a call.  A missing common collation is only an error for
// comparisons.
func (a *analyzer) checkCollations(id ast.ID, op *operator.Operator, operands []*types.Type) error {
	if op.Kind == operator.Concat {
		return nil
	}
	comparison := op.Kind.IsComparison()
	if !comparison && len(operands) != 2 {
		return nil
	}
	for k := 1; k < len(operands); k++ {
		l, r := operands[0], operands[k]
		if !l.IsChar() || !r.IsChar() {
			continue
		}
		if !types.SameCharset(l, r) {
			return a.errorf(id, IncompatibleCharset, "Cannot apply operation '%s' to strings with different charsets '%s' and '%s'", op.Name, l.Charset, r.Charset)
		}
		if _, err := types.MergeCollations(l, r); err != nil {
			var incompatible *collation.IncompatibleError
			if errors.As(err, &incompatible) {
				return a.errorf(id, IncompatibleCollation, "Two explicit different collations (%s, %s) are illegal", incompatible.Left, incompatible.Right)
			}
			if comparison {
				return a.errorf(id, NoCommonCollation, "Invalid compare. Comparing (collation, coercibility): (%s, %s) with (%s, %s) is illegal",
					l.Collation.Name, l.Collation.Coercibility, r.Collation.Name, r.Collation.Coercibility)
			}
		}
	}
	return nil
}

// checkLike validates a literal ESCAPE and records the regular expression
// of a literal LIKE pattern.
func (a *analyzer) checkLike(id ast.ID, op *operator.Operator, args []ast.ID) error {
	escape := '\\'
	if len(args) == 3 {
		lit := a.tree.Literal(args[2])
		if lit == nil || lit.Tag != ast.CharLit {
			return nil
		}
		v, _ := lit.Value.(ast.CharValue)
		if utf8.RuneCountInString(v.Value) != 1 {
			return a.errorf(args[2], InvalidEscape, "Invalid escape character '%s'", v.Value)
		}
		escape, _ = utf8.DecodeRuneInString(v.Value)
	}
	if op.Kind != operator.Like && op.Kind != operator.NotLike {
		return nil
	}
	lit := a.tree.Literal(args[1])
	if lit == nil || lit.Tag != ast.CharLit {
		return nil
	}
	v, _ := lit.Value.(ast.CharValue)
	a.likes[id] = "(?s)" + likeexpr.ToRegexp(v.Value, escape, false)
	return nil
}

// returnType invokes the return-type strategy of op.
func (a *analyzer) returnType(id ast.ID, op *operator.Operator, operands []*types.Type, nulls []bool) (*types.Type, error) {
	if op.Return == nil {
		return nil, a.errorf(id, Internal, "operator %s has no return type inference", op.Name)
	}
	t, err := op.Return(&operator.CallBinding{Op: op, Types: a.types, Operands: operands, Nulls: nulls})
	if err != nil {
		var charset *operator.CharsetError
		var incompatible *collation.IncompatibleError
		switch {
		case errors.As(err, &charset):
			return nil, a.errorf(id, IncompatibleCharset, "Cannot apply operation '%s' to strings with different charsets '%s' and '%s'", charset.Op, charset.Left, charset.Right)
		case errors.As(err, &incompatible):
			return nil, a.errorf(id, IncompatibleCollation, "Two explicit different collations (%s, %s) are illegal", incompatible.Left, incompatible.Right)
		}
		return nil, a.errorf(id, Internal, "%s", err)
	}
	if t == nil {
		e := a.errorf(id, OperandTypeMismatch, "Cannot infer return type for %s; operand types: %s", op.Name, strings.Join(a.describe(operands), ", "))
		if op.Checker != nil {
			e.Signatures = op.Checker.Signatures(op)
		}
		return nil, e
	}
	return t, nil
}
