package semantic_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/brimdata/sqlsem/catalog"
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/compiler/semantic"
	"github.com/brimdata/sqlsem/compiler/sexpr"
	"github.com/brimdata/sqlsem/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fixture struct {
	factory *types.Factory
	ops     *operator.Catalog
	v       *semantic.Validator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := types.NewFactory()
	ops := operator.NewStdCatalog(f)
	return newFixtureWith(t, f, ops, semantic.DefaultConfig())
}

func newFixtureWith(t *testing.T, f *types.Factory, ops *operator.Catalog, cfg semantic.Config) *fixture {
	t.Helper()
	cat, err := catalog.Load(f, "../../catalog/testdata/sales.yaml")
	require.NoError(t, err)
	return &fixture{
		factory: f,
		ops:     ops,
		v:       semantic.New(cat, ops, f, zaptest.NewLogger(t), cfg),
	}
}

func (x *fixture) parse(t *testing.T, text string) *sexpr.AST {
	t.Helper()
	p, err := sexpr.Parse(x.ops, text)
	require.NoError(t, err)
	return p
}

func (x *fixture) validate(t *testing.T, text string) (*semantic.Result, error) {
	t.Helper()
	p := x.parse(t, text)
	return x.v.Validate(p.Tree(), p.Root())
}

func (x *fixture) valid(t *testing.T, text string) *semantic.Result {
	t.Helper()
	res, err := x.validate(t, text)
	require.NoError(t, err)
	return res
}

func (x *fixture) invalid(t *testing.T, text string, code semantic.Code) *semantic.Error {
	t.Helper()
	_, err := x.validate(t, text)
	require.Error(t, err)
	require.ErrorIs(t, err, code)
	var e *semantic.Error
	require.True(t, errors.As(err, &e))
	return e
}

func selectItems(res *semantic.Result) []ast.ID {
	return res.Tree.Items(res.Tree.Operand(res.Root, operator.SelectList))
}

func TestSimpleSelect(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [ENAME (AS (+ SAL 1) BONUS)] :from EMP :where (> SAL 1000))")
	assert.Equal(t, "RecordType(VARCHAR(20) NOT NULL ENAME, INTEGER NOT NULL BONUS)", res.Type().String())
	assert.NotEmpty(t, res.RunID)
	ename := selectItems(res)[0]
	assert.Equal(t, []string{"EMP", "ENAME"}, res.QualifiedName(ename))
	assert.Equal(t, semantic.SelectScope, res.ScopeOf(ename).Kind)
	list := res.SelectList(res.Root)
	require.Len(t, list, 2)
	assert.Equal(t, operator.As, res.Tree.Kind(list[0]))
}

func TestStarExpansion(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [*] :from (AS DEPT D))")
	assert.Equal(t, []string{"DEPTNO", "NAME"}, res.Type().FieldNames())
	list := res.SelectList(res.Root)
	require.Len(t, list, 2)
	col := res.Tree.Operand(list[1], 0)
	assert.Equal(t, []string{"D", "NAME"}, res.Tree.Identifier(col).Names)
	assert.Equal(t, "VARCHAR(10) NOT NULL", res.TypeOf(col).String())
}

func TestDuplicateAliasesAreRenamed(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [DEPTNO DEPTNO] :from EMP)")
	assert.Equal(t, []string{"DEPTNO", "DEPTNO0"}, res.Type().FieldNames())
}

func TestUnknownColumn(t *testing.T) {
	x := newFixture(t)
	e := x.invalid(t, "(SELECT :list [ENAMEX] :from EMP)", semantic.UnknownIdentifier)
	assert.Contains(t, e.Suggestions, "ENAME")
	assert.True(t, e.Loc.IsValid())
}

func TestTableNotFound(t *testing.T) {
	x := newFixture(t)
	e := x.invalid(t, "(SELECT :list [*] :from EMPS)", semantic.TableNotFound)
	assert.Contains(t, e.Suggestions, "EMP")
}

func TestAmbiguousColumn(t *testing.T) {
	x := newFixture(t)
	x.invalid(t, "(SELECT :list [DEPTNO] :from (JOIN :left EMP :type #CROSS :right DEPT))", semantic.AmbiguousColumn)
}

func TestHavingNotGrouped(t *testing.T) {
	x := newFixture(t)
	e := x.invalid(t, "(SELECT :list [DEPTNO] :from EMP :group [DEPTNO] :having (= EMPNO 10))", semantic.NotAGroupExpression)
	assert.Equal(t, "Expression 'EMPNO' is not being grouped", e.Msg)
}

func TestGroupBy(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [DEPTNO (COUNT *) (AS (MAX SAL) TOP)] :from EMP :group [DEPTNO] :having (> (SUM SAL) 100))")
	assert.Equal(t, []string{"DEPTNO", "EXPR$1", "TOP"}, res.Type().FieldNames())
	assert.Equal(t, semantic.AggregatingScope, res.ClauseScope(res.Root, semantic.SelectClause).Kind)
	x.invalid(t, "(SELECT :list [ENAME (COUNT *)] :from EMP)", semantic.NotAGroupExpression)
}

func TestAggregateRules(t *testing.T) {
	x := newFixture(t)
	x.invalid(t, "(SELECT :list [ENAME] :from EMP :where (> (SUM SAL) 10))", semantic.AggregateIllegalInWhere)
	x.invalid(t, "(SELECT :list [(COUNT *)] :from EMP :group [(SUM SAL)])", semantic.AggregateIllegalInGroupBy)
	x.invalid(t, "(SELECT :list [(SUM (SUM SAL))] :from EMP)", semantic.NestedAggregate)
	x.invalid(t, "(SELECT :list [(RANK)] :from EMP)", semantic.OverRequired)
}

func TestWhereMustBeBoolean(t *testing.T) {
	x := newFixture(t)
	e := x.invalid(t, "(SELECT :list [ENAME] :from EMP :where (+ SAL 1))", semantic.WhereOrHavingNotBoolean)
	assert.Equal(t, "WHERE clause must be a condition", e.Msg)
}

func TestOrderBy(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [(AS ENAME N)] :from EMP :order [N (DESC SAL) 1])")
	assert.Equal(t, []string{"N"}, res.Type().FieldNames())
	order := res.Tree.Items(res.Tree.Operand(res.Root, operator.SelectOrder))
	assert.Equal(t, semantic.OrderByScope, res.ScopeOf(order[0]).Kind)
	x.invalid(t, "(SELECT :list [ENAME] :from EMP :order [2])", semantic.OrdinalOutOfRange)
}

func TestOrderByAliasNotVisibleInWhere(t *testing.T) {
	x := newFixture(t)
	x.valid(t, "(SELECT :list [(AS ENAME X)] :from EMP :order [X])")
	e := x.invalid(t, "(SELECT :list [(AS ENAME X)] :from EMP :where (= X 1))", semantic.UnknownIdentifier)
	assert.Contains(t, e.Msg, "Column 'X' not found")
}

func TestOrderByRewrite(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(ORDER_BY (SELECT :list [ENAME] :from EMP) [ENAME])")
	assert.Equal(t, operator.Select, res.Tree.Kind(res.Root))
	assert.NotEqual(t, ast.Nil, res.Tree.Operand(res.Root, operator.SelectOrder))
}

func TestJoin(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, `
(SELECT :list [E.ENAME D.NAME]
        :from (JOIN :left (AS EMP E) :type #LEFT :right (AS DEPT D)
                    :condition_type #ON :condition (= E.DEPTNO D.DEPTNO)))`)
	assert.Equal(t, "RecordType(VARCHAR(20) NOT NULL ENAME, VARCHAR(10) NAME)", res.Type().String())
	join := res.Tree.Operand(res.Root, operator.SelectFrom)
	assert.Equal(t, semantic.JoinScope, res.JoinScope(join).Kind)
	assert.Equal(t, semantic.JoinNamespace, res.NamespaceOf(join).Kind)

	x.invalid(t, "(SELECT :list [*] :from (JOIN :left EMP :type #INNER :right DEPT))", semantic.JoinConditionRequired)
	x.invalid(t, "(SELECT :list [*] :from (JOIN :left EMP :type #CROSS :right DEPT :condition_type #ON :condition true))",
		semantic.JoinConditionDisallowed)
	x.invalid(t, "(SELECT :list [*] :from (JOIN :left EMP :natural true :type #CROSS :right DEPT))", semantic.NaturalDisallowed)
	x.invalid(t, "(SELECT :list [*] :from (JOIN :left EMP :natural true :type #INNER :right DEPT :condition_type #USING :condition [DEPTNO]))",
		semantic.NaturalDisallowsOnOrUsing)
	x.invalid(t, "(SELECT :list [*] :from (JOIN :left EMP :type #INNER :right DEPT :condition_type #ON :condition (+ 1 2)))",
		semantic.ConditionNotBoolean)
	x.invalid(t, "(SELECT :list [*] :from (JOIN :left EMP :type #INNER :right DEPT :condition_type #USING :condition [NAME]))",
		semantic.UnknownIdentifier)
}

func TestNaturalJoin(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [ENAME NAME] :from (JOIN :left EMP :natural true :type #INNER :right DEPT))")
	assert.Equal(t, []string{"ENAME", "NAME"}, res.Type().FieldNames())
}

func TestNamespaceIdentity(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [E.ENAME] :from (AS EMP E))")
	from := res.Tree.Operand(res.Root, operator.SelectFrom)
	table := res.Tree.Operand(from, 0)
	ns := res.NamespaceOf(table)
	require.NotNil(t, ns)
	assert.Same(t, ns, res.NamespaceOf(from))
	assert.Same(t, ns, res.NamespaceOf(table))
	assert.Equal(t, semantic.TableNamespace, ns.Kind)
	assert.True(t, ns.IsValid())
	assert.Equal(t, []string{"SALES", "EMP"}, ns.Table().QualifiedName())
	assert.Same(t, ns.RowType(), res.TypeOf(from))
}

func TestCaseNullBranches(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [(CASE :when [(= DEPTNO 10)] :then [null] :else 1)] :from EMP)")
	field := res.Type().Fields[0]
	assert.Equal(t, types.Integer, field.Type.Name)
	assert.True(t, field.Type.Nullable)
	cas := selectItems(res)[0]
	null := res.Tree.Items(res.Tree.Operand(cas, operator.CaseThen))[0]
	assert.Same(t, field.Type, res.TypeOf(null))

	e := x.invalid(t, "(SELECT :list [(CASE :when [(= DEPTNO 10)] :then [null] :else null)] :from EMP)", semantic.IllegalNullLiteral)
	assert.Equal(t, "ELSE clause or at least one THEN clause must be non-NULL", e.Msg)

	res = x.valid(t, "(SELECT :list [(CASE :when [(= DEPTNO 10)] :then [?] :else 1)] :from EMP)")
	field = res.Type().Fields[0]
	assert.Equal(t, types.Integer, field.Type.Name)
	assert.True(t, field.Type.Nullable)
}

func TestSimpleCaseRewrite(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [(CASE :value DEPTNO :when [10 20] :then ['a' 'b'])] :from EMP)")
	cas := selectItems(res)[0]
	assert.Equal(t, ast.Nil, res.Tree.Operand(cas, operator.CaseValue))
	whens := res.Tree.Items(res.Tree.Operand(cas, operator.CaseWhen))
	require.Len(t, whens, 2)
	assert.Equal(t, operator.Equals, res.Tree.Kind(whens[0]))
	assert.NotEqual(t, res.Tree.Operand(whens[0], 0), res.Tree.Operand(whens[1], 0))
	assert.True(t, res.Type().Fields[0].Type.Nullable)
}

func TestWindowFrame(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [(OVER (SUM SAL) (WINDOW :rows true :lower (PRECEDING 3) :upper (FOLLOWING 1)))] :from EMP)")
	frame, ok := res.Frame(selectItems(res)[0])
	require.True(t, ok)
	assert.Equal(t, semantic.Frame{Rows: true, Lower: -3, Upper: 1, Size: 5, Bounded: true}, frame)
	assert.Equal(t, "INTEGER NOT NULL", res.Type().Fields[0].Type.String())
}

func TestWindowErrors(t *testing.T) {
	x := newFixture(t)
	for _, c := range []struct {
		window string
		code   semantic.Code
	}{
		{"(WINDOW :rows true :lower #CURRENT_ROW :upper (PRECEDING 3))", semantic.CurrentRowPreceding},
		{"(WINDOW :rows true :lower (FOLLOWING 1) :upper #CURRENT_ROW)", semantic.FollowingBeforePreceding},
		{"(WINDOW :rows true :lower #UNBOUNDED_FOLLOWING)", semantic.BadLowerBound},
		{"(WINDOW :rows true :lower #CURRENT_ROW :upper #UNBOUNDED_PRECEDING)", semantic.BadUpperBound},
		{"(WINDOW :rows true :lower (FOLLOWING 2) :upper (FOLLOWING 1))", semantic.NegativeFrameSize},
		{"(WINDOW :rows true :lower (PRECEDING 1.5))", semantic.WrongNumericKind},
		{"(WINDOW :rows true :lower (PRECEDING SAL))", semantic.FrameBoundNotConstant},
		{"(WINDOW :lower (PRECEDING 3))", semantic.RangeRequiresOrderBy},
		{"(WINDOW :order [SAL EMPNO] :lower (PRECEDING 3))", semantic.CompoundOrderByRange},
		{"(WINDOW :order [ENAME] :lower (PRECEDING 3))", semantic.TypeFamilyMismatch},
		{"W", semantic.WindowNotFound},
	} {
		t.Run(c.window, func(t *testing.T) {
			x.invalid(t, "(SELECT :list [(OVER (SUM SAL) "+c.window+")] :from EMP)", c.code)
		})
	}
	x.invalid(t, "(SELECT :list [(OVER ENAME (WINDOW))] :from EMP)", semantic.NotAnAggregate)
}

func TestRanking(t *testing.T) {
	x := newFixture(t)
	x.invalid(t, "(SELECT :list [(OVER (RANK) (WINDOW))] :from EMP)", semantic.RankRequiresOrderBy)
	x.invalid(t, "(SELECT :list [(OVER (RANK) (WINDOW :order [SAL] :rows true :lower (PRECEDING 1)))] :from EMP)",
		semantic.RankDisallowsFrame)
	res := x.valid(t, "(SELECT :list [(OVER (RANK) (WINDOW :order [SAL]))] :from EMP)")
	assert.Equal(t, "INTEGER NOT NULL", res.Type().Fields[0].Type.String())
	// A monotonic input column orders the rows.
	x.valid(t, "(SELECT :list [(OVER (ROW_NUMBER) (WINDOW))] :from ORDERS)")
}

func TestNamedWindows(t *testing.T) {
	x := newFixture(t)
	x.valid(t, `
(SELECT :list [(OVER (SUM SAL) W) (OVER (MAX SAL) (WINDOW :ref W :order [EMPNO]))]
        :from EMP
        :window [(WINDOW :name W :partition [DEPTNO])])`)
	x.invalid(t, "(SELECT :list [ENAME] :from EMP :window [(WINDOW :name W) (WINDOW :name W)])", semantic.DuplicateWindowName)
	x.invalid(t, `
(SELECT :list [(OVER (SUM SAL) (WINDOW :ref W :partition [JOB]))]
        :from EMP
        :window [(WINDOW :name W :partition [DEPTNO])])`, semantic.WindowRefIllegal)
	x.invalid(t, "(SELECT :list [ENAME] :from EMP :where (> (OVER (SUM SAL) (WINDOW)) 1))", semantic.WindowedAggregateIllegal)
}

func TestWindowSelfReference(t *testing.T) {
	x := newFixture(t)
	e := x.invalid(t, "(SELECT :list [ENAME] :from EMP :window [(WINDOW :name W :ref W)])", semantic.ValidationCycle)
	assert.Equal(t, "Window 'W' refers to itself", e.Msg)
}

func TestCollations(t *testing.T) {
	x := newFixture(t)
	const from = ":from (JOIN :left ORDERS :type #CROSS :right EMP)"
	// Different implicit collations have no common collation.  Comparing
	// them fails but concatenating them does not.
	e := x.invalid(t, "(SELECT :list [ENAME] "+from+" :where (= NOTE ENAME))", semantic.NoCommonCollation)
	assert.Contains(t, e.Msg, "Invalid compare")
	_, err := x.validate(t, "(SELECT :list [(|| NOTE ENAME)] "+from+")")
	assert.NoError(t, err)

	e = x.invalid(t, "(SELECT :list [ENAME] :from EMP :where (= {COLLATE ENAME ISO-8859-1$en_US$primary} {COLLATE JOB ISO-8859-1$en_US$secondary}))",
		semantic.IncompatibleCollation)
	assert.Contains(t, e.Msg, "Two explicit different collations")

	e = x.invalid(t, "(SELECT :list [(|| ENAME {CHARSET 'x' UTF-8})] :from EMP)", semantic.IncompatibleCharset)
	assert.Contains(t, e.Msg, "different charsets")
}

func TestDynamicParameters(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [ENAME] :from EMP :where (AND (= SAL ?) (LIKE ENAME ?)))")
	params := res.ParameterRowType()
	require.Len(t, params.Fields, 2)
	assert.Equal(t, "?0", params.Fields[0].Name)
	assert.Equal(t, types.Integer, params.Fields[0].Type.Name)
	assert.True(t, params.Fields[0].Type.Nullable)
	assert.True(t, params.Fields[1].Type.IsChar())

	x.invalid(t, "(SELECT :list [?] :from EMP)", semantic.IllegalNullLiteral)
	x.invalid(t, "(SELECT :list [(+ null null)] :from EMP)", semantic.IllegalNullLiteral)
}

func TestLike(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [ENAME] :from EMP :where (LIKE ENAME 'A%'))")
	re, ok := res.LikeRegexp(res.Tree.Operand(res.Root, operator.SelectWhere))
	require.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(re), "ALLEN")
	assert.NotRegexp(t, regexp.MustCompile(re), "SMITH")
	x.invalid(t, "(SELECT :list [ENAME] :from EMP :where (LIKE ENAME 'A%' '!!'))", semantic.InvalidEscape)
}

func TestCast(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [(CAST SAL {TYPE DECIMAL 7 2}) (CAST null {TYPE MONEY})] :from EMP)")
	assert.Equal(t, "DECIMAL(7, 2) NOT NULL", res.Type().Fields[0].Type.String())
	assert.Equal(t, "DECIMAL(10, 2)", res.Type().Fields[1].Type.String())
	x.invalid(t, "(SELECT :list [(CAST SAL {TYPE NOSUCH})] :from EMP)", semantic.UnknownDatatype)
}

func TestFunctions(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(SELECT :list [(UPPER ENAME) CURRENT_DATE] :from EMP)")
	assert.Equal(t, "DATE NOT NULL", res.Type().Fields[1].Type.String())
	e := x.invalid(t, "(SELECT :list [(UPPR ENAME)] :from EMP)", semantic.UnknownFunction)
	assert.Contains(t, e.Suggestions, "UPPER")
	x.invalid(t, "(SELECT :list [(UPPER ENAME ENAME)] :from EMP)", semantic.ArityMismatch)
	e = x.invalid(t, "(SELECT :list [(UPPER SAL)] :from EMP)", semantic.OperandTypeMismatch)
	assert.NotEmpty(t, e.Signatures)
}

func TestInsert(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(INSERT :target DEPT :source (VALUES (ROW 50 'Sales')))")
	assert.Equal(t, []string{"ROWCOUNT"}, res.Type().FieldNames())
	assert.Equal(t, semantic.DMLNamespace, res.NamespaceOf(res.Root).Kind)

	x.invalid(t, "(INSERT :target DEPT :source (VALUES (ROW 50)))", semantic.ColumnCountMismatch)
	x.invalid(t, "(INSERT :target DEPT :columns [DEPTNO] :source (VALUES (ROW 'x')))", semantic.TypeNotAssignable)
	x.invalid(t, "(INSERT :target DEPT :columns [DEPTNO DEPTNO] :source (VALUES (ROW 1 2)))", semantic.DuplicateTargetColumn)
	x.invalid(t, "(INSERT :target DEPT :columns [DNO] :source (VALUES (ROW 1)))", semantic.UnknownField)
	x.invalid(t, "(INSERT :target NOSUCH :source (VALUES (ROW 1)))", semantic.TableNotFound)
}

func TestInsertNullTakesTargetType(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(INSERT :target BONUS :columns [ENAME SAL] :source (VALUES (ROW null ?)))")
	params := res.ParameterRowType()
	require.Len(t, params.Fields, 1)
	assert.Equal(t, types.Integer, params.Fields[0].Type.Name)
}

func TestUpdateAndDelete(t *testing.T) {
	x := newFixture(t)
	x.valid(t, "(UPDATE :target EMP :columns [SAL COMM] :sources [(+ SAL 1) 0] :condition (= EMPNO 1))")
	x.valid(t, "(DELETE :target EMP :condition (> SAL 100))")
	x.invalid(t, "(UPDATE :target EMP :columns [SAL] :sources ['x'])", semantic.TypeNotAssignable)
	x.invalid(t, "(DELETE :target EMP :condition (> SALARY 100))", semantic.UnknownIdentifier)
}

func TestSetOperations(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(UNION (SELECT :list [EMPNO ENAME] :from EMP) (SELECT :list [DEPTNO NAME] :from DEPT))")
	assert.Equal(t, []string{"EMPNO", "ENAME"}, res.Type().FieldNames())
	x.invalid(t, "(UNION (SELECT :list [EMPNO] :from EMP) (SELECT :list [DEPTNO NAME] :from DEPT))", semantic.ColumnCountMismatch)
	x.invalid(t, "(UNION (SELECT :list [EMPNO] :from EMP) (SELECT :list [NAME] :from DEPT))", semantic.IncompatibleValueType)
}

func TestValues(t *testing.T) {
	x := newFixture(t)
	res := x.valid(t, "(VALUES (ROW 1 'a') (ROW null 'bc'))")
	fields := res.Type().Fields
	require.Len(t, fields, 2)
	assert.Equal(t, types.Integer, fields[0].Type.Name)
	assert.True(t, fields[0].Type.Nullable)
	x.invalid(t, "(VALUES (ROW 1 2) (ROW 3))", semantic.ColumnCountMismatch)
}

func TestSubqueries(t *testing.T) {
	x := newFixture(t)
	x.valid(t, "(SELECT :list [ENAME] :from EMP :where (IN DEPTNO (SELECT :list [DEPTNO] :from DEPT)))")
	x.valid(t, "(SELECT :list [ENAME] :from EMP :where (EXISTS (SELECT :list [NAME] :from DEPT :where (= DEPT.DEPTNO EMP.DEPTNO))))")
	res := x.valid(t, "(SELECT :list [(AS (SCALAR_QUERY (SELECT :list [(MAX SAL)] :from EMP)) M)] :from DEPT)")
	assert.True(t, res.Type().Fields[0].Type.Nullable)
}

func TestExpressionStatement(t *testing.T) {
	x := newFixture(t)
	p := x.parse(t, "(+ 1 2)")
	typ, err := x.v.DeriveType(nil, p.Tree(), p.Root())
	require.NoError(t, err)
	assert.Equal(t, "INTEGER NOT NULL", typ.String())
}

func TestTypeDerivedOnce(t *testing.T) {
	f := types.NewFactory()
	ops := operator.NewStdCatalog(f)
	var calls int
	require.NoError(t, ops.Register(&operator.Operator{
		Name:   "COUNTED",
		Kind:   operator.Function,
		Syntax: operator.FunctionSyntax,
		Count:  operator.Exactly(1),
		Return: func(b *operator.CallBinding) (*types.Type, error) {
			calls++
			return b.Operands[0], nil
		},
	}))
	x := newFixtureWith(t, f, ops, semantic.DefaultConfig())
	res := x.valid(t, "(SELECT :list [(COUNTED SAL)] :from EMP)")
	require.Equal(t, 1, calls)
	id := selectItems(res)[0]
	typ, err := x.v.DeriveType(res.ScopeOf(id), res.Tree, id)
	require.NoError(t, err)
	assert.Same(t, res.TypeOf(id), typ)
	assert.Equal(t, 1, calls)
}

func TestCaseInsensitiveNames(t *testing.T) {
	f := types.NewFactory()
	cfg := semantic.DefaultConfig()
	cfg.CaseSensitive = false
	x := newFixtureWith(t, f, operator.NewStdCatalog(f), cfg)
	res := x.valid(t, "(SELECT :list [ename e.Sal] :from (AS EMP E))")
	assert.Equal(t, []string{"ename", "Sal"}, res.Type().FieldNames())
}

func TestLookupQualifiedName(t *testing.T) {
	x := newFixture(t)
	_, ok := x.v.LookupQualifiedName(0)
	assert.False(t, ok)
	text := "(SELECT :list [ENAME] :from EMP)"
	x.valid(t, text)
	names, ok := x.v.LookupQualifiedName(16)
	require.True(t, ok)
	assert.Equal(t, []string{"EMP", "ENAME"}, names)
}
