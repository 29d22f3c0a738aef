package operator

import "github.com/brimdata/sqlsem/types"

func binary(name string, kind Kind, prec int, leftAssoc bool, ret ReturnTypeInference, infer OperandTypeInference, check OperandTypeChecker) *Operator {
	l, r := precedence(prec, leftAssoc)
	return &Operator{
		Name:      name,
		Kind:      kind,
		Syntax:    Binary,
		LeftPrec:  l,
		RightPrec: r,
		Count:     Exactly(2),
		Return:    ret,
		Infer:     infer,
		Checker:   check,
	}
}

func prefix(name string, kind Kind, prec int, ret ReturnTypeInference, infer OperandTypeInference, check OperandTypeChecker) *Operator {
	l, r := precedence(prec, false)
	return &Operator{Name: name, Kind: kind, Syntax: Prefix, LeftPrec: l, RightPrec: r, Count: Exactly(1), Return: ret, Infer: infer, Checker: check}
}

func postfix(name string, kind Kind, prec int, ret ReturnTypeInference, infer OperandTypeInference, check OperandTypeChecker) *Operator {
	l, r := precedence(prec, false)
	return &Operator{Name: name, Kind: kind, Syntax: Postfix, LeftPrec: l, RightPrec: r, Count: Exactly(1), Return: ret, Infer: infer, Checker: check}
}

func function(name string, kind Kind, count OperandCount, ret ReturnTypeInference, infer OperandTypeInference, check OperandTypeChecker) *Operator {
	return &Operator{Name: name, Kind: kind, Syntax: FunctionSyntax, Count: count, Return: ret, Infer: infer, Checker: check}
}

func special(name string, kind Kind, prec int, count OperandCount, slots []string) *Operator {
	l, r := precedence(prec, false)
	return &Operator{Name: name, Kind: kind, Syntax: Special, LeftPrec: l, RightPrec: r, Count: count, Slots: slots}
}

func monotonic(op *Operator) *Operator {
	op.Monotonic = true
	return op
}

// NewStdCatalog returns a catalog holding the standard SQL operators and
// functions.
func NewStdCatalog(f *types.Factory) *Catalog {
	c := NewCatalog(f)
	// Relational operators
	c.mustRegister(
		special("SELECT", Select, 0, Exactly(len(selectSlots)), selectSlots),
		special("JOIN", Join, 8, Exactly(len(joinSlots)), joinSlots),
		special("ORDER BY", OrderBy, 0, Exactly(len(orderSlots)), orderSlots),
		binary("UNION", Union, 7, true, nil, nil, nil),
		binary("UNION ALL", Union, 7, true, nil, nil, nil),
		binary("EXCEPT", Except, 7, true, nil, nil, nil),
		binary("EXCEPT ALL", Except, 7, true, nil, nil, nil),
		binary("INTERSECT", Intersect, 9, true, nil, nil, nil),
		binary("INTERSECT ALL", Intersect, 9, true, nil, nil, nil),
		special("VALUES", Values, 0, AtLeast(1), nil),
		prefix("TABLE", ExplicitTable, 1, nil, nil, nil),
		special("INSERT", Insert, 0, Exactly(len(insertSlots)), insertSlots),
		special("DELETE", Delete, 0, Exactly(len(deleteSlots)), deleteSlots),
		special("UPDATE", Update, 0, Exactly(len(updateSlots)), updateSlots),
		special("UNNEST", Unnest, 20, Exactly(1), nil),
		prefix("LATERAL", Lateral, 20, nil, nil, nil),
	)
	// Structural operators
	c.mustRegister(
		binary("AS", As, 10, true, nil, nil, nil),
		postfix("DESC", Descending, 10, nil, nil, nil),
		binary("OVER", Over, 10, true, nil, nil, nil),
		special("WINDOW", Window, 0, Exactly(len(windowSlots)), windowSlots),
		postfix("PRECEDING", Preceding, 10, nil, nil, nil),
		postfix("FOLLOWING", Following, 10, nil, nil, nil),
		withInfer(special("ROW", Row, 0, AtLeast(1), nil), ReturnType),
		special("CASE", Case, 0, Exactly(len(caseSlots)), caseSlots),
		special("CAST", Cast, 0, Exactly(2), nil),
		binary(".", Dot, 40, true, nil, nil, AnyX2),
		special("MULTISET", MultisetValue, 0, AtLeast(1), nil),
		special("MULTISET QUERY", MultisetQuery, 0, Exactly(1), nil),
		special("SCALAR QUERY", ScalarQuery, 0, Exactly(1), nil),
		binary("MULTISET UNION", MultisetSetOp, 7, true, NullableFirstArg, FirstKnown,
			Families{types.FamilyMultiset, types.FamilyMultiset}),
		binary("MULTISET INTERSECT", MultisetSetOp, 9, true, NullableFirstArg, FirstKnown,
			Families{types.FamilyMultiset, types.FamilyMultiset}),
		binary("MULTISET EXCEPT", MultisetSetOp, 7, true, NullableFirstArg, FirstKnown,
			Families{types.FamilyMultiset, types.FamilyMultiset}),
	)
	// Predicates
	c.mustRegister(
		binary("AND", And, 14, true, NullableBoolean, BooleanOperands, BooleanX2),
		binary("OR", Or, 13, true, NullableBoolean, BooleanOperands, BooleanX2),
		prefix("NOT", Not, 15, NullableBoolean, BooleanOperands, BooleanX1),
		binary("=", Equals, 15, true, NullableBoolean, FirstKnown, Comparable{N: 2}),
		binary("<>", NotEquals, 15, true, NullableBoolean, FirstKnown, Comparable{N: 2}),
		binary(">", GreaterThan, 15, true, NullableBoolean, FirstKnown, Comparable{N: 2, Ordered: true}),
		binary(">=", GreaterThanOrEqual, 15, true, NullableBoolean, FirstKnown, Comparable{N: 2, Ordered: true}),
		binary("<", LessThan, 15, true, NullableBoolean, FirstKnown, Comparable{N: 2, Ordered: true}),
		binary("<=", LessThanOrEqual, 15, true, NullableBoolean, FirstKnown, Comparable{N: 2, Ordered: true}),
		binary("IS DISTINCT FROM", IsDistinctFrom, 15, true, Boolean, FirstKnown, Comparable{N: 2}),
		binary("IS NOT DISTINCT FROM", IsNotDistinctFrom, 15, true, Boolean, FirstKnown, Comparable{N: 2}),
		postfix("IS NULL", IsNull, 15, Boolean, Varchar1024, AnyX1),
		postfix("IS NOT NULL", IsNotNull, 15, Boolean, Varchar1024, AnyX1),
		postfix("IS TRUE", IsTrue, 15, Boolean, BooleanOperands, BooleanX1),
		postfix("IS NOT TRUE", IsNotTrue, 15, Boolean, BooleanOperands, BooleanX1),
		postfix("IS FALSE", IsFalse, 15, Boolean, BooleanOperands, BooleanX1),
		postfix("IS NOT FALSE", IsNotFalse, 15, Boolean, BooleanOperands, BooleanX1),
		postfix("IS UNKNOWN", IsUnknown, 15, Boolean, BooleanOperands, BooleanX1),
		postfix("IS NOT UNKNOWN", IsNotUnknown, 15, Boolean, BooleanOperands, BooleanX1),
		binary("IN", In, 15, true, NullableBoolean, FirstKnown, nil),
		binary("NOT IN", NotIn, 15, true, NullableBoolean, FirstKnown, nil),
		&Operator{Name: "BETWEEN", Kind: Between, Syntax: Special, LeftPrec: 30, RightPrec: 30,
			Count: Exactly(3), Return: NullableBoolean, Infer: FirstKnown, Checker: BetweenChecker},
		&Operator{Name: "NOT BETWEEN", Kind: NotBetween, Syntax: Special, LeftPrec: 30, RightPrec: 30,
			Count: Exactly(3), Return: NullableBoolean, Infer: FirstKnown, Checker: BetweenChecker},
		like("LIKE", Like),
		like("NOT LIKE", NotLike),
		like("SIMILAR TO", Similar),
		like("NOT SIMILAR TO", NotSimilar),
		prefix("EXISTS", Exists, 20, Boolean, nil, nil),
		binary("OVERLAPS", Overlaps, 15, true, NullableBoolean, FirstKnown,
			Families{types.FamilyDatetime, types.FamilyAny}),
	)
	// Arithmetic
	c.mustRegister(
		monotonic(binary("+", Plus, 20, true, NullableLeastRestr, FirstKnown, PlusChecker)),
		monotonic(binary("-", Minus, 20, true, NullableLeastRestr, FirstKnown, MinusChecker)),
		monotonic(binary("*", Times, 30, true, NullableProduct, FirstKnown, MultiplyChecker)),
		binary("/", Divide, 30, true, NullableQuotient, FirstKnown, DivideChecker),
		monotonic(prefix("-", MinusPrefix, 20, FirstArgType, ReturnType, NumericOrInterval)),
		monotonic(prefix("+", PlusPrefix, 20, FirstArgType, ReturnType, NumericOrInterval)),
		binary("||", Concat, 30, true, NullableDyadicConcat, nil, SameString{N: 2}),
	)
	// Functions
	c.mustRegister(
		function("CHAR_LENGTH", Function, Exactly(1), NullableInteger, nil, CharX1),
		function("CHARACTER_LENGTH", Function, Exactly(1), NullableInteger, nil, CharX1),
		function("UPPER", Function, Exactly(1), NullableFirstArg, nil, CharX1),
		function("LOWER", Function, Exactly(1), NullableFirstArg, nil, CharX1),
		function("INITCAP", Function, Exactly(1), NullableFirstArg, nil, CharX1),
		function("POWER", Function, Exactly(2), NullableDouble, nil, NumericX2),
		function("MOD", Function, Exactly(2), NullableLeastRestr, nil,
			Families{types.FamilyExactNumeric, types.FamilyExactNumeric}),
		function("LN", Function, Exactly(1), NullableDouble, nil, NumericX1),
		function("LOG", Function, Exactly(1), NullableDouble, nil, NumericX1),
		function("LOG", Function, Exactly(2), NullableDouble, nil, NumericX2),
		function("ABS", Function, Exactly(1), FirstArgType, nil, NumericOrInterval),
		monotonic(function("FLOOR", Function, Exactly(1), FirstArgType, nil, NumericOrInterval)),
		monotonic(function("CEIL", Function, Exactly(1), FirstArgType, nil, NumericOrInterval)),
		function("COALESCE", Coalesce, AtLeast(1), LeastRestrictive, FirstKnown, nil),
		function("NULLIF", Nullif, Exactly(2), Cascade(FirstArgType, forceNullable), FirstKnown, Comparable{N: 2}),
		function("SUBSTRING", Substring, Range(2, 3), NullableFirstArg, nil, AnyOf{
			Families{types.FamilyCharacter, types.FamilyNumeric, types.FamilyNumeric},
			Families{types.FamilyBinary, types.FamilyNumeric, types.FamilyNumeric},
		}),
		function("POSITION", Position, Exactly(2), NullableInteger, nil, SameString{N: 2}),
		function("TRIM", Trim, Exactly(3), Cascade(ThirdArgType, ToNullable, ToVarying), nil,
			Families{types.FamilySymbol, types.FamilyCharacter, types.FamilyCharacter}),
		function("EXTRACT", Extract, Exactly(2), Cascade(Bigint, ToNullable), nil,
			AnyOf{Families{types.FamilySymbol, types.FamilyDatetime}, Families{types.FamilySymbol, types.FamilyInterval}}),
		functionID("CURRENT_DATE", Date),
		functionID("CURRENT_TIME", Time),
		functionID("CURRENT_TIMESTAMP", Timestamp),
		functionID("LOCALTIME", Time),
		functionID("LOCALTIMESTAMP", Timestamp),
		functionID("USER", Varchar2000),
		functionID("CURRENT_USER", Varchar2000),
		functionID("SESSION_USER", Varchar2000),
		functionID("SYSTEM_USER", Varchar2000),
		functionID("CURRENT_ROLE", Varchar2000),
		functionID("CURRENT_PATH", Varchar2000),
	)
	// Aggregates and ranking functions
	c.mustRegister(
		function("SUM", Sum, Exactly(1), FirstArgType, nil, NumericX1),
		function("COUNT", Count, Range(0, 1), Bigint, nil, nil),
		function("MIN", Min, Exactly(1), FirstArgType, nil, Comparable{N: 1, Ordered: true}),
		function("MAX", Max, Exactly(1), FirstArgType, nil, Comparable{N: 1, Ordered: true}),
		function("AVG", Avg, Exactly(1), FirstArgType, nil, NumericX1),
		function("LAST_VALUE", LastValue, Exactly(1), FirstArgType, nil, AnyX1),
		function("RANK", Rank, Exactly(0), Integer, nil, nil),
		function("DENSE_RANK", DenseRank, Exactly(0), Integer, nil, nil),
		function("PERCENT_RANK", PercentRank, Exactly(0), Double, nil, nil),
		function("CUME_DIST", CumeDist, Exactly(0), Double, nil, nil),
		function("ROW_NUMBER", RowNumber, Exactly(0), Bigint, nil, nil),
	)
	return c
}

func withInfer(op *Operator, infer OperandTypeInference) *Operator {
	op.Infer = infer
	return op
}

func like(name string, kind Kind) *Operator {
	return &Operator{
		Name:      name,
		Kind:      kind,
		Syntax:    Special,
		LeftPrec:  30,
		RightPrec: 30,
		Count:     Range(2, 3),
		Return:    NullableBoolean,
		Infer:     FirstKnown,
		Checker:   AnyOf{SameString{N: 2}, SameString{N: 3}},
	}
}

func functionID(name string, ret ReturnTypeInference) *Operator {
	return &Operator{Name: name, Kind: Function, Syntax: FunctionID, Count: Exactly(0), Return: ret}
}

// ThirdArgType returns the type of the third operand.
func ThirdArgType(b *CallBinding) (*types.Type, error) {
	return b.Type(2), nil
}

func forceNullable(b *CallBinding, t *types.Type) *types.Type {
	return b.Types.Nullable(t, true)
}
