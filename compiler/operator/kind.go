package operator

import "fmt"

// Kind classifies an operator.  Validation dispatches on Kind rather than
// on the identity of an operator.
type Kind int

const (
	Other Kind = iota
	// Queries
	Select
	Join
	OrderBy
	Union
	Except
	Intersect
	Values
	ExplicitTable
	// DML
	Insert
	Delete
	Update
	// Structure
	As
	Descending
	Over
	Window
	Preceding
	Following
	Row
	Case
	Cast
	Dot
	Unnest
	Lateral
	MultisetValue
	MultisetQuery
	MultisetSetOp
	ScalarQuery
	// Predicates
	Equals
	NotEquals
	GreaterThan
	GreaterThanOrEqual
	LessThan
	LessThanOrEqual
	IsDistinctFrom
	IsNotDistinctFrom
	And
	Or
	Not
	IsNull
	IsNotNull
	IsTrue
	IsNotTrue
	IsFalse
	IsNotFalse
	IsUnknown
	IsNotUnknown
	In
	NotIn
	Between
	NotBetween
	Like
	NotLike
	Similar
	NotSimilar
	Exists
	Overlaps
	// Arithmetic
	Plus
	Minus
	Times
	Divide
	MinusPrefix
	PlusPrefix
	Concat
	// Functions
	Function
	Coalesce
	Nullif
	Extract
	Trim
	Substring
	Position
	// Aggregates
	Sum
	Count
	Min
	Max
	Avg
	LastValue
	// Ranking
	Rank
	DenseRank
	PercentRank
	CumeDist
	RowNumber
)

var kindNames = map[Kind]string{
	Other: "OTHER", Select: "SELECT", Join: "JOIN", OrderBy: "ORDER_BY",
	Union: "UNION", Except: "EXCEPT", Intersect: "INTERSECT", Values: "VALUES",
	ExplicitTable: "EXPLICIT_TABLE", Insert: "INSERT", Delete: "DELETE",
	Update: "UPDATE", As: "AS", Descending: "DESCENDING", Over: "OVER",
	Window: "WINDOW", Preceding: "PRECEDING", Following: "FOLLOWING",
	Row: "ROW", Case: "CASE", Cast: "CAST", Dot: "DOT", Unnest: "UNNEST",
	Lateral: "LATERAL", MultisetValue: "MULTISET_VALUE",
	MultisetQuery: "MULTISET_QUERY", MultisetSetOp: "MULTISET_SET_OP",
	ScalarQuery: "SCALAR_QUERY", Equals: "EQUALS", NotEquals: "NOT_EQUALS",
	GreaterThan: "GREATER_THAN", GreaterThanOrEqual: "GREATER_THAN_OR_EQUAL",
	LessThan: "LESS_THAN", LessThanOrEqual: "LESS_THAN_OR_EQUAL",
	IsDistinctFrom: "IS_DISTINCT_FROM", IsNotDistinctFrom: "IS_NOT_DISTINCT_FROM",
	And: "AND", Or: "OR", Not: "NOT", IsNull: "IS_NULL", IsNotNull: "IS_NOT_NULL",
	IsTrue: "IS_TRUE", IsNotTrue: "IS_NOT_TRUE", IsFalse: "IS_FALSE",
	IsNotFalse: "IS_NOT_FALSE", IsUnknown: "IS_UNKNOWN", IsNotUnknown: "IS_NOT_UNKNOWN",
	In: "IN", NotIn: "NOT_IN", Between: "BETWEEN", NotBetween: "NOT_BETWEEN",
	Like: "LIKE", NotLike: "NOT_LIKE", Similar: "SIMILAR", NotSimilar: "NOT_SIMILAR",
	Exists: "EXISTS", Overlaps: "OVERLAPS", Plus: "PLUS", Minus: "MINUS",
	Times: "TIMES", Divide: "DIVIDE", MinusPrefix: "MINUS_PREFIX",
	PlusPrefix: "PLUS_PREFIX", Concat: "CONCAT", Function: "FUNCTION",
	Coalesce: "COALESCE", Nullif: "NULLIF", Extract: "EXTRACT", Trim: "TRIM",
	Substring: "SUBSTRING", Position: "POSITION", Sum: "SUM", Count: "COUNT",
	Min: "MIN", Max: "MAX", Avg: "AVG", LastValue: "LAST_VALUE", Rank: "RANK",
	DenseRank: "DENSE_RANK", PercentRank: "PERCENT_RANK", CumeDist: "CUME_DIST",
	RowNumber: "ROW_NUMBER",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsQuery is true for kinds that produce a relation.
func (k Kind) IsQuery() bool {
	switch k {
	case Select, OrderBy, Union, Except, Intersect, Values, ExplicitTable:
		return true
	}
	return false
}

// IsDML is true for INSERT, DELETE and UPDATE.
func (k Kind) IsDML() bool {
	return k == Insert || k == Delete || k == Update
}

// IsTopLevel is true for kinds that may appear as a whole statement.
func (k Kind) IsTopLevel() bool {
	return k.IsQuery() || k.IsDML()
}

func (k Kind) IsSetOp() bool {
	return k == Union || k == Except || k == Intersect
}

// IsComparison is true for operators whose character operands must have a
// common collation.
func (k Kind) IsComparison() bool {
	switch k {
	case Equals, NotEquals, GreaterThan, GreaterThanOrEqual, LessThan,
		LessThanOrEqual, IsDistinctFrom, IsNotDistinctFrom, In, NotIn,
		Between, NotBetween, Like, NotLike, Similar, NotSimilar:
		return true
	}
	return false
}

// IsAggregate is true for aggregate functions.
func (k Kind) IsAggregate() bool {
	switch k {
	case Sum, Count, Min, Max, Avg, LastValue:
		return true
	}
	return k.IsRanking()
}

// IsRanking is true for the ranking window functions.
func (k Kind) IsRanking() bool {
	switch k {
	case Rank, DenseRank, PercentRank, CumeDist, RowNumber:
		return true
	}
	return false
}

// Syntax is the call syntax of an operator.
type Syntax int

const (
	FunctionSyntax Syntax = iota
	Binary
	Prefix
	Postfix
	Special
	// FunctionID is a function called without parentheses, e.g.
	// CURRENT_DATE.
	FunctionID
	Internal
)

func (s Syntax) String() string {
	switch s {
	case FunctionSyntax:
		return "FUNCTION"
	case Binary:
		return "BINARY"
	case Prefix:
		return "PREFIX"
	case Postfix:
		return "POSTFIX"
	case Special:
		return "SPECIAL"
	case FunctionID:
		return "FUNCTION_ID"
	case Internal:
		return "INTERNAL"
	}
	return fmt.Sprintf("Syntax(%d)", int(s))
}
