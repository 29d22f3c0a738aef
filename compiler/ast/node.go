package ast

import (
	"fmt"
	"strings"
	"time"

	"github.com/brimdata/sqlsem/collation"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/types"
	"github.com/shopspring/decimal"
)

// ID identifies a node within a Tree.  The zero ID is Nil and denotes an
// absent operand.
type ID int32

const Nil ID = 0

type (
	// Call applies an operator to operands.  Operands of special
	// operators may be Nil.
	Call struct {
		Op   *operator.Operator `json:"op"`
		Args []ID               `json:"args"`
		Loc  `json:"loc"`
	}
	// Identifier is a simple or compound name.  A final name of "*"
	// denotes a star.
	Identifier struct {
		Names     []string             `json:"names"`
		Collation *collation.Collation `json:"collation,omitempty"`
		Loc       `json:"loc"`
	}
	// Literal is a constant whose Value has a Go type determined by Tag.
	Literal struct {
		Tag       LiteralTag `json:"tag"`
		Value     any        `json:"value"`
		Precision int        `json:"precision,omitempty"`
		Loc       `json:"loc"`
	}
	List struct {
		Items []ID `json:"items"`
		Loc   `json:"loc"`
	}
	// DataTypeSpec names a type, e.g. in the target of a CAST.
	DataTypeSpec struct {
		Names     []string `json:"names"`
		Precision int      `json:"precision"`
		Scale     int      `json:"scale"`
		Charset   string   `json:"charset,omitempty"`
		Loc       `json:"loc"`
	}
	DynamicParam struct {
		Index int `json:"index"`
		Loc   `json:"loc"`
	}
	IntervalQualifier struct {
		Qualifier types.IntervalQualifier `json:"qualifier"`
		Loc       `json:"loc"`
	}
)

func (*Call) node()              {}
func (*Identifier) node()        {}
func (*Literal) node()           {}
func (*List) node()              {}
func (*DataTypeSpec) node()      {}
func (*DynamicParam) node()      {}
func (*IntervalQualifier) node() {}

// Kind returns the operator kind of the call.
func (c *Call) Kind() operator.Kind {
	return c.Op.Kind
}

// Arg returns operand i or Nil if there is no such operand.
func (c *Call) Arg(i int) ID {
	if i < 0 || i >= len(c.Args) {
		return Nil
	}
	return c.Args[i]
}

func (i *Identifier) IsStar() bool {
	return i.Names[len(i.Names)-1] == "*"
}

func (i *Identifier) IsSimple() bool {
	return len(i.Names) == 1
}

func (i *Identifier) Last() string {
	return i.Names[len(i.Names)-1]
}

func (i *Identifier) String() string {
	return strings.Join(i.Names, ".")
}

// LiteralTag determines the Go type of a Literal's Value:
//
//	Boolean            Truth
//	Exact, Approx      decimal.Decimal
//	Char               CharValue
//	Binary             []byte
//	Date, Time,
//	Timestamp          time.Time
//	IntervalYearMonth,
//	IntervalDayTime    IntervalValue
//	Symbol             string
//	Null               nil
type LiteralTag int

const (
	BooleanLit LiteralTag = iota
	ExactLit
	ApproxLit
	CharLit
	BinaryLit
	DateLit
	TimeLit
	TimestampLit
	IntervalYearMonthLit
	IntervalDayTimeLit
	SymbolLit
	NullLit
)

var tagNames = [...]string{"BOOLEAN", "EXACT", "APPROX", "CHAR", "BINARY", "DATE", "TIME",
	"TIMESTAMP", "INTERVAL_YEAR_MONTH", "INTERVAL_DAY_TIME", "SYMBOL", "NULL"}

func (t LiteralTag) String() string {
	return tagNames[t]
}

// Truth is the value of a BOOLEAN literal.
type Truth int

const (
	False Truth = iota
	True
	Unknown
)

// CharValue is the value of a character literal.  Collation is nil when
// the literal carries no COLLATE clause.
type CharValue struct {
	Value     string
	Charset   string
	Collation *collation.Collation
}

// IntervalValue is the value of an interval literal: a sign and one
// integer per field of the qualifier.
type IntervalValue struct {
	Sign      int
	Fields    []int64
	Qualifier types.IntervalQualifier
}

func (l *Literal) IsNull() bool {
	return l.Tag == NullLit
}

// Decimal returns the value of a numeric literal.
func (l *Literal) Decimal() (decimal.Decimal, bool) {
	d, ok := l.Value.(decimal.Decimal)
	return d, ok
}

// Symbol returns the value of a symbol literal.
func (l *Literal) Symbol() (string, bool) {
	if l.Tag != SymbolLit {
		return "", false
	}
	s, ok := l.Value.(string)
	return s, ok
}

// Truth returns the value of a boolean literal.
func (l *Literal) Truth() (Truth, bool) {
	t, ok := l.Value.(Truth)
	return t, ok
}

func (l *Literal) Time() (time.Time, bool) {
	t, ok := l.Value.(time.Time)
	return t, ok
}

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "NULL"
	case Truth:
		return [...]string{"FALSE", "TRUE", "UNKNOWN"}[v]
	case CharValue:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(v.Value, "'", "''"))
	case string:
		return v
	}
	return fmt.Sprint(l.Value)
}
