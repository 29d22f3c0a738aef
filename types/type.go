// Package types implements the SQL type model used by the validator.
// Types are created through a Factory, which interns them so that two
// types are equal exactly when their pointers are equal.
package types

import (
	"fmt"
	"strings"

	"github.com/brimdata/sqlsem/collation"
)

type Type struct {
	Name      Name
	Nullable  bool
	Precision int
	Scale     int
	// Charset and Collation are set only for character types.
	Charset   string
	Collation collation.Collation
	// Fields is set only for ROW types.
	Fields []Field
	// Elem is set only for MULTISET types.
	Elem *Type
	// Interval is set only for interval types.
	Interval *IntervalQualifier
	key      string
}

type Field struct {
	Name string
	Type *Type
}

// Unknown is the type of a node whose type cannot be determined from the
// node alone.  It is never interned and is never cached over a known type.
var Unknown = &Type{Name: UnknownName, Nullable: true, Precision: NoPrecision, key: "UNKNOWN"}

func (t *Type) IsUnknown() bool { return t == nil || t.Name == UnknownName }
func (t *Type) IsNull() bool { return t != nil && t.Name == Null }
func (t *Type) IsBoolean() bool { return t != nil && t.Name == Boolean }
func (t *Type) IsChar() bool { return t != nil && (t.Name == Char || t.Name == Varchar) }
func (t *Type) IsBinary() bool { return t != nil && (t.Name == Binary || t.Name == Varbinary) }
func (t *Type) IsRow() bool { return t != nil && t.Name == Row }
func (t *Type) IsMultiset() bool { return t != nil && t.Name == Multiset }
func (t *Type) IsInterval() bool { return t != nil && (t.Name == IntervalYearMonth || t.Name == IntervalDayTime) }
func (t *Type) IsDatetime() bool { return t != nil && (t.Name == Date || t.Name == Time || t.Name == Timestamp) }
func (t *Type) IsNumeric() bool { return t != nil && t.Name.rank() >= 0 }
func (t *Type) IsExactNumeric() bool {
	return t != nil && t.Name.rank() >= 0 && t.Name.rank() <= Decimal.rank()
}

// Field returns the field of a ROW type with the given name.
func (t *Type) Field(name string) (Field, int, bool) {
	for k, f := range t.Fields {
		if f.Name == name {
			return f, k, true
		}
	}
	return Field{}, -1, false
}

// FieldNames returns the names of a ROW type's fields in order.
func (t *Type) FieldNames() []string {
	var out []string
	for _, f := range t.Fields {
		out = append(out, f.Name)
	}
	return out
}

// String returns the type in the form used by diagnostics, e.g.
// "VARCHAR(20) NOT NULL" or "RecordType(INTEGER NOT NULL EMPNO)".
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	t.format(&b, false)
	return b.String()
}

// FullString is like String but includes character sets and collations.
func (t *Type) FullString() string {
	var b strings.Builder
	t.format(&b, true)
	return b.String()
}

func (t *Type) format(b *strings.Builder, full bool) {
	switch t.Name {
	case Row:
		b.WriteString("RecordType(")
		for k, f := range t.Fields {
			if k > 0 {
				b.WriteString(", ")
			}
			f.Type.format(b, full)
			b.WriteByte(' ')
			b.WriteString(f.Name)
		}
		b.WriteByte(')')
	case Multiset:
		t.Elem.format(b, full)
		b.WriteString(" MULTISET")
	case IntervalYearMonth, IntervalDayTime:
		b.WriteString("INTERVAL ")
		if t.Interval != nil {
			b.WriteString(t.Interval.String())
		}
	case Decimal:
		fmt.Fprintf(b, "DECIMAL(%d, %d)", t.Precision, t.Scale)
	default:
		b.WriteString(t.Name.String())
		if t.Name.AllowsPrecision() && t.Precision != NoPrecision &&
			!((t.Name == Time || t.Name == Timestamp) && t.Precision == 0) {
			fmt.Fprintf(b, "(%d)", t.Precision)
		}
	}
	if full && t.IsChar() {
		fmt.Fprintf(b, " CHARACTER SET %q COLLATE %q %s", t.Charset, t.Collation.Name, t.Collation.Coercibility)
	}
	if !t.Nullable && t.Name != Row && t.Name != Null && t.Name != UnknownName {
		b.WriteString(" NOT NULL")
	}
}

// TimeUnit is a field of a datetime or interval value.
type TimeUnit int

const (
	Year TimeUnit = iota
	Month
	Day
	Hour
	Minute
	Second
)

var unitNames = [...]string{"YEAR", "MONTH", "DAY", "HOUR", "MINUTE", "SECOND"}

func (u TimeUnit) String() string { return unitNames[u] }

// LookupTimeUnit returns the unit spelled by s, ignoring case.
func LookupTimeUnit(s string) (TimeUnit, bool) {
	s = strings.ToUpper(s)
	for k, v := range unitNames {
		if v == s {
			return TimeUnit(k), true
		}
	}
	return 0, false
}

// IntervalQualifier describes the fields of an interval type, e.g.
// DAY(2) TO SECOND(3).
type IntervalQualifier struct {
	Start               TimeUnit
	End                 TimeUnit
	StartPrecision      int
	FractionalPrecision int
}

// YearMonth is true for YEAR, MONTH and YEAR TO MONTH qualifiers.
func (q IntervalQualifier) YearMonth() bool {
	return q.Start <= Month
}

func (q IntervalQualifier) String() string {
	s := q.Start.String()
	if q.StartPrecision > 0 {
		s = fmt.Sprintf("%s(%d)", s, q.StartPrecision)
	}
	if q.End != q.Start {
		s += " TO " + q.End.String()
		if q.End == Second && q.FractionalPrecision > 0 {
			s = fmt.Sprintf("%s(%d)", s, q.FractionalPrecision)
		}
	}
	return s
}
