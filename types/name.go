package types

import (
	"fmt"
	"strings"
)

// Name is the SQL type name of a type, e.g. INTEGER or VARCHAR.
type Name int

const (
	Boolean Name = iota
	Tinyint
	Smallint
	Integer
	Bigint
	Decimal
	Float
	Real
	Double
	Date
	Time
	Timestamp
	IntervalYearMonth
	IntervalDayTime
	Char
	Varchar
	Binary
	Varbinary
	Null
	Any
	Symbol
	Row
	Multiset
	Cursor
	UnknownName
)

var names = [...]string{
	Boolean:           "BOOLEAN",
	Tinyint:           "TINYINT",
	Smallint:          "SMALLINT",
	Integer:           "INTEGER",
	Bigint:            "BIGINT",
	Decimal:           "DECIMAL",
	Float:             "FLOAT",
	Real:              "REAL",
	Double:            "DOUBLE",
	Date:              "DATE",
	Time:              "TIME",
	Timestamp:         "TIMESTAMP",
	IntervalYearMonth: "INTERVAL_YEAR_MONTH",
	IntervalDayTime:   "INTERVAL_DAY_TIME",
	Char:              "CHAR",
	Varchar:           "VARCHAR",
	Binary:            "BINARY",
	Varbinary:         "VARBINARY",
	Null:              "NULL",
	Any:               "ANY",
	Symbol:            "SYMBOL",
	Row:               "ROW",
	Multiset:          "MULTISET",
	Cursor:            "CURSOR",
	UnknownName:       "UNKNOWN",
}

func (n Name) String() string {
	if n >= 0 && int(n) < len(names) {
		return names[n]
	}
	return fmt.Sprintf("Name(%d)", int(n))
}

var aliases = map[string]Name{
	"INT":               Integer,
	"DEC":               Decimal,
	"NUMERIC":           Decimal,
	"CHARACTER":         Char,
	"CHARACTER VARYING": Varchar,
	"CHAR VARYING":      Varchar,
	"DOUBLE PRECISION":  Double,
	"BINARY VARYING":    Varbinary,
}

// LookupName returns the built-in type name spelled by s, ignoring case.
func LookupName(s string) (Name, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if n, ok := aliases[s]; ok {
		return n, true
	}
	for k, v := range names {
		if v == s && Name(k) != UnknownName {
			return Name(k), true
		}
	}
	return 0, false
}

// AllowsPrecision is true for type names that carry a precision.
func (n Name) AllowsPrecision() bool {
	switch n {
	case Decimal, Char, Varchar, Binary, Varbinary, Time, Timestamp, Float:
		return true
	}
	return false
}

// AllowsScale is true for type names that carry a scale.
func (n Name) AllowsScale() bool {
	return n == Decimal
}

// DefaultPrecision returns the precision assumed when none is given.
func (n Name) DefaultPrecision() int {
	switch n {
	case Char, Binary:
		return 1
	case Varchar, Varbinary:
		return MaxCharPrecision
	case Decimal:
		return MaxNumericPrecision
	case Time, Timestamp:
		return 0
	}
	return NoPrecision
}

// Rank orders the numeric names from narrowest to widest.  It returns -1
// for non-numeric names.
func (n Name) rank() int {
	switch n {
	case Tinyint:
		return 0
	case Smallint:
		return 1
	case Integer:
		return 2
	case Bigint:
		return 3
	case Decimal:
		return 4
	case Real:
		return 5
	case Float:
		return 6
	case Double:
		return 7
	}
	return -1
}

// integerDigits is the number of decimal digits an exact integer type holds.
func (n Name) integerDigits() int {
	switch n {
	case Tinyint:
		return 3
	case Smallint:
		return 5
	case Integer:
		return 10
	case Bigint:
		return 19
	}
	return 0
}

const (
	NoPrecision         = -1
	MaxNumericPrecision = 19
	MaxCharPrecision    = 65536
)
