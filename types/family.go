package types

// Family is a set of type names that behave alike for operand checking.
type Family int

const (
	FamilyAny Family = iota
	FamilyBoolean
	FamilyNumeric
	FamilyExactNumeric
	FamilyApproxNumeric
	FamilyCharacter
	FamilyBinary
	FamilyString
	FamilyDate
	FamilyTime
	FamilyTimestamp
	FamilyDatetime
	FamilyIntervalYearMonth
	FamilyIntervalDayTime
	FamilyInterval
	FamilyNull
	FamilyMultiset
	FamilyRow
	FamilySymbol
)

var familyNames = [...]string{
	FamilyAny:               "ANY",
	FamilyBoolean:           "BOOLEAN",
	FamilyNumeric:           "NUMERIC",
	FamilyExactNumeric:      "EXACT_NUMERIC",
	FamilyApproxNumeric:     "APPROXIMATE_NUMERIC",
	FamilyCharacter:         "CHARACTER",
	FamilyBinary:            "BINARY",
	FamilyString:            "STRING",
	FamilyDate:              "DATE",
	FamilyTime:              "TIME",
	FamilyTimestamp:         "TIMESTAMP",
	FamilyDatetime:          "DATETIME",
	FamilyIntervalYearMonth: "INTERVAL_YEAR_MONTH",
	FamilyIntervalDayTime:   "INTERVAL_DAY_TIME",
	FamilyInterval:          "INTERVAL",
	FamilyNull:              "NULL",
	FamilyMultiset:          "MULTISET",
	FamilyRow:               "ROW",
	FamilySymbol:            "SYMBOL",
}

func (f Family) String() string {
	return familyNames[f]
}

// Contains reports whether a value of type t belongs to f.  A NULL type
// belongs to every family and ANY belongs to every family.
func (f Family) Contains(t *Type) bool {
	if t == nil {
		return false
	}
	switch t.Name {
	case Null, Any:
		return true
	}
	switch f {
	case FamilyAny:
		return true
	case FamilyBoolean:
		return t.Name == Boolean
	case FamilyNumeric:
		return t.IsNumeric()
	case FamilyExactNumeric:
		return t.IsExactNumeric()
	case FamilyApproxNumeric:
		return t.IsNumeric() && !t.IsExactNumeric()
	case FamilyCharacter:
		return t.IsChar()
	case FamilyBinary:
		return t.IsBinary()
	case FamilyString:
		return t.IsChar() || t.IsBinary()
	case FamilyDate:
		return t.Name == Date
	case FamilyTime:
		return t.Name == Time
	case FamilyTimestamp:
		return t.Name == Timestamp
	case FamilyDatetime:
		return t.IsDatetime()
	case FamilyIntervalYearMonth:
		return t.Name == IntervalYearMonth
	case FamilyIntervalDayTime:
		return t.Name == IntervalDayTime
	case FamilyInterval:
		return t.IsInterval()
	case FamilyNull:
		return false
	case FamilyMultiset:
		return t.Name == Multiset
	case FamilyRow:
		return t.Name == Row
	case FamilySymbol:
		return t.Name == Symbol
	}
	return false
}
