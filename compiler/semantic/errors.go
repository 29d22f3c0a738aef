package semantic

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/brimdata/sqlsem/compiler/ast"
	"github.com/brimdata/sqlsem/compiler/srcfiles"
)

// Code classifies a validation failure.  A Code is itself an error so
// that callers may write errors.Is(err, semantic.NotAGroupExpression).
type Code int

const (
	Internal Code = iota
	UnknownIdentifier
	UnknownField
	AmbiguousColumn
	TableNotFound
	UnknownFunction
	NoMatchingOverload
	OperandTypeMismatch
	ArityMismatch
	IllegalNullLiteral
	NotAGroupExpression
	AggregateIllegalInWhere
	AggregateIllegalInGroupBy
	WindowedAggregateIllegal
	NestedAggregate
	WhereOrHavingNotBoolean
	ConditionNotBoolean
	JoinConditionRequired
	JoinConditionDisallowed
	NaturalDisallowed
	NaturalDisallowsOnOrUsing
	IncompatibleCharset
	IncompatibleCollation
	NoCommonCollation
	WindowNotFound
	DuplicateWindowName
	WindowRefIllegal
	OverRequired
	NotAnAggregate
	FrameBoundNotConstant
	WrongNumericKind
	TypeFamilyMismatch
	NegativeFrameSize
	RankRequiresOrderBy
	RankDisallowsFrame
	CurrentRowPreceding
	FollowingBeforePreceding
	BadLowerBound
	BadUpperBound
	CompoundOrderByRange
	RangeRequiresOrderBy
	ValidationCycle
	ColumnCountMismatch
	TypeNotAssignable
	DuplicateTargetColumn
	IncompatibleValueType
	ColumnTypeMismatch
	OrdinalOutOfRange
	UnknownDatatype
	CastIllegal
	InvalidEscape
)

var codeNames = [...]string{
	Internal:                  "Internal",
	UnknownIdentifier:         "UnknownIdentifier",
	UnknownField:              "UnknownField",
	AmbiguousColumn:           "AmbiguousColumn",
	TableNotFound:             "TableNotFound",
	UnknownFunction:           "UnknownFunction",
	NoMatchingOverload:        "NoMatchingOverload",
	OperandTypeMismatch:       "OperandTypeMismatch",
	ArityMismatch:             "ArityMismatch",
	IllegalNullLiteral:        "IllegalNullLiteral",
	NotAGroupExpression:       "NotAGroupExpression",
	AggregateIllegalInWhere:   "AggregateIllegalInWhere",
	AggregateIllegalInGroupBy: "AggregateIllegalInGroupBy",
	WindowedAggregateIllegal:  "WindowedAggregateIllegal",
	NestedAggregate:           "NestedAggregate",
	WhereOrHavingNotBoolean:   "WhereOrHavingNotBoolean",
	ConditionNotBoolean:       "ConditionNotBoolean",
	JoinConditionRequired:     "JoinConditionRequired",
	JoinConditionDisallowed:   "JoinConditionDisallowed",
	NaturalDisallowed:         "NaturalDisallowed",
	NaturalDisallowsOnOrUsing: "NaturalDisallowsOnOrUsing",
	IncompatibleCharset:       "IncompatibleCharset",
	IncompatibleCollation:     "IncompatibleCollation",
	NoCommonCollation:         "NoCommonCollation",
	WindowNotFound:            "WindowNotFound",
	DuplicateWindowName:       "DuplicateWindowName",
	WindowRefIllegal:          "WindowRefIllegal",
	OverRequired:              "OverRequired",
	NotAnAggregate:            "NotAnAggregate",
	FrameBoundNotConstant:     "FrameBoundNotConstant",
	WrongNumericKind:          "WrongNumericKind",
	TypeFamilyMismatch:        "TypeFamilyMismatch",
	NegativeFrameSize:         "NegativeFrameSize",
	RankRequiresOrderBy:       "RankRequiresOrderBy",
	RankDisallowsFrame:        "RankDisallowsFrame",
	CurrentRowPreceding:       "CurrentRowPreceding",
	FollowingBeforePreceding:  "FollowingBeforePreceding",
	BadLowerBound:             "BadLowerBound",
	BadUpperBound:             "BadUpperBound",
	CompoundOrderByRange:      "CompoundOrderByRange",
	RangeRequiresOrderBy:      "RangeRequiresOrderBy",
	ValidationCycle:           "ValidationCycle",
	ColumnCountMismatch:       "ColumnCountMismatch",
	TypeNotAssignable:         "TypeNotAssignable",
	DuplicateTargetColumn:     "DuplicateTargetColumn",
	IncompatibleValueType:     "IncompatibleValueType",
	ColumnTypeMismatch:        "ColumnTypeMismatch",
	OrdinalOutOfRange:         "OrdinalOutOfRange",
	UnknownDatatype:           "UnknownDatatype",
	CastIllegal:               "CastIllegal",
	InvalidEscape:             "InvalidEscape",
}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

func (c Code) Error() string {
	return c.String()
}

// Error is a validation failure at a node.  Signatures lists the
// admissible call forms for operator errors and Suggestions the closest
// visible names for resolution errors.
type Error struct {
	Code        Code
	Msg         string
	Node        ast.ID
	Loc         ast.Loc
	Signatures  []string
	Suggestions []string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Msg)
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (did you mean %s?)", quoteList(e.Suggestions))
	}
	return b.String()
}

// Is matches a target Code or an *Error with the same Code.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Code:
		return e.Code == t
	case *Error:
		return e.Code == t.Code
	}
	return false
}

// Locate binds e to its position in files so that it renders with a
// line, column and source excerpt.  Errors on synthesized nodes are
// returned unchanged.
func Locate(err error, files *srcfiles.List) error {
	var e *Error
	if files == nil || !errors.As(err, &e) || !e.Loc.IsValid() {
		return err
	}
	return files.Locate(err, e.Loc.First, e.Loc.Last)
}

func quoteList(names []string) string {
	quoted := make([]string, len(names))
	for k, s := range names {
		quoted[k] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}

func (a *analyzer) errorf(id ast.ID, code Code, format string, args ...any) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
		Node: id,
		Loc:  a.tree.Loc(id),
	}
}

// suggest returns up to limit of candidates within a small edit distance
// of name, closest first.
func suggest(name string, candidates []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	type scored struct {
		name string
		dist int
	}
	var matches []scored
	seen := make(map[string]bool)
	upper := strings.ToUpper(name)
	for _, c := range candidates {
		if seen[c] || c == "" {
			continue
		}
		seen[c] = true
		d := levenshtein.ComputeDistance(upper, strings.ToUpper(c))
		if d <= max(2, len(name)/3) {
			matches = append(matches, scored{c, d})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].dist != matches[j].dist {
			return matches[i].dist < matches[j].dist
		}
		return matches[i].name < matches[j].name
	})
	var out []string
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, m.name)
	}
	return out
}
