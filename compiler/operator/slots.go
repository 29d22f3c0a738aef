package operator

// Operand positions of the special operators.
const (
	SelectKeywords = iota
	SelectList
	SelectFrom
	SelectWhere
	SelectGroup
	SelectHaving
	SelectWindow
	SelectOrder
)

const (
	JoinLeft = iota
	JoinNatural
	JoinType
	JoinRight
	JoinConditionType
	JoinCondition
)

const (
	OrderByQuery = iota
	OrderByList
)

const (
	InsertTarget = iota
	InsertSource
	InsertColumns
	InsertSourceSelect
)

const (
	DeleteTarget = iota
	DeleteCondition
	DeleteAlias
	DeleteSourceSelect
)

const (
	UpdateTarget = iota
	UpdateColumns
	UpdateSources
	UpdateCondition
	UpdateAlias
	UpdateSourceSelect
)

const (
	WindowName = iota
	WindowRef
	WindowPartition
	WindowOrder
	WindowRows
	WindowLower
	WindowUpper
)

const (
	CaseValue = iota
	CaseWhen
	CaseThen
	CaseElse
)

var (
	selectSlots = []string{"keywords", "list", "from", "where", "group", "having", "window", "order"}
	joinSlots   = []string{"left", "natural", "type", "right", "condition_type", "condition"}
	orderSlots  = []string{"query", "order"}
	insertSlots = []string{"target", "source", "columns", "source_select"}
	deleteSlots = []string{"target", "condition", "alias", "source_select"}
	updateSlots = []string{"target", "columns", "sources", "condition", "alias", "source_select"}
	windowSlots = []string{"name", "ref", "partition", "order", "rows", "lower", "upper"}
	caseSlots   = []string{"value", "when", "then", "else"}
)

// Symbols carried by symbol literals in special operator slots.
const (
	SymInner         = "INNER"
	SymLeft          = "LEFT"
	SymRight         = "RIGHT"
	SymFull          = "FULL"
	SymCross         = "CROSS"
	SymComma         = "COMMA"
	SymNone          = "NONE"
	SymOn            = "ON"
	SymUsing         = "USING"
	SymDistinct      = "DISTINCT"
	SymAll           = "ALL"
	SymCurrentRow    = "CURRENT_ROW"
	SymUnboundedPrec = "UNBOUNDED_PRECEDING"
	SymUnboundedFoll = "UNBOUNDED_FOLLOWING"
	SymBoth          = "BOTH"
	SymLeading       = "LEADING"
	SymTrailing      = "TRAILING"
)
