package domain

import (
	"strconv"
	"strings"
)

type CellType int

const (
	TypeText CellType = iota
	TypeNumber
	TypeDate
	TypeBoolean
	TypeEmpty
)

func (t CellType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeNumber:
		return "number"
	case TypeDate:
		return "date"
	case TypeBoolean:
		return "boolean"
	case TypeEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// NativeType tags the source format's own value kind, kept separate from
// the coarse display CellType so a round trip through save can preserve it.
type NativeType int

const (
	NativeEmpty NativeType = iota
	NativeString
	NativeFloat
	NativeInt
	NativeBool
	NativeDateTime
	NativeDuration
	NativeDateTimeIso
	NativeDurationIso
	NativeError
)

// NativeValue carries the native tag plus whichever payload that tag needs.
type NativeValue struct {
	Type  NativeType
	Float float64
	Int   int64
	Bool  bool
	Text  string
}

type Cell struct {
	Value     string
	IsFormula bool
	Type      CellType
	Native    *NativeValue
}

// NewCell builds a cell from edited text. Formula detection and type
// classification are re-derived from the value; no native tag is attached
// because the value did not come from a parsed file.
func NewCell(value string) Cell {
	isFormula := strings.HasPrefix(value, "=")
	return Cell{
		Value:     value,
		IsFormula: isFormula,
		Type:      Classify(value, isFormula),
	}
}

// NewCellWithType builds a cell from a parsed source value, trusting the
// parser's classification and keeping the native tag for round-trip use.
func NewCellWithType(value string, isFormula bool, typ CellType, native *NativeValue) Cell {
	return Cell{
		Value:     value,
		IsFormula: isFormula,
		Type:      typ,
		Native:    native,
	}
}

func EmptyCell() Cell {
	return Cell{
		Type:   TypeEmpty,
		Native: &NativeValue{Type: NativeEmpty},
	}
}

// Classify derives the display type of a value. It is pure and total:
// every input string classifies. Formulas always classify as text, their
// result is never evaluated.
//
// The date check is a heuristic: exactly three fields split on '/' or '-'
// (e.g. 2021-01-01). Strings like "1-2-3" misclassify; save behavior
// depends on the value only, so the looseness is tolerated.
func Classify(value string, isFormula bool) CellType {
	switch {
	case value == "":
		return TypeEmpty
	case isFormula:
		return TypeText
	default:
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return TypeNumber
	}
	if strings.Contains(value, "/") && len(strings.Split(value, "/")) == 3 {
		return TypeDate
	}
	if strings.Contains(value, "-") && len(strings.Split(value, "-")) == 3 {
		return TypeDate
	}
	if value == "true" || value == "false" {
		return TypeBoolean
	}
	return TypeText
}
