package workbook

import "github.com/hylla/kalkyl/internal/domain"

// ActionType classifies a reversible command for status messages.
type ActionType int

const (
	ActionEdit ActionType = iota
	ActionPaste
	ActionDeleteRow
	ActionDeleteMultiRows
	ActionDeleteColumn
	ActionDeleteMultiColumns
	ActionDeleteSheet
)

func (t ActionType) String() string {
	switch t {
	case ActionEdit:
		return "edit"
	case ActionPaste:
		return "paste"
	case ActionDeleteRow:
		return "delete row"
	case ActionDeleteMultiRows:
		return "delete rows"
	case ActionDeleteColumn:
		return "delete column"
	case ActionDeleteMultiColumns:
		return "delete columns"
	case ActionDeleteSheet:
		return "delete sheet"
	default:
		return "unknown"
	}
}

// CellOp distinguishes the three single-cell operations that share the
// KindCell shape.
type CellOp int

const (
	OpEdit CellOp = iota
	OpCut
	OpPaste
)

// ActionKind selects the payload variant of an Action.
type ActionKind int

const (
	KindCell ActionKind = iota
	KindRow
	KindMultiRow
	KindColumn
	KindMultiColumn
	KindSheet
)

// cellChange carries the exact before and after snapshots of one cell.
type cellChange struct {
	Row, Col      int
	Before, After domain.Cell
	Op            CellOp
}

// lineSnapshot carries a removed row's or column's original index and its
// full cell contents, sentinel slot included.
type lineSnapshot struct {
	Index int
	Cells []domain.Cell
}

// sheetSnapshot carries a removed sheet and its original position.
type sheetSnapshot struct {
	Index int
	Sheet *domain.Sheet
}

// Action is one reversible mutation: a tagged variant whose Kind selects
// which payload field is meaningful. Each variant carries exactly the
// prior state needed to reconstruct the grid on undo. An Action is
// immutable once constructed; it is pushed once and only replayed.
type Action struct {
	Kind ActionKind

	// SheetIndex locates the sheet the action applies to, so undo stays
	// correct after the user switches sheets. For KindSheet it is the
	// deleted sheet's own position.
	SheetIndex int

	Cell  cellChange
	Lines []lineSnapshot // KindRow/KindMultiRow/KindColumn/KindMultiColumn, ascending by index
	Sheet sheetSnapshot
}

// Type maps the action onto its status classification: cell commands are
// paste or the generic edit class (edits and cuts alike), structural
// deletions map one to one.
func (a Action) Type() ActionType {
	switch a.Kind {
	case KindCell:
		if a.Cell.Op == OpPaste {
			return ActionPaste
		}
		return ActionEdit
	case KindRow:
		return ActionDeleteRow
	case KindMultiRow:
		return ActionDeleteMultiRows
	case KindColumn:
		return ActionDeleteColumn
	case KindMultiColumn:
		return ActionDeleteMultiColumns
	case KindSheet:
		return ActionDeleteSheet
	default:
		return ActionEdit
	}
}
