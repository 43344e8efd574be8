// Package workbook is the editing engine: a sheet store with lazy
// loading, a closed set of reversible mutation commands, and the
// undo/redo stacks that replay them.
package workbook

import (
	"fmt"
	"sort"

	"github.com/atotto/clipboard"
	"github.com/hylla/kalkyl/internal/codec"
	"github.com/hylla/kalkyl/internal/domain"
)

// Workbook is the in-memory multi-sheet document under edit. It owns the
// undo/redo stacks; nothing outside this package can mutate them. All
// methods run on the single event-loop goroutine.
type Workbook struct {
	sheets  []*domain.Sheet
	current int
	path    string
	source  codec.Source
	writer  codec.Writer

	undo []Action
	redo []Action

	clip *domain.Cell

	// revision counts forward mutations; undo walks it back. The dirty
	// flag is revision != savedRev, so undoing back to the last-saved
	// revision reads as clean again.
	revision int
	savedRev int
}

// Open builds a workbook over a codec source. With lazy set, only the
// first sheet is materialized; the rest stay unloaded placeholders until
// EnsureSheetLoaded pulls them in.
func Open(path string, src codec.Source, writer codec.Writer, lazy bool) (*Workbook, error) {
	names := src.SheetNames()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}
	w := &Workbook{
		path:   path,
		source: src,
		writer: writer,
	}
	for i, name := range names {
		if lazy && i > 0 {
			w.sheets = append(w.sheets, domain.NewUnloadedSheet(name))
			continue
		}
		sheet, err := loadSheet(src, name)
		if err != nil {
			return nil, err
		}
		w.sheets = append(w.sheets, sheet)
	}
	return w, nil
}

// loadSheet materializes one sheet from the source into a sentinel-margin
// grid.
func loadSheet(src codec.Source, name string) (*domain.Sheet, error) {
	rows, err := src.ReadSheet(name)
	if err != nil {
		return nil, &LoadError{Sheet: name, Err: err}
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	sheet := domain.NewSheet(name, len(rows), width)
	for r, row := range rows {
		for c, cell := range row {
			sheet.Data[r+1][c+1] = cell
		}
	}
	return sheet, nil
}

// Path returns the file path the workbook was opened from.
func (w *Workbook) Path() string { return w.path }

// Modified reports whether the content differs from the last saved state.
func (w *Workbook) Modified() bool { return w.revision != w.savedRev }

// SheetCount returns the number of sheets.
func (w *Workbook) SheetCount() int { return len(w.sheets) }

// SheetNames returns sheet names in source order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name
	}
	return names
}

// CurrentIndex returns the active sheet index, always valid.
func (w *Workbook) CurrentIndex() int { return w.current }

// CurrentSheet returns the active sheet. The current-index invariant
// guarantees it exists.
func (w *Workbook) CurrentSheet() *domain.Sheet {
	return w.sheets[w.current]
}

// Sheet returns the sheet at an index.
func (w *Workbook) Sheet(index int) (*domain.Sheet, bool) {
	if index < 0 || index >= len(w.sheets) {
		return nil, false
	}
	return w.sheets[index], true
}

// IsSheetLoaded reports whether the sheet at an index has its grid
// populated.
func (w *Workbook) IsSheetLoaded(index int) bool {
	s, ok := w.Sheet(index)
	return ok && s.Loaded
}

// SwitchSheet activates a sheet without loading it; loading stays an
// explicit, observable step so the UI can gate on it.
func (w *Workbook) SwitchSheet(index int) error {
	if index < 0 || index >= len(w.sheets) {
		return domain.ErrOutOfRange
	}
	w.current = index
	return nil
}

// EnsureSheetLoaded populates an unloaded sheet from the source. It is
// idempotent: a loaded sheet returns immediately without touching the
// codec. On failure the placeholder is left exactly as it was.
func (w *Workbook) EnsureSheetLoaded(index int) error {
	target, ok := w.Sheet(index)
	if !ok {
		return domain.ErrOutOfRange
	}
	if target.Loaded {
		return nil
	}
	if w.source == nil {
		return &LoadError{Sheet: target.Name, Err: fmt.Errorf("no source attached")}
	}
	loaded, err := loadSheet(w.source, target.Name)
	if err != nil {
		return err
	}
	*target = *loaded
	return nil
}

// SetCellValue replaces one cell of the active sheet, re-deriving formula
// flag and type from the value. It fails past the allocated grid, not the
// populated bounds: the grid may be pre-sized larger. Not undoable on its
// own; EditCell is the command-wrapped form.
func (w *Workbook) SetCellValue(row, col int, value string) error {
	if err := w.CurrentSheet().SetCell(row, col, domain.NewCell(value)); err != nil {
		return err
	}
	w.revision++
	return nil
}

// Save writes the workbook back to its own path.
func (w *Workbook) Save() error { return w.SaveAs(w.path) }

// SaveAs serializes every sheet's populated region through the writer.
// Unloaded sheets pass through from the source untouched. On failure
// nothing changes: the dirty flag survives and no sheet is mutated.
func (w *Workbook) SaveAs(path string) error {
	sheets := make([]codec.SheetData, 0, len(w.sheets))
	for _, s := range w.sheets {
		if !s.Loaded {
			if w.source == nil {
				return &SaveError{Err: fmt.Errorf("sheet %q is unloaded and has no source", s.Name)}
			}
			rows, err := w.source.ReadSheet(s.Name)
			if err != nil {
				return &SaveError{Err: err}
			}
			sheets = append(sheets, codec.SheetData{Name: s.Name, Rows: rows})
			continue
		}
		rows := make([][]domain.Cell, s.MaxRows)
		for r := 1; r <= s.MaxRows; r++ {
			row := make([]domain.Cell, s.MaxCols)
			for c := 1; c <= s.MaxCols; c++ {
				row[c-1] = s.Data[r][c]
			}
			rows[r-1] = row
		}
		sheets = append(sheets, codec.SheetData{Name: s.Name, Rows: rows})
	}
	if err := w.writer.Write(path, sheets); err != nil {
		return &SaveError{Err: err}
	}
	w.path = path
	w.savedRev = w.revision
	return nil
}

// push records one applied action, clearing any pending redo branch.
func (w *Workbook) push(a Action) {
	if len(w.redo) > 0 && w.savedRev > w.revision {
		// The saved state lives on the branch being discarded; it can
		// never be reached again by undo/redo.
		w.savedRev = -1
	}
	w.redo = nil
	w.undo = append(w.undo, a)
	w.revision++
}

// EditCell performs an undoable edit of one cell on the active sheet.
func (w *Workbook) EditCell(row, col int, value string) error {
	return w.cellCommand(row, col, domain.NewCell(value), OpEdit)
}

// CopyCell records the cell snapshot in the one-slot clipboard. Copy is
// not undoable by itself. The raw value is mirrored to the OS clipboard
// on a best-effort basis.
func (w *Workbook) CopyCell(row, col int) error {
	cell, ok := w.CurrentSheet().Cell(row, col)
	if !ok {
		return domain.ErrOutOfRange
	}
	w.clip = &cell
	_ = clipboard.WriteAll(cell.Value)
	return nil
}

// CutCell copies the cell into the clipboard and clears it with an
// edit-class command.
func (w *Workbook) CutCell(row, col int) error {
	if err := w.CopyCell(row, col); err != nil {
		return err
	}
	return w.cellCommand(row, col, domain.EmptyCell(), OpCut)
}

// PasteCell writes the clipboard snapshot into the target cell with a
// paste-class command.
func (w *Workbook) PasteCell(row, col int) error {
	if w.clip == nil {
		return ErrEmptyClipboard
	}
	return w.cellCommand(row, col, *w.clip, OpPaste)
}

// ClipboardCell returns the current clipboard snapshot.
func (w *Workbook) ClipboardCell() (domain.Cell, bool) {
	if w.clip == nil {
		return domain.Cell{}, false
	}
	return *w.clip, true
}

// cellCommand builds the before/after action first, then applies it, so
// the snapshot is exact.
func (w *Workbook) cellCommand(row, col int, after domain.Cell, op CellOp) error {
	sheet := w.CurrentSheet()
	before, ok := sheet.Cell(row, col)
	if !ok {
		return domain.ErrOutOfRange
	}
	a := Action{
		Kind:       KindCell,
		SheetIndex: w.current,
		Cell:       cellChange{Row: row, Col: col, Before: before, After: after, Op: op},
	}
	if err := w.applyAction(a); err != nil {
		return err
	}
	w.push(a)
	return nil
}

// DeleteRow removes one row of the active sheet as a reversible command.
func (w *Workbook) DeleteRow(row int) error {
	return w.deleteRows([]int{row}, KindRow)
}

// DeleteRows removes a set of rows, contiguous or not, as one command.
func (w *Workbook) DeleteRows(rows []int) error {
	return w.deleteRows(rows, KindMultiRow)
}

func (w *Workbook) deleteRows(rows []int, kind ActionKind) error {
	sheet := w.CurrentSheet()
	lines, err := snapshotLines(rows, sheet.MaxRows, sheet.CloneRow)
	if err != nil {
		return err
	}
	a := Action{Kind: kind, SheetIndex: w.current, Lines: lines}
	if err := w.applyAction(a); err != nil {
		return err
	}
	w.push(a)
	return nil
}

// DeleteColumn removes one column of the active sheet as a reversible
// command.
func (w *Workbook) DeleteColumn(col int) error {
	return w.deleteColumns([]int{col}, KindColumn)
}

// DeleteColumns removes a set of columns as one command.
func (w *Workbook) DeleteColumns(cols []int) error {
	return w.deleteColumns(cols, KindMultiColumn)
}

func (w *Workbook) deleteColumns(cols []int, kind ActionKind) error {
	sheet := w.CurrentSheet()
	lines, err := snapshotLines(cols, sheet.MaxCols, sheet.CloneColumn)
	if err != nil {
		return err
	}
	a := Action{Kind: kind, SheetIndex: w.current, Lines: lines}
	if err := w.applyAction(a); err != nil {
		return err
	}
	w.push(a)
	return nil
}

// snapshotLines validates, dedupes, and snapshots the rows or columns of
// one structural deletion, ascending by index.
func snapshotLines(indexes []int, limit int, clone func(int) []domain.Cell) ([]lineSnapshot, error) {
	if len(indexes) == 0 {
		return nil, domain.ErrOutOfRange
	}
	seen := map[int]struct{}{}
	ordered := make([]int, 0, len(indexes))
	for _, idx := range indexes {
		if idx < 1 || idx > limit {
			return nil, domain.ErrOutOfRange
		}
		if _, ok := seen[idx]; ok {
			continue
		}
		seen[idx] = struct{}{}
		ordered = append(ordered, idx)
	}
	sort.Ints(ordered)
	lines := make([]lineSnapshot, 0, len(ordered))
	for _, idx := range ordered {
		lines = append(lines, lineSnapshot{Index: idx, Cells: clone(idx)})
	}
	return lines, nil
}

// DeleteCurrentSheet removes the active sheet as a reversible command.
// The last remaining sheet cannot be deleted.
func (w *Workbook) DeleteCurrentSheet() error {
	if len(w.sheets) == 1 {
		return ErrLastSheet
	}
	a := Action{
		Kind:       KindSheet,
		SheetIndex: w.current,
		Sheet:      sheetSnapshot{Index: w.current, Sheet: w.sheets[w.current]},
	}
	if err := w.applyAction(a); err != nil {
		return err
	}
	w.push(a)
	return nil
}

// Undo pops the newest action, applies its inverse, and moves it to the
// redo stack.
func (w *Workbook) Undo() (ActionType, error) {
	if len(w.undo) == 0 {
		return 0, ErrNothingToUndo
	}
	a := w.undo[len(w.undo)-1]
	if err := w.invertAction(a); err != nil {
		return 0, err
	}
	w.undo = w.undo[:len(w.undo)-1]
	w.redo = append(w.redo, a)
	w.revision--
	return a.Type(), nil
}

// Redo reapplies the newest undone action and moves it back to the undo
// stack.
func (w *Workbook) Redo() (ActionType, error) {
	if len(w.redo) == 0 {
		return 0, ErrNothingToRedo
	}
	a := w.redo[len(w.redo)-1]
	if err := w.applyAction(a); err != nil {
		return 0, err
	}
	w.redo = w.redo[:len(w.redo)-1]
	w.undo = append(w.undo, a)
	w.revision++
	return a.Type(), nil
}

// targetSheet resolves the sheet an action applies to.
func (w *Workbook) targetSheet(a Action) (*domain.Sheet, error) {
	s, ok := w.Sheet(a.SheetIndex)
	if !ok {
		return nil, domain.ErrOutOfRange
	}
	return s, nil
}

// applyAction replays one action forward.
func (w *Workbook) applyAction(a Action) error {
	switch a.Kind {
	case KindCell:
		sheet, err := w.targetSheet(a)
		if err != nil {
			return err
		}
		return sheet.SetCell(a.Cell.Row, a.Cell.Col, a.Cell.After)
	case KindRow, KindMultiRow:
		sheet, err := w.targetSheet(a)
		if err != nil {
			return err
		}
		// Remove descending so earlier removals do not shift later
		// indexes.
		for i := len(a.Lines) - 1; i >= 0; i-- {
			if err := sheet.RemoveRow(a.Lines[i].Index); err != nil {
				return err
			}
		}
		return nil
	case KindColumn, KindMultiColumn:
		sheet, err := w.targetSheet(a)
		if err != nil {
			return err
		}
		for i := len(a.Lines) - 1; i >= 0; i-- {
			if err := sheet.RemoveColumn(a.Lines[i].Index); err != nil {
				return err
			}
		}
		return nil
	case KindSheet:
		idx := a.Sheet.Index
		if idx < 0 || idx >= len(w.sheets) {
			return domain.ErrOutOfRange
		}
		w.sheets = append(w.sheets[:idx], w.sheets[idx+1:]...)
		if w.current > idx {
			w.current--
		}
		if w.current >= len(w.sheets) {
			w.current = len(w.sheets) - 1
		}
		return nil
	default:
		return fmt.Errorf("unknown action kind %d", a.Kind)
	}
}

// invertAction applies the exact inverse of one action, reinserting
// deleted rows, columns, and sheets at their recorded index or restoring
// the prior cell snapshot.
func (w *Workbook) invertAction(a Action) error {
	switch a.Kind {
	case KindCell:
		sheet, err := w.targetSheet(a)
		if err != nil {
			return err
		}
		return sheet.SetCell(a.Cell.Row, a.Cell.Col, a.Cell.Before)
	case KindRow, KindMultiRow:
		sheet, err := w.targetSheet(a)
		if err != nil {
			return err
		}
		// Reinsert ascending to restore original positions.
		for _, line := range a.Lines {
			if err := sheet.InsertRow(line.Index, line.Cells); err != nil {
				return err
			}
		}
		return nil
	case KindColumn, KindMultiColumn:
		sheet, err := w.targetSheet(a)
		if err != nil {
			return err
		}
		for _, line := range a.Lines {
			if err := sheet.InsertColumn(line.Index, line.Cells); err != nil {
				return err
			}
		}
		return nil
	case KindSheet:
		idx := a.Sheet.Index
		if idx < 0 || idx > len(w.sheets) {
			return domain.ErrOutOfRange
		}
		w.sheets = append(w.sheets[:idx], append([]*domain.Sheet{a.Sheet.Sheet}, w.sheets[idx:]...)...)
		w.current = idx
		return nil
	default:
		return fmt.Errorf("unknown action kind %d", a.Kind)
	}
}
