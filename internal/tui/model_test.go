package tui

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/hylla/kalkyl/internal/codec"
	"github.com/hylla/kalkyl/internal/domain"
	"github.com/hylla/kalkyl/internal/workbook"
)

type fakeSource struct {
	names []string
	rows  map[string][][]domain.Cell
	fail  map[string]error
}

func (f *fakeSource) SheetNames() []string { return f.names }

func (f *fakeSource) ReadSheet(name string) ([][]domain.Cell, error) {
	if err := f.fail[name]; err != nil {
		return nil, err
	}
	return f.rows[name], nil
}

func (f *fakeSource) Close() error { return nil }

type fakeWriter struct {
	path  string
	calls int
	err   error
}

func (f *fakeWriter) Write(path string, sheets []codec.SheetData) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.path = path
	return nil
}

func dataRows(values ...[]string) [][]domain.Cell {
	rows := make([][]domain.Cell, len(values))
	for r, rowValues := range values {
		row := make([]domain.Cell, len(rowValues))
		for c, v := range rowValues {
			row[c] = domain.NewCell(v)
		}
		rows[r] = row
	}
	return rows
}

func newTestSource() *fakeSource {
	return &fakeSource{
		names: []string{"Budget", "Notes"},
		rows: map[string][][]domain.Cell{
			"Budget": dataRows(
				[]string{"name", "amount", "due"},
				[]string{"rent", "9500", "2026/09/01"},
				[]string{"food", "2200", "2026/09/15"},
			),
			"Notes": dataRows(
				[]string{"todo"},
				[]string{"call bank"},
			),
		},
	}
}

func newTestModel(t *testing.T, lazy bool, opts ...Option) (Model, *fakeSource, *fakeWriter) {
	t.Helper()
	src := newTestSource()
	writer := &fakeWriter{}
	wb, err := workbook.Open("budget.xlsx", src, writer, lazy)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m := NewModel(wb, opts...)
	m = applyMsg(t, applyCmd(t, m, m.Init()), tea.WindowSizeMsg{Width: 100, Height: 32})
	return m, src, writer
}

func cellValue(t *testing.T, m Model, row, col int) string {
	t.Helper()
	cell, ok := m.wb.CurrentSheet().Cell(row, col)
	if !ok {
		t.Fatalf("cell (%d,%d) out of grid", row, col)
	}
	return cell.Value
}

func hasNotification(m Model, substring string) bool {
	for _, n := range m.notifications {
		if strings.Contains(n, substring) {
			return true
		}
	}
	return false
}

func TestNormalModeNavigationClampsToGrid(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('l'))
	if m.cursorRow != 2 || m.cursorCol != 2 {
		t.Fatalf("cursor = (%d,%d), want (2,2)", m.cursorRow, m.cursorCol)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyUp})
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyLeft})
	if m.cursorRow != 1 || m.cursorCol != 1 {
		t.Fatalf("cursor = (%d,%d), want (1,1)", m.cursorRow, m.cursorCol)
	}

	m = applyMsg(t, m, keyRune('k'))
	m = applyMsg(t, m, keyRune('h'))
	if m.cursorRow != 1 || m.cursorCol != 1 {
		t.Fatalf("cursor moved past the first cell to (%d,%d)", m.cursorRow, m.cursorCol)
	}

	for i := 0; i < 10; i++ {
		m = applyMsg(t, m, keyRune('j'))
		m = applyMsg(t, m, keyRune('l'))
	}
	if m.cursorRow != 3 || m.cursorCol != 3 {
		t.Fatalf("cursor moved past the populated region to (%d,%d)", m.cursorRow, m.cursorCol)
	}
}

func TestJumpKeysAndRowMotions(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('G'))
	if m.cursorRow != 3 {
		t.Fatalf("G moved cursor to row %d, want 3", m.cursorRow)
	}

	m = applyMsg(t, m, keyRune('g'))
	m = applyMsg(t, m, keyRune('g'))
	if m.cursorRow != 1 {
		t.Fatalf("gg moved cursor to row %d, want 1", m.cursorRow)
	}

	m = applyMsg(t, m, keyRune('$'))
	if m.cursorCol != 3 {
		t.Fatalf("$ moved cursor to column %d, want 3", m.cursorCol)
	}
	m = applyMsg(t, m, keyRune('0'))
	if m.cursorCol != 1 {
		t.Fatalf("0 moved cursor to column %d, want 1", m.cursorCol)
	}
	m = applyMsg(t, m, keyRune('^'))
	if m.cursorCol != 1 {
		t.Fatalf("^ moved cursor to column %d, want 1", m.cursorCol)
	}
}

func TestChordIsBrokenByOtherKeys(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('G'))
	m = applyMsg(t, m, keyRune('g'))
	if !m.gPressed {
		t.Fatal("expected pending g chord after first g")
	}
	m = applyMsg(t, m, keyRune('j'))
	if m.gPressed {
		t.Fatal("expected chord cleared by an unrelated key")
	}
	m = applyMsg(t, m, keyRune('g'))
	if m.cursorRow == 1 {
		t.Fatal("broken chord must not jump to the first row")
	}
	m = applyMsg(t, m, keyRune('g'))
	if m.cursorRow != 1 {
		t.Fatalf("gg after broken chord moved to row %d, want 1", m.cursorRow)
	}
}

func TestControlJumpsToNextPopulatedCell(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyRight, Mod: tea.ModCtrl})
	if m.cursorRow != 1 || m.cursorCol != 2 {
		t.Fatalf("ctrl+right moved to (%d,%d), want (1,2)", m.cursorRow, m.cursorCol)
	}

	// Cut the cell below so the downward jump has a gap to skip.
	m = applyMsg(t, m, keyRune('0'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('d'))
	m = applyMsg(t, m, keyRune('g'))
	m = applyMsg(t, m, keyRune('g'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyDown, Mod: tea.ModCtrl})
	if m.cursorRow != 3 || m.cursorCol != 1 {
		t.Fatalf("ctrl+down moved to (%d,%d), want (3,1)", m.cursorRow, m.cursorCol)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyDown, Mod: tea.ModCtrl})
	if m.cursorRow != 3 {
		t.Fatalf("ctrl+down at the populated edge moved to row %d, want 3", m.cursorRow)
	}
}

func TestLazyLoadingGateBlocksUntilEnter(t *testing.T) {
	m, _, _ := newTestModel(t, true)

	m = applyMsg(t, m, keyRune(']'))
	if m.activeMode() != modeLazyLoading {
		t.Fatalf("mode = %v, want lazy-loading gate", m.activeMode())
	}

	m = applyMsg(t, m, keyRune('j'))
	if m.cursorRow != 1 {
		t.Fatalf("gated key moved cursor to row %d", m.cursorRow)
	}
	if !hasNotification(m, "sheet not loaded") {
		t.Fatal("expected gate hint notification")
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.activeMode() != modeNormal {
		t.Fatalf("mode = %v after load, want normal", m.activeMode())
	}
	if !m.wb.IsSheetLoaded(1) {
		t.Fatal("expected current sheet loaded")
	}
	if !hasNotification(m, `loaded sheet "Notes"`) {
		t.Fatal("expected load notification")
	}
	if got := cellValue(t, m, 2, 1); got != "call bank" {
		t.Fatalf("cell (2,1) = %q, want call bank", got)
	}
}

func TestLazyLoadFailureKeepsGate(t *testing.T) {
	m, src, _ := newTestModel(t, true)
	src.fail = map[string]error{"Notes": errors.New("file vanished")}

	m = applyMsg(t, m, keyRune(']'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.activeMode() != modeLazyLoading {
		t.Fatalf("mode = %v after failed load, want lazy-loading gate", m.activeMode())
	}
	if m.wb.IsSheetLoaded(1) {
		t.Fatal("failed load must leave the placeholder unloaded")
	}
	if !hasNotification(m, "file vanished") {
		t.Fatal("expected failure notification")
	}
}

func TestLazyGateAllowsSheetSwitching(t *testing.T) {
	m, _, _ := newTestModel(t, true)

	m = applyMsg(t, m, keyRune(']'))
	if m.activeMode() != modeLazyLoading {
		t.Fatal("expected lazy-loading gate on unloaded sheet")
	}
	m = applyMsg(t, m, keyRune('['))
	if m.wb.CurrentIndex() != 0 || m.activeMode() != modeNormal {
		t.Fatalf("expected switch back to loaded sheet, got index %d mode %v", m.wb.CurrentIndex(), m.activeMode())
	}
}

func TestEditFlowCommitsValue(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.activeMode() != modeEditing {
		t.Fatalf("mode = %v, want editing", m.activeMode())
	}
	if m.editInput.Value() != "name" {
		t.Fatalf("editor prefill = %q, want current cell value", m.editInput.Value())
	}

	m = typeText(t, m, "42")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.activeMode() != modeNormal {
		t.Fatalf("mode = %v after commit, want normal", m.activeMode())
	}
	if got := cellValue(t, m, 1, 1); got != "name42" {
		t.Fatalf("cell (1,1) = %q, want name42", got)
	}
	if !m.wb.Modified() {
		t.Fatal("expected workbook dirty after edit")
	}
}

func TestEditEscapeCancels(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = typeText(t, m, "scratch")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.activeMode() != modeNormal {
		t.Fatalf("mode = %v after cancel, want normal", m.activeMode())
	}
	if got := cellValue(t, m, 1, 1); got != "name" {
		t.Fatalf("cell (1,1) = %q, want original value", got)
	}
	if m.wb.Modified() {
		t.Fatal("cancelled edit must not dirty the workbook")
	}
}

func TestUndoRedoKeys(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = typeText(t, m, "42")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = applyMsg(t, m, keyRune('u'))
	if got := cellValue(t, m, 1, 1); got != "name" {
		t.Fatalf("cell (1,1) = %q after undo, want name", got)
	}
	if !hasNotification(m, "undid edit") {
		t.Fatal("expected undo notification")
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	if got := cellValue(t, m, 1, 1); got != "name42" {
		t.Fatalf("cell (1,1) = %q after redo, want name42", got)
	}

	m = applyMsg(t, m, tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	if !hasNotification(m, "nothing to redo") {
		t.Fatal("expected empty redo notification")
	}
}

func TestCopyCutPasteKeys(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('y'))
	if !hasNotification(m, "copied A1") {
		t.Fatal("expected copy notification")
	}

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('p'))
	if got := cellValue(t, m, 3, 1); got != "name" {
		t.Fatalf("cell (3,1) = %q after paste, want name", got)
	}
	if !hasNotification(m, "pasted into A3") {
		t.Fatal("expected paste notification")
	}

	m = applyMsg(t, m, keyRune('u'))
	if got := cellValue(t, m, 3, 1); got != "food" {
		t.Fatalf("cell (3,1) = %q after undo, want food", got)
	}

	m = applyMsg(t, m, keyRune('d'))
	if got := cellValue(t, m, 3, 1); got != "" {
		t.Fatalf("cell (3,1) = %q after cut, want empty", got)
	}
	m = applyMsg(t, m, keyRune('k'))
	m = applyMsg(t, m, keyRune('p'))
	if got := cellValue(t, m, 2, 1); got != "food" {
		t.Fatalf("cell (2,1) = %q after pasting the cut value, want food", got)
	}
}

func TestSheetSwitchWrapsAround(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('['))
	if m.wb.CurrentIndex() != 1 {
		t.Fatalf("[ from the first sheet gave index %d, want last", m.wb.CurrentIndex())
	}
	m = applyMsg(t, m, keyRune(']'))
	if m.wb.CurrentIndex() != 0 {
		t.Fatalf("] from the last sheet gave index %d, want first", m.wb.CurrentIndex())
	}
}

func TestCommandSheetByNumberAndName(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = runCommand(t, m, "sheet 2")
	if m.wb.CurrentIndex() != 1 {
		t.Fatalf("sheet 2 gave index %d, want 1", m.wb.CurrentIndex())
	}

	m = runCommand(t, m, "sheet Budget")
	if m.wb.CurrentIndex() != 0 {
		t.Fatalf("sheet Budget gave index %d, want 0", m.wb.CurrentIndex())
	}

	m = runCommand(t, m, "sheet Missing")
	if !hasNotification(m, "no such sheet: Missing") {
		t.Fatal("expected unknown sheet notification")
	}
	if m.wb.CurrentIndex() != 0 {
		t.Fatalf("failed switch changed index to %d", m.wb.CurrentIndex())
	}
}

func TestCommandWriteSaves(t *testing.T) {
	m, _, writer := newTestModel(t, false)

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = typeText(t, m, "42")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = runCommand(t, m, "w")
	if writer.calls != 1 {
		t.Fatalf("writer called %d times, want 1", writer.calls)
	}
	if m.wb.Modified() {
		t.Fatal("expected clean workbook after save")
	}
	if !hasNotification(m, "saved budget.xlsx") {
		t.Fatal("expected save notification")
	}

	m = runCommand(t, m, "w other.xlsx")
	if writer.path != "other.xlsx" {
		t.Fatalf("save-as wrote %q, want other.xlsx", writer.path)
	}
}

func TestCommandQuitConfirmsUnsavedChanges(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	m = typeText(t, m, "42")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = applyMsg(t, m, keyRune(':'))
	m = typeText(t, m, "q")
	updated, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	if cmd != nil {
		t.Fatal("q with unsaved changes must not quit")
	}
	if !hasNotification(m, "unsaved changes") {
		t.Fatal("expected unsaved-changes notification")
	}

	m = applyMsg(t, m, keyRune(':'))
	m = typeText(t, m, "q!")
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("q! must quit despite unsaved changes")
	}
}

func TestCommandQuitOnCleanWorkbook(t *testing.T) {
	m, _, writer := newTestModel(t, false)

	m = applyMsg(t, m, keyRune(':'))
	m = typeText(t, m, "q")
	updated, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("q on a clean workbook must quit")
	}
	m, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}

	m = applyMsg(t, m, keyRune(':'))
	m = typeText(t, m, "wq")
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("wq must quit after saving")
	}
	if writer.calls != 1 {
		t.Fatalf("wq called the writer %d times, want 1", writer.calls)
	}
}

func TestCommandDeleteRowsRange(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = runCommand(t, m, "dr 2-3")
	if got := m.wb.CurrentSheet().MaxRows; got != 1 {
		t.Fatalf("MaxRows = %d after dr 2-3, want 1", got)
	}
	if !hasNotification(m, "deleted 2 row(s)") {
		t.Fatal("expected deletion notification")
	}

	m = applyMsg(t, m, keyRune('u'))
	if got := cellValue(t, m, 2, 1); got != "rent" {
		t.Fatalf("cell (2,1) = %q after undo, want rent", got)
	}
}

func TestCommandDeleteColumnDefaultsToCursor(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('l'))
	m = runCommand(t, m, "dc")
	if got := m.wb.CurrentSheet().MaxCols; got != 2 {
		t.Fatalf("MaxCols = %d after dc, want 2", got)
	}
	if got := cellValue(t, m, 1, 2); got != "due" {
		t.Fatalf("cell (1,2) = %q after deleting column B, want due", got)
	}
}

func TestCommandDeleteSheet(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = runCommand(t, m, "ds")
	if m.wb.SheetCount() != 1 {
		t.Fatalf("SheetCount = %d after ds, want 1", m.wb.SheetCount())
	}
	if !hasNotification(m, `deleted sheet "Budget"`) {
		t.Fatal("expected sheet deletion notification")
	}

	m = runCommand(t, m, "ds")
	if !hasNotification(m, "cannot delete the last sheet") {
		t.Fatal("expected last-sheet notification")
	}
}

func TestCommandUnknownNotifies(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = runCommand(t, m, "frobnicate")
	if !hasNotification(m, "unknown command: frobnicate") {
		t.Fatal("expected unknown command notification")
	}
	if m.activeMode() != modeNormal {
		t.Fatalf("mode = %v after command, want normal", m.activeMode())
	}
}

func TestCommandFromLazyGateReturnsToGate(t *testing.T) {
	m, _, _ := newTestModel(t, true)

	m = applyMsg(t, m, keyRune(']'))
	m = applyMsg(t, m, keyRune(':'))
	if m.mode != modeCommandInLazyLoading {
		t.Fatalf("mode = %v, want lazy-loading command mode", m.mode)
	}

	m = typeText(t, m, "frobnicate")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.activeMode() != modeLazyLoading {
		t.Fatalf("mode = %v after command on unloaded sheet, want gate", m.activeMode())
	}

	m = applyMsg(t, m, keyRune(':'))
	m = typeText(t, m, "sheet 1")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.wb.CurrentIndex() != 0 || m.activeMode() != modeNormal {
		t.Fatalf("expected sheet command to escape the gate, got index %d mode %v", m.wb.CurrentIndex(), m.activeMode())
	}
}

func TestSearchForwardJumpsAndCycles(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('/'))
	if m.activeMode() != modeSearchForward {
		t.Fatalf("mode = %v, want forward search", m.activeMode())
	}
	m = typeText(t, m, "2026")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	if m.cursorRow != 2 || m.cursorCol != 3 {
		t.Fatalf("first match at (%d,%d), want (2,3)", m.cursorRow, m.cursorCol)
	}
	if !hasNotification(m, "2 matches") {
		t.Fatal("expected match count notification")
	}

	m = applyMsg(t, m, keyRune('n'))
	if m.cursorRow != 3 || m.cursorCol != 3 {
		t.Fatalf("n moved to (%d,%d), want (3,3)", m.cursorRow, m.cursorCol)
	}
	m = applyMsg(t, m, keyRune('n'))
	if m.cursorRow != 2 || m.cursorCol != 3 {
		t.Fatalf("n did not wrap around, at (%d,%d)", m.cursorRow, m.cursorCol)
	}
	m = applyMsg(t, m, keyRune('N'))
	if m.cursorRow != 3 || m.cursorCol != 3 {
		t.Fatalf("N moved to (%d,%d), want (3,3)", m.cursorRow, m.cursorCol)
	}
}

func TestSearchBackwardStartsBehindCursor(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('?'))
	if m.activeMode() != modeSearchBackward {
		t.Fatalf("mode = %v, want backward search", m.activeMode())
	}
	m = typeText(t, m, "2026")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	// Nothing sits before (1,1), so the backward scan wraps to the last match.
	if m.cursorRow != 3 || m.cursorCol != 3 {
		t.Fatalf("backward search landed at (%d,%d), want (3,3)", m.cursorRow, m.cursorCol)
	}
}

func TestSearchRerunsAfterMutation(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('/'))
	m = typeText(t, m, "2026")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.cursorRow != 2 || m.cursorCol != 3 {
		t.Fatalf("search landed at (%d,%d), want (2,3)", m.cursorRow, m.cursorCol)
	}

	m = applyMsg(t, m, keyRune('d'))
	if len(m.matches) != 0 {
		t.Fatal("expected cached matches dropped after a mutation")
	}

	m = applyMsg(t, m, keyRune('n'))
	if m.cursorRow != 3 || m.cursorCol != 3 {
		t.Fatalf("stale query jumped to (%d,%d), want (3,3)", m.cursorRow, m.cursorCol)
	}
	if len(m.matches) != 1 {
		t.Fatalf("re-run found %d matches, want 1", len(m.matches))
	}
}

func TestSearchWithoutMatchesNotifies(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('/'))
	m = typeText(t, m, "nonexistent")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	if !hasNotification(m, `no matches for "nonexistent"`) {
		t.Fatal("expected no-matches notification")
	}
	if m.cursorRow != 1 || m.cursorCol != 1 {
		t.Fatalf("failed search moved cursor to (%d,%d)", m.cursorRow, m.cursorCol)
	}

	m = applyMsg(t, m, keyRune('n'))
	if m.cursorRow != 1 || m.cursorCol != 1 {
		t.Fatal("n without results must not move the cursor")
	}
}

func TestSearchEscapeKeepsPreviousQuery(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = applyMsg(t, m, keyRune('/'))
	m = typeText(t, m, "2026")
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	m = applyMsg(t, m, keyRune('/'))
	m = applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.activeMode() != modeNormal {
		t.Fatalf("mode = %v after cancel, want normal", m.activeMode())
	}
	if m.searchQuery != "2026" {
		t.Fatalf("cancelled search clobbered query to %q", m.searchQuery)
	}
}

func TestHelpScreenOpensAndCloses(t *testing.T) {
	m, _, _ := newTestModel(t, false)

	m = runCommand(t, m, "help")
	if m.activeMode() != modeHelp {
		t.Fatalf("mode = %v after help command, want help", m.activeMode())
	}
	if len(m.helpLines) == 0 {
		t.Fatal("expected rendered help lines")
	}

	m = applyMsg(t, m, keyRune('q'))
	if m.activeMode() != modeNormal {
		t.Fatalf("mode = %v after closing help, want normal", m.activeMode())
	}
}

func TestInfoPanelResizeKeys(t *testing.T) {
	m, _, _ := newTestModel(t, false, WithInfoPanelHeight(2))

	m = applyMsg(t, m, keyRune('='))
	if m.infoPanelHeight != 3 {
		t.Fatalf("panel height = %d after =, want 3", m.infoPanelHeight)
	}
	m = applyMsg(t, m, keyRune('-'))
	m = applyMsg(t, m, keyRune('-'))
	m = applyMsg(t, m, keyRune('-'))
	if m.infoPanelHeight != 1 {
		t.Fatalf("panel height = %d, want floor of 1", m.infoPanelHeight)
	}
}

func TestQuitKeyRecordsSession(t *testing.T) {
	var gotSheet, gotRow, gotCol int
	recorded := false
	m, _, _ := newTestModel(t, false, WithSessionRecorder(func(sheet, row, col int) {
		recorded = true
		gotSheet, gotRow, gotCol = sheet, row, col
	}))

	m = applyMsg(t, m, keyRune('j'))
	m = applyMsg(t, m, keyRune('l'))
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command from ctrl+c")
	}
	if !recorded {
		t.Fatal("expected session recorder invoked on quit")
	}
	if gotSheet != 0 || gotRow != 2 || gotCol != 2 {
		t.Fatalf("recorded position (%d,%d,%d), want (0,2,2)", gotSheet, gotRow, gotCol)
	}
}

func TestStartPositionOptionClamps(t *testing.T) {
	src := newTestSource()
	wb, err := workbook.Open("budget.xlsx", src, &fakeWriter{}, false)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m := NewModel(wb, WithStartPosition(1, 99, 99))
	if wb.CurrentIndex() != 1 {
		t.Fatalf("start sheet index = %d, want 1", wb.CurrentIndex())
	}
	if m.cursorRow != 2 || m.cursorCol != 1 {
		t.Fatalf("start cursor (%d,%d), want clamped to (2,1)", m.cursorRow, m.cursorCol)
	}
}

func TestNotificationRingIsBounded(t *testing.T) {
	m, _, _ := newTestModel(t, false)
	for i := 0; i < maxNotifications+10; i++ {
		m.addNotification("note")
	}
	if len(m.notifications) != maxNotifications {
		t.Fatalf("notification ring holds %d entries, want %d", len(m.notifications), maxNotifications)
	}
}

func TestParseIndexSpec(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []int
		wantErr bool
	}{
		{name: "empty falls back to cursor", args: nil, want: []int{7}},
		{name: "single index", args: []string{"3"}, want: []int{3}},
		{name: "comma list", args: []string{"2,4,7"}, want: []int{2, 4, 7}},
		{name: "range", args: []string{"2-5"}, want: []int{2, 3, 4, 5}},
		{name: "mixed", args: []string{"1,3-4"}, want: []int{1, 3, 4}},
		{name: "spaced args", args: []string{"2", "4"}, want: []int{2, 4}},
		{name: "reversed range", args: []string{"5-2"}, wantErr: true},
		{name: "garbage", args: []string{"abc"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIndexSpec(tt.args, 7)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestColumnLabels(t *testing.T) {
	tests := []struct {
		col  int
		want string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
	}
	for _, tt := range tests {
		if got := columnLabel(tt.col); got != tt.want {
			t.Fatalf("columnLabel(%d) = %q, want %q", tt.col, got, tt.want)
		}
	}
	if got := cellRef(3, 2); got != "B3" {
		t.Fatalf("cellRef(3,2) = %q, want B3", got)
	}
}

func TestViewRendersAfterWindowSize(t *testing.T) {
	m, _, _ := newTestModel(t, false)
	v := m.View()
	if v.Content == nil || !v.AltScreen {
		t.Fatal("expected alt-screen view with content")
	}
}

func runCommand(t *testing.T, m Model, command string) Model {
	t.Helper()
	m = applyMsg(t, m, keyRune(':'))
	m = typeText(t, m, command)
	return applyMsg(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m = applyMsg(t, m, keyRune(r))
	}
	return m
}

func applyMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	updated, cmd := m.Update(msg)
	out, ok := updated.(Model)
	if !ok {
		t.Fatalf("expected Model, got %T", updated)
	}
	return applyCmd(t, out, cmd)
}

func applyCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	out := m
	currentCmd := cmd
	for i := 0; i < 6 && currentCmd != nil; i++ {
		msg := currentCmd()
		updated, nextCmd := out.Update(msg)
		casted, ok := updated.(Model)
		if !ok {
			t.Fatalf("expected Model, got %T", updated)
		}
		out = casted
		currentCmd = nextCmd
	}
	return out
}

func keyRune(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}
