// Package tui implements the modal spreadsheet editor: a bubbletea model
// routing keystrokes per input mode onto the workbook engine.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/hylla/kalkyl/internal/domain"
	"github.com/hylla/kalkyl/internal/workbook"
)

// inputMode represents a selectable mode.
type inputMode int

// modeNormal and related constants define package defaults.
const (
	modeNormal inputMode = iota
	modeEditing
	modeCommand
	modeCommandInLazyLoading
	modeSearchForward
	modeSearchBackward
	modeHelp
	modeLazyLoading
)

// maxNotifications bounds the in-memory notification ring.
const maxNotifications = 50

// cellColumnWidth is the rendered width of one grid column.
const cellColumnWidth = 12

// Model represents model data used by this package.
type Model struct {
	wb *workbook.Workbook

	ready  bool
	width  int
	height int

	help help.Model
	keys keyMap

	// mode holds the stored mode; LazyLoading is computed from the
	// current sheet's loaded flag at dispatch time, never stored.
	mode     inputMode
	gPressed bool

	cursorRow  int
	cursorCol  int
	startSheet int

	editInput    textinput.Model
	commandInput textinput.Model
	searchInput  textinput.Model

	searchQuery string
	matches     []workbook.Match
	matchIndex  int

	notifications []string

	helpText   string
	helpScroll int
	helpLines  []string
	markdown   markdownRenderer

	infoPanelHeight      int
	confirmQuitOnUnsaved bool

	recordSession func(sheet, row, col int)
}

// NewModel constructs a new value for this package.
func NewModel(wb *workbook.Workbook, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		wb:                   wb,
		help:                 h,
		keys:                 newKeyMap(),
		mode:                 modeNormal,
		cursorRow:            1,
		cursorCol:            1,
		editInput:            newModalInput("", "cell value", 512),
		commandInput:         newModalInput(":", "w | q | sheet <n> | dr | dc | ds | help", 256),
		searchInput:          newModalInput("/", "search", 256),
		infoPanelHeight:      5,
		confirmQuitOnUnsaved: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	if m.startSheet > 0 && m.startSheet < wb.SheetCount() {
		_ = wb.SwitchSheet(m.startSheet)
	}
	m.clampCursor()
	return m
}

// newModalInput constructs one focused-style text input.
func newModalInput(prompt, placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.CharLimit = limit
	return in
}

// Init handles init.
func (m Model) Init() tea.Cmd {
	return nil
}

// activeMode computes the mode the next keystroke dispatches to. A stored
// Normal mode over an unloaded sheet is the lazy-loading gate; data-layer
// calls never touch the stored mode.
func (m Model) activeMode() inputMode {
	if m.mode == modeNormal && !m.wb.IsSheetLoaded(m.wb.CurrentIndex()) {
		return modeLazyLoading
	}
	return m.mode
}

// Update updates state for the requested operation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		switch m.activeMode() {
		case modeLazyLoading:
			return m.handleLazyLoadingKey(msg)
		case modeEditing:
			return m.handleEditingKey(msg)
		case modeCommand, modeCommandInLazyLoading:
			return m.handleCommandKey(msg)
		case modeSearchForward, modeSearchBackward:
			return m.handleSearchKey(msg)
		case modeHelp:
			return m.handleHelpKey(msg)
		default:
			return m.handleNormalModeKey(msg)
		}

	default:
		return m, nil
	}
}

// handleNormalModeKey handles normal mode key.
func (m Model) handleNormalModeKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if strings.HasPrefix(msg.String(), "ctrl+") || strings.HasPrefix(msg.String(), "super+") {
		return m.handleControlKey(msg)
	}

	sheet := m.wb.CurrentSheet()
	wasChord := m.gPressed
	m.gPressed = false

	switch {
	case msg.String() == "g":
		if wasChord {
			m.cursorRow = 1
			return m, nil
		}
		m.gPressed = true
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		if m.cursorCol > 1 {
			m.cursorCol--
		}
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		if m.cursorCol < max(1, sheet.MaxCols) {
			m.cursorCol++
		}
		return m, nil
	case key.Matches(msg, m.keys.moveUp):
		if m.cursorRow > 1 {
			m.cursorRow--
		}
		return m, nil
	case key.Matches(msg, m.keys.moveDown):
		if m.cursorRow < max(1, sheet.MaxRows) {
			m.cursorRow++
		}
		return m, nil
	case key.Matches(msg, m.keys.jumpBottom):
		m.cursorRow = max(1, sheet.MaxRows)
		return m, nil
	case key.Matches(msg, m.keys.rowStart):
		m.cursorCol = 1
		return m, nil
	case key.Matches(msg, m.keys.rowFirstData):
		m.cursorCol = m.firstPopulatedCol()
		return m, nil
	case key.Matches(msg, m.keys.rowEnd):
		m.cursorCol = m.lastPopulatedCol()
		return m, nil
	case key.Matches(msg, m.keys.edit):
		return m, m.startEditing()
	case key.Matches(msg, m.keys.undo):
		typ, err := m.wb.Undo()
		if err != nil {
			m.addNotification(notifyError(err))
			return m, nil
		}
		m.clampCursor()
		m.invalidateMatchesIfStale()
		m.addNotification("undid " + describeAction(typ))
		return m, nil
	case key.Matches(msg, m.keys.copyCell):
		if err := m.wb.CopyCell(m.cursorRow, m.cursorCol); err != nil {
			m.addNotification(notifyError(err))
			return m, nil
		}
		m.addNotification("copied " + cellRef(m.cursorRow, m.cursorCol))
		return m, nil
	case key.Matches(msg, m.keys.cutCell):
		if err := m.wb.CutCell(m.cursorRow, m.cursorCol); err != nil {
			m.addNotification(notifyError(err))
			return m, nil
		}
		m.invalidateMatchesIfStale()
		m.addNotification("cut " + cellRef(m.cursorRow, m.cursorCol))
		return m, nil
	case key.Matches(msg, m.keys.pasteCell):
		if err := m.wb.PasteCell(m.cursorRow, m.cursorCol); err != nil {
			m.addNotification(notifyError(err))
			return m, nil
		}
		m.invalidateMatchesIfStale()
		m.addNotification("pasted into " + cellRef(m.cursorRow, m.cursorCol))
		return m, nil
	case key.Matches(msg, m.keys.prevSheet):
		return m.switchSheetBy(-1)
	case key.Matches(msg, m.keys.nextSheet):
		return m.switchSheetBy(1)
	case key.Matches(msg, m.keys.panelGrow):
		m.infoPanelHeight++
		return m, nil
	case key.Matches(msg, m.keys.panelShrink):
		if m.infoPanelHeight > 1 {
			m.infoPanelHeight--
		}
		return m, nil
	case key.Matches(msg, m.keys.command):
		return m.startCommandMode(modeCommand)
	case key.Matches(msg, m.keys.searchFwd):
		return m.startSearchMode(modeSearchForward)
	case key.Matches(msg, m.keys.searchBack):
		return m.startSearchMode(modeSearchBackward)
	case key.Matches(msg, m.keys.searchNext):
		m.jumpToMatch(1)
		return m, nil
	case key.Matches(msg, m.keys.searchPrev):
		m.jumpToMatch(-1)
		return m, nil
	default:
		// Unknown keys are no-ops; the chord flag is already cleared.
		return m, nil
	}
}

// handleControlKey dispatches Control/Super-modified keys in normal mode.
func (m Model) handleControlKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.gPressed = false
	switch msg.String() {
	case "ctrl+c":
		return m, m.quit()
	case "ctrl+r":
		typ, err := m.wb.Redo()
		if err != nil {
			m.addNotification(notifyError(err))
			return m, nil
		}
		m.clampCursor()
		m.invalidateMatchesIfStale()
		m.addNotification("redid " + describeAction(typ))
		return m, nil
	case "ctrl+left", "super+left":
		m.cursorRow, m.cursorCol = m.jumpToPopulated(0, -1)
		return m, nil
	case "ctrl+right", "super+right":
		m.cursorRow, m.cursorCol = m.jumpToPopulated(0, 1)
		return m, nil
	case "ctrl+up", "super+up":
		m.cursorRow, m.cursorCol = m.jumpToPopulated(-1, 0)
		return m, nil
	case "ctrl+down", "super+down":
		m.cursorRow, m.cursorCol = m.jumpToPopulated(1, 0)
		return m, nil
	default:
		return m, nil
	}
}

// handleLazyLoadingKey gates input while the current sheet is unloaded.
func (m Model) handleLazyLoadingKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.gPressed = false
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.edit):
		name := m.wb.CurrentSheet().Name
		if err := m.wb.EnsureSheetLoaded(m.wb.CurrentIndex()); err != nil {
			m.addNotification(notifyError(err))
			return m, nil
		}
		m.clampCursor()
		m.matches = nil
		m.addNotification(fmt.Sprintf("loaded sheet %q", name))
		return m, nil
	case key.Matches(msg, m.keys.prevSheet):
		return m.switchSheetBy(-1)
	case key.Matches(msg, m.keys.nextSheet):
		return m.switchSheetBy(1)
	case key.Matches(msg, m.keys.command):
		return m.startCommandMode(modeCommandInLazyLoading)
	default:
		m.addNotification("sheet not loaded: press enter to load it")
		return m, nil
	}
}

// handleEditingKey forwards keys to the cell editor, intercepting only
// confirm and cancel.
func (m Model) handleEditingKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := m.editInput.Value()
		m.editInput.Blur()
		m.mode = modeNormal
		if err := m.wb.EditCell(m.cursorRow, m.cursorCol, value); err != nil {
			m.addNotification(notifyError(err))
			return m, nil
		}
		m.invalidateMatchesIfStale()
		return m, nil
	case "esc":
		m.editInput.Blur()
		m.mode = modeNormal
		return m, nil
	default:
		var cmd tea.Cmd
		m.editInput, cmd = m.editInput.Update(msg)
		return m, cmd
	}
}

// handleCommandKey edits and submits the colon-command buffer.
func (m Model) handleCommandKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		command := strings.TrimSpace(m.commandInput.Value())
		m.commandInput.Blur()
		// Returning the stored mode to Normal lets the computed
		// lazy-loading gate reassert itself when the sheet is still
		// unloaded.
		m.mode = modeNormal
		return m.executeCommand(command)
	case "esc":
		m.commandInput.Blur()
		m.mode = modeNormal
		return m, nil
	default:
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		return m, cmd
	}
}

// handleSearchKey edits and submits the search query buffer.
func (m Model) handleSearchKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		backward := m.mode == modeSearchBackward
		m.searchQuery = m.searchInput.Value()
		m.searchInput.Blur()
		m.mode = modeNormal
		m.runSearch(backward)
		return m, nil
	case "esc":
		m.searchInput.Blur()
		m.mode = modeNormal
		return m, nil
	default:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}
}

// handleHelpKey scrolls or dismisses the help screen.
func (m Model) handleHelpKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	window := m.helpWindowHeight()
	maxScroll := max(0, len(m.helpLines)-window)
	switch msg.String() {
	case "esc", "enter", "q":
		m.mode = modeNormal
		return m, nil
	case "j", "down":
		m.helpScroll = clamp(m.helpScroll+1, 0, maxScroll)
		return m, nil
	case "k", "up":
		m.helpScroll = clamp(m.helpScroll-1, 0, maxScroll)
		return m, nil
	case "pgdown":
		m.helpScroll = clamp(m.helpScroll+window, 0, maxScroll)
		return m, nil
	case "pgup":
		m.helpScroll = clamp(m.helpScroll-window, 0, maxScroll)
		return m, nil
	case "home", "g":
		m.helpScroll = 0
		return m, nil
	case "end", "G":
		m.helpScroll = maxScroll
		return m, nil
	default:
		return m, nil
	}
}

// startEditing loads the sheet if needed and opens the cell editor.
func (m *Model) startEditing() tea.Cmd {
	if !m.wb.IsSheetLoaded(m.wb.CurrentIndex()) {
		if err := m.wb.EnsureSheetLoaded(m.wb.CurrentIndex()); err != nil {
			m.addNotification(notifyError(err))
			return nil
		}
		m.clampCursor()
	}
	cell, _ := m.wb.CurrentSheet().Cell(m.cursorRow, m.cursorCol)
	m.mode = modeEditing
	m.editInput.SetValue(cell.Value)
	m.editInput.CursorEnd()
	return m.editInput.Focus()
}

// startCommandMode opens the colon-command buffer.
func (m Model) startCommandMode(mode inputMode) (tea.Model, tea.Cmd) {
	m.gPressed = false
	m.mode = mode
	m.commandInput.SetValue("")
	return m, m.commandInput.Focus()
}

// startSearchMode opens the search query buffer.
func (m Model) startSearchMode(mode inputMode) (tea.Model, tea.Cmd) {
	m.mode = mode
	if mode == modeSearchBackward {
		m.searchInput.Prompt = "?"
	} else {
		m.searchInput.Prompt = "/"
	}
	m.searchInput.SetValue(m.searchQuery)
	m.searchInput.CursorEnd()
	return m, m.searchInput.Focus()
}

// switchSheetBy activates the neighboring sheet with wraparound. It never
// loads the target; the lazy-loading gate handles that.
func (m Model) switchSheetBy(delta int) (tea.Model, tea.Cmd) {
	count := m.wb.SheetCount()
	if count < 2 {
		m.addNotification("workbook has a single sheet")
		return m, nil
	}
	next := (m.wb.CurrentIndex() + delta + count) % count
	if err := m.wb.SwitchSheet(next); err != nil {
		m.addNotification(notifyError(err))
		return m, nil
	}
	m.matches = nil
	m.clampCursor()
	return m, nil
}

// executeCommand runs one colon-command.
func (m Model) executeCommand(command string) (tea.Model, tea.Cmd) {
	if command == "" {
		return m, nil
	}
	fields := strings.Fields(command)
	name, args := fields[0], fields[1:]

	switch name {
	case "w":
		return m.commandWrite(args, false)
	case "wq", "x":
		return m.commandWrite(args, true)
	case "q":
		if m.wb.Modified() && m.confirmQuitOnUnsaved {
			m.addNotification("unsaved changes: use :w to save or :q! to discard")
			return m, nil
		}
		return m, m.quit()
	case "q!":
		return m, m.quit()
	case "sheet":
		return m.commandSheet(args)
	case "dr":
		return m.commandDeleteRows(args)
	case "dc":
		return m.commandDeleteColumns(args)
	case "ds":
		name := m.wb.CurrentSheet().Name
		if err := m.wb.DeleteCurrentSheet(); err != nil {
			m.addNotification(notifyError(err))
			return m, nil
		}
		m.matches = nil
		m.clampCursor()
		m.addNotification(fmt.Sprintf("deleted sheet %q", name))
		return m, nil
	case "help":
		m.openHelp()
		return m, nil
	default:
		m.addNotification("unknown command: " + name)
		return m, nil
	}
}

// commandWrite saves the workbook, optionally quitting after.
func (m Model) commandWrite(args []string, quitAfter bool) (tea.Model, tea.Cmd) {
	var err error
	if len(args) > 0 {
		err = m.wb.SaveAs(args[0])
	} else {
		err = m.wb.Save()
	}
	if err != nil {
		m.addNotification(notifyError(err))
		return m, nil
	}
	m.addNotification("saved " + m.wb.Path())
	if quitAfter {
		return m, m.quit()
	}
	return m, nil
}

// commandSheet switches to a sheet by 1-based number or name.
func (m Model) commandSheet(args []string) (tea.Model, tea.Cmd) {
	if len(args) == 0 {
		m.addNotification("usage: sheet <number|name>")
		return m, nil
	}
	target := strings.Join(args, " ")
	index := -1
	if n, err := strconv.Atoi(target); err == nil {
		index = n - 1
	} else {
		for i, name := range m.wb.SheetNames() {
			if name == target {
				index = i
				break
			}
		}
	}
	if err := m.wb.SwitchSheet(index); err != nil {
		m.addNotification("no such sheet: " + target)
		return m, nil
	}
	m.matches = nil
	m.clampCursor()
	return m, nil
}

// commandDeleteRows deletes the listed rows, defaulting to the cursor row.
func (m Model) commandDeleteRows(args []string) (tea.Model, tea.Cmd) {
	rows, err := parseIndexSpec(args, m.cursorRow)
	if err != nil {
		m.addNotification(err.Error())
		return m, nil
	}
	if len(rows) == 1 {
		err = m.wb.DeleteRow(rows[0])
	} else {
		err = m.wb.DeleteRows(rows)
	}
	if err != nil {
		m.addNotification(notifyError(err))
		return m, nil
	}
	m.matches = nil
	m.clampCursor()
	m.addNotification(fmt.Sprintf("deleted %d row(s)", len(rows)))
	return m, nil
}

// commandDeleteColumns deletes the listed columns, defaulting to the
// cursor column.
func (m Model) commandDeleteColumns(args []string) (tea.Model, tea.Cmd) {
	cols, err := parseIndexSpec(args, m.cursorCol)
	if err != nil {
		m.addNotification(err.Error())
		return m, nil
	}
	if len(cols) == 1 {
		err = m.wb.DeleteColumn(cols[0])
	} else {
		err = m.wb.DeleteColumns(cols)
	}
	if err != nil {
		m.addNotification(notifyError(err))
		return m, nil
	}
	m.matches = nil
	m.clampCursor()
	m.addNotification(fmt.Sprintf("deleted %d column(s)", len(cols)))
	return m, nil
}

// parseIndexSpec parses "3", "2,4,7", "2-5", and mixes of those into a
// 1-based index list. Empty args fall back to the cursor position.
func parseIndexSpec(args []string, fallback int) ([]int, error) {
	if len(args) == 0 {
		return []int{fallback}, nil
	}
	var out []int
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			lo, hi, ok := strings.Cut(part, "-")
			if ok {
				start, err := strconv.Atoi(strings.TrimSpace(lo))
				if err != nil {
					return nil, fmt.Errorf("invalid range: %s", part)
				}
				end, err := strconv.Atoi(strings.TrimSpace(hi))
				if err != nil {
					return nil, fmt.Errorf("invalid range: %s", part)
				}
				if end < start {
					return nil, fmt.Errorf("invalid range: %s", part)
				}
				for i := start; i <= end; i++ {
					out = append(out, i)
				}
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid index: %s", part)
			}
			out = append(out, n)
		}
	}
	if len(out) == 0 {
		return []int{fallback}, nil
	}
	return out, nil
}

// runSearch executes the current query and jumps to the first match in
// the chosen direction from the cursor.
func (m *Model) runSearch(backward bool) {
	m.matches = m.wb.FindAllMatches(m.searchQuery)
	if len(m.matches) == 0 {
		if m.searchQuery != "" {
			m.addNotification("no matches for " + strconv.Quote(m.searchQuery))
		}
		return
	}
	m.matchIndex = m.startMatchIndex(backward)
	m.moveToMatch()
	m.addNotification(fmt.Sprintf("%d matches", len(m.matches)))
}

// startMatchIndex picks the first match forward or backward of the
// cursor, wrapping at the sheet edges.
func (m Model) startMatchIndex(backward bool) int {
	if backward {
		for i := len(m.matches) - 1; i >= 0; i-- {
			match := m.matches[i]
			if match.Row < m.cursorRow || (match.Row == m.cursorRow && match.Col < m.cursorCol) {
				return i
			}
		}
		return len(m.matches) - 1
	}
	for i, match := range m.matches {
		if match.Row > m.cursorRow || (match.Row == m.cursorRow && match.Col > m.cursorCol) {
			return i
		}
	}
	return 0
}

// jumpToMatch advances cyclically through the match set. A non-empty
// stale query with no cached results is re-run first.
func (m *Model) jumpToMatch(delta int) {
	if len(m.matches) == 0 && m.searchQuery != "" {
		m.matches = m.wb.FindAllMatches(m.searchQuery)
		if len(m.matches) > 0 {
			m.matchIndex = m.startMatchIndex(delta < 0)
			m.moveToMatch()
			return
		}
	}
	if len(m.matches) == 0 {
		m.addNotification("no search results")
		return
	}
	m.matchIndex = (m.matchIndex + delta + len(m.matches)) % len(m.matches)
	m.moveToMatch()
}

// moveToMatch places the cursor on the active match.
func (m *Model) moveToMatch() {
	match := m.matches[m.matchIndex]
	m.cursorRow = match.Row
	m.cursorCol = match.Col
}

// invalidateMatchesIfStale drops cached matches after a mutation so
// navigation re-runs the query against current content.
func (m *Model) invalidateMatchesIfStale() {
	m.matches = nil
}

// jumpToPopulated finds the nearest populated cell from the cursor in one
// direction, or the populated edge when none exists.
func (m Model) jumpToPopulated(dRow, dCol int) (int, int) {
	sheet := m.wb.CurrentSheet()
	row, col := m.cursorRow, m.cursorCol
	for {
		row += dRow
		col += dCol
		if row < 1 || col < 1 || row > sheet.MaxRows || col > sheet.MaxCols {
			break
		}
		if cell, ok := sheet.Cell(row, col); ok && cell.Type != domain.TypeEmpty {
			return row, col
		}
	}
	// No populated cell in that direction: stop at the edge.
	row = clamp(m.cursorRow+dRow*sheet.MaxRows, 1, max(1, sheet.MaxRows))
	col = clamp(m.cursorCol+dCol*sheet.MaxCols, 1, max(1, sheet.MaxCols))
	return row, col
}

// firstPopulatedCol returns the first non-empty column of the cursor row.
func (m Model) firstPopulatedCol() int {
	sheet := m.wb.CurrentSheet()
	for col := 1; col <= sheet.MaxCols; col++ {
		if cell, ok := sheet.Cell(m.cursorRow, col); ok && cell.Type != domain.TypeEmpty {
			return col
		}
	}
	return 1
}

// lastPopulatedCol returns the last non-empty column of the cursor row.
func (m Model) lastPopulatedCol() int {
	sheet := m.wb.CurrentSheet()
	for col := sheet.MaxCols; col >= 1; col-- {
		if cell, ok := sheet.Cell(m.cursorRow, col); ok && cell.Type != domain.TypeEmpty {
			return col
		}
	}
	return max(1, sheet.MaxCols)
}

// clampCursor keeps the cursor inside the populated region of the active
// sheet.
func (m *Model) clampCursor() {
	sheet := m.wb.CurrentSheet()
	m.cursorRow = clamp(m.cursorRow, 1, max(1, sheet.MaxRows))
	m.cursorCol = clamp(m.cursorCol, 1, max(1, sheet.MaxCols))
}

// addNotification prepends one message to the bounded ring.
func (m *Model) addNotification(message string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	m.notifications = append([]string{message}, m.notifications...)
	if len(m.notifications) > maxNotifications {
		m.notifications = m.notifications[:maxNotifications]
	}
}

// quit records the session position and terminates the program.
func (m Model) quit() tea.Cmd {
	if m.recordSession != nil {
		m.recordSession(m.wb.CurrentIndex(), m.cursorRow, m.cursorCol)
	}
	return tea.Quit
}

// openHelp renders the help markdown and enters the help screen.
func (m *Model) openHelp() {
	m.helpText = m.markdown.render(helpMarkdown, max(24, m.width-8))
	m.helpLines = strings.Split(m.helpText, "\n")
	m.helpScroll = 0
	m.mode = modeHelp
}

// helpWindowHeight returns the visible line count of the help screen.
func (m Model) helpWindowHeight() int {
	if m.height <= 4 {
		return 10
	}
	return max(1, m.height-4)
}

// notifyError renders a core error as a notification message.
func notifyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrOutOfRange):
		return "out of range"
	case errors.Is(err, workbook.ErrNothingToUndo):
		return "nothing to undo"
	case errors.Is(err, workbook.ErrNothingToRedo):
		return "nothing to redo"
	case errors.Is(err, workbook.ErrEmptyClipboard):
		return "clipboard is empty"
	case errors.Is(err, workbook.ErrLastSheet):
		return "cannot delete the last sheet"
	default:
		return err.Error()
	}
}

// describeAction maps an engine action class onto a status word.
func describeAction(typ workbook.ActionType) string {
	switch typ {
	case workbook.ActionPaste:
		return "paste"
	case workbook.ActionDeleteRow:
		return "row deletion"
	case workbook.ActionDeleteMultiRows:
		return "multi-row deletion"
	case workbook.ActionDeleteColumn:
		return "column deletion"
	case workbook.ActionDeleteMultiColumns:
		return "multi-column deletion"
	case workbook.ActionDeleteSheet:
		return "sheet deletion"
	default:
		return "edit"
	}
}

// modeLabel renders the mode indicator for the status line.
func (m Model) modeLabel() string {
	switch m.activeMode() {
	case modeEditing:
		return "EDIT"
	case modeCommand, modeCommandInLazyLoading:
		return "COMMAND"
	case modeSearchForward, modeSearchBackward:
		return "SEARCH"
	case modeHelp:
		return "HELP"
	case modeLazyLoading:
		return "LOADING"
	default:
		return "NORMAL"
	}
}

// columnLabel converts a 1-based column index to spreadsheet letters.
func columnLabel(col int) string {
	if col < 1 {
		return ""
	}
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}

// cellRef renders an A1-style reference for a 1-based coordinate.
func cellRef(row, col int) string {
	return fmt.Sprintf("%s%d", columnLabel(col), row)
}
