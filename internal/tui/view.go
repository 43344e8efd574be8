package tui

import (
	"fmt"
	stdcolor "image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// View handles view.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	mutedStyle := lipgloss.NewStyle().Foreground(muted)

	if m.activeMode() == modeHelp {
		v := tea.NewView(m.renderHelpScreen(statusStyle))
		v.AltScreen = true
		return v
	}

	header := titleStyle.Render("kalkyl") + "  " + m.wb.Path()
	header += statusStyle.Render("  [" + m.modeLabel() + "]")
	if m.wb.Modified() {
		header += statusStyle.Render("  [+]")
	}

	tabs := m.renderSheetTabs(accent, dim)
	grid := m.renderGrid(accent, muted, dim)
	status := m.renderStatusLine(mutedStyle)
	panel := m.renderInfoPanel(mutedStyle, dim)

	sections := []string{header, tabs, "", grid, status}
	if panel != "" {
		sections = append(sections, panel)
	}
	if line := m.renderInputLine(); line != "" {
		sections = append(sections, line)
	}
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))

	if m.height > 0 {
		helpHeight := lipgloss.Height(helpLine)
		content = fitLines(content, max(0, m.height-helpHeight))
	}

	v := tea.NewView(content + "\n" + helpLine)
	v.AltScreen = true
	return v
}

// renderSheetTabs renders the sheet strip with the active tab accented.
func (m Model) renderSheetTabs(accent, dim color) string {
	activeStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	inactiveStyle := lipgloss.NewStyle().Foreground(dim)

	tabs := make([]string, 0, m.wb.SheetCount())
	for i, name := range m.wb.SheetNames() {
		label := truncate(name, 18)
		if !m.wb.IsSheetLoaded(i) {
			label += "*"
		}
		if i == m.wb.CurrentIndex() {
			tabs = append(tabs, activeStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, inactiveStyle.Render(" "+label+" "))
		}
	}
	return strings.Join(tabs, " ")
}

// renderGrid renders the visible window of the active sheet around the
// cursor.
func (m Model) renderGrid(accent, muted, dim color) string {
	sheet := m.wb.CurrentSheet()
	if !sheet.Loaded {
		return lipgloss.NewStyle().Foreground(muted).
			Render(fmt.Sprintf("sheet %q is not loaded - press enter to load it", sheet.Name))
	}
	if sheet.MaxRows == 0 || sheet.MaxCols == 0 {
		return lipgloss.NewStyle().Foreground(muted).Render("(empty sheet)")
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(muted)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	matchStyle := lipgloss.NewStyle().Foreground(accent)
	rowNumStyle := lipgloss.NewStyle().Foreground(dim)

	rowNumWidth := len(fmt.Sprint(sheet.MaxRows)) + 1
	visibleCols := max(1, (m.width-rowNumWidth)/(cellColumnWidth+1))
	visibleRows := m.gridWindowHeight()

	colStart, colEnd := windowBounds(sheet.MaxCols, m.cursorCol-1, visibleCols)
	rowStart, rowEnd := windowBounds(sheet.MaxRows, m.cursorRow-1, visibleRows)

	matchSet := map[[2]int]struct{}{}
	for _, match := range m.matches {
		matchSet[[2]int{match.Row, match.Col}] = struct{}{}
	}

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", rowNumWidth))
	for col := colStart + 1; col <= colEnd; col++ {
		b.WriteString(headerStyle.Render(padCell(columnLabel(col), cellColumnWidth)))
		b.WriteString(" ")
	}
	for row := rowStart + 1; row <= rowEnd; row++ {
		b.WriteString("\n")
		b.WriteString(rowNumStyle.Render(fmt.Sprintf("%*d", rowNumWidth-1, row)) + " ")
		for col := colStart + 1; col <= colEnd; col++ {
			cell, _ := sheet.Cell(row, col)
			text := padCell(cell.Value, cellColumnWidth)
			switch {
			case row == m.cursorRow && col == m.cursorCol:
				text = cursorStyle.Render(text)
			case hasMatch(matchSet, row, col):
				text = matchStyle.Render(text)
			}
			b.WriteString(text)
			b.WriteString(" ")
		}
	}
	return b.String()
}

// renderStatusLine renders the cursor reference and cell type readout.
func (m Model) renderStatusLine(style lipgloss.Style) string {
	sheet := m.wb.CurrentSheet()
	cell, _ := sheet.Cell(m.cursorRow, m.cursorCol)
	parts := []string{
		cellRef(m.cursorRow, m.cursorCol),
		cell.Type.String(),
	}
	if cell.IsFormula {
		parts = append(parts, "formula")
	}
	if len(m.matches) > 0 {
		parts = append(parts, fmt.Sprintf("match %d/%d", m.matchIndex+1, len(m.matches)))
	}
	parts = append(parts, fmt.Sprintf("%dx%d", sheet.MaxRows, sheet.MaxCols))
	return style.Render(strings.Join(parts, "  "))
}

// renderInfoPanel renders the bounded notification ring, newest first.
func (m Model) renderInfoPanel(style lipgloss.Style, dim color) string {
	lines := make([]string, 0, m.infoPanelHeight)
	for i := 0; i < m.infoPanelHeight && i < len(m.notifications); i++ {
		lines = append(lines, style.Render(truncate(m.notifications[i], max(8, m.width-2))))
	}
	if len(lines) == 0 {
		return ""
	}
	return lipgloss.NewStyle().
		BorderTop(true).
		BorderForeground(dim).
		Render(strings.Join(lines, "\n"))
}

// renderInputLine renders the active text buffer for editing, command,
// and search modes.
func (m Model) renderInputLine() string {
	switch m.activeMode() {
	case modeEditing:
		return cellRef(m.cursorRow, m.cursorCol) + " > " + m.editInput.View()
	case modeCommand, modeCommandInLazyLoading:
		return m.commandInput.View()
	case modeSearchForward, modeSearchBackward:
		return m.searchInput.View()
	default:
		return ""
	}
}

// renderHelpScreen renders the scrollable help text with its position
// footer.
func (m Model) renderHelpScreen(style lipgloss.Style) string {
	window := m.helpWindowHeight()
	start := clamp(m.helpScroll, 0, max(0, len(m.helpLines)-1))
	end := min(len(m.helpLines), start+window)
	body := strings.Join(m.helpLines[start:end], "\n")
	footer := style.Render(fmt.Sprintf("lines %d-%d/%d  j/k scroll - enter/esc close", start+1, end, len(m.helpLines)))
	return body + "\n\n" + footer
}

// gridWindowHeight returns how many sheet rows fit in the current layout.
func (m Model) gridWindowHeight() int {
	reserved := 7 + m.infoPanelHeight
	if m.height <= reserved {
		return 10
	}
	return max(1, m.height-reserved)
}

// color is the shared lipgloss color value used by render helpers.
type color = stdcolor.Color

// hasMatch reports whether a coordinate is in the match set.
func hasMatch(set map[[2]int]struct{}, row, col int) bool {
	_, ok := set[[2]int{row, col}]
	return ok
}

// padCell pads or truncates a value to the fixed grid column width.
func padCell(value string, width int) string {
	value = truncate(strings.ReplaceAll(value, "\n", " "), width)
	if len([]rune(value)) < width {
		value += strings.Repeat(" ", width-len([]rune(value)))
	}
	return value
}

// windowBounds computes the [start, end) window that keeps the selected
// index visible.
func windowBounds(total, selected, windowSize int) (int, int) {
	if windowSize <= 0 || total <= 0 {
		return 0, 0
	}
	if total <= windowSize {
		return 0, total
	}
	start := selected - windowSize/2
	start = clamp(start, 0, total-windowSize)
	return start, start + windowSize
}

// clamp bounds a value to [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// max returns the larger of the provided values.
func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// min returns the smaller of the provided values.
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// fitLines fits lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// truncate truncates a string to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	if max <= 1 {
		return string(rs[:max])
	}
	return string(rs[:max-1]) + "…"
}
