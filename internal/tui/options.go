package tui

// Option defines a functional option for model configuration.
type Option func(*Model)

// WithInfoPanelHeight sets the starting height of the info/notification
// panel.
func WithInfoPanelHeight(lines int) Option {
	return func(m *Model) {
		if lines >= 1 {
			m.infoPanelHeight = lines
		}
	}
}

// WithConfirmQuitOnUnsaved controls whether :q on a dirty workbook asks
// for :q! instead of quitting.
func WithConfirmQuitOnUnsaved(confirm bool) Option {
	return func(m *Model) {
		m.confirmQuitOnUnsaved = confirm
	}
}

// WithStartPosition restores a previous sheet/cursor position, clamped to
// valid bounds on the first render.
func WithStartPosition(sheet, row, col int) Option {
	return func(m *Model) {
		m.startSheet = sheet
		if row >= 1 {
			m.cursorRow = row
		}
		if col >= 1 {
			m.cursorCol = col
		}
	}
}

// WithSessionRecorder registers a callback invoked with the final
// sheet/cursor position when the program quits.
func WithSessionRecorder(record func(sheet, row, col int)) Option {
	return func(m *Model) {
		m.recordSession = record
	}
}
