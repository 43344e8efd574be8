package tui

import "charm.land/bubbles/v2/key"

// keyMap represents key map data used by this package.
type keyMap struct {
	moveLeft     key.Binding
	moveRight    key.Binding
	moveUp       key.Binding
	moveDown     key.Binding
	jumpBottom   key.Binding
	rowStart     key.Binding
	rowFirstData key.Binding
	rowEnd       key.Binding
	edit         key.Binding
	undo         key.Binding
	redo         key.Binding
	copyCell     key.Binding
	cutCell      key.Binding
	pasteCell    key.Binding
	prevSheet    key.Binding
	nextSheet    key.Binding
	command      key.Binding
	searchFwd    key.Binding
	searchBack   key.Binding
	searchNext   key.Binding
	searchPrev   key.Binding
	panelGrow    key.Binding
	panelShrink  key.Binding
	quit         key.Binding
}

// newKeyMap constructs key map.
func newKeyMap() keyMap {
	return keyMap{
		moveLeft:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "left")),
		moveRight:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "right")),
		moveUp:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		moveDown:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		jumpBottom:   key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "last row")),
		rowStart:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "first column")),
		rowFirstData: key.NewBinding(key.WithKeys("^"), key.WithHelp("^", "first filled cell")),
		rowEnd:       key.NewBinding(key.WithKeys("$"), key.WithHelp("$", "last filled cell")),
		edit:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit cell")),
		undo:         key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		redo:         key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "redo")),
		copyCell:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell")),
		cutCell:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "cut cell")),
		pasteCell:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste cell")),
		prevSheet:    key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous sheet")),
		nextSheet:    key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next sheet")),
		command:      key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		searchFwd:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		searchBack:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "search back")),
		searchNext:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
		searchPrev:   key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "previous match")),
		panelGrow:    key.NewBinding(key.WithKeys("="), key.WithHelp("=", "grow info panel")),
		panelShrink:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "shrink info panel")),
		quit:         key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp handles short help.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.edit, k.copyCell, k.cutCell, k.pasteCell, k.undo, k.command, k.searchFwd, k.quit,
	}
}

// FullHelp handles full help.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.moveLeft, k.moveRight, k.moveUp, k.moveDown, k.jumpBottom, k.rowStart, k.rowFirstData, k.rowEnd},
		{k.edit, k.undo, k.redo, k.copyCell, k.cutCell, k.pasteCell},
		{k.prevSheet, k.nextSheet, k.command, k.searchFwd, k.searchBack, k.searchNext, k.searchPrev, k.panelGrow, k.panelShrink, k.quit},
	}
}
