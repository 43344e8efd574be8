// Package codec reads and writes workbook files. The editing core only
// sees the Source and Writer interfaces; the xlsx implementation lives
// behind them so the store can be tested against fakes.
package codec

import "github.com/hylla/kalkyl/internal/domain"

// Source serves per-sheet reads so the workbook store can load sheets
// lazily. ReadSheet returns dense 0-indexed rows; gaps are empty cells.
type Source interface {
	SheetNames() []string
	ReadSheet(name string) ([][]domain.Cell, error)
	Close() error
}

// SheetData is one sheet's populated region handed to a Writer.
type SheetData struct {
	Name string
	Rows [][]domain.Cell
}

// Writer persists a whole workbook in source order.
type Writer interface {
	Write(path string, sheets []SheetData) error
}
