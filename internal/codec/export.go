package codec

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hylla/kalkyl/internal/domain"
)

// ExportCSV writes one sheet's populated region as csv.
func ExportCSV(w io.Writer, sheet *domain.Sheet) error {
	cw := csv.NewWriter(w)
	for r := 1; r <= sheet.MaxRows; r++ {
		record := make([]string, sheet.MaxCols)
		for c := 1; c <= sheet.MaxCols; c++ {
			if cell, ok := sheet.Cell(r, c); ok {
				record[c-1] = cell.Value
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", r, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// sheetExport is the json export envelope for one sheet.
type sheetExport struct {
	Sheet string     `json:"sheet"`
	Rows  [][]string `json:"rows"`
}

// ExportJSON writes one sheet's populated region as an indented json
// document.
func ExportJSON(w io.Writer, sheet *domain.Sheet) error {
	out := sheetExport{Sheet: sheet.Name, Rows: make([][]string, 0, sheet.MaxRows)}
	for r := 1; r <= sheet.MaxRows; r++ {
		record := make([]string, sheet.MaxCols)
		for c := 1; c <= sheet.MaxCols; c++ {
			if cell, ok := sheet.Cell(r, c); ok {
				record[c-1] = cell.Value
			}
		}
		out.Rows = append(out.Rows, record)
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sheet json: %w", err)
	}
	encoded = append(encoded, '\n')
	if _, err := w.Write(encoded); err != nil {
		return fmt.Errorf("write sheet json: %w", err)
	}
	return nil
}
