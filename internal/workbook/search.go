package workbook

import "strings"

// Match is one search hit on the active sheet, in grid coordinates.
type Match struct {
	Row int
	Col int
}

// FindAllMatches scans the active sheet's populated region row-major for
// cells whose raw value contains the query as a case-sensitive substring.
// An empty query matches nothing.
func (w *Workbook) FindAllMatches(query string) []Match {
	if query == "" {
		return nil
	}
	sheet := w.CurrentSheet()
	var matches []Match
	for row := 1; row <= sheet.MaxRows; row++ {
		for col := 1; col <= sheet.MaxCols; col++ {
			if strings.Contains(sheet.Data[row][col].Value, query) {
				matches = append(matches, Match{Row: row, Col: col})
			}
		}
	}
	return matches
}
