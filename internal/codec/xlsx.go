package codec

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/hylla/kalkyl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// XLSXSource reads one open xlsx file sheet by sheet.
type XLSXSource struct {
	file *excelize.File
}

// OpenXLSX opens a workbook file for per-sheet reads.
func OpenXLSX(path string) (*XLSXSource, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %q: %w", path, err)
	}
	return &XLSXSource{file: f}, nil
}

// SheetNames returns sheet names in file order.
func (s *XLSXSource) SheetNames() []string {
	return s.file.GetSheetList()
}

// ReadSheet materializes one sheet's populated region as domain cells,
// keeping the file's native value kind on every cell for round-trip
// fidelity.
func (s *XLSXSource) ReadSheet(name string) ([][]domain.Cell, error) {
	raw, err := s.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	width := 0
	for _, row := range raw {
		if len(row) > width {
			width = len(row)
		}
	}
	rows := make([][]domain.Cell, len(raw))
	for r, rawRow := range raw {
		cells := make([]domain.Cell, width)
		for c := 0; c < width; c++ {
			value := ""
			if c < len(rawRow) {
				value = rawRow[c]
			}
			cells[c] = s.buildCell(name, r+1, c+1, value)
		}
		rows[r] = cells
	}
	return rows, nil
}

// buildCell maps one raw cell onto the domain model. Coordinates are
// 1-indexed sheet coordinates.
func (s *XLSXSource) buildCell(sheet string, row, col int, value string) domain.Cell {
	if value == "" {
		return domain.EmptyCell()
	}
	axis, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return domain.NewCellWithType(value, false, domain.Classify(value, false), &domain.NativeValue{Type: domain.NativeString, Text: value})
	}

	// The file format cannot tell us whether a value cell is a cached
	// formula result, so formulas are detected explicitly.
	if formula, err := s.file.GetCellFormula(sheet, axis); err == nil && formula != "" {
		display := "=" + strings.TrimPrefix(formula, "=")
		return domain.NewCellWithType(display, true, domain.TypeText, &domain.NativeValue{Type: domain.NativeString, Text: display})
	}

	cellType, err := s.file.GetCellType(sheet, axis)
	if err != nil {
		cellType = excelize.CellTypeUnset
	}
	switch cellType {
	case excelize.CellTypeBool:
		b := value == "TRUE" || value == "true" || value == "1"
		display := "false"
		if b {
			display = "true"
		}
		return domain.NewCellWithType(display, false, domain.TypeBoolean, &domain.NativeValue{Type: domain.NativeBool, Bool: b})
	case excelize.CellTypeDate:
		return domain.NewCellWithType(value, false, domain.TypeDate, &domain.NativeValue{Type: domain.NativeDateTimeIso, Text: value})
	case excelize.CellTypeError:
		return domain.NewCellWithType("Error: "+value, false, domain.TypeText, &domain.NativeValue{Type: domain.NativeError, Text: value})
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return domain.NewCellWithType(value, false, domain.TypeNumber, &domain.NativeValue{Type: domain.NativeInt, Int: i})
		}
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return domain.NewCellWithType(value, false, domain.TypeNumber, &domain.NativeValue{Type: domain.NativeFloat, Float: f})
		}
	default:
	}
	return domain.NewCellWithType(value, false, domain.Classify(value, false), &domain.NativeValue{Type: domain.NativeString, Text: value})
}

// Close releases the underlying file handle.
func (s *XLSXSource) Close() error {
	return s.file.Close()
}

// XLSXWriter persists a workbook through a temp file and a rename so a
// failed save never truncates the original.
type XLSXWriter struct{}

// Write serializes every sheet's populated region in order.
func (XLSXWriter) Write(path string, sheets []SheetData) error {
	if len(sheets) == 0 {
		return fmt.Errorf("write xlsx %q: no sheets", path)
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return fmt.Errorf("name sheet %q: %w", sheet.Name, err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return fmt.Errorf("create sheet %q: %w", sheet.Name, err)
			}
		}
		if err := writeSheet(f, sheet); err != nil {
			return err
		}
	}

	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp.xlsx")
	if err := f.SaveAs(tmp); err != nil {
		return fmt.Errorf("save xlsx %q: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace xlsx %q: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet SheetData) error {
	for r, row := range sheet.Rows {
		for c, cell := range row {
			if cell.Value == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("cell name (%d,%d): %w", r+1, c+1, err)
			}
			if cell.IsFormula {
				if err := f.SetCellFormula(sheet.Name, axis, strings.TrimPrefix(cell.Value, "=")); err != nil {
					return fmt.Errorf("write formula %s!%s: %w", sheet.Name, axis, err)
				}
				continue
			}
			if err := f.SetCellValue(sheet.Name, axis, nativeWriteValue(cell)); err != nil {
				return fmt.Errorf("write cell %s!%s: %w", sheet.Name, axis, err)
			}
		}
	}
	return nil
}

// nativeWriteValue picks the typed value handed to the file writer,
// preferring the preserved native kind over the display classification.
func nativeWriteValue(cell domain.Cell) any {
	if n := cell.Native; n != nil {
		switch n.Type {
		case domain.NativeInt:
			return n.Int
		case domain.NativeFloat:
			return n.Float
		case domain.NativeBool:
			return n.Bool
		default:
		}
	}
	switch cell.Type {
	case domain.TypeNumber:
		if f, err := strconv.ParseFloat(cell.Value, 64); err == nil {
			return f
		}
	case domain.TypeBoolean:
		return cell.Value == "true"
	default:
	}
	return cell.Value
}
