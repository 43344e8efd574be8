package domain

// Sheet is one named grid of cells. The grid is 1-indexed: row 0 and
// column 0 are a sentinel margin so cell (1,1) is the top-left visible
// cell, matching spreadsheet coordinates. Every row has identical length.
type Sheet struct {
	Name    string
	Data    [][]Cell
	MaxRows int
	MaxCols int
	Loaded  bool
}

// NewSheet allocates a loaded sheet with the sentinel margin included.
func NewSheet(name string, rows, cols int) *Sheet {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	data := make([][]Cell, rows+1)
	for i := range data {
		data[i] = make([]Cell, cols+1)
		for j := range data[i] {
			data[i][j] = EmptyCell()
		}
	}
	return &Sheet{
		Name:    name,
		Data:    data,
		MaxRows: rows,
		MaxCols: cols,
		Loaded:  true,
	}
}

// NewUnloadedSheet creates a placeholder with an empty grid and zero
// bounds. The workbook's lazy loader fills it in on first access.
func NewUnloadedSheet(name string) *Sheet {
	s := NewSheet(name, 0, 0)
	s.Loaded = false
	return s
}

// InGrid reports whether the coordinate falls inside the allocated grid,
// sentinel margin excluded. The allocated grid may be larger than the
// populated MaxRows x MaxCols region.
func (s *Sheet) InGrid(row, col int) bool {
	return row >= 1 && row < len(s.Data) && col >= 1 && col < len(s.Data[0])
}

// Cell returns the cell at a 1-indexed coordinate.
func (s *Sheet) Cell(row, col int) (Cell, bool) {
	if !s.InGrid(row, col) {
		return Cell{}, false
	}
	return s.Data[row][col], true
}

// SetCell replaces the cell at a 1-indexed coordinate and extends the
// populated bounds when the write lands past them.
func (s *Sheet) SetCell(row, col int, cell Cell) error {
	if !s.InGrid(row, col) {
		return ErrOutOfRange
	}
	s.Data[row][col] = cell
	if row > s.MaxRows {
		s.MaxRows = row
	}
	if col > s.MaxCols {
		s.MaxCols = col
	}
	return nil
}

// CloneRow snapshots one full row, sentinel column included.
func (s *Sheet) CloneRow(row int) []Cell {
	if row < 0 || row >= len(s.Data) {
		return nil
	}
	out := make([]Cell, len(s.Data[row]))
	copy(out, s.Data[row])
	return out
}

// CloneColumn snapshots one full column, sentinel row included.
func (s *Sheet) CloneColumn(col int) []Cell {
	if len(s.Data) == 0 || col < 0 || col >= len(s.Data[0]) {
		return nil
	}
	out := make([]Cell, len(s.Data))
	for i := range s.Data {
		out[i] = s.Data[i][col]
	}
	return out
}

// RemoveRow deletes one populated row and shrinks the bounds.
func (s *Sheet) RemoveRow(row int) error {
	if row < 1 || row > s.MaxRows {
		return ErrOutOfRange
	}
	s.Data = append(s.Data[:row], s.Data[row+1:]...)
	s.MaxRows--
	return nil
}

// InsertRow re-inserts a previously removed row at its original index.
// The cells slice must include the sentinel column and match the grid
// width.
func (s *Sheet) InsertRow(row int, cells []Cell) error {
	if row < 1 || row > s.MaxRows+1 {
		return ErrOutOfRange
	}
	if len(s.Data) > 0 && len(cells) != len(s.Data[0]) {
		return ErrOutOfRange
	}
	inserted := make([]Cell, len(cells))
	copy(inserted, cells)
	s.Data = append(s.Data[:row], append([][]Cell{inserted}, s.Data[row:]...)...)
	s.MaxRows++
	return nil
}

// RemoveColumn deletes one populated column from every row.
func (s *Sheet) RemoveColumn(col int) error {
	if col < 1 || col > s.MaxCols {
		return ErrOutOfRange
	}
	for i := range s.Data {
		s.Data[i] = append(s.Data[i][:col], s.Data[i][col+1:]...)
	}
	s.MaxCols--
	return nil
}

// InsertColumn re-inserts a previously removed column at its original
// index. The cells slice must include the sentinel row and match the grid
// height.
func (s *Sheet) InsertColumn(col int, cells []Cell) error {
	if col < 1 || col > s.MaxCols+1 {
		return ErrOutOfRange
	}
	if len(cells) != len(s.Data) {
		return ErrOutOfRange
	}
	for i := range s.Data {
		row := s.Data[i]
		row = append(row[:col], append([]Cell{cells[i]}, row[col:]...)...)
		s.Data[i] = row
	}
	s.MaxCols++
	return nil
}
