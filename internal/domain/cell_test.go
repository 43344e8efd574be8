package domain

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		value     string
		isFormula bool
		want      CellType
	}{
		{"", false, TypeEmpty},
		{"", true, TypeEmpty},
		{"=SUM(A1:A3)", true, TypeText},
		{"=1+1", true, TypeText},
		{"3.14", false, TypeNumber},
		{"-42", false, TypeNumber},
		{"1e6", false, TypeNumber},
		{"2021/01/01", false, TypeDate},
		{"2021-01-01", false, TypeDate},
		{"true", false, TypeBoolean},
		{"false", false, TypeBoolean},
		{"True", false, TypeText},
		{"hello", false, TypeText},
		{"a/b", false, TypeText},
		{"a-b", false, TypeText},
		// Known heuristic looseness: three '-' fields reads as a date.
		{"1.2-3.4-beta", false, TypeDate},
	}
	for _, tc := range cases {
		if got := Classify(tc.value, tc.isFormula); got != tc.want {
			t.Errorf("Classify(%q, %v) = %v, want %v", tc.value, tc.isFormula, got, tc.want)
		}
	}
}

func TestNewCellDerivesFormulaAndType(t *testing.T) {
	c := NewCell("=A1+B1")
	if !c.IsFormula {
		t.Fatal("expected formula cell")
	}
	if c.Type != TypeText {
		t.Fatalf("formula type = %v, want text", c.Type)
	}
	if c.Native != nil {
		t.Fatal("edited cell must not carry a native tag")
	}

	n := NewCell("10")
	if n.IsFormula || n.Type != TypeNumber {
		t.Fatalf("NewCell(10) = %+v, want plain number", n)
	}
}

func TestEmptyCell(t *testing.T) {
	c := EmptyCell()
	if c.Type != TypeEmpty || c.Value != "" {
		t.Fatalf("EmptyCell() = %+v", c)
	}
	if c.Native == nil || c.Native.Type != NativeEmpty {
		t.Fatalf("EmptyCell native = %+v, want NativeEmpty", c.Native)
	}
}

func TestCellTypeString(t *testing.T) {
	pairs := map[CellType]string{
		TypeText:     "text",
		TypeNumber:   "number",
		TypeDate:     "date",
		TypeBoolean:  "boolean",
		TypeEmpty:    "empty",
		CellType(99): "unknown",
	}
	for typ, want := range pairs {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", typ, got, want)
		}
	}
}
