package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/hylla/kalkyl/internal/codec"
	"github.com/hylla/kalkyl/internal/domain"
	"github.com/hylla/kalkyl/internal/session"
)

// TestMain sets deterministic environment defaults for CLI tests.
func TestMain(m *testing.M) {
	_ = os.Setenv("KALKYL_DEV_MODE", "false")
	os.Exit(m.Run())
}

// fakeProgram represents fake program data used by this package.
type fakeProgram struct {
	runErr error
}

// Run runs the requested command flow.
func (f fakeProgram) Run() (tea.Model, error) {
	return nil, f.runErr
}

// writeTestWorkbook creates a small xlsx file for CLI tests.
func writeTestWorkbook(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "budget.xlsx")
	err := codec.XLSXWriter{}.Write(path, []codec.SheetData{
		{
			Name: "Budget",
			Rows: [][]domain.Cell{
				{domain.NewCell("name"), domain.NewCell("amount")},
				{domain.NewCell("rent"), domain.NewCell("9500")},
			},
		},
	})
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return path
}

// writeTestConfig writes a config file that keeps all state inside the test dir.
func writeTestConfig(t *testing.T, dir string, sessionEnabled bool) string {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.toml")
	sessionPath := filepath.Join(dir, "session.db")
	content := `
[session]
enabled = ` + boolLiteral(sessionEnabled) + `
path = ` + tomlQuote(sessionPath) + `
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return cfgPath
}

func boolLiteral(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func tomlQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `\`, `\\`) + `"`
}

// TestRunVersion verifies behavior for the covered scenario.
func TestRunVersion(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"--version"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(version) error = %v", err)
	}
	if !strings.Contains(out.String(), "kalkyl") {
		t.Fatalf("expected version output, got %q", out.String())
	}
}

// TestRunPathsCommand verifies behavior for the covered scenario.
func TestRunPathsCommand(t *testing.T) {
	var out strings.Builder
	err := run(context.Background(), []string{"paths"}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(paths) error = %v", err)
	}
	for _, field := range []string{"config:", "data_dir:", "session:", "log_dir:"} {
		if !strings.Contains(out.String(), field) {
			t.Fatalf("paths output missing %q: %q", field, out.String())
		}
	}
}

// TestRunUnknownCommand verifies behavior for the covered scenario.
func TestRunUnknownCommandFailsOnMissingFile(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp, false)
	err := run(context.Background(), []string{"--config", cfgPath, filepath.Join(tmp, "missing.xlsx")}, io.Discard, io.Discard)
	if err == nil {
		t.Fatal("expected error for a missing workbook file")
	}
}

// TestRunStartsProgram verifies behavior for the covered scenario.
func TestRunStartsProgram(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp, true)
	filePath := writeTestWorkbook(t, tmp)
	err := run(context.Background(), []string{"--config", cfgPath, filePath}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestRunEditorRestoresSessionPosition verifies behavior for the covered scenario.
func TestRunEditorRestoresSessionPosition(t *testing.T) {
	origFactory := programFactory
	t.Cleanup(func() { programFactory = origFactory })
	programFactory = func(_ tea.Model) program { return fakeProgram{} }

	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp, true)
	filePath := writeTestWorkbook(t, tmp)

	store, err := session.Open(filepath.Join(tmp, "session.db"))
	if err != nil {
		t.Fatalf("session.Open() error = %v", err)
	}
	if err := store.Touch(context.Background(), filePath, 0, 2, 2); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := run(context.Background(), []string{"--config", cfgPath, filePath}, io.Discard, io.Discard); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}

// TestRunExportCSV verifies behavior for the covered scenario.
func TestRunExportCSV(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp, false)
	filePath := writeTestWorkbook(t, tmp)

	var out strings.Builder
	err := run(context.Background(), []string{"--config", cfgPath, "export", "--sheet", "Budget", filePath}, &out, io.Discard)
	if err != nil {
		t.Fatalf("run(export) error = %v", err)
	}
	if !strings.Contains(out.String(), "rent,9500") {
		t.Fatalf("expected csv output, got %q", out.String())
	}
}

// TestRunExportJSONToFile verifies behavior for the covered scenario.
func TestRunExportJSONToFile(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp, false)
	filePath := writeTestWorkbook(t, tmp)
	outPath := filepath.Join(tmp, "out", "budget.json")

	err := run(context.Background(), []string{"--config", cfgPath, "export", "--format", "json", "--out", outPath, filePath}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("run(export json) error = %v", err)
	}
	content, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), `"sheet": "Budget"`) {
		t.Fatalf("expected json envelope, got %q", string(content))
	}
}

// TestRunExportUnknownSheet verifies behavior for the covered scenario.
func TestRunExportUnknownSheet(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp, false)
	filePath := writeTestWorkbook(t, tmp)

	err := run(context.Background(), []string{"--config", cfgPath, "export", "--sheet", "Nope", filePath}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "no such sheet") {
		t.Fatalf("expected unknown sheet error, got %v", err)
	}
}

// TestRunRecentListsSessionEntries verifies behavior for the covered scenario.
func TestRunRecentListsSessionEntries(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp, true)

	store, err := session.Open(filepath.Join(tmp, "session.db"))
	if err != nil {
		t.Fatalf("session.Open() error = %v", err)
	}
	if err := store.Touch(context.Background(), "/tmp/a.xlsx", 0, 1, 1); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var out strings.Builder
	if err := run(context.Background(), []string{"--config", cfgPath, "recent"}, &out, io.Discard); err != nil {
		t.Fatalf("run(recent) error = %v", err)
	}
	if !strings.Contains(out.String(), "/tmp/a.xlsx") {
		t.Fatalf("expected recent listing, got %q", out.String())
	}
}

// TestRunRecentDisabledSession verifies behavior for the covered scenario.
func TestRunRecentDisabledSession(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := writeTestConfig(t, tmp, false)

	err := run(context.Background(), []string{"--config", cfgPath, "recent"}, io.Discard, io.Discard)
	if err == nil || !strings.Contains(err.Error(), "disabled") {
		t.Fatalf("expected disabled session error, got %v", err)
	}
}
