package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	charmLog "github.com/charmbracelet/log"
	"github.com/hylla/kalkyl/internal/codec"
	"github.com/hylla/kalkyl/internal/config"
	"github.com/hylla/kalkyl/internal/platform"
	"github.com/hylla/kalkyl/internal/session"
	"github.com/hylla/kalkyl/internal/tui"
	"github.com/hylla/kalkyl/internal/workbook"
)

// version stores a package-level helper value.
var version = "dev"

// program represents program data used by this package.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("kalkyl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		configPath string
		appName    string
		devMode    bool
		showVer    bool
	)
	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("KALKYL_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("KALKYL_APP_NAME")); envApp != "" {
		appName = envApp
	} else {
		appName = "kalkyl"
	}
	fs.StringVar(&configPath, "config", "", "path to config TOML")
	fs.StringVar(&appName, "app", appName, "application name for config/data path resolution")
	fs.BoolVar(&devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	fs.BoolVar(&showVer, "version", false, "show version")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showVer {
		_, _ = fmt.Fprintf(stdout, "kalkyl %s\n", version)
		return nil
	}

	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: appName,
		DevMode: devMode,
	})
	if err != nil {
		return err
	}

	command, rest := splitCommand(fs.Args())
	if command == "paths" {
		_, _ = fmt.Fprintf(stdout, "app: %s\n", appName)
		_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", devMode)
		_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
		_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
		_, _ = fmt.Fprintf(stdout, "session: %s\n", paths.SessionPath)
		_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
		return nil
	}

	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("KALKYL_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	cfg, err := config.Load(configPath, config.Default(paths.SessionPath))
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}

	logger, err := newRuntimeLogger(stderr, appName, devMode, paths.LogDir, cfg.Logging, time.Now)
	if err != nil {
		return fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "" {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the grid is active.
		logger.SetConsoleEnabled(false)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}()

	logger.Info("startup configuration resolved", "app", appName, "dev_mode", devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "session_path", cfg.Session.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	switch command {
	case "":
		logger.Info("command flow start", "command", "tui")
		if err := runEditor(ctx, rest, cfg, logger); err != nil {
			logger.Error("command flow failed", "command", "tui", "err", err)
			return err
		}
		logger.Info("command flow complete", "command", "tui")
		return nil
	case "export":
		logger.Info("command flow start", "command", "export")
		if err := runExport(rest, stdout); err != nil {
			logger.Error("command flow failed", "command", "export", "err", err)
			return fmt.Errorf("run export command: %w", err)
		}
		logger.Info("command flow complete", "command", "export")
		return nil
	case "recent":
		logger.Info("command flow start", "command", "recent")
		if err := runRecent(ctx, rest, cfg, stdout); err != nil {
			logger.Error("command flow failed", "command", "recent", "err", err)
			return fmt.Errorf("run recent command: %w", err)
		}
		logger.Info("command flow complete", "command", "recent")
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runEditor opens one workbook file and drives the TUI program loop.
func runEditor(ctx context.Context, args []string, cfg config.Config, logger *runtimeLogger) error {
	if len(args) == 0 {
		return errors.New("usage: kalkyl [flags] <file.xlsx>")
	}
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	filePath := args[0]
	if absPath, err := filepath.Abs(filePath); err == nil {
		filePath = absPath
	}

	lazy := false
	if info, err := os.Stat(filePath); err == nil {
		threshold := cfg.Editor.LazyLoadThreshold
		lazy = threshold > 0 && info.Size() >= threshold
		logger.Debug("workbook file inspected", "path", filePath, "size", info.Size(), "lazy", lazy)
	}

	src, err := codec.OpenXLSX(filePath)
	if err != nil {
		return fmt.Errorf("open workbook %q: %w", filePath, err)
	}
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			logger.Warn("workbook close failed", "path", filePath, "err", closeErr)
		}
	}()

	wb, err := workbook.Open(filePath, src, codec.XLSXWriter{}, lazy)
	if err != nil {
		return fmt.Errorf("load workbook %q: %w", filePath, err)
	}
	logger.Info("workbook loaded", "path", filePath, "sheets", wb.SheetCount(), "lazy", lazy)

	opts := []tui.Option{
		tui.WithInfoPanelHeight(cfg.Editor.InfoPanelHeight),
		tui.WithConfirmQuitOnUnsaved(cfg.Editor.ConfirmQuitOnUnsaved),
	}

	var store *session.Store
	if cfg.Session.Enabled {
		store, err = session.Open(cfg.Session.Path)
		if err != nil {
			// A broken session store should never block editing.
			logger.Warn("session store unavailable", "path", cfg.Session.Path, "err", err)
			store = nil
		}
	}
	if store != nil {
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				logger.Warn("session store close failed", "err", closeErr)
			}
		}()
		if entry, lookupErr := store.Lookup(ctx, filePath); lookupErr == nil {
			logger.Debug("session position restored", "sheet", entry.Sheet, "row", entry.Row, "col", entry.Col)
			opts = append(opts, tui.WithStartPosition(entry.Sheet, entry.Row, entry.Col))
		} else if !errors.Is(lookupErr, session.ErrNotFound) {
			logger.Warn("session lookup failed", "path", filePath, "err", lookupErr)
		}
		opts = append(opts, tui.WithSessionRecorder(func(sheet, row, col int) {
			if touchErr := store.Touch(ctx, filePath, sheet, row, col); touchErr != nil {
				logger.Warn("session record failed", "path", filePath, "err", touchErr)
			}
		}))
	}

	logger.Info("starting tui program loop")
	if _, err := programFactory(tui.NewModel(wb, opts...)).Run(); err != nil {
		return fmt.Errorf("run tui program: %w", err)
	}
	return nil
}

// runExport renders one sheet of a workbook file as CSV or JSON.
func runExport(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("kalkyl export", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		sheetName string
		format    string
		outPath   string
	)
	fs.StringVar(&sheetName, "sheet", "", "sheet name (defaults to the first sheet)")
	fs.StringVar(&format, "format", "csv", "output format: csv or json")
	fs.StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse export flags: %w", err)
	}
	if len(fs.Args()) != 1 {
		return errors.New("usage: kalkyl export [-sheet name] [-format csv|json] [-out path] <file.xlsx>")
	}
	filePath := fs.Args()[0]

	src, err := codec.OpenXLSX(filePath)
	if err != nil {
		return fmt.Errorf("open workbook %q: %w", filePath, err)
	}
	defer func() {
		_ = src.Close()
	}()

	wb, err := workbook.Open(filePath, src, codec.XLSXWriter{}, false)
	if err != nil {
		return fmt.Errorf("load workbook %q: %w", filePath, err)
	}

	sheet := wb.CurrentSheet()
	if sheetName != "" {
		found := false
		for i, name := range wb.SheetNames() {
			if name == sheetName {
				sheet, found = wb.Sheet(i)
				break
			}
		}
		if !found {
			return fmt.Errorf("no such sheet: %s", sheetName)
		}
	}

	var out strings.Builder
	switch format {
	case "csv":
		err = codec.ExportCSV(&out, sheet)
	case "json":
		err = codec.ExportJSON(&out, sheet)
	default:
		return fmt.Errorf("unknown export format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("encode sheet %q: %w", sheet.Name, err)
	}

	if outPath == "-" {
		if _, err := io.WriteString(stdout, out.String()); err != nil {
			return fmt.Errorf("write export to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, []byte(out.String()), 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runRecent lists the most recently opened workbook files.
func runRecent(ctx context.Context, args []string, cfg config.Config, stdout io.Writer) error {
	fs := flag.NewFlagSet("kalkyl recent", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var limit int
	fs.IntVar(&limit, "n", 10, "number of entries to list")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse recent flags: %w", err)
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected recent arguments: %v", fs.Args())
	}
	if !cfg.Session.Enabled {
		return errors.New("session tracking is disabled in config")
	}

	store, err := session.Open(cfg.Session.Path)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() {
		_ = store.Close()
	}()

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("list recent files: %w", err)
	}
	for _, entry := range entries {
		_, _ = fmt.Fprintf(stdout, "%s\t%s\tsheet %d (%d,%d)\n",
			entry.OpenedAt.Local().Format("2006-01-02 15:04"), entry.Path, entry.Sheet+1, entry.Row, entry.Col)
	}
	return nil
}

// splitCommand separates a leading subcommand name from its arguments.
// Anything else is treated as a workbook file path for the editor flow.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "", nil
	}
	switch args[0] {
	case "paths", "export", "recent":
		return args[0], args[1:]
	}
	return "", args
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// runtimeLogger fans log events to a styled console sink and an optional dev-file sink.
type runtimeLogger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	devLog         string
}

// newRuntimeLogger configures runtime log sinks from CLI/config state.
func newRuntimeLogger(stderr io.Writer, appName string, devMode bool, defaultLogDir string, cfg config.LoggingConfig, now func() time.Time) (*runtimeLogger, error) {
	level := charmLog.InfoLevel
	if trimmed := strings.TrimSpace(cfg.Level); trimmed != "" {
		parsed, err := charmLog.ParseLevel(trimmed)
		if err != nil {
			return nil, fmt.Errorf("parse logging level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	if now == nil {
		now = time.Now
	}
	if stderr == nil {
		stderr = io.Discard
	}

	consoleLogger := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.TextFormatter,
	})

	logger := &runtimeLogger{
		sinks:          []*charmLog.Logger{consoleLogger},
		consoleSink:    consoleLogger,
		consoleEnabled: true,
	}
	if !devMode || !cfg.DevFile {
		return logger, nil
	}

	logDir := strings.TrimSpace(cfg.DevDir)
	if logDir == "" {
		logDir = defaultLogDir
	}
	devLogPath := filepath.Join(filepath.Clean(logDir), fmt.Sprintf("%s-%s.log", appName, now().UTC().Format("20060102")))
	if err := os.MkdirAll(filepath.Dir(devLogPath), 0o755); err != nil {
		return nil, fmt.Errorf("create dev log dir: %w", err)
	}
	logFile, err := os.OpenFile(devLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dev log file: %w", err)
	}

	// Keep file output parseable and unstyled while preserving styled console logs.
	fileLogger := charmLog.NewWithOptions(logFile, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	logger.sinks = append(logger.sinks, fileLogger)
	logger.closeFile = logFile.Close
	logger.devLog = devLogPath
	return logger, nil
}

// DevLogPath returns the active dev log file path.
func (l *runtimeLogger) DevLogPath() string {
	if l == nil {
		return ""
	}
	return l.devLog
}

// Close closes the optional dev-file sink.
func (l *runtimeLogger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles whether the console sink receives runtime events.
func (l *runtimeLogger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

// shouldLogToSink reports whether one sink should receive runtime output.
func (l *runtimeLogger) shouldLogToSink(sink *charmLog.Logger) bool {
	if l == nil {
		return false
	}
	if sink == nil {
		return false
	}
	if sink == l.consoleSink && !l.consoleEnabled {
		return false
	}
	return true
}

// Debug logs a debug event to all configured sinks.
func (l *runtimeLogger) Debug(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Debug(msg, keyvals...)
	}
}

// Info logs an informational event to all configured sinks.
func (l *runtimeLogger) Info(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Info(msg, keyvals...)
	}
}

// Warn logs a warning event to all configured sinks.
func (l *runtimeLogger) Warn(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Warn(msg, keyvals...)
	}
}

// Error logs an error event to all configured sinks.
func (l *runtimeLogger) Error(msg string, keyvals ...any) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if !l.shouldLogToSink(sink) {
			continue
		}
		sink.Error(msg, keyvals...)
	}
}
