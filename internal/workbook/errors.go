package workbook

import (
	"errors"
	"fmt"
)

// ErrNothingToUndo and related errors describe recoverable editing
// failures. None of them is fatal; the UI surfaces each as a
// notification and leaves state untouched.
var (
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrNothingToRedo  = errors.New("nothing to redo")
	ErrEmptyClipboard = errors.New("clipboard is empty")
	ErrLastSheet      = errors.New("cannot delete the last sheet")
	ErrNoSheets       = errors.New("no sheets in workbook")
)

// LoadError wraps a codec failure while loading one sheet.
type LoadError struct {
	Sheet string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load sheet %q: %v", e.Sheet, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SaveError wraps a codec failure while writing the workbook.
type SaveError struct {
	Err error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save workbook: %v", e.Err)
}

func (e *SaveError) Unwrap() error { return e.Err }
