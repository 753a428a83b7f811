package keepstyle

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// Error classes. Typed errors below match these with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrStyleUnavailable = errors.New("style unavailable")
	ErrIO               = errors.New("i/o failure")
)

// NotFoundError reports a missing anchor, section, sheet or file.
type NotFoundError struct {
	Kind string // "section", "sheet", "file", "header", ...
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %q", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError lists every missing or invalid item of one subject.
type ValidationError struct {
	Subject string
	Reason  string
	Items   []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Subject)
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if len(e.Items) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Items, ", "))
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// StyleUnavailableError names a style missing from a style catalog.
// It is recoverable: callers fall back to a plain rendition.
type StyleUnavailableError struct {
	Style string
}

func (e *StyleUnavailableError) Error() string {
	return fmt.Sprintf("style %q is not defined in the document", e.Style)
}

func (e *StyleUnavailableError) Unwrap() error { return ErrStyleUnavailable }

// IOError wraps a failed read or write of a workbook or document.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	if errors.Is(e.Err, fs.ErrPermission) {
		msg += " (permission denied: is the file open in another application?)"
	}
	return msg
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// ioErr converts a file-system error into NotFoundError or IOError.
func ioErr(op, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return &NotFoundError{Kind: "file", Name: path}
	}
	return &IOError{Op: op, Path: path, Err: err}
}
