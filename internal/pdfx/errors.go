package pdfx

import (
	"errors"
	"fmt"
)

// Password handling follows a retry-once protocol: the first open of an
// encrypted document without a password fails with ErrPasswordRequired, a
// retry with a wrong password fails with ErrIncorrectPassword, and an aborted
// prompt is reported as ErrPasswordCancelled. The latter two are terminal for
// the upload attempt.
var (
	ErrPasswordRequired  = errors.New("pdfx: password required")
	ErrIncorrectPassword = errors.New("pdfx: incorrect password")
	ErrPasswordCancelled = errors.New("pdfx: password prompt cancelled")
)

// LoadError reports a malformed or unsupported document, carrying the
// underlying cause for display.
type LoadError struct {
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("pdfx: document load failed: %v", e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }
