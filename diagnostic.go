package gotrace

import (
	"log"

	"github.com/shortontech/gotrace/internal/diag"
)

// SetDiagnosticOutput replaces the destination for diagnostic lines:
// the WriteFailed/AttrParseFailed/improper-nesting warnings that
// spec.md §7 says must be logged, never returned to callers. Passing
// nil restores the default (stderr).
func SetDiagnosticOutput(l *log.Logger) {
	diag.SetOutput(l)
}

func logDiagnostic(format string, args ...any) {
	diag.Printf(format, args...)
}
