package apierr

import (
	"os"
	"strings"
)

const maxDiagnosticLen = 300

// Sanitize makes a diagnostic string safe to return to clients: temp
// directory paths are masked and the length is capped.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, os.TempDir(), "[tmp]")
	if len(s) > maxDiagnosticLen {
		s = s[:maxDiagnosticLen] + "..."
	}
	return s
}
