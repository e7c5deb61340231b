// Package emoji provides symbol constants for CLI output.
// These symbols create a consistent visual language across all command-line commands.
package emoji

// Symbol constants for status columns and command feedback.
const (
	// Success marks a file whose rows and columns all matched, or a
	// configured setting.
	Success = "✓"

	// Error marks a file that could not be read or parsed.
	Error = "✗"

	// Warning marks a file with diverging rows or columns.
	Warning = "!"

	// Optional marks a skipped comparison or an unset setting.
	Optional = "-"

	// Unknown represents unknown or indeterminate states.
	Unknown = "?"
)
