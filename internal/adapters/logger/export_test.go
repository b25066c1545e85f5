// export_test.go exports private functions for white-box testing.
package logger

// ExportErrorFormatting exports the private error formatting functions for testing.
var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)

// ErrorEntryMessage returns the message of an entry returned by CollectErrorEntries.
func ErrorEntryMessage(e errorEntry) string { return e.message }

// ErrorEntryMetadata returns the metadata of an entry returned by CollectErrorEntries.
func ErrorEntryMetadata(e errorEntry) map[string]any { return e.metadata }
