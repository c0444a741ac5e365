package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes attached to RowError values. They end up verbatim in API
// responses, so renaming one is a breaking change for clients.
const (
	// File-level problems abort the whole import
	ErrCodeImportInvalidFile     = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile       = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportFileTooLarge    = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeImportInvalidEncoding = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeImportTooManyRows     = "ERR_IMPORT_TOO_MANY_ROWS"

	// Structural problems in the CSV itself
	ErrCodeImportCSVParsing    = "ERR_IMPORT_CSV_PARSING"
	ErrCodeImportMissingHeader = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportInvalidHeader = "ERR_IMPORT_INVALID_HEADER"

	// Per-row validation failures
	ErrCodeImportValidation    = "ERR_IMPORT_VALIDATION"
	ErrCodeImportRequiredField = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType   = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidLength = "ERR_IMPORT_INVALID_LENGTH"
	ErrCodeImportInvalidRange  = "ERR_IMPORT_INVALID_RANGE"

	// Rows that repeat an earlier transaction
	ErrCodeImportDuplicateInFile = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportDuplicateInDB   = "ERR_IMPORT_DUPLICATE_IN_DB"
)

// Sentinel errors for file-level failures.
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("invalid file encoding")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrTooManyRows     = errors.New("file exceeds maximum number of rows")
)

// defaultErrorLimit caps collected row errors when the caller does not.
const defaultErrorLimit = 100

// RowError pins a problem to a file row, and optionally to one column and
// the offending value.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError builds a RowError without an offending value.
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// NewRowErrorWithValue builds a RowError carrying the rejected input.
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}

// ErrorCollection accumulates row errors up to a limit. The count of seen
// errors keeps growing past the limit so callers can report how many were
// dropped.
type ErrorCollection struct {
	entries []RowError
	limit   int
	seen    int
}

// NewErrorCollection builds a collection keeping at most limit errors.
// Non-positive limits fall back to the default.
func NewErrorCollection(limit int) *ErrorCollection {
	if limit <= 0 {
		limit = defaultErrorLimit
	}
	return &ErrorCollection{limit: limit}
}

// Add records an error, storing it only while under the limit.
func (ec *ErrorCollection) Add(err RowError) {
	ec.seen++
	if len(ec.entries) < ec.limit {
		ec.entries = append(ec.entries, err)
	}
}

// AddValidationError records a failure with an explicit code and message.
func (ec *ErrorCollection) AddValidationError(row int, column, code, message string) {
	ec.Add(NewRowError(row, column, code, message))
}

// AddRequiredError records a missing mandatory field.
func (ec *ErrorCollection) AddRequiredError(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeImportRequiredField,
		fmt.Sprintf("field '%s' is required", column)))
}

// AddTypeError records a value that does not parse as the declared type.
func (ec *ErrorCollection) AddTypeError(row int, column, expectedType, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidType,
		fmt.Sprintf("expected %s", expectedType), value))
}

// AddLengthError records a value outside the allowed length bounds.
func (ec *ErrorCollection) AddLengthError(row int, column string, minLen, maxLen int) {
	msg := fmt.Sprintf("length must be between %d and %d", minLen, maxLen)
	if minLen == 0 {
		msg = fmt.Sprintf("length must be at most %d", maxLen)
	}
	ec.Add(NewRowError(row, column, ErrCodeImportInvalidLength, msg))
}

// AddRangeError records a numeric value outside the allowed range.
func (ec *ErrorCollection) AddRangeError(row int, column string, min, max float64) {
	ec.Add(NewRowError(row, column, ErrCodeImportInvalidRange,
		fmt.Sprintf("value must be between %.2f and %.2f", min, max)))
}

// Errors returns the stored errors, at most the configured limit.
func (ec *ErrorCollection) Errors() []RowError {
	return ec.entries
}

// Count returns how many errors were stored.
func (ec *ErrorCollection) Count() int {
	return len(ec.entries)
}

// TotalCount returns how many errors were seen, stored or not.
func (ec *ErrorCollection) TotalCount() int {
	return ec.seen
}

// HasErrors reports whether anything was recorded.
func (ec *ErrorCollection) HasErrors() bool {
	return ec.seen > 0
}

// IsTruncated reports whether errors were dropped after reaching the limit.
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.seen > ec.limit
}

// Clear empties the collection for reuse.
func (ec *ErrorCollection) Clear() {
	ec.entries = ec.entries[:0]
	ec.seen = 0
}

// String summarizes the collection for logs.
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d error(s) found", ec.seen)
	if ec.IsTruncated() {
		fmt.Fprintf(&sb, " (showing first %d)", ec.limit)
	}
	sb.WriteString(":\n")
	for _, err := range ec.entries {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}
