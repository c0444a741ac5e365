package csvimport

import (
	"context"
	"io"
)

// ParseResult holds the outcome of parsing and validating a CSV file.
// Rows that failed validation are counted and reported but excluded from
// ValidRows.
type ParseResult struct {
	TotalRows int
	ValidRows []*Row
	Errors    *ErrorCollection
}

// ImportProcessor parses and validates a CSV file in one pass. File-level
// problems (encoding, size, missing headers) abort with an error; row-level
// problems accumulate in the result's ErrorCollection.
type ImportProcessor struct {
	maxFileSize int64
	maxRows     int
	maxErrors   int
}

// ProcessorOption is a functional option for ImportProcessor
type ProcessorOption func(*ImportProcessor)

// WithMaxFileSize sets the maximum file size in bytes
func WithMaxFileSize(size int64) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxFileSize = size
	}
}

// WithMaxRows sets the maximum number of data rows
func WithMaxRows(rows int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxRows = rows
	}
}

// WithMaxErrors sets the maximum number of row errors to collect
func WithMaxErrors(errors int) ProcessorOption {
	return func(p *ImportProcessor) {
		p.maxErrors = errors
	}
}

// NewImportProcessor creates a new import processor
func NewImportProcessor(opts ...ProcessorOption) *ImportProcessor {
	p := &ImportProcessor{
		maxFileSize: 10 * 1024 * 1024, // 10MB default
		maxRows:     50000,            // 50K rows default
		maxErrors:   100,              // 100 errors default
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Process parses the file, checks required headers and validates every row
// against the rules. It returns ErrFileTooLarge, ErrTooManyRows or a parser
// error for file-level failures.
func (p *ImportProcessor) Process(ctx context.Context, reader io.Reader, rules []FieldRule, requiredHeaders []string) (*ParseResult, error) {
	data, err := io.ReadAll(io.LimitReader(reader, p.maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > p.maxFileSize {
		return nil, ErrFileTooLarge
	}

	parser, err := ParseFromBytes(data)
	if err != nil {
		return nil, err
	}

	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	if missing := parser.ValidateHeaders(requiredHeaders); len(missing) > 0 {
		result := &ParseResult{Errors: NewErrorCollection(p.maxErrors)}
		for _, column := range missing {
			result.Errors.Add(NewRowError(1, column, ErrCodeImportMissingHeader,
				"required column is missing"))
		}
		return result, ErrMissingHeader
	}

	validator := NewFieldValidator(rules, p.maxErrors)
	result := &ParseResult{
		ValidRows: make([]*Row, 0),
		Errors:    validator.Errors(),
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := parser.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors.Add(NewRowError(parser.CurrentRow(), "", ErrCodeImportCSVParsing, err.Error()))
			result.TotalRows++
			continue
		}

		if row.IsEmpty() {
			continue
		}

		result.TotalRows++
		if result.TotalRows > p.maxRows {
			return nil, ErrTooManyRows
		}

		if validator.ValidateRow(row) {
			result.ValidRows = append(result.ValidRows, row)
		}
	}

	if result.TotalRows == 0 {
		return nil, ErrNoDataRows
	}

	return result, nil
}
