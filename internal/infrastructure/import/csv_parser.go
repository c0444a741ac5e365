package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVParser reads bank-exported CSV files row by row. The delimiter is
// sniffed from the header line unless set explicitly: Brazilian bank exports
// use either comma or semicolon depending on the institution.
type CSVParser struct {
	delimiter  rune
	lazyQuotes bool
	trimSpace  bool

	headers     []string
	columnIndex map[string]int

	reader   *csv.Reader
	line     int
	dataRows int
}

// ParserOption configures a CSVParser.
type ParserOption func(*CSVParser)

// WithDelimiter forces the field delimiter instead of sniffing it.
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) { p.delimiter = d }
}

// WithLazyQuotes controls tolerance for stray quotes inside fields.
func WithLazyQuotes(lazy bool) ParserOption {
	return func(p *CSVParser) { p.lazyQuotes = lazy }
}

// WithTrimSpace controls whitespace trimming of headers and values.
func WithTrimSpace(trim bool) ParserOption {
	return func(p *CSVParser) { p.trimSpace = trim }
}

// NewCSVParser wraps a reader, strips a UTF-8 BOM if present, rejects
// non-UTF-8 content and picks the delimiter.
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{
		lazyQuotes:  true,
		trimSpace:   true,
		columnIndex: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	input := bufio.NewReader(r)

	head, err := input.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if bytes.HasPrefix(head, utf8BOM) {
		_, _ = input.Discard(len(utf8BOM))
	}

	sample, err := peekSample(input)
	if err != nil {
		return nil, err
	}
	if len(sample) == 0 {
		return nil, ErrEmptyFile
	}
	if !utf8.Valid(sample) {
		return nil, ErrInvalidEncoding
	}

	if p.delimiter == 0 {
		p.delimiter = sniffDelimiter(sample)
	}

	p.reader = csv.NewReader(input)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = p.lazyQuotes
	p.reader.TrimLeadingSpace = p.trimSpace
	p.reader.FieldsPerRecord = -1

	return p, nil
}

// ParseFromBytes builds a parser over an in-memory file.
func ParseFromBytes(data []byte, opts ...ParserOption) (*CSVParser, error) {
	return NewCSVParser(bytes.NewReader(data), opts...)
}

// peekSample returns up to 4KB of upcoming input without consuming it.
func peekSample(r *bufio.Reader) ([]byte, error) {
	sample, err := r.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	return sample, nil
}

// sniffDelimiter picks the delimiter by counting candidates in the header
// line. Semicolon wins only when it outnumbers commas, so quoted commas in
// comma-delimited headers do not flip the detection.
func sniffDelimiter(sample []byte) rune {
	if idx := bytes.IndexByte(sample, '\n'); idx >= 0 {
		sample = sample[:idx]
	}
	if bytes.Count(sample, []byte{';'}) > bytes.Count(sample, []byte{','}) {
		return ';'
	}
	return ','
}

// ParseHeader consumes the first line and records the column layout.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if len(record) == 0 {
		return ErrMissingHeader
	}

	p.headers = make([]string, len(record))
	for i, name := range record {
		if p.trimSpace {
			name = strings.TrimSpace(name)
		}
		p.headers[i] = name
		p.columnIndex[name] = i
	}
	p.line = 1

	return nil
}

// Headers returns the column names in file order.
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader reports whether the file declared the named column.
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.columnIndex[name]
	return ok
}

// ValidateHeaders returns the required columns the file is missing.
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, name := range required {
		if !p.HasHeader(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Delimiter returns the delimiter in effect after sniffing.
func (p *CSVParser) Delimiter() rune {
	return p.delimiter
}

// Row is one data line keyed by header name. LineNumber is the 1-indexed
// position in the file, header included, so it matches what the user sees
// in a spreadsheet.
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

// Get returns the value of the named column, or "" when absent.
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the named value, or defaultVal when absent or empty.
func (r *Row) GetOrDefault(header, defaultVal string) string {
	if v, ok := r.Data[header]; ok && v != "" {
		return v
	}
	return defaultVal
}

// IsEmpty reports whether every column of the row is blank.
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow returns the next data row, or io.EOF at the end of the file.
// Rows shorter than the header are padded with empty strings; longer rows
// keep their extra fields in RawFields only.
func (p *CSVParser) ReadRow() (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		p.line++
		return nil, fmt.Errorf("error reading row %d: %w", p.line, err)
	}

	p.line++
	p.dataRows++

	row := &Row{
		LineNumber: p.line,
		Data:       make(map[string]string, len(p.headers)),
		RawFields:  record,
	}
	for i, name := range p.headers {
		var value string
		if i < len(record) {
			value = record[i]
			if p.trimSpace {
				value = strings.TrimSpace(value)
			}
		}
		row.Data[name] = value
	}

	return row, nil
}

// ReadAllRows drains the file, dropping rows that are entirely blank.
func (p *CSVParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
}

// CurrentRow returns the line number of the row read most recently.
func (p *CSVParser) CurrentRow() int {
	return p.line
}

// TotalRows returns how many data rows have been read so far.
func (p *CSVParser) TotalRows() int {
	return p.dataRows
}
