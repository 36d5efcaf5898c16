// Package csvio is the CSV storage layer the evaluator reads tables
// from and writes DML/DDL results back to.
package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cqsql/cq/table"
	"github.com/cqsql/cq/value"
)

// Options carries the CSV framing (delimiter, quote, has-header) used
// both to read a file and to shape a result written back out. Reading
// honours Delimiter and HasHeader only: Load always parses with '"' as
// the quote character and records Quote on the table for Save.
type Options struct {
	Delimiter rune
	Quote     rune
	HasHeader bool
}

// DefaultOptions is comma delimiter, double-quote, header present.
func DefaultOptions() Options {
	return Options{Delimiter: ',', Quote: '"', HasHeader: true}
}

// Load reads path into a *table.Table, inferring each cell's value.Kind
// through value.ParseValue (UTF-8, \n or \r\n terminators,
// doubled-quote escaping).
func Load(path string, opts Options) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csvio: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.Comma = opts.Delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = false

	var header []string
	var rows [][]string
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csvio: read %s: %w", path, err)
		}
		if first && opts.HasHeader {
			header = record
			first = false
			continue
		}
		first = false
		rows = append(rows, record)
	}

	if header == nil && len(rows) > 0 {
		header = make([]string, len(rows[0]))
		for i := range header {
			header[i] = fmt.Sprintf("col%d", i+1)
		}
	}

	t := table.New(path, header)
	t.Delimiter = opts.Delimiter
	t.Quote = opts.Quote
	t.HasHeader = opts.HasHeader

	for _, record := range rows {
		row := make(table.Row, len(t.Columns))
		for i := range row {
			if i < len(record) {
				row[i] = value.ParseValue(record[i])
			} else {
				row[i] = value.NewNull()
			}
		}
		t.Rows = append(t.Rows, row)
	}

	for i := range t.Columns {
		t.Columns[i].InferredKind = inferColumnKind(t, i)
	}
	return t, nil
}

// inferColumnKind reports the first non-null cell's kind in a column,
// an informational hint only; cells may still be of any kind.
func inferColumnKind(t *table.Table, col int) value.Kind {
	for _, row := range t.Rows {
		if !row[col].IsNull() {
			return row[col].Kind
		}
	}
	return value.Null
}

// Save writes t back to path using its own framing options, re-quoting
// fields: any field containing the delimiter, the quote character, a
// newline, or a carriage return is quoted, with embedded quotes
// doubled.
func Save(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvio: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	delim := t.Delimiter
	if delim == 0 {
		delim = ','
	}
	quote := t.Quote
	if quote == 0 {
		quote = '"'
	}

	writeRecord := func(fields []string) {
		for i, field := range fields {
			if i > 0 {
				w.WriteRune(delim)
			}
			w.WriteString(quoteField(field, delim, quote))
		}
		w.WriteString("\n")
	}

	if t.HasHeader {
		writeRecord(t.ColumnNames())
	}
	for _, row := range t.Rows {
		fields := make([]string, len(row))
		for i, v := range row {
			fields[i] = v.String()
		}
		writeRecord(fields)
	}
	return w.Flush()
}

func quoteField(field string, delim, quote rune) string {
	needsQuote := strings.ContainsRune(field, delim) ||
		strings.ContainsRune(field, quote) ||
		strings.ContainsAny(field, "\n\r")
	if !needsQuote {
		return field
	}
	q := string(quote)
	escaped := strings.ReplaceAll(field, q, q+q)
	return q + escaped + q
}
