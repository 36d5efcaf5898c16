// Package table implements the row/column/table model that every CSV
// source and query result is shaped as.
package table

import "github.com/cqsql/cq/value"

// Column is a named cell slot with an informational inferred type;
// cells within that column may still carry any value.Kind.
type Column struct {
	Name         string
	InferredKind value.Kind
}

// Row is a fixed-length vector of cells, one per column of its owning
// table at the time of construction.
type Row []value.Value

// Table is an ordered schema plus an ordered row vector, plus the CSV
// framing options it was loaded (or will be saved) with.
type Table struct {
	Origin    string // file path, or a synthesized name like "query_result"
	Columns   []Column
	Rows      []Row
	Delimiter rune
	Quote     rune
	HasHeader bool
}

// New builds an empty table with the given column names, inferring no
// type (value.Null) for any of them.
func New(origin string, columnNames []string) *Table {
	cols := make([]Column, len(columnNames))
	for i, n := range columnNames {
		cols[i] = Column{Name: n, InferredKind: value.Null}
	}
	return &Table{Origin: origin, Columns: cols, Delimiter: ',', Quote: '"', HasHeader: true}
}

// ColumnIndex returns the index of a column by case-insensitive name,
// or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if equalFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// ColumnNames returns the table's column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// AddColumn appends a new column, extending every existing row with a
// null cell.
func (t *Table) AddColumn(name string) {
	t.Columns = append(t.Columns, Column{Name: name, InferredKind: value.Null})
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], value.NewNull())
	}
}

// DropColumn removes a column by index, shrinking every row in step.
func (t *Table) DropColumn(idx int) {
	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:idx], row[idx+1:]...)
	}
}

// RenameColumn renames a column in place.
func (t *Table) RenameColumn(idx int, newName string) {
	t.Columns[idx].Name = newName
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
