package models

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

var (
	ErrColumnNotFound   = errors.New("column not found")
	ErrColumnNotNumeric = errors.New("column is not numeric")
)

// Column is a named vector of either numbers or text.
type Column struct {
	Name    string
	Numeric bool
	Floats  []float64
	Texts   []string
}

func NewNumericColumn(name string, values []float64) Column {
	return Column{Name: name, Numeric: true, Floats: append([]float64(nil), values...)}
}

func NewTextColumn(name string, values []string) Column {
	return Column{Name: name, Texts: append([]string(nil), values...)}
}

func (c Column) Len() int {
	if c.Numeric {
		return len(c.Floats)
	}
	return len(c.Texts)
}

// Text formats cell i the way it is written to CSV.
func (c Column) Text(i int) string {
	if c.Numeric {
		return strconv.FormatFloat(c.Floats[i], 'f', -1, 64)
	}
	return c.Texts[i]
}

func (c Column) clone() Column {
	if c.Numeric {
		return NewNumericColumn(c.Name, c.Floats)
	}
	return NewTextColumn(c.Name, c.Texts)
}

func (c Column) take(rows []int) Column {
	out := Column{Name: c.Name, Numeric: c.Numeric}
	for _, r := range rows {
		if c.Numeric {
			out.Floats = append(out.Floats, c.Floats[r])
		} else {
			out.Texts = append(out.Texts, c.Texts[r])
		}
	}
	return out
}

// Table is a labeled 2-D table: a named row index plus ordered columns.
// Every operation returns a new Table and leaves the receiver untouched.
type Table struct {
	indexName string
	index     []string
	columns   []Column
}

// NewTable checks that every column matches the index length and that names are unique.
func NewTable(indexName string, index []string, columns ...Column) (*Table, error) {
	seen := make(map[string]bool, len(columns))
	t := &Table{indexName: indexName, index: append([]string(nil), index...)}
	for _, c := range columns {
		if c.Len() != len(index) {
			return nil, fmt.Errorf("column %q has %d rows, index has %d", c.Name, c.Len(), len(index))
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = true
		t.columns = append(t.columns, c.clone())
	}
	return t, nil
}

func (t *Table) IndexName() string { return t.indexName }

func (t *Table) Len() int { return len(t.index) }

func (t *Table) Index() []string {
	return append([]string(nil), t.index...)
}

// ColumnNames returns the column names in order, excluding the index.
func (t *Table) ColumnNames() []string {
	names := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		names = append(names, c.Name)
	}
	return names
}

// NumericColumns returns the names of numeric columns in order.
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.columns {
		if c.Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

func (t *Table) HasColumn(name string) bool {
	return t.position(name) >= 0
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) (Column, error) {
	i := t.position(name)
	if i < 0 {
		return Column{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.columns[i].clone(), nil
}

// Floats returns the values of a numeric column.
func (t *Table) Floats(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !c.Numeric {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotNumeric, name)
	}
	return c.Floats, nil
}

// Row returns the key of row i and its cells formatted as text, in column order.
func (t *Table) Row(i int) (string, []string) {
	cells := make([]string, len(t.columns))
	for j, c := range t.columns {
		cells[j] = c.Text(i)
	}
	return t.index[i], cells
}

func (t *Table) Clone() *Table {
	out := &Table{indexName: t.indexName, index: append([]string(nil), t.index...)}
	for _, c := range t.columns {
		out.columns = append(out.columns, c.clone())
	}
	return out
}

// Drop removes the named columns. Naming a missing column is an error.
func (t *Table) Drop(names ...string) (*Table, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if !t.HasColumn(n) {
			return nil, fmt.Errorf("drop: %w: %q", ErrColumnNotFound, n)
		}
		drop[n] = true
	}

	out := &Table{indexName: t.indexName, index: append([]string(nil), t.index...)}
	for _, c := range t.columns {
		if !drop[c.Name] {
			out.columns = append(out.columns, c.clone())
		}
	}
	return out, nil
}

// SetIndex moves the named column into the row index.
func (t *Table) SetIndex(name string) (*Table, error) {
	i := t.position(name)
	if i < 0 {
		return nil, fmt.Errorf("set index: %w: %q", ErrColumnNotFound, name)
	}

	key := t.columns[i]
	out := &Table{indexName: name, index: make([]string, t.Len())}
	for r := range out.index {
		out.index[r] = key.Text(r)
	}
	for j, c := range t.columns {
		if j != i {
			out.columns = append(out.columns, c.clone())
		}
	}
	return out, nil
}

// NLargest orders rows by the numeric column, largest first, and keeps the first n.
// Ties keep their input order. A table with n rows or fewer is returned whole, sorted.
func (t *Table) NLargest(n int, name string) (*Table, error) {
	values, err := t.Floats(name)
	if err != nil {
		return nil, fmt.Errorf("nlargest: %w", err)
	}

	rows := make([]int, len(values))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return values[rows[a]] > values[rows[b]]
	})
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return t.take(rows), nil
}

// Concat sets text column dst to a + sep + b for every row. dst keeps its
// position when it already exists, otherwise it is appended.
func (t *Table) Concat(dst, a, b, sep string) (*Table, error) {
	left, err := t.Column(a)
	if err != nil {
		return nil, fmt.Errorf("concat: %w", err)
	}
	right, err := t.Column(b)
	if err != nil {
		return nil, fmt.Errorf("concat: %w", err)
	}

	joined := make([]string, t.Len())
	for r := range joined {
		joined[r] = left.Text(r) + sep + right.Text(r)
	}

	out := t.Clone()
	col := NewTextColumn(dst, joined)
	if i := out.position(dst); i >= 0 {
		out.columns[i] = col
	} else {
		out.columns = append(out.columns, col)
	}
	return out, nil
}

// WriteCSV writes a header row followed by one record per row, index first.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	header := append([]string{t.indexName}, t.ColumnNames()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for r := 0; r < t.Len(); r++ {
		key, cells := t.Row(r)
		if err := cw.Write(append([]string{key}, cells...)); err != nil {
			return fmt.Errorf("write csv row %d: %w", r, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func (t *Table) position(name string) int {
	for i, c := range t.columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func (t *Table) take(rows []int) *Table {
	out := &Table{indexName: t.indexName, index: make([]string, 0, len(rows))}
	for _, r := range rows {
		out.index = append(out.index, t.index[r])
	}
	for _, c := range t.columns {
		out.columns = append(out.columns, c.take(rows))
	}
	return out
}
