package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ValueKind is the parsed type of a single cell.
type ValueKind int

// Cell kinds.
const (
	KindNull ValueKind = iota
	KindNumber
	KindText
	KindTime
)

// Value is a single typed table cell.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
	Time time.Time
}

// Null returns an empty cell.
func Null() Value { return Value{Kind: KindNull} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Text returns a text cell.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Timestamp returns a datetime cell.
func Timestamp(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// IsNull returns true if the cell is empty.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders the cell for display and duplicate detection.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return v.Str
	case KindTime:
		return v.Time.Format(time.RFC3339)
	default:
		return ""
	}
}

// nullTokens are raw strings treated as missing values.
var nullTokens = map[string]struct{}{
	"":        {},
	"na":      {},
	"n/a":     {},
	"#n/a":    {},
	"nan":     {},
	"-nan":    {},
	"null":    {},
	"none":    {},
	"<na>":    {},
	"-":       {},
	"#div/0!": {},
}

// dateLayouts are tried in order when a cell is not numeric.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01-02-06",
	"1/2/06",
	"1/2/06 15:04",
	"02-Jan-2006",
	"Jan 2, 2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
}

// ParseValue converts a raw string cell into a typed Value.
// Numbers win over dates so a bare year stays numeric.
func ParseValue(raw string) Value {
	s := strings.TrimSpace(raw)
	if _, ok := nullTokens[strings.ToLower(s)]; ok {
		return Null()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return Number(f)
	}
	if t, ok := ParseTime(s); ok {
		return Timestamp(t)
	}
	return Text(s)
}

// ParseTime attempts the known date layouts against s.
func ParseTime(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ColumnKind is the inferred type of a whole column.
type ColumnKind string

// Column kinds.
const (
	ColumnEmpty    ColumnKind = "empty"
	ColumnNumeric  ColumnKind = "numeric"
	ColumnText     ColumnKind = "text"
	ColumnDatetime ColumnKind = "datetime"
	ColumnMixed    ColumnKind = "mixed"
)

// Table is an ordered grid of typed cells with named columns.
// Every row has exactly len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]Value
}

// NewTable creates a table, padding short rows with nulls and
// truncating rows longer than the header.
func NewTable(name string, columns []string, rows [][]Value) *Table {
	width := len(columns)
	normalised := make([][]Value, 0, len(rows))
	for _, row := range rows {
		r := make([]Value, width)
		copy(r, row)
		normalised = append(normalised, r)
	}
	return &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    normalised,
	}
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// IsEmpty returns true if the table has no rows or no columns.
func (t *Table) IsEmpty() bool { return len(t.Rows) == 0 || len(t.Columns) == 0 }

// Column returns the cells of column i in row order.
func (t *Table) Column(i int) []Value {
	col := make([]Value, len(t.Rows))
	for r, row := range t.Rows {
		col[r] = row[i]
	}
	return col
}

// ColumnKind infers the type of column i from its non-null cells.
func (t *Table) ColumnKind(i int) ColumnKind {
	var numbers, texts, times int
	for _, row := range t.Rows {
		switch row[i].Kind {
		case KindNumber:
			numbers++
		case KindText:
			texts++
		case KindTime:
			times++
		}
	}
	switch {
	case numbers == 0 && texts == 0 && times == 0:
		return ColumnEmpty
	case texts == 0 && times == 0:
		return ColumnNumeric
	case numbers == 0 && texts == 0:
		return ColumnDatetime
	case numbers == 0 && times == 0:
		return ColumnText
	default:
		return ColumnMixed
	}
}
