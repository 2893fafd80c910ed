// Package tabular builds and cleans domain tables from raw string records.
// It is shared by the CSV, Excel and PDF extractors.
package tabular

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/reportlens/internal/core/domain"
)

// FromRecords builds a table whose header is records[0].
// Blank headers become "Unnamed: i" and repeated headers get ".1", ".2"
// suffixes so column names are unique. Returns nil if records is empty.
func FromRecords(name string, records [][]string) *domain.Table {
	if len(records) == 0 {
		return nil
	}

	header := Headers(records[0])
	rows := make([][]domain.Value, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]domain.Value, len(header))
		for i := range header {
			if i < len(rec) {
				row[i] = domain.ParseValue(rec[i])
			}
		}
		rows = append(rows, row)
	}
	return domain.NewTable(name, header, rows)
}

// Headers trims raw header cells and makes them unique.
func Headers(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%s.%d", h, n)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

// Clean returns a copy of t without all-empty rows, all-empty columns or
// repeated rows, with column names trimmed. The first of a set of
// identical rows is kept.
func Clean(t *domain.Table) *domain.Table {
	var keep []int
	for i := range t.Columns {
		if t.ColumnKind(i) != domain.ColumnEmpty {
			keep = append(keep, i)
		}
	}

	columns := make([]string, len(keep))
	for j, i := range keep {
		columns[j] = strings.TrimSpace(t.Columns[i])
	}

	seen := make(map[string]struct{}, len(t.Rows))
	rows := make([][]domain.Value, 0, len(t.Rows))
	for _, row := range t.Rows {
		out := make([]domain.Value, len(keep))
		empty := true
		for j, i := range keep {
			out[j] = row[i]
			if !row[i].IsNull() {
				empty = false
			}
		}
		if empty {
			continue
		}

		key := rowKey(out)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		rows = append(rows, out)
	}

	return domain.NewTable(t.Name, columns, rows)
}

func rowKey(row []domain.Value) string {
	var b strings.Builder
	for _, v := range row {
		fmt.Fprintf(&b, "%d:%s\x1f", v.Kind, v.String())
	}
	return b.String()
}
