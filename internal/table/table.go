package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Row bounds applied before any prompt is built. The table-aware variants
// keep the header row in addition to MaxRows data rows.
const (
	MaxRows           = 150
	MaxRowsWithHeader = MaxRows + 1
)

var ErrInsufficientData = errors.New("at least a header row and one data row are required")

// Cell is a single spreadsheet value as received: string, float64, bool or
// nil when decoded from JSON, string when read from a file.
type Cell = any

type Column struct {
	Name string
	Kind Kind
	// Raw holds the cells as received; Values holds the coerced values
	// (float64, time.Time, bool, string or nil) once Coerce has run.
	Raw    []Cell
	Values []any
}

type Frame struct {
	Columns []Column
	// Sample is the header plus data rows exactly as received.
	Sample [][]Cell
}

func (f Frame) Names() []string {
	names := make([]string, 0, len(f.Columns))
	for _, column := range f.Columns {
		names = append(names, column.Name)
	}
	return names
}

func (f Frame) RowCount() int {
	if len(f.Columns) == 0 {
		return 0
	}
	return len(f.Columns[0].Raw)
}

// Truncate returns at most limit rows, keeping order. A non-positive limit
// leaves rows untouched.
func Truncate(rows [][]Cell, limit int) [][]Cell {
	if limit <= 0 || len(rows) <= limit {
		return rows
	}
	return rows[:limit]
}

// Reshape treats the first row as column names and the remaining rows as
// data. Rows are padded with nil or clipped to the header width.
func Reshape(rows [][]Cell) (Frame, error) {
	if len(rows) < 2 {
		return Frame{}, fmt.Errorf("reshape %d row(s): %w", len(rows), ErrInsufficientData)
	}

	header := rows[0]
	data := rows[1:]
	names := columnNames(header)

	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Kind: KindText, Raw: make([]Cell, len(data))}
	}
	for r, row := range data {
		for c := range columns {
			if c < len(row) {
				columns[c].Raw[r] = row[c]
			}
		}
	}
	return Frame{Columns: columns, Sample: rows}, nil
}

func columnNames(header []Cell) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, cell := range header {
		name := strings.TrimSpace(CellText(cell))
		if name == "" {
			name = fmt.Sprintf("Column_%d", i+1)
		}
		if _, taken := seen[name]; taken {
			base := name
			for k := seen[base] + 1; ; k++ {
				candidate := fmt.Sprintf("%s.%d", base, k)
				if _, used := seen[candidate]; !used {
					seen[base] = k
					name = candidate
					break
				}
			}
		}
		if _, ok := seen[name]; !ok {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

// CellText renders a cell the way it would read in a spreadsheet.
func CellText(cell Cell) string {
	switch v := cell.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
