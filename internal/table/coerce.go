package table

import (
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindText
	KindNumeric
	KindDatetime
	KindBoolean
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindDatetime:
		return "datetime"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// ParseThreshold is the share of non-blank cells that must parse before a
// column is converted to numeric or datetime.
const ParseThreshold = 0.8

var booleanWords = map[string]bool{
	"true":  true,
	"yes":   true,
	"y":     true,
	"false": false,
	"no":    false,
	"n":     false,
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"2006/01/02",
	"02-Jan-2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

var currencySymbols = []string{"$", "€", "£", "¥", "₹", "USD", "EUR", "GBP"}

// Coerce assigns every column a kind and fills its coerced values. Rules
// are tried per column in order: boolean, numeric, datetime, text. Cells
// that do not fit the chosen kind become nil.
func Coerce(frame Frame) Frame {
	columns := make([]Column, len(frame.Columns))
	for i, column := range frame.Columns {
		columns[i] = coerceColumn(column)
	}
	return Frame{Columns: columns, Sample: frame.Sample}
}

func coerceColumn(column Column) Column {
	out := Column{Name: column.Name, Raw: column.Raw}
	if values, ok := coerceBoolean(column.Raw); ok {
		out.Kind, out.Values = KindBoolean, values
		return out
	}
	if values, ok := coerceWith(column.Raw, numericValue); ok {
		out.Kind, out.Values = KindNumeric, values
		return out
	}
	if values, ok := coerceWith(column.Raw, datetimeValue); ok {
		out.Kind, out.Values = KindDatetime, values
		return out
	}
	out.Kind, out.Values = KindText, textValues(column.Raw)
	return out
}

func coerceBoolean(cells []Cell) ([]any, bool) {
	values := make([]any, len(cells))
	matched := false
	for i, cell := range cells {
		word := strings.ToLower(strings.TrimSpace(CellText(cell)))
		if b, ok := booleanWords[word]; ok {
			values[i] = b
			matched = true
		}
	}
	return values, matched
}

func coerceWith(cells []Cell, parse func(Cell) (any, bool)) ([]any, bool) {
	values := make([]any, len(cells))
	nonBlank, parsed := 0, 0
	for i, cell := range cells {
		if isBlank(cell) {
			continue
		}
		nonBlank++
		if value, ok := parse(cell); ok {
			values[i] = value
			parsed++
		}
	}
	if nonBlank == 0 || float64(parsed) < ParseThreshold*float64(nonBlank) {
		return nil, false
	}
	return values, true
}

func textValues(cells []Cell) []any {
	values := make([]any, len(cells))
	for i, cell := range cells {
		if isBlank(cell) {
			continue
		}
		values[i] = CellText(cell)
	}
	return values
}

func isBlank(cell Cell) bool {
	if cell == nil {
		return true
	}
	if s, ok := cell.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func numericValue(cell Cell) (any, bool) {
	switch v := cell.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		return ParseNumber(v)
	default:
		return nil, false
	}
}

// ParseNumber accepts plain decimals plus the spreadsheet forms that show up
// in exported sheets: thousands separators, currency symbols, a trailing
// percent sign and accounting negatives such as "(12.50)".
func ParseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
		negative = true
	}
	s = strings.TrimSuffix(s, "%")
	for _, symbol := range currencySymbols {
		s = strings.ReplaceAll(s, symbol, "")
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	if negative {
		value = -value
	}
	return value, true
}

func datetimeValue(cell Cell) (any, bool) {
	switch v := cell.(type) {
	case time.Time:
		return v, true
	case string:
		return ParseDatetime(v)
	default:
		return nil, false
	}
}

func ParseDatetime(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
