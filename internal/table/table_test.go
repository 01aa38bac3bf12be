package table

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateKeepsShortInputUnchanged(t *testing.T) {
	rows := makeRows(MaxRows)
	got := Truncate(rows, MaxRows)
	require.Len(t, got, MaxRows)
	assert.Equal(t, rows, got)
}

func TestTruncateKeepsPrefixInOrder(t *testing.T) {
	rows := makeRows(300)
	got := Truncate(rows, MaxRowsWithHeader)
	require.Len(t, got, MaxRowsWithHeader)
	for i, row := range got {
		assert.Equal(t, rows[i], row)
	}
}

func TestTruncateIgnoresNonPositiveLimit(t *testing.T) {
	rows := makeRows(3)
	assert.Len(t, Truncate(rows, 0), 3)
}

func TestReshapeRequiresHeaderAndDataRow(t *testing.T) {
	_, err := Reshape(nil)
	require.ErrorIs(t, err, ErrInsufficientData)

	_, err = Reshape([][]Cell{{"Month", "Sales"}})
	require.ErrorIs(t, err, ErrInsufficientData)

	frame, err := Reshape([][]Cell{{"Month", "Sales"}, {"Jan", "100"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Month", "Sales"}, frame.Names())
	assert.Equal(t, 1, frame.RowCount())
}

func TestReshapeNamesBlankAndDuplicateHeaders(t *testing.T) {
	frame, err := Reshape([][]Cell{
		{"A", "", "A", nil, "A"},
		{1.0, 2.0, 3.0, 4.0, 5.0},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "Column_2", "A.1", "Column_4", "A.2"}, frame.Names())
}

func TestReshapePadsAndClipsRows(t *testing.T) {
	frame, err := Reshape([][]Cell{
		{"a", "b"},
		{"1"},
		{"2", "3", "extra"},
	})
	require.NoError(t, err)
	assert.Equal(t, []Cell{"1", "2"}, frame.Columns[0].Raw)
	assert.Equal(t, []Cell{nil, "3"}, frame.Columns[1].Raw)
}

func TestCoerceBooleanColumn(t *testing.T) {
	frame := mustCoerce(t, [][]Cell{
		{"Active"},
		{"TRUE"}, {"no"}, {"Y"}, {"n"}, {"Yes"}, {"false"},
	})
	col := frame.Columns[0]
	require.Equal(t, KindBoolean, col.Kind)
	assert.Equal(t, []any{true, false, true, false, true, false}, col.Values)
	assert.Equal(t, LabelBoolean, Classify(frame, 0)["Active"])
}

func TestCoerceBooleanFiresOnAnyMatch(t *testing.T) {
	frame := mustCoerce(t, [][]Cell{
		{"Flag"},
		{"yes"}, {"maybe"}, {nil}, {true},
	})
	col := frame.Columns[0]
	require.Equal(t, KindBoolean, col.Kind)
	assert.Equal(t, []any{true, nil, nil, true}, col.Values)
}

func TestCoerceNumericColumnNullsFailures(t *testing.T) {
	rows := [][]Cell{{"Amount"}}
	for i := 0; i < 9; i++ {
		rows = append(rows, []Cell{fmt.Sprintf("%d", i*10)})
	}
	rows = append(rows, []Cell{"n/a"}, []Cell{""}, []Cell{12.5})
	frame := mustCoerce(t, rows)

	col := frame.Columns[0]
	require.Equal(t, KindNumeric, col.Kind)
	assert.Equal(t, 0.0, col.Values[0])
	assert.Nil(t, col.Values[9])
	assert.Nil(t, col.Values[10])
	assert.Equal(t, 12.5, col.Values[11])
}

func TestCoerceDatetimeColumn(t *testing.T) {
	frame := mustCoerce(t, [][]Cell{
		{"When"},
		{"2024-01-05"}, {"2024-02-10"}, {"03/15/2024"}, {"2024-04-01T10:00:00Z"},
	})
	col := frame.Columns[0]
	require.Equal(t, KindDatetime, col.Kind)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), col.Values[2])
	assert.Equal(t, LabelDatetime, Classify(frame, 0)["When"])
}

func TestCoerceKeepsMonthNamesAsText(t *testing.T) {
	frame := mustCoerce(t, [][]Cell{
		{"Month", "Sales"},
		{"Jan", "100"},
		{"Feb", "150"},
	})
	types := Classify(frame, 0)
	assert.Equal(t, ColumnTypes{"Month": LabelCategorical, "Sales": LabelNumeric}, types)
}

func TestClassifyCategoricalBoundary(t *testing.T) {
	for _, tc := range []struct {
		distinct int
		want     Label
	}{
		{distinct: 49, want: LabelCategorical},
		{distinct: 50, want: LabelTextMixed},
	} {
		rows := [][]Cell{{"Name"}}
		for i := 0; i < tc.distinct; i++ {
			rows = append(rows, []Cell{fmt.Sprintf("item-%02d", i)})
		}
		rows = append(rows, []Cell{"item-00"}, []Cell{""})
		frame := mustCoerce(t, rows)
		assert.Equal(t, tc.want, Classify(frame, DefaultCategoricalLimit)["Name"], "distinct=%d", tc.distinct)
	}
}

func TestClassifyUnknownKind(t *testing.T) {
	frame := Frame{Columns: []Column{{Name: "x"}}}
	assert.Equal(t, LabelUnknown, Classify(frame, 0)["x"])
}

func TestParseNumberForms(t *testing.T) {
	cases := map[string]float64{
		"42":        42,
		"1,234.5":   1234.5,
		"$1,000":    1000,
		"(12.50)":   -12.5,
		"15%":       15,
		" 3e2 ":     300,
		"€ 9":       9,
		"-0.25":     -0.25,
		"1 000 000": 1000000,
	}
	for raw, want := range cases {
		got, ok := ParseNumber(raw)
		require.True(t, ok, raw)
		assert.InDelta(t, want, got, 1e-9, raw)
	}
	for _, raw := range []string{"", "abc", "NaN", "Inf", "$"} {
		_, ok := ParseNumber(raw)
		assert.False(t, ok, raw)
	}
}

func TestProfileNumericAndText(t *testing.T) {
	frame := mustCoerce(t, [][]Cell{
		{"Region", "Sales", "Paid"},
		{"North", "10", "yes"},
		{"South", "20", "no"},
		{"North", "30", "yes"},
		{"", "", ""},
	})
	profiles := Profile(frame, Classify(frame, 0))
	require.Len(t, profiles, 3)

	region := profiles[0]
	assert.Equal(t, LabelCategorical, region.Label)
	require.NotNil(t, region.Distinct)
	assert.Equal(t, 2, *region.Distinct)
	assert.Equal(t, ValueCount{Value: "North", Count: 2}, region.Top[0])
	assert.Equal(t, 1, region.Nulls)

	sales := profiles[1]
	require.NotNil(t, sales.Numeric)
	assert.Equal(t, 10.0, sales.Numeric.Min)
	assert.Equal(t, 30.0, sales.Numeric.Max)
	assert.Equal(t, 20.0, sales.Numeric.Mean)
	assert.Equal(t, 20.0, sales.Numeric.Median)

	paid := profiles[2]
	require.NotNil(t, paid.True)
	assert.Equal(t, 2, *paid.True)
	assert.Equal(t, 1, *paid.False)
}

func TestCellText(t *testing.T) {
	assert.Equal(t, "", CellText(nil))
	assert.Equal(t, "100", CellText(100.0))
	assert.Equal(t, "0.5", CellText(0.5))
	assert.Equal(t, "true", CellText(true))
	assert.Equal(t, "x", CellText("x"))
}

func mustCoerce(t *testing.T, rows [][]Cell) Frame {
	t.Helper()
	frame, err := Reshape(rows)
	require.NoError(t, err)
	return Coerce(frame)
}

func makeRows(n int) [][]Cell {
	rows := make([][]Cell, n)
	for i := range rows {
		rows[i] = []Cell{fmt.Sprintf("r%d", i), float64(i)}
	}
	return rows
}
