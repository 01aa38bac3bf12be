package table

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"
)

const topValuesLimit = 5

// ColumnProfile summarises one coerced column for the dataset summary
// prompt. Only the fields relevant to the column's kind are set.
type ColumnProfile struct {
	Name     string        `json:"name"`
	Label    Label         `json:"type"`
	Count    int           `json:"count"`
	Nulls    int           `json:"nulls"`
	Numeric  *NumericStats `json:"numeric,omitempty"`
	Earliest *time.Time    `json:"earliest,omitempty"`
	Latest   *time.Time    `json:"latest,omitempty"`
	True     *int          `json:"true,omitempty"`
	False    *int          `json:"false,omitempty"`
	Distinct *int          `json:"distinct,omitempty"`
	Top      []ValueCount  `json:"top,omitempty"`
}

type NumericStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Profile computes per-column statistics over a coerced frame, in column
// order.
func Profile(frame Frame, types ColumnTypes) []ColumnProfile {
	profiles := make([]ColumnProfile, 0, len(frame.Columns))
	for _, column := range frame.Columns {
		profile := ColumnProfile{Name: column.Name, Label: types[column.Name]}
		for _, value := range column.Values {
			if value == nil {
				profile.Nulls++
				continue
			}
			profile.Count++
		}
		if len(column.Values) == 0 {
			profile.Nulls = len(column.Raw)
		}

		switch column.Kind {
		case KindNumeric:
			profile.Numeric = numericStats(column.Values)
		case KindDatetime:
			profile.Earliest, profile.Latest = timeRange(column.Values)
		case KindBoolean:
			trueCount, falseCount := booleanCounts(column.Values)
			profile.True, profile.False = &trueCount, &falseCount
		case KindText:
			distinct := DistinctCount(column.Values)
			profile.Distinct = &distinct
			profile.Top = topValues(column.Values, topValuesLimit)
		}
		profiles = append(profiles, profile)
	}
	return profiles
}

func numericStats(values []any) *NumericStats {
	data := make(stats.Float64Data, 0, len(values))
	for _, value := range values {
		if f, ok := value.(float64); ok {
			data = append(data, f)
		}
	}
	if len(data) == 0 {
		return nil
	}
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	stdDev, _ := stats.StandardDeviation(data)
	return &NumericStats{Min: min, Max: max, Mean: mean, Median: median, StdDev: stdDev}
}

func timeRange(values []any) (*time.Time, *time.Time) {
	var earliest, latest *time.Time
	for _, value := range values {
		t, ok := value.(time.Time)
		if !ok {
			continue
		}
		if earliest == nil || t.Before(*earliest) {
			v := t
			earliest = &v
		}
		if latest == nil || t.After(*latest) {
			v := t
			latest = &v
		}
	}
	return earliest, latest
}

func booleanCounts(values []any) (int, int) {
	trueCount, falseCount := 0, 0
	for _, value := range values {
		b, ok := value.(bool)
		if !ok {
			continue
		}
		if b {
			trueCount++
		} else {
			falseCount++
		}
	}
	return trueCount, falseCount
}

func topValues(values []any, limit int) []ValueCount {
	counts := map[string]int{}
	for _, value := range values {
		if s, ok := value.(string); ok {
			counts[s]++
		}
	}
	top := make([]ValueCount, 0, len(counts))
	for value, count := range counts {
		top = append(top, ValueCount{Value: value, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Value < top[j].Value
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top
}
