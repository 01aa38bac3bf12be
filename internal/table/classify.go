package table

type Label string

const (
	LabelNumeric     Label = "Numeric"
	LabelDatetime    Label = "Datetime"
	LabelBoolean     Label = "Boolean"
	LabelCategorical Label = "Categorical"
	LabelTextMixed   Label = "Text/Mixed"
	LabelUnknown     Label = "Unknown"
)

// DefaultCategoricalLimit is the distinct-value count at which a text
// column stops being Categorical.
const DefaultCategoricalLimit = 50

// ColumnTypes maps column name to its label.
type ColumnTypes map[string]Label

// Classify labels every column of a coerced frame. Text columns with fewer
// than categoricalLimit distinct non-null values are Categorical.
func Classify(frame Frame, categoricalLimit int) ColumnTypes {
	if categoricalLimit <= 0 {
		categoricalLimit = DefaultCategoricalLimit
	}
	types := make(ColumnTypes, len(frame.Columns))
	for _, column := range frame.Columns {
		types[column.Name] = classifyColumn(column, categoricalLimit)
	}
	return types
}

func classifyColumn(column Column, categoricalLimit int) Label {
	switch column.Kind {
	case KindNumeric:
		return LabelNumeric
	case KindDatetime:
		return LabelDatetime
	case KindBoolean:
		return LabelBoolean
	case KindText:
		if DistinctCount(column.Values) < categoricalLimit {
			return LabelCategorical
		}
		return LabelTextMixed
	default:
		return LabelUnknown
	}
}

func DistinctCount(values []any) int {
	seen := make(map[any]struct{}, len(values))
	for _, value := range values {
		if value == nil {
			continue
		}
		seen[value] = struct{}{}
	}
	return len(seen)
}
