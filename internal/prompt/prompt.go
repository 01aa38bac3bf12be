// Package prompt renders the text sent to the generation model.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gridsight/gridsight/internal/table"
)

const (
	Role            = "You are an Excel Analysis AI."
	ListInstruction = "Give short, list-style insights only."
	DefaultQuestion = "Give the key insights from this data."
)

// Context is the table-aware material shared by the answer and summary
// prompts of one request.
type Context struct {
	Columns []string
	Types   table.ColumnTypes
	// Sample is the truncated input, header row included, as received.
	Sample  [][]table.Cell
	Profile []table.ColumnProfile
}

// Single builds the raw prompt: the rows as JSON followed by the question.
func Single(rows [][]table.Cell, question string) (string, error) {
	rowsJSON, err := renderRows(rows)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"%s\n\nExcel Data (%d rows):\n%s\n\nUser Question:\n%s\n\n%s",
		Role,
		len(rows),
		rowsJSON,
		normalizeQuestion(question),
		ListInstruction,
	), nil
}

func Answer(ctx Context, question string) (string, error) {
	rowsJSON, err := renderRows(ctx.Sample)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"%s\n\nColumn types:\n%s\n\nExcel Data (header row first):\n%s\n\nUser Question:\n%s\n\n%s Answer in a bullet or numbered list.",
		Role,
		renderTypes(ctx.Columns, ctx.Types),
		rowsJSON,
		normalizeQuestion(question),
		ListInstruction,
	), nil
}

func Summary(ctx Context) (string, error) {
	rowsJSON, err := renderRows(ctx.Sample)
	if err != nil {
		return "", err
	}
	profileJSON, err := json.Marshal(ctx.Profile)
	if err != nil {
		return "", fmt.Errorf("render column profile: %w", err)
	}
	return fmt.Sprintf(
		"%s\n\nColumn types:\n%s\n\nColumn profile (JSON):\n%s\n\nExcel Data (header row first):\n%s\n\n"+
			"Summarize this dataset in 5-7 bullet points. Cover:\n- what the data is about\n- notable patterns or trends\n- the key columns\n- anomalies or data quality issues\n\n"+
			"Use only the information above. %s",
		Role,
		renderTypes(ctx.Columns, ctx.Types),
		string(profileJSON),
		rowsJSON,
		ListInstruction,
	), nil
}

func normalizeQuestion(question string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return DefaultQuestion
	}
	return question
}

func renderRows(rows [][]table.Cell) (string, error) {
	if rows == nil {
		rows = [][]table.Cell{}
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("render excel data: %w", err)
	}
	return string(raw), nil
}

func renderTypes(columns []string, types table.ColumnTypes) string {
	if len(columns) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, name := range columns {
		if i > 0 {
			b.WriteByte('\n')
		}
		label, ok := types[name]
		if !ok {
			label = table.LabelUnknown
		}
		fmt.Fprintf(&b, "- %s: %s", name, label)
	}
	return b.String()
}
