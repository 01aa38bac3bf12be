package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsight/gridsight/internal/table"
)

func TestRecoverPrefixesMessage(t *testing.T) {
	result := Recover(errors.New("model unavailable"))
	assert.Equal(t, "❌ Backend Error: model unavailable", result.Answer)
	assert.True(t, result.Diagnostic)
}

func TestGuardPassesSuccessThrough(t *testing.T) {
	result, err := Guard(context.Background(), nil, func(context.Context) (Result, error) {
		return Result{Answer: "fine"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fine", result.Answer)
	assert.False(t, result.Diagnostic)
}

func TestGuardConvertsErrors(t *testing.T) {
	result, err := Guard(context.Background(), nil, func(context.Context) (Result, error) {
		return Result{}, fmt.Errorf("generate content with m: %w", errors.New("503"))
	})
	require.NoError(t, err)
	assert.Equal(t, DiagnosticPrefix+"generate content with m: 503", result.Answer)
	assert.True(t, result.Diagnostic)
}

func TestGuardConvertsPanics(t *testing.T) {
	result, err := Guard(context.Background(), nil, func(context.Context) (Result, error) {
		panic("index out of range")
	})
	require.NoError(t, err)
	assert.Equal(t, DiagnosticPrefix+"index out of range", result.Answer)
}

func TestGuardReturnsInsufficientData(t *testing.T) {
	_, err := Guard(context.Background(), nil, func(context.Context) (Result, error) {
		return Result{}, fmt.Errorf("%w: got 1 row(s)", table.ErrInsufficientData)
	})
	require.ErrorIs(t, err, table.ErrInsufficientData)
}

type panickingAnswerer struct{}

func (panickingAnswerer) Answer(context.Context, string) (string, error) {
	panic("sdk exploded")
}

func TestGuardConvertsPanicsFromConcurrentModelCalls(t *testing.T) {
	svc, err := NewService(panickingAnswerer{}, Options{}, nil)
	require.NoError(t, err)
	req := Request{Query: "q", Rows: [][]table.Cell{{"Month", "Sales"}, {"Jan", "100"}}}

	for name, run := range map[string]func(context.Context, Request) (Result, error){
		"analyze":   svc.Analyze,
		"summarize": svc.Summarize,
	} {
		t.Run(name, func(t *testing.T) {
			result, err := Guard(context.Background(), nil, func(ctx context.Context) (Result, error) {
				return run(ctx, req)
			})
			require.NoError(t, err)
			assert.True(t, result.Diagnostic)
			assert.Contains(t, result.Answer, DiagnosticPrefix)
			assert.Contains(t, result.Answer, "sdk exploded")
		})
	}
}
