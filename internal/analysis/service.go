// Package analysis runs one request through the pipeline: truncate the rows,
// clean and label the table, build the prompt, call the model.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/gridsight/gridsight/internal/observability"
	"github.com/gridsight/gridsight/internal/prompt"
	"github.com/gridsight/gridsight/internal/table"
)

type Request struct {
	Query string
	Rows  [][]table.Cell
}

// Result is the pipeline output. ColumnTypes is non-nil for the table-aware
// variants and Summarized marks the summary variant, so callers can emit
// those keys even when they are empty.
type Result struct {
	Answer      string            `json:"answer"`
	ColumnTypes table.ColumnTypes `json:"columnTypes"`
	AISummary   string            `json:"aiSummary"`
	Summarized  bool              `json:"-"`
	// Diagnostic is set when Answer carries a backend error instead of a
	// model answer.
	Diagnostic bool `json:"-"`
}

// Answerer performs one model call per prompt. *llm.Invoker satisfies it.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

type Options struct {
	// SampleRows bounds the data rows embedded in a prompt.
	SampleRows       int
	CategoricalLimit int
}

type Service struct {
	answerer Answerer
	opts     Options
	logger   *slog.Logger
}

func NewService(answerer Answerer, opts Options, logger *slog.Logger) (*Service, error) {
	if answerer == nil {
		return nil, fmt.Errorf("answerer is required")
	}
	if opts.SampleRows <= 0 {
		opts.SampleRows = table.MaxRows
	}
	if opts.CategoricalLimit <= 0 {
		opts.CategoricalLimit = table.DefaultCategoricalLimit
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{answerer: answerer, opts: opts, logger: logger}, nil
}

// Ask is the raw variant: no header handling and no column labels.
func (s *Service) Ask(ctx context.Context, req Request) (Result, error) {
	sample := s.truncate(req.Rows, s.opts.SampleRows)
	text, err := prompt.Single(sample, req.Query)
	if err != nil {
		return Result{}, err
	}
	answer, err := s.answerer.Answer(ctx, text)
	if err != nil {
		return Result{}, err
	}
	return Result{Answer: answer}, nil
}

func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	pctx, err := s.prepare(ctx, req.Rows, false)
	if err != nil {
		return Result{}, err
	}
	text, err := prompt.Answer(pctx, req.Query)
	if err != nil {
		return Result{}, err
	}
	answer, err := s.answerer.Answer(ctx, text)
	if err != nil {
		return Result{}, err
	}
	return Result{Answer: answer, ColumnTypes: pctx.Types}, nil
}

// Summarize issues the summary and answer calls concurrently. Either failure
// fails the whole request.
func (s *Service) Summarize(ctx context.Context, req Request) (Result, error) {
	pctx, err := s.prepare(ctx, req.Rows, true)
	if err != nil {
		return Result{}, err
	}
	summaryPrompt, err := prompt.Summary(pctx)
	if err != nil {
		return Result{}, err
	}
	answerPrompt, err := prompt.Answer(pctx, req.Query)
	if err != nil {
		return Result{}, err
	}

	var summary, answer string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.answerInto(gctx, summaryPrompt, &summary); err != nil {
			return fmt.Errorf("dataset summary: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.answerInto(gctx, answerPrompt, &answer)
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Result{Answer: answer, ColumnTypes: pctx.Types, AISummary: summary, Summarized: true}, nil
}

// answerInto runs one model call off the request goroutine. A panic there
// would escape Guard, so it is returned as an error instead.
func (s *Service) answerInto(ctx context.Context, text string, out *string) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%v", recovered)
		}
	}()
	*out, err = s.answerer.Answer(ctx, text)
	return err
}

func (s *Service) prepare(ctx context.Context, rows [][]table.Cell, withProfile bool) (prompt.Context, error) {
	if len(rows) < 2 {
		return prompt.Context{}, fmt.Errorf("%w: got %d row(s)", table.ErrInsufficientData, len(rows))
	}
	sample := s.truncate(rows, s.opts.SampleRows+1)
	frame, err := table.Reshape(sample)
	if err != nil {
		return prompt.Context{}, err
	}
	frame = table.Coerce(frame)
	types := table.Classify(frame, s.opts.CategoricalLimit)
	for _, column := range frame.Columns {
		observability.ObserveColumnLabel(string(types[column.Name]))
	}
	observability.RequestLogger(ctx, s.logger).Debug("classified columns",
		"columns", len(frame.Columns),
		"rows", frame.RowCount(),
	)

	pctx := prompt.Context{
		Columns: frame.Names(),
		Types:   types,
		Sample:  frame.Sample,
	}
	if withProfile {
		pctx.Profile = table.Profile(frame, types)
	}
	return pctx, nil
}

func (s *Service) truncate(rows [][]table.Cell, limit int) [][]table.Cell {
	sample := table.Truncate(rows, limit)
	observability.AddTruncatedRows(len(rows) - len(sample))
	return sample
}
