package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gridsight/gridsight/internal/observability"
	"github.com/gridsight/gridsight/internal/table"
)

const DiagnosticPrefix = "❌ Backend Error: "

// Recover turns a pipeline failure into the in-band diagnostic answer.
func Recover(err error) Result {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return Result{Answer: DiagnosticPrefix + msg, Diagnostic: true}
}

// Guard runs fn as one request. ErrInsufficientData is returned to the
// caller; any other error or panic is logged and answered with Recover.
func Guard(ctx context.Context, logger *slog.Logger, fn func(context.Context) (Result, error)) (result Result, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			observability.RequestLogger(ctx, logger).Error("analysis panicked", "panic", recovered)
			result, err = Recover(fmt.Errorf("%v", recovered)), nil
		}
	}()

	result, err = fn(ctx)
	if err == nil {
		return result, nil
	}
	if errors.Is(err, table.ErrInsufficientData) {
		return Result{}, err
	}
	observability.RequestLogger(ctx, logger).Error("analysis failed", "error", err)
	return Recover(err), nil
}
