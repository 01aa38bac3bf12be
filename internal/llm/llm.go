package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gridsight/gridsight/internal/observability"
)

var ErrNoGenerator = errors.New("text generator is not configured")

// Generator is the external text-generation API. The returned response has
// no fixed shape; callers unwrap it with ExtractAnswer.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (any, error)
}

// Invoker binds a Generator to a single configured model.
type Invoker struct {
	generator Generator
	provider  string
	model     string
	timeout   time.Duration
}

type InvokerConfig struct {
	Provider string
	Model    string
	// Timeout bounds one Generate call. Zero waits for the provider.
	Timeout time.Duration
}

func NewInvoker(generator Generator, cfg InvokerConfig) (*Invoker, error) {
	if generator == nil {
		return nil, ErrNoGenerator
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	provider := strings.TrimSpace(cfg.Provider)
	if provider == "" {
		provider = "custom"
	}
	return &Invoker{
		generator: generator,
		provider:  provider,
		model:     model,
		timeout:   cfg.Timeout,
	}, nil
}

func (i *Invoker) Model() string    { return i.model }
func (i *Invoker) Provider() string { return i.provider }

// Answer performs exactly one Generate call and returns the extracted
// answer text.
func (i *Invoker) Answer(ctx context.Context, prompt string) (string, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := i.generator.Generate(ctx, i.model, prompt)
	observability.ObserveModelCall(i.provider, err == nil, time.Since(start))
	if err != nil {
		return "", fmt.Errorf("generate content with %s: %w", i.model, err)
	}
	return ExtractAnswer(resp), nil
}
