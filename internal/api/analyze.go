package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/gridsight/gridsight/internal/analysis"
	"github.com/gridsight/gridsight/internal/llm"
	"github.com/gridsight/gridsight/internal/observability"
	"github.com/gridsight/gridsight/internal/table"
)

var ErrInvalidPayload = errors.New("invalid JSON payload")

type payloadError struct {
	detail string
}

func (e *payloadError) Error() string { return ErrInvalidPayload.Error() + ": " + e.detail }
func (e *payloadError) Unwrap() error { return ErrInvalidPayload }

const (
	invalidPayloadMarker = "❌ Invalid JSON payload: "
	noDataMarker         = "❌ No valid data provided: "
	invalidUploadMarker  = "❌ Invalid upload: "
)

type runFunc func(ctx context.Context, req analysis.Request) (analysis.Result, error)

// analyzeResponse keeps columnTypes on every table-aware answer and
// aiSummary on every summary answer, even when they are empty.
type analyzeResponse struct {
	Answer        string             `json:"answer"`
	ColumnTypes   *table.ColumnTypes `json:"columnTypes,omitempty"`
	AISummary     *string            `json:"aiSummary,omitempty"`
	AnswerHTML    string             `json:"answerHtml,omitempty"`
	AISummaryHTML string             `json:"aiSummaryHtml,omitempty"`
}

// payload is the decoded top-level JSON object. Field shapes are checked
// later, inside the pipeline, so a wrongly typed field is answered in-band.
type payload map[string]json.RawMessage

func handleAsk(deps Dependencies, maxBody int64, w http.ResponseWriter, r *http.Request) {
	body, err := decodePayload(w, r, maxBody)
	if err != nil {
		writeInvalidPayload(w, err)
		return
	}
	serve(deps, w, r, "/ask-ai", func(ctx context.Context) (analysis.Result, error) {
		req, err := body.request()
		if err != nil {
			return analysis.Result{}, err
		}
		analyzer, err := requireAnalyzer(deps)
		if err != nil {
			return analysis.Result{}, err
		}
		return analyzer.Ask(ctx, req)
	})
}

func handleAnalyze(deps Dependencies, maxBody int64, summary bool, w http.ResponseWriter, r *http.Request) {
	body, err := decodePayload(w, r, maxBody)
	if err != nil {
		writeInvalidPayload(w, err)
		return
	}
	endpoint := r.URL.Path
	summary = summary || wantsSummary(r)
	serve(deps, w, r, endpoint, func(ctx context.Context) (analysis.Result, error) {
		req, err := body.request()
		if err != nil {
			return analysis.Result{}, err
		}
		run, err := tableAwareRun(deps, summary)
		if err != nil {
			return analysis.Result{}, err
		}
		return run(ctx, req)
	})
}

// serve runs fn behind the analysis boundary and writes the JSON answer.
func serve(deps Dependencies, w http.ResponseWriter, r *http.Request, endpoint string, fn func(context.Context) (analysis.Result, error)) {
	result, err := analysis.Guard(r.Context(), deps.Logger, fn)
	if err != nil {
		// Guard only returns the insufficient-data client error.
		writeAnswer(w, http.StatusBadRequest, noDataMarker+err.Error())
		return
	}
	if result.Diagnostic {
		observability.IncrementDiagnosticAnswer(endpoint)
	}

	response := analyzeResponse{Answer: result.Answer}
	if result.ColumnTypes != nil {
		types := result.ColumnTypes
		response.ColumnTypes = &types
	}
	if result.Summarized {
		summary := result.AISummary
		response.AISummary = &summary
	}
	if wantsHTML(r) && !result.Diagnostic {
		response.AnswerHTML = renderMarkdown(result.Answer)
		if result.AISummary != "" {
			response.AISummaryHTML = renderMarkdown(result.AISummary)
		}
	}
	writeJSON(w, http.StatusOK, response)
}

func tableAwareRun(deps Dependencies, summary bool) (runFunc, error) {
	analyzer, err := requireAnalyzer(deps)
	if err != nil {
		return nil, err
	}
	if summary {
		return analyzer.Summarize, nil
	}
	return analyzer.Analyze, nil
}

func requireAnalyzer(deps Dependencies) (Analyzer, error) {
	if deps.Analyzer == nil {
		return nil, llm.ErrNoGenerator
	}
	return deps.Analyzer, nil
}

func decodePayload(w http.ResponseWriter, r *http.Request, maxBody int64) (payload, error) {
	if maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &payloadError{detail: err.Error()}
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, &payloadError{detail: "empty body"}
	}
	var body payload
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, &payloadError{detail: err.Error()}
	}
	if body == nil {
		return nil, &payloadError{detail: "expected a JSON object"}
	}
	return body, nil
}

// request applies the field defaults: a missing or null query is "" and
// missing or null excelData is no rows.
func (p payload) request() (analysis.Request, error) {
	var req analysis.Request
	if raw, ok := p["query"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &req.Query); err != nil {
			return analysis.Request{}, fmt.Errorf("query must be a string: %w", err)
		}
	}
	if raw, ok := p["excelData"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &req.Rows); err != nil {
			return analysis.Request{}, fmt.Errorf("excelData must be a list of rows: %w", err)
		}
	}
	return req, nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

func wantsSummary(r *http.Request) bool {
	return queryFlag(r, "summary")
}

func wantsHTML(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("render"), "html")
}

func queryFlag(r *http.Request, key string) bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false
	}
	value, err := strconv.ParseBool(raw)
	return err == nil && value
}

func renderMarkdown(text string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return string(markdown.ToHTML([]byte(text), p, renderer))
}

func writeInvalidPayload(w http.ResponseWriter, err error) {
	detail := err.Error()
	var perr *payloadError
	if errors.As(err, &perr) {
		detail = perr.detail
	}
	writeAnswer(w, http.StatusBadRequest, invalidPayloadMarker+detail)
}

func writeAnswer(w http.ResponseWriter, status int, answer string) {
	writeJSON(w, status, analyzeResponse{Answer: answer})
}
