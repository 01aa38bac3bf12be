package gridsightctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gridsight/gridsight/internal/analysis"
	"github.com/gridsight/gridsight/internal/spreadsheet"
	"github.com/gridsight/gridsight/internal/table"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("gridsightctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "GridSight API base URL")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 2*time.Minute), "HTTP timeout (e.g. 90s)")
	file := fs.String("file", "", "spreadsheet to send (.xlsx or .csv)")
	data := fs.String("data", "", "rows to send as inline JSON, e.g. '[[\"Month\",\"Sales\"],[\"Jan\",100]]'")
	query := fs.String("query", "", "question about the data")
	render := fs.Bool("html", false, "also return the answer rendered as HTML")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	command := strings.TrimSpace(fs.Arg(0))
	method := ""
	path := ""
	switch command {
	case "health":
		method, path = http.MethodGet, "/v1/health"
	case "ready":
		method, path = http.MethodGet, "/v1/ready"
	case "ask":
		method, path = http.MethodPost, "/ask-ai"
	case "analyze":
		method, path = http.MethodPost, "/analyze"
	case "summary":
		method, path = http.MethodPost, "/analyze/summary"
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}

	var body []byte
	if method == http.MethodPost {
		rows, err := loadRows(*file, *data)
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "load rows: %v\n", err)
			return 2
		}
		body, err = json.Marshal(map[string]any{"query": *query, "excelData": rows})
		if err != nil {
			_, _ = fmt.Fprintf(stderr, "encode request: %v\n", err)
			return 2
		}
	}

	endpoint := strings.TrimRight(*baseURL, "/") + path
	if *render && method == http.MethodPost {
		endpoint += "?" + url.Values{"render": {"html"}}.Encode()
	}
	code, responseBody, err := doRequest(ctx, client, method, endpoint, body)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
	} else if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	if isDiagnostic(responseBody) {
		return 1
	}
	return 0
}

func loadRows(file, data string) ([][]table.Cell, error) {
	switch {
	case file != "" && data != "":
		return nil, errors.New("use either -file or -data, not both")
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer func() { _ = f.Close() }()
		return spreadsheet.Read(file, f)
	case data != "":
		var rows [][]table.Cell
		if err := json.Unmarshal([]byte(data), &rows); err != nil {
			return nil, fmt.Errorf("parse -data: %w", err)
		}
		return rows, nil
	default:
		return [][]table.Cell{}, nil
	}
}

func doRequest(ctx context.Context, client *http.Client, method, target string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// isDiagnostic reports whether the server answered with an in-band backend
// error.
func isDiagnostic(raw []byte) bool {
	var decoded struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return false
	}
	return strings.HasPrefix(decoded.Answer, analysis.DiagnosticPrefix)
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: gridsightctl [flags] <command>")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health    GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready     GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  ask       POST /ask-ai")
	_, _ = fmt.Fprintln(w, "  analyze   POST /analyze")
	_, _ = fmt.Fprintln(w, "  summary   POST /analyze/summary")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
