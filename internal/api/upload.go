package api

import (
	"context"
	"net/http"

	"github.com/gridsight/gridsight/internal/analysis"
	"github.com/gridsight/gridsight/internal/spreadsheet"
)

const defaultMultipartMemory = 32 << 20

// handleUpload reads the first sheet of a multipart "file" part and runs the
// table-aware pipeline on it with the "query" form value.
func handleUpload(deps Dependencies, maxBody int64, w http.ResponseWriter, r *http.Request) {
	memory := int64(defaultMultipartMemory)
	if maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		memory = maxBody
	}
	if err := r.ParseMultipartForm(memory); err != nil {
		writeAnswer(w, http.StatusBadRequest, invalidUploadMarker+err.Error())
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeAnswer(w, http.StatusBadRequest, invalidUploadMarker+err.Error())
		return
	}
	defer func() { _ = file.Close() }()

	rows, err := spreadsheet.Read(header.Filename, file)
	if err != nil {
		writeAnswer(w, http.StatusBadRequest, invalidUploadMarker+err.Error())
		return
	}

	req := analysis.Request{Query: r.FormValue("query"), Rows: rows}
	summary := wantsSummary(r)
	serve(deps, w, r, r.URL.Path, func(ctx context.Context) (analysis.Result, error) {
		run, err := tableAwareRun(deps, summary)
		if err != nil {
			return analysis.Result{}, err
		}
		return run(ctx, req)
	})
}
