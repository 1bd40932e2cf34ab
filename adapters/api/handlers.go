package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"xlmongo/adapters/excel"
	"xlmongo/app"
	"xlmongo/domain/pivot"
	"xlmongo/internal/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// exportRequest is the JSON body of POST /api/exports. Every omitted field
// falls back to the server defaults.
type exportRequest struct {
	Database    string   `json:"database"`
	Collection  string   `json:"collection"`
	Index       []string `json:"index"`
	Values      []string `json:"values"`
	Aggregators []string `json:"aggregators"`
	Columns     []string `json:"columns"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleImport stores the uploaded spreadsheet in a temporary file and imports
// it into the requested (or default) collection
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	release, err := s.tryRun()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer release()

	limit := int64(s.options.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		s.writeError(w, r, errors.InvalidInput(fmt.Sprintf("invalid upload: %v", err)))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, errors.InvalidInput("form field \"file\" is required"))
		return
	}
	defer file.Close()

	if _, err := excel.DetectFileType(header.Filename); err != nil {
		s.writeError(w, r, errors.Wrap(err, "invalid upload"))
		return
	}

	path, err := s.saveUpload(file, filepath.Ext(header.Filename))
	if err != nil {
		s.writeError(w, r, errors.Wrap(err, "failed to store upload"))
		return
	}
	defer os.Remove(path)

	report, err := s.importer.Import(r.Context(), app.ImportRequest{
		Paths:      []string{path},
		Sheet:      r.FormValue("sheet"),
		Database:   valueOr(r.FormValue("database"), s.options.ImportDatabase),
		Collection: valueOr(r.FormValue("collection"), s.options.ImportCollection),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	for i := range report.Sheets {
		report.Sheets[i].File = header.Filename
	}
	writeJSON(w, http.StatusOK, report)
}

// handleExport runs an export into a temporary workbook and streams it back
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var body exportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !stderrors.Is(err, io.EOF) {
		s.writeError(w, r, errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err)))
		return
	}

	spec, err := s.exportSpec(body)
	if err != nil {
		s.writeError(w, r, errors.InvalidPivotSpec(err))
		return
	}

	release, err := s.tryRun()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer release()

	output := filepath.Join(s.tempDir(), "export-"+uuid.NewString()+".xlsx")
	defer os.Remove(output)

	collection := valueOr(body.Collection, s.options.ExportCollection)
	report, err := s.exporter.Export(r.Context(), app.ExportRequest{
		Database:   valueOr(body.Database, s.options.ExportDatabase),
		Collection: collection,
		Output:     output,
		Spec:       spec,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	f, err := os.Open(output)
	if err != nil {
		s.writeError(w, r, errors.SpreadsheetError("failed to open generated workbook", err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", collection+".xlsx"))
	w.Header().Set("X-Run-ID", report.RunID.String())
	if report.PivotWarning != "" {
		w.Header().Set("X-Pivot-Warning", report.PivotWarning)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn("failed to stream workbook", zap.Error(err))
	}
}

// exportSpec merges the request lists over the configured pivot spec
func (s *Server) exportSpec(body exportRequest) (pivot.Spec, error) {
	spec := s.options.Pivot
	if len(body.Index) > 0 {
		spec.Index = body.Index
	}
	if len(body.Values) > 0 {
		spec.Values = body.Values
	}
	if len(body.Columns) > 0 {
		spec.Columns = body.Columns
	}
	if len(body.Aggregators) > 0 {
		aggs, err := pivot.ParseAggregators(body.Aggregators)
		if err != nil {
			return pivot.Spec{}, err
		}
		spec.Aggregators = aggs
	}
	return spec, spec.Validate()
}

func (s *Server) saveUpload(src io.Reader, ext string) (string, error) {
	path := filepath.Join(s.tempDir(), "upload-"+uuid.NewString()+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	return path, dst.Close()
}

func (s *Server) tempDir() string {
	if s.options.TempDir != "" {
		return s.options.TempDir
	}
	return os.TempDir()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Warn("request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
