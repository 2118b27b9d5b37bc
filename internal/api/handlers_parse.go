package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docsections/internal/extract"
	"github.com/dgallion1/docsections/internal/parser"
	"github.com/dgallion1/docsections/internal/pipeline"
)

// uploadError carries the HTTP status a failed upload should be reported with.
type uploadError struct {
	status int
	err    error
}

func (e *uploadError) Error() string { return e.err.Error() }
func (e *uploadError) Unwrap() error { return e.err }

func failUpload(status int, format string, args ...any) *uploadError {
	return &uploadError{status: status, err: fmt.Errorf(format, args...)}
}

// processUpload saves the multipart "file" field under its own name in a
// fresh temp directory, runs the pipeline on it and stores the result.
// The temp directory is removed afterwards; removal errors are ignored.
func (s *Server) processUpload(w http.ResponseWriter, r *http.Request) (*pipeline.Document, error) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, failUpload(http.StatusBadRequest, "invalid multipart form: %w", err)
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, failUpload(http.StatusBadRequest, "file is required: %w", err)
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if _, err := parser.ForFile(filename); err != nil {
		return nil, &uploadError{status: http.StatusBadRequest, err: err}
	}

	dir, err := os.MkdirTemp("", "docsections-*")
	if err != nil {
		return nil, failUpload(http.StatusInternalServerError, "create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, filename)
	if err := saveUpload(path, file, s.cfg.MaxUploadBytes); err != nil {
		return nil, err
	}

	doc, err := s.pipeline.Process(r.Context(), path)
	if err != nil {
		return nil, &uploadError{status: http.StatusUnprocessableEntity, err: err}
	}
	s.results.Put(doc)
	return doc, nil
}

func saveUpload(path string, src io.Reader, limit int64) error {
	dst, err := os.Create(path)
	if err != nil {
		return failUpload(http.StatusInternalServerError, "create temp file: %w", err)
	}
	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return failUpload(http.StatusInternalServerError, "write temp file: %w", err)
	}
	if n > limit {
		return failUpload(http.StatusRequestEntityTooLarge, "file exceeds max size (%d bytes)", limit)
	}
	return nil
}

func uploadStatus(err error) int {
	var ue *uploadError
	if errors.As(err, &ue) {
		return ue.status
	}
	return http.StatusInternalServerError
}

func (s *Server) handleParseAPI(w http.ResponseWriter, r *http.Request) {
	doc, err := s.processUpload(w, r)
	if err != nil {
		jsonError(w, err.Error(), uploadStatus(err))
		return
	}

	warnings := doc.Warnings
	if warnings == nil {
		warnings = []extract.Warning{}
	}
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(map[string]any{
		"id":           doc.ID,
		"filename":     doc.Filename,
		"pages":        doc.Pages,
		"content_hash": doc.ContentHash,
		"warnings":     warnings,
		"sections":     recordsOrEmpty(doc),
		"download_url": fmt.Sprintf("/results/%s/download", doc.ID),
	})
}

func (s *Server) handleParsePage(w http.ResponseWriter, r *http.Request) {
	doc, err := s.processUpload(w, r)
	if err != nil {
		s.renderError(w, uploadStatus(err), "Failed to extract text", err)
		return
	}

	var pretty strings.Builder
	if err := pipeline.EncodeRecords(&pretty, doc.Records); err != nil {
		s.renderError(w, http.StatusInternalServerError, "Failed to render result", err)
		return
	}

	s.render(w, http.StatusOK, resultTemplate, resultView{
		Doc:         doc,
		JSON:        pretty.String(),
		Summary:     doc.Summary(),
		DownloadURL: fmt.Sprintf("/results/%s/download", doc.ID),
	})
}

func recordsOrEmpty(doc *pipeline.Document) any {
	if len(doc.Records) == 0 {
		return []any{}
	}
	return doc.Records
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
