package api

import (
	"fmt"
	"net/http"

	"github.com/dgallion1/docsections/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleDownload serves a stored result as the parsed_document.json attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc := s.results.Get(id)
	if doc == nil {
		jsonError(w, "result not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pipeline.OutputFilename))
	if err := pipeline.EncodeRecords(w, doc.Records); err != nil {
		s.log.Error("write download", "id", id, "error", err)
	}
}
