package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgtlunion/konspekt/pipeline"
)

// handleListPDFs lists stored documents, newest first.
func (s *Server) handleListPDFs(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.failure(w, r, "Failed to list PDFs", pipeline.ErrUnavailable)
		return
	}
	files, err := s.store.List()
	if err != nil {
		s.failure(w, r, "Failed to list PDFs", err)
		return
	}
	infos := make([]*PDFInfo, 0, len(files))
	for i := range files {
		infos = append(infos, pdfInfo(r, &files[i]))
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "files": infos})
}

// handleDownloadPDF serves one stored document.
func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.failure(w, r, "Failed to open PDF", pipeline.ErrUnavailable)
		return
	}
	name := chi.URLParam(r, "name")
	f, info, err := s.store.Open(name)
	if err != nil {
		s.failure(w, r, "Failed to open PDF", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+info.Name+`"`)
	http.ServeContent(w, r, info.Name, info.ModTime, f)
}

// handleDeletePDF removes one stored document.
func (s *Server) handleDeletePDF(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.failure(w, r, "Failed to delete PDF", pipeline.ErrUnavailable)
		return
	}
	name := chi.URLParam(r, "name")
	if err := s.store.Delete(name); err != nil {
		s.failure(w, r, "Failed to delete PDF", err)
		return
	}
	s.requestLogger(r).Info("pdf deleted", "name", name)
	s.jsonResponse(w, http.StatusOK, map[string]any{"success": true, "fileName": name})
}
