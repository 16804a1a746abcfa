package server

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgtlunion/konspekt/llm"
	"github.com/dgtlunion/konspekt/pipeline"
	"github.com/dgtlunion/konspekt/storage"
)

// Metadata echoes the request fields a summary was generated for.
type Metadata struct {
	Client      string `json:"client"`
	Date        string `json:"date"`
	GeneratedAt string `json:"generatedAt"`
}

// PDFInfo describes a stored document.
type PDFInfo struct {
	FileName    string    `json:"fileName"`
	FilePath    string    `json:"filePath"`
	DownloadURL string    `json:"downloadUrl"`
	FileSize    int64     `json:"fileSize"`
	CreatedAt   time.Time `json:"createdAt"`
}

// SummaryResponse is the reply of the summary endpoints.
type SummaryResponse struct {
	Success  bool     `json:"success"`
	Summary  string   `json:"summary"`
	Metadata Metadata `json:"metadata"`
	PDF      *PDFInfo `json:"pdf"`
	PDFError string   `json:"pdfError,omitempty"`
}

func pdfInfo(r *http.Request, f *storage.File) *PDFInfo {
	if f == nil {
		return nil
	}
	path := "/api/pdfs/" + f.Name
	return &PDFInfo{
		FileName:    f.Name,
		FilePath:    path,
		DownloadURL: baseURL(r) + path,
		FileSize:    f.Size,
		CreatedAt:   f.ModTime,
	}
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = strings.ToLower(p)
	}
	return scheme + "://" + r.Host
}

func (s *Server) summaryResponse(r *http.Request, req llm.Request, res *pipeline.SummaryResult) SummaryResponse {
	return SummaryResponse{
		Success:  true,
		Summary:  res.Summary,
		Metadata: Metadata{Client: req.Client, Date: req.Date, GeneratedAt: time.Now().UTC().Format(time.RFC3339)},
		PDF:      pdfInfo(r, res.PDF),
		PDFError: res.PDFError,
	}
}

// handleGenerateSummary summarizes a session and stores its PDF.
func (s *Server) handleGenerateSummary(w http.ResponseWriter, r *http.Request) {
	var req llm.Request
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, "Invalid request body", err)
		return
	}
	res, err := s.svc.SummarizeAndSave(r.Context(), req, true)
	if err != nil {
		s.failure(w, r, "Failed to generate summary", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.summaryResponse(r, req, res))
}

// N8NRequest is the body of /n8n-webhook. AutoSavePDF defaults to true.
type N8NRequest struct {
	llm.Request
	AutoSavePDF *bool `json:"autoSavePdf,omitempty"`
}

// handleN8NWebhook is called back by the automation workflow.
func (s *Server) handleN8NWebhook(w http.ResponseWriter, r *http.Request) {
	var req N8NRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, "Invalid request body", err)
		return
	}
	save := req.AutoSavePDF == nil || *req.AutoSavePDF
	res, err := s.svc.SummarizeAndSave(r.Context(), req.Request, save)
	if err != nil {
		s.failure(w, r, "Failed to process n8n webhook", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, s.summaryResponse(r, req.Request, res))
}

// handleProcessSession hands a raw session to the automation workflow.
func (s *Server) handleProcessSession(w http.ResponseWriter, r *http.Request) {
	var req pipeline.ForwardRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, "Invalid request body", err)
		return
	}
	reply, err := s.svc.ForwardSession(r.Context(), req)
	if err != nil {
		s.failure(w, r, "Failed to process session", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Session sent to n8n for processing",
		"data":    reply,
	})
}

// handleGeneratePDF streams the rendered document as an attachment.
func (s *Server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	var req pipeline.RenderRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, "Invalid request body", err)
		return
	}
	var buf bytes.Buffer
	res, err := s.svc.Render(r.Context(), req, &buf)
	if err != nil {
		s.failure(w, r, "Failed to generate PDF", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+pipeline.DownloadName(req.Date)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Page-Count", strconv.Itoa(res.Stats.Pages))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.requestLogger(r).Warn("writing pdf response", "err", err)
	}
}

// handleGeneratePDFSave renders into the document store.
func (s *Server) handleGeneratePDFSave(w http.ResponseWriter, r *http.Request) {
	var req pipeline.RenderRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.failure(w, r, "Invalid request body", err)
		return
	}
	f, err := s.svc.RenderAndSave(r.Context(), req)
	if err != nil {
		s.failure(w, r, "Failed to generate PDF", err)
		return
	}
	info := pdfInfo(r, &f)
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"fileName":    info.FileName,
		"filePath":    info.FilePath,
		"downloadUrl": info.DownloadURL,
		"fileSize":    info.FileSize,
	})
}
