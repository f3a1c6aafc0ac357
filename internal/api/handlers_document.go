package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/deckchat/internal/parser"
	"github.com/dgallion1/deckchat/internal/session"
)

// largeFileBytes is the upload size above which processing is logged as slow.
const largeFileBytes = 10 << 20

var largeDocumentTips = []string{
	`Ask about specific slides: "What's on slide 15?"`,
	`Request summaries: "Summarize slides 10-20"`,
	`Focus on sections: "What are the key points from the first 10 slides?"`,
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	if len(data) > largeFileBytes {
		s.log.Info("processing large file", "filename", filename, "size_mb", fmt.Sprintf("%.1f", float64(len(data))/(1<<20)))
	}

	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	text, err := s.extractor.Extract(data, filename)
	if err != nil {
		jsonError(w, "failed to process document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if text == "" {
		jsonError(w, "failed to process document: no text extracted", http.StatusUnprocessableEntity)
		return
	}

	info := s.session.LoadDocument(filename, text, data)
	resp := map[string]any{"document": info}
	if info.Large {
		resp["tips"] = largeDocumentTips
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc := s.session.Document()
	if doc == "" {
		jsonError(w, "no document loaded", http.StatusNotFound)
		return
	}
	snap := s.session.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"document": session.Describe(snap.Filename, doc),
		"text":     doc,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.actionMu.Lock()
	defer s.actionMu.Unlock()

	s.session.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.session.Snapshot())
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
