package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pdfassist/internal/export"
	"pdfassist/internal/llm"
)

// handleExport renders a session artifact ("summary", "translation" or
// "text") as HTML or DOCX for download.
func (a *API) handleExport(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	target := chi.URLParam(r, "target")
	snap := s.Snapshot()

	var content string
	switch target {
	case "summary":
		// The first model entry holds the initial summary.
		for _, e := range snap.Transcript {
			if e.Role == llm.RoleModel && e.Text != "" {
				content = e.Text
				break
			}
		}
	case "translation":
		content = snap.Translation
	case "text":
		if doc := s.Document(); doc != nil {
			content = doc.FullText
		}
	default:
		jsonError(w, "unknown export target", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(content) == "" {
		jsonError(w, "nothing to export", http.StatusConflict)
		return
	}

	title := snap.FileName
	if title == "" {
		title = target
	}

	format := r.URL.Query().Get("format")
	switch format {
	case "", "html":
		out, err := export.HTML(content)
		if err != nil {
			jsonError(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(out)
	case "docx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", title+"."+target+".docx"))
		if err := export.WriteDocx(w, title, content); err != nil {
			a.logger.Printf("export docx: %v", err)
		}
	default:
		jsonError(w, "unknown export format", http.StatusBadRequest)
	}
}
