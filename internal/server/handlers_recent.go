package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"pdfassist/internal/store"
)

func (a *API) handleListRecent(w http.ResponseWriter, r *http.Request) {
	entries, err := a.sessions.Recent().List(r.Context())
	if err != nil {
		jsonError(w, "failed to read recent list", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []store.RecentEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleRemoveRecent(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		jsonError(w, "invalid file name", http.StatusBadRequest)
		return
	}
	if err := a.sessions.Recent().Remove(r.Context(), name); err != nil {
		jsonError(w, "failed to update recent list", http.StatusInternalServerError)
		return
	}
	if a.blobs != nil {
		if err := a.blobs.Delete(r.Context(), name); err != nil && !errors.Is(err, store.ErrNotFound) {
			a.logger.Printf("persist: delete %q: %v", name, err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDownloadFile serves a cached binary so a recent file can be
// re-opened without re-uploading.
func (a *API) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	if a.blobs == nil {
		jsonError(w, "file cache disabled", http.StatusNotFound)
		return
	}
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		jsonError(w, "invalid file name", http.StatusBadRequest)
		return
	}
	blob, err := a.blobs.Get(r.Context(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			jsonError(w, "file not found", http.StatusNotFound)
			return
		}
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(blob.Data)
}
