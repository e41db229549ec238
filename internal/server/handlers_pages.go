package server

import (
	"image/png"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pdfassist/internal/render"
)

// handlePage rasterizes one page at the requested scale and rotation.
// Rendering is deterministic for fixed inputs, so responses are cacheable
// per document.
func (a *API) handlePage(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		jsonError(w, "invalid page number", http.StatusBadRequest)
		return
	}

	scale := 1.0
	if raw := r.URL.Query().Get("scale"); raw != "" {
		scale, err = strconv.ParseFloat(raw, 64)
		if err != nil || scale <= 0 {
			jsonError(w, "invalid scale", http.StatusBadRequest)
			return
		}
	}
	rotation := 0
	if raw := r.URL.Query().Get("rotation"); raw != "" {
		rotation, err = strconv.Atoi(raw)
		if err != nil {
			jsonError(w, "invalid rotation", http.StatusBadRequest)
			return
		}
	}

	renderer, err := s.Renderer()
	if err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	img, err := renderer.Page(r.Context(), page, scale, rotation)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, img); err != nil {
		a.logger.Printf("encode page %d: %v", page, err)
	}
}

// handleThumbnail serves the cached low-resolution raster for one page.
// Thumbnails are generated once per loaded document.
func (a *API) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		jsonError(w, "invalid page number", http.StatusBadRequest)
		return
	}

	renderer, err := s.Renderer()
	if err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	thumbs, err := renderer.Thumbnails(r.Context())
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if page > len(thumbs) {
		jsonError(w, "page out of range", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, thumbs[page-1]); err != nil {
		a.logger.Printf("encode thumbnail %d: %v", page, err)
	}
}

// handleAutoFit computes the scale that fits page 1 to the given viewport
// width, honoring the requested rotation.
func (a *API) handleAutoFit(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	viewport, err := strconv.Atoi(r.URL.Query().Get("viewport"))
	if err != nil || viewport <= render.AutoFitPadding {
		jsonError(w, "invalid viewport width", http.StatusBadRequest)
		return
	}
	rotation := 0
	if raw := r.URL.Query().Get("rotation"); raw != "" {
		rotation, err = strconv.Atoi(raw)
		if err != nil {
			jsonError(w, "invalid rotation", http.StatusBadRequest)
			return
		}
	}

	renderer, err := s.Renderer()
	if err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	scale, err := renderer.AutoFitScale(r.Context(), viewport, rotation)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"scale": scale})
}
