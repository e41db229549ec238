// Package server exposes the document assistant over HTTP: session
// lifecycle, PDF upload, page rasters, streaming chat over websocket, the
// recent-file list, and exports.
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pdfassist/internal/config"
	"pdfassist/internal/session"
	"pdfassist/internal/store"
)

// API is the HTTP surface over the session manager.
type API struct {
	router   chi.Router
	sessions *session.Manager
	blobs    store.BlobStore
	logger   *log.Logger
	cfg      *config.Config
}

func NewAPI(sessions *session.Manager, blobs store.BlobStore, logger *log.Logger, cfg *config.Config) *API {
	if logger == nil {
		logger = log.Default()
	}
	a := &API{
		sessions: sessions,
		blobs:    blobs,
		logger:   logger,
		cfg:      cfg,
	}
	a.setupRoutes()
	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *API) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(CORS)
	r.Use(RequestLogger(a.logger))

	r.Get("/health", a.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(a.cfg.APIKey))

		r.Post("/api/sessions", a.handleCreateSession)
		r.Route("/api/sessions/{sid}", func(r chi.Router) {
			r.Get("/", a.handleGetSession)
			r.Delete("/", a.handleCloseSession)
			r.Post("/document", a.handleUploadDocument)
			r.Get("/progress", a.handleProgress)
			r.Post("/reset", a.handleReset)
			r.Post("/rename", a.handleRename)
			r.Post("/tool", a.handleSetTool)
			r.Post("/messages", a.handleSendMessage)
			r.Post("/translate", a.handleTranslate)
			r.Get("/chat", a.handleChatWS)
			r.Get("/pages/{page}", a.handlePage)
			r.Get("/thumbnails/{page}", a.handleThumbnail)
			r.Get("/fit", a.handleAutoFit)
			r.Get("/export/{target}", a.handleExport)
		})

		r.Get("/api/recent", a.handleListRecent)
		r.Delete("/api/recent/{name}", a.handleRemoveRecent)
		r.Get("/api/files/{name}", a.handleDownloadFile)
	})

	a.router = r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

func jsonErrorCode(w http.ResponseWriter, code, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message, "code": code})
}

// sessionFromRequest resolves the {sid} route parameter.
func (a *API) sessionFromRequest(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sid := chi.URLParam(r, "sid")
	s, ok := a.sessions.Session(sid)
	if !ok {
		jsonError(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}
