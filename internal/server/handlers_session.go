package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"pdfassist/internal/i18n"
	"pdfassist/internal/pdfx"
	"pdfassist/internal/session"
)

type createSessionRequest struct {
	Tool     string `json:"tool"`
	Language string `json:"language"`
}

func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	s := a.sessions.NewSession(session.Tool(req.Tool), req.Language)
	writeJSON(w, http.StatusCreated, s.Snapshot())
}

func (a *API) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

func (a *API) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	a.sessions.CloseSession(s.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleProgress(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   s.Status(),
		"progress": s.Progress(),
	})
}

// handleUploadDocument accepts a multipart PDF upload with an optional
// password field and loads it into the session. Extraction runs before the
// response; progress is available concurrently via the progress endpoint.
func (a *API) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}

	maxBytes := a.cfg.Storage.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	// The client reports an abandoned password prompt here; the attempt is
	// over and the session goes back to Idle.
	if r.FormValue("password_cancelled") == "true" {
		s.Reset()
		jsonErrorCode(w, "passwordCancelled", i18n.T(s.Language, i18n.PasswordCancelled), http.StatusUnprocessableEntity)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > maxBytes {
		jsonError(w, "file exceeds the upload size limit", http.StatusRequestEntityTooLarge)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/pdf"
	}
	password := r.FormValue("password")

	if err := s.Upload(header.Filename, data, contentType, password); err != nil {
		a.writeUploadError(w, s, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// writeUploadError maps load failures to stable codes with localized
// messages. Password errors are recoverable by re-uploading with a (new)
// password; everything else ends the attempt.
func (a *API) writeUploadError(w http.ResponseWriter, s *session.Session, err error) {
	lang := s.Language
	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr):
		jsonErrorCode(w, "invalidFileType", verr.Message, http.StatusBadRequest)
	case errors.Is(err, pdfx.ErrPasswordRequired):
		jsonErrorCode(w, "passwordRequired", i18n.T(lang, i18n.PasswordRequired), http.StatusUnprocessableEntity)
	case errors.Is(err, pdfx.ErrIncorrectPassword):
		jsonErrorCode(w, "incorrectPassword", i18n.T(lang, i18n.IncorrectPassword), http.StatusUnprocessableEntity)
	case errors.Is(err, pdfx.ErrPasswordCancelled):
		jsonErrorCode(w, "passwordCancelled", i18n.T(lang, i18n.PasswordCancelled), http.StatusUnprocessableEntity)
	default:
		jsonErrorCode(w, "loadFailed", i18n.Tf(lang, i18n.LoadFailed, err.Error()), http.StatusBadRequest)
	}
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	s.Reset()
	writeJSON(w, http.StatusOK, s.Snapshot())
}

type renameRequest struct {
	Name string `json:"name"`
}

func (a *API) handleRename(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Rename(r.Context(), req.Name); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

type setToolRequest struct {
	Tool string `json:"tool"`
}

func (a *API) handleSetTool(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	var req setToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Tool) == "" {
		jsonError(w, "tool is required", http.StatusBadRequest)
		return
	}
	s.SetTool(session.Tool(req.Tool))
	writeJSON(w, http.StatusOK, s.Snapshot())
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (a *API) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.SendMessage(req.Text); err != nil {
		jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusAccepted, s.Snapshot())
}

type translateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (a *API) handleTranslate(w http.ResponseWriter, r *http.Request) {
	s, ok := a.sessionFromRequest(w, r)
	if !ok {
		return
	}
	var req translateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Translate(req.Text, req.Language); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusAccepted, s.Snapshot())
}
