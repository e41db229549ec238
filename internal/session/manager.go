package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pdfassist/internal/i18n"
	"pdfassist/internal/llm"
	"pdfassist/internal/pdfx"
	"pdfassist/internal/store"
	"pdfassist/internal/stream"
)

const pdfMIMEType = "application/pdf"

// Manager creates and looks up sessions and carries their shared
// dependencies: the generation client, the binary cache, and the
// recent-file list.
// OpenFunc loads and extracts a document. The default is pdfx.Open.
type OpenFunc func(ctx context.Context, name string, data []byte, password string, report func(int)) (*pdfx.Document, error)

type Manager struct {
	llm    llm.StreamClient
	blobs  store.BlobStore
	recent *store.RecentStore
	logger *log.Logger
	open   OpenFunc

	defaultLanguage string

	mu       sync.RWMutex
	sessions map[string]*Session
}

type ManagerConfig struct {
	LLM             llm.StreamClient
	Blobs           store.BlobStore
	Recent          *store.RecentStore
	Logger          *log.Logger
	DefaultLanguage string
	// Open overrides document loading; nil means pdfx.Open.
	Open OpenFunc
}

func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	lang := strings.TrimSpace(cfg.DefaultLanguage)
	if lang == "" {
		lang = i18n.Korean
	}
	open := cfg.Open
	if open == nil {
		open = pdfx.Open
	}
	return &Manager{
		llm:             cfg.LLM,
		blobs:           cfg.Blobs,
		recent:          cfg.Recent,
		logger:          logger,
		open:            open,
		defaultLanguage: lang,
		sessions:        make(map[string]*Session),
	}
}

func (m *Manager) NewSession(tool Tool, language string) *Session {
	if tool == "" {
		tool = ToolHome
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = m.defaultLanguage
	}
	s := &Session{
		ID:       uuid.NewString(),
		Language: language,
		mgr:      m,
		status:   StatusIdle,
		tool:     tool,
	}
	s.updatedAt = time.Now()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Session(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *Manager) CloseSession(id string) {
	m.mu.Lock()
	s := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

func (m *Manager) Recent() *store.RecentStore { return m.recent }

// Upload validates and loads a PDF, replacing whatever document the session
// held before. Extraction runs under the new epoch; progress is readable
// concurrently via Progress(). On success the binary is cached and the
// recent list updated (both best-effort), and unless the active tool is
// translation an initial summary stream is started.
func (s *Session) Upload(name string, data []byte, contentType string, password string) error {
	name = strings.TrimSpace(name)
	if !strings.EqualFold(strings.TrimSpace(contentType), pdfMIMEType) {
		return &ValidationError{Message: i18n.T(s.Language, i18n.InvalidFileType)}
	}
	if store.IsReservedName(name) {
		return &ValidationError{Message: i18n.T(s.Language, i18n.ReservedFileName)}
	}

	ctx, epoch := s.beginEpoch()

	s.mu.Lock()
	s.resetLocked()
	s.status = StatusProcessing
	s.mu.Unlock()

	doc, err := s.mgr.open(ctx, name, data, password, func(p int) {
		s.mu.Lock()
		if s.epoch == epoch {
			s.progress = p
		}
		s.mu.Unlock()
	})
	if err != nil {
		s.mu.Lock()
		if s.epoch == epoch {
			s.resetLocked()
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return ctx.Err()
	}
	s.doc = doc
	s.status = StatusReady
	s.progress = 100
	s.updatedAt = time.Now()
	tool := s.tool
	s.mu.Unlock()

	s.mgr.persistUpload(ctx, doc, data)

	if tool != ToolTranslate {
		s.startSummary(ctx, epoch, doc)
	}
	return nil
}

// persistUpload caches the binary and touches the recent list. Failures are
// logged and swallowed; caching is best-effort and never blocks the upload.
func (m *Manager) persistUpload(ctx context.Context, doc *pdfx.Document, data []byte) {
	if m.blobs != nil {
		err := m.blobs.Put(ctx, doc.Name, store.Blob{
			Data:        data,
			ContentType: pdfMIMEType,
			ModTime:     time.Now(),
		})
		if err != nil {
			m.logger.Printf("persist: cache %q: %v", doc.Name, err)
		}
	}
	if m.recent != nil {
		err := m.recent.Touch(ctx, store.RecentEntry{
			Name:         doc.Name,
			Size:         int64(len(data)),
			LastModified: time.Now(),
		})
		if err != nil {
			m.logger.Printf("persist: recent %q: %v", doc.Name, err)
		}
	}
}

// startSummary begins the initial summary stream into transcript slot 0.
func (s *Session) startSummary(ctx context.Context, epoch uint64, doc *pdfx.Document) {
	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	s.transcript = append(s.transcript, Entry{Role: llm.RoleModel})
	s.chatSeq++
	slot := &chatSlot{s: s, epoch: epoch, seq: s.chatSeq, index: len(s.transcript) - 1}
	s.mu.Unlock()

	ch, err := s.mgr.llm.Summarize(ctx, llm.SummarizeRequest{
		Text:     doc.FullText,
		Language: s.Language,
		FileName: doc.Name,
	})
	if err != nil {
		slot.Fail(localizedCause(s.Language, i18n.SummaryFailed, err))
		return
	}
	go func() {
		err := stream.Run(ctx, ch, slot, func(err error) string {
			return localizedCause(s.Language, i18n.SummaryFailed, err)
		})
		if err == nil {
			slot.done()
		}
	}()
}

// SendMessage appends the user entry and streams the assistant reply into a
// new trailing slot. A message sent while a previous reply is still
// streaming supersedes that stream.
func (s *Session) SendMessage(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("message is empty")
	}

	s.mu.Lock()
	if s.status != StatusReady || s.doc == nil {
		s.mu.Unlock()
		return fmt.Errorf("no document loaded")
	}
	if s.cancel == nil {
		s.mu.Unlock()
		return fmt.Errorf("session closed")
	}
	epoch := s.epoch
	doc := s.doc
	ctx := s.epochContextLocked()
	s.transcript = append(s.transcript,
		Entry{Role: llm.RoleUser, Text: text},
		Entry{Role: llm.RoleModel},
	)
	history := make([]llm.Message, 0, len(s.transcript)-1)
	for _, e := range s.transcript[:len(s.transcript)-1] {
		if e.Text == "" {
			continue
		}
		history = append(history, llm.Message{Role: e.Role, Text: e.Text})
	}
	s.chatSeq++
	slot := &chatSlot{s: s, epoch: epoch, seq: s.chatSeq, index: len(s.transcript) - 1}
	s.mu.Unlock()

	ch, err := s.mgr.llm.Chat(ctx, llm.ChatRequest{
		History:           history,
		SystemInstruction: llm.ChatSystemInstruction(doc.FullText, s.Language),
	})
	if err != nil {
		slot.Fail(localizedCause(s.Language, i18n.ChatFailed, err))
		return nil
	}
	go func() {
		err := stream.Run(ctx, ch, slot, func(err error) string {
			return localizedCause(s.Language, i18n.ChatFailed, err)
		})
		if err == nil {
			slot.done()
		}
	}()
	return nil
}

// Translate streams a translation of text into the translation slot. A new
// request supersedes any translation still in flight.
func (s *Session) Translate(text, language string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("text is empty")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		language = s.Language
	}

	s.mu.Lock()
	epoch := s.epoch
	s.translateSeq++
	s.translation = ""
	slot := &translateSlot{s: s, epoch: epoch, seq: s.translateSeq}
	ctx := s.epochContextLocked()
	s.mu.Unlock()

	ch, err := s.mgr.llm.Translate(ctx, llm.TranslateRequest{
		Text:     text,
		Language: language,
	})
	if err != nil {
		slot.Fail(localizedCause(s.Language, i18n.TranslateFailed, err))
		return nil
	}
	go func() {
		err := stream.Run(ctx, ch, slot, func(err error) string {
			return localizedCause(s.Language, i18n.TranslateFailed, err)
		})
		if err == nil {
			slot.done()
		}
	}()
	return nil
}

// Rename renames the loaded document in the binary cache and the recent
// list. The cache is renamed first; at every step at least one of the two
// names resolves to the bytes.
func (s *Session) Rename(ctx context.Context, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("new name is empty")
	}
	if store.IsReservedName(newName) {
		return &ValidationError{Message: i18n.T(s.Language, i18n.ReservedFileName)}
	}

	s.mu.Lock()
	if s.doc == nil {
		s.mu.Unlock()
		return fmt.Errorf("no document loaded")
	}
	oldName := s.doc.Name
	s.mu.Unlock()

	if oldName == newName {
		return nil
	}
	if s.mgr.blobs != nil {
		if err := store.Rename(ctx, s.mgr.blobs, oldName, newName); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("rename cached binary: %w", err)
		}
	}
	if s.mgr.recent != nil {
		if err := s.mgr.recent.Rename(ctx, oldName, newName); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.mgr.logger.Printf("persist: rename recent %q -> %q: %v", oldName, newName, err)
		}
	}

	s.mu.Lock()
	if s.doc != nil && s.doc.Name == oldName {
		s.doc.Name = newName
		s.updatedAt = time.Now()
	}
	s.mu.Unlock()
	return nil
}
