// Package session owns the document lifecycle: upload, extraction, the chat
// transcript, and the streaming calls against the generation service. All
// mutation goes through named transitions (Upload, SendMessage, Translate,
// Reset, Rename); views read snapshots.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"pdfassist/internal/i18n"
	"pdfassist/internal/llm"
	"pdfassist/internal/pdfx"
	"pdfassist/internal/render"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
)

type Tool string

const (
	ToolHome      Tool = "home"
	ToolSummarize Tool = "summarize"
	ToolTranslate Tool = "translate"
	ToolConvert   Tool = "convert"
)

// Entry is one transcript row. An assistant entry with empty text marks a
// response still in flight.
type Entry struct {
	Role llm.Role `json:"role"`
	Text string   `json:"text"`
}

// ValidationError reports a rejected upload or rename (wrong file type,
// reserved name). The session state is unchanged; the user may retry.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Session is the single mutable state behind one open document. Continuations
// from cancelled operations are fenced by the epoch: any async callback
// captured under an older epoch finds the comparison failing and drops its
// write.
type Session struct {
	ID       string
	Language string

	mgr *Manager

	mu           sync.Mutex
	epoch        uint64
	epochCtx     context.Context
	cancel       context.CancelFunc
	status       Status
	tool         Tool
	doc          *pdfx.Document
	renderer     *render.Renderer
	progress     int
	transcript   []Entry
	chatSeq      uint64
	translation  string
	translateSeq uint64
	updatedAt    time.Time

	watchers    map[uint64]chan Update
	nextWatcher uint64
}

// Update is one observable mutation of a streaming slot, delivered to
// watchers in application order.
type Update struct {
	Slot   string `json:"slot"` // "chat" or "translation"
	Index  int    `json:"index,omitempty"`
	Text   string `json:"text"`
	Done   bool   `json:"done,omitempty"`
	Failed bool   `json:"failed,omitempty"`
}

// Watch registers a transcript observer. The returned cancel func must be
// called when the observer goes away. Slow observers lose intermediate
// updates rather than blocking the stream.
func (s *Session) Watch() (<-chan Update, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watchers == nil {
		s.watchers = make(map[uint64]chan Update)
	}
	id := s.nextWatcher
	s.nextWatcher++
	ch := make(chan Update, 64)
	s.watchers[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

func (s *Session) notifyLocked(u Update) {
	for _, ch := range s.watchers {
		select {
		case ch <- u:
		default:
		}
	}
}

func (s *Session) notify(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked(u)
}

// Snapshot is a read-only copy of the session state for presentation.
type Snapshot struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	Tool        Tool      `json:"tool"`
	Language    string    `json:"language"`
	FileName    string    `json:"fileName,omitempty"`
	PageCount   int       `json:"pageCount,omitempty"`
	Progress    int       `json:"progress"`
	Transcript  []Entry   `json:"transcript"`
	Translation string    `json:"translation,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:          s.ID,
		Status:      s.status,
		Tool:        s.tool,
		Language:    s.Language,
		Progress:    s.progress,
		Translation: s.translation,
		UpdatedAt:   s.updatedAt,
	}
	if s.doc != nil {
		snap.FileName = s.doc.Name
		snap.PageCount = s.doc.PageCount
	}
	snap.Transcript = make([]Entry, len(s.transcript))
	copy(snap.Transcript, s.transcript)
	return snap
}

// Status returns the current state without copying the transcript.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Progress reports extraction progress in [0,100]; advisory only.
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// SetTool switches the active feature without touching the document.
func (s *Session) SetTool(tool Tool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tool = tool
	s.updatedAt = time.Now()
}

// Document returns the loaded document, or nil outside Ready.
func (s *Session) Document() *pdfx.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Renderer lazily builds the page renderer for the loaded document.
// Thumbnails and rasters are cached on it for the life of the document.
func (s *Session) Renderer() (*render.Renderer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if s.renderer != nil {
		return s.renderer, nil
	}
	r, err := render.New(s.doc.Data)
	if err != nil {
		return nil, fmt.Errorf("open renderer: %w", err)
	}
	s.renderer = r
	return r, nil
}

// beginEpoch cancels whatever the previous epoch still had in flight and
// hands out a context fenced to the new epoch.
func (s *Session) beginEpoch() (context.Context, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginEpochLocked()
}

func (s *Session) beginEpochLocked() (context.Context, uint64) {
	if s.cancel != nil {
		s.cancel()
	}
	s.epoch++
	ctx, cancel := context.WithCancel(context.Background())
	s.epochCtx = ctx
	s.cancel = cancel
	return ctx, s.epoch
}

// epochContextLocked returns the context tied to the current epoch,
// creating one for a session that has not run anything yet. Caller holds
// s.mu.
func (s *Session) epochContextLocked() context.Context {
	if s.epochCtx == nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.epochCtx = ctx
		s.cancel = cancel
	}
	return s.epochCtx
}

// resetLocked discards the document, full text, transcript, and progress.
// The recent-file list is deliberately untouched.
func (s *Session) resetLocked() {
	s.status = StatusIdle
	s.doc = nil
	if s.renderer != nil {
		s.renderer.Close()
		s.renderer = nil
	}
	s.progress = 0
	s.transcript = nil
	s.translation = ""
	s.chatSeq++
	s.translateSeq++
	s.updatedAt = time.Now()
}

// Reset returns the session to Idle and fences out every in-flight
// continuation from the previous epoch.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beginEpochLocked()
	s.resetLocked()
}

// Close releases the renderer and cancels in-flight work.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.epochCtx = nil
	}
	if s.renderer != nil {
		s.renderer.Close()
		s.renderer = nil
	}
}

// chatSlot drives the trailing assistant entry at a fixed index. Writes are
// fenced by both the session epoch and the chat stream sequence, so a
// superseded or post-reset stream can never touch live state.
type chatSlot struct {
	s     *Session
	epoch uint64
	seq   uint64
	index int
}

func (c *chatSlot) SetText(text string) bool {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.epoch != c.epoch || c.s.chatSeq != c.seq {
		return false
	}
	if c.index < 0 || c.index >= len(c.s.transcript) {
		return false
	}
	c.s.transcript[c.index].Text = text
	c.s.updatedAt = time.Now()
	c.s.notifyLocked(Update{Slot: "chat", Index: c.index, Text: text})
	return true
}

func (c *chatSlot) Fail(message string) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.epoch != c.epoch || c.s.chatSeq != c.seq {
		return
	}
	if c.index < 0 || c.index >= len(c.s.transcript) {
		return
	}
	c.s.transcript[c.index].Text = message
	c.s.updatedAt = time.Now()
	c.s.notifyLocked(Update{Slot: "chat", Index: c.index, Text: message, Failed: true})
}

// done reports stream completion to watchers if the slot is still live.
func (c *chatSlot) done() {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if c.s.epoch != c.epoch || c.s.chatSeq != c.seq {
		return
	}
	c.s.notifyLocked(Update{Slot: "chat", Index: c.index, Done: true})
}

// translateSlot drives the single translation output slot.
type translateSlot struct {
	s     *Session
	epoch uint64
	seq   uint64
}

func (t *translateSlot) SetText(text string) bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.epoch != t.epoch || t.s.translateSeq != t.seq {
		return false
	}
	t.s.translation = text
	t.s.updatedAt = time.Now()
	t.s.notifyLocked(Update{Slot: "translation", Text: text})
	return true
}

func (t *translateSlot) Fail(message string) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.epoch != t.epoch || t.s.translateSeq != t.seq {
		return
	}
	t.s.translation = message
	t.s.updatedAt = time.Now()
	t.s.notifyLocked(Update{Slot: "translation", Text: message, Failed: true})
}

func (t *translateSlot) done() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.epoch != t.epoch || t.s.translateSeq != t.seq {
		return
	}
	t.s.notifyLocked(Update{Slot: "translation", Done: true})
}

func localizedCause(language string, key i18n.Key, err error) string {
	cause := "unknown error"
	if err != nil {
		cause = strings.TrimSpace(err.Error())
	}
	return i18n.Tf(language, key, cause)
}
