package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pdfassist/internal/i18n"
	"pdfassist/internal/llm"
	"pdfassist/internal/pdfx"
	"pdfassist/internal/store"
)

// fakeOpen skips real PDF parsing and fabricates a three-page document.
func fakeOpen(ctx context.Context, name string, data []byte, password string, report func(int)) (*pdfx.Document, error) {
	if report != nil {
		report(30)
		report(100)
	}
	pages := []string{"Intro", "Body", "Conclusion"}
	return &pdfx.Document{
		Name:      name,
		Data:      data,
		PageCount: len(pages),
		Pages:     pages,
		FullText:  pdfx.JoinPages(pages),
	}, nil
}

type memBlobs struct {
	mu    sync.Mutex
	blobs map[string]store.Blob
}

func newMemBlobs() *memBlobs { return &memBlobs{blobs: make(map[string]store.Blob)} }

func (m *memBlobs) Put(_ context.Context, name string, blob store.Blob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[name] = blob
	return nil
}

func (m *memBlobs) Get(_ context.Context, name string) (store.Blob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[name]
	if !ok {
		return store.Blob{}, store.ErrNotFound
	}
	return blob, nil
}

func (m *memBlobs) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, name)
	return nil
}

func newTestManager(t *testing.T, client llm.StreamClient) (*Manager, *memBlobs) {
	t.Helper()
	blobs := newMemBlobs()
	mgr := NewManager(ManagerConfig{
		LLM:             client,
		Blobs:           blobs,
		Recent:          store.NewRecentStore(blobs),
		DefaultLanguage: i18n.English,
		Open:            fakeOpen,
	})
	return mgr, blobs
}

func waitForStatus(t *testing.T, s *Session, want Status) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.Status() == want
	}, 2*time.Second, 5*time.Millisecond)
}

func waitForTranscript(t *testing.T, s *Session, index int, want string) {
	t.Helper()
	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return index < len(snap.Transcript) && snap.Transcript[index].Text == want
	}, 2*time.Second, 5*time.Millisecond)
}

func TestUploadRejectsNonPDF(t *testing.T) {
	mgr, _ := newTestManager(t, &llm.FakeClient{})
	s := mgr.NewSession(ToolSummarize, i18n.English)

	err := s.Upload("notes.txt", []byte("hello"), "text/plain", "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, i18n.T(i18n.English, i18n.InvalidFileType), verr.Message)
	require.Equal(t, StatusIdle, s.Status())
}

func TestUploadStartsSummary(t *testing.T) {
	client := &llm.FakeClient{Fragments: []string{"A short ", "summary."}}
	mgr, blobs := newTestManager(t, client)
	s := mgr.NewSession(ToolSummarize, i18n.English)

	require.NoError(t, s.Upload("paper.pdf", []byte("%PDF"), "application/pdf", ""))
	require.Equal(t, StatusReady, s.Status())

	snap := s.Snapshot()
	require.Equal(t, "paper.pdf", snap.FileName)
	require.Equal(t, 3, snap.PageCount)
	require.Equal(t, 100, snap.Progress)

	waitForTranscript(t, s, 0, "A short summary.")
	require.Equal(t, llm.RoleModel, s.Snapshot().Transcript[0].Role)

	require.Equal(t, "Intro\n\nBody\n\nConclusion\n\n", client.LastSummarize.Text)
	require.Equal(t, "paper.pdf", client.LastSummarize.FileName)
	require.Equal(t, i18n.English, client.LastSummarize.Language)

	// The binary is cached under the file name and the recent list updated.
	blob, err := blobs.Get(context.Background(), "paper.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF"), blob.Data)
	entries, err := mgr.Recent().List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "paper.pdf", entries[0].Name)
}

func TestUploadTranslateToolSkipsSummary(t *testing.T) {
	client := &llm.FakeClient{Fragments: []string{"never"}}
	mgr, _ := newTestManager(t, client)
	s := mgr.NewSession(ToolTranslate, i18n.English)

	require.NoError(t, s.Upload("paper.pdf", []byte("%PDF"), "application/pdf", ""))
	require.Equal(t, StatusReady, s.Status())
	require.Empty(t, s.Snapshot().Transcript)
	require.Empty(t, client.LastSummarize.Text)
}

func TestSendMessageStreamsReply(t *testing.T) {
	client := &llm.FakeClient{Fragments: []string{"Hel", "lo, ", "world"}}
	mgr, _ := newTestManager(t, client)
	s := mgr.NewSession(ToolSummarize, i18n.English)

	require.NoError(t, s.Upload("paper.pdf", []byte("%PDF"), "application/pdf", ""))
	waitForTranscript(t, s, 0, "Hello, world")

	require.NoError(t, s.SendMessage("What is this about?"))
	waitForTranscript(t, s, 2, "Hello, world")

	snap := s.Snapshot()
	require.Len(t, snap.Transcript, 3)
	require.Equal(t, llm.RoleUser, snap.Transcript[1].Role)
	require.Equal(t, "What is this about?", snap.Transcript[1].Text)

	require.Contains(t, client.LastChat.SystemInstruction, "Intro\n\nBody\n\nConclusion")
	require.Contains(t, client.LastChat.SystemInstruction, i18n.English)
	require.Equal(t, "What is this about?", client.LastChat.History[len(client.LastChat.History)-1].Text)
}

func TestSendMessageRequiresDocument(t *testing.T) {
	mgr, _ := newTestManager(t, &llm.FakeClient{})
	s := mgr.NewSession(ToolSummarize, i18n.English)
	require.Error(t, s.SendMessage("hello"))
}

func TestGenerationFailureKeepsSessionReady(t *testing.T) {
	client := &llm.FakeClient{
		Fragments: []string{"partial "},
		FailAfter: 1,
		FailWith:  errors.New("service unavailable"),
	}
	mgr, _ := newTestManager(t, client)
	s := mgr.NewSession(ToolSummarize, i18n.English)

	require.NoError(t, s.Upload("paper.pdf", []byte("%PDF"), "application/pdf", ""))
	want := i18n.Tf(i18n.English, i18n.SummaryFailed, "service unavailable")
	waitForTranscript(t, s, 0, want)
	require.Equal(t, StatusReady, s.Status())
}

func TestTranslateStreamsIntoTranslationSlot(t *testing.T) {
	client := &llm.FakeClient{Fragments: []string{"Bon", "jour"}}
	mgr, _ := newTestManager(t, client)
	s := mgr.NewSession(ToolTranslate, i18n.English)

	require.NoError(t, s.Translate("Hello", i18n.Japanese))
	require.Eventually(t, func() bool {
		return s.Snapshot().Translation == "Bonjour"
	}, 2*time.Second, 5*time.Millisecond)

	require.Equal(t, "Hello", client.LastTranslate.Text)
	require.Equal(t, i18n.Japanese, client.LastTranslate.Language)
}

// blockingClient parks every stream until release is closed, then delivers
// its fragments.
type blockingClient struct {
	llm.FakeClient
	release chan struct{}
}

func (b *blockingClient) Summarize(ctx context.Context, req llm.SummarizeRequest) (<-chan llm.Chunk, error) {
	inner, err := b.FakeClient.Summarize(ctx, req)
	if err != nil {
		return nil, err
	}
	out := make(chan llm.Chunk)
	go func() {
		defer close(out)
		<-b.release
		for c := range inner {
			out <- c
		}
	}()
	return out, nil
}

func TestResetFencesLateFragments(t *testing.T) {
	client := &blockingClient{
		FakeClient: llm.FakeClient{Fragments: []string{"stale summary"}},
		release:    make(chan struct{}),
	}
	mgr, _ := newTestManager(t, client)
	s := mgr.NewSession(ToolSummarize, i18n.English)

	require.NoError(t, s.Upload("paper.pdf", []byte("%PDF"), "application/pdf", ""))
	require.Equal(t, StatusReady, s.Status())

	s.Reset()
	require.Equal(t, StatusIdle, s.Status())
	require.Empty(t, s.Snapshot().Transcript)

	// Release the cancelled stream; its fragments must not resurrect state.
	close(client.release)
	time.Sleep(50 * time.Millisecond)
	snap := s.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.Empty(t, snap.Transcript)
}

func TestNewUploadSupersedesOldStream(t *testing.T) {
	client := &blockingClient{
		FakeClient: llm.FakeClient{Fragments: []string{"the summary"}},
		release:    make(chan struct{}),
	}
	mgr, _ := newTestManager(t, client)
	s := mgr.NewSession(ToolSummarize, i18n.English)

	require.NoError(t, s.Upload("first.pdf", []byte("%PDF1"), "application/pdf", ""))

	// Second upload bumps the epoch while the first summary is parked.
	require.NoError(t, s.Upload("second.pdf", []byte("%PDF2"), "application/pdf", ""))
	close(client.release)

	waitForTranscript(t, s, 0, "the summary")
	snap := s.Snapshot()
	require.Equal(t, "second.pdf", snap.FileName)
	require.Equal(t, "second.pdf", client.LastSummarize.FileName)
	// The first upload's stream was fenced out; only one slot exists.
	require.Len(t, snap.Transcript, 1)
}

func TestRecentListCappedAcrossUploads(t *testing.T) {
	mgr, _ := newTestManager(t, &llm.FakeClient{})
	s := mgr.NewSession(ToolTranslate, i18n.English)

	for i := 0; i < store.MaxRecentEntries+1; i++ {
		name := fmt.Sprintf("doc-%02d.pdf", i)
		require.NoError(t, s.Upload(name, []byte(name), "application/pdf", ""))
	}

	entries, err := mgr.Recent().List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, store.MaxRecentEntries)
	require.Equal(t, "doc-20.pdf", entries[0].Name)
	for _, e := range entries {
		require.NotEqual(t, "doc-00.pdf", e.Name)
	}
}

func TestRenameMovesBinaryAndRecentEntry(t *testing.T) {
	mgr, blobs := newTestManager(t, &llm.FakeClient{})
	s := mgr.NewSession(ToolTranslate, i18n.English)
	ctx := context.Background()

	require.NoError(t, s.Upload("A.pdf", []byte("doc-bytes"), "application/pdf", ""))
	require.NoError(t, s.Rename(ctx, "B.pdf"))

	blob, err := blobs.Get(ctx, "B.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("doc-bytes"), blob.Data)
	_, err = blobs.Get(ctx, "A.pdf")
	require.ErrorIs(t, err, store.ErrNotFound)

	entries, err := mgr.Recent().List(ctx)
	require.NoError(t, err)
	var haveNames []string
	for _, e := range entries {
		haveNames = append(haveNames, e.Name)
	}
	require.Contains(t, haveNames, "B.pdf")
	require.NotContains(t, haveNames, "A.pdf")
	require.Equal(t, "B.pdf", s.Snapshot().FileName)
}

func TestUploadPasswordErrorsResetToIdle(t *testing.T) {
	mgr, _ := newTestManager(t, &llm.FakeClient{})
	mgr.open = func(_ context.Context, _ string, _ []byte, password string, report func(int)) (*pdfx.Document, error) {
		if report != nil {
			report(30)
		}
		if password == "" {
			return nil, pdfx.ErrPasswordRequired
		}
		return nil, pdfx.ErrIncorrectPassword
	}
	s := mgr.NewSession(ToolSummarize, i18n.English)

	err := s.Upload("locked.pdf", []byte("%PDF"), "application/pdf", "")
	require.ErrorIs(t, err, pdfx.ErrPasswordRequired)
	require.Equal(t, StatusIdle, s.Status())
	require.Zero(t, s.Progress())

	// The retry with a wrong password is terminal for this attempt too.
	err = s.Upload("locked.pdf", []byte("%PDF"), "application/pdf", "wrong")
	require.ErrorIs(t, err, pdfx.ErrIncorrectPassword)
	require.Equal(t, StatusIdle, s.Status())
	require.Empty(t, s.Snapshot().Transcript)
	require.Empty(t, s.Snapshot().FileName)
}

func TestUploadRejectsReservedName(t *testing.T) {
	mgr, _ := newTestManager(t, &llm.FakeClient{})
	s := mgr.NewSession(ToolSummarize, i18n.English)

	var verr *ValidationError
	err := s.Upload("recent-files.json", []byte("%PDF"), "application/pdf", "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, StatusIdle, s.Status())

	// The list itself must still be intact after the rejected upload.
	require.NoError(t, s.Upload("ok.pdf", []byte("%PDF"), "application/pdf", ""))
	waitForStatus(t, s, StatusReady)
	entries, err := mgr.Recent().List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "ok.pdf", entries[0].Name)

	require.ErrorAs(t, s.Rename(context.Background(), "recent-files.json"), &verr)
	require.Equal(t, "ok.pdf", s.Snapshot().FileName)
}

func TestUploadFailureResetsToIdle(t *testing.T) {
	loadErr := &pdfx.LoadError{Cause: errors.New("bad xref")}
	mgr, _ := newTestManager(t, &llm.FakeClient{})
	mgr.open = func(context.Context, string, []byte, string, func(int)) (*pdfx.Document, error) {
		return nil, loadErr
	}
	s := mgr.NewSession(ToolSummarize, i18n.English)

	err := s.Upload("broken.pdf", []byte("junk"), "application/pdf", "")
	var lerr *pdfx.LoadError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, StatusIdle, s.Status())
	require.True(t, strings.Contains(err.Error(), "bad xref"))
}
