package llm

import "context"

// FakeClient replays scripted fragments for offline use and tests.
type FakeClient struct {
	Fragments []string
	// FailAfter injects an error after that many fragments when FailWith is
	// set; the remaining fragments are discarded.
	FailAfter int
	FailWith  error
	// LastSummarize/LastChat/LastTranslate record the most recent request of
	// each shape for assertions.
	LastSummarize SummarizeRequest
	LastChat      ChatRequest
	LastTranslate TranslateRequest
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Summarize(ctx context.Context, req SummarizeRequest) (<-chan Chunk, error) {
	f.LastSummarize = req
	return f.replay(ctx), nil
}

func (f *FakeClient) Chat(ctx context.Context, req ChatRequest) (<-chan Chunk, error) {
	f.LastChat = req
	return f.replay(ctx), nil
}

func (f *FakeClient) Translate(ctx context.Context, req TranslateRequest) (<-chan Chunk, error) {
	f.LastTranslate = req
	return f.replay(ctx), nil
}

func (f *FakeClient) replay(ctx context.Context) <-chan Chunk {
	out := make(chan Chunk)
	go func() {
		defer close(out)
		for i, frag := range f.Fragments {
			if f.FailWith != nil && i == f.FailAfter {
				emit(ctx, out, Chunk{Err: f.FailWith})
				return
			}
			if !emit(ctx, out, Chunk{Text: frag}) {
				return
			}
		}
		if f.FailWith != nil && f.FailAfter >= len(f.Fragments) {
			emit(ctx, out, Chunk{Err: f.FailWith})
			return
		}
		emit(ctx, out, Chunk{Done: true})
	}()
	return out
}
