package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan Chunk) []Chunk {
	t.Helper()
	var out []Chunk
	for c := range ch {
		out = append(out, c)
	}
	return out
}

func TestFakeClientReplaysInOrder(t *testing.T) {
	f := &FakeClient{Fragments: []string{"Hel", "lo, ", "world"}}
	ch, err := f.Summarize(context.Background(), SummarizeRequest{Text: "t", Language: "English"})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 4)
	require.Equal(t, "Hel", chunks[0].Text)
	require.Equal(t, "lo, ", chunks[1].Text)
	require.Equal(t, "world", chunks[2].Text)
	require.True(t, chunks[3].Done)
}

func TestFakeClientFailsMidStream(t *testing.T) {
	boom := errors.New("boom")
	f := &FakeClient{Fragments: []string{"a", "b", "c"}, FailAfter: 1, FailWith: boom}
	ch, err := f.Chat(context.Background(), ChatRequest{})
	require.NoError(t, err)

	chunks := collect(t, ch)
	require.Len(t, chunks, 2)
	require.Equal(t, "a", chunks[0].Text)
	require.ErrorIs(t, chunks[1].Err, boom)
}

func TestFakeClientStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &FakeClient{Fragments: []string{"a", "b"}}
	ch, err := f.Translate(ctx, TranslateRequest{Text: "x", Language: "English"})
	require.NoError(t, err)
	// The producer must give up rather than block on a cancelled consumer.
	chunks := collect(t, ch)
	require.Empty(t, chunks)
}
