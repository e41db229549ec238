package stream

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"pdfassist/internal/llm"
)

type recordingSlot struct {
	states []string
	failed string
	dead   bool
}

func (s *recordingSlot) SetText(text string) bool {
	if s.dead {
		return false
	}
	s.states = append(s.states, text)
	return true
}

func (s *recordingSlot) Fail(message string) {
	if s.dead {
		return
	}
	s.failed = message
}

func feed(chunks ...llm.Chunk) <-chan llm.Chunk {
	ch := make(chan llm.Chunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func TestRunAppliesFragmentsInOrder(t *testing.T) {
	slot := &recordingSlot{}
	err := Run(context.Background(),
		feed(llm.Chunk{Text: "Hel"}, llm.Chunk{Text: "lo, "}, llm.Chunk{Text: "world"}, llm.Chunk{Done: true}),
		slot, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"Hel", "Hello, ", "Hello, world"}, slot.states)
	require.Empty(t, slot.failed)
}

func TestRunReplacesPartialOutputOnError(t *testing.T) {
	slot := &recordingSlot{}
	cause := errors.New("service unavailable")
	err := Run(context.Background(),
		feed(llm.Chunk{Text: "partial"}, llm.Chunk{Err: cause}),
		slot,
		func(c error) string { return fmt.Sprintf("generation failed: %v", c) })
	require.ErrorIs(t, err, cause)
	require.Equal(t, "generation failed: service unavailable", slot.failed)
}

// limitedSlot goes stale after a fixed number of accepted writes, the way a
// slot does when a reset lands between fragments.
type limitedSlot struct {
	recordingSlot
	allow int
}

func (s *limitedSlot) SetText(text string) bool {
	if len(s.states) >= s.allow {
		return false
	}
	return s.recordingSlot.SetText(text)
}

func TestRunStopsWhenSlotSuperseded(t *testing.T) {
	slot := &limitedSlot{allow: 1}
	got := Run(context.Background(),
		feed(llm.Chunk{Text: "a"}, llm.Chunk{Text: "b"}, llm.Chunk{Done: true}),
		slot, nil)
	require.ErrorIs(t, got, ErrSuperseded)
	require.Equal(t, []string{"a"}, slot.states)
}

func TestRunHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slot := &recordingSlot{}
	ch := make(chan llm.Chunk) // never delivers
	err := Run(ctx, ch, slot, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, slot.states)
}

func TestRunTreatsClosedChannelAsDone(t *testing.T) {
	slot := &recordingSlot{}
	err := Run(context.Background(), feed(llm.Chunk{Text: "x"}), slot, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"x"}, slot.states)
}
