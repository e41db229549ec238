// Package stream turns an incremental fragment feed from the generation
// service into accumulating transcript state. One loop serves all call
// sites (summarize, chat, translate).
package stream

import (
	"context"
	"errors"
	"strings"

	"pdfassist/internal/llm"
)

// ErrSuperseded is returned when the target slot stopped accepting writes,
// which happens when the session was reset or a newer stream took over the
// slot.
var ErrSuperseded = errors.New("stream: slot superseded")

// SlotWriter is one transcript slot under active mutation. SetText replaces
// the slot's whole text with the concatenation so far and reports whether the
// write was applied; a false return means the slot is stale and the consumer
// must stop. Fail replaces the slot wholesale with a user-facing error
// message, discarding any partial output.
type SlotWriter interface {
	SetText(text string) bool
	Fail(message string)
}

// Run applies fragments from ch to slot in arrival order. The slot's text
// passes through every prefix of the final text, in order, with no skipped or
// reordered intermediate states. errMessage renders the localized wholesale
// replacement for a failed stream.
func Run(ctx context.Context, ch <-chan llm.Chunk, slot SlotWriter, errMessage func(cause error) string) error {
	var acc strings.Builder
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				// Producer vanished without a terminal chunk; treat as done.
				return nil
			}
			switch {
			case chunk.Err != nil:
				slot.Fail(errMessage(chunk.Err))
				return chunk.Err
			case chunk.Done:
				return nil
			default:
				acc.WriteString(chunk.Text)
				if !slot.SetText(acc.String()) {
					return ErrSuperseded
				}
			}
		}
	}
}
