package llm

import (
	"context"
	"log"
)

// WithLogging logs request sizes and stream setup errors. Provide a custom
// logger or nil to use log.Default().
func WithLogging(next StreamClient, logger *log.Logger) StreamClient {
	if logger == nil {
		logger = log.Default()
	}
	return &logging{next: next, log: logger}
}

type logging struct {
	next StreamClient
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Summarize(ctx context.Context, req SummarizeRequest) (<-chan Chunk, error) {
	l.log.Printf("LLM summarize (%s): %d bytes, language=%s", l.next.Name(), len(req.Text), req.Language)
	ch, err := l.next.Summarize(ctx, req)
	if err != nil {
		l.log.Printf("LLM summarize error: %v", err)
	}
	return ch, err
}

func (l *logging) Chat(ctx context.Context, req ChatRequest) (<-chan Chunk, error) {
	l.log.Printf("LLM chat (%s): %d transcript entries, %d byte instruction", l.next.Name(), len(req.History), len(req.SystemInstruction))
	ch, err := l.next.Chat(ctx, req)
	if err != nil {
		l.log.Printf("LLM chat error: %v", err)
	}
	return ch, err
}

func (l *logging) Translate(ctx context.Context, req TranslateRequest) (<-chan Chunk, error) {
	l.log.Printf("LLM translate (%s): %d bytes to %s", l.next.Name(), len(req.Text), req.Language)
	ch, err := l.next.Translate(ctx, req)
	if err != nil {
		l.log.Printf("LLM translate error: %v", err)
	}
	return ch, err
}
