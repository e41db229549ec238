package llm

import (
	"context"
	"log"

	genai "google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = DefaultGeminiModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) Summarize(ctx context.Context, req SummarizeRequest) (<-chan Chunk, error) {
	p := buildSummaryPrompt(req)
	if p.Truncated {
		log.Printf("summary request truncated to %d bytes (%s)", SummaryPrefixLimit, req.FileName)
	}
	contents := []*genai.Content{{Parts: []*genai.Part{{Text: p.Text}}}}
	return g.stream(ctx, contents, nil), nil
}

func (g *GeminiClient) Chat(ctx context.Context, req ChatRequest) (<-chan Chunk, error) {
	contents := make([]*genai.Content, 0, len(req.History))
	for _, msg := range req.History {
		contents = append(contents, &genai.Content{
			Role:  string(msg.Role),
			Parts: []*genai.Part{{Text: msg.Text}},
		})
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.SystemInstruction}}},
	}
	return g.stream(ctx, contents, cfg), nil
}

func (g *GeminiClient) Translate(ctx context.Context, req TranslateRequest) (<-chan Chunk, error) {
	contents := []*genai.Content{{Parts: []*genai.Part{{Text: buildTranslatePrompt(req)}}}}
	return g.stream(ctx, contents, nil), nil
}

// stream adapts the genai response iterator to the Chunk channel contract:
// fragments in arrival order, then exactly one terminal chunk.
func (g *GeminiClient) stream(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) <-chan Chunk {
	out := make(chan Chunk)
	go func() {
		defer close(out)
		for resp, err := range g.cli.Models.GenerateContentStream(ctx, g.model, contents, cfg) {
			if err != nil {
				emit(ctx, out, Chunk{Err: err})
				return
			}
			if text := resp.Text(); text != "" {
				if !emit(ctx, out, Chunk{Text: text}) {
					return
				}
			}
		}
		emit(ctx, out, Chunk{Done: true})
	}()
	return out
}

func emit(ctx context.Context, out chan<- Chunk, c Chunk) bool {
	select {
	case out <- c:
		return true
	case <-ctx.Done():
		return false
	}
}
