package llm

import "context"

// Role mirrors the generation service's two-party transcript model.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one transcript entry sent as chat context.
type Message struct {
	Role Role
	Text string
}

// Chunk is the tagged stream variant: a text fragment, a terminal Done
// marker, or a terminal error. End-of-stream is explicit and distinct from
// failure. After a Done or Err chunk no further chunks are sent.
type Chunk struct {
	Text string
	Done bool
	Err  error
}

type SummarizeRequest struct {
	Text     string
	Language string
	FileName string
}

type ChatRequest struct {
	History           []Message
	SystemInstruction string
}

type TranslateRequest struct {
	Text     string
	Language string
}

// StreamClient is the generation service boundary. Each call returns a
// channel that delivers in-order fragments and is closed after the terminal
// chunk. Implementations must stop sending promptly when ctx is cancelled.
type StreamClient interface {
	Name() string
	Summarize(ctx context.Context, req SummarizeRequest) (<-chan Chunk, error)
	Chat(ctx context.Context, req ChatRequest) (<-chan Chunk, error)
	Translate(ctx context.Context, req TranslateRequest) (<-chan Chunk, error)
	Close() error
}
