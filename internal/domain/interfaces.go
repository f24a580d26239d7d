package domain

import "context"

// Chunk is a contiguous slice of the reference document. Index is the
// chunk's stable position in the split sequence; the vector stored at the
// same position in the index belongs to it.
type Chunk struct {
	Index int
	Text  string
}

// Turn is one (user utterance, agent reply) exchange in a conversation.
type Turn struct {
	User  string
	Agent string
}

// SearchResult is a retrieved chunk position with its squared-L2 distance
// from the query vector.
type SearchResult struct {
	Index    int
	Distance float64
}

// Embedder converts text into a fixed-length vector via an external
// embedding model.
type Embedder interface {
	// Embed embeds a single query text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedDocuments embeds document chunks in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// LLM generates a reply from a fully composed prompt.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chunker splits a document into retrieval chunks.
type Chunker interface {
	Chunk(document string) ([]Chunk, error)
}

// Transcriber converts recorded audio into text via an external
// speech-recognition service.
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (string, error)
}

// Synthesizer converts reply text into playable audio bytes via an
// external text-to-speech service.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
