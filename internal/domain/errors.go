package domain

import "errors"

// Failure classes the response engine absorbs into degraded replies.
// All four are recoverable from the process's point of view; only an
// empty document at startup prevents the engine from becoming ready.
var (
	// ErrEmptyDocument means the reference document produced zero chunks.
	ErrEmptyDocument = errors.New("document produced no chunks")

	// ErrEmbeddingService means the embedding service call failed or
	// returned no vector.
	ErrEmbeddingService = errors.New("embedding service failed")

	// ErrLanguageModel means reply generation failed or returned empty
	// content.
	ErrLanguageModel = errors.New("language model failed")

	// ErrIndexUnavailable means the vector index was queried while not in
	// the ready state.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
