// Package engine implements the retrieval-augmented response pipeline:
// embed the query, retrieve the nearest guideline chunks, compose a
// grounded prompt with the full conversation history, invoke the language
// model, and commit the exchange to the session.
package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/PjVineeth/vocab-assist/internal/domain"
	"github.com/PjVineeth/vocab-assist/internal/session"
	"github.com/PjVineeth/vocab-assist/internal/vectorindex"
)

// Fixed fallback replies. Retrieval and generation failures never escape
// Answer; the caller always gets one of these or a generated reply.
const (
	NoContextReply        = "Sorry, I couldn't find any relevant information in the guidelines."
	GenerationFailedReply = "Sorry, there was an error generating a response."
)

// Options configures the engine.
type Options struct {
	TopK     int
	Persona  string
	Company  string
	Greeting string
	// RecordDegradedTurns appends {query, degraded reply} to the session
	// when retrieval or generation fails. Off by default, so failed calls
	// leave the conversational record untouched.
	RecordDegradedTurns bool
}

// Engine orchestrates retrieval and generation over an in-process index.
type Engine struct {
	chunker  domain.Chunker
	embedder domain.Embedder
	llm      domain.LLM
	opts     Options

	// mu guards chunks+index as a pair so a rebuild swaps both at once.
	mu     sync.RWMutex
	chunks []domain.Chunk
	index  *vectorindex.Index
}

// New creates an engine. The index starts unavailable until BuildIndex
// succeeds; Answer degrades gracefully in the meantime.
func New(chunker domain.Chunker, embedder domain.Embedder, llm domain.LLM, opts Options) *Engine {
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	return &Engine{
		chunker:  chunker,
		embedder: embedder,
		llm:      llm,
		opts:     opts,
		index:    vectorindex.New(),
	}
}

// BuildIndex chunks the document, embeds every chunk, and swaps in a fresh
// index aligned with the chunk sequence. On failure the previous index, if
// any, stays in service.
func (e *Engine) BuildIndex(ctx context.Context, document string) error {
	chunks, err := e.chunker.Chunk(document)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return domain.ErrEmptyDocument
	}
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("%w: %d vectors for %d chunks", domain.ErrEmbeddingService, len(vectors), len(chunks))
	}
	idx := vectorindex.New()
	if err := idx.Build(vectors); err != nil {
		return err
	}
	e.mu.Lock()
	e.chunks = chunks
	e.index = idx
	e.mu.Unlock()
	return nil
}

// Ready reports whether the index can serve retrieval.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index.State() == vectorindex.StateReady
}

// ChunkCount returns the size of the indexed chunk sequence.
func (e *Engine) ChunkCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.chunks)
}

// Answer runs one conversational turn. On success it appends exactly one
// turn to the session and returns the generated reply; on any retrieval or
// generation failure it returns a fixed degraded reply and, unless
// configured otherwise, leaves the session untouched.
func (e *Engine) Answer(ctx context.Context, sess *session.Session, query string) string {
	sess.EnsureGreeting(e.opts.Greeting)

	guidance, ok := e.retrieve(ctx, query)
	if !ok {
		return e.degrade(sess, query, NoContextReply)
	}

	isFirst := sess.Len() <= 1
	prompt := e.composePrompt(query, guidance, sess.History(), isFirst)

	reply, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		log.Printf("generation failed: %v", err)
		return e.degrade(sess, query, GenerationFailedReply)
	}

	sess.Append(domain.Turn{User: query, Agent: reply})
	return reply
}

// retrieve embeds the query, searches the index, and resolves the hits
// back to chunk text joined by blank lines, closest first.
func (e *Engine) retrieve(ctx context.Context, query string) (string, bool) {
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		log.Printf("query embedding failed: %v", err)
		return "", false
	}

	e.mu.RLock()
	chunks, idx := e.chunks, e.index
	e.mu.RUnlock()

	results, err := idx.Search(vec, e.opts.TopK)
	if err != nil {
		log.Printf("retrieval failed: %v", err)
		return "", false
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(chunks) {
			continue
		}
		parts = append(parts, chunks[r.Index].Text)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n\n"), true
}

func (e *Engine) degrade(sess *session.Session, query, reply string) string {
	if e.opts.RecordDegradedTurns {
		sess.Append(domain.Turn{User: query, Agent: reply})
	}
	return reply
}

func (e *Engine) composePrompt(query, guidance string, history []domain.Turn, isFirst bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s responding directly to a customer.\n", e.opts.Persona)
	fmt.Fprintf(&b, "The customer has come to you specifically for an issue related to %s and not just a normal query.\n", e.opts.Company)
	b.WriteString("Use these guidelines to inform your response:\n")
	b.WriteString(guidance)
	b.WriteString("\n\nUser's query: ")
	b.WriteString(query)
	b.WriteString("\n\nPrevious conversation history:\n")
	b.WriteString(serializeHistory(history))
	if !isFirst {
		b.WriteString("\n\nIMPORTANT: DO NOT use greetings like Good Morning/Afternoon/Evening again as you've already greeted the customer.")
	}
	b.WriteString("\n\nIMPORTANT INSTRUCTIONS:\n")
	b.WriteString("1. Respond DIRECTLY to the user as if in a conversation\n")
	b.WriteString("2. DO NOT include meta-commentary like \"Here's my response\" or \"Following the guidelines\"\n")
	b.WriteString("3. DO NOT narrate your actions or thought process\n")
	b.WriteString("4. Keep responses helpful and concise\n")
	b.WriteString("5. Follow the guidelines provided\n")
	b.WriteString("6. Do not repeat information from previous messages\n")
	return b.String()
}

// serializeHistory replays the whole turn log as alternating User/Agent
// lines in append order. No truncation or summarization.
func serializeHistory(history []domain.Turn) string {
	lines := make([]string, 0, len(history))
	for _, t := range history {
		lines = append(lines, fmt.Sprintf("User: %s\nAgent: %s", t.User, t.Agent))
	}
	return strings.Join(lines, "\n")
}
