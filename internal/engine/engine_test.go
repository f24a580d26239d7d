package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PjVineeth/vocab-assist/internal/chunker"
	"github.com/PjVineeth/vocab-assist/internal/domain"
	"github.com/PjVineeth/vocab-assist/internal/session"
	"github.com/PjVineeth/vocab-assist/internal/vectorindex"
)

// mockEmbedder embeds text as a 2d vector keyed by a lookup table.
type mockEmbedder struct {
	vectors map[string][]float32
	fail    bool
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.fail {
		return nil, domain.ErrEmbeddingService
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0}, nil
}

func (m *mockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if m.fail {
		return nil, domain.ErrEmbeddingService
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = m.Embed(ctx, t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimension() int { return 2 }

// mockLLM records the last prompt it saw.
type mockLLM struct {
	reply      string
	fail       bool
	lastPrompt string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	if m.fail {
		return "", domain.ErrLanguageModel
	}
	return m.reply, nil
}

func newTestEngine(t *testing.T, emb *mockEmbedder, llm *mockLLM, opts Options) *Engine {
	t.Helper()
	if opts.Greeting == "" {
		opts.Greeting = "Good morning, how can I help?"
	}
	return New(chunker.NewCharacterChunker(100, 0), emb, llm, opts)
}

func greetedSession(e *Engine) *session.Session {
	s := session.New()
	s.EnsureGreeting(e.opts.Greeting)
	return s
}

func TestBuildIndexAlignsVectorsWithChunks(t *testing.T) {
	emb := &mockEmbedder{}
	e := newTestEngine(t, emb, &mockLLM{}, Options{})

	require.NoError(t, e.BuildIndex(context.Background(), strings.Repeat("guideline text. ", 40)))
	assert.True(t, e.Ready())
	assert.Equal(t, e.ChunkCount(), e.index.Len())
}

func TestBuildIndexEmptyDocument(t *testing.T) {
	e := newTestEngine(t, &mockEmbedder{}, &mockLLM{}, Options{})

	err := e.BuildIndex(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.False(t, e.Ready())
}

func TestBuildIndexEmbeddingFailureKeepsOldIndex(t *testing.T) {
	emb := &mockEmbedder{}
	e := newTestEngine(t, emb, &mockLLM{}, Options{})
	require.NoError(t, e.BuildIndex(context.Background(), "stable guidelines."))
	before := e.ChunkCount()

	emb.fail = true
	err := e.BuildIndex(context.Background(), "replacement guidelines.")
	require.Error(t, err)

	assert.True(t, e.Ready())
	assert.Equal(t, before, e.ChunkCount())
}

func TestAnswerEmptyIndexDegrades(t *testing.T) {
	e := newTestEngine(t, &mockEmbedder{}, &mockLLM{reply: "generated"}, Options{})
	sess := greetedSession(e)
	before := sess.Len()

	reply := e.Answer(context.Background(), sess, "help me")

	assert.Equal(t, NoContextReply, reply)
	assert.Equal(t, before, sess.Len())
}

func TestAnswerEmbeddingFailureDegrades(t *testing.T) {
	emb := &mockEmbedder{}
	e := newTestEngine(t, emb, &mockLLM{reply: "generated"}, Options{})
	require.NoError(t, e.BuildIndex(context.Background(), "refund guidelines."))
	sess := greetedSession(e)
	before := sess.Len()

	emb.fail = true
	reply := e.Answer(context.Background(), sess, "refund status")

	assert.Equal(t, NoContextReply, reply)
	assert.Equal(t, before, sess.Len())
}

func TestAnswerGenerationFailureDegrades(t *testing.T) {
	llm := &mockLLM{fail: true}
	e := newTestEngine(t, &mockEmbedder{}, llm, Options{})
	require.NoError(t, e.BuildIndex(context.Background(), "refund guidelines."))
	sess := greetedSession(e)
	before := sess.Len()

	reply := e.Answer(context.Background(), sess, "refund status")

	assert.Equal(t, GenerationFailedReply, reply)
	assert.Equal(t, before, sess.Len())
}

func TestAnswerSuccessAppendsOneTurn(t *testing.T) {
	llm := &mockLLM{reply: "Your refund is on the way."}
	e := newTestEngine(t, &mockEmbedder{}, llm, Options{})
	require.NoError(t, e.BuildIndex(context.Background(), "refunds are processed in 5 days."))
	sess := greetedSession(e)

	reply := e.Answer(context.Background(), sess, "refund status")

	require.Equal(t, "Your refund is on the way.", reply)
	h := sess.History()
	require.Len(t, h, 2)
	assert.Equal(t, "refund status", h[1].User)
	assert.Equal(t, "Your refund is on the way.", h[1].Agent)
}

func TestAnswerHistoryGrowsMonotonically(t *testing.T) {
	emb := &mockEmbedder{}
	llm := &mockLLM{reply: "ok"}
	e := newTestEngine(t, emb, llm, Options{})
	require.NoError(t, e.BuildIndex(context.Background(), "guidelines."))
	sess := greetedSession(e)

	prev := sess.Len()
	for i := 0; i < 3; i++ {
		e.Answer(context.Background(), sess, "query")
		assert.Equal(t, prev+1, sess.Len())
		prev = sess.Len()
	}

	// a degraded call adds nothing
	emb.fail = true
	e.Answer(context.Background(), sess, "query")
	assert.Equal(t, prev, sess.Len())
}

func TestAnswerRecordsDegradedTurnsWhenConfigured(t *testing.T) {
	emb := &mockEmbedder{fail: true}
	e := newTestEngine(t, emb, &mockLLM{}, Options{RecordDegradedTurns: true})
	sess := greetedSession(e)

	reply := e.Answer(context.Background(), sess, "help me")

	assert.Equal(t, NoContextReply, reply)
	h := sess.History()
	require.Len(t, h, 2)
	assert.Equal(t, "help me", h[1].User)
	assert.Equal(t, NoContextReply, h[1].Agent)
}

func TestAnswerGreetsEmptySession(t *testing.T) {
	e := newTestEngine(t, &mockEmbedder{}, &mockLLM{reply: "ok"}, Options{Greeting: "Welcome to support."})
	require.NoError(t, e.BuildIndex(context.Background(), "guidelines."))
	sess := session.New()

	e.Answer(context.Background(), sess, "hi there")

	h := sess.History()
	require.Len(t, h, 2)
	assert.Equal(t, domain.Turn{User: "Hello", Agent: "Welcome to support."}, h[0])
}

func TestPromptContainsGuidanceQueryAndHistory(t *testing.T) {
	llm := &mockLLM{reply: "done"}
	e := newTestEngine(t, &mockEmbedder{}, llm, Options{Persona: "customer care agent for CRED-Help", Company: "CRED"})
	require.NoError(t, e.BuildIndex(context.Background(), "refunds take five business days."))
	sess := greetedSession(e)
	sess.Append(domain.Turn{User: "earlier question", Agent: "earlier answer"})

	e.Answer(context.Background(), sess, "where is my refund")

	p := llm.lastPrompt
	assert.Contains(t, p, "customer care agent for CRED-Help")
	assert.Contains(t, p, "refunds take five business days.")
	assert.Contains(t, p, "User's query: where is my refund")
	assert.Contains(t, p, "User: earlier question\nAgent: earlier answer")
}

func TestPromptGreetingClauseOnlyAfterFirstInteraction(t *testing.T) {
	llm := &mockLLM{reply: "done"}
	e := newTestEngine(t, &mockEmbedder{}, llm, Options{})
	require.NoError(t, e.BuildIndex(context.Background(), "guidelines."))
	sess := greetedSession(e)

	// first interaction: only the synthetic greeting is present
	e.Answer(context.Background(), sess, "first question")
	assert.NotContains(t, llm.lastPrompt, "DO NOT use greetings")

	e.Answer(context.Background(), sess, "second question")
	assert.Contains(t, llm.lastPrompt, "DO NOT use greetings")
}

func TestRetrieveJoinsChunksClosestFirst(t *testing.T) {
	emb := &mockEmbedder{vectors: map[string][]float32{"q": {0, 0}}}
	e := newTestEngine(t, emb, &mockLLM{}, Options{TopK: 2})

	// hand-built index: chunk 1 is nearest, chunk 0 second
	e.chunks = []domain.Chunk{
		{Index: 0, Text: "second closest"},
		{Index: 1, Text: "closest"},
		{Index: 2, Text: "far away"},
	}
	idx := vectorindex.New()
	require.NoError(t, idx.Build([][]float32{{2, 0}, {1, 0}, {9, 0}}))
	e.index = idx

	guidance, ok := e.retrieve(context.Background(), "q")
	require.True(t, ok)
	assert.Equal(t, "closest\n\nsecond closest", guidance)
}

func TestRetrieveSkipsOutOfRangeIndices(t *testing.T) {
	emb := &mockEmbedder{}
	e := newTestEngine(t, emb, &mockLLM{}, Options{TopK: 5})

	// index larger than the chunk sequence: every hit is unresolvable
	e.chunks = nil
	idx := vectorindex.New()
	require.NoError(t, idx.Build([][]float32{{1, 0}, {2, 0}}))
	e.index = idx

	_, ok := e.retrieve(context.Background(), "q")
	assert.False(t, ok)
}

func TestAnswerNeverReturnsError(t *testing.T) {
	// every failure path yields fixed text, not a panic or an error value
	for _, tc := range []struct {
		name string
		emb  *mockEmbedder
		llm  *mockLLM
	}{
		{"embed fails", &mockEmbedder{fail: true}, &mockLLM{}},
		{"llm fails", &mockEmbedder{}, &mockLLM{fail: true}},
		{"both fail", &mockEmbedder{fail: true}, &mockLLM{fail: true}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t, tc.emb, tc.llm, Options{})
			if !tc.emb.fail {
				require.NoError(t, e.BuildIndex(context.Background(), "guidelines."))
			}
			reply := e.Answer(context.Background(), greetedSession(e), "query")
			assert.NotEmpty(t, reply)
		})
	}
}
