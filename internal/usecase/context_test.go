package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/adapter/docstore"
	"docchat/internal/adapter/embedding"
	"docchat/internal/domain"
)

// stubEmbedder returns a fixed vector per input text so tests control
// similarity ranking exactly.
type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) ModelName() string { return "stub" }

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			v = []float32{0, 0, 1}
		}
		out[i] = v
	}
	return out, nil
}

func storeWith(t *testing.T, docs ...domain.Document) *docstore.Store {
	t.Helper()
	s := docstore.New(nil)
	for _, d := range docs {
		require.NoError(t, s.Put(context.Background(), d, ""))
	}
	return s
}

func embeddedDoc(id, filename string, chunks ...domain.Chunk) domain.Document {
	return domain.Document{ID: id, Filename: filename, Chunks: chunks}
}

func TestBuildEmptyWithoutDocuments(t *testing.T) {
	b := NewContextBuilder(storeWith(t), embedding.NewCapability(nil), 12, 6000)

	out, err := b.Build(context.Background(), "question", nil, "")
	require.NoError(t, err)
	assert.Equal(t, "", out)

	out, err = b.Build(context.Background(), "question", []string{"missing"}, "")
	require.NoError(t, err)
	assert.Equal(t, "", out, "unknown IDs are skipped")
}

func TestBuildFlatWithoutEmbedder(t *testing.T) {
	store := storeWith(t,
		embeddedDoc("d1", "a.txt", domain.Chunk{Text: "first chunk"}, domain.Chunk{Text: "second chunk", Index: 1}),
		embeddedDoc("d2", "b.txt", domain.Chunk{Text: "other doc"}),
	)
	b := NewContextBuilder(store, embedding.NewCapability(nil), 12, 6000)

	out, err := b.Build(context.Background(), "question", []string{"d1", "d2"}, "")
	require.NoError(t, err)
	assert.Equal(t,
		"--- Document: a.txt ---\nfirst chunk\n\nsecond chunk\n\n--- Document: b.txt ---\nother doc",
		out)
}

func TestBuildFlatTruncation(t *testing.T) {
	long := strings.Repeat("word ", 200)
	store := storeWith(t, embeddedDoc("d1", "a.txt", domain.Chunk{Text: long}))
	maxChars := 50
	b := NewContextBuilder(store, embedding.NewCapability(nil), 12, maxChars)

	out, err := b.Build(context.Background(), "question", []string{"d1"}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, flatTruncateMarker))
	assert.LessOrEqual(t, len(out), maxChars+len(flatTruncateMarker))
}

func TestBuildSemanticRanksByCosine(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{
		"the query": {1, 0, 0},
		"on topic":  {1, 0, 0},
		"nearby":    {0.7, 0.7, 0},
		"unrelated": {0, 1, 0},
	}}
	store := storeWith(t, embeddedDoc("d1", "a.txt",
		domain.Chunk{Text: "unrelated", Embedding: []float32{0, 1, 0}},
		domain.Chunk{Text: "on topic", Index: 1, Embedding: []float32{1, 0, 0}},
		domain.Chunk{Text: "nearby", Index: 2, Embedding: []float32{0.7, 0.7, 0}},
	))
	b := NewContextBuilder(store, embedding.NewCapability(stub), 12, 6000)

	out, err := b.Build(context.Background(), "the query", []string{"d1"}, "")
	require.NoError(t, err)
	assert.Equal(t,
		"[a.txt]\non topic\n\n[a.txt]\nnearby\n\n[a.txt]\nunrelated",
		out)
}

func TestBuildSemanticTopKCap(t *testing.T) {
	chunks := make([]domain.Chunk, 5)
	for i := range chunks {
		chunks[i] = domain.Chunk{Text: "chunk", Index: i, Embedding: []float32{1, 0, 0}}
	}
	stub := &stubEmbedder{vectors: map[string][]float32{"q": {1, 0, 0}}}
	store := storeWith(t, embeddedDoc("d1", "a.txt", chunks...))
	b := NewContextBuilder(store, embedding.NewCapability(stub), 2, 6000)

	out, err := b.Build(context.Background(), "q", []string{"d1"}, "")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "[a.txt]"))
}

func TestBuildSemanticBudget(t *testing.T) {
	text := strings.Repeat("x", 40)
	chunks := make([]domain.Chunk, 6)
	for i := range chunks {
		chunks[i] = domain.Chunk{Text: text, Index: i, Embedding: []float32{1, 0, 0}}
	}
	stub := &stubEmbedder{vectors: map[string][]float32{"q": {1, 0, 0}}}
	store := storeWith(t, embeddedDoc("d1", "a.txt", chunks...))
	b := NewContextBuilder(store, embedding.NewCapability(stub), 12, 100)

	out, err := b.Build(context.Background(), "q", []string{"d1"}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, semanticTruncateMarker))
	assert.LessOrEqual(t, len(out), 100+len(semanticTruncateMarker))
	assert.Less(t, strings.Count(out, "[a.txt]"), 6, "budget must cut candidates")
}

func TestBuildQueryWithoutEmbeddingsMatchesNoQuery(t *testing.T) {
	store := storeWith(t,
		embeddedDoc("d1", "a.txt", domain.Chunk{Text: "alpha"}, domain.Chunk{Text: "beta", Index: 1}),
		embeddedDoc("d2", "b.txt", domain.Chunk{Text: "gamma"}),
	)
	stub := &stubEmbedder{vectors: map[string][]float32{}}
	b := NewContextBuilder(store, embedding.NewCapability(stub), 12, 6000)

	withQuery, err := b.Build(context.Background(), "some question", []string{"d1", "d2"}, "")
	require.NoError(t, err)
	noQuery, err := b.Build(context.Background(), "", []string{"d1", "d2"}, "")
	require.NoError(t, err)
	assert.Equal(t, noQuery, withQuery)
}

func TestBuildBlankQueryUsesFlat(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{}}
	store := storeWith(t, embeddedDoc("d1", "a.txt",
		domain.Chunk{Text: "embedded chunk", Embedding: []float32{1, 0, 0}}))
	b := NewContextBuilder(store, embedding.NewCapability(stub), 12, 6000)

	out, err := b.Build(context.Background(), "   ", []string{"d1"}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "--- Document: a.txt ---"))
}

func TestBuildNoEmbeddedChunksUsesFlat(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{}}
	store := storeWith(t, embeddedDoc("d1", "a.txt", domain.Chunk{Text: "plain chunk"}))
	b := NewContextBuilder(store, embedding.NewCapability(stub), 12, 6000)

	out, err := b.Build(context.Background(), "question", []string{"d1"}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "--- Document: a.txt ---"))
}

func TestBuildQueryEmbedFailureFallsBackToFlat(t *testing.T) {
	stub := &stubEmbedder{err: errors.New("provider down")}
	store := storeWith(t, embeddedDoc("d1", "a.txt",
		domain.Chunk{Text: "embedded chunk", Embedding: []float32{1, 0, 0}}))
	b := NewContextBuilder(store, embedding.NewCapability(stub), 12, 6000)

	out, err := b.Build(context.Background(), "question", []string{"d1"}, "")
	require.NoError(t, err, "embedding failure must not fail the turn")
	assert.True(t, strings.HasPrefix(out, "--- Document: a.txt ---"))
}

func TestBuildSemanticSkipsUnembeddedChunks(t *testing.T) {
	stub := &stubEmbedder{vectors: map[string][]float32{"q": {1, 0, 0}}}
	store := storeWith(t, embeddedDoc("d1", "a.txt",
		domain.Chunk{Text: "plain chunk"},
		domain.Chunk{Text: "embedded chunk", Index: 1, Embedding: []float32{1, 0, 0}},
	))
	b := NewContextBuilder(store, embedding.NewCapability(stub), 12, 6000)

	out, err := b.Build(context.Background(), "q", []string{"d1"}, "")
	require.NoError(t, err)
	assert.Equal(t, "[a.txt]\nembedded chunk", out)
}

func TestBuildOwnerScoping(t *testing.T) {
	store := docstore.New(nil)
	require.NoError(t, store.Put(context.Background(),
		embeddedDoc("d1", "alice.txt", domain.Chunk{Text: "alice data"}), "alice"))
	b := NewContextBuilder(store, embedding.NewCapability(nil), 12, 6000)

	out, err := b.Build(context.Background(), "q", []string{"d1"}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "", out, "another owner's documents are invisible")

	out, err = b.Build(context.Background(), "q", []string{"d1"}, "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice data")
}
