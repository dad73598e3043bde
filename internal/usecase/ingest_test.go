package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/adapter/chunker"
	"docchat/internal/adapter/docstore"
	"docchat/internal/adapter/embedding"
	"docchat/internal/adapter/extract"
	"docchat/internal/domain"
)

func newIngestor(embedder *embedding.Capability) (*Ingestor, *docstore.Store) {
	store := docstore.New(nil)
	in := NewIngestor(chunker.NewWindowChunker(600, 100), embedder, store, extract.New())
	return in, store
}

func TestIngestTextStoresDocument(t *testing.T) {
	in, store := newIngestor(embedding.NewCapability(nil))

	doc, err := in.IngestText(context.Background(), "notes.txt", "some document text", "")
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "notes.txt", doc.Filename)
	assert.Positive(t, doc.UploadedAt)
	require.Len(t, doc.Chunks, 1)
	assert.Equal(t, "some document text", doc.Chunks[0].Text)

	stored, err := store.Get(context.Background(), doc.ID, "")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, stored.ID)
}

func TestIngestTextEmpty(t *testing.T) {
	in, _ := newIngestor(embedding.NewCapability(nil))

	_, err := in.IngestText(context.Background(), "empty.txt", "   \n\t ", "")
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestIngestTextAttachesEmbeddings(t *testing.T) {
	in, _ := newIngestor(embedding.NewCapability(embedding.NewMockEmbedder(8)))

	text := strings.Repeat("lorem ipsum dolor sit amet ", 60)
	doc, err := in.IngestText(context.Background(), "long.txt", text, "")
	require.NoError(t, err)
	require.Greater(t, len(doc.Chunks), 1)
	for _, c := range doc.Chunks {
		assert.Len(t, c.Embedding, 8)
	}
}

func TestIngestTextWithoutEmbedder(t *testing.T) {
	in, _ := newIngestor(embedding.NewCapability(nil))

	doc, err := in.IngestText(context.Background(), "notes.txt", "plain text", "")
	require.NoError(t, err)
	for _, c := range doc.Chunks {
		assert.Nil(t, c.Embedding)
	}
}

func TestIngestFilePlainText(t *testing.T) {
	in, _ := newIngestor(embedding.NewCapability(nil))

	doc, err := in.IngestFile(context.Background(), "notes.txt", "text/plain", []byte("file contents"), "alice")
	require.NoError(t, err)
	assert.Equal(t, "file contents", doc.FullText)
}

func TestIngestFileUnsupportedType(t *testing.T) {
	in, _ := newIngestor(embedding.NewCapability(nil))

	_, err := in.IngestFile(context.Background(), "image.png", "image/png", []byte{1, 2, 3}, "")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIngestTextOwnerScoped(t *testing.T) {
	in, store := newIngestor(embedding.NewCapability(nil))

	doc, err := in.IngestText(context.Background(), "notes.txt", "scoped text", "alice")
	require.NoError(t, err)

	_, err = store.Get(context.Background(), doc.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := store.Get(context.Background(), doc.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, "scoped text", got.FullText)
}
