package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docchat/internal/domain"
)

// fakeBlob is a minimal in-memory blob store for transcript tests.
type fakeBlob struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeBlob() *fakeBlob {
	return &fakeBlob{data: make(map[string][]byte)}
}

func (b *fakeBlob) Put(_ context.Context, key string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = append([]byte(nil), data...)
	return nil
}

func (b *fakeBlob) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.data[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

func (b *fakeBlob) List(_ context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var keys []string
	for k := range b.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (b *fakeBlob) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	return nil
}

func (b *fakeBlob) Close() error { return nil }

func TestDeriveTitle(t *testing.T) {
	assert.Equal(t, "given", DeriveTitle("given", []domain.Message{userMsg("question")}))
	assert.Equal(t, "question", DeriveTitle("", []domain.Message{userMsg("question")}))
	assert.Equal(t, "Chat", DeriveTitle("", nil))
	assert.Equal(t, "Chat", DeriveTitle("", []domain.Message{assistantMsg("hi")}))

	long := strings.Repeat("q", 120)
	assert.Len(t, DeriveTitle("", []domain.Message{userMsg(long)}), 80)
}

func TestTranscriptSaveGetRoundTrip(t *testing.T) {
	s := NewTranscriptStore(newFakeBlob())
	ctx := context.Background()
	messages := []domain.Message{userMsg("what is this doc about?"), assistantMsg("it is about tests")}

	require.NoError(t, s.Save(ctx, "alice", "c1", "", messages))

	chat, err := s.Get(ctx, "alice", "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", chat.ID)
	assert.Equal(t, "what is this doc about?", chat.Title)
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, "it is about tests", chat.Messages[1].Text())
	assert.Positive(t, chat.UpdatedAt)
}

func TestTranscriptGetMissing(t *testing.T) {
	s := NewTranscriptStore(newFakeBlob())
	_, err := s.Get(context.Background(), "alice", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTranscriptOwnerIsolation(t *testing.T) {
	s := NewTranscriptStore(newFakeBlob())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", "c1", "t", []domain.Message{userMsg("q")}))

	_, err := s.Get(ctx, "bob", "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chats, err := s.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestTranscriptListNewestFirst(t *testing.T) {
	s := NewTranscriptStore(newFakeBlob())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", "old", "old chat", []domain.Message{userMsg("q")}))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, s.Save(ctx, "alice", "new", "new chat", []domain.Message{userMsg("q")}))

	chats, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, chats, 2)
	assert.Equal(t, "new", chats[0].ID)
	assert.Equal(t, "old", chats[1].ID)
}

func TestTranscriptDelete(t *testing.T) {
	s := NewTranscriptStore(newFakeBlob())
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", "c1", "t", []domain.Message{userMsg("q")}))
	require.NoError(t, s.Delete(ctx, "alice", "c1"))

	_, err := s.Get(ctx, "alice", "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chats, err := s.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestTranscriptWithoutBlobStore(t *testing.T) {
	s := NewTranscriptStore(nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", "c1", "t", []domain.Message{userMsg("q")}))

	_, err := s.Get(ctx, "alice", "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chats, err := s.List(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, chats)
}
