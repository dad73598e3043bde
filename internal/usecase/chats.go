package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"docchat/internal/domain"
	"docchat/internal/logger"
	"docchat/internal/port"
)

const (
	chatsManifestName = "_chats_manifest.json"
	maxTitleLen       = 80
)

type chatMeta struct {
	Title     string `json:"title"`
	UpdatedAt int64  `json:"updatedAt"`
}

type chatsManifest struct {
	Entries map[string]chatMeta `json:"entries"`
}

// TranscriptStore persists chat transcripts per owner. With no blob store
// configured it degrades to a no-op: saves succeed silently and reads find
// nothing, matching the behavior of running without durable storage.
type TranscriptStore struct {
	blob port.BlobStore
}

func NewTranscriptStore(blob port.BlobStore) *TranscriptStore {
	return &TranscriptStore{blob: blob}
}

func chatKey(owner, id string) string {
	return "users/" + owner + "/chats/" + id + ".json"
}

func chatsManifestKey(owner string) string {
	return "users/" + owner + "/chats/" + chatsManifestName
}

// DeriveTitle returns the given title, or the first user message clipped to
// a display length, or "Chat".
func DeriveTitle(title string, messages []domain.Message) string {
	if title != "" {
		return title
	}
	for _, m := range messages {
		if m.Role == "user" {
			if text := m.Text(); text != "" {
				runes := []rune(text)
				if len(runes) > maxTitleLen {
					return string(runes[:maxTitleLen])
				}
				return text
			}
			break
		}
	}
	return "Chat"
}

// Save writes the transcript and records it in the owner's chat manifest.
func (s *TranscriptStore) Save(ctx context.Context, owner, id, title string, messages []domain.Message) error {
	if s.blob == nil || owner == "" {
		return nil
	}
	chat := domain.Chat{
		ID:        id,
		Title:     DeriveTitle(title, messages),
		Messages:  messages,
		UpdatedAt: time.Now().UnixMilli(),
	}
	data, err := json.Marshal(chat)
	if err != nil {
		return fmt.Errorf("encode chat %s: %w", id, err)
	}
	if err := s.blob.Put(ctx, chatKey(owner, id), data); err != nil {
		return fmt.Errorf("save chat %s: %w", id, err)
	}

	manifest := s.loadManifest(ctx, owner)
	manifest.Entries[id] = chatMeta{Title: chat.Title, UpdatedAt: chat.UpdatedAt}
	if data, err := json.Marshal(manifest); err == nil {
		if err := s.blob.Put(ctx, chatsManifestKey(owner), data); err != nil {
			logger.Warn("update chats manifest for %s: %v", owner, err)
		}
	}
	return nil
}

// Get loads one transcript. Missing chats return domain.ErrNotFound.
func (s *TranscriptStore) Get(ctx context.Context, owner, id string) (domain.Chat, error) {
	if s.blob == nil || owner == "" {
		return domain.Chat{}, domain.ErrNotFound
	}
	data, err := s.blob.Get(ctx, chatKey(owner, id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Chat{}, domain.ErrNotFound
		}
		return domain.Chat{}, fmt.Errorf("load chat %s: %w", id, err)
	}
	var chat domain.Chat
	if err := json.Unmarshal(data, &chat); err != nil {
		return domain.Chat{}, fmt.Errorf("decode chat %s: %w", id, err)
	}
	return chat, nil
}

// List returns the owner's chats, most recently updated first.
func (s *TranscriptStore) List(ctx context.Context, owner string) ([]domain.ChatInfo, error) {
	if s.blob == nil || owner == "" {
		return nil, nil
	}
	manifest := s.loadManifest(ctx, owner)
	infos := make([]domain.ChatInfo, 0, len(manifest.Entries))
	for id, meta := range manifest.Entries {
		infos = append(infos, domain.ChatInfo{ID: id, Title: meta.Title, UpdatedAt: meta.UpdatedAt})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt > infos[j].UpdatedAt
	})
	return infos, nil
}

// Delete removes the transcript and its manifest entry.
func (s *TranscriptStore) Delete(ctx context.Context, owner, id string) error {
	if s.blob == nil || owner == "" {
		return nil
	}
	if err := s.blob.Delete(ctx, chatKey(owner, id)); err != nil {
		return fmt.Errorf("delete chat %s: %w", id, err)
	}
	manifest := s.loadManifest(ctx, owner)
	delete(manifest.Entries, id)
	if data, err := json.Marshal(manifest); err == nil {
		if err := s.blob.Put(ctx, chatsManifestKey(owner), data); err != nil {
			logger.Warn("update chats manifest for %s: %v", owner, err)
		}
	}
	return nil
}

func (s *TranscriptStore) loadManifest(ctx context.Context, owner string) chatsManifest {
	manifest := chatsManifest{Entries: make(map[string]chatMeta)}
	data, err := s.blob.Get(ctx, chatsManifestKey(owner))
	if err != nil {
		return manifest
	}
	if err := json.Unmarshal(data, &manifest); err != nil || manifest.Entries == nil {
		manifest.Entries = make(map[string]chatMeta)
	}
	return manifest
}
