package docstore

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"docchat/internal/domain"
	"docchat/internal/logger"
	"docchat/internal/port"
)

const (
	legacyPrefix = "docs/"
	userPrefix   = "users/"
	manifestName = "_manifest.json"
)

type manifest struct {
	Entries map[string]manifestEntry `json:"entries"`
}

type manifestEntry struct {
	Filename   string `json:"filename"`
	UploadedAt int64  `json:"uploadedAt"`
}

// Store mediates document reads and writes between an in-process cache and
// an optional durable blob store. The cache is authoritative for the current
// process; durable persistence is best-effort. A nil blob store selects
// cache-only mode.
type Store struct {
	mu    sync.RWMutex
	cache map[string]domain.Document
	blob  port.BlobStore
}

func New(blob port.BlobStore) *Store {
	return &Store{
		cache: make(map[string]domain.Document),
		blob:  blob,
	}
}

// cacheKey scopes cache entries per owner so one user's documents are never
// visible under another's key.
func cacheKey(id, owner string) string {
	if owner != "" {
		return owner + ":" + id
	}
	return id
}

func scopePrefix(owner string) string {
	if owner != "" {
		return userPrefix + owner + "/docs/"
	}
	return legacyPrefix
}

func docKey(id, owner string) string {
	return scopePrefix(owner) + id + ".json"
}

func manifestKey(owner string) string {
	return scopePrefix(owner) + manifestName
}

// Put caches the document synchronously, then persists it best-effort.
// Durable failures are logged, never surfaced: the cache write must not be
// lost because persistence is degraded.
func (s *Store) Put(ctx context.Context, doc domain.Document, owner string) error {
	s.mu.Lock()
	s.cache[cacheKey(doc.ID, owner)] = doc
	s.mu.Unlock()

	if s.blob == nil {
		return nil
	}

	data, err := json.Marshal(doc)
	if err != nil {
		logger.Warn("marshal document %s failed: %v", doc.ID, err)
		return nil
	}
	if err := s.blob.Put(ctx, docKey(doc.ID, owner), data); err != nil {
		logger.Warn("durable write for document %s failed: %v", doc.ID, err)
		return nil
	}

	if owner != "" {
		s.updateManifest(ctx, owner, func(m *manifest) {
			m.Entries[doc.ID] = manifestEntry{
				Filename:   doc.Filename,
				UploadedAt: doc.UploadedAt,
			}
		})
	}
	return nil
}

// Get checks the cache first, then falls back to the durable store,
// repopulating the cache on a durable hit.
func (s *Store) Get(ctx context.Context, id, owner string) (domain.Document, error) {
	key := cacheKey(id, owner)

	s.mu.RLock()
	doc, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return doc, nil
	}

	if s.blob == nil {
		return domain.Document{}, domain.ErrNotFound
	}

	data, err := s.blob.Get(ctx, docKey(id, owner))
	if err != nil {
		return domain.Document{}, domain.ErrNotFound
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warn("corrupt stored document %s: %v", id, err)
		return domain.Document{}, domain.ErrNotFound
	}

	s.mu.Lock()
	s.cache[key] = doc
	s.mu.Unlock()
	return doc, nil
}

// ListIDs enumerates known document ids. A scoped owner relies solely on the
// durable manifest; the legacy scope merges cache and durable knowledge.
func (s *Store) ListIDs(ctx context.Context, owner string) ([]string, error) {
	if owner != "" {
		m := s.loadManifest(ctx, owner)
		ids := make([]string, 0, len(m.Entries))
		for id := range m.Entries {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		return ids, nil
	}

	seen := make(map[string]bool)
	s.mu.RLock()
	for key := range s.cache {
		if !strings.Contains(key, ":") {
			seen[key] = true
		}
	}
	s.mu.RUnlock()

	if s.blob != nil {
		keys, err := s.blob.List(ctx, legacyPrefix)
		if err != nil {
			logger.Warn("durable listing failed: %v", err)
		}
		for _, key := range keys {
			id := strings.TrimPrefix(key, legacyPrefix)
			if !strings.HasSuffix(id, ".json") {
				continue
			}
			seen[strings.TrimSuffix(id, ".json")] = true
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// ListDocs returns manifest entries for a scoped owner, newest first.
func (s *Store) ListDocs(ctx context.Context, owner string) ([]domain.DocInfo, error) {
	if owner == "" {
		return nil, nil
	}

	m := s.loadManifest(ctx, owner)
	docs := make([]domain.DocInfo, 0, len(m.Entries))
	for id, e := range m.Entries {
		docs = append(docs, domain.DocInfo{
			ID:         id,
			Filename:   e.Filename,
			UploadedAt: e.UploadedAt,
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt > docs[j].UploadedAt })
	return docs, nil
}

// Delete removes the document from cache, durable storage, and manifest.
func (s *Store) Delete(ctx context.Context, id, owner string) error {
	s.mu.Lock()
	delete(s.cache, cacheKey(id, owner))
	s.mu.Unlock()

	if s.blob == nil {
		return nil
	}

	if err := s.blob.Delete(ctx, docKey(id, owner)); err != nil {
		logger.Warn("durable delete for document %s failed: %v", id, err)
	}
	if owner != "" {
		s.updateManifest(ctx, owner, func(m *manifest) {
			delete(m.Entries, id)
		})
	}
	return nil
}

// loadManifest returns the owner's manifest, or an empty one when missing,
// unreadable, or when no durable store is configured.
func (s *Store) loadManifest(ctx context.Context, owner string) manifest {
	m := manifest{Entries: make(map[string]manifestEntry)}
	if s.blob == nil {
		return m
	}
	data, err := s.blob.Get(ctx, manifestKey(owner))
	if err != nil {
		return m
	}
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn("corrupt manifest for %s: %v", owner, err)
		return manifest{Entries: make(map[string]manifestEntry)}
	}
	if m.Entries == nil {
		m.Entries = make(map[string]manifestEntry)
	}
	return m
}

func (s *Store) updateManifest(ctx context.Context, owner string, mutate func(*manifest)) {
	m := s.loadManifest(ctx, owner)
	mutate(&m)
	data, err := json.Marshal(m)
	if err != nil {
		logger.Warn("marshal manifest for %s failed: %v", owner, err)
		return
	}
	if err := s.blob.Put(ctx, manifestKey(owner), data); err != nil {
		logger.Warn("manifest write for %s failed: %v", owner, err)
	}
}
