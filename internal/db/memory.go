package db

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/UgurOz1/portfolyo/internal/models"
)

// MemoryStore is a thread-safe in-process document store. Records are kept
// loosely typed, the way a hosted document database returns them, and are
// decoded through models.PostFromDocument on read.
type MemoryStore struct {
	mu sync.RWMutex
	// Structure: [collection][docID]fields
	data   map[string]map[string]map[string]any
	now    func() time.Time
	logger *slog.Logger
}

// NewMemoryStore initializes a store with the given admin grants.
func NewMemoryStore(logger *slog.Logger, adminIDs ...string) *MemoryStore {
	m := &MemoryStore{
		data: map[string]map[string]map[string]any{
			PostsCollection:  {},
			AdminsCollection: {},
		},
		now:    time.Now,
		logger: logger,
	}
	for _, id := range adminIDs {
		m.data[AdminsCollection][id] = map[string]any{}
	}
	return m
}

// Put stores a raw document, replacing any existing one. It bypasses
// validation and is meant for seeding.
func (m *MemoryStore) Put(collection, id string, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]map[string]any)
	}
	m.data[collection][id] = copyFields(fields)
}

func (m *MemoryStore) AdminExists(_ context.Context, uid string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[AdminsCollection][uid]
	return ok, nil
}

func (m *MemoryStore) ListPosts(_ context.Context, limit int) ([]models.Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	posts := make([]models.Post, 0, len(m.data[PostsCollection]))
	for id, fields := range m.data[PostsCollection] {
		post, err := models.PostFromDocument(id, fields)
		if err != nil {
			m.logger.Warn("skipping malformed post", "id", id, "error", err)
			continue
		}
		posts = append(posts, post)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return createdAt(posts[i]).After(createdAt(posts[j]))
	})
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func createdAt(p models.Post) time.Time {
	if p.CreatedAt == nil {
		return time.Time{}
	}
	return *p.CreatedAt
}

func (m *MemoryStore) CreatePost(_ context.Context, post models.NewPost) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.data[PostsCollection][id] = map[string]any{
		"title":     post.Title,
		"tags":      append([]string{}, post.Tags...),
		"excerpt":   post.Excerpt,
		"content":   post.Content,
		"date":      post.Date,
		"createdAt": m.now().UTC(),
	}
	return id, nil
}

func (m *MemoryStore) UpdatePost(_ context.Context, id string, update models.PostUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.data[PostsCollection][id]
	if !ok {
		return ErrNotFound
	}
	doc["title"] = update.Title
	doc["tags"] = append([]string{}, update.Tags...)
	doc["excerpt"] = update.Excerpt
	doc["content"] = update.Content
	doc["updatedAt"] = m.now().UTC()
	return nil
}

func (m *MemoryStore) DeletePost(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[PostsCollection], id)
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
