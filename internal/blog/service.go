package blog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/UgurOz1/portfolyo/internal/db"
	"github.com/UgurOz1/portfolyo/internal/models"
)

// ListLimit caps how many posts a single list call fetches.
const ListLimit = 50

// Notice texts shown to the user.
const (
	NoticeCreateDenied  = "Only the admin can publish posts"
	NoticeUpdateDenied  = "Only the admin can update posts"
	NoticeDeleteDenied  = "Only the admin can delete posts"
	NoticeCreated       = "Post published"
	NoticeUpdated       = "Post updated"
	NoticeDeleted       = "Post deleted"
	NoticeConfirmDelete = "Are you sure you want to delete this post?"
)

// Notifier delivers blocking notices to the user. Confirm returns the
// user's answer to a yes/no prompt.
type Notifier interface {
	Alert(msg string)
	Confirm(prompt string) bool
}

// Source tells where the current list came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceSeed   Source = "seed"
)

// Listing is the result of one read: the posts and where they came from.
type Listing struct {
	Posts  []models.Post
	Source Source
}

// Service is the post store client. It keeps the newest loaded list in
// memory for lookups by id. Each call works on the result of its own read.
type Service struct {
	store  db.DocumentStore
	authz  *Authorizer
	seed   []models.Post
	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	seq     uint64
	applied uint64
	current Listing
}

func NewService(store db.DocumentStore, authz *Authorizer, seed []models.Post, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		authz:  authz,
		seed:   seed,
		logger: logger,
		now:    time.Now,
	}
}

// List fetches the newest posts. An empty result or a failed read falls back
// to the seed posts; failures are logged and never returned.
func (s *Service) List(ctx context.Context) Listing {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	var l Listing
	posts, err := s.store.ListPosts(ctx, ListLimit)
	switch {
	case err != nil:
		s.logger.Error("failed to load posts, using seed", "error", err)
		l = Listing{Posts: s.seedCopy(), Source: SourceSeed}
	case len(posts) == 0:
		s.logger.Debug("no posts stored, using seed")
		l = Listing{Posts: s.seedCopy(), Source: SourceSeed}
	default:
		if len(posts) > ListLimit {
			posts = posts[:ListLimit]
		}
		l = Listing{Posts: posts, Source: SourceRemote}
	}
	s.replace(seq, l)
	return Listing{Posts: clonePosts(l.Posts), Source: l.Source}
}

// Current returns the newest loaded list.
func (s *Service) Current() Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Listing{Posts: clonePosts(s.current.Posts), Source: s.current.Source}
}

// Find looks a post up in the newest loaded list.
func (s *Service) Find(id string) (models.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.current.Posts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Post{}, false
}

// replace keeps l unless a read started later has already been applied.
func (s *Service) replace(seq uint64, l Listing) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		return
	}
	s.applied = seq
	s.current = l
}

func clonePosts(posts []models.Post) []models.Post {
	out := make([]models.Post, len(posts))
	for i, p := range posts {
		p.Tags = append([]string{}, p.Tags...)
		out[i] = p
	}
	return out
}

func (s *Service) seedCopy() []models.Post {
	return clonePosts(s.seed)
}

// Create publishes a new post and returns the list reloaded after the write.
func (s *Service) Create(ctx context.Context, identity *models.Identity, payload models.PostPayload, n Notifier) (Listing, error) {
	if !s.authz.Check(ctx, identity) {
		n.Alert(NoticeCreateDenied)
		return Listing{}, ErrForbidden
	}

	id, err := s.store.CreatePost(ctx, payload.Build(s.now()))
	if err != nil {
		return Listing{}, s.writeFailed(n, "create", err)
	}
	s.logger.Info("post created", "id", id, "uid", identity.ID)
	n.Alert(NoticeCreated)

	return s.List(ctx), nil
}

// Update rewrites an existing post and returns the reloaded list.
func (s *Service) Update(ctx context.Context, identity *models.Identity, id string, payload models.PostPayload, n Notifier) (Listing, error) {
	if !s.authz.Check(ctx, identity) {
		n.Alert(NoticeUpdateDenied)
		return Listing{}, ErrForbidden
	}

	if err := s.store.UpdatePost(ctx, id, payload.Update()); err != nil {
		return Listing{}, s.writeFailed(n, "update", err)
	}
	s.logger.Info("post updated", "id", id, "uid", identity.ID)
	n.Alert(NoticeUpdated)

	return s.List(ctx), nil
}

// Delete removes a post after the user confirms and returns the reloaded list.
func (s *Service) Delete(ctx context.Context, identity *models.Identity, id string, n Notifier) (Listing, error) {
	if !s.authz.Check(ctx, identity) {
		n.Alert(NoticeDeleteDenied)
		return Listing{}, ErrForbidden
	}
	if !n.Confirm(NoticeConfirmDelete) {
		return Listing{}, ErrNotConfirmed
	}

	if err := s.store.DeletePost(ctx, id); err != nil {
		return Listing{}, s.writeFailed(n, "delete", err)
	}
	s.logger.Info("post deleted", "id", id, "uid", identity.ID)
	n.Alert(NoticeDeleted)

	return s.List(ctx), nil
}

func (s *Service) writeFailed(n Notifier, op string, err error) error {
	werr := &WriteError{Op: op, Err: err}
	s.logger.Error("post write failed", "op", op, "error", err)
	n.Alert(werr.Error())
	return werr
}
