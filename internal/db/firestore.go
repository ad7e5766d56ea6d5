package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/UgurOz1/portfolyo/internal/models"
)

// FirestoreStore reads and writes the posts and admins collections of a
// Firestore database. FIRESTORE_EMULATOR_HOST is honored by the client.
type FirestoreStore struct {
	client *firestore.Client
	logger *slog.Logger
}

// NewFirestoreStore connects to the given project. credentialsFile may be
// empty to use application default credentials.
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string, logger *slog.Logger) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &FirestoreStore{client: client, logger: logger}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) AdminExists(ctx context.Context, uid string) (bool, error) {
	snap, err := s.client.Collection(AdminsCollection).Doc(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("get admin grant: %w", err)
	}
	return snap.Exists(), nil
}

func (s *FirestoreStore) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	iter := s.client.Collection(PostsCollection).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	posts := make([]models.Post, 0, limit)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list posts: %w", err)
		}
		post, err := models.PostFromDocument(snap.Ref.ID, snap.Data())
		if err != nil {
			s.logger.Warn("skipping malformed post", "id", snap.Ref.ID, "error", err)
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *FirestoreStore) CreatePost(ctx context.Context, post models.NewPost) (string, error) {
	ref, _, err := s.client.Collection(PostsCollection).Add(ctx, newPostFields(post))
	if err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) UpdatePost(ctx context.Context, id string, update models.PostUpdate) error {
	_, err := s.client.Collection(PostsCollection).Doc(id).Update(ctx, postUpdates(update))
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeletePost(ctx context.Context, id string) error {
	if _, err := s.client.Collection(PostsCollection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func newPostFields(post models.NewPost) map[string]any {
	return map[string]any{
		"title":     post.Title,
		"tags":      nonNil(post.Tags),
		"excerpt":   post.Excerpt,
		"content":   post.Content,
		"date":      post.Date,
		"createdAt": firestore.ServerTimestamp,
	}
}

func postUpdates(update models.PostUpdate) []firestore.Update {
	return []firestore.Update{
		{Path: "title", Value: update.Title},
		{Path: "tags", Value: nonNil(update.Tags)},
		{Path: "excerpt", Value: update.Excerpt},
		{Path: "content", Value: update.Content},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	}
}
