package db

import (
	"context"
	"errors"

	"github.com/UgurOz1/portfolyo/internal/models"
)

var ErrNotFound = errors.New("document not found")

// Collection names shared by every backend.
const (
	PostsCollection  = "posts"
	AdminsCollection = "admins"
)

// DocumentStore is the document database the blog talks to. Implementations
// assign post ids and timestamps themselves.
type DocumentStore interface {
	// AdminExists reports whether an admin grant exists for uid.
	AdminExists(ctx context.Context, uid string) (bool, error)

	// ListPosts returns at most limit posts, newest first by creation time.
	ListPosts(ctx context.Context, limit int) ([]models.Post, error)

	// CreatePost writes a new post and returns its id.
	CreatePost(ctx context.Context, post models.NewPost) (string, error)

	// UpdatePost overwrites title, tags, content and excerpt and stamps the
	// update time. Returns ErrNotFound if no such post exists.
	UpdatePost(ctx context.Context, id string, update models.PostUpdate) error

	// DeletePost removes a post. Deleting a missing post is not an error.
	DeletePost(ctx context.Context, id string) error

	Close() error
}
