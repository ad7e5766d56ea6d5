package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/UgurOz1/portfolyo/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    tags TEXT[] NOT NULL DEFAULT '{}',
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC);
CREATE TABLE IF NOT EXISTS admins (
    uid TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// Migrate creates the posts and admins tables if they do not exist. Admin
// grants are still inserted by hand.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) AdminExists(ctx context.Context, uid string) (bool, error) {
	if s.pool == nil {
		return false, errors.New("db not initialized")
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM admins WHERE uid = $1)`, uid).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	if s.pool == nil {
		return nil, errors.New("db not initialized")
	}

	const query = `
		SELECT
			id,
			title,
			COALESCE(tags, '{}'::text[]),
			excerpt,
			content,
			date,
			created_at,
			updated_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func scanPost(row pgx.Row) (models.Post, error) {
	var (
		post      models.Post
		createdAt time.Time
		updatedAt *time.Time
	)
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Tags,
		&post.Excerpt,
		&post.Content,
		&post.Date,
		&createdAt,
		&updatedAt,
	); err != nil {
		return models.Post{}, err
	}
	post.CreatedAt = &createdAt
	post.UpdatedAt = updatedAt
	return post, nil
}

func (s *PostgresStore) CreatePost(ctx context.Context, post models.NewPost) (string, error) {
	if s.pool == nil {
		return "", errors.New("db not initialized")
	}

	const query = `
		INSERT INTO posts (id, title, tags, excerpt, content, date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id string
	err := s.pool.QueryRow(
		ctx,
		query,
		uuid.NewString(),
		post.Title,
		post.Tags,
		post.Excerpt,
		post.Content,
		post.Date,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) UpdatePost(ctx context.Context, id string, update models.PostUpdate) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}

	const query = `
		UPDATE posts
		SET title = $2, tags = $3, excerpt = $4, content = $5, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query, id, update.Title, update.Tags, update.Excerpt, update.Content)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	if s.pool == nil {
		return errors.New("db not initialized")
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
