package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/UgurOz1/portfolyo/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    tags TEXT NOT NULL DEFAULT '[]',
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER
);
CREATE INDEX IF NOT EXISTS posts_created_at_idx ON posts (created_at DESC);
CREATE TABLE IF NOT EXISTS admins (
    uid TEXT PRIMARY KEY
);`

// SQLiteStore keeps posts in a local SQLite file. Tags are stored as a JSON
// array and timestamps as unix nanoseconds.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer avoids SQLITE_BUSY on concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GrantAdmin inserts an admin grant. Only used to provision local databases.
func (s *SQLiteStore) GrantAdmin(ctx context.Context, uid string) error {
	_, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO admins (uid) VALUES (?)`, uid)
	if err != nil {
		return fmt.Errorf("grant admin: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AdminExists(ctx context.Context, uid string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins WHERE uid = ?`, uid).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, tags, excerpt, content, date, created_at, updated_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0, limit)
	for rows.Next() {
		var (
			post      models.Post
			tagsJSON  string
			createdAt int64
			updatedAt sql.NullInt64
		)
		if err := rows.Scan(&post.ID, &post.Title, &tagsJSON, &post.Excerpt, &post.Content, &post.Date, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &post.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", post.ID, err)
		}
		created := time.Unix(0, createdAt).UTC()
		post.CreatedAt = &created
		if updatedAt.Valid {
			updated := time.Unix(0, updatedAt.Int64).UTC()
			post.UpdatedAt = &updated
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return posts, nil
}

func (s *SQLiteStore) CreatePost(ctx context.Context, post models.NewPost) (string, error) {
	tags, err := json.Marshal(nonNil(post.Tags))
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO posts (id, title, tags, excerpt, content, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, post.Title, string(tags), post.Excerpt, post.Content, post.Date, s.now().UnixNano())
	if err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) UpdatePost(ctx context.Context, id string, update models.PostUpdate) error {
	tags, err := json.Marshal(nonNil(update.Tags))
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET title = ?, tags = ?, excerpt = ?, content = ?, updated_at = ?
		WHERE id = ?`,
		update.Title, string(tags), update.Excerpt, update.Content, s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeletePost(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
