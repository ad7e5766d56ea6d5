package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ExcerptLength is the number of characters of content kept in an excerpt.
const ExcerptLength = 140

const excerptSuffix = "…"

type Post struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Tags      []string   `json:"tags"`
	Excerpt   string     `json:"excerpt"`
	Content   string     `json:"content"`
	Date      string     `json:"date"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// PostPayload is what the composer submits for a create or an update.
type PostPayload struct {
	Title   string   `json:"title"`
	Tags    []string `json:"tags"`
	Content string   `json:"content"`
}

// NewPost is a document ready to be written by a store. CreatedAt is set by
// the store itself.
type NewPost struct {
	Title   string
	Tags    []string
	Excerpt string
	Content string
	Date    string
}

// PostUpdate holds the fields an update overwrites. UpdatedAt is set by the
// store; the creation time is never touched.
type PostUpdate struct {
	Title   string
	Tags    []string
	Excerpt string
	Content string
}

// Excerpt returns the first ExcerptLength characters of content followed by
// an ellipsis. The ellipsis is appended even when content is shorter.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) > ExcerptLength {
		runes = runes[:ExcerptLength]
	}
	return string(runes) + excerptSuffix
}

// PostDate formats t as the calendar date stored on new posts.
func PostDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// ParseTags splits a comma separated tag list, trimming entries and dropping
// empty ones.
func ParseTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// Build turns a payload into a document with its excerpt derived.
func (p PostPayload) Build(now time.Time) NewPost {
	return NewPost{
		Title:   p.Title,
		Tags:    cleanTags(p.Tags),
		Excerpt: Excerpt(p.Content),
		Content: p.Content,
		Date:    PostDate(now),
	}
}

// Update turns a payload into the field set written by an update.
func (p PostPayload) Update() PostUpdate {
	return PostUpdate{
		Title:   p.Title,
		Tags:    cleanTags(p.Tags),
		Excerpt: Excerpt(p.Content),
		Content: p.Content,
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ErrMalformedDocument is returned when a stored record cannot be read as a post.
var ErrMalformedDocument = errors.New("malformed post document")

// PostFromDocument converts a loosely typed store record into a Post. The
// title must be a string; other fields are coerced when possible and left
// empty otherwise.
func PostFromDocument(id string, data map[string]any) (Post, error) {
	title, ok := data["title"].(string)
	if !ok {
		return Post{}, fmt.Errorf("%w: %s: missing title", ErrMalformedDocument, id)
	}
	post := Post{ID: id, Title: title}

	tags, err := coerceStrings(data["tags"])
	if err != nil {
		return Post{}, fmt.Errorf("%w: %s: tags: %v", ErrMalformedDocument, id, err)
	}
	post.Tags = tags

	post.Content, _ = data["content"].(string)
	post.Excerpt, _ = data["excerpt"].(string)
	post.Date, _ = data["date"].(string)

	if post.CreatedAt, err = coerceTime(data["createdAt"]); err != nil {
		return Post{}, fmt.Errorf("%w: %s: createdAt: %v", ErrMalformedDocument, id, err)
	}
	if post.UpdatedAt, err = coerceTime(data["updatedAt"]); err != nil {
		return Post{}, fmt.Errorf("%w: %s: updatedAt: %v", ErrMalformedDocument, id, err)
	}
	return post, nil
}

func coerceStrings(v any) ([]string, error) {
	switch tags := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		return append([]string{}, tags...), nil
	case []any:
		out := make([]string, 0, len(tags))
		for _, t := range tags {
			s, ok := t.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected element %T", t)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}

func coerceTime(v any) (*time.Time, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		if t.IsZero() {
			return nil, nil
		}
		return &t, nil
	case *time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil, err
		}
		return &parsed, nil
	default:
		return nil, fmt.Errorf("unexpected type %T", v)
	}
}
