package blog

import (
	"strings"

	"github.com/UgurOz1/portfolyo/internal/models"
)

// Filter keeps the posts whose title, excerpt or any tag contains query,
// ignoring case. An empty query returns posts unchanged. Order is preserved.
func Filter(posts []models.Post, query string) []models.Post {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return posts
	}

	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p models.Post, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Excerpt), q) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}
