// Package qiita provides a minimal client for the Qiita API v2.
package qiita

import (
	"fmt"
	"net/url"
	"time"
)

// Article is one Qiita post as returned by the items API.
// Instances are read-only once decoded.
type Article struct {
	ID          string    `json:"id"`
	LikesCount  int       `json:"likes_count"`
	StocksCount int       `json:"stocks_count"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Reactions returns the combined engagement count for the article.
func (a Article) Reactions() int {
	return a.LikesCount + a.StocksCount
}

// Validate checks that a decoded article satisfies the API contract.
func (a Article) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("article ID cannot be empty")
	}
	if a.LikesCount < 0 {
		return fmt.Errorf("article %s: negative likes_count %d", a.ID, a.LikesCount)
	}
	if a.StocksCount < 0 {
		return fmt.Errorf("article %s: negative stocks_count %d", a.ID, a.StocksCount)
	}
	u, err := url.Parse(a.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("article %s: invalid url %q", a.ID, a.URL)
	}
	if a.CreatedAt.IsZero() {
		return fmt.Errorf("article %s: missing created_at", a.ID)
	}
	return nil
}
