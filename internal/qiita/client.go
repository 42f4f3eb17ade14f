package qiita

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL = "https://qiita.com/api/v2"

	// MaxPerPage is the largest page size the items API accepts.
	MaxPerPage = 100

	// MaxPages is the deepest page the search endpoint serves. Queries
	// with more true pages are truncated here by the API itself.
	MaxPages = 100
)

// Client talks to the Qiita API v2. All calls are sequential; the
// client performs no retries.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

// NewClient creates a Qiita API client using the given access token.
func NewClient(token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		logger:  logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Search fetches one page of search results for query. A non-200
// response is treated as an empty page: it is logged and (nil, nil)
// is returned, so callers keep going with the remaining pages.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) ([]Article, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("query", query)

	body, status, err := c.get(ctx, "/items", params)
	if err != nil {
		return nil, fmt.Errorf("fetching page %d: %w", page, err)
	}
	if status != http.StatusOK {
		c.logger.Warn("search page returned non-200, treating as empty",
			"page", page,
			"status", status,
		)
		return nil, nil
	}

	var articles []Article
	if err := json.Unmarshal(body, &articles); err != nil {
		return nil, fmt.Errorf("decoding page %d: %w", page, err)
	}
	for _, a := range articles {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
	}
	return articles, nil
}

// AuthenticatedUser returns the user ID associated with the access
// token. A non-200 response is fatal for the call.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	body, status, err := c.get(ctx, "/authenticated_user", nil)
	if err != nil {
		return "", fmt.Errorf("fetching authenticated user: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("authentication failed: status %d: %s", status, truncateBody(body))
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &user); err != nil {
		return "", fmt.Errorf("decoding authenticated user: %w", err)
	}
	if user.ID == "" {
		return "", fmt.Errorf("authenticated user response has no id")
	}
	return user.ID, nil
}

// OldestArticleDate returns the creation date (YYYY-MM-DD) of the
// user's oldest post. It reads the Total-Count header from the first
// page to locate the last page, then fetches that page sorted by
// creation time. A non-200 response is fatal for the call.
func (c *Client) OldestArticleDate(ctx context.Context, userID string) (string, error) {
	path := fmt.Sprintf("/users/%s/items", url.PathEscape(userID))

	params := url.Values{}
	params.Set("page", "1")
	params.Set("per_page", strconv.Itoa(MaxPerPage))

	body, status, header, err := c.getWithHeader(ctx, path, params)
	if err != nil {
		return "", fmt.Errorf("fetching items for user %s: %w", userID, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("fetching items for user %s: status %d: %s", userID, status, truncateBody(body))
	}

	totalCount, _ := strconv.Atoi(header.Get("Total-Count"))
	if totalCount == 0 {
		return "", fmt.Errorf("user %s has no articles", userID)
	}
	lastPage := (totalCount-1)/MaxPerPage + 1

	params = url.Values{}
	params.Set("page", strconv.Itoa(lastPage))
	params.Set("per_page", strconv.Itoa(MaxPerPage))
	params.Set("sort", "created_at")

	body, status, err = c.get(ctx, path, params)
	if err != nil {
		return "", fmt.Errorf("fetching items for user %s: %w", userID, err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("fetching items for user %s: status %d: %s", userID, status, truncateBody(body))
	}

	var articles []Article
	if err := json.Unmarshal(body, &articles); err != nil {
		return "", fmt.Errorf("decoding items for user %s: %w", userID, err)
	}
	if len(articles) == 0 {
		return "", fmt.Errorf("user %s has no articles", userID)
	}

	oldest := articles[len(articles)-1].CreatedAt
	return oldest.Format("2006-01-02"), nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	body, status, _, err := c.getWithHeader(ctx, path, params)
	return body, status, err
}

func (c *Client) getWithHeader(ctx context.Context, path string, params url.Values) ([]byte, int, http.Header, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("creating request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("qiita API request", "path", path, "params", params.Encode())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("reading response: %w", err)
	}
	return body, resp.StatusCode, resp.Header, nil
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
