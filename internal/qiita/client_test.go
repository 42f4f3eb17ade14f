package qiita

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient("test-token", testLogger())
	c.baseURL = srv.URL
	return c
}

func articleJSON(id string, likes, stocks int) string {
	return fmt.Sprintf(`{
		"id": %q,
		"likes_count": %d,
		"stocks_count": %d,
		"title": "article %s",
		"url": "https://qiita.com/items/%s",
		"created_at": "2024-03-01T10:00:00Z",
		"updated_at": "2024-03-02T10:00:00Z"
	}`, id, likes, stocks, id, id)
}

func TestClient_Search(t *testing.T) {
	var gotQuery, gotAuth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))

		fmt.Fprintf(w, "[%s,%s]", articleJSON("a1", 5, 2), articleJSON("a2", 0, 0))
	})

	articles, err := client.Search(context.Background(), "created:>=2024-01-01 created:<=2024-12-31", 2, 100)
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "created:>=2024-01-01 created:<=2024-12-31", gotQuery)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "a1", articles[0].ID)
	assert.Equal(t, 5, articles[0].LikesCount)
	assert.Equal(t, 2, articles[0].StocksCount)
	assert.Equal(t, 7, articles[0].Reactions())

	// Timestamps carry an explicit offset after decoding.
	_, offset := articles[0].CreatedAt.Zone()
	assert.Equal(t, 0, offset)
}

func TestClient_Search_Non200IsEmptyPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"rate limit"}`)
	})

	articles, err := client.Search(context.Background(), "created:>=2024-01-01 created:<=2024-12-31", 1, 100)
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestClient_Search_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"an array"}`)
	})

	_, err := client.Search(context.Background(), "q", 1, 100)
	assert.Error(t, err)
}

func TestClient_Search_InvalidArticle(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":"a1","likes_count":-1,"stocks_count":0,"title":"t","url":"https://qiita.com/a1","created_at":"2024-03-01T10:00:00Z","updated_at":"2024-03-01T10:00:00Z"}]`)
	})

	_, err := client.Search(context.Background(), "q", 1, 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "likes_count")
}

func TestClient_AuthenticatedUser(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/authenticated_user", r.URL.Path)
		fmt.Fprint(w, `{"id":"alice","name":"Alice"}`)
	})

	id, err := client.AuthenticatedUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", id)
}

func TestClient_AuthenticatedUser_Non200IsFatal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"bad token"}`)
	})

	_, err := client.AuthenticatedUser(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_OldestArticleDate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/alice/items", r.URL.Path)

		switch r.URL.Query().Get("page") {
		case "1":
			if r.URL.Query().Get("sort") == "" {
				// Total count of 250 puts the last page at 3.
				w.Header().Set("Total-Count", "250")
				fmt.Fprintf(w, "[%s]", articleJSON("new", 1, 1))
				return
			}
		case "3":
			assert.Equal(t, "created_at", r.URL.Query().Get("sort"))
			fmt.Fprintf(w, `[%s,{
				"id": "oldest",
				"likes_count": 0,
				"stocks_count": 0,
				"title": "first post",
				"url": "https://qiita.com/items/oldest",
				"created_at": "2019-06-15T08:30:00Z",
				"updated_at": "2019-06-15T08:30:00Z"
			}]`, articleJSON("older", 2, 0))
			return
		}
		t.Errorf("unexpected request: %s", r.URL.String())
	})

	date, err := client.OldestArticleDate(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "2019-06-15", date)
}

func TestClient_OldestArticleDate_NoArticles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Total-Count", "0")
		fmt.Fprint(w, `[]`)
	})

	_, err := client.OldestArticleDate(context.Background(), "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no articles")
}

func TestClient_OldestArticleDate_Non200IsFatal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message":"not found"}`)
	})

	_, err := client.OldestArticleDate(context.Background(), "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestArticle_Validate(t *testing.T) {
	valid := Article{
		ID:          "a1",
		LikesCount:  3,
		StocksCount: 1,
		Title:       "t",
		URL:         "https://qiita.com/items/a1",
		CreatedAt:   mustTime(t, "2024-03-01T10:00:00Z"),
		UpdatedAt:   mustTime(t, "2024-03-01T10:00:00Z"),
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Article)
	}{
		{"empty id", func(a *Article) { a.ID = "" }},
		{"negative likes", func(a *Article) { a.LikesCount = -1 }},
		{"negative stocks", func(a *Article) { a.StocksCount = -5 }},
		{"relative url", func(a *Article) { a.URL = "/items/a1" }},
		{"garbage url", func(a *Article) { a.URL = "://" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.mutate(&a)
			assert.Error(t, a.Validate())
		})
	}
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}
