// internal/github/client_test.go
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a httptest server and a github client pointing to it.
func setupTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	// We can pass an empty token because we are not authenticating to the real GitHub.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client, err := NewClient("", server.URL, logger)
	require.NoError(t, err)

	return client, server
}

func TestClient_GetRepository(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/repos/test/repo", r.URL.Path)
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `{"id": 1, "name": "repo", "owner": {"login": "test"}, "html_url": "https://github.com/test/repo"}`)
	})
	client, _ := setupTestClient(t, handler)

	repo, err := client.GetRepository(context.Background(), "test", "repo")

	require.NoError(t, err)
	assert.Equal(t, "repo", repo.Name)
	assert.Equal(t, "test", repo.Owner)
	assert.Equal(t, int64(1), repo.GithubRepoID)
}

func TestClient_GetCommits_WindowParams(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/repos/test/repo/commits", r.URL.Path)
		// The window must be forwarded so GitHub filters server-side.
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("since"))
		assert.Equal(t, "2024-01-31T23:59:59Z", r.URL.Query().Get("until"))
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[
			{"sha": "abc", "commit": {"author": {"name": "tester", "email": "t@t.com", "date": "2024-01-02T12:00:00Z"}, "message": "feat: new feature"}, "html_url": "url1"},
			{"sha": "def", "commit": {"author": {"name": "tester", "email": "t@t.com", "date": "2024-01-03T12:00:00Z"}, "message": "fix: a bug"}, "html_url": "url2"}
		]`)
	})
	client, _ := setupTestClient(t, handler)

	commits, err := client.GetCommits(context.Background(), "test", "repo", since, until)

	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "abc", commits[0].SHA)
	assert.Equal(t, "fix: a bug", commits[1].Message)
}

func TestClient_GetCommits_Pagination(t *testing.T) {
	var requestCount int32
	var serverURL string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&requestCount, 1)
		if count == 1 {
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v3/repos/test/repo/commits?page=2>; rel="next"`, serverURL))
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, `[{"sha": "page1", "commit": {"author": {"date": "2024-01-01T12:00:00Z"}, "message": "first"}}]`)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[{"sha": "page2", "commit": {"author": {"date": "2024-01-02T12:00:00Z"}, "message": "second"}}]`)
	})
	client, server := setupTestClient(t, handler)
	serverURL = server.URL

	commits, err := client.GetCommits(context.Background(), "test", "repo", time.Time{}, time.Time{})

	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "page1", commits[0].SHA)
	assert.Equal(t, "page2", commits[1].SHA)
	assert.Equal(t, int32(2), atomic.LoadInt32(&requestCount))
}

func TestClient_GetIssues(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/repos/test/repo/issues", r.URL.Path)
		// Issues support only a "since" lower bound server-side.
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		assert.Equal(t, "2024-01-01T00:00:00Z", r.URL.Query().Get("since"))
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[
			{"number": 7, "title": "crash on startup", "state": "open", "user": {"login": "alice"}, "html_url": "u7", "created_at": "2024-01-05T09:00:00Z"},
			{"number": 8, "title": "docs typo", "state": "closed", "user": {"login": "bob"}, "html_url": "u8", "created_at": "2024-02-05T09:00:00Z"}
		]`)
	})
	client, _ := setupTestClient(t, handler)

	issues, err := client.GetIssues(context.Background(), "test", "repo", since)

	require.NoError(t, err)
	require.Len(t, issues, 2)
	assert.Equal(t, 7, issues[0].Number)
	assert.Equal(t, "crash on startup", issues[0].Title)
	assert.Equal(t, "alice", issues[0].Author)
}

func TestClient_GetPullRequests(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/repos/test/repo/pulls", r.URL.Path)
		// The pulls endpoint has no date filtering at all.
		assert.Equal(t, "all", r.URL.Query().Get("state"))
		assert.Empty(t, r.URL.Query().Get("since"))
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, `[
			{"number": 42, "title": "add caching", "state": "open", "user": {"login": "carol"}, "html_url": "u42", "created_at": "2024-01-10T14:00:00Z"}
		]`)
	})
	client, _ := setupTestClient(t, handler)

	prs, err := client.GetPullRequests(context.Background(), "test", "repo")

	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, 42, prs[0].Number)
	assert.Equal(t, "add caching", prs[0].Title)
}

func TestClient_UpstreamError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client, _ := setupTestClient(t, handler)

	_, err := client.GetRepository(context.Background(), "test", "repo")
	assert.Error(t, err)

	_, err = client.GetPullRequests(context.Background(), "test", "repo")
	assert.Error(t, err)
}
