package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Linkfeed/internal/core/links"
)

type staticTokens string

func (s staticTokens) Get(ctx context.Context) (string, error) {
	return string(s), nil
}

type capturedRequest struct {
	Operation Operation
	Auth      string
}

func newTestServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if captured != nil {
			captured.Auth = r.Header.Get("Authorization")
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured.Operation))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchFeed(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, `{"data": {"feed": {"links": [`+sampleLink+`], "count": 7}}}`, &captured)

	c := NewClient(srv.URL, ClientOptions{Tokens: staticTokens("tok")})
	key := links.FeedKey{Offset: 5, Limit: links.PageSize, OrderBy: links.OrderCreatedAtDesc}

	result, err := c.FetchFeed(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Count)
	require.Len(t, result.Links, 1)

	assert.Equal(t, "FeedQuery", captured.Operation.Name)
	assert.Equal(t, FeedQuery, captured.Operation.Query)
	assert.EqualValues(t, 5, captured.Operation.Variables["first"])
	assert.EqualValues(t, 5, captured.Operation.Variables["skip"])
	assert.Equal(t, "createdAt_DESC", captured.Operation.Variables["orderBy"])
	assert.Equal(t, "Bearer tok", captured.Auth)
}

func TestClient_NoTokenNoAuthHeader(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK, `{"data": {"feed": {"links": []}}}`, &captured)

	c := NewClient(srv.URL, ClientOptions{})
	got, err := c.SearchFeed(context.Background(), "rust")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, captured.Auth)
	assert.Equal(t, map[string]any{"filter": "rust"}, captured.Operation.Variables)
}

func TestClient_Vote(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK,
		`{"data": {"vote": {"id": "v2", "link": {"votes": [{"id": "v1", "user": {"id": "a"}}, {"id": "v2", "user": {"id": "b"}}]}, "user": {"id": "b"}}}}`,
		&captured)

	c := NewClient(srv.URL, ClientOptions{Tokens: staticTokens("tok")})
	votes, err := c.Vote(context.Background(), "link-1")
	require.NoError(t, err)
	assert.Len(t, votes, 2)
	assert.Equal(t, map[string]any{"linkId": "link-1"}, captured.Operation.Variables)
}

func TestClient_Login(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"data": {"login": {"token": "jwt-token"}}}`, nil)

	c := NewClient(srv.URL, ClientOptions{})
	token, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", token)
}

func TestClient_PostLink(t *testing.T) {
	var captured capturedRequest
	srv := newTestServer(t, http.StatusOK,
		`{"data": {"post": {"id": "p1", "createdAt": "2024-03-01T12:30:00Z", "url": "https://a.test", "description": "A"}}}`,
		&captured)

	c := NewClient(srv.URL, ClientOptions{})
	l, err := c.PostLink(context.Background(), "A", "https://a.test")
	require.NoError(t, err)
	assert.Equal(t, "p1", l.ID)
	assert.Equal(t, "PostMutation", captured.Operation.Name)
}

func TestClient_GraphQLErrors(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"data": null, "errors": [{"message": "Not authenticated"}]}`, nil)

	c := NewClient(srv.URL, ClientOptions{})
	_, err := c.Vote(context.Background(), "link-1")
	require.Error(t, err)
	assert.True(t, IsResponseError(err))
	assert.Contains(t, err.Error(), "Not authenticated")
}

func TestClient_StatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		expected error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusBadGateway, ErrServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := newTestServer(t, tt.status, `nope`, nil)
			c := NewClient(srv.URL, ClientOptions{})

			_, err := c.FetchFeed(context.Background(), links.FeedKey{Limit: links.RankedWindow})
			assert.ErrorIs(t, err, tt.expected)
		})
	}
	assert.True(t, IsAuthError(wrapStatus(401, "op", "")))
}

func TestClient_MalformedEnvelope(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `<html>`, nil)
	c := NewClient(srv.URL, ClientOptions{})

	_, err := c.FetchFeed(context.Background(), links.FeedKey{Limit: links.RankedWindow})
	assert.ErrorIs(t, err, links.ErrMalformedPayload)
}

func TestClient_RateLimiterHonoursContext(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"data": {"feed": {"links": []}}}`, nil)
	c := NewClient(srv.URL, ClientOptions{RequestsPerSecond: 0.001})

	// The first request consumes the only token
	_, err := c.SearchFeed(context.Background(), "a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.SearchFeed(ctx, "b")
	assert.Error(t, err)
}
