// Package graphql executes the feed's queries, mutations, and subscriptions
// against the backend and decodes their payloads into the domain types.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"Linkfeed/internal/core/links"
)

// TokenSource supplies the bearer token for authenticated operations
type TokenSource interface {
	Get(ctx context.Context) (string, error)
}

// Client executes GraphQL operations over HTTP
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	tokens     TokenSource
	logger     *slog.Logger
	endpoint   string
}

var (
	_ links.Fetcher = (*Client)(nil)
	_ links.Voter   = (*Client)(nil)
	_ links.Poster  = (*Client)(nil)
)

// ClientOptions configures a Client
type ClientOptions struct {
	Tokens TokenSource
	Logger *slog.Logger
	// Timeout bounds each HTTP round trip (default 15s)
	Timeout time.Duration
	// RequestsPerSecond limits outgoing operations; 0 disables limiting
	RequestsPerSecond float64
}

// NewClient creates a client for the GraphQL endpoint at endpoint
func NewClient(endpoint string, opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    limiter,
		tokens:     opts.Tokens,
		logger:     opts.Logger,
		endpoint:   endpoint,
	}
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Do executes op and returns the raw "data" member of the response
func (c *Client) Do(ctx context.Context, op Operation) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}

	body, err := json.Marshal(op)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to encode request: %w", op.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: request failed: %w", op.Name, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("failed to close response body", "error", closeErr)
		}
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", op.Name, err)
	}

	c.logger.Debug("graphql operation completed",
		"operation", op.Name,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, wrapStatus(resp.StatusCode, op.Name, strings.TrimSpace(string(raw)))
	}

	var envelope response
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", op.Name, links.ErrMalformedPayload, err)
	}

	if len(envelope.Errors) > 0 {
		messages := make([]string, len(envelope.Errors))
		for i, e := range envelope.Errors {
			messages[i] = e.Message
		}
		return nil, &ResponseError{Operation: op.Name, Messages: messages}
	}

	return envelope.Data, nil
}

// token returns the stored credential, or "" when none is usable
func (c *Client) token(ctx context.Context) string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.Get(ctx)
	if err != nil {
		return ""
	}
	return token
}

// FetchFeed runs FeedQuery with the key's parameters
func (c *Client) FetchFeed(ctx context.Context, key links.FeedKey) (*links.FeedResult, error) {
	data, err := c.Do(ctx, Operation{Name: "FeedQuery", Query: FeedQuery, Variables: key.Variables()})
	if err != nil {
		return nil, err
	}
	return DecodeFeed(data)
}

// SearchFeed runs FeedSearchQuery with filter as its only variable
func (c *Client) SearchFeed(ctx context.Context, filter string) ([]links.Link, error) {
	data, err := c.Do(ctx, Operation{
		Name:      "FeedSearchQuery",
		Query:     FeedSearchQuery,
		Variables: map[string]any{"filter": filter},
	})
	if err != nil {
		return nil, err
	}
	return DecodeSearch(data)
}

// Vote runs VoteMutation and returns the link's confirmed vote set
func (c *Client) Vote(ctx context.Context, linkID string) ([]links.Vote, error) {
	data, err := c.Do(ctx, Operation{
		Name:      "VoteMutation",
		Query:     VoteMutation,
		Variables: map[string]any{"linkId": linkID},
	})
	if err != nil {
		return nil, err
	}
	return DecodeVote(data)
}

// PostLink runs PostMutation
func (c *Client) PostLink(ctx context.Context, description, url string) (*links.Link, error) {
	data, err := c.Do(ctx, Operation{
		Name:      "PostMutation",
		Query:     PostMutation,
		Variables: map[string]any{"description": description, "url": url},
	})
	if err != nil {
		return nil, err
	}
	return DecodePost(data)
}

// Login runs LoginMutation and returns the issued token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	data, err := c.Do(ctx, Operation{
		Name:      "LoginMutation",
		Query:     LoginMutation,
		Variables: map[string]any{"email": email, "password": password},
	})
	if err != nil {
		return "", err
	}
	return DecodeToken(data)
}

// Signup runs SignupMutation and returns the issued token
func (c *Client) Signup(ctx context.Context, email, password, name string) (string, error) {
	data, err := c.Do(ctx, Operation{
		Name:      "SignupMutation",
		Query:     SignupMutation,
		Variables: map[string]any{"email": email, "password": password, "name": name},
	})
	if err != nil {
		return "", err
	}
	return DecodeToken(data)
}
