package graphql

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Linkfeed/internal/core/links"
)

const sampleLink = `{
  "id": "link-1",
  "createdAt": "2024-03-01T12:30:00.000Z",
  "url": "https://go.dev",
  "description": "The Go language",
  "postedBy": {"id": "u1", "name": "Ada"},
  "votes": [{"id": "v1", "user": {"id": "u2"}}]
}`

func TestDecodeFeed(t *testing.T) {
	raw := json.RawMessage(`{"feed": {"links": [` + sampleLink + `], "count": 12}}`)

	result, err := DecodeFeed(raw)
	require.NoError(t, err)
	require.Len(t, result.Links, 1)
	assert.Equal(t, 12, result.Count)

	l := result.Links[0]
	assert.Equal(t, "link-1", l.ID)
	assert.Equal(t, "https://go.dev", l.URL)
	assert.Equal(t, "The Go language", l.Description)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), l.CreatedAt.UTC())
	require.NotNil(t, l.PostedBy)
	assert.Equal(t, "Ada", l.AuthorName())
	assert.Equal(t, []links.Vote{{ID: "v1", User: links.UserRef{ID: "u2"}}}, l.Votes)
}

func TestDecodeFeed_NullAuthor(t *testing.T) {
	raw := json.RawMessage(`{"feed": {"links": [{
	  "id": "link-2", "createdAt": "2024-03-01T12:30:00Z", "url": "https://x.test",
	  "description": "anon", "postedBy": null, "votes": []
	}], "count": 1}}`)

	result, err := DecodeFeed(raw)
	require.NoError(t, err)
	assert.Nil(t, result.Links[0].PostedBy)
	assert.Equal(t, "Unknown", result.Links[0].AuthorName())
	assert.NotNil(t, result.Links[0].Votes)
}

func TestDecodeFeed_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"null data", `null`},
		{"missing feed", `{}`},
		{"missing count", `{"feed": {"links": []}}`},
		{"link without id", `{"feed": {"links": [{"createdAt": "2024-03-01T12:30:00Z", "url": "u", "description": "d"}], "count": 1}}`},
		{"empty id", `{"feed": {"links": [{"id": "", "createdAt": "2024-03-01T12:30:00Z", "url": "u", "description": "d"}], "count": 1}}`},
		{"bad timestamp", `{"feed": {"links": [{"id": "a", "createdAt": "yesterday", "url": "u", "description": "d"}], "count": 1}}`},
		{"vote without id", `{"feed": {"links": [{"id": "a", "createdAt": "2024-03-01T12:30:00Z", "url": "u", "description": "d", "votes": [{"user": {"id": "x"}}]}], "count": 1}}`},
		{"duplicate ids", `{"feed": {"links": [` + sampleLink + `,` + sampleLink + `], "count": 2}}`},
		{"negative count", `{"feed": {"links": [], "count": -1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeFeed(json.RawMessage(tt.raw))
			assert.ErrorIs(t, err, links.ErrMalformedPayload)
		})
	}
}

func TestDecodeSearch(t *testing.T) {
	got, err := DecodeSearch(json.RawMessage(`{"feed": {"links": [` + sampleLink + `]}}`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "link-1", got[0].ID)
}

func TestDecodeVote(t *testing.T) {
	raw := json.RawMessage(`{"vote": {"id": "v9", "link": {"votes": [
	  {"id": "v1", "user": {"id": "u2"}},
	  {"id": "v9", "user": {"id": "u3"}}
	]}, "user": {"id": "u3"}}}`)

	votes, err := DecodeVote(raw)
	require.NoError(t, err)
	assert.Equal(t, []links.Vote{
		{ID: "v1", User: links.UserRef{ID: "u2"}},
		{ID: "v9", User: links.UserRef{ID: "u3"}},
	}, votes)

	_, err = DecodeVote(json.RawMessage(`{"vote": {"id": "v9"}}`))
	assert.ErrorIs(t, err, links.ErrMalformedPayload)
}

func TestDecodePost(t *testing.T) {
	l, err := DecodePost(json.RawMessage(`{"post": {"id": "p1", "createdAt": "2024-03-01T12:30:00Z", "url": "https://a.test", "description": "A"}}`))
	require.NoError(t, err)
	assert.Equal(t, "p1", l.ID)
	assert.Empty(t, l.Votes)
	assert.False(t, l.CreatedAt.IsZero())
}

func TestDecodeToken(t *testing.T) {
	token, err := DecodeToken(json.RawMessage(`{"login": {"token": "abc"}}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	token, err = DecodeToken(json.RawMessage(`{"signup": {"token": "def"}}`))
	require.NoError(t, err)
	assert.Equal(t, "def", token)

	_, err = DecodeToken(json.RawMessage(`{"login": {"token": ""}}`))
	assert.ErrorIs(t, err, links.ErrMalformedPayload)

	_, err = DecodeToken(json.RawMessage(`{}`))
	assert.ErrorIs(t, err, links.ErrMalformedPayload)
}

func TestDecodePushEvent_NewLink(t *testing.T) {
	event, err := DecodePushEvent(links.EventNewLink, json.RawMessage(`{"newLink": {"node": `+sampleLink+`}}`))
	require.NoError(t, err)
	assert.Equal(t, links.EventNewLink, event.Kind)
	assert.Equal(t, "link-1", event.Link.ID)
}

func TestDecodePushEvent_NewVote(t *testing.T) {
	raw := `{"newVote": {"node": {"id": "v1", "link": ` + sampleLink + `, "user": {"id": "u2"}}}}`

	event, err := DecodePushEvent(links.EventNewVote, json.RawMessage(raw))
	require.NoError(t, err)
	assert.Equal(t, links.EventNewVote, event.Kind)
	assert.Equal(t, "link-1", event.Link.ID)
	assert.Len(t, event.Link.Votes, 1)
}

func TestDecodePushEvent_Malformed(t *testing.T) {
	_, err := DecodePushEvent(links.EventNewLink, json.RawMessage(`{"newLink": {"node": {"url": "x"}}}`))
	assert.ErrorIs(t, err, links.ErrMalformedPayload)

	_, err = DecodePushEvent(links.EventNewVote, json.RawMessage(`{"newVote": {}}`))
	assert.ErrorIs(t, err, links.ErrMalformedPayload)

	// A newLink payload on the votes channel is not a vote
	_, err = DecodePushEvent(links.EventNewVote, json.RawMessage(`{"newLink": {"node": `+sampleLink+`}}`))
	assert.ErrorIs(t, err, links.ErrMalformedPayload)

	_, err = DecodePushEvent("deletedLink", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, links.ErrMalformedPayload)
}
