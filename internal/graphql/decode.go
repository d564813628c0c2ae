package graphql

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"Linkfeed/internal/core/links"
)

// Wire shapes of the payloads. They are only produced after schema validation
// and never leave this package.

type wireUser struct {
	ID   string  `json:"id"`
	Name *string `json:"name"`
}

type wireVote struct {
	User *wireUser `json:"user"`
	ID   string    `json:"id"`
}

type wireLink struct {
	PostedBy    *wireUser  `json:"postedBy"`
	ID          string     `json:"id"`
	CreatedAt   string     `json:"createdAt"`
	URL         string     `json:"url"`
	Description string     `json:"description"`
	Votes       []wireVote `json:"votes"`
}

type feedPayload struct {
	Feed struct {
		Links []wireLink `json:"links"`
		Count int        `json:"count"`
	} `json:"feed"`
}

type votePayload struct {
	Vote struct {
		Link struct {
			Votes []wireVote `json:"votes"`
		} `json:"link"`
		ID string `json:"id"`
	} `json:"vote"`
}

type postPayload struct {
	Post wireLink `json:"post"`
}

type authPayload struct {
	Login  *struct{ Token string } `json:"login"`
	Signup *struct{ Token string } `json:"signup"`
}

type newLinkPayload struct {
	NewLink struct {
		Node wireLink `json:"node"`
	} `json:"newLink"`
}

type newVotePayload struct {
	NewVote struct {
		Node struct {
			ID   string   `json:"id"`
			Link wireLink `json:"link"`
		} `json:"node"`
	} `json:"newVote"`
}

// validate checks raw against schema and unmarshals it into out
func validate(schema *gojsonschema.Schema, raw json.RawMessage, out any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%w: empty data", links.ErrMalformedPayload)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("%w: %v", links.ErrMalformedPayload, err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("%w: %s", links.ErrMalformedPayload, strings.Join(problems, "; "))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", links.ErrMalformedPayload, err)
	}
	return nil
}

func (w wireLink) toLink() (links.Link, error) {
	createdAt, err := time.Parse(time.RFC3339, w.CreatedAt)
	if err != nil {
		return links.Link{}, fmt.Errorf("%w: link %s: bad createdAt %q", links.ErrMalformedPayload, w.ID, w.CreatedAt)
	}

	l := links.Link{
		ID:          w.ID,
		URL:         w.URL,
		Description: w.Description,
		CreatedAt:   createdAt,
		Votes:       toVotes(w.Votes),
	}
	if w.PostedBy != nil {
		l.PostedBy = &links.UserRef{ID: w.PostedBy.ID}
		if w.PostedBy.Name != nil {
			l.PostedBy.Name = *w.PostedBy.Name
		}
	}
	return l, nil
}

func toVotes(wire []wireVote) []links.Vote {
	votes := make([]links.Vote, len(wire))
	for i, v := range wire {
		votes[i] = links.Vote{ID: v.ID}
		if v.User != nil {
			votes[i].User = links.UserRef{ID: v.User.ID}
		}
	}
	return votes
}

func toLinks(wire []wireLink) ([]links.Link, error) {
	out := make([]links.Link, 0, len(wire))
	seen := make(map[string]struct{}, len(wire))
	for _, w := range wire {
		if _, dup := seen[w.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate link id %s", links.ErrMalformedPayload, w.ID)
		}
		seen[w.ID] = struct{}{}

		l, err := w.toLink()
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// DecodeFeed decodes a FeedQuery data payload
func DecodeFeed(raw json.RawMessage) (*links.FeedResult, error) {
	var p feedPayload
	if err := validate(feedSchema, raw, &p); err != nil {
		return nil, err
	}
	decoded, err := toLinks(p.Feed.Links)
	if err != nil {
		return nil, err
	}
	return &links.FeedResult{Links: decoded, Count: p.Feed.Count}, nil
}

// DecodeSearch decodes a FeedSearchQuery data payload
func DecodeSearch(raw json.RawMessage) ([]links.Link, error) {
	var p feedPayload
	if err := validate(searchSchema, raw, &p); err != nil {
		return nil, err
	}
	return toLinks(p.Feed.Links)
}

// DecodeVote decodes a VoteMutation data payload into the link's confirmed vote set
func DecodeVote(raw json.RawMessage) ([]links.Vote, error) {
	var p votePayload
	if err := validate(voteSchema, raw, &p); err != nil {
		return nil, err
	}
	return toVotes(p.Vote.Link.Votes), nil
}

// DecodePost decodes a PostMutation data payload. The created link has no votes yet.
func DecodePost(raw json.RawMessage) (*links.Link, error) {
	var p postPayload
	if err := validate(postSchema, raw, &p); err != nil {
		return nil, err
	}
	l := &links.Link{
		ID:          p.Post.ID,
		URL:         p.Post.URL,
		Description: p.Post.Description,
		Votes:       []links.Vote{},
	}
	if p.Post.CreatedAt != "" {
		if createdAt, err := time.Parse(time.RFC3339, p.Post.CreatedAt); err == nil {
			l.CreatedAt = createdAt
		}
	}
	return l, nil
}

// DecodeToken decodes a LoginMutation or SignupMutation data payload
func DecodeToken(raw json.RawMessage) (string, error) {
	var p authPayload
	if err := validate(authSchema, raw, &p); err != nil {
		return "", err
	}
	switch {
	case p.Login != nil && p.Login.Token != "":
		return p.Login.Token, nil
	case p.Signup != nil && p.Signup.Token != "":
		return p.Signup.Token, nil
	}
	return "", fmt.Errorf("%w: no token in response", links.ErrMalformedPayload)
}

// DecodePushEvent decodes the data payload of a subscription message on the given channel
func DecodePushEvent(kind links.EventKind, raw json.RawMessage) (*links.PushEvent, error) {
	var wire wireLink

	switch kind {
	case links.EventNewLink:
		var p newLinkPayload
		if err := validate(newLinkSchema, raw, &p); err != nil {
			return nil, err
		}
		wire = p.NewLink.Node
	case links.EventNewVote:
		var p newVotePayload
		if err := validate(newVoteSchema, raw, &p); err != nil {
			return nil, err
		}
		wire = p.NewVote.Node.Link
	default:
		return nil, fmt.Errorf("%w: unknown channel %q", links.ErrMalformedPayload, kind)
	}

	l, err := wire.toLink()
	if err != nil {
		return nil, err
	}
	return &links.PushEvent{Kind: kind, Link: &l}, nil
}
