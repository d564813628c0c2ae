package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Linkfeed/internal/core/links"
)

type recordingHandler struct {
	events chan *links.PushEvent
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *links.PushEvent) error {
	h.events <- event
	return nil
}

// fakeSubscriptionServer speaks the server side of graphql-ws and pushes the
// given data payloads once the subscription starts
func fakeSubscriptionServer(t *testing.T, payloads []string, initSeen chan<- map[string]string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{Subprotocols: []string{subprotocol}}

	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg.Type {
			case msgConnectionInit:
				params := map[string]string{}
				_ = json.Unmarshal(msg.Payload, &params)
				if initSeen != nil {
					once.Do(func() { initSeen <- params })
				}
				_ = conn.WriteJSON(wsMessage{Type: msgConnectionAck})
				_ = conn.WriteJSON(wsMessage{Type: msgKeepAlive})
			case msgStart:
				// Unrelated operation ids are ignored by the client
				_ = conn.WriteJSON(wsMessage{ID: "other", Type: msgData, Payload: json.RawMessage(`{"data": {}}`)})
				for _, p := range payloads {
					_ = conn.WriteJSON(wsMessage{ID: msg.ID, Type: msgData, Payload: json.RawMessage(p)})
				}
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSubscriptionConnector_DeliversInOrder(t *testing.T) {
	second := strings.Replace(sampleLink, `"link-1"`, `"link-2"`, 1)
	payloads := []string{
		`{"data": {"newLink": {"node": ` + sampleLink + `}}}`,
		`{"data": {"newLink": {"node": {"id": ""}}}}`, // malformed, dropped
		`{"errors": [{"message": "boom"}]}`,           // error payload, dropped
		`{"data": {"newLink": {"node": ` + second + `}}}`,
	}
	initSeen := make(chan map[string]string, 1)
	srv := fakeSubscriptionServer(t, payloads, initSeen)

	handler := &recordingHandler{events: make(chan *links.PushEvent, 10)}
	c := NewSubscriptionConnector(wsURL(srv), NewLinksChannel, handler, staticTokens("tok"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()

	select {
	case params := <-initSeen:
		assert.Equal(t, "tok", params["authToken"])
	case <-time.After(5 * time.Second):
		t.Fatal("connection_init not received")
	}

	var got []string
	for len(got) < 2 {
		select {
		case e := <-handler.events:
			assert.Equal(t, links.EventNewLink, e.Kind)
			got = append(got, e.Link.ID)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for events, got %v", got)
		}
	}
	assert.Equal(t, []string{"link-1", "link-2"}, got)

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("connector did not stop after cancel")
	}

	select {
	case e := <-handler.events:
		t.Fatalf("unexpected extra event %v", e.Link.ID)
	default:
	}
}

func TestSubscriptionConnector_StopsWhileRetrying(t *testing.T) {
	handler := &recordingHandler{events: make(chan *links.PushEvent, 1)}
	c := NewSubscriptionConnector("ws://127.0.0.1:1", NewVotesChannel, handler, nil)
	c.retryDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("connector did not stop while waiting to retry")
	}
}
