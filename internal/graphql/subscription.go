package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"Linkfeed/internal/core/links"
)

// graphql-ws (subscriptions-transport-ws) message types
const (
	msgConnectionInit  = "connection_init"
	msgConnectionAck   = "connection_ack"
	msgConnectionError = "connection_error"
	msgKeepAlive       = "ka"
	msgStart           = "start"
	msgData            = "data"
	msgError           = "error"
	msgComplete        = "complete"
	msgStop            = "stop"
)

const subprotocol = "graphql-ws"

// EventHandler receives decoded push events. Events from one connector are
// delivered sequentially in arrival order.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *links.PushEvent) error
}

// Channel is one subscription: the push kind it produces and its document
type Channel struct {
	Kind  links.EventKind
	Name  string
	Query string
}

// NewLinksChannel is the newLink subscription
var NewLinksChannel = Channel{Kind: links.EventNewLink, Name: "NewLinks", Query: NewLinksSubscription}

// NewVotesChannel is the newVote subscription
var NewVotesChannel = Channel{Kind: links.EventNewVote, Name: "NewVotes", Query: NewVotesSubscription}

type wsMessage struct {
	Payload json.RawMessage `json:"payload,omitempty"`
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
}

// SubscriptionConnector keeps one websocket subscription open and hands each
// pushed payload to the handler
type SubscriptionConnector struct {
	handler      EventHandler
	tokens       TokenSource
	channel      Channel
	wsURL        string
	retryDelay   time.Duration
	readTimeout  time.Duration
	pingInterval time.Duration
}

// NewSubscriptionConnector creates a connector for channel on the websocket endpoint wsURL
func NewSubscriptionConnector(wsURL string, channel Channel, handler EventHandler, tokens TokenSource) *SubscriptionConnector {
	return &SubscriptionConnector{
		handler:      handler,
		tokens:       tokens,
		channel:      channel,
		wsURL:        wsURL,
		retryDelay:   5 * time.Second,
		readTimeout:  60 * time.Second,
		pingInterval: 30 * time.Second,
	}
}

// Start consumes the subscription until ctx is cancelled, reconnecting on errors
func (c *SubscriptionConnector) Start(ctx context.Context) error {
	log.Printf("Starting %s subscription: %s", c.channel.Name, c.wsURL)

	for {
		err := c.connect(ctx)
		if ctx.Err() != nil {
			log.Printf("%s subscription shutting down", c.channel.Name)
			return ctx.Err()
		}
		log.Printf("%s subscription error: %v. Retrying in %s...", c.channel.Name, err, c.retryDelay)

		select {
		case <-ctx.Done():
			log.Printf("%s subscription shutting down", c.channel.Name)
			return ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

// connect establishes the websocket, starts the subscription, and processes messages
func (c *SubscriptionConnector) connect(ctx context.Context) error {
	dialer := *websocket.DefaultDialer
	dialer.Subprotocols = []string{subprotocol}

	conn, _, err := dialer.DialContext(ctx, c.wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			log.Printf("Failed to close WebSocket connection: %v", closeErr)
		}
	}()

	// Unblock the read loop when the caller cancels
	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = conn.Close()
	})
	defer stop()

	if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
		log.Printf("Failed to set read deadline: %v", err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	})

	var writeMu sync.Mutex
	write := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	initPayload, err := c.initPayload(ctx)
	if err != nil {
		return err
	}
	if err := write(wsMessage{Type: msgConnectionInit, Payload: initPayload}); err != nil {
		return fmt.Errorf("failed to send connection_init: %w", err)
	}

	opID := uuid.NewString()
	startPayload, err := json.Marshal(Operation{Name: c.channel.Name, Query: c.channel.Query})
	if err != nil {
		return fmt.Errorf("failed to encode subscription: %w", err)
	}
	if err := write(wsMessage{ID: opID, Type: msgStart, Payload: startPayload}); err != nil {
		return fmt.Errorf("failed to send start: %w", err)
	}
	defer func() {
		_ = write(wsMessage{ID: opID, Type: msgStop})
	}()

	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	var closeOnce sync.Once

	go func() {
		for {
			select {
			case <-ticker.C:
				writeMu.Lock()
				err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second))
				writeMu.Unlock()
				if err != nil {
					log.Printf("Failed to send ping: %v", err)
					closeOnce.Do(func() { close(done) })
					return
				}
			case <-done:
				return
			}
		}
	}()
	defer closeOnce.Do(func() { close(done) })

	for {
		select {
		case <-done:
			return errors.New("connection closed by ping failure")
		default:
		}

		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		if err := conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			log.Printf("Failed to extend read deadline: %v", err)
		}

		switch msg.Type {
		case msgConnectionAck:
			log.Printf("Connected to %s subscription", c.channel.Name)
		case msgKeepAlive:
		case msgConnectionError:
			return fmt.Errorf("connection rejected: %s", string(msg.Payload))
		case msgError:
			if msg.ID == opID {
				return fmt.Errorf("subscription rejected: %s", string(msg.Payload))
			}
		case msgComplete:
			if msg.ID == opID {
				return errors.New("subscription completed by server")
			}
		case msgData:
			if msg.ID != opID {
				continue
			}
			c.dispatch(ctx, msg.Payload)
		}
	}
}

// dispatch decodes one data payload and hands it to the handler.
// Malformed payloads are dropped so the cached value stays as it was.
func (c *SubscriptionConnector) dispatch(ctx context.Context, payload json.RawMessage) {
	var envelope response
	if err := json.Unmarshal(payload, &envelope); err != nil {
		log.Printf("Failed to parse %s payload: %v", c.channel.Name, err)
		return
	}
	if len(envelope.Errors) > 0 {
		log.Printf("%s payload carried errors: %s", c.channel.Name, envelope.Errors[0].Message)
		return
	}

	event, err := DecodePushEvent(c.channel.Kind, envelope.Data)
	if err != nil {
		log.Printf("Dropping %s event: %v", c.channel.Name, err)
		return
	}

	if err := c.handler.HandleEvent(ctx, event); err != nil {
		log.Printf("Failed to handle %s event: %v", c.channel.Name, err)
	}
}

// initPayload carries the auth token as connection params when one is stored
func (c *SubscriptionConnector) initPayload(ctx context.Context) (json.RawMessage, error) {
	params := map[string]string{}
	if c.tokens != nil {
		if token, err := c.tokens.Get(ctx); err == nil && token != "" {
			params["authToken"] = token
		}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode connection params: %w", err)
	}
	return raw, nil
}
