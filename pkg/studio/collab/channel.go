// Package collab maintains the websocket room shared by everyone
// editing one workspace. Messages whose type carries the
// "collaboration_" prefix update the local presence map; everything
// else is a workflow status event and is handed to the status
// callback.
package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/tyboo/studiograph/pkg/studio/execution"
	"github.com/tyboo/studiograph/pkg/studio/observability"
)

// ErrChannelClosed is returned by Join after Close.
var ErrChannelClosed = errors.New("collab: channel closed")

// collaborationPrefix routes inbound messages: matching types are
// presence traffic, the rest are status events.
const collaborationPrefix = "collaboration_"

// TypeCursor is the one presence message type the room carries today.
// Other collaboration-prefixed types are ignored, and presence entries
// are never removed individually: stale collaborators persist until a
// reconnect resets the map.
const TypeCursor = collaborationPrefix + "cursor"

// Cursor is a canvas position in flow coordinates.
type Cursor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Collaborator is one remote participant's presence state.
type Collaborator struct {
	Name   string  `json:"name,omitempty"`
	Cursor *Cursor `json:"cursor,omitempty"`
}

// envelope is the wire shape of every room message. Status events
// carry their fields at the top level alongside Type, so the raw bytes
// are re-decoded into an execution.StatusEvent when Type has no
// collaboration prefix.
type envelope struct {
	Type   string          `json:"type"`
	UserID string          `json:"user_id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Identity gates outbound presence. *api.Session satisfies it.
type Identity interface {
	Email() string
	Authenticated() bool
}

// Options configures a Channel.
type Options struct {
	// Identity tags outbound cursor messages and gates sending.
	// Nil suppresses all sends.
	Identity Identity

	// OnStatus receives decoded workflow status events. Nil drops
	// them.
	OnStatus func(execution.StatusEvent)

	// Logger receives connection lifecycle and decode errors.
	Logger *slog.Logger

	// Dialer overrides the websocket dialer. Nil uses the default.
	Dialer *websocket.Dialer
}

// Channel is one connection to a collaboration room.
type Channel struct {
	base     string
	identity Identity
	onStatus func(execution.StatusEvent)
	logger   *slog.Logger
	dialer   *websocket.Dialer

	mu            sync.Mutex
	conn          *websocket.Conn
	room          string
	closed        bool
	collaborators map[string]Collaborator

	readDone chan struct{}
}

// NewChannel prepares a channel against a websocket base URL such as
// "ws://localhost:8000". No connection is made until Join.
func NewChannel(base string, opts Options) *Channel {
	d := opts.Dialer
	if d == nil {
		d = websocket.DefaultDialer
	}
	return &Channel{
		base:          strings.TrimRight(base, "/"),
		identity:      opts.Identity,
		onStatus:      opts.OnStatus,
		logger:        opts.Logger,
		dialer:        d,
		collaborators: make(map[string]Collaborator),
	}
}

// Join connects to a room, replacing any current connection. The
// presence map resets: remote state is only trustworthy for the
// connection that delivered it.
func (c *Channel) Join(ctx context.Context, room string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	c.mu.Unlock()

	c.disconnect()

	conn, _, err := c.dialer.DialContext(ctx, c.base+"/ws/"+room, nil)
	if err != nil {
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.room = room
	c.collaborators = make(map[string]Collaborator)
	c.readDone = done
	c.mu.Unlock()

	observability.LogChannelOpen(c.logger, room)
	go c.readLoop(conn, room, done)
	return nil
}

// Room reports the room of the current connection, or "" when
// disconnected.
func (c *Channel) Room() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return ""
	}
	return c.room
}

// Connected reports whether a connection is up.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// Collaborators returns a snapshot of remote presence keyed by user id.
func (c *Channel) Collaborators() map[string]Collaborator {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]Collaborator, len(c.collaborators))
	for k, v := range c.collaborators {
		out[k] = v
	}
	return out
}

// SendCursor broadcasts the local cursor position. Calls while
// disconnected or unauthenticated are dropped silently: cursor traffic
// is too frequent to surface errors for.
func (c *Channel) SendCursor(x, y float64) {
	if c.identity == nil || !c.identity.Authenticated() {
		return
	}
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}

	payload, err := sonic.Marshal(map[string]any{
		"type":    "cursor",
		"user_id": c.identity.Email(),
		"data":    Cursor{X: x, Y: y},
	})
	if err != nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != conn {
		return
	}
	_ = conn.WriteMessage(websocket.TextMessage, payload)
}

// Close tears down the connection; the channel cannot be rejoined.
func (c *Channel) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.disconnect()
}

// disconnect drops the current connection, if any, and waits for its
// read loop to exit.
func (c *Channel) disconnect() {
	c.mu.Lock()
	conn := c.conn
	done := c.readDone
	c.conn = nil
	c.readDone = nil
	c.mu.Unlock()

	if conn == nil {
		return
	}
	_ = conn.Close()
	if done != nil {
		<-done
	}
}

func (c *Channel) readLoop(conn *websocket.Conn, room string, done chan struct{}) {
	defer close(done)
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			if c.conn == conn {
				c.conn = nil
				c.readDone = nil
			}
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				observability.LogChannelClosed(c.logger, room, err)
			}
			return
		}
		c.dispatch(raw)
	}
}

func (c *Channel) dispatch(raw []byte) {
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		if c.logger != nil {
			c.logger.Debug("discarding undecodable room message", "error", err)
		}
		return
	}

	if !strings.HasPrefix(env.Type, collaborationPrefix) {
		if c.onStatus == nil {
			return
		}
		var ev execution.StatusEvent
		if err := sonic.Unmarshal(raw, &ev); err != nil {
			return
		}
		c.onStatus(ev)
		return
	}

	if env.Type != TypeCursor {
		// Unknown presence traffic; the entry set only ever grows
		// within one connection.
		return
	}
	var cur Cursor
	if err := sonic.Unmarshal(env.Data, &cur); err != nil {
		return
	}
	c.mu.Lock()
	// Update in place so fields beyond the cursor survive.
	entry := c.collaborators[env.UserID]
	entry.Cursor = &cur
	c.collaborators[env.UserID] = entry
	c.mu.Unlock()
}
