// Package client is a Go client for the scoreboard websocket protocol. It
// maintains the connection, re-anchors timer snapshots against the local
// clock, and estimates the server clock offset.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"scoreclock/pkg/protocol"
)

const (
	reconnectDelay = 3 * time.Second
	pingInterval   = 30 * time.Second
	dialTimeout    = 10 * time.Second
)

// Options configures a Client. BaseURL and SessionID are required.
type Options struct {
	BaseURL   string // e.g. "ws://localhost:8080"
	SessionID string
	Logger    *zap.Logger

	// OnState is called for every accepted snapshot, after the reconciler
	// has ingested it. Optional.
	OnState func(protocol.GameState)
	// OnError is called for server-reported protocol errors. Optional.
	OnError func(reason string)
}

// Client is a reconnecting websocket client for one session. It keeps
// retrying until its context is canceled, requesting a fresh snapshot after
// every (re)connect.
type Client struct {
	opts       Options
	log        *zap.Logger
	Reconciler *Reconciler
	Sync       *SyncEstimator
	KeepAlive  *IdleKeepAlive

	mu       sync.Mutex
	conn     *websocket.Conn
	syncSent time.Time
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" || opts.SessionID == "" {
		return nil, fmt.Errorf("client: BaseURL and SessionID are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Client{
		opts:       opts,
		log:        opts.Logger.Named("client"),
		Reconciler: NewReconciler(),
		Sync:       NewSyncEstimator(),
	}
	c.KeepAlive = NewIdleKeepAlive(nil, func() {
		if err := c.RequestState(); err != nil {
			c.log.Debug("keep-alive state request failed", zap.Error(err))
		}
	})
	return c, nil
}

// Run connects and serves the session until ctx is canceled, reconnecting
// after a fixed delay on any failure.
func (c *Client) Run(ctx context.Context) error {
	defer c.KeepAlive.Stop()
	for {
		if err := c.serve(ctx); err != nil {
			c.log.Warn("connection lost, reconnecting", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reconnectDelay):
		}
	}
}

func (c *Client) serve(ctx context.Context) error {
	url := fmt.Sprintf("%s/session/%s/ws", c.opts.BaseURL, c.opts.SessionID)
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := websocket.Dial(dctx, url, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dialing %s: %w", url, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.conn = nil
		c.mu.Unlock()
	}()

	c.log.Info("connected", zap.String("session_id", c.opts.SessionID))

	// The server pushes a snapshot on join; an explicit time sync primes the
	// offset estimator.
	if err := c.RequestTimeSync(); err != nil {
		return err
	}

	pctx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go c.pingLoop(pctx, conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		c.handleMessage(data)
	}
}

// pingLoop keeps middleboxes from reaping the idle connection.
func (c *Client) pingLoop(ctx context.Context, conn *websocket.Conn) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, dialTimeout)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	receivedAt := time.Now()

	var msg protocol.ServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Warn("discarding unparseable frame", zap.Error(err))
		return
	}

	switch msg.Type {
	case protocol.TypeGameState:
		var state protocol.GameState
		if err := json.Unmarshal(msg.Data, &state); err != nil {
			c.log.Warn("discarding bad snapshot", zap.Error(err))
			return
		}
		c.Reconciler.Ingest(state, receivedAt)
		c.KeepAlive.SetRunning(c.Reconciler.AnyRunning(receivedAt))
		c.KeepAlive.Bump()
		if c.opts.OnState != nil {
			c.opts.OnState(state)
		}

	case protocol.TypeTimeSync:
		var data protocol.TimeSyncData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		c.mu.Lock()
		sent := c.syncSent
		c.mu.Unlock()
		if !sent.IsZero() {
			c.Sync.Observe(sent, receivedAt, data.ServerTime)
		}

	case protocol.TypeError:
		var reason string
		_ = json.Unmarshal(msg.Data, &reason)
		c.log.Warn("server rejected message", zap.String("reason", reason))
		if c.opts.OnError != nil {
			c.opts.OnError(reason)
		}
	}
}

// Send delivers one action to the session. It fails if the client is
// currently between connections.
func (c *Client) Send(action protocol.ActionPayload) error {
	payload, err := json.Marshal(protocol.ActionEnvelope{Action: &action})
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("client: not connected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("sending %s: %w", action.Type, err)
	}
	c.KeepAlive.Bump()
	return nil
}

// RequestState asks the session for a fresh snapshot.
func (c *Client) RequestState() error {
	return c.Send(protocol.ActionPayload{Type: protocol.ActionGetGameState})
}

// RequestTimeSync starts one clock measurement round trip.
func (c *Client) RequestTimeSync() error {
	now := time.Now()
	c.mu.Lock()
	c.syncSent = now
	c.mu.Unlock()
	return c.Send(protocol.ActionPayload{
		Type:       protocol.ActionTimeSyncRequest,
		ClientTime: now.UnixMilli(),
	})
}
