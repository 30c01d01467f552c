// Package session implements the per-session actor that owns one match's
// authoritative state and its set of attached connections.
package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"scoreclock/internal/scoreboard"
	"scoreclock/internal/store"
	"scoreclock/pkg/protocol"
)

type Msg interface{ isSessionMsg() }

// FromClient carries one validated action from an attached connection.
// A nil Action (an unrecognized type tag) is dropped without comment.
type FromClient struct {
	ClientID string
	Action   scoreboard.Action
}

func (FromClient) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan protocol.ServerMessage // where this client receives frames
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

type GetView struct {
	Reply chan View
}

func (GetView) isSessionMsg() {}

// View reflects internal state without data races; used by tests and
// diagnostics.
type View struct {
	NumClients int
	EmptySince time.Time // zero while at least one connection is attached
	State      protocol.GameState
}

// Deps wires a session to its collaborators. Zero fields get working
// defaults; Release, when set, is called right before an idle eviction so the
// owner can drop its reference.
type Deps struct {
	Store          store.Store
	Defaults       scoreboard.Defaults
	Clock          clockwork.Clock
	Logger         *zap.Logger
	KeepAliveEvery time.Duration
	IdleAfter      time.Duration
	Release        func(id string, s *Session)
}

// Session is the single-threaded owner of one session's GameState and
// connection registry. All mutation flows through the inbox; state, clients,
// and timers are touched only by the loop goroutine.
type Session struct {
	id         string
	inbox      chan Msg
	state      protocol.GameState
	clients    map[string]chan protocol.ServerMessage
	deps       Deps
	keepalive  clockwork.Timer // armed while >=1 connection is attached
	idle       clockwork.Timer // armed while 0 connections are attached
	emptySince time.Time
	log        *zap.Logger
	ctx        context.Context
	cancel     context.CancelFunc
}

func New(parent context.Context, id string, initial protocol.GameState, deps Deps) *Session {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.KeepAliveEvery <= 0 {
		deps.KeepAliveEvery = 60 * time.Second
	}
	if deps.IdleAfter <= 0 {
		deps.IdleAfter = 5 * time.Minute
	}

	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		id:         id,
		inbox:      make(chan Msg, 64),
		state:      initial,
		clients:    make(map[string]chan protocol.ServerMessage),
		deps:       deps,
		emptySince: deps.Clock.Now(),
		log:        deps.Logger.Named("session").With(zap.String("session_id", id)),
		ctx:        ctx,
		cancel:     cancel,
	}
	s.idle = deps.Clock.NewTimer(deps.IdleAfter)
	go s.loop()
	return s
}

// Inbox exposes the actor's mailbox to the transport layer and tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

func (s *Session) ID() string { return s.id }

// Done is closed once the actor has shut down and stopped draining its inbox.
func (s *Session) Done() <-chan struct{} { return s.ctx.Done() }

func (s *Session) loop() {
	for {
		var wake, idle <-chan time.Time
		if s.keepalive != nil {
			wake = s.keepalive.Chan()
		}
		if s.idle != nil {
			idle = s.idle.Chan()
		}

		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case <-wake:
			s.handleKeepAlive()

		case <-idle:
			if len(s.clients) == 0 {
				s.log.Info("evicting idle session")
				if s.deps.Release != nil {
					s.deps.Release(s.id, s)
				}
				s.shutdown()
				return
			}
			s.idle = nil

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.handleJoin(msg)
			case Leave:
				s.evict(msg.ClientID)
			case FromClient:
				s.handleAction(msg)
			case GetView:
				msg.Reply <- View{
					NumClients: len(s.clients),
					EmptySince: s.emptySince,
					State:      s.state,
				}
			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// handleJoin registers the connection and immediately hands it a full
// snapshot; there is no diffing. The first connection arms the keep-alive
// wake timer.
func (s *Session) handleJoin(msg Join) {
	s.clients[msg.ClientID] = msg.Outbox
	s.emptySince = time.Time{}
	if s.idle != nil {
		s.idle.Stop()
		s.idle = nil
	}
	if s.keepalive == nil {
		s.keepalive = s.deps.Clock.NewTimer(s.deps.KeepAliveEvery)
	}

	s.state.ServerTime = s.deps.Clock.Now().UnixMilli()
	if snap, ok := s.snapshot(); ok {
		s.send(msg.ClientID, snap)
	}
}

// handleKeepAlive pushes a periodic time-sync broadcast. With no connections
// left it stands down by not rescheduling, letting the host treat the
// session as idle.
func (s *Session) handleKeepAlive() {
	if len(s.clients) == 0 {
		s.keepalive.Stop()
		s.keepalive = nil
		return
	}
	s.state.ServerTime = s.deps.Clock.Now().UnixMilli()
	s.broadcast()
	s.keepalive.Reset(s.deps.KeepAliveEvery)
}

func (s *Session) handleAction(msg FromClient) {
	now := s.deps.Clock.Now()

	switch a := msg.Action.(type) {
	case nil:
		return

	case scoreboard.GetGameState:
		// Doubles as the protocol's sync request: a fresh snapshot straight
		// back to the requester.
		s.state.ServerTime = now.UnixMilli()
		if snap, ok := s.snapshot(); ok {
			s.send(msg.ClientID, snap)
		}

	case scoreboard.TimeSyncRequest:
		s.send(msg.ClientID, protocol.NewTimeSyncMessage(a.ClientTime, now.UnixMilli()))

	default:
		prev := s.state
		if !scoreboard.Apply(&s.state, msg.Action, s.deps.Defaults, now) {
			return
		}
		s.state.ServerTime = now.UnixMilli()
		if err := s.deps.Store.Save(s.ctx, s.id, s.state); err != nil {
			// Write-through: an action that was not persisted did not
			// happen. Rolling back keeps snapshot requests consistent with
			// what a rehydration would serve.
			s.state = prev
			s.log.Error("persist failed, dropping action", zap.Error(err))
			return
		}
		s.broadcast()
	}
}

func (s *Session) snapshot() (protocol.ServerMessage, bool) {
	msg, err := protocol.NewStateMessage(&s.state, s.state.ServerTime)
	if err != nil {
		s.log.Error("encode snapshot", zap.Error(err))
		return protocol.ServerMessage{}, false
	}
	return msg, true
}

// send delivers one frame to one connection; a connection that cannot take
// the send is evicted, same as during broadcast.
func (s *Session) send(clientID string, msg protocol.ServerMessage) {
	ch, ok := s.clients[clientID]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		s.log.Warn("dropping slow connection", zap.String("client_id", clientID))
		s.evict(clientID)
	}
}

// broadcast serializes once and fans out best-effort: an undeliverable
// connection is evicted and the fan-out continues with the rest.
func (s *Session) broadcast() {
	msg, ok := s.snapshot()
	if !ok {
		return
	}
	for id, ch := range s.clients {
		select {
		case ch <- msg:
		default:
			s.log.Warn("dropping slow connection", zap.String("client_id", id))
			s.evict(id)
		}
	}
}

func (s *Session) evict(clientID string) {
	ch, ok := s.clients[clientID]
	if !ok {
		return
	}
	delete(s.clients, clientID)
	close(ch)
	if len(s.clients) == 0 {
		s.emptySince = s.deps.Clock.Now()
		if s.idle == nil {
			s.idle = s.deps.Clock.NewTimer(s.deps.IdleAfter)
		} else {
			s.idle.Reset(s.deps.IdleAfter)
		}
	}
}

func (s *Session) shutdown() {
	for id, ch := range s.clients {
		close(ch)
		delete(s.clients, id)
	}
	// A Join racing the eviction must not be left with an open outbox.
	for {
		select {
		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				close(msg.Outbox)
			case GetView:
				select {
				case msg.Reply <- View{State: s.state, EmptySince: s.emptySince}:
				default:
				}
			}
		default:
			s.cancel()
			return
		}
	}
}
