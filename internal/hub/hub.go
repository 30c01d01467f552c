// Package hub maps opaque session identifiers to live session actors,
// activating them from the store on first reference and dropping them again
// once idle.
package hub

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"scoreclock/internal/scoreboard"
	"scoreclock/internal/session"
	"scoreclock/internal/store"
)

type HubMsg interface{ isHubMsg() }

// Ensure resolves a session id to a running actor, activating one from the
// persisted record if needed. Replies nil for an unsafe identifier.
type Ensure struct {
	ID    string
	Reply chan *session.Session
}

// Get looks up an already-running actor; the reply may be nil.
type Get struct {
	ID    string
	Reply chan *session.Session
}

// Release is sent by a session actor as it evicts itself; the pointer match
// guards against dropping a newer actor under the same id.
type Release struct {
	ID    string
	Actor *session.Session
}

type ShutdownHub struct{}

func (Ensure) isHubMsg()      {}
func (Get) isHubMsg()         {}
func (Release) isHubMsg()     {}
func (ShutdownHub) isHubMsg() {}

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,50}$`)

// ValidSessionID accepts alphanumeric/hyphen identifiers up to 50 chars;
// everything else (including path traversal attempts) is rejected.
func ValidSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

// Deps configures the hub and every session it activates.
type Deps struct {
	Store          store.Store
	Defaults       scoreboard.Defaults
	Clock          clockwork.Clock
	Logger         *zap.Logger
	KeepAliveEvery time.Duration
	IdleAfter      time.Duration
}

type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	deps     Deps
	log      *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func New(parent context.Context, deps Deps) *Hub {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		deps:     deps,
		log:      deps.Logger.Named("hub"),
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Ensure:
				if !ValidSessionID(msg.ID) {
					msg.Reply <- nil
					break
				}
				if s := h.sessions[msg.ID]; s != nil {
					msg.Reply <- s
					break
				}
				s := h.activate(msg.ID)
				h.sessions[msg.ID] = s
				msg.Reply <- s

			case Get:
				msg.Reply <- h.sessions[msg.ID] // may be nil

			case Release:
				if h.sessions[msg.ID] == msg.Actor {
					delete(h.sessions, msg.ID)
				}

			case ShutdownHub:
				for _, s := range h.sessions {
					s.Inbox() <- session.Shutdown{}
				}
				clear(h.sessions)
				h.cancel()
			}
		}
	}
}

// activate is the hibernation wake-up path: load whatever was last persisted,
// repair it field by field, and only then let the actor serve messages. A
// missing record starts from defaults.
func (h *Hub) activate(id string) *session.Session {
	now := h.deps.Clock.Now()
	state, err := h.deps.Store.Load(h.ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		state = scoreboard.NewGameState(h.deps.Defaults, now)
	case err != nil:
		h.log.Error("loading session state, starting fresh",
			zap.String("session_id", id), zap.Error(err))
		state = scoreboard.NewGameState(h.deps.Defaults, now)
	}
	scoreboard.Repair(&state, h.deps.Defaults, now)

	return session.New(h.ctx, id, state, session.Deps{
		Store:          h.deps.Store,
		Defaults:       h.deps.Defaults,
		Clock:          h.deps.Clock,
		Logger:         h.deps.Logger,
		KeepAliveEvery: h.deps.KeepAliveEvery,
		IdleAfter:      h.deps.IdleAfter,
		Release:        h.release,
	})
}

func (h *Hub) release(id string, s *session.Session) {
	select {
	case h.inbox <- Release{ID: id, Actor: s}:
	case <-h.ctx.Done():
	}
}
