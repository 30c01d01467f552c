// Package ws upgrades HTTP requests to websocket connections and pumps
// frames between each connection and its session actor.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scoreclock/internal/hub"
	"scoreclock/internal/scoreboard"
	"scoreclock/internal/session"
	"scoreclock/pkg/protocol"
)

const (
	writeTimeout = 3 * time.Second
	outboxSize   = 16
)

// upgradeRequiredBody is served verbatim on plain HTTP hits against the
// websocket endpoint so a browser visit explains itself.
const upgradeRequiredBody = "This endpoint only accepts WebSocket connections.\n"

type Handler struct {
	hub *hub.Hub
	log *zap.Logger
}

func NewHandler(h *hub.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{hub: h, log: logger.Named("ws")}
}

// Serve handles GET /session/{sessionID}/ws.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	if !strings.EqualFold(strings.TrimSpace(r.Header.Get("Upgrade")), "websocket") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUpgradeRequired)
		fmt.Fprint(w, upgradeRequiredBody)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	reply := make(chan *session.Session, 1)
	h.hub.Inbox() <- hub.Ensure{ID: sessionID, Reply: reply}
	sess := <-reply
	if sess == nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn("websocket accept failed", zap.Error(err))
		return
	}

	clientID := uuid.NewString()
	log := h.log.With(zap.String("session_id", sessionID), zap.String("client_id", clientID))
	log.Info("client connected")

	ctx := r.Context()
	outbox := make(chan protocol.ServerMessage, outboxSize)
	select {
	case sess.Inbox() <- session.Join{ClientID: clientID, Outbox: outbox}:
	case <-sess.Done():
		conn.Close(websocket.StatusTryAgainLater, "session closed")
		return
	}

	// The join snapshot acks the handshake. An actor that shut down while
	// the Join sat in its inbox never closes this outbox, so the connection
	// must be torn down here rather than left waiting on a pump.
	var first protocol.ServerMessage
	select {
	case msg, ok := <-outbox:
		if !ok {
			conn.Close(websocket.StatusTryAgainLater, "session closed")
			return
		}
		first = msg
	case <-sess.Done():
		conn.Close(websocket.StatusTryAgainLater, "session closed")
		return
	case <-ctx.Done():
		conn.Close(websocket.StatusNormalClosure, "")
		return
	}

	go h.writePump(ctx, conn, first, outbox, log)
	h.readPump(ctx, conn, sess, clientID, log)

	select {
	case sess.Inbox() <- session.Leave{ClientID: clientID}:
	case <-sess.Done():
	}
	conn.Close(websocket.StatusNormalClosure, "")
	log.Info("client disconnected")
}

// writePump writes the join snapshot, then drains the actor's outbox into
// the socket. The actor closes the outbox on eviction, which ends the pump
// and tears down the connection.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, first protocol.ServerMessage, outbox <-chan protocol.ServerMessage, log *zap.Logger) {
	write := func(msg protocol.ServerMessage) bool {
		payload, err := json.Marshal(msg)
		if err != nil {
			log.Error("marshaling server message", zap.Error(err))
			return true
		}
		wctx, cancel := context.WithTimeout(ctx, writeTimeout)
		err = conn.Write(wctx, websocket.MessageText, payload)
		cancel()
		return err == nil
	}

	ok := write(first)
	for ok {
		msg, open := <-outbox
		if !open {
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
		ok = write(msg)
	}
	conn.Close(websocket.StatusAbnormalClosure, "write failed")
	// Keep draining so the actor never blocks on this outbox.
	for range outbox {
	}
}

// readPump parses client frames and forwards valid actions to the actor.
// Malformed frames get an error message back on the same connection without
// involving the actor.
func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, sess *session.Session, clientID string, log *zap.Logger) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var env protocol.ActionEnvelope
		if err := json.Unmarshal(data, &env); err != nil || env.Action == nil {
			h.writeError(ctx, conn, "invalid message format")
			continue
		}

		action, err := scoreboard.ParseAction(*env.Action)
		if err != nil {
			h.writeError(ctx, conn, err.Error())
			continue
		}
		if action == nil {
			// Unknown action type, quietly ignored.
			log.Debug("ignoring unknown action", zap.String("type", env.Action.Type))
			continue
		}

		select {
		case sess.Inbox() <- session.FromClient{ClientID: clientID, Action: action}:
		case <-sess.Done():
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) writeError(ctx context.Context, conn *websocket.Conn, reason string) {
	msg := protocol.NewErrorMessage(reason, time.Now().UnixMilli())
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
