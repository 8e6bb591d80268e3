package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const wsWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// ws streams JSON snapshots: the current state on connect, then one message
// per accepted command. Client messages are ignored; commands go through
// the form endpoints.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "game", id, "err", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		return
	}
	defer unsub()

	// Drain the read side so close frames are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	// Read after subscribing so no update falls between the two.
	gs, ok := h.svc.Get(id)
	if !ok {
		return
	}
	if err := h.writeState(conn, newStateView(*gs)); err != nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case st, ok := <-ch:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"),
					time.Now().Add(wsWriteWait))
				return
			}
			if err := h.writeState(conn, newStateView(st)); err != nil {
				h.logger.Debug("websocket write failed", "game", id, "err", err)
				return
			}
		}
	}
}

func (h *handlers) writeState(conn *websocket.Conn, v stateView) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(v)
}
