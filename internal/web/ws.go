package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ws streams position updates. The first message is a snapshot; every
// message has type "position" apart from idle pings.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pos, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ch, unsub, err := h.svc.Subscribe(r.Context(), id)
	if err != nil {
		_ = conn.WriteJSON(wsMessage{Type: "error", Payload: mustMarshal(err.Error())})
		return
	}
	defer unsub()
	// Reload so the snapshot cannot predate the subscription.
	if latest, err := h.svc.Get(r.Context(), id); err == nil {
		pos = latest
	}

	snapshot := mustMarshal(wsMessage{Type: "position", Payload: renderPosition(pos)})
	if err := conn.WriteMessage(websocket.TextMessage, snapshot); err != nil {
		return
	}

	go func() {
		_ = writeWSWithHeartbeat(conn, ch, h.cfg.Get().Heartbeat())
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeWSWithHeartbeat forwards payloads until send closes. A ping goes out
// whenever the connection has been idle for a whole interval.
func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			frame := mustMarshal(wsMessage{Type: "position", Payload: msg})
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < interval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
