package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/osa030/welcomewall/internal/app/board"
	"github.com/osa030/welcomewall/internal/app/watch"
)

// wsStream adapts a websocket connection to the watch.Stream interface.
type wsStream struct {
	ctx  context.Context
	conn *websocket.Conn
}

func (s *wsStream) Send(n *watch.Notice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()
	return s.conn.Write(ctx, websocket.MessageText, payload)
}

// WatchHandler upgrades to a websocket and streams board notices.
// Watchers are read-only; anything they send is ignored.
func WatchHandler(m *board.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		stream := &wsStream{ctx: r.Context(), conn: conn}
		id := m.Hub().Subscribe(stream)
		defer m.Hub().Unsubscribe(id)

		// Prime the new watcher with the current view so it does not
		// wait a poll interval for its first paint.
		status := m.Status()
		_ = stream.Send(&watch.Notice{
			Type:         watch.NoticeBoard,
			Total:        status.Total,
			Ticker:       status.Ticker,
			Announcement: status.Current,
		})

		// Read loop exists only to detect disconnects.
		for {
			if _, _, err := conn.Read(r.Context()); err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}
		}
	}
}
