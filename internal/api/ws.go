package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/campus-ai/tutor-core/internal/progress"
)

// Hub fans progress events out to websocket subscribers. It implements
// progress.EventLogger so the engine can feed it directly.
type Hub struct {
	mu   sync.Mutex
	subs map[chan progress.Event]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan progress.Event]struct{})}
}

// LogEvent delivers the event to every subscriber. Slow subscribers
// drop events rather than block the recording path.
func (h *Hub) LogEvent(event progress.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (h *Hub) subscribe() chan progress.Event {
	ch := make(chan progress.Event, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan progress.Event) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// We never read application messages; CloseRead keeps control
	// frames flowing and cancels the context when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case event := <-ch:
			if err := wsjson.Write(ctx, conn, event); err != nil {
				return
			}
		}
	}
}
