package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/casenav/pkg/domain"
)

// feedBuffer is how many screens a subscriber may fall behind before drops.
const feedBuffer = 10

// screenFrame is one server-sent event: the screen type names the event.
type screenFrame struct {
	Event string
	Data  []byte
}

// StreamManager fans screens of a session out to its SSE subscribers.
type StreamManager struct {
	mu     sync.RWMutex
	feeds  map[string]map[chan screenFrame]struct{}
	logger *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		feeds:  make(map[string]map[chan screenFrame]struct{}),
		logger: logger,
	}
}

// Subscribe registers a feed for sessionID. The returned func closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan screenFrame, func()) {
	ch := make(chan screenFrame, feedBuffer)

	sm.mu.Lock()
	if sm.feeds[sessionID] == nil {
		sm.feeds[sessionID] = make(map[chan screenFrame]struct{})
	}
	sm.feeds[sessionID][ch] = struct{}{}
	sm.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			delete(sm.feeds[sessionID], ch)
			if len(sm.feeds[sessionID]) == 0 {
				delete(sm.feeds, sessionID)
			}
			close(ch)
		})
	}
}

// Subscribers reports how many feeds are open for sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.feeds[sessionID])
}

// Publish sends resp to every feed of its session. Full feeds drop the screen.
func (sm *StreamManager) Publish(resp *domain.Response) {
	if resp == nil || resp.SessionID == "" {
		return
	}
	data, err := json.Marshal(resp)
	if err != nil {
		sm.logger.Error("Screen encode failed", "session_id", resp.SessionID, "err", err)
		return
	}
	frame := screenFrame{Event: string(resp.Type), Data: data}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for ch := range sm.feeds[resp.SessionID] {
		select {
		case ch <- frame:
		default:
			sm.logger.Warn("Screen feed full, dropping screen", "session_id", resp.SessionID, "type", frame.Event)
		}
	}
}

// SubscribeEvents handles GET /events?session_id=... as a server-sent event stream.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	feed, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("Screen feed opened", "session_id", sessionID)
	defer s.logger.Info("Screen feed closed", "session_id", sessionID)

	writeFrame(w, screenFrame{Event: "ping", Data: []byte("connected")})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-feed:
			if !ok {
				return
			}
			writeFrame(w, frame)
			flusher.Flush()
		}
	}
}

func writeFrame(w http.ResponseWriter, f screenFrame) {
	if f.Event != "" {
		fmt.Fprintf(w, "event: %s\n", f.Event)
	}
	fmt.Fprintf(w, "data: %s\n\n", f.Data)
}
