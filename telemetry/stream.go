package telemetry

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const streamWriteTimeout = time.Second

// StreamMessage is the JSON frame sent to stream clients.
type StreamMessage struct {
	Type  string     `json:"type"`
	Stats FrameStats `json:"stats"`
}

// StatsStream pushes every closed stats window to connected websocket
// clients. It is an http.Handler; mount it on any path.
type StatsStream struct {
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewStatsStream creates a stream with no clients.
func NewStatsStream() *StatsStream {
	return &StatsStream{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// ServeHTTP upgrades the request and keeps the client until it disconnects.
// Incoming messages are discarded.
func (s *StatsStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("stats stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.mu.Lock()
	s.clients[conn] = &sync.Mutex{}
	s.mu.Unlock()
	slog.Info("stats stream client connected", "remote", conn.RemoteAddr().String())

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Clients returns the number of connected clients.
func (s *StatsStream) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Broadcast sends stats to every client. Clients that fail a write are
// closed and dropped. Infinite values are clamped to the largest finite float
// and NaN becomes 0, since JSON has no encoding for either.
func (s *StatsStream) Broadcast(stats FrameStats) {
	data, err := json.Marshal(StreamMessage{Type: "stats", Stats: jsonSafe(stats)})
	if err != nil {
		slog.Error("stats stream encode failed", "error", err)
		return
	}

	var failed []*websocket.Conn
	s.mu.RLock()
	for conn, mu := range s.clients {
		mu.Lock()
		conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		err := conn.WriteMessage(websocket.TextMessage, data)
		mu.Unlock()
		if err != nil {
			failed = append(failed, conn)
		}
	}
	s.mu.RUnlock()

	if len(failed) == 0 {
		return
	}
	s.mu.Lock()
	for _, conn := range failed {
		delete(s.clients, conn)
		conn.Close()
	}
	s.mu.Unlock()
}

// Close disconnects every client.
func (s *StatsStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
		delete(s.clients, conn)
	}
}

// jsonSafe returns stats with every float field finite.
func jsonSafe(stats FrameStats) FrameStats {
	for _, f := range []*float64{
		&stats.SimTimeSec,
		&stats.DensityMean, &stats.DensityStd, &stats.DensityMin, &stats.DensityMax,
		&stats.DensityP10, &stats.DensityP50, &stats.DensityP90, &stats.DensityCV,
		&stats.MeanSpeed, &stats.MaxSpeed, &stats.KineticEnergy,
	} {
		switch {
		case math.IsNaN(*f):
			*f = 0
		case math.IsInf(*f, 1):
			*f = math.MaxFloat64
		case math.IsInf(*f, -1):
			*f = -math.MaxFloat64
		}
	}
	return stats
}
