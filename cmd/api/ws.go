package main

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// progressUpdate is one message pushed to subscribers of a job.
type progressUpdate struct {
	Type      string `json:"type"`
	JobID     string `json:"job_id"`
	Step      string `json:"step,omitempty"`
	Progress  int    `json:"progress,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp"`
}

// wsHub fans progress updates out to websocket subscribers per job.
type wsHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan progressUpdate]bool
}

func newWSHub() *wsHub {
	return &wsHub{subs: make(map[string]map[chan progressUpdate]bool)}
}

func (h *wsHub) subscribe(jobID string) chan progressUpdate {
	ch := make(chan progressUpdate, 32)
	h.mu.Lock()
	if h.subs[jobID] == nil {
		h.subs[jobID] = make(map[chan progressUpdate]bool)
	}
	h.subs[jobID][ch] = true
	h.mu.Unlock()
	return ch
}

func (h *wsHub) unsubscribe(jobID string, ch chan progressUpdate) {
	h.mu.Lock()
	if set := h.subs[jobID]; set != nil {
		delete(set, ch)
		if len(set) == 0 {
			delete(h.subs, jobID)
		}
	}
	h.mu.Unlock()
}

// publish delivers an update to every subscriber; slow subscribers drop
// messages instead of blocking the pipeline.
func (h *wsHub) publish(jobID string, update progressUpdate) {
	update.JobID = jobID
	update.Timestamp = time.Now().UTC().Format(time.RFC3339)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[jobID] {
		select {
		case ch <- update:
		default:
		}
	}
}

// handleWS upgrades the connection and streams job progress until the
// client goes away. Pings keep intermediaries from closing idle streams.
func (s *apiServer) handleWS(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		http.Error(w, "job id is required", http.StatusBadRequest)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		log.Printf("ws set read deadline failed: %v", err)
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	updates := s.hub.subscribe(jobID)
	defer s.hub.unsubscribe(jobID, updates)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case update := <-updates:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
