// Package ws pushes pipeline events to clients over WebSockets. The hub
// implements pipeline.EventSink; events emitted before a client connects
// are buffered per run and replayed on registration.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Envelope is the wire format for one event.
type Envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// replayLimit bounds the per-run backlog kept for late-joining clients.
const replayLimit = 1024

// Connection is one subscribed client.
type Connection struct {
	RunID string
	Send  chan []byte
}

type broadcastMessage struct {
	runID string
	data  []byte
}

// Hub manages run subscriptions and fan-out. All state is owned by the
// run loop; Emit never blocks the pipeline beyond the broadcast buffer.
type Hub struct {
	mu      sync.RWMutex
	conns   map[string]map[*Connection]bool
	backlog map[string][][]byte

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan broadcastMessage

	log *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		backlog:    make(map[string][][]byte),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan broadcastMessage, 256),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.RunID] == nil {
				h.conns[conn.RunID] = make(map[*Connection]bool)
			}
			h.conns[conn.RunID][conn] = true
			// Replay what the client missed.
			for _, data := range h.backlog[conn.RunID] {
				select {
				case conn.Send <- data:
				default:
				}
			}
			h.mu.Unlock()
			h.log.Debug("client subscribed", "run_id", conn.RunID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.conns[conn.RunID]; ok {
				if conns[conn] {
					delete(conns, conn)
					close(conn.Send)
				}
				if len(conns) == 0 {
					delete(h.conns, conn.RunID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			backlog := append(h.backlog[msg.runID], msg.data)
			if len(backlog) > replayLimit {
				backlog = backlog[len(backlog)-replayLimit:]
			}
			h.backlog[msg.runID] = backlog

			for conn := range h.conns[msg.runID] {
				select {
				case conn.Send <- msg.data:
				default:
					// Slow client; drop rather than stall the run.
				}
			}
			h.mu.Unlock()
		}
	}
}

// Emit implements pipeline.EventSink.
func (h *Hub) Emit(runID string, event string, payload any) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload})
	if err != nil {
		h.log.Error("event marshal failed", "run_id", runID, "event", event, "error", err)
		return
	}
	h.broadcast <- broadcastMessage{runID: runID, data: data}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// Forget drops a run's backlog, typically when the run store evicts it.
func (h *Hub) Forget(runID string) {
	h.mu.Lock()
	delete(h.backlog, runID)
	h.mu.Unlock()
}
