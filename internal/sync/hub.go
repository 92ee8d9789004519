package sync

import (
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// Hub fans load events out to line-oriented TCP clients and websocket
// clients. It remembers the last event so late joiners learn which batch is
// current without waiting for the next load.
type Hub struct {
	mu      sync.Mutex
	tcp     map[net.Conn]struct{}
	ws      map[*websocket.Conn]struct{}
	last    *LoadEvent
	written int
}

type Stats struct {
	TCPClients int `json:"tcp_clients"`
	WSClients  int `json:"ws_clients"`
	Published  int `json:"published"`
}

type welcome struct {
	Type      string     `json:"type"`
	Transport string     `json:"transport"`
	Clients   int        `json:"clients"`
	Last      *LoadEvent `json:"last,omitempty"`
}

func NewHub() *Hub {
	return &Hub{
		tcp: make(map[net.Conn]struct{}),
		ws:  make(map[*websocket.Conn]struct{}),
	}
}

// Add registers a TCP client and sends it the welcome line.
func (h *Hub) Add(conn net.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.tcp[conn] = struct{}{}
	if err := writeLine(conn, h.welcomeLocked("tcp")); err != nil {
		delete(h.tcp, conn)
		_ = conn.Close()
	}
}

func (h *Hub) Remove(conn net.Conn) {
	h.mu.Lock()
	delete(h.tcp, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// AddWS registers a websocket client and sends it the welcome message.
func (h *Hub) AddWS(ws *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ws[ws] = struct{}{}
	if err := writeWS(ws, h.welcomeLocked("websocket")); err != nil {
		delete(h.ws, ws)
		_ = ws.Close()
	}
}

func (h *Hub) RemoveWS(ws *websocket.Conn) {
	h.mu.Lock()
	delete(h.ws, ws)
	h.mu.Unlock()
	_ = ws.Close()
}

// Publish records ev as the current state and sends it to every client.
func (h *Hub) Publish(ev LoadEvent) {
	if ev.Type == "" {
		ev.Type = EventCharactersLoaded
	}
	h.mu.Lock()
	h.last = &ev
	h.written++
	h.mu.Unlock()

	h.BroadcastJSON(ev)
}

// Last returns the most recent published event.
func (h *Hub) Last() (LoadEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return LoadEvent{}, false
	}
	return *h.last, true
}

// BroadcastJSON writes v to every client as one JSON line, dropping clients
// whose write fails.
func (h *Hub) BroadcastJSON(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.tcp {
		if err := writeLine(c, b); err != nil {
			_ = c.Close()
			delete(h.tcp, c)
		}
	}
	for ws := range h.ws {
		if err := writeWS(ws, b); err != nil {
			_ = ws.Close()
			delete(h.ws, ws)
		}
	}
}

func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Stats{
		TCPClients: len(h.tcp),
		WSClients:  len(h.ws),
		Published:  h.written,
	}
}

func (h *Hub) welcomeLocked(transport string) []byte {
	var last *LoadEvent
	if h.last != nil {
		ev := *h.last
		last = &ev
	}
	b, _ := json.Marshal(welcome{
		Type:      "welcome",
		Transport: transport,
		Clients:   len(h.tcp) + len(h.ws),
		Last:      last,
	})
	return b
}

func writeLine(c net.Conn, b []byte) error {
	_ = c.SetWriteDeadline(time.Now().Add(writeWait))
	_, err := c.Write(append(b, '\n'))
	return err
}

func writeWS(ws *websocket.Conn, b []byte) error {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	return ws.WriteMessage(websocket.TextMessage, b)
}
