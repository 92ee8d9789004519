package sync

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeClient attaches one end of an in-memory pipe to the hub and returns a
// reader over the other end. Add blocks until the welcome line is read.
func pipeClient(t *testing.T, hub *Hub) (*bufio.Reader, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { _ = client.Close() })
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))

	added := make(chan struct{})
	go func() {
		hub.Add(server)
		close(added)
	}()

	r := bufio.NewReader(client)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Contains(t, line, `"type":"welcome"`)
	<-added
	return r, client
}

func TestPublishToTCPClient(t *testing.T) {
	hub := NewHub()
	r, _ := pipeClient(t, hub)

	go hub.Publish(LoadEvent{Source: "csv:Sheet1", Count: 3, LoadedAt: time.Unix(0, 0).UTC()})

	line, err := r.ReadString('\n')
	require.NoError(t, err)

	var ev LoadEvent
	require.NoError(t, json.Unmarshal([]byte(line), &ev))
	assert.Equal(t, EventCharactersLoaded, ev.Type)
	assert.Equal(t, 3, ev.Count)
	assert.Equal(t, 1, hub.Stats().TCPClients)
}

func TestWelcomeReplaysLastEvent(t *testing.T) {
	hub := NewHub()
	hub.Publish(LoadEvent{Source: "gviz:Lore", Count: 7})

	ev, ok := hub.Last()
	require.True(t, ok)
	assert.Equal(t, "gviz:Lore", ev.Source)

	client, server := net.Pipe()
	defer client.Close()
	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	go hub.Add(server)

	line, err := bufio.NewReader(client).ReadString('\n')
	require.NoError(t, err)

	var w welcome
	require.NoError(t, json.Unmarshal([]byte(line), &w))
	assert.Equal(t, "tcp", w.Transport)
	require.NotNil(t, w.Last)
	assert.Equal(t, 7, w.Last.Count)
	assert.Equal(t, EventCharactersLoaded, w.Last.Type)
}

func TestBroadcastDropsDeadTCPClient(t *testing.T) {
	hub := NewHub()
	_, client := pipeClient(t, hub)
	_ = client.Close()

	hub.BroadcastJSON(map[string]string{"type": "ping"})
	assert.Equal(t, 0, hub.Stats().TCPClients)
}

func TestWebsocketFeed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/ws", WSHandler(hub, nil))
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"transport":"websocket"`)

	require.Eventually(t, func() bool { return hub.Stats().WSClients == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Publish(LoadEvent{Source: "gviz:Characters", Count: 2})

	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(msg), `"type":"characters.loaded"`)
	assert.Equal(t, 1, hub.Stats().Published)
}
