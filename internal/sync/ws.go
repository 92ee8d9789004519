package sync

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"loremaker/pkg/logger"
)

const (
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
	maxInbound   = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// the feed is public and read-only
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades the request and keeps the client on the hub until it
// disconnects or stops answering pings.
func WSHandler(hub *Hub, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "ws-feed")

	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug("upgrade failed", "error", err)
			return
		}
		hub.AddWS(ws)
		log.Debug("client connected", "remote", c.ClientIP())

		done := make(chan struct{})
		go keepAlive(ws, done)

		ws.SetReadLimit(maxInbound)
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		close(done)
		hub.RemoveWS(ws)
		log.Debug("client disconnected", "remote", c.ClientIP())
	}
}

func keepAlive(ws *websocket.Conn, done <-chan struct{}) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
