package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWatch upgrades the connection and registers it for snapshot
// broadcasts. The first message is the current world view; a dedicated
// goroutine drains the connection to detect the peer going away.
func (s *Server) handleWatch(c *gin.Context) {
	inst, ok := s.get(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	// send the current view and register under the instance lock so the
	// initial write cannot interleave with a broadcast
	inst.mu.Lock()
	if err := conn.WriteJSON(inst.env.View()); err != nil {
		inst.mu.Unlock()
		conn.Close()
		return
	}
	inst.watchers[conn] = true
	inst.mu.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		inst.mu.Lock()
		delete(inst.watchers, conn)
		inst.mu.Unlock()
		conn.Close()
	}()
}
