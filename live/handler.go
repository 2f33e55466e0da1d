package live

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"wanderlust/logx"
	"wanderlust/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

func upgrader(origins []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, origin)
		},
	}
}

// Handler upgrades an admin session to a websocket subscribed to the hub.
// Access is enforced by the route's middleware.
func Handler(hub *Hub, origins []string) httprouter.Handle {
	up := upgrader(origins)
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		log := logx.FromContext(r.Context())

		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("live: upgrade")
			return
		}
		client := &Client{Conn: conn, Send: make(chan []byte, sendBuffer)}
		if claims, ok := middleware.ClaimsFrom(r.Context()); ok {
			client.UserID = claims.UserID
		}

		if !hub.join(client) {
			conn.Close()
			return
		}
		log.Debug().Str("user_id", client.UserID).Msg("live: client connected")
		go writePump(client)
		go readPump(client, hub)
	}
}

func writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only watches for the connection going away; admins don't send
// anything on this socket.
func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.leave(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(512)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
