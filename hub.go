package main

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. Outbound messages go through a
// buffered channel drained by writePump so a slow client never blocks the
// game loop.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan any

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan any, 16),
	}
}

// Send implements the transport handle used by the roster. It never
// blocks; a full buffer means the client is too slow and the message is
// dropped. After close it reports failure instead of panicking, because
// the connection drops on its own goroutine while the loop may still be
// broadcasting to this handle.
func (c *Client) Send(msg any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump feeds inbound frames onto the game loop until the connection
// drops, then reports the disconnect the same way.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.drop(c)
		_ = c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		payload := data
		h.loop.Dispatch(func() {
			h.gateway.HandleMessage(c, payload)
		})
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// Hub tracks open websocket connections and bridges them to the gateway
// via the game loop. The connection set is the only state it guards itself;
// everything game-related lives behind the loop.
type Hub struct {
	loop    *Loop
	gateway *ProtocolGateway

	mu      sync.Mutex
	clients map[*Client]bool
}

func NewHub(loop *Loop, gateway *ProtocolGateway) *Hub {
	return &Hub{
		loop:    loop,
		gateway: gateway,
		clients: make(map[*Client]bool),
	}
}

// ServeWS upgrades the request and runs the connection's pumps. readPump
// runs on the handler goroutine; writePump gets its own.
func (h *Hub) ServeWS() httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Str("remote", realIP(r)).Msg("websocket upgrade failed")
			return
		}

		client := newClient(conn)
		log.Debug().Str("conn", client.id).Str("remote", realIP(r)).Msg("connection opened")

		h.mu.Lock()
		h.clients[client] = true
		h.mu.Unlock()

		h.loop.Dispatch(func() {
			h.gateway.HandleConnect(client)
		})

		go client.writePump()
		client.readPump(h)
	}
}

func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
	log.Debug().Str("conn", c.id).Msg("connection closed")

	h.loop.Dispatch(func() {
		h.gateway.HandleDisconnect(c)
	})
}

// CloseAll tears down every open connection during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
		_ = c.conn.Close()
		delete(h.clients, c)
	}
}
