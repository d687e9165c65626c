// File: services/chat/hub.go
package chat

import (
	"encoding/json"
	"time"

	"renthaven/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Broadcaster delivers a payload to every subscriber of a conversation.
type Broadcaster interface {
	Broadcast(conversationID string, payload any)
}

// Hub tracks websocket subscribers per conversation and fans out messages.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	rooms      map[string]map[*Client]bool
}

type envelope struct {
	conversationID string
	data           []byte
}

// Client is one websocket subscriber attached to a single conversation.
type Client struct {
	hub            *Hub
	conn           *websocket.Conn
	send           chan []byte
	conversationID string
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 64),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// Run owns the room map; call it once in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			room := h.rooms[client.conversationID]
			if room == nil {
				room = make(map[*Client]bool)
				h.rooms[client.conversationID] = room
			}
			room[client] = true

		case client := <-h.unregister:
			if room, ok := h.rooms[client.conversationID]; ok {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.conversationID)
					}
				}
			}

		case env := <-h.broadcast:
			for client := range h.rooms[env.conversationID] {
				select {
				case client.send <- env.data:
				default:
					// Slow consumer: drop it rather than block the hub.
					delete(h.rooms[env.conversationID], client)
					close(client.send)
				}
			}
		}
	}
}

// Broadcast marshals the payload and fans it out to the conversation's
// subscribers.
func (h *Hub) Broadcast(conversationID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		utils.GetLogger().Warn("failed to marshal broadcast payload", zap.Error(err))
		return
	}
	h.broadcast <- envelope{conversationID: conversationID, data: data}
}

// Subscribe attaches a websocket connection to a conversation and starts its
// read/write pumps.
func (h *Hub) Subscribe(conn *websocket.Conn, conversationID string) {
	client := &Client{
		hub:            h,
		conn:           conn,
		send:           make(chan []byte, 16),
		conversationID: conversationID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains the connection so control frames are processed; inbound
// chat goes through the REST endpoint, not the socket.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.GetLogger().Debug("websocket read error", zap.Error(err))
			}
			break
		}
	}
}
