package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/ballpit/backend/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Control message data types
type AddBallsData struct {
	Count int `json:"count"`
}

type ResetData struct {
	Count int `json:"count"`
}

type SetGravityData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SandboxHub is the single hub for all sandbox sessions.
var SandboxHub *Hub

func init() {
	SandboxHub = NewHub()
	go runSandboxHub(SandboxHub)
}

// HandleWebSocket upgrades a viewer or owner connection for one session.
// Anyone holding the session token may watch; control messages additionally
// require the owner token issued at session creation (query param "ot").
func HandleWebSocket(c *gin.Context) {
	sessionToken := c.Param("token")
	ownerToken := c.Query("ot")

	s, err := session.Default.GetSession(sessionToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	client := &Client{
		conn:         conn,
		sessionToken: sessionToken,
		ownerToken:   ownerToken,
		send:         make(chan []byte, 256),
	}

	// Late joiners get the current state immediately instead of waiting for
	// the next tick broadcast. Queued before registration: the hub only
	// closes send for registered clients, so this write cannot race the
	// close on an instant disconnect.
	if data, err := json.Marshal(s.Snapshot()); err == nil {
		client.send <- data
	}

	SandboxHub.register <- client

	go client.writePump()
	go client.readPump()
}

// runSandboxHub processes register/unregister events.
func runSandboxHub(h *Hub) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, exists := h.rooms[client.sessionToken]; !exists {
				h.rooms[client.sessionToken] = make(map[*Client]bool)
			}
			h.rooms[client.sessionToken][client] = true
			size := len(h.rooms[client.sessionToken])
			h.mu.Unlock()

			log.Printf("[WS] Client joined session %s (room_size=%d)", client.sessionToken, size)

		case client := <-h.unregister:
			h.mu.Lock()
			if room, exists := h.rooms[client.sessionToken]; exists {
				if _, ok := room[client]; ok {
					delete(room, client)
					close(client.send)
					if len(room) == 0 {
						delete(h.rooms, client.sessionToken)
					}
				}
			}
			h.mu.Unlock()

			log.Printf("[WS] Client left session %s", client.sessionToken)
		}
	}
}

// readPump reads and dispatches messages for one client.
func (c *Client) readPump() {
	defer func() {
		SandboxHub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected) for session %s: %v", c.sessionToken, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes one incoming message.
func (c *Client) handleMessage(msg WSMessage) {
	s, err := session.Default.GetSession(c.sessionToken)
	if err != nil {
		c.sendError("Session not found")
		return
	}

	switch msg.Type {
	case "get_state":
		snap := s.Snapshot()
		if data, err := json.Marshal(snap); err == nil {
			select {
			case c.send <- data:
			default:
			}
		}

	case "add_balls":
		if !c.requireOwner() {
			return
		}
		var data AddBallsData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid add_balls data")
			return
		}
		if err := s.AddBalls(data.Count); err != nil {
			c.sendError(err.Error())
			return
		}
		SandboxHub.BroadcastToSession(c.sessionToken, map[string]interface{}{
			"type":  "balls_added",
			"count": data.Count,
		})

	case "reset":
		if !c.requireOwner() {
			return
		}
		var data ResetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid reset data")
			return
		}
		if err := s.Reset(data.Count); err != nil {
			c.sendError(err.Error())
			return
		}
		SandboxHub.BroadcastToSession(c.sessionToken, map[string]interface{}{
			"type":  "session_reset",
			"count": data.Count,
		})

	case "set_gravity":
		if !c.requireOwner() {
			return
		}
		var data SetGravityData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("Invalid set_gravity data")
			return
		}
		if err := s.SetGravity(data.X, data.Y); err != nil {
			c.sendError(err.Error())
			return
		}
		SandboxHub.BroadcastToSession(c.sessionToken, map[string]interface{}{
			"type": "gravity_changed",
			"x":    data.X,
			"y":    data.Y,
		})

	case "stop":
		if !c.requireOwner() {
			return
		}
		if err := session.Default.StopSession(c.sessionToken, "stopped by owner"); err != nil {
			c.sendError(err.Error())
		}

	default:
		c.sendError("Unknown message type")
	}
}

// requireOwner verifies the client's owner token for control messages.
func (c *Client) requireOwner() bool {
	if wsConfig == nil {
		c.sendError("Server not configured")
		return false
	}
	if c.ownerToken == "" {
		c.sendError("Control messages require an owner token")
		return false
	}
	if err := session.VerifyOwnerToken(c.ownerToken, c.sessionToken, wsConfig.JWTSecret); err != nil {
		c.sendError("Invalid owner token")
		return false
	}
	return true
}
