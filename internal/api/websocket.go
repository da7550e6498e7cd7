package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"snake-arena/internal/chat"
	"snake-arena/internal/game"
	"snake-arena/internal/view"

	"github.com/gorilla/websocket"
)

const (
	// MaxWSConnectionsTotal is the maximum number of WebSocket connections allowed
	MaxWSConnectionsTotal = 500

	// MaxWSConnectionsPerIP is the maximum WebSocket connections per IP
	MaxWSConnectionsPerIP = 10

	// wsCommandTimeout bounds how long a client command waits for the session
	wsCommandTimeout = 2 * time.Second
)

var errUnknownEvent = errors.New("unknown event")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		if IsAllowedOrigin(origin) {
			return true
		}

		log.Printf("⚠️ WebSocket connection rejected from origin: %s", origin)
		RecordConnectionRejected("origin")
		return false
	},
}

// wsClient tracks a WebSocket connection with its source IP
type wsClient struct {
	conn *websocket.Conn
	ip   string
}

// wsMessage is the envelope for both directions
type wsMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type wsMove struct {
	Name string `json:"name"`
	game.WorldPoint
}

type wsStep struct {
	Name string `json:"name"`
	Dx   int    `json:"dx"`
	Dy   int    `json:"dy"`
}

type wsChat struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// WebSocketHub manages all WebSocket connections with DoS protection
type WebSocketHub struct {
	clients    map[*websocket.Conn]*wsClient
	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *websocket.Conn
	mu         sync.RWMutex

	// Connection limiting per IP
	wsLimiter *WebSocketRateLimiter

	session SessionInterface
	chatIn  chan<- chat.ChatMessage

	done chan struct{}
}

// NewWebSocketHub creates a new hub with connection limiting.
// Client chat lines are sent to chatIn; nil drops them.
func NewWebSocketHub(session SessionInterface, chatIn chan<- chat.ChatMessage) *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*websocket.Conn]*wsClient),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *wsClient),
		unregister: make(chan *websocket.Conn),
		wsLimiter:  NewWebSocketRateLimiter(MaxWSConnectionsPerIP),
		session:    session,
		chatIn:     chatIn,
		done:       make(chan struct{}),
	}
}

// Run starts the hub and closes every connection when ctx is cancelled
func (h *WebSocketHub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn, client := range h.clients {
				h.wsLimiter.Release(client.ip)
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			UpdateWSConnections(0)
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.conn] = client
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client connected from %s (%d total)", client.ip, count)
			UpdateWSConnections(count)

		case conn := <-h.unregister:
			h.mu.Lock()
			if client, ok := h.clients[conn]; ok {
				h.wsLimiter.Release(client.ip)
				delete(h.clients, conn)
				conn.Close()
			}
			count := len(h.clients)
			h.mu.Unlock()

			log.Printf("📱 Client disconnected (%d remaining)", count)
			UpdateWSConnections(count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for conn, client := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					h.wsLimiter.Release(client.ip)
					delete(h.clients, conn)
				}
			}
			h.mu.Unlock()
			IncrementWSMessages()
		}
	}
}

// Broadcast sends a message to all connected clients
func (h *WebSocketHub) Broadcast(event string, data interface{}) {
	jsonBytes, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  data,
	})
	if err != nil {
		return
	}

	select {
	case h.broadcast <- jsonBytes:
	default:
		// Channel full, skip (backpressure)
	}
}

// ClientCount returns the number of connected clients
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// StartBroadcastLoop pushes every published snapshot to connected clients
func (h *WebSocketHub) StartBroadcastLoop(ctx context.Context, snapshots <-chan *game.Snapshot) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapshots:
				if h.ClientCount() == 0 {
					continue
				}
				h.Broadcast("game:state", snap)
				h.Broadcast("game:overlay", view.BuildOverlay(snap))
			}
		}
	}()
}

// dispatch applies one client message to the session
func (h *WebSocketHub) dispatch(ctx context.Context, raw []byte) error {
	var msg wsMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, wsCommandTimeout)
	defer cancel()

	switch msg.Event {
	case "move":
		var m wsMove
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return fmt.Errorf("decode move: %w", err)
		}
		return h.session.Move(ctx, m.Name, m.WorldPoint)
	case "step":
		var m wsStep
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return fmt.Errorf("decode step: %w", err)
		}
		return h.session.Step(ctx, m.Name, m.Dx, m.Dy)
	case "chat":
		var m wsChat
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			return fmt.Errorf("decode chat: %w", err)
		}
		if h.chatIn == nil {
			return nil
		}
		select {
		case h.chatIn <- chat.ChatMessage{Type: chat.MessagePublic, Username: m.Username, Content: m.Message, Timestamp: time.Now()}:
		default:
			log.Printf("⚠️ Chat queue full, dropping line from %s", m.Username)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", errUnknownEvent, msg.Event)
	}
}

// HandleWebSocket handles incoming WebSocket connections with DoS protection
func (h *WebSocketHub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ip := GetClientIP(r)

	// Check total connection limit
	h.mu.RLock()
	totalConnections := len(h.clients)
	h.mu.RUnlock()

	if totalConnections >= MaxWSConnectionsTotal {
		log.Printf("⚠️ WebSocket connection rejected: total limit reached (%d)", totalConnections)
		RecordConnectionRejected("ws_total_limit")
		http.Error(w, "Too many connections", http.StatusServiceUnavailable)
		return
	}

	// Check per-IP connection limit
	if !h.wsLimiter.Allow(ip) {
		log.Printf("⚠️ WebSocket connection rejected from %s: per-IP limit reached", ip)
		RecordConnectionRejected("ws_ip_limit")
		http.Error(w, "Too many connections from your IP", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		h.wsLimiter.Release(ip)
		return
	}

	client := &wsClient{conn: conn, ip: ip}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		h.wsLimiter.Release(ip)
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()

		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if err := h.dispatch(context.Background(), message); err != nil {
				log.Printf("📨 WebSocket command from %s failed: %v", ip, err)
			}
		}
	}()
}
