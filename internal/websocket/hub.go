package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"tutor-backend/internal/models"
	"tutor-backend/internal/session"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type tokenParser interface {
	ParseToken(tokenStr string) (string, error)
}

type sessionLookup interface {
	Get(id string) (*session.Session, error)
}

type client struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans session events out to the sockets of that session. With a Redis
// client, events travel through pub/sub so any instance holding the socket
// can deliver them; without one, delivery is in-process.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*client
	publisher   *redis.Client
	subscriber  *redis.Client
	tokens      tokenParser
	sessions    sessionLookup
	cancelFuncs map[string]context.CancelFunc
}

// NewHub builds a hub. Pass nil clients for in-process delivery.
func NewHub(publisher, subscriber *redis.Client, tokens tokenParser, sessions sessionLookup) *Hub {
	if publisher == nil || subscriber == nil {
		publisher, subscriber = nil, nil
	}
	return &Hub{
		connections: make(map[string][]*client),
		publisher:   publisher,
		subscriber:  subscriber,
		tokens:      tokens,
		sessions:    sessions,
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

func channelName(sessionID string) string {
	return "session_updates:" + sessionID
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Browsers cannot set headers on the upgrade request, so the token comes in the query.
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, err := h.tokens.ParseToken(tokenStr)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sess, err := h.sessions.Get(sessionID)
	if err != nil {
		http.Error(w, "Session expired", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn}
	h.registerConnection(sessionID, c)

	if data, err := json.Marshal(models.WSMessage{Type: "snapshot", Payload: sess.Snapshot()}); err == nil {
		c.write(data)
	}

	go func() {
		defer h.unregisterConnection(sessionID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// Notify implements session.Notifier.
func (h *Hub) Notify(ctx context.Context, evt session.Event) {
	data, err := json.Marshal(models.WSMessage{Type: string(evt.Type), Payload: evt})
	if err != nil {
		log.Printf("ws: failed to encode %s event: %v", evt.Type, err)
		return
	}

	if h.publisher != nil {
		err := h.publisher.Publish(ctx, channelName(evt.SessionID), data).Err()
		if err == nil {
			return
		}
		log.Printf("ws: publish failed, delivering locally: %v", err)
	}
	h.deliver(evt.SessionID, data)
}

func (h *Hub) registerConnection(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionID] = append(h.connections[sessionID], c)

	if h.subscriber != nil && len(h.connections[sessionID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[sessionID] = cancel
		go h.subscribeToPubSub(ctx, sessionID)
	}
}

func (h *Hub) unregisterConnection(sessionID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	conns := h.connections[sessionID]
	for i, existing := range conns {
		if existing == c {
			h.connections[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
		if cancel, ok := h.cancelFuncs[sessionID]; ok {
			cancel()
			delete(h.cancelFuncs, sessionID)
		}
	}
}

func (h *Hub) subscribeToPubSub(ctx context.Context, sessionID string) {
	pubsub := h.subscriber.Subscribe(ctx, channelName(sessionID))
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.deliver(sessionID, []byte(msg.Payload))
		}
	}
}

// deliver writes data to every socket of the session. A session_ended
// message also closes those sockets.
func (h *Hub) deliver(sessionID string, data []byte) {
	h.mu.RLock()
	conns := append([]*client(nil), h.connections[sessionID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			log.Printf("ws: write to session %s failed: %v", sessionID, err)
		}
	}

	var head struct {
		Type string `json:"type"`
	}
	if json.Unmarshal(data, &head) == nil && head.Type == string(session.EventSessionEnded) {
		for _, c := range conns {
			c.conn.Close()
		}
	}
}

// ConnectionCount reports how many sockets are open for a session.
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sessionID])
}
