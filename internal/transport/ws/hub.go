package ws

import (
	"context"
	"encoding/json"
	"surveyforge/internal/logger"
	"surveyforge/internal/service"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// Admin message types
const (
	MsgSubscribed        MessageType = "subscribed"
	MsgResponseSubmitted MessageType = service.EventResponseSubmitted
	MsgSurveyDeleted     MessageType = service.EventSurveyDeleted
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans live results events out to the admins watching each survey
type Hub struct {
	// survey -> watching connections
	subscribers map[string]map[*Connection]bool

	mu sync.RWMutex

	// Channels for coordination
	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once

	log *logger.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	SurveyID string
	AdminID  string
	Send     chan []byte
	Hub      *Hub
}

// BroadcastMessage is a message to broadcast. Disconnect closes the
// survey's connections instead; sharing the channel keeps it ordered after
// earlier messages.
type BroadcastMessage struct {
	SurveyID   string
	Message    *Message
	Disconnect bool
}

// NewHub creates a new WebSocket hub
func NewHub(log *logger.Logger) *Hub {
	h := &Hub{
		subscribers: make(map[string]map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *BroadcastMessage, 256),
		done:        make(chan struct{}),
		log:         log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	ctx := context.Background()
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.subscribers[conn.SurveyID] == nil {
				h.subscribers[conn.SurveyID] = make(map[*Connection]bool)
			}
			h.subscribers[conn.SurveyID][conn] = true
			watchers := len(h.subscribers[conn.SurveyID])
			h.mu.Unlock()
			h.log.Debug(ctx, "admin subscribed to live results", map[string]interface{}{
				"survey_id": conn.SurveyID, "admin_id": conn.AdminID, "watchers": watchers,
			})

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			if msg.Disconnect {
				h.mu.Lock()
				for conn := range h.subscribers[msg.SurveyID] {
					h.remove(conn)
				}
				h.mu.Unlock()
				continue
			}
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.log.Error(ctx, "live results message not encodable", err, map[string]interface{}{"survey_id": msg.SurveyID})
				continue
			}
			h.mu.RLock()
			for conn := range h.subscribers[msg.SurveyID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()

		case <-h.done:
			h.mu.Lock()
			for _, conns := range h.subscribers {
				for conn := range conns {
					h.remove(conn)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove drops a connection and closes its send channel; callers hold mu
func (h *Hub) remove(conn *Connection) {
	conns, ok := h.subscribers[conn.SurveyID]
	if !ok || !conns[conn] {
		return
	}
	delete(conns, conn)
	close(conn.Send)
	if len(conns) == 0 {
		delete(h.subscribers, conn.SurveyID)
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Watchers returns how many admins watch a survey
func (h *Hub) Watchers(surveyID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[surveyID])
}

// BroadcastToSurveyAdmins sends an event to every admin watching the survey
// (implements service.Broadcaster)
func (h *Hub) BroadcastToSurveyAdmins(surveyID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error(context.Background(), "live results payload not encodable", err, map[string]interface{}{"survey_id": surveyID})
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		SurveyID: surveyID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}:
	case <-h.done:
	}
}

// DisconnectSurvey closes every connection watching the survey
// (implements service.Broadcaster)
func (h *Hub) DisconnectSurvey(surveyID string) {
	select {
	case h.broadcast <- &BroadcastMessage{SurveyID: surveyID, Disconnect: true}:
	case <-h.done:
	}
}

// Close stops the hub and closes all connections
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
