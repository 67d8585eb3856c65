package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"surveyforge/internal/apperror"
	"surveyforge/internal/logger"
	"surveyforge/internal/service"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // admin token is checked before upgrading
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub        *Hub
	authSvc    *service.AuthService
	resultsSvc *service.ResultsService
	log        *logger.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, authSvc *service.AuthService, resultsSvc *service.ResultsService, log *logger.Logger) *Handler {
	return &Handler{
		hub:        hub,
		authSvc:    authSvc,
		resultsSvc: resultsSvc,
		log:        log,
	}
}

// ResultsWS handles GET /v1/ws/surveys/{surveyId}/results
func (h *Handler) ResultsWS(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]
	token := r.URL.Query().Get("token")

	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.authSvc.ValidateAdminToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	summary, err := h.resultsSvc.Summary(r.Context(), surveyID)
	if err != nil {
		http.Error(w, http.StatusText(apperror.HTTPStatus(err)), apperror.HTTPStatus(err))
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	conn := &Connection{
		SurveyID: surveyID,
		AdminID:  claims.AdminID,
		Send:     make(chan []byte, 256),
		Hub:      h.hub,
	}

	if hello, err := encode(MsgSubscribed, summary); err == nil {
		conn.Send <- hello
	}
	h.hub.Register(conn)

	h.log.Info(r.Context(), "admin watching live results", map[string]interface{}{"survey_id": surveyID, "admin_id": claims.AdminID})

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func encode(msgType MessageType, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: msgType, Payload: data})
}

// readPump keeps the read deadline moving on pongs and unregisters the
// connection once the admin goes away. The feed is one-way, so client frames
// are discarded.
func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	extend := func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(pongWait))
	}
	wsConn.SetReadLimit(maxMessageSize)
	extend("")
	wsConn.SetPongHandler(extend)

	for {
		if _, _, err := wsConn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn(context.Background(), "live results socket closed unexpectedly", map[string]interface{}{
					"survey_id": conn.SurveyID, "admin_id": conn.AdminID, "error": err.Error(),
				})
			}
			return
		}
	}
}

// writePump forwards queued events, draining whatever piled up since the last
// write, and pings on an interval. A closed Send channel ends the feed with a
// normal close frame.
func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "feed closed"))
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
			for pending := len(conn.Send); pending > 0; pending-- {
				next, ok := <-conn.Send
				if !ok {
					break
				}
				if err := wsConn.WriteMessage(websocket.TextMessage, next); err != nil {
					return
				}
			}

		case <-ticker.C:
			if err := wsConn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
