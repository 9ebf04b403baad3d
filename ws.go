package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/op/go-logging"

	"github.com/sharedeck/sharedeck/internal/chat"
	"github.com/sharedeck/sharedeck/internal/relay"
)

// Envelope is one websocket frame in either direction.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// FilePayload is the body of a send_file event.
type FilePayload struct {
	Name     string `json:"name"`
	MimeType string `json:"mimetype"`
	Buffer   string `json:"buffer"`
	Room     string `json:"room"`
}

// Hub upgrades websocket connections and runs the chat event loop.
type Hub struct {
	relay    *relay.Relay
	uploader *chat.Uploader
	upgrader websocket.Upgrader
	log      *logging.Logger
}

func NewHub(rooms *relay.Relay, uploader *chat.Uploader, log *logging.Logger) *Hub {
	return &Hub{
		relay:    rooms,
		uploader: uploader,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: log,
	}
}

func (h *Hub) RegisterRoutes(router *gin.Engine) {
	router.GET("/ws", h.serveWS)
}

func (h *Hub) serveWS(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorf("WebSocket upgrade failed: %v", err)
		return
	}

	sess := newSession(ws)
	h.log.Infof("User connected: %s", sess.ID())
	defer func() {
		h.relay.Disconnect(sess.ID())
		ws.Close()
		h.log.Infof("User disconnected: %s", sess.ID())
	}()

	h.readLoop(sess)
}

func (h *Hub) readLoop(sess *session) {
	for {
		var env Envelope
		if err := sess.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debugf("Read error from %s: %v", sess.ID(), err)
			}
			return
		}

		switch env.Event {
		case "join_room":
			h.joinRoom(sess, env.Data)
		case "send_message":
			h.relayMessage(sess, env.Data)
		case "send_file":
			h.sendFile(sess, env.Data)
		default:
			h.log.Debugf("Unknown event %q from %s", env.Event, sess.ID())
		}
	}
}

func (h *Hub) joinRoom(sess *session, data json.RawMessage) {
	var room string
	if err := json.Unmarshal(data, &room); err != nil || room == "" {
		return
	}
	h.relay.Join(sess, room)
	h.log.Infof("User %s joined room %s", sess.ID(), room)
}

// relayMessage forwards the payload verbatim; only the room field is
// inspected for routing.
func (h *Hub) relayMessage(sess *session, data json.RawMessage) {
	var routing struct {
		Room string `json:"room"`
	}
	if err := json.Unmarshal(data, &routing); err != nil || routing.Room == "" {
		return
	}
	h.relay.Broadcast(sess.ID(), routing.Room, "receive_message", data)
}

func (h *Hub) sendFile(sess *session, data json.RawMessage) {
	var payload FilePayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.Room == "" {
		return
	}

	raw, err := base64.StdEncoding.DecodeString(payload.Buffer)
	if err != nil {
		h.log.Errorf("Bad file buffer from %s: %v", sess.ID(), err)
		_ = sess.Emit("upload_error", gin.H{"error": "Upload failed"})
		return
	}

	// The upload is allowed to finish even if the socket drops mid-transfer.
	if err := h.uploader.SendFile(context.Background(), sess, payload.Room, payload.Name, payload.MimeType, raw); err != nil {
		h.log.Errorf("Chat upload from %s failed: %v", sess.ID(), err)
		_ = sess.Emit("upload_error", gin.H{"error": "Upload failed"})
	}
}

// session is one websocket connection implementing relay.Conn. Writes are
// serialized because gorilla connections allow a single concurrent writer.
type session struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func newSession(conn *websocket.Conn) *session {
	return &session{id: uuid.NewString(), conn: conn}
}

func (s *session) ID() string { return s.id }

func (s *session) Emit(event string, data interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(outEnvelope{Event: event, Data: data})
}

type outEnvelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}
