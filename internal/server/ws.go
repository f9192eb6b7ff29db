package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"campuswatch/internal/engine"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// feedMessage is the wire envelope for every event pushed to a client.
type feedMessage struct {
	Event string `json:"event"` // state | energy | occupancy | alert
	Data  any    `json:"data"`
}

// wsClient adapts one WebSocket connection to the engine's Subscriber
// contract. Delivery from the engine only enqueues; a dedicated writer
// goroutine drains the buffer, so a slow or dead socket can never block the
// engine's unit of work. When the buffer fills the client is considered
// broken and its messages are dropped.
type wsClient struct {
	id     string
	conn   *websocket.Conn
	send   chan feedMessage
	logger zerolog.Logger

	writeTimeout time.Duration
	pingInterval time.Duration
}

func (c *wsClient) OnState(snap engine.Snapshot) {
	c.enqueue(feedMessage{Event: "state", Data: snap})
}

func (c *wsClient) OnReading(ev engine.ReadingEvent) {
	c.enqueue(feedMessage{Event: ev.Kind, Data: ev})
}

func (c *wsClient) OnAlert(a engine.Alert) {
	c.enqueue(feedMessage{Event: "alert", Data: a})
}

func (c *wsClient) enqueue(msg feedMessage) {
	select {
	case c.send <- msg:
	default:
		c.logger.Warn().Str("client", c.id).Msg("feed buffer full, dropping event")
	}
}

func (c *wsClient) writePump(done chan<- struct{}) {
	defer close(done)

	pingInterval := c.pingInterval
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			c.setWriteDeadline()
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.setWriteDeadline()
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) setWriteDeadline() {
	if c.writeTimeout > 0 {
		_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
}

// handleFeed upgrades the connection, registers it as a subscriber (which
// atomically delivers the state snapshot), and streams events until the
// client goes away.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer func() { _ = conn.Close() }()

	buffer := s.cfg.ClientBuffer
	if buffer <= 0 {
		buffer = 256
	}

	client := &wsClient{
		id:           uuid.NewString(),
		conn:         conn,
		send:         make(chan feedMessage, buffer),
		logger:       s.logger,
		writeTimeout: s.cfg.WriteTimeout,
		pingInterval: s.cfg.PingInterval,
	}

	writerDone := make(chan struct{})
	go client.writePump(writerDone)

	s.engine.Subscribe(client.id, client)
	s.logger.Info().Str("client", client.id).Msg("feed client connected")

	// the read loop only exists to notice the peer closing
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.engine.Unsubscribe(client.id)
	close(client.send)
	<-writerDone
	s.logger.Info().Str("client", client.id).Msg("feed client disconnected")
}
