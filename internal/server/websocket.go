package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/mazesim/internal/core/events/bus"
	"github.com/zeusync/mazesim/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Message is one frame of the feed.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	MessageSnapshot = "snapshot"
	MessageEvent    = "event"
	MessageError    = "error"
)

// EventFrame wraps a bus event for the feed.
type EventFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// ControlMessage is sent by clients to steer the simulation.
type ControlMessage struct {
	Action string `json:"action"`
	Mouse  string `json:"mouse,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

func encode(typ string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Data: raw})
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Feed upgrade failed", log.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, s.config.ClientBuffer),
		done: make(chan struct{}),
	}
	if frame, err := encode(MessageSnapshot, s.sim.Snapshot()); err == nil {
		c.send <- frame
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	count := len(s.clients)
	s.mu.Unlock()
	s.metrics.FeedClients.Set(float64(count))
	s.logger.Debug("Feed client connected", log.String("remote", conn.RemoteAddr().String()))

	go s.writeLoop(c)
	s.readLoop(c)
}

// readLoop handles control messages until the client goes away.
func (s *Server) readLoop(c *client) {
	defer s.drop(c)
	for {
		var msg ControlMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := s.control(msg); err != nil {
			if frame, encErr := encode(MessageError, err.Error()); encErr == nil {
				s.enqueue(c, frame)
			}
		}
	}
}

func (s *Server) writeLoop(c *client) {
	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.drop(c)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) control(msg ControlMessage) error {
	switch msg.Action {
	case "pause":
		if msg.Mouse != "" {
			return s.sim.PauseMouse(msg.Mouse)
		}
		s.sim.Pause()
	case "resume":
		if msg.Mouse != "" {
			return s.sim.ResumeMouse(msg.Mouse)
		}
		s.sim.Resume()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, msg.Action)
	}
	return nil
}

// enqueue hands a frame to a client without blocking. Clients that cannot
// keep up are dropped.
func (s *Server) enqueue(c *client, frame []byte) {
	select {
	case c.send <- frame:
	case <-c.done:
	default:
		s.logger.Warn("Dropping feed client", log.Error(ErrFeedBufferFull))
		s.drop(c)
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	count := len(s.clients)
	s.mu.Unlock()
	if !ok {
		return
	}
	close(c.done)
	_ = c.conn.Close()
	s.metrics.FeedClients.Set(float64(count))
}

func (s *Server) broadcast(frame []byte) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		s.enqueue(c, frame)
	}
}

func (s *Server) broadcastSnapshot() {
	if s.ClientCount() == 0 {
		return
	}
	frame, err := encode(MessageSnapshot, s.sim.Snapshot())
	if err != nil {
		s.logger.Error("Snapshot encoding failed", log.Error(err))
		return
	}
	s.broadcast(frame)
	s.metrics.SnapshotsSent.Inc()
}

func (s *Server) forwardEvent(e bus.Event) error {
	if s.ClientCount() == 0 {
		return nil
	}
	frame, err := encode(MessageEvent, EventFrame{Type: e.Type(), Payload: e.Data()})
	if err != nil {
		return err
	}
	s.broadcast(frame)
	return nil
}

func (s *Server) closeClients() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()
	for _, c := range clients {
		s.drop(c)
	}
}
