package broadcast

import (
	"time"

	"github.com/gorilla/websocket"
)

// subscriber is one websocket peer. The run loop only ever touches the send
// channel; the conn belongs to the two pumps.
type subscriber struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// writePump moves queued deltas onto the wire and keeps the connection
// alive with pings. A closed send channel means the hub dropped us.
func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains inbound frames so pongs are processed and a peer hangup is
// noticed promptly. Subscribers have nothing to say; payloads are discarded.
func (s *subscriber) readPump() {
	defer func() {
		s.hub.drop(s)
		_ = s.conn.Close()
	}()
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}
