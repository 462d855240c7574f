// Package broadcast fans court deltas out to websocket subscribers. The hub
// owns the subscriber set in a single goroutine; ticks hand their changed
// set over without ever blocking on a slow reader.
package broadcast

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/courtwatch/courtwatch/board"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "broadcast")

const (
	// writeWait bounds one frame write to a peer.
	writeWait = 10 * time.Second
	// pongWait is how long a peer may stay silent before it is dropped.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// maxMessageSize bounds inbound frames; subscribers only listen.
	maxMessageSize = 512
	// sendBufferSize is the per-subscriber backlog before it is dropped.
	sendBufferSize = 16
	// eventBufferSize decouples the tick from the fan-out loop.
	eventBufferSize = 64
)

// Hub is the fan-out service for board deltas. It satisfies
// runtime.Service; the node registers it alongside the scraper.
type Hub struct {
	register   chan *subscriber
	unregister chan *subscriber
	events     chan []byte
	quit       chan struct{}
	done       chan struct{}
	upgrader   websocket.Upgrader
}

// NewHub builds a hub ready to be started. The board is public data, so
// upgrades are accepted from any origin.
func NewHub() *Hub {
	return &Hub{
		register:   make(chan *subscriber),
		unregister: make(chan *subscriber),
		events:     make(chan []byte, eventBufferSize),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

// Start runs the fan-out loop until Stop.
func (h *Hub) Start() {
	h.run()
}

// Stop disconnects every subscriber and ends the fan-out loop.
func (h *Hub) Stop() error {
	close(h.quit)
	<-h.done
	return nil
}

// Status always reports healthy; a hub without subscribers is idle, not
// broken.
func (h *Hub) Status() error {
	return nil
}

// Broadcast queues a tick's delta for every subscriber. It never blocks the
// tick: when the fan-out loop is saturated the event is dropped and counted.
func (h *Hub) Broadcast(d *board.Delta) {
	msg, err := json.Marshal(d)
	if err != nil {
		log.WithError(err).Error("Could not encode delta broadcast")
		return
	}
	select {
	case h.events <- msg:
	default:
		droppedBroadcastsTotal.Inc()
		log.Warn("Dropping delta broadcast, fan-out loop is saturated")
	}
}

// ServeHTTP upgrades a request into a delta subscription.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already answered the request with an error status.
		log.WithError(err).Debug("Rejected websocket upgrade")
		return
	}
	s := &subscriber{hub: h, conn: conn, send: make(chan []byte, sendBufferSize)}
	select {
	case h.register <- s:
	case <-h.quit:
		_ = conn.Close()
		return
	}
	go s.writePump()
	go s.readPump()
}

func (h *Hub) run() {
	conns := make(map[*subscriber]bool)
	defer func() {
		for s := range conns {
			close(s.send)
		}
		close(h.done)
	}()
	for {
		select {
		case s := <-h.register:
			conns[s] = true
			subscribersGauge.Set(float64(len(conns)))
		case s := <-h.unregister:
			if _, ok := conns[s]; ok {
				delete(conns, s)
				close(s.send)
				subscribersGauge.Set(float64(len(conns)))
			}
		case msg := <-h.events:
			for s := range conns {
				select {
				case s.send <- msg:
				default:
					// The subscriber stopped draining its backlog.
					delete(conns, s)
					close(s.send)
					droppedSubscribersTotal.Inc()
					subscribersGauge.Set(float64(len(conns)))
				}
			}
		case <-h.quit:
			return
		}
	}
}

// drop hands a subscriber back to the run loop for removal. During shutdown
// the loop is gone and its deferred cleanup owns the close.
func (h *Hub) drop(s *subscriber) {
	select {
	case h.unregister <- s:
	case <-h.quit:
	}
}
