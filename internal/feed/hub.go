// Package feed broadcasts completed spins to websocket clients.
package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"spin-rewards/internal/domain"
	"spin-rewards/internal/observability"
	"spin-rewards/internal/sui"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 512
	sendBuffer     = 16
	broadcastQueue = 256
)

// Message is the wire format of feed events.
type Message struct {
	Event string   `json:"event"`
	Data  SpinData `json:"data"`
}

// SpinData describes a spin without exposing the full wallet address.
type SpinData struct {
	Wallet    string `json:"wallet"`
	SlotIndex int    `json:"slot_index"`
	Type      string `json:"type"`
	Amount    string `json:"amount"`
}

// Hub fans messages out to connected clients. A single goroutine owns the
// client set; everything else talks to it through channels.
type Hub struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	count      chan chan int
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	winsOnly   bool
}

// NewHub creates a hub. With winsOnly set, NO_PRIZE spins are not broadcast.
func NewHub(logger *zap.Logger, winsOnly bool) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastQueue),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:   logger.Named("feed"),
		winsOnly: winsOnly,
	}
}

// Run serves the hub until ctx is done, then disconnects all clients.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			observability.UpdateFeedClients(0)
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			observability.UpdateFeedClients(len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				observability.UpdateFeedClients(len(h.clients))
			}

		case reply := <-h.count:
			reply <- len(h.clients)

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow client
					delete(h.clients, c)
					close(c.send)
					observability.RecordFeedDrop()
					h.logger.Debug("dropped slow feed client", zap.String("remote", c.remote))
				}
			}
			observability.UpdateFeedClients(len(h.clients))
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}

// PublishSpin queues a spin for broadcast. It never blocks; when the queue
// is full the message is discarded.
func (h *Hub) PublishSpin(s *domain.Spin) {
	if h.winsOnly && !s.IsWin() {
		return
	}

	data, err := json.Marshal(Message{
		Event: "spin",
		Data: SpinData{
			Wallet:    sui.ShortAddress(s.WalletAddress),
			SlotIndex: s.SlotIndex,
			Type:      s.PrizeType.String(),
			Amount:    s.Amount.String(),
		},
	})
	if err != nil {
		h.logger.Error("marshal feed message", zap.Error(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		observability.RecordFeedDrop()
	}
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		remote: r.RemoteAddr,
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
