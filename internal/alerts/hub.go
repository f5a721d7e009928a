package alerts

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 32
)

type subscriber struct {
	accountID string
	send      chan Event
}

// Hub fans alert events out to the websocket subscribers of each account.
type Hub struct {
	mu       sync.RWMutex
	subs     map[*subscriber]struct{}
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewHub(logger *zap.Logger, checkOrigin func(*http.Request) bool) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Publish delivers ev to every subscriber of accountID. Slow subscribers
// drop events rather than block the publisher.
func (h *Hub) Publish(accountID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if s.accountID != accountID {
			continue
		}
		select {
		case s.send <- ev:
		default:
			h.logger.Warn("alert stream subscriber lagging, event dropped",
				zap.String("account_id", accountID), zap.String("alert_id", ev.Alert.ID))
		}
	}
}

// Subscribers reports the number of open streams for accountID.
func (h *Hub) Subscribers(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for s := range h.subs {
		if s.accountID == accountID {
			n++
		}
	}
	return n
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(s *subscriber) {
	h.mu.Lock()
	delete(h.subs, s)
	h.mu.Unlock()
}

// Serve upgrades the request and streams events for accountID until the
// client goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, accountID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade alert stream", zap.Error(err))
		return
	}
	defer conn.Close()

	s := &subscriber{accountID: accountID, send: make(chan Event, sendBuffer)}
	h.add(s)
	defer h.remove(s)
	h.logger.Info("alert stream connected", zap.String("account_id", accountID))

	done := make(chan struct{})
	go h.readPump(conn, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev := <-s.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.logger.Error("failed to write alert event", zap.Error(err))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages and notices disconnects.
func (h *Hub) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("alert stream closed", zap.Error(err))
			}
			return
		}
	}
}
