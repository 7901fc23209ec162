// Package messaging pushes live order updates to connected participants.
package messaging

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sudo-init-do/coderr/internal/apperr"
	"github.com/sudo-init-do/coderr/internal/middleware"
	"github.com/sudo-init-do/coderr/internal/repository"
)

const (
	EventOrderStatus = "order_status"

	writeWait = 10 * time.Second
	sendQueue = 16
)

type wsEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// client owns one socket. Only its write loop writes to conn.
type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn, send: make(chan []byte, sendQueue), done: make(chan struct{})}
}

func (cl *client) close() {
	cl.once.Do(func() {
		close(cl.done)
		_ = cl.conn.Close()
	})
}

// Hub keeps one room of clients per order.
type Hub struct {
	orders repository.OrderRepository
	logger *zap.Logger

	mu    sync.Mutex
	rooms map[int64]map[*client]struct{}

	upgrader websocket.Upgrader
}

func NewHub(orders repository.OrderRepository, logger *zap.Logger) *Hub {
	return &Hub{
		orders: orders,
		logger: logger,
		rooms:  make(map[int64]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) register(orderID int64, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[orderID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[orderID] = room
	}
	room[cl] = struct{}{}
}

func (h *Hub) unregister(orderID int64, cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[orderID]; ok {
		delete(room, cl)
		if len(room) == 0 {
			delete(h.rooms, orderID)
		}
	}
}

// drop removes a client and closes its socket.
func (h *Hub) drop(orderID int64, cl *client, reason string, err error) {
	h.unregister(orderID, cl)
	cl.close()
	h.logger.Debug("dropping order socket", zap.Int64("order_id", orderID), zap.String("reason", reason), zap.Error(err))
}

// Subscribers returns how many sockets listen on the order.
func (h *Hub) Subscribers(orderID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[orderID])
}

// BroadcastOrder queues the order for everyone watching it and never waits
// on a socket. Clients whose queue is full are dropped.
func (h *Hub) BroadcastOrder(orderID int64, order any) {
	payload, err := json.Marshal(wsEvent{Type: EventOrderStatus, Data: order})
	if err != nil {
		h.logger.Error("marshal order event", zap.Int64("order_id", orderID), zap.Error(err))
		return
	}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.rooms[orderID]))
	for cl := range h.rooms[orderID] {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		select {
		case cl.send <- payload:
		case <-cl.done:
		default:
			h.drop(orderID, cl, "send queue full", nil)
		}
	}
}

func (h *Hub) writeLoop(orderID int64, cl *client) {
	for {
		select {
		case <-cl.done:
			return
		case payload := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.drop(orderID, cl, "write failed", err)
				return
			}
		}
	}
}

// GET /api/orders/:id/ws
func (h *Hub) OrderWS(c echo.Context) error {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || orderID <= 0 {
		return apperr.NotFound("Order not found.")
	}

	order, err := h.orders.GetByID(c.Request().Context(), orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Order not found.")
	}
	if err != nil {
		return err
	}
	u := middleware.CurrentUser(c)
	if !order.IsParticipant(u.ID) {
		return apperr.Forbidden("You are not a participant in this order.")
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil
	}
	cl := newClient(ws)
	h.register(orderID, cl)
	go h.writeLoop(orderID, cl)
	h.logger.Debug("order socket joined", zap.Int64("order_id", orderID), zap.Int64("user_id", u.ID))

	// server push only; reading detects the close
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(orderID, cl)
	cl.close()
	return nil
}
