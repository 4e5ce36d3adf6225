package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans analysis events out to the websocket subscribers of each task.
// Delivery is best-effort: dead connections are dropped, zero subscribers is
// not an error.
type Hub struct {
	log *zap.SugaredLogger

	mu          sync.RWMutex
	subscribers map[string][]*websocket.Conn
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:         log,
		subscribers: make(map[string][]*websocket.Conn),
	}
}

// HandleSubscribe upgrades the request and registers the connection for the
// task's event stream.
func (h *Hub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if taskID == "" {
		http.Error(w, "missing task id", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("websocket upgrade failed", "task", taskID, "error", err)
		return
	}

	h.add(taskID, conn)
	h.log.Infow("websocket subscribed", "task", taskID)

	go h.listen(taskID, conn)
}

// Publish sends one event to every subscriber of the task.
func (h *Hub) Publish(taskID string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("cannot marshal event", "task", taskID, "error", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, len(h.subscribers[taskID]))
	copy(conns, h.subscribers[taskID])
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.log.Warnw("dropping dead subscriber", "task", taskID, "error", err)
			h.remove(taskID, conn)
			_ = conn.Close()
		}
	}
}

// listen keeps the connection alive; clients are not expected to send
// anything meaningful.
func (h *Hub) listen(taskID string, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(taskID, conn)
			_ = conn.Close()
			h.log.Infow("websocket closed", "task", taskID)
			return
		}
	}
}

func (h *Hub) add(taskID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[taskID] = append(h.subscribers[taskID], conn)
}

func (h *Hub) remove(taskID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns := h.subscribers[taskID]
	for i, c := range conns {
		if c == conn {
			h.subscribers[taskID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.subscribers[taskID]) == 0 {
		delete(h.subscribers, taskID)
	}
}
