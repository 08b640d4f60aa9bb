package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ttamura24/Sports-Betting-Logs/internal/ledger-service/ledger"
	"github.com/ttamura24/Sports-Betting-Logs/pkg/contracts/events"
)

const writeWait = 5 * time.Second

// ClientMsg é a única mensagem aceita do cliente
type ClientMsg struct {
	Type string `json:"type"` // ping
}

type client struct {
	conn *websocket.Conn
	id   ledger.Identity
	wmu  sync.Mutex // gorilla não aceita escritas concorrentes na mesma conexão
}

func (c *client) write(b []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

// Hub mantém as conexões do feed ao vivo do ledger.
// Cada atualização vai pras conexões do dono da aposta e pras conexões privilegiadas.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	mu       sync.RWMutex
	clients  map[*client]struct{}
}

// NewHub cria uma instância de Hub com política customizada de origem (CORS)
func NewHub(allowOrigin func(r *http.Request) bool, log *zap.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		clients:  make(map[*client]struct{}),
	}
}

// Serve faz o upgrade e segura a conexão até o cliente desconectar
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, id ledger.Identity) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	c := &client{conn: conn, id: id}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
	}()

	pong, _ := json.Marshal(map[string]string{"type": "pong"})
	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "ping" {
			_ = c.write(pong)
		}
	}
}

// Broadcast envia a atualização a quem pode vê-la
func (h *Hub) Broadcast(upd events.FeedUpdate) {
	targets := h.recipients(upd.OwnerID)
	if len(targets) == 0 {
		return
	}

	b, err := json.Marshal(upd)
	if err != nil {
		h.log.Error("marshal feed update", zap.Error(err))
		return
	}
	for _, c := range targets {
		if err := c.write(b); err != nil {
			h.log.Debug("ws write failed", zap.String("owner_id", c.id.OwnerID), zap.Error(err))
		}
	}
}

func (h *Hub) recipients(ownerID string) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []*client
	for c := range h.clients {
		if c.id.Privileged || c.id.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out
}

// Connections retorna quantos clientes estão conectados
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
