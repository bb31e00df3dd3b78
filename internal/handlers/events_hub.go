// internal/handlers/events_hub.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// O hub de eventos substitui as assinaturas de coleção do cliente: depois de
// qualquer mutação em lessons/classes/users/bncc o servidor empurra uma
// notificação {collection} e o cliente recarrega a coleção e recalcula o
// estado derivado (filtro de visibilidade, relatórios).

var eventsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // em desenvolvimento aceitamos qualquer origem
	},
}

// CollectionEvent é a notificação enviada aos clientes conectados.
type CollectionEvent struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
}

type eventClient struct {
	hub  *EventsHub
	conn *websocket.Conn
	send chan []byte
}

// EventsHub mantém os clientes inscritos e distribui notificações de
// mudança de coleção.
type EventsHub struct {
	mu      sync.Mutex
	clients map[*eventClient]struct{}
}

// GlobalEvents é a única instância do hub de eventos da aplicação.
var GlobalEvents = NewEventsHub()

func NewEventsHub() *EventsHub {
	return &EventsHub{clients: make(map[*eventClient]struct{})}
}

// Notify avisa todos os clientes conectados que a coleção mudou.
func (h *EventsHub) Notify(collection string) {
	event := CollectionEvent{Type: "collectionChanged", Collection: collection}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("Falha ao serializar evento de coleção", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// Cliente lento ou desconectado: descarta para não travar o hub.
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *EventsHub) register(client *eventClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
}

func (h *EventsHub) unregister(client *eventClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

func (c *eventClient) readPump() {
	// A assinatura é só de leitura do lado do cliente; o readPump existe para
	// detectar o fechamento da conexão e liberar o registro.
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Conexão de eventos encerrada de forma inesperada", "error", err)
			}
			break
		}
	}
}

func (c *eventClient) writePump() {
	defer c.conn.Close()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Error("Falha ao enviar evento pelo websocket", "error", err)
			return
		}
	}
}

// EventsWSEndpoint registra o cliente autenticado no hub de eventos.
func EventsWSEndpoint(c *gin.Context) {
	if _, exists := c.Get("user_id"); !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conn, err := eventsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Falha ao promover conexão para WebSocket", "error", err)
		return
	}

	client := &eventClient{
		hub:  GlobalEvents,
		conn: conn,
		send: make(chan []byte, 16),
	}
	client.hub.register(client)

	go client.writePump()
	go client.readPump()
}
