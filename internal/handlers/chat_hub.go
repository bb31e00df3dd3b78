// internal/handlers/chat_hub.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/gorilla/websocket"
)

// AssistantUserID é o ID fixo da conta do assistente pedagógico. A conta é
// semeada na inicialização para que a FK das mensagens se mantenha válida.
const AssistantUserID = 99999

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // em desenvolvimento aceitamos qualquer origem
	},
}

// GlobalHub é a única instância do hub de chat da aplicação.
var GlobalHub = NewHub()

// Message é o envelope trocado pelo websocket.
type Message struct {
	Type    string             `json:"type"`
	Payload models.ChatMessage `json:"payload"`
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

type Hub struct {
	clients    map[uint]*Client
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uint]*Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = client
			h.mu.Unlock()
			slog.Info("Cliente de chat conectado", "userID", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.userID]; ok {
				delete(h.clients, client.userID)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("Cliente de chat desconectado", "userID", client.userID)

		case messageData := <-h.broadcast:
			h.handleBroadcast(messageData)
		}
	}
}

func (h *Hub) handleBroadcast(messageData []byte) {
	var msg Message
	if err := json.Unmarshal(messageData, &msg); err != nil {
		slog.Error("Falha ao decodificar mensagem de broadcast", "error", err)
		return
	}

	// 1. Grava a mensagem do usuário
	userMessage := msg.Payload
	if err := config.DB.Create(&userMessage).Error; err != nil {
		slog.Error("Falha ao gravar mensagem do usuário", "error", err)
		return
	}
	config.DB.Preload("User").First(&userMessage, userMessage.ID)

	// 2. Entrega a mensagem a todos os participantes online
	h.sendMessageToChat(userMessage)

	// 3. Se o chat tem o assistente entre os participantes, dispara a resposta
	var participants []models.ChatParticipant
	config.DB.Where("chat_id = ?", userMessage.ChatID).Find(&participants)

	isAssistantChat := false
	for _, p := range participants {
		if p.UserID == AssistantUserID {
			isAssistantChat = true
			break
		}
	}

	if isAssistantChat && userMessage.UserID != AssistantUserID {
		go h.generateAndBroadcastAssistantResponse(userMessage.ChatID, userMessage.Content)
	}
}

// Entrega uma mensagem já gravada a todos os participantes online do chat.
func (h *Hub) sendMessageToChat(message models.ChatMessage) {
	var participants []models.ChatParticipant
	config.DB.Where("chat_id = ?", message.ChatID).Find(&participants)

	finalMsg := Message{Type: "newMessage", Payload: message}
	messageBytes, err := json.Marshal(finalMsg)
	if err != nil {
		slog.Error("Falha ao serializar mensagem para broadcast", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range participants {
		if client, ok := h.clients[p.UserID]; ok {
			select {
			case client.send <- messageBytes:
			default:
				close(client.send)
				delete(h.clients, p.UserID)
			}
		}
	}
}

// Gera e entrega a resposta do assistente pedagógico.
func (h *Hub) generateAndBroadcastAssistantResponse(chatID uint, userMessage string) {
	if config.GeminiClient == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	assistantPrompt := fmt.Sprintf(
		"Você é o 'Assistente Ensinoverso', um ajudante amigável e competente para professores da educação básica brasileira. "+
			"Sua tarefa é dar respostas curtas, precisas e úteis sobre o processo educacional, "+
			"metodologias de ensino, planejamento de aulas, habilidades da BNCC e tarefas administrativas da escola. "+
			"Responda em português, seja educado e profissional. Não invente fatos. Se não souber a resposta, diga isso com gentileza. "+
			"Esta é a pergunta do usuário: \"%s\"", userMessage)

	resp, err := withRetry(func() (*genai.GenerateContentResponse, error) {
		return config.GeminiClient.GenerateContent(ctx, genai.Text(assistantPrompt))
	})
	if err != nil {
		slog.Error("Falha na resposta do assistente", "error", err)
		return
	}

	assistantText := responseText(resp)
	if assistantText == "" {
		assistantText = "Infelizmente não consegui processar sua pergunta. Tente reformular."
	}

	assistantMessage := models.ChatMessage{
		ChatID:  chatID,
		UserID:  AssistantUserID,
		Content: assistantText,
	}
	if err := config.DB.Create(&assistantMessage).Error; err != nil {
		slog.Error("Falha ao gravar mensagem do assistente", "error", err)
		return
	}
	config.DB.Preload("User").First(&assistantMessage, assistantMessage.ID)

	h.sendMessageToChat(assistantMessage)
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("Conexão de chat encerrada de forma inesperada", "error", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			slog.Error("Mensagem inválida recebida do cliente", "error", err)
			continue
		}
		// O remetente vem sempre da sessão, nunca do payload do cliente.
		msg.Payload.UserID = c.userID

		finalMessageBytes, err := json.Marshal(msg)
		if err != nil {
			slog.Error("Falha ao serializar mensagem antes do broadcast", "error", err)
			continue
		}
		c.hub.broadcast <- finalMessageBytes
	}
}

func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
	}()
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			slog.Error("Falha ao escrever no websocket de chat", "error", err)
			return
		}
	}
}

func ChatWSEndpoint(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	conn, err := chatUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Falha ao promover conexão para WebSocket", "error", err)
		return
	}

	client := &Client{
		hub:    GlobalHub,
		conn:   conn,
		send:   make(chan []byte, 256),
		userID: userID.(uint),
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
