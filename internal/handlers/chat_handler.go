// internal/handlers/chat_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateChatInput é o corpo de criação de um novo chat.
type CreateChatInput struct {
	Name           string `json:"name"`
	Type           string `json:"type" binding:"required"` // "personal", "group" ou "assistant"
	ParticipantIDs []uint `json:"participantIds"`
}

// ChatParticipantResponse é a projeção leve de um participante.
type ChatParticipantResponse struct {
	ID   uint   `json:"ID"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// ChatListItemResponse é um item da lista de chats do usuário.
type ChatListItemResponse struct {
	ID           uint                      `json:"ID"`
	Name         string                    `json:"name"`
	Type         string                    `json:"type"`
	Participants []ChatParticipantResponse `json:"participants"`
	LastMessage  string                    `json:"lastMessage"`
	UpdatedAt    string                    `json:"UpdatedAt"`
}

// ListChatsHandler lista os chats dos quais o usuário atual participa.
func ListChatsHandler(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var chats []models.Chat
	config.DB.Preload("Participants").
		Joins("JOIN chat_participants cp ON cp.chat_id = chats.id").
		Where("cp.user_id = ?", userID).
		Order("chats.updated_at DESC").
		Find(&chats)

	response := make([]ChatListItemResponse, 0, len(chats))
	for _, chat := range chats {
		var lastMsg models.ChatMessage
		config.DB.Where("chat_id = ?", chat.ID).Order("created_at DESC").Limit(1).First(&lastMsg)

		participants := make([]ChatParticipantResponse, 0, len(chat.Participants))
		for _, p := range chat.Participants {
			participants = append(participants, ChatParticipantResponse{
				ID:   p.ID,
				Name: p.Name,
				Role: p.Role,
			})
		}

		response = append(response, ChatListItemResponse{
			ID:           chat.ID,
			Name:         chat.Name,
			Type:         chat.Type,
			Participants: participants,
			LastMessage:  lastMsg.Content,
			UpdatedAt:    chat.UpdatedAt.Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}

// CreateChatHandler cria um novo chat. Chats do tipo "assistant" são únicos
// por usuário: pedir de novo devolve o chat existente.
func CreateChatHandler(c *gin.Context) {
	var input CreateChatInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	userID, _ := c.Get("user_id")
	currentUserID := userID.(uint)

	switch input.Type {
	case "assistant":
		input.ParticipantIDs = []uint{currentUserID, AssistantUserID}
		if input.Name == "" {
			input.Name = "Assistente Ensinoverso"
		}
	case "personal", "group":
		// ok
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Tipo de chat inválido"})
		return
	}

	// Garante que o usuário atual está na lista de participantes
	isCurrentUserParticipant := false
	for _, id := range input.ParticipantIDs {
		if id == currentUserID {
			isCurrentUserParticipant = true
			break
		}
	}
	if !isCurrentUserParticipant {
		input.ParticipantIDs = append(input.ParticipantIDs, currentUserID)
	}

	// Chats pessoais e de assistente são deduplicados pelo par de participantes
	if (input.Type == "personal" || input.Type == "assistant") && len(input.ParticipantIDs) == 2 {
		var existingChatID uint
		config.DB.Raw(`
            SELECT cp1.chat_id
            FROM chat_participants AS cp1
            JOIN chat_participants AS cp2 ON cp1.chat_id = cp2.chat_id
            JOIN chats ON chats.id = cp1.chat_id
            WHERE chats.type = ? AND cp1.user_id = ? AND cp2.user_id = ?
            LIMIT 1`, input.Type, input.ParticipantIDs[0], input.ParticipantIDs[1]).Scan(&existingChatID)

		if existingChatID != 0 {
			var existingChat models.Chat
			config.DB.Preload("Participants").First(&existingChat, existingChatID)
			c.JSON(http.StatusOK, gin.H{"message": "Chat já existe", "chat": existingChat})
			return
		}
	}

	chat := models.Chat{
		Name:        input.Name,
		Type:        input.Type,
		CreatedByID: currentUserID,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chat).Error; err != nil {
			return err
		}

		var participants []models.User
		if err := tx.Where("id IN ?", input.ParticipantIDs).Find(&participants).Error; err != nil {
			return err
		}
		return tx.Model(&chat).Association("Participants").Replace(participants)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Falha ao criar chat: " + err.Error()})
		return
	}

	config.DB.Preload("Participants").First(&chat, chat.ID)

	c.JSON(http.StatusCreated, gin.H{"message": "Chat criado com sucesso", "chat": chat})
}

// GetMessagesHandler devolve o histórico de mensagens de um chat, paginado.
func GetMessagesHandler(c *gin.Context) {
	chatID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID de chat inválido"})
		return
	}
	userID, _ := c.Get("user_id")

	// Só participantes leem o histórico
	var participantCount int64
	config.DB.Model(&models.ChatParticipant{}).Where("chat_id = ? AND user_id = ?", chatID, userID).Count(&participantCount)
	if participantCount == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Você não é participante deste chat"})
		return
	}

	var messages []models.ChatMessage
	err = config.DB.Preload("User").
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Scopes(Paginate(c)).
		Find(&messages).Error
	if err != nil {
		slog.Error("Falha ao buscar mensagens", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar mensagens"})
		return
	}

	c.JSON(http.StatusOK, messages)
}
