// models/chat.go
package models

import (
	"gorm.io/gorm"
)

// Chat representa uma conversa (pessoal, em grupo ou com o assistente de IA).
type Chat struct {
	gorm.Model
	Name         string `json:"name"` // nome para chats em grupo
	Type         string `json:"type"` // 'personal', 'group', 'assistant'
	CreatedByID  uint   `json:"createdById"`
	CreatedBy    User   `json:"createdBy" gorm:"foreignKey:CreatedByID"`
	Participants []User `json:"participants" gorm:"many2many:chat_participants;"`
}

// ChatParticipant é a tabela associativa de participantes.
type ChatParticipant struct {
	ChatID uint `json:"chatId" gorm:"primaryKey"`
	UserID uint `json:"userId" gorm:"primaryKey"`
}

// ChatMessage representa uma mensagem enviada em um chat.
type ChatMessage struct {
	gorm.Model
	ChatID  uint   `json:"chatId"`
	UserID  uint   `json:"userId"`
	User    User   `json:"user" gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Content string `json:"content" gorm:"type:text"`
}
