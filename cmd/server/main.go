package main

import (
	"log/slog"
	"os"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/internal/handlers"
	"github.com/aboscolliaulas/Ensinoverso/internal/routes"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// Em desenvolvimento as variáveis vêm do .env; em produção, do ambiente.
	if err := godotenv.Load(); err != nil {
		slog.Info("Arquivo .env não encontrado, usando variáveis de ambiente")
	}

	config.LoadJWTKey()
	config.ConnectDB()
	config.ConnectRedis()

	if err := config.InitGoogleServices(); err != nil {
		// Sem a chave do Gemini o servidor sobe mesmo assim; os endpoints de
		// geração respondem 503 até a chave ser configurada.
		slog.Warn("Serviços de IA indisponíveis", "error", err)
	}

	if err := migrate(config.DB); err != nil {
		slog.Error("Falha na migração do banco de dados", "error", err)
		os.Exit(1)
	}

	if err := seedAssistantUser(config.DB); err != nil {
		slog.Error("Falha ao semear a conta do assistente", "error", err)
		os.Exit(1)
	}

	go handlers.GlobalHub.Run()

	r := gin.Default()
	r.Static("/static", "./static")
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("Servidor Ensinoverso iniciado", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Servidor encerrado com erro", "error", err)
		os.Exit(1)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.ClassRoom{},
		&models.ClassLesson{},
		&models.LessonPlan{},
		&models.QuizSubmission{},
		&models.BNCCSkill{},
		&models.Chat{},
		&models.ChatParticipant{},
		&models.ChatMessage{},
	)
}

// seedAssistantUser garante a conta fixa do assistente pedagógico, usada como
// remetente das mensagens geradas por IA no chat.
func seedAssistantUser(db *gorm.DB) error {
	var assistant models.User
	err := db.First(&assistant, handlers.AssistantUserID).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	assistant = models.User{
		Model:    gorm.Model{ID: handlers.AssistantUserID},
		Name:     "Assistente Ensinoverso",
		Email:    "assistente@ensinoverso.interno",
		Role:     models.RoleProfessor,
		Approved: true,
		// Sem hash de senha válido esta conta nunca autentica.
		Password: "",
	}
	return db.Create(&assistant).Error
}
