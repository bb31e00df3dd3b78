// internal/routes/api_routes.go
package routes

import (
	"github.com/aboscolliaulas/Ensinoverso/internal/handlers"
	"github.com/aboscolliaulas/Ensinoverso/internal/middleware"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes registra todas as rotas de API que exigem autenticação.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")

	// Perfil e logout ficam acessíveis mesmo para contas pendentes de
	// aprovação. Todo o resto exige conta aprovada.
	profile := apiGroup.Group("/profile")
	{
		profile.GET("", handlers.GetProfileHandler)
		profile.PUT("", middleware.RequireApproved(), handlers.UpdateProfileHandler)
	}

	approved := apiGroup.Group("/")
	approved.Use(middleware.RequireApproved())
	{
		// --- AULAS ---
		lessons := approved.Group("/lessons")
		{
			lessons.GET("", handlers.ListLessonsHandler)
			lessons.GET("/:id", handlers.GetLessonHandler)
			lessons.POST("", handlers.CreateLessonHandler)
			lessons.PUT("/:id", handlers.UpdateLessonHandler)
			lessons.DELETE("/:id", handlers.DeleteLessonHandler)

			// Envio único de respostas do quiz (somente estudante)
			lessons.POST("/:id/submit", handlers.SubmitQuizHandler)

			// Relatório de desempenho por turma (dono da aula ou admin)
			lessons.GET("/:id/report", handlers.GetLessonReportHandler)
			lessons.GET("/:id/report/export", handlers.ExportLessonReportHandler)
		}

		// --- TURMAS ---
		classes := approved.Group("/classes")
		{
			classes.GET("", handlers.ListClassesHandler)
			classes.GET("/:id", handlers.GetClassHandler)
			classes.POST("", middleware.RequireRole(models.RoleAdministrador), handlers.CreateClassHandler)
			classes.PUT("/:id", middleware.RequireRole(models.RoleAdministrador), handlers.UpdateClassHandler)
			classes.DELETE("/:id", middleware.RequireRole(models.RoleAdministrador), handlers.DeleteClassHandler)
		}

		// --- USUÁRIOS ---
		users := approved.Group("/users")
		users.Use(middleware.RequireRole(models.RoleAdministrador))
		{
			users.GET("", handlers.ListUsersHandler)
			users.GET("/:id", handlers.GetUserHandler)
			users.PUT("/:id", handlers.UpdateUserHandler)
			users.DELETE("/:id", handlers.DeleteUserHandler)
		}

		// --- CATÁLOGO BNCC ---
		bncc := approved.Group("/bncc-skills")
		{
			bncc.GET("", handlers.ListBNCCSkillsHandler)
			bncc.POST("", middleware.RequireRole(models.RoleAdministrador), handlers.CreateBNCCSkillHandler)
			bncc.POST("/import", middleware.RequireRole(models.RoleAdministrador), handlers.ImportBNCCSkillsHandler)
			bncc.PUT("/:id", middleware.RequireRole(models.RoleAdministrador), handlers.UpdateBNCCSkillHandler)
			bncc.DELETE("/:id", middleware.RequireRole(models.RoleAdministrador), handlers.DeleteBNCCSkillHandler)
		}

		// --- GERAÇÃO COM IA ---
		// Estudantes não criam conteúdo, então não geram nada.
		ai := approved.Group("/ai")
		ai.Use(middleware.RequireAnyRole(models.RoleAdministrador, models.RoleProfessor))
		{
			ai.POST("/lesson-plan", handlers.GenerateLessonPlanHandler)
			ai.POST("/questions", handlers.GenerateQuestionsHandler)
			ai.POST("/quiz", handlers.GenerateQuizHandler)
			ai.POST("/image", handlers.GenerateImageHandler)
		}

		// --- CHAT ---
		chat := approved.Group("/chat")
		{
			chat.GET("/ws", handlers.ChatWSEndpoint)
			chat.GET("/rooms", handlers.ListChatsHandler)
			chat.GET("/rooms/:id/messages", handlers.GetMessagesHandler)
			chat.POST("/rooms", handlers.CreateChatHandler)
		}

		// --- EVENTOS ---
		// Notificações de mudança de coleção para recarga reativa no cliente.
		approved.GET("/events/ws", handlers.EventsWSEndpoint)
	}
}
