package routes

import (
	"github.com/aboscolliaulas/Ensinoverso/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes inicializa todas as rotas da aplicação.
func SetupRoutes(r *gin.Engine) {
	// --- Rotas públicas ---
	// Cadastro e login não exigem autenticação.
	RegisterAuthRoutes(r)

	// --- Grupo protegido ---
	// Tudo aqui dentro exige um JWT válido. O middleware resolve o principal
	// (papel, aprovação, turmas vinculadas) via cache Redis ou banco.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
