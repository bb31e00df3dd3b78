package routes

import (
	"github.com/aboscolliaulas/Ensinoverso/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registra as rotas públicas de autenticação.
func RegisterAuthRoutes(r *gin.Engine) {
	// Cadastro de nova conta. A primeira conta vira administrador aprovado;
	// as demais entram como professor pendente de aprovação.
	r.POST("/register", handlers.RegisterHandler)

	// Login com e-mail e senha.
	r.POST("/login", handlers.LoginHandler)

	// Logout limpa o cookie e invalida o principal em cache.
	r.GET("/logout", handlers.LogoutHandler)
}
