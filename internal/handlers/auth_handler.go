// internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/internal/access"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

// RegisterInput é o corpo esperado no cadastro.
type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginInput é o corpo esperado no login.
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler cria a conta e o perfil de aplicação em um passo só.
//
// Política de primeiro acesso: a primeira conta do sistema vira
// administrador já aprovado; todas as seguintes nascem como professor
// aguardando liberação de um administrador.
func RegisterHandler(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPassword),
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			user.Role = models.RoleAdministrador
			user.Approved = true
		} else {
			user.Role = models.RoleProfessor
			user.Approved = false
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Não foi possível criar a conta: " + err.Error()})
		return
	}

	slog.Info("Nova conta criada", "user_id", user.ID, "role", user.Role, "approved", user.Approved)
	GlobalEvents.Notify("users")

	issueToken(c, user)
}

// LoginHandler autentica por e-mail e senha.
func LoginHandler(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "E-mail ou senha inválidos"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "E-mail ou senha inválidos"})
		return
	}

	issueToken(c, user)
}

// LogoutHandler encerra a sessão derrubando o cookie e o cache do principal.
func LogoutHandler(c *gin.Context) {
	if v, ok := c.Get("user_id"); ok {
		invalidatePrincipalCache(v.(uint))
	}
	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Sessão encerrada"})
}

// issueToken assina o JWT, grava o cookie e responde com o perfil + seções
// acessíveis ao papel.
func issueToken(c *gin.Context, user models.User) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(config.JwtKey)
	if err != nil {
		slog.Error("Falha ao assinar token JWT", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign token"})
		return
	}

	// Recarrega com as turmas vinculadas para montar a resposta completa.
	config.DB.Preload("LinkedClasses").First(&user, user.ID)

	c.SetCookie("auth_token", tokenStr, int(tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"token":    tokenStr,
		"user":     buildUserResponse(user),
		"sections": access.SectionsFor(user.Role),
	})
}
