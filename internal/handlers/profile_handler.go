// internal/handlers/profile_handler.go
package handlers

import (
	"net/http"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/internal/access"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// GetProfileHandler devolve o perfil do próprio usuário autenticado, junto
// com as seções que o papel dele pode abrir. É a única rota de leitura
// disponível para contas ainda não aprovadas.
func GetProfileHandler(c *gin.Context) {
	userID := c.GetUint("user_id")

	var user models.User
	if err := config.DB.Preload("LinkedClasses").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Perfil não encontrado"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":     buildUserResponse(user),
		"sections": access.SectionsFor(user.Role),
	})
}

// UpdateProfileInput limita o que o próprio usuário pode alterar: nome e
// senha. Papel, aprovação e turmas são exclusivos do administrador.
type UpdateProfileInput struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password"`
}

// UpdateProfileHandler atualiza o perfil do próprio usuário.
func UpdateProfileHandler(c *gin.Context) {
	userID := c.GetUint("user_id")

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Perfil não encontrado"})
		return
	}

	user.Name = input.Name
	if input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.Password = string(hashedPassword)
	}

	if err := config.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	invalidatePrincipalCache(user.ID)
	config.DB.Preload("LinkedClasses").First(&user, user.ID)
	c.JSON(http.StatusOK, buildUserResponse(user))
}
