// internal/handlers/user_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UpdateUserInput é o corpo aceito na administração de usuários: papel,
// aprovação e turmas vinculadas (a tela de Configurações do administrador).
type UpdateUserInput struct {
	Name           string `json:"name" binding:"required"`
	Role           string `json:"role" binding:"required"`
	Approved       *bool  `json:"approved" binding:"required"`
	LinkedClassIDs []uint `json:"linkedClassIds"`
	Password       string `json:"password"` // opcional, para redefinição
}

// ListUsersHandler devolve os usuários com turmas e aulas concluídas.
// Suporta paginação e `?all=true` para a lista completa.
func ListUsersHandler(c *gin.Context) {
	var users []models.User
	query := config.DB.Preload("LinkedClasses").Order("id asc")

	if c.Query("all") == "true" {
		if err := query.Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
			return
		}
	} else {
		if err := query.Scopes(Paginate(c)).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch users"})
			return
		}
	}

	responseData := make([]models.UserResponse, 0, len(users))
	for _, user := range users {
		responseData = append(responseData, buildUserResponse(user))
	}

	if c.Query("all") == "true" {
		c.JSON(http.StatusOK, gin.H{"data": responseData})
		return
	}

	var totalRows int64
	config.DB.Model(&models.User{}).Count(&totalRows)
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, responseData, totalRows))
}

// GetUserHandler devolve um usuário pelo ID.
func GetUserHandler(c *gin.Context) {
	id := c.Param("id")
	var user models.User
	if err := config.DB.Preload("LinkedClasses").First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, buildUserResponse(user))
}

// UpdateUserHandler aplica papel, aprovação e vínculos de turma em uma
// transação e invalida o cache do principal afetado.
func UpdateUserHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Papel desconhecido: " + input.Role})
		return
	}

	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Name = input.Name
	user.Role = input.Role
	user.Approved = *input.Approved

	if input.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("Falha ao gerar hash de senha", "error", err, "user_id", user.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		user.Password = string(hashedPassword)
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		var classes []models.ClassRoom
		if len(input.LinkedClassIDs) > 0 {
			if err := tx.Where("id IN ?", input.LinkedClassIDs).Find(&classes).Error; err != nil {
				return err
			}
		}
		// Substitui o conjunto antigo de turmas pelo novo (eventualmente vazio).
		return tx.Model(&user).Association("LinkedClasses").Replace(classes)
	})
	if err != nil {
		slog.Error("Falha ao atualizar usuário", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user: " + err.Error()})
		return
	}

	invalidatePrincipalCache(user.ID)
	GlobalEvents.Notify("users")

	config.DB.Preload("LinkedClasses").First(&user, user.ID)
	c.JSON(http.StatusOK, buildUserResponse(user))
}

// DeleteUserHandler remove um usuário (soft delete) e suas associações.
func DeleteUserHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	if v, ok := c.Get("user_id"); ok && v.(uint) == uint(id) {
		c.JSON(http.StatusConflict, gin.H{"error": "Não é possível excluir a própria conta"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Association("LinkedClasses").Clear(); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	invalidatePrincipalCache(uint(id))
	GlobalEvents.Notify("users")
	c.JSON(http.StatusOK, gin.H{"message": "Usuário excluído com sucesso"})
}
