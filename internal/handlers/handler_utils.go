// internal/handlers/handler_utils.go
package handlers

import (
	"log/slog"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/internal/access"
	"github.com/aboscolliaulas/Ensinoverso/internal/middleware"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
)

// currentPrincipal remonta o principal a partir do contexto preenchido pelo
// AuthMiddleware.
func currentPrincipal(c *gin.Context) access.Principal {
	p := access.Principal{}
	if v, ok := c.Get("user_id"); ok {
		p.ID = v.(uint)
	}
	if v, ok := c.Get("role"); ok {
		p.Role = v.(string)
	}
	if v, ok := c.Get("approved"); ok {
		p.Approved = v.(bool)
	}
	if v, ok := c.Get("linked_class_ids"); ok && v != nil {
		p.LinkedClassIDs, _ = v.([]uint)
	}
	return p
}

// completedLessonIDs deriva o conjunto de aulas concluídas de um usuário a
// partir das submissões persistidas.
func completedLessonIDs(userID uint) []uint {
	ids := make([]uint, 0)
	if err := config.DB.Model(&models.QuizSubmission{}).
		Where("user_id = ?", userID).
		Order("lesson_id asc").
		Pluck("lesson_id", &ids).Error; err != nil {
		// Falha de leitura degrada para lista vazia.
		slog.Warn("Falha ao carregar aulas concluídas", "error", err, "user_id", userID)
	}
	return ids
}

// buildUserResponse monta a projeção de API de um usuário. LinkedClasses
// precisa estar pré-carregado.
func buildUserResponse(user models.User) models.UserResponse {
	classIDs := make([]uint, 0, len(user.LinkedClasses))
	for _, cls := range user.LinkedClasses {
		classIDs = append(classIDs, cls.ID)
	}
	return models.UserResponse{
		ID:                 user.ID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		Approved:           user.Approved,
		LinkedClassIDs:     classIDs,
		CompletedLessonIDs: completedLessonIDs(user.ID),
	}
}

// invalidatePrincipalCache derruba o principal cacheado de um usuário para
// que papel/aprovação/turmas recém-alterados valham imediatamente.
func invalidatePrincipalCache(userID uint) {
	if config.RDB == nil {
		return
	}
	cacheKey := middleware.PrincipalCacheKey(userID)
	if err := config.RDB.Del(config.Ctx, cacheKey).Err(); err != nil {
		slog.Error("Falha ao invalidar cache do principal", "error", err, "user_id", userID)
	}
}
