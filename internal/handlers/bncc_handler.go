// internal/handlers/bncc_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BNCCSkillInput é o corpo de criação/edição de uma habilidade do catálogo.
type BNCCSkillInput struct {
	Code        string `json:"code" binding:"required"`
	Description string `json:"description" binding:"required"`
	Grade       string `json:"grade"`
	Subject     string `json:"subject"`
}

// ListBNCCSkillsHandler lista o catálogo, com busca opcional por código ou
// descrição (?q=) e filtros por série e disciplina.
func ListBNCCSkillsHandler(c *gin.Context) {
	query := config.DB.Model(&models.BNCCSkill{}).Order("code asc")

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		query = query.Where("code ILIKE ? OR description ILIKE ?", like, like)
	}
	if grade := c.Query("grade"); grade != "" {
		query = query.Where("grade = ?", grade)
	}
	if subject := c.Query("subject"); subject != "" {
		query = query.Where("subject = ?", subject)
	}

	if c.Query("all") == "true" {
		var skills []models.BNCCSkill
		if err := query.Find(&skills).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar habilidades"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": skills})
		return
	}

	var total int64
	query.Count(&total)

	var skills []models.BNCCSkill
	if err := query.Scopes(Paginate(c)).Find(&skills).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar habilidades"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, skills, total))
}

// CreateBNCCSkillHandler cadastra uma habilidade no catálogo.
func CreateBNCCSkillHandler(c *gin.Context) {
	var input BNCCSkillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skill := models.BNCCSkill{
		Code:        strings.ToUpper(strings.TrimSpace(input.Code)),
		Description: input.Description,
		Grade:       input.Grade,
		Subject:     input.Subject,
	}
	if err := config.DB.Create(&skill).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Já existe uma habilidade com este código"})
		return
	}

	GlobalEvents.Notify("bncc_skills")
	c.JSON(http.StatusCreated, skill)
}

// ImportBNCCSkillsInput é o corpo da importação em lote do catálogo.
type ImportBNCCSkillsInput struct {
	Skills []BNCCSkillInput `json:"skills" binding:"required,dive"`
}

// ImportBNCCSkillsHandler importa várias habilidades de uma vez. Códigos já
// existentes são ignorados em vez de abortar o lote.
func ImportBNCCSkillsHandler(c *gin.Context) {
	var input ImportBNCCSkillsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imported := 0
	skipped := 0
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range input.Skills {
			skill := models.BNCCSkill{
				Code:        strings.ToUpper(strings.TrimSpace(item.Code)),
				Description: item.Description,
				Grade:       item.Grade,
				Subject:     item.Subject,
			}
			var existing models.BNCCSkill
			if err := tx.Where("code = ?", skill.Code).First(&existing).Error; err == nil {
				skipped++
				continue
			}
			if err := tx.Create(&skill).Error; err != nil {
				return err
			}
			imported++
		}
		return nil
	})
	if err != nil {
		slog.Error("Falha na importação do catálogo BNCC", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao importar habilidades"})
		return
	}

	GlobalEvents.Notify("bncc_skills")
	c.JSON(http.StatusOK, gin.H{"imported": imported, "skipped": skipped})
}

// UpdateBNCCSkillHandler edita uma habilidade existente.
func UpdateBNCCSkillHandler(c *gin.Context) {
	var skill models.BNCCSkill
	if err := config.DB.First(&skill, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Habilidade não encontrada"})
		return
	}

	var input BNCCSkillInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	skill.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	skill.Description = input.Description
	skill.Grade = input.Grade
	skill.Subject = input.Subject

	if err := config.DB.Save(&skill).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Já existe uma habilidade com este código"})
		return
	}

	GlobalEvents.Notify("bncc_skills")
	c.JSON(http.StatusOK, skill)
}

// DeleteBNCCSkillHandler remove uma habilidade do catálogo. Planos de aula já
// gravados guardam o texto das habilidades, então nada mais precisa mudar.
func DeleteBNCCSkillHandler(c *gin.Context) {
	var skill models.BNCCSkill
	if err := config.DB.First(&skill, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Habilidade não encontrada"})
		return
	}

	if err := config.DB.Delete(&skill).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao excluir habilidade"})
		return
	}

	GlobalEvents.Notify("bncc_skills")
	c.JSON(http.StatusOK, gin.H{"message": "Habilidade excluída"})
}
