// internal/handlers/class_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ClassInput é o corpo aceito na criação/atualização de turmas.
type ClassInput struct {
	Name     string `json:"name" binding:"required"`
	Grade    string `json:"grade" binding:"required"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
	ImageURL string `json:"imageUrl"`
}

// ClassResponse é a projeção de turma com contagem de estudantes e resumos
// de aula embutidos.
type ClassResponse struct {
	ID            uint                  `json:"id"`
	Name          string                `json:"name"`
	Grade         string                `json:"grade"`
	Color         string                `json:"color"`
	Icon          string                `json:"icon"`
	ImageURL      string                `json:"imageUrl,omitempty"`
	StudentsCount int                   `json:"studentsCount"`
	Students      []models.UserResponse `json:"students"`
	Lessons       []models.ClassLesson  `json:"lessons"`
}

func buildClassResponse(cls models.ClassRoom) ClassResponse {
	students := make([]models.UserResponse, 0)
	for _, u := range cls.Students {
		if u.Role != models.RoleEstudante {
			continue
		}
		students = append(students, models.UserResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Role:  u.Role,
		})
	}
	lessons := cls.Lessons
	if lessons == nil {
		lessons = make([]models.ClassLesson, 0)
	}
	return ClassResponse{
		ID:            cls.ID,
		Name:          cls.Name,
		Grade:         cls.Grade,
		Color:         cls.Color,
		Icon:          cls.Icon,
		ImageURL:      cls.ImageURL,
		StudentsCount: len(students),
		Students:      students,
		Lessons:       lessons,
	}
}

// ListClassesHandler devolve todas as turmas com roster e resumos de aula.
func ListClassesHandler(c *gin.Context) {
	var classes []models.ClassRoom
	if err := config.DB.Preload("Lessons").Preload("Students").Order("grade, name").Find(&classes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar turmas: " + err.Error()})
		return
	}

	response := make([]ClassResponse, 0, len(classes))
	for _, cls := range classes {
		response = append(response, buildClassResponse(cls))
	}
	c.JSON(http.StatusOK, response)
}

// GetClassHandler devolve uma turma pelo ID.
func GetClassHandler(c *gin.Context) {
	id := c.Param("id")
	var cls models.ClassRoom
	if err := config.DB.Preload("Lessons").Preload("Students").First(&cls, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Turma não encontrada"})
		return
	}
	c.JSON(http.StatusOK, buildClassResponse(cls))
}

// CreateClassHandler cria uma nova turma.
func CreateClassHandler(c *gin.Context) {
	var input ClassInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	cls := models.ClassRoom{
		Name:     input.Name,
		Grade:    input.Grade,
		Color:    input.Color,
		Icon:     input.Icon,
		ImageURL: input.ImageURL,
	}
	if err := config.DB.Create(&cls).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível criar a turma: " + err.Error()})
		return
	}

	GlobalEvents.Notify("classes")
	c.JSON(http.StatusCreated, buildClassResponse(cls))
}

// UpdateClassHandler atualiza os dados de apresentação da turma. A lista de
// resumos de aula não é tocada aqui — ela pertence ao sincronizador.
func UpdateClassHandler(c *gin.Context) {
	id := c.Param("id")
	var input ClassInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	var cls models.ClassRoom
	if err := config.DB.First(&cls, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Turma não encontrada"})
		return
	}

	cls.Name = input.Name
	cls.Grade = input.Grade
	cls.Color = input.Color
	cls.Icon = input.Icon
	cls.ImageURL = input.ImageURL

	if err := config.DB.Save(&cls).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível atualizar a turma: " + err.Error()})
		return
	}

	GlobalEvents.Notify("classes")
	config.DB.Preload("Lessons").Preload("Students").First(&cls, cls.ID)
	c.JSON(http.StatusOK, buildClassResponse(cls))
}

// DeleteClassHandler exclui a turma e limpa tudo que apontava para ela:
// resumos de aula embutidos, vínculos aula↔turma e vínculos de usuários.
func DeleteClassHandler(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var cls models.ClassRoom
		if err := tx.First(&cls, id).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.ClassLesson{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM lesson_classes WHERE class_room_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM user_classes WHERE class_room_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&cls).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível excluir a turma: " + err.Error()})
		return
	}

	GlobalEvents.Notify("classes")
	GlobalEvents.Notify("users")
	c.JSON(http.StatusOK, gin.H{"message": "Turma excluída com sucesso"})
}
