// internal/handlers/lesson_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/internal/access"
	"github.com/aboscolliaulas/Ensinoverso/internal/grading"
	"github.com/aboscolliaulas/Ensinoverso/internal/linkage"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LessonInput é o corpo aceito na criação/edição de planos de aula.
type LessonInput struct {
	Title          string                `json:"title" binding:"required"`
	Subject        string                `json:"subject" binding:"required"`
	Grade          string                `json:"grade" binding:"required"`
	SchoolName     string                `json:"schoolName"`
	TeacherName    string                `json:"teacherName"`
	Objectives     []string              `json:"objectives"`
	Content        string                `json:"content"`
	Activities     []string              `json:"activities"`
	Assessment     string                `json:"assessment"`
	ExtraMaterials []string              `json:"extraMaterials"`
	BNCCSkills     string                `json:"bnccSkills"`
	Questions      []models.QuizQuestion `json:"questions"`
	LinkedClassIDs []uint                `json:"linkedClassIds"`
}

// LessonResponse expõe a aula com o conjunto de turmas vinculadas por ID.
type LessonResponse struct {
	models.LessonPlan
	LinkedClassIDs []uint `json:"linkedClassIds"`
}

func buildLessonResponse(l models.LessonPlan) LessonResponse {
	return LessonResponse{LessonPlan: l, LinkedClassIDs: l.LinkedClassIDs()}
}

// validateQuestions garante 4 alternativas e gabarito na faixa 0–3 antes de
// qualquer persistência.
func validateQuestions(questions []models.QuizQuestion) error {
	for i, q := range questions {
		if len(q.Options) != 4 {
			return errors.New("questão " + strconv.Itoa(i+1) + ": são necessárias exatamente 4 alternativas")
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer > 3 {
			return errors.New("questão " + strconv.Itoa(i+1) + ": índice da alternativa correta fora da faixa 0–3")
		}
	}
	return nil
}

// ListLessonsHandler devolve o subconjunto de aulas visível para o principal.
// O filtro é recalculado a cada requisição — nada fica em cache entre trocas
// de sessão.
func ListLessonsHandler(c *gin.Context) {
	principal := currentPrincipal(c)

	var lessons []models.LessonPlan
	if err := config.DB.Preload("LinkedClasses").Order("id desc").Find(&lessons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar aulas"})
		return
	}

	visible := access.VisibleLessons(lessons, principal)
	response := make([]LessonResponse, 0, len(visible))
	for _, l := range visible {
		response = append(response, buildLessonResponse(l))
	}
	c.JSON(http.StatusOK, response)
}

// GetLessonHandler devolve uma aula, desde que visível para o principal.
func GetLessonHandler(c *gin.Context) {
	principal := currentPrincipal(c)

	var lesson models.LessonPlan
	if err := config.DB.Preload("LinkedClasses").First(&lesson, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aula não encontrada"})
		return
	}

	if len(access.VisibleLessons([]models.LessonPlan{lesson}, principal)) == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}
	c.JSON(http.StatusOK, buildLessonResponse(lesson))
}

// CreateLessonHandler cria a aula e materializa os vínculos nas turmas na
// mesma transação: a aula nunca fica salva com a projeção das turmas pela
// metade.
func CreateLessonHandler(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal.Role == models.RoleEstudante {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	var input LessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}
	if err := validateQuestions(input.Questions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bncc := input.BNCCSkills
	if bncc == "" {
		bncc = models.BNCCNone
	}

	lesson := models.LessonPlan{
		OwnerID:        principal.ID,
		Title:          input.Title,
		Subject:        input.Subject,
		Grade:          input.Grade,
		SchoolName:     input.SchoolName,
		TeacherName:    input.TeacherName,
		Objectives:     datatypes.NewJSONSlice(input.Objectives),
		Content:        input.Content,
		Activities:     datatypes.NewJSONSlice(input.Activities),
		Assessment:     input.Assessment,
		ExtraMaterials: datatypes.NewJSONSlice(input.ExtraMaterials),
		BNCCSkills:     bncc,
		Questions:      datatypes.NewJSONSlice(input.Questions),
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&lesson).Error; err != nil {
			return err
		}
		return applyLinkage(tx, &lesson, input.LinkedClassIDs)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível salvar a aula: " + err.Error()})
		return
	}

	GlobalEvents.Notify("lessons")
	GlobalEvents.Notify("classes")

	config.DB.Preload("LinkedClasses").First(&lesson, lesson.ID)
	c.JSON(http.StatusCreated, buildLessonResponse(lesson))
}

// UpdateLessonHandler edita a aula e reconcilia as projeções nas turmas.
// Professores só editam as próprias aulas; administradores editam qualquer uma.
func UpdateLessonHandler(c *gin.Context) {
	principal := currentPrincipal(c)

	var lesson models.LessonPlan
	if err := config.DB.Preload("LinkedClasses").First(&lesson, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aula não encontrada"})
		return
	}

	if principal.Role != models.RoleAdministrador && lesson.OwnerID != principal.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	var input LessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}
	if err := validateQuestions(input.Questions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bncc := input.BNCCSkills
	if bncc == "" {
		bncc = models.BNCCNone
	}

	lesson.Title = input.Title
	lesson.Subject = input.Subject
	lesson.Grade = input.Grade
	lesson.SchoolName = input.SchoolName
	lesson.TeacherName = input.TeacherName
	lesson.Objectives = datatypes.NewJSONSlice(input.Objectives)
	lesson.Content = input.Content
	lesson.Activities = datatypes.NewJSONSlice(input.Activities)
	lesson.Assessment = input.Assessment
	lesson.ExtraMaterials = datatypes.NewJSONSlice(input.ExtraMaterials)
	lesson.BNCCSkills = bncc
	lesson.Questions = datatypes.NewJSONSlice(input.Questions)

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&lesson).Error; err != nil {
			return err
		}
		return applyLinkage(tx, &lesson, input.LinkedClassIDs)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível atualizar a aula: " + err.Error()})
		return
	}

	GlobalEvents.Notify("lessons")
	GlobalEvents.Notify("classes")

	config.DB.Preload("LinkedClasses").First(&lesson, lesson.ID)
	c.JSON(http.StatusOK, buildLessonResponse(lesson))
}

// applyLinkage executa o plano de reconciliação do sincronizador dentro da
// transação corrente: projeções ClassLesson nas turmas + associação
// aula↔turma. O plano é idempotente, então uma repetição após falha apenas
// completa o que faltou.
func applyLinkage(tx *gorm.DB, lesson *models.LessonPlan, desiredClassIDs []uint) error {
	var classes []models.ClassRoom
	if err := tx.Preload("Lessons").Find(&classes).Error; err != nil {
		return err
	}

	ops := linkage.Plan(lesson, desiredClassIDs, classes, time.Now())
	for _, op := range ops {
		switch op.Kind {
		case linkage.Add:
			if err := tx.Create(&op.Summary).Error; err != nil {
				return err
			}
		case linkage.Refresh:
			if err := tx.Model(&models.ClassLesson{}).Where("id = ?", op.Summary.ID).
				Updates(map[string]interface{}{"title": op.Summary.Title, "category": op.Summary.Category}).Error; err != nil {
				return err
			}
		case linkage.Remove:
			if err := tx.Delete(&models.ClassLesson{}, op.Summary.ID).Error; err != nil {
				return err
			}
		}
	}
	slog.Info("Vínculos da aula reconciliados", "lesson_id", lesson.ID, "ops", len(ops))

	var linked []models.ClassRoom
	if len(desiredClassIDs) > 0 {
		if err := tx.Where("id IN ?", desiredClassIDs).Find(&linked).Error; err != nil {
			return err
		}
	}
	return tx.Model(lesson).Association("LinkedClasses").Replace(linked)
}

// DeleteLessonHandler exclui a aula e executa a cascata completa: remove a
// projeção de toda turma e apaga as submissões (e portanto as conclusões)
// dos estudantes.
func DeleteLessonHandler(c *gin.Context) {
	principal := currentPrincipal(c)

	lessonID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return
	}

	var lesson models.LessonPlan
	if err := config.DB.First(&lesson, lessonID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aula não encontrada"})
		return
	}

	if principal.Role != models.RoleAdministrador && lesson.OwnerID != principal.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	err = config.DB.Transaction(func(tx *gorm.DB) error {
		var classes []models.ClassRoom
		if err := tx.Preload("Lessons").Find(&classes).Error; err != nil {
			return err
		}
		for _, op := range linkage.PurgePlan(lesson.ID, classes) {
			if err := tx.Delete(&models.ClassLesson{}, op.Summary.ID).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("lesson_id = ?", lesson.ID).Delete(&models.QuizSubmission{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&lesson).Association("LinkedClasses").Clear(); err != nil {
			return err
		}
		return tx.Delete(&lesson).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível excluir a aula: " + err.Error()})
		return
	}

	GlobalEvents.Notify("lessons")
	GlobalEvents.Notify("classes")
	GlobalEvents.Notify("users")
	c.JSON(http.StatusOK, gin.H{"message": "Aula excluída com sucesso"})
}

// SubmitQuizInput mapeia índice da questão -> alternativa escolhida.
type SubmitQuizInput struct {
	Answers map[int]int `json:"answers" binding:"required"`
}

// SubmitQuizHandler registra a submissão do quiz por um estudante. A
// transição é única: uma segunda tentativa devolve o resultado já gravado
// sem recorrigir nem sobrescrever nada.
func SubmitQuizHandler(c *gin.Context) {
	principal := currentPrincipal(c)
	if principal.Role != models.RoleEstudante {
		c.JSON(http.StatusForbidden, gin.H{"error": "Apenas estudantes respondem o quiz"})
		return
	}

	var lesson models.LessonPlan
	if err := config.DB.Preload("LinkedClasses").First(&lesson, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aula não encontrada"})
		return
	}

	if len(access.VisibleLessons([]models.LessonPlan{lesson}, principal)) == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return
	}

	var input SubmitQuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos: " + err.Error()})
		return
	}

	// Já concluiu? Devolve o desfecho armazenado, nunca uma nova correção.
	var existing models.QuizSubmission
	err := config.DB.Where("user_id = ? AND lesson_id = ?", principal.ID, lesson.ID).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":  "Quiz já respondido",
			"result": grading.Result{Score: existing.Score, Total: len(lesson.Questions), Percentage: existing.Percentage},
		})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	result, err := grading.Grade(lesson.Questions, input.Answers)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission := models.QuizSubmission{
		UserID:     principal.ID,
		LessonID:   lesson.ID,
		Answers:    datatypes.NewJSONType(input.Answers),
		Score:      result.Score,
		Percentage: result.Percentage,
	}
	if err := config.DB.Create(&submission).Error; err != nil {
		// A restrição única (user_id, lesson_id) resolve a corrida de
		// submissões simultâneas: a segunda falha aqui e lê o registro vencedor.
		if config.DB.Where("user_id = ? AND lesson_id = ?", principal.ID, lesson.ID).First(&existing).Error == nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":  "Quiz já respondido",
				"result": grading.Result{Score: existing.Score, Total: len(lesson.Questions), Percentage: existing.Percentage},
			})
			return
		}
		slog.Error("Falha ao registrar submissão de quiz", "error", err, "user_id", principal.ID, "lesson_id", lesson.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Não foi possível registrar a submissão"})
		return
	}

	GlobalEvents.Notify("users")
	c.JSON(http.StatusOK, gin.H{
		"result": result,
		// Gabarito liberado: após concluir, o quiz vira somente leitura com
		// as respostas corretas reveladas.
		"questions": lesson.Questions,
	})
}
