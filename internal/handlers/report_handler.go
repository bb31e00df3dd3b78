// internal/handlers/report_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/aboscolliaulas/Ensinoverso/config"
	"github.com/aboscolliaulas/Ensinoverso/internal/reports"
	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// loadReport carrega aula + turmas vinculadas (com roster) + submissões e
// calcula o relatório. Nada é cacheado: o relatório é sempre rederivado do
// estado durável.
func loadReport(c *gin.Context) (models.LessonPlan, []reports.ClassReport, bool) {
	principal := currentPrincipal(c)

	var lesson models.LessonPlan
	if err := config.DB.Preload("LinkedClasses.Students").First(&lesson, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Aula não encontrada"})
		return lesson, nil, false
	}

	// Só o dono da aula ou o administrador consultam desempenho.
	if principal.Role != models.RoleAdministrador && lesson.OwnerID != principal.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Permission denied"})
		return lesson, nil, false
	}

	var submissions []models.QuizSubmission
	if err := config.DB.Where("lesson_id = ?", lesson.ID).Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar submissões"})
		return lesson, nil, false
	}

	return lesson, reports.Compute(lesson, lesson.LinkedClasses, submissions), true
}

// GetLessonReportHandler devolve o relatório de desempenho da aula por turma.
func GetLessonReportHandler(c *gin.Context) {
	_, report, ok := loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportLessonReportHandler exporta o relatório em XLSX, uma planilha por
// turma: resumo, notas por estudante e taxa de acerto por questão.
func ExportLessonReportHandler(c *gin.Context) {
	lesson, report, ok := loadReport(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	for i, classReport := range report {
		sheetName := fmt.Sprintf("%d - %s", i+1, truncateSheetName(classReport.ClassName))
		index, err := f.NewSheet(sheetName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build Excel file"})
			return
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}

		f.SetCellValue(sheetName, "A1", "Relatório de Desempenho — "+lesson.Title)
		f.SetCellValue(sheetName, "A2", "Turma")
		f.SetCellValue(sheetName, "B2", classReport.ClassName)
		f.SetCellValue(sheetName, "A3", "Aproveitamento médio")
		f.SetCellValue(sheetName, "B3", fmt.Sprintf("%d%%", classReport.AverageScore))

		f.SetCellValue(sheetName, "A5", "Estudante")
		f.SetCellValue(sheetName, "B5", "Aproveitamento (%)")
		f.SetCellValue(sheetName, "C5", "Situação")
		row := 6
		for _, s := range classReport.StudentScores {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), s.StudentName)
			if s.Completed {
				f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), s.ScorePercentage)
				if s.ScorePercentage >= 60 {
					f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), "Satisfatório")
				} else {
					f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), "Abaixo da média")
				}
			} else {
				f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), "Não respondeu")
			}
			row++
		}

		row++
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Questão")
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), "Índice de acerto (%)")
		row++
		for _, q := range classReport.QuestionStats {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("Questão %d", q.QuestionIndex+1))
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), q.CorrectRate)
			row++
		}
	}

	if len(report) > 0 {
		f.DeleteSheet(defaultSheet)
	}

	fileName := fmt.Sprintf("desempenho_aula_%d_%s.xlsx", lesson.ID, time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write Excel file"})
	}
}

// truncateSheetName respeita o limite de 31 caracteres do formato XLSX.
func truncateSheetName(name string) string {
	const max = 27 // sobra espaço para o prefixo numérico
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max])
}
