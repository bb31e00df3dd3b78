// internal/reports/reports.go

// Package reports agrega o desempenho de uma aula por turma a partir das
// submissões persistidas. O relatório é derivado, nunca armazenado: pode ser
// recalculado a qualquer momento só com aula + turmas + submissões.
package reports

import (
	"sort"

	"github.com/aboscolliaulas/Ensinoverso/internal/grading"
	"github.com/aboscolliaulas/Ensinoverso/models"
)

// StudentScore é o desempenho de um estudante no quiz da aula.
type StudentScore struct {
	StudentID       uint   `json:"studentId"`
	StudentName     string `json:"studentName"`
	ScorePercentage int    `json:"scorePercentage"`
	Completed       bool   `json:"completed"`
}

// QuestionStat é a taxa de acerto de uma questão entre quem respondeu.
type QuestionStat struct {
	QuestionIndex int `json:"questionIndex"`
	CorrectRate   int `json:"correctRate"`
}

// ClassReport consolida o desempenho de uma turma vinculada à aula.
type ClassReport struct {
	ClassID       uint           `json:"classId"`
	ClassName     string         `json:"className"`
	AverageScore  int            `json:"averageScore"`
	StudentScores []StudentScore `json:"studentScores"`
	QuestionStats []QuestionStat `json:"questionStats"`
}

// Compute monta um ClassReport para cada turma vinculada à aula. As turmas
// precisam estar com o roster (Students) pré-carregado; submissions são todas
// as submissões registradas para a aula.
//
// Estudantes sem submissão aparecem na lista sem nota e ficam fora tanto da
// média quanto das taxas por questão. A ordenação por nota decrescente é
// preocupação de exibição, aplicada aqui para estabilizar a saída.
func Compute(lesson models.LessonPlan, linkedClasses []models.ClassRoom, submissions []models.QuizSubmission) []ClassReport {
	byStudent := make(map[uint]models.QuizSubmission, len(submissions))
	for _, s := range submissions {
		byStudent[s.UserID] = s
	}

	questions := []models.QuizQuestion(lesson.Questions)
	reports := make([]ClassReport, 0, len(linkedClasses))

	for _, cls := range linkedClasses {
		var scores []StudentScore
		var answered []map[int]int

		for _, student := range cls.Students {
			if student.Role != models.RoleEstudante {
				continue
			}
			sub, ok := byStudent[student.ID]
			if !ok {
				scores = append(scores, StudentScore{
					StudentID:   student.ID,
					StudentName: student.Name,
				})
				continue
			}

			answers := sub.Answers.Data()
			scores = append(scores, StudentScore{
				StudentID:       student.ID,
				StudentName:     student.Name,
				ScorePercentage: scorePercentage(questions, answers),
				Completed:       true,
			})
			answered = append(answered, answers)
		}

		sort.SliceStable(scores, func(i, j int) bool {
			if scores[i].Completed != scores[j].Completed {
				return scores[i].Completed
			}
			if scores[i].ScorePercentage != scores[j].ScorePercentage {
				return scores[i].ScorePercentage > scores[j].ScorePercentage
			}
			return scores[i].StudentName < scores[j].StudentName
		})

		reports = append(reports, ClassReport{
			ClassID:       cls.ID,
			ClassName:     cls.Name,
			AverageScore:  averageScore(scores),
			StudentScores: scores,
			QuestionStats: questionStats(questions, answered),
		})
	}
	return reports
}

// scorePercentage recalcula o percentual direto das respostas persistidas,
// em vez de confiar no valor gravado — relatório e submissão nunca divergem.
func scorePercentage(questions []models.QuizQuestion, answers map[int]int) int {
	correct := 0
	for i, q := range questions {
		if opt, ok := answers[i]; ok && opt == q.CorrectAnswer {
			correct++
		}
	}
	return grading.Percentage(correct, len(questions))
}

func averageScore(scores []StudentScore) int {
	total, n := 0, 0
	for _, s := range scores {
		if s.Completed {
			total += s.ScorePercentage
			n++
		}
	}
	return grading.Percentage(total, n*100)
}

func questionStats(questions []models.QuizQuestion, answered []map[int]int) []QuestionStat {
	stats := make([]QuestionStat, len(questions))
	for i, q := range questions {
		correct := 0
		for _, answers := range answered {
			if opt, ok := answers[i]; ok && opt == q.CorrectAnswer {
				correct++
			}
		}
		stats[i] = QuestionStat{
			QuestionIndex: i,
			CorrectRate:   grading.Percentage(correct, len(answered)),
		}
	}
	return stats
}
