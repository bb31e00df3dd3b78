package reports

import (
	"testing"

	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func student(id uint, name string) models.User {
	return models.User{Model: gorm.Model{ID: id}, Name: name, Role: models.RoleEstudante}
}

func submission(userID, lessonID uint, answers map[int]int) models.QuizSubmission {
	return models.QuizSubmission{
		UserID:   userID,
		LessonID: lessonID,
		Answers:  datatypes.NewJSONType(answers),
	}
}

func reportFixture() (models.LessonPlan, []models.ClassRoom) {
	lesson := models.LessonPlan{
		Model: gorm.Model{ID: 5},
		Title: "Verbos",
		Questions: datatypes.NewJSONSlice([]models.QuizQuestion{
			{Question: "q0", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0},
			{Question: "q1", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 1},
		}),
	}
	classes := []models.ClassRoom{
		{
			Model: gorm.Model{ID: 1},
			Name:  "6º Ano A",
			Students: []models.User{
				student(100, "Ana"),
				student(101, "Bruno"),
				student(102, "Carla"),
				// professores no roster ficam fora do relatório
				{Model: gorm.Model{ID: 900}, Name: "Prof. Dora", Role: models.RoleProfessor},
			},
		},
	}
	return lesson, classes
}

func TestCompute(t *testing.T) {
	lesson, classes := reportFixture()
	subs := []models.QuizSubmission{
		submission(100, 5, map[int]int{0: 0, 1: 1}), // Ana: 100%
		submission(101, 5, map[int]int{0: 0, 1: 0}), // Bruno: 50%
		// Carla não respondeu
	}

	reports := Compute(lesson, classes, subs)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, uint(1), r.ClassID)
	assert.Equal(t, "6º Ano A", r.ClassName)

	// Média só entre quem respondeu: (100 + 50) / 2
	assert.Equal(t, 75, r.AverageScore)

	require.Len(t, r.StudentScores, 3)
	assert.Equal(t, StudentScore{StudentID: 100, StudentName: "Ana", ScorePercentage: 100, Completed: true}, r.StudentScores[0])
	assert.Equal(t, StudentScore{StudentID: 101, StudentName: "Bruno", ScorePercentage: 50, Completed: true}, r.StudentScores[1])
	assert.Equal(t, StudentScore{StudentID: 102, StudentName: "Carla"}, r.StudentScores[2])

	require.Len(t, r.QuestionStats, 2)
	assert.Equal(t, QuestionStat{QuestionIndex: 0, CorrectRate: 100}, r.QuestionStats[0])
	assert.Equal(t, QuestionStat{QuestionIndex: 1, CorrectRate: 50}, r.QuestionStats[1])
}

func TestComputeSortsByScoreThenName(t *testing.T) {
	lesson, classes := reportFixture()
	subs := []models.QuizSubmission{
		submission(100, 5, map[int]int{0: 0, 1: 0}), // Ana: 50%
		submission(101, 5, map[int]int{0: 0, 1: 1}), // Bruno: 100%
		submission(102, 5, map[int]int{0: 1, 1: 0}), // Carla: 0%
	}

	reports := Compute(lesson, classes, subs)
	require.Len(t, reports, 1)

	var names []string
	for _, s := range reports[0].StudentScores {
		names = append(names, s.StudentName)
	}
	assert.Equal(t, []string{"Bruno", "Ana", "Carla"}, names)
}

func TestComputeWithoutSubmissions(t *testing.T) {
	lesson, classes := reportFixture()

	reports := Compute(lesson, classes, nil)
	require.Len(t, reports, 1)

	r := reports[0]
	assert.Equal(t, 0, r.AverageScore)
	for _, s := range r.StudentScores {
		assert.False(t, s.Completed)
		assert.Zero(t, s.ScorePercentage)
	}
	for _, q := range r.QuestionStats {
		assert.Zero(t, q.CorrectRate)
	}
}

func TestComputeRecalculatesFromRawAnswers(t *testing.T) {
	lesson, classes := reportFixture()

	// Percentual gravado divergente do gabarito: o relatório recalcula e usa
	// o valor derivado das respostas, não o persistido.
	sub := submission(100, 5, map[int]int{0: 0, 1: 1})
	sub.Percentage = 10
	sub.Score = 0

	reports := Compute(lesson, classes, []models.QuizSubmission{sub})
	require.Len(t, reports, 1)
	assert.Equal(t, 100, reports[0].StudentScores[0].ScorePercentage)
}

func TestComputeMultipleClasses(t *testing.T) {
	lesson, classes := reportFixture()
	classes = append(classes, models.ClassRoom{
		Model:    gorm.Model{ID: 2},
		Name:     "6º Ano B",
		Students: []models.User{student(200, "Davi")},
	})

	subs := []models.QuizSubmission{
		submission(100, 5, map[int]int{0: 0, 1: 1}),
		submission(200, 5, map[int]int{0: 1, 1: 1}),
	}

	reports := Compute(lesson, classes, subs)
	require.Len(t, reports, 2)
	assert.Equal(t, uint(1), reports[0].ClassID)
	assert.Equal(t, uint(2), reports[1].ClassID)
	assert.Equal(t, 50, reports[1].AverageScore)
	assert.Equal(t, StudentScore{StudentID: 200, StudentName: "Davi", ScorePercentage: 50, Completed: true}, reports[1].StudentScores[0])
}
