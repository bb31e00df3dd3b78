package grading

import (
	"testing"

	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quizFixture() []models.QuizQuestion {
	return []models.QuizQuestion{
		{Question: "1+1?", Options: []string{"1", "2", "3", "4"}, CorrectAnswer: 1},
		{Question: "2+2?", Options: []string{"2", "3", "4", "5"}, CorrectAnswer: 2},
		{Question: "3+3?", Options: []string{"4", "5", "6", "7"}, CorrectAnswer: 2},
	}
}

func TestGrade(t *testing.T) {
	questions := quizFixture()

	tests := []struct {
		name    string
		answers map[int]int
		want    Result
	}{
		{
			name:    "todas corretas",
			answers: map[int]int{0: 1, 1: 2, 2: 2},
			want:    Result{Score: 3, Total: 3, Percentage: 100},
		},
		{
			name:    "duas de três",
			answers: map[int]int{0: 1, 1: 2, 2: 0},
			want:    Result{Score: 2, Total: 3, Percentage: 67},
		},
		{
			name:    "todas erradas",
			answers: map[int]int{0: 0, 1: 0, 2: 0},
			want:    Result{Score: 0, Total: 3, Percentage: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Grade(questions, tt.answers)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGradeIsDeterministic(t *testing.T) {
	questions := quizFixture()
	answers := map[int]int{0: 1, 1: 0, 2: 2}

	first, err := Grade(questions, answers)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Grade(questions, answers)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestGradeRejectsInvalidSubmissions(t *testing.T) {
	questions := quizFixture()

	t.Run("sem quiz", func(t *testing.T) {
		_, err := Grade(nil, map[int]int{0: 1})
		assert.ErrorIs(t, err, ErrNoQuiz)
	})

	t.Run("resposta faltando", func(t *testing.T) {
		_, err := Grade(questions, map[int]int{0: 1, 2: 2})
		assert.ErrorIs(t, err, ErrIncomplete)
	})

	t.Run("sem resposta nenhuma", func(t *testing.T) {
		_, err := Grade(questions, nil)
		assert.ErrorIs(t, err, ErrIncomplete)
	})

	t.Run("alternativa fora da faixa", func(t *testing.T) {
		_, err := Grade(questions, map[int]int{0: 1, 1: 4, 2: 2})
		assert.Error(t, err)
		_, err = Grade(questions, map[int]int{0: -1, 1: 2, 2: 2})
		assert.Error(t, err)
	})
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		score, total, want int
	}{
		{0, 0, 0},
		{0, 5, 0},
		{5, 5, 100},
		{1, 3, 33},
		{2, 3, 67},
		{1, 6, 17},
		{1, 8, 13}, // 12.5 arredonda para cima
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.score, tt.total), "Percentage(%d, %d)", tt.score, tt.total)
	}
}
