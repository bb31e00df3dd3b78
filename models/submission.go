// models/submission.go

package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuizSubmission é o registro durável de que um estudante respondeu o quiz de
// uma aula. A restrição única (user_id, lesson_id) garante no máximo uma
// conclusão por par estudante/aula — a submissão é uma transição única e
// irreversível. As respostas cruas são persistidas para que os relatórios de
// desempenho sejam recalculáveis a qualquer momento.
type QuizSubmission struct {
	gorm.Model
	UserID   uint `json:"userId" gorm:"uniqueIndex:idx_user_lesson;not null"`
	LessonID uint `json:"lessonId" gorm:"uniqueIndex:idx_user_lesson;not null"`

	// Índice da questão -> índice da alternativa escolhida.
	Answers datatypes.JSONType[map[int]int] `json:"answers"`

	Score      int `json:"score"`      // quantidade de acertos
	Percentage int `json:"percentage"` // arredondado, 0–100
}
