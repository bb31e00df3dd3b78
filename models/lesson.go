// models/lesson.go

package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BNCCNone é o valor sentinela gravado em BNCCSkills quando o plano de aula
// não possui habilidade vinculada.
const BNCCNone = "Nenhuma habilidade vinculada"

// QuizQuestion é uma questão de múltipla escolha com exatamente 4 alternativas.
// CorrectAnswer é o índice (0 a 3) da alternativa correta.
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// LessonPlan representa um plano de aula, incluindo o quiz gerado.
type LessonPlan struct {
	gorm.Model
	OwnerID     uint   `json:"ownerId" gorm:"index;not null"`
	Title       string `json:"title" gorm:"not null"`
	Subject     string `json:"subject"`
	Grade       string `json:"grade"`
	SchoolName  string `json:"schoolName"`
	TeacherName string `json:"teacherName"`

	Objectives     datatypes.JSONSlice[string] `json:"objectives"`
	Content        string                      `json:"content" gorm:"type:text"`
	Activities     datatypes.JSONSlice[string] `json:"activities"`
	Assessment     string                      `json:"assessment" gorm:"type:text"`
	ExtraMaterials datatypes.JSONSlice[string] `json:"extraMaterials"`

	// Códigos de habilidade BNCC separados por vírgula, ou o sentinela BNCCNone.
	BNCCSkills string `json:"bnccSkills"`

	Questions datatypes.JSONSlice[QuizQuestion] `json:"questions"`

	// Turmas vinculadas — a fonte de verdade do vínculo aula↔turma.
	// As projeções ClassLesson nas turmas são derivadas deste conjunto.
	LinkedClasses []ClassRoom `json:"-" gorm:"many2many:lesson_classes;"`
}

// LinkedClassIDs extrai apenas os IDs das turmas vinculadas pré-carregadas.
func (l *LessonPlan) LinkedClassIDs() []uint {
	ids := make([]uint, 0, len(l.LinkedClasses))
	for _, c := range l.LinkedClasses {
		ids = append(ids, c.ID)
	}
	return ids
}
