// models/classroom.go

package models

import (
	"time"

	"gorm.io/gorm"
)

// ClassRoom representa uma turma.
type ClassRoom struct {
	gorm.Model
	Name     string `json:"name" gorm:"not null"`
	Grade    string `json:"grade"`
	Color    string `json:"color" gorm:"type:varchar(30)"`
	Icon     string `json:"icon" gorm:"type:varchar(50)"`
	ImageURL string `json:"imageUrl,omitempty"`

	// Lessons é a lista desnormalizada de resumos de aula embutida na turma.
	// Ela é mutada exclusivamente pelo sincronizador de vínculos
	// (internal/linkage): um resumo existe aqui se e somente se o ID da turma
	// está no conjunto de turmas vinculadas da aula.
	Lessons []ClassLesson `json:"lessons" gorm:"foreignKey:ClassID"`

	// Roster da turma — estudantes vinculados via user_classes.
	Students []User `json:"-" gorm:"many2many:user_classes;"`
}

// ClassLesson é a projeção resumida de uma LessonPlan dentro de uma turma.
type ClassLesson struct {
	ID       uint      `json:"-" gorm:"primaryKey"`
	ClassID  uint      `json:"-" gorm:"uniqueIndex:idx_class_lesson;not null"`
	LessonID uint      `json:"id" gorm:"uniqueIndex:idx_class_lesson;not null"`
	Title    string    `json:"title"`
	Category string    `json:"category"`
	LinkedAt time.Time `json:"date"` // data do vínculo original; não é atualizada em edições
}
