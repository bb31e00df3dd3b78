// internal/linkage/linkage.go

// Package linkage calcula a reconciliação entre o conjunto de turmas
// vinculadas de uma aula e as projeções ClassLesson embutidas em cada turma.
// O pacote só planeja: ele devolve o conjunto mínimo de operações por turma
// (inserir, atualizar, remover) e quem aplica é o handler, dentro de uma
// transação junto com o salvamento da própria aula. Planejar duas vezes com o
// mesmo estado desejado produz zero operações na segunda vez.
package linkage

import (
	"time"

	"github.com/aboscolliaulas/Ensinoverso/models"
)

// Kind identifica o tipo de operação sobre a lista embutida de uma turma.
type Kind int

const (
	Add Kind = iota
	Refresh
	Remove
)

// Op é uma mutação planejada na lista de resumos de uma turma.
type Op struct {
	ClassID uint
	Kind    Kind
	// Summary é o resumo a inserir (Add) ou os novos valores de
	// título/categoria (Refresh). Para Remove só ClassID/LessonID importam.
	Summary models.ClassLesson
}

// Plan percorre todas as turmas e produz as operações necessárias para que a
// invariante valha: um resumo da aula existe na turma C se e somente se C
// está em desiredClassIDs. Turmas já consistentes não geram escrita.
//
// Em um Refresh apenas título e categoria são atualizados — a data do resumo
// continua refletindo o momento do vínculo original.
func Plan(lesson *models.LessonPlan, desiredClassIDs []uint, classes []models.ClassRoom, now time.Time) []Op {
	desired := make(map[uint]struct{}, len(desiredClassIDs))
	for _, id := range desiredClassIDs {
		desired[id] = struct{}{}
	}

	var ops []Op
	for _, cls := range classes {
		_, isLinked := desired[cls.ID]
		existing := findSummary(cls.Lessons, lesson.ID)

		switch {
		case isLinked && existing == nil:
			ops = append(ops, Op{
				ClassID: cls.ID,
				Kind:    Add,
				Summary: models.ClassLesson{
					ClassID:  cls.ID,
					LessonID: lesson.ID,
					Title:    lesson.Title,
					Category: lesson.Subject,
					LinkedAt: now,
				},
			})
		case isLinked && existing != nil:
			// Só reescreve se a projeção divergiu de fato.
			if existing.Title != lesson.Title || existing.Category != lesson.Subject {
				ops = append(ops, Op{
					ClassID: cls.ID,
					Kind:    Refresh,
					Summary: models.ClassLesson{
						ID:       existing.ID,
						ClassID:  cls.ID,
						LessonID: lesson.ID,
						Title:    lesson.Title,
						Category: lesson.Subject,
						LinkedAt: existing.LinkedAt,
					},
				})
			}
		case !isLinked && existing != nil:
			ops = append(ops, Op{
				ClassID: cls.ID,
				Kind:    Remove,
				Summary: models.ClassLesson{ID: existing.ID, ClassID: cls.ID, LessonID: lesson.ID},
			})
		}
		// !isLinked && existing == nil: nada a fazer.
	}
	return ops
}

// PurgePlan produz a remoção do resumo da aula em toda turma onde ele
// apareça, independente do vínculo atual. Usado na exclusão da aula.
func PurgePlan(lessonID uint, classes []models.ClassRoom) []Op {
	var ops []Op
	for _, cls := range classes {
		if existing := findSummary(cls.Lessons, lessonID); existing != nil {
			ops = append(ops, Op{
				ClassID: cls.ID,
				Kind:    Remove,
				Summary: models.ClassLesson{ID: existing.ID, ClassID: cls.ID, LessonID: lessonID},
			})
		}
	}
	return ops
}

func findSummary(lessons []models.ClassLesson, lessonID uint) *models.ClassLesson {
	for i := range lessons {
		if lessons[i].LessonID == lessonID {
			return &lessons[i]
		}
	}
	return nil
}
