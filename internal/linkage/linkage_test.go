package linkage

import (
	"testing"
	"time"

	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func classWith(id uint, summaries ...models.ClassLesson) models.ClassRoom {
	return models.ClassRoom{
		Model:   gorm.Model{ID: id},
		Name:    "Turma",
		Lessons: summaries,
	}
}

// applyOps simula o que o handler faz na transação, para poder replanejar
// sobre o estado resultante.
func applyOps(classes []models.ClassRoom, ops []Op) []models.ClassRoom {
	for _, op := range ops {
		for i := range classes {
			if classes[i].ID != op.ClassID {
				continue
			}
			switch op.Kind {
			case Add:
				classes[i].Lessons = append(classes[i].Lessons, op.Summary)
			case Refresh:
				for j := range classes[i].Lessons {
					if classes[i].Lessons[j].LessonID == op.Summary.LessonID {
						classes[i].Lessons[j].Title = op.Summary.Title
						classes[i].Lessons[j].Category = op.Summary.Category
					}
				}
			case Remove:
				kept := classes[i].Lessons[:0]
				for _, s := range classes[i].Lessons {
					if s.LessonID != op.Summary.LessonID {
						kept = append(kept, s)
					}
				}
				classes[i].Lessons = kept
			}
		}
	}
	return classes
}

func TestPlanAddRefreshRemove(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	linkedAt := now.Add(-48 * time.Hour)

	lesson := &models.LessonPlan{
		Model:   gorm.Model{ID: 7},
		Title:   "Frações",
		Subject: "Matemática",
	}

	classes := []models.ClassRoom{
		// turma 1: já tem o resumo, mas com título antigo
		classWith(1, models.ClassLesson{ID: 11, ClassID: 1, LessonID: 7, Title: "Frações (rascunho)", Category: "Matemática", LinkedAt: linkedAt}),
		// turma 2: tem o resumo mas não está mais no conjunto desejado
		classWith(2, models.ClassLesson{ID: 21, ClassID: 2, LessonID: 7, Title: "Frações", Category: "Matemática", LinkedAt: linkedAt}),
		// turma 3: ainda não tem o resumo
		classWith(3),
		// turma 4: nunca teve vínculo e continua fora
		classWith(4),
	}

	ops := Plan(lesson, []uint{1, 3}, classes, now)
	require.Len(t, ops, 3)

	byClass := make(map[uint]Op, len(ops))
	for _, op := range ops {
		byClass[op.ClassID] = op
	}

	refresh := byClass[1]
	assert.Equal(t, Refresh, refresh.Kind)
	assert.Equal(t, "Frações", refresh.Summary.Title)
	assert.Equal(t, uint(11), refresh.Summary.ID)
	// A data do vínculo original não muda na atualização
	assert.Equal(t, linkedAt, refresh.Summary.LinkedAt)

	remove := byClass[2]
	assert.Equal(t, Remove, remove.Kind)
	assert.Equal(t, uint(21), remove.Summary.ID)

	add := byClass[3]
	assert.Equal(t, Add, add.Kind)
	assert.Equal(t, uint(7), add.Summary.LessonID)
	assert.Equal(t, now, add.Summary.LinkedAt)
}

func TestPlanSkipsConsistentClasses(t *testing.T) {
	lesson := &models.LessonPlan{
		Model:   gorm.Model{ID: 7},
		Title:   "Frações",
		Subject: "Matemática",
	}
	classes := []models.ClassRoom{
		classWith(1, models.ClassLesson{ID: 11, ClassID: 1, LessonID: 7, Title: "Frações", Category: "Matemática"}),
	}

	ops := Plan(lesson, []uint{1}, classes, time.Now())
	assert.Empty(t, ops)
}

func TestPlanIsIdempotent(t *testing.T) {
	now := time.Now()
	lesson := &models.LessonPlan{
		Model:   gorm.Model{ID: 9},
		Title:   "Brasil Colônia",
		Subject: "História",
	}
	classes := []models.ClassRoom{
		classWith(1),
		classWith(2, models.ClassLesson{ID: 20, ClassID: 2, LessonID: 9, Title: "velho", Category: "História", LinkedAt: now}),
		classWith(3, models.ClassLesson{ID: 30, ClassID: 3, LessonID: 9, Title: "Brasil Colônia", Category: "História", LinkedAt: now}),
	}

	desired := []uint{1, 2}
	first := Plan(lesson, desired, classes, now)
	require.NotEmpty(t, first)

	classes = applyOps(classes, first)

	// Replanejar sobre o estado já reconciliado não produz nenhuma escrita
	second := Plan(lesson, desired, classes, now.Add(time.Hour))
	assert.Empty(t, second)
}

func TestPurgePlan(t *testing.T) {
	now := time.Now()
	classes := []models.ClassRoom{
		classWith(1, models.ClassLesson{ID: 11, ClassID: 1, LessonID: 7, Title: "a", LinkedAt: now}),
		classWith(2),
		classWith(3, models.ClassLesson{ID: 31, ClassID: 3, LessonID: 7, Title: "a", LinkedAt: now},
			models.ClassLesson{ID: 32, ClassID: 3, LessonID: 8, Title: "b", LinkedAt: now}),
	}

	ops := PurgePlan(7, classes)
	require.Len(t, ops, 2)
	for _, op := range ops {
		assert.Equal(t, Remove, op.Kind)
		assert.Equal(t, uint(7), op.Summary.LessonID)
	}

	// O resumo de outra aula na turma 3 fica intacto
	classes = applyOps(classes, ops)
	require.Len(t, classes[2].Lessons, 1)
	assert.Equal(t, uint(8), classes[2].Lessons[0].LessonID)
}
