package access

import (
	"testing"

	"github.com/aboscolliaulas/Ensinoverso/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func lesson(id, ownerID uint, classIDs ...uint) models.LessonPlan {
	l := models.LessonPlan{
		Model:   gorm.Model{ID: id},
		OwnerID: ownerID,
		Title:   "Aula",
	}
	for _, cid := range classIDs {
		l.LinkedClasses = append(l.LinkedClasses, models.ClassRoom{Model: gorm.Model{ID: cid}})
	}
	return l
}

func lessonIDs(lessons []models.LessonPlan) []uint {
	ids := make([]uint, 0, len(lessons))
	for _, l := range lessons {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestVisibleLessons(t *testing.T) {
	all := []models.LessonPlan{
		lesson(1, 10, 100),      // do professor 10, turma 100
		lesson(2, 10),           // do professor 10, sem turma
		lesson(3, 20, 200, 300), // do professor 20, turmas 200 e 300
	}

	tests := []struct {
		name      string
		principal Principal
		wantIDs   []uint
	}{
		{
			name:      "administrador enxerga tudo",
			principal: Principal{ID: 1, Role: models.RoleAdministrador},
			wantIDs:   []uint{1, 2, 3},
		},
		{
			name:      "professor enxerga apenas as próprias aulas",
			principal: Principal{ID: 10, Role: models.RoleProfessor},
			wantIDs:   []uint{1, 2},
		},
		{
			name:      "professor sem aulas não enxerga nada",
			principal: Principal{ID: 30, Role: models.RoleProfessor},
			wantIDs:   []uint{},
		},
		{
			name:      "estudante enxerga aulas das suas turmas",
			principal: Principal{ID: 50, Role: models.RoleEstudante, LinkedClassIDs: []uint{300}},
			wantIDs:   []uint{3},
		},
		{
			name:      "estudante em várias turmas acumula aulas",
			principal: Principal{ID: 51, Role: models.RoleEstudante, LinkedClassIDs: []uint{100, 200}},
			wantIDs:   []uint{1, 3},
		},
		{
			name:      "estudante sem turma não enxerga nada",
			principal: Principal{ID: 52, Role: models.RoleEstudante},
			wantIDs:   []uint{},
		},
		{
			name:      "aula sem turma vinculada é invisível para estudantes",
			principal: Principal{ID: 53, Role: models.RoleEstudante, LinkedClassIDs: []uint{100, 200, 300}},
			wantIDs:   []uint{1, 3},
		},
		{
			name:      "papel desconhecido não enxerga nada",
			principal: Principal{ID: 60, Role: "visitante"},
			wantIDs:   []uint{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VisibleLessons(all, tt.principal)
			assert.Equal(t, tt.wantIDs, lessonIDs(got))
		})
	}
}

func TestSectionsByRole(t *testing.T) {
	assert.Len(t, SectionsFor(models.RoleAdministrador), 7)
	assert.Equal(t, []string{SectionDashboard, SectionLessons, SectionChat}, SectionsFor(models.RoleProfessor))
	assert.Equal(t, []string{SectionDashboard, SectionLessons}, SectionsFor(models.RoleEstudante))
	assert.Empty(t, SectionsFor("visitante"))
}

func TestCanAccess(t *testing.T) {
	assert.True(t, CanAccess(models.RoleAdministrador, SectionSettings))
	assert.True(t, CanAccess(models.RoleProfessor, SectionLessons))
	assert.False(t, CanAccess(models.RoleProfessor, SectionSettings))
	assert.False(t, CanAccess(models.RoleEstudante, SectionClasses))
	assert.False(t, CanAccess(models.RoleEstudante, SectionChat))
	assert.False(t, CanAccess("visitante", SectionDashboard))
}
