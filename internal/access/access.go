// internal/access/access.go

// Package access concentra as decisões de visibilidade por papel: quais aulas
// um principal enxerga e quais seções da aplicação ele pode abrir. Tudo aqui
// é função pura — os handlers recalculam a cada requisição, nunca há cache
// atravessando uma troca de principal.
package access

import (
	"github.com/aboscolliaulas/Ensinoverso/models"
)

// Principal é a visão mínima do usuário autenticado usada nas decisões de
// autorização.
type Principal struct {
	ID             uint
	Role           string
	Approved       bool
	LinkedClassIDs []uint
}

// VisibleLessons devolve o subconjunto de aulas visível para o principal:
//   - administrador: todas;
//   - professor: apenas as aulas que ele próprio criou;
//   - estudante: aulas cujo conjunto de turmas vinculadas intersecta as
//     turmas do estudante.
//
// As aulas precisam estar com LinkedClasses pré-carregado.
func VisibleLessons(all []models.LessonPlan, p Principal) []models.LessonPlan {
	if p.Role == models.RoleAdministrador {
		return all
	}

	visible := make([]models.LessonPlan, 0, len(all))
	for _, l := range all {
		switch p.Role {
		case models.RoleProfessor:
			if l.OwnerID == p.ID {
				visible = append(visible, l)
			}
		case models.RoleEstudante:
			if intersects(l.LinkedClassIDs(), p.LinkedClassIDs) {
				visible = append(visible, l)
			}
		}
	}
	return visible
}

func intersects(a, b []uint) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[uint]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// Seções navegáveis da aplicação (espelham as abas do cliente).
const (
	SectionDashboard = "dashboard"
	SectionClasses   = "turmas"
	SectionLessons   = "aulas"
	SectionSettings  = "config"
	SectionVisuals   = "visuals"
	SectionQuiz      = "quiz"
	SectionChat      = "chat"
)

// sectionsByRole é uma tabela estática de capacidades — consulta direta,
// não um motor de regras.
var sectionsByRole = map[string][]string{
	models.RoleAdministrador: {
		SectionDashboard, SectionClasses, SectionLessons,
		SectionSettings, SectionVisuals, SectionQuiz, SectionChat,
	},
	models.RoleProfessor: {SectionDashboard, SectionLessons, SectionChat},
	models.RoleEstudante: {SectionDashboard, SectionLessons},
}

// SectionsFor lista as seções acessíveis ao papel informado.
func SectionsFor(role string) []string {
	return sectionsByRole[role]
}

// CanAccess informa se o papel pode abrir a seção.
func CanAccess(role, section string) bool {
	for _, s := range sectionsByRole[role] {
		if s == section {
			return true
		}
	}
	return false
}
