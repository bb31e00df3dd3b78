// models/user.go

package models

import (
	"gorm.io/gorm"
)

// Papéis reconhecidos pela aplicação. A tabela de capacidades por papel
// vive em internal/access — aqui ficam apenas as constantes.
const (
	RoleAdministrador = "administrador"
	RoleProfessor     = "professor"
	RoleEstudante     = "estudante"
)

// User representa o registro de perfil de um usuário autenticado.
type User struct {
	gorm.Model
	Name     string `json:"name" gorm:"not null"`
	Email    string `json:"email" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Role     string `json:"role" gorm:"type:varchar(20);not null;default:'professor'"`
	Approved bool   `json:"approved" gorm:"default:false"`

	// Turmas às quais o usuário está vinculado. Para estudantes essa lista
	// determina quais aulas ficam visíveis.
	LinkedClasses []ClassRoom `json:"-" gorm:"many2many:user_classes;"`
}

// ValidRole informa se a string corresponde a um papel conhecido.
func ValidRole(role string) bool {
	switch role {
	case RoleAdministrador, RoleProfessor, RoleEstudante:
		return true
	}
	return false
}

// UserResponse é a projeção de User enviada nas respostas da API.
// CompletedLessonIDs é derivado das submissões de quiz — a submissão
// persistida é o registro canônico de conclusão.
type UserResponse struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Role               string `json:"role"`
	Approved           bool   `json:"approved"`
	LinkedClassIDs     []uint `json:"linkedClassIds"`
	CompletedLessonIDs []uint `json:"completedLessonIds"`
}
