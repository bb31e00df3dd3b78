// models/bncc.go
package models

import "gorm.io/gorm"

// BNCCSkill é uma habilidade do currículo nacional (BNCC). O código é tratado
// como string opaca — a aplicação não interpreta a nomenclatura.
type BNCCSkill struct {
	gorm.Model
	Code        string `json:"code" gorm:"unique;not null"`
	Description string `json:"description" gorm:"type:text"`
	Grade       string `json:"grade"`
	Subject     string `json:"subject"`
}
