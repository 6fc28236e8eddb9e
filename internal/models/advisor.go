package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Advisor: asesor (gestor de cobranza)
type Advisor struct {
	ID     uint            `gorm:"primaryKey" json:"id"`
	DNI    string          `gorm:"size:8;not null;uniqueIndex" json:"dni"`
	Name   string          `gorm:"size:255;not null" json:"nombre"`
	Role   string          `gorm:"size:100" json:"cargo"`
	Quota  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"meta"`
	Status string          `gorm:"size:50" json:"estado"`

	HiredAt      *time.Time `gorm:"type:date" json:"fecha_ingreso"`
	TerminatedAt *time.Time `gorm:"type:date" json:"fecha_cese"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
