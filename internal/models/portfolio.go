package models

import "time"

// DefaultPortfolioType se asigna a las carteras creadas por la importación
// cuando el archivo no trae la columna TIPO CARTERA.
const DefaultPortfolioType = "CASTIGO"

type Portfolio struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:150;not null;uniqueIndex" json:"nombre"`
	Type      string    `gorm:"size:50;not null" json:"tipo"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
