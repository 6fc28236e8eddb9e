package models

import "time"

// Client: deudor identificado por DNI
type Client struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DNI       string    `gorm:"size:8;not null;uniqueIndex" json:"dni"`
	Name      string    `gorm:"size:255;not null" json:"nombres"`
	Address   string    `gorm:"size:255" json:"direccion"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Accounts []Account `json:"-"`
}
