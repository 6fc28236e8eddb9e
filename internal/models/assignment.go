package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Assignment: pago registrado sobre una cuenta por un asesor.
// No se actualiza ni se borra una vez creado.
type Assignment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AccountID     uint            `gorm:"not null;index" json:"id_cuenta"`
	AdvisorID     uint            `gorm:"not null;index" json:"id_asesor"`
	Amount        decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"importe"`
	PaymentDate   time.Time       `gorm:"type:date;not null;index" json:"fecha_pago"`
	PaymentMethod string          `gorm:"size:50;not null" json:"tipo_pago"`
	Voucher       *string         `gorm:"size:255" json:"voucher"`
	CreatedAt     time.Time       `json:"created_at"`

	Account Account `json:"-"`
	Advisor Advisor `json:"-"`
}
