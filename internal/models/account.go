package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account: cuenta de deuda de un cliente dentro de una cartera.
// El número de cuenta es único por cliente, no globalmente.
type Account struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	ClientID    uint   `gorm:"not null;uniqueIndex:idx_account_client_number,priority:1" json:"id_cliente"`
	Number      string `gorm:"size:50;not null;uniqueIndex:idx_account_client_number,priority:2" json:"numero_cuenta"`
	PortfolioID uint   `gorm:"not null;index" json:"id_cartera"`

	Principal    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"capital"`
	TotalDebt    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"deuda_total"`
	Product      string          `gorm:"size:100" json:"producto"`
	SubPortfolio string          `gorm:"size:100" json:"sub_cartera"`
	Campaign     string          `gorm:"size:100;index" json:"campana"`
	WriteOffDate *time.Time      `gorm:"type:date" json:"fecha_castigo"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client    Client    `json:"-"`
	Portfolio Portfolio `json:"cartera"`
}
