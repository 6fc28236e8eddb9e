package reports

import (
	"errors"
	"time"

	"cobranzas/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrClientNotFound = errors.New("Cliente no encontrado")

// PaymentRow es una fila del reporte de pagos.
type PaymentRow struct {
	ClientID     uint            `gorm:"column:client_id" json:"cliente_id"`
	DNI          string          `gorm:"column:dni" json:"dni"`
	Name         string          `gorm:"column:name" json:"nombres"`
	Address      string          `gorm:"column:address" json:"direccion"`
	AccountID    uint            `gorm:"column:account_id" json:"cuenta_id"`
	Number       string          `gorm:"column:number" json:"numero_cuenta"`
	Campaign     string          `gorm:"column:campaign" json:"campana"`
	SubPortfolio string          `gorm:"column:sub_portfolio" json:"sub_cartera"`
	Product      string          `gorm:"column:product" json:"producto"`
	Principal    decimal.Decimal `gorm:"column:principal" json:"capital"`
	TotalDebt    decimal.Decimal `gorm:"column:total_debt" json:"deuda_total"`
	WriteOffDate *time.Time      `gorm:"column:write_off_date" json:"fecha_castigo"`

	PortfolioID   uint   `gorm:"column:portfolio_id" json:"cartera_id"`
	PortfolioName string `gorm:"column:portfolio_name" json:"cartera"`
	PortfolioType string `gorm:"column:portfolio_type" json:"cartera_tipo"`

	AssignmentID  uint            `gorm:"column:assignment_id" json:"asignacion_id"`
	Amount        decimal.Decimal `gorm:"column:amount" json:"importe"`
	PaymentDate   time.Time       `gorm:"column:payment_date" json:"fecha_pago"`
	PaymentMethod string          `gorm:"column:payment_method" json:"tipo_pago"`
	Voucher       *string         `gorm:"column:voucher" json:"voucher"`

	AdvisorID   uint   `gorm:"column:advisor_id" json:"asesor_id"`
	AdvisorName string `gorm:"column:advisor_name" json:"asesor_nombre"`
	AdvisorDNI  string `gorm:"column:advisor_dni" json:"asesor_dni"`
}

const paymentColumns = `cl.id AS client_id, cl.dni, cl.name, cl.address,
	cu.id AS account_id, cu.number, cu.campaign, cu.sub_portfolio, cu.product,
	cu.principal, cu.total_debt, cu.write_off_date,
	ca.id AS portfolio_id, ca.name AS portfolio_name, ca.type AS portfolio_type,
	ac.id AS assignment_id, ac.amount, ac.payment_date, ac.payment_method, ac.voucher,
	a.id AS advisor_id, a.name AS advisor_name, a.dni AS advisor_dni`

// Payments devuelve los pagos que cumplen los criterios, más recientes primero.
func Payments(db *gorm.DB, c Criteria) ([]PaymentRow, error) {
	q := db.Table("assignments AS ac").
		Select(paymentColumns).
		Joins("JOIN accounts cu ON ac.account_id = cu.id").
		Joins("JOIN clients cl ON cu.client_id = cl.id").
		Joins("JOIN portfolios ca ON cu.portfolio_id = ca.id").
		Joins("JOIN advisors a ON ac.advisor_id = a.id")

	rows := []PaymentRow{}
	err := c.apply(q).
		Order("ac.payment_date DESC, ac.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ClientAssignmentRow: cada cuenta del cliente con sus pagos; una cuenta
// sin pagos aparece una vez con los campos del pago vacíos.
type ClientAssignmentRow struct {
	ClientID      uint                `gorm:"column:client_id"`
	DNI           string              `gorm:"column:dni"`
	Name          string              `gorm:"column:name"`
	Address       string              `gorm:"column:address"`
	AccountID     uint                `gorm:"column:account_id"`
	Number        string              `gorm:"column:number"`
	Campaign      string              `gorm:"column:campaign"`
	PortfolioName string              `gorm:"column:portfolio_name"`
	PortfolioType string              `gorm:"column:portfolio_type"`
	SubPortfolio  string              `gorm:"column:sub_portfolio"`
	Product       string              `gorm:"column:product"`
	Principal     decimal.Decimal     `gorm:"column:principal"`
	TotalDebt     decimal.Decimal     `gorm:"column:total_debt"`
	WriteOffDate  *time.Time          `gorm:"column:write_off_date"`
	AdvisorDNI    *string             `gorm:"column:advisor_dni"`
	AdvisorName   *string             `gorm:"column:advisor_name"`
	Amount        decimal.NullDecimal `gorm:"column:amount"`
	PaymentDate   *time.Time          `gorm:"column:payment_date"`
	PaymentMethod *string             `gorm:"column:payment_method"`
	Voucher       *string             `gorm:"column:voucher"`
}

func ClientAssignments(db *gorm.DB, clientID uint) ([]ClientAssignmentRow, error) {
	var n int64
	if err := db.Model(&models.Client{}).Where("id = ?", clientID).Count(&n).Error; err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrClientNotFound
	}

	rows := []ClientAssignmentRow{}
	err := db.Table("clients AS cl").
		Select(`cl.id AS client_id, cl.dni, cl.name, cl.address,
			cu.id AS account_id, cu.number, cu.campaign,
			ca.name AS portfolio_name, ca.type AS portfolio_type,
			cu.sub_portfolio, cu.product, cu.principal, cu.total_debt, cu.write_off_date,
			a.dni AS advisor_dni, a.name AS advisor_name,
			ac.amount, ac.payment_date, ac.payment_method, ac.voucher`).
		Joins("JOIN accounts cu ON cl.id = cu.client_id").
		Joins("JOIN portfolios ca ON cu.portfolio_id = ca.id").
		Joins("LEFT JOIN assignments ac ON cu.id = ac.account_id").
		Joins("LEFT JOIN advisors a ON ac.advisor_id = a.id").
		Where("cl.id = ?", clientID).
		Order("cu.number, ac.payment_date DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
