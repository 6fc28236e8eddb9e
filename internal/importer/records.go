package importer

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClientRecord es una fila del padrón de clientes ya tipada.
type ClientRecord struct {
	DNI           string
	Name          string
	Address       string
	AccountNumber string
	Portfolio     string
	PortfolioType string
	Campaign      string
	SubPortfolio  string
	Product       string
	Principal     decimal.Decimal
	TotalDebt     decimal.Decimal
	WriteOffDate  *time.Time
}

func (r ClientRecord) complete() bool {
	return r.DNI != "" && r.Name != "" && r.AccountNumber != "" && r.Portfolio != ""
}

func clientRecord(cols columns, row []string) ClientRecord {
	return ClientRecord{
		DNI:           NormalizeDNI(cols.value(row, "dni")),
		Name:          cols.value(row, "name"),
		Address:       cols.value(row, "address"),
		AccountNumber: cols.value(row, "account_number"),
		Portfolio:     cols.value(row, "portfolio"),
		PortfolioType: cols.value(row, "portfolio_type"),
		Campaign:      cols.value(row, "campaign"),
		SubPortfolio:  cols.value(row, "sub_portfolio"),
		Product:       cols.value(row, "product"),
		Principal:     ParseDecimal(cols.value(row, "principal")),
		TotalDebt:     ParseDecimal(cols.value(row, "total_debt")),
		WriteOffDate:  ParseDate(cols.value(row, "write_off_date")),
	}
}

// AdvisorRecord es una fila del padrón de asesores. Los campos opcionales
// vacíos quedan en nil para no pisar datos existentes.
type AdvisorRecord struct {
	DNI          string
	Name         string
	Role         string
	Quota        *decimal.Decimal
	Status       string
	HiredAt      *time.Time
	TerminatedAt *time.Time
}

func (r AdvisorRecord) complete() bool {
	return r.DNI != "" && r.Name != ""
}

func advisorRecord(cols columns, row []string) AdvisorRecord {
	return AdvisorRecord{
		DNI:          NormalizeDNI(cols.value(row, "dni")),
		Name:         cols.value(row, "name"),
		Role:         cols.value(row, "role"),
		Quota:        parseOptionalDecimal(cols.value(row, "quota")),
		Status:       cols.value(row, "status"),
		HiredAt:      ParseDate(cols.value(row, "hired_at")),
		TerminatedAt: ParseDate(cols.value(row, "terminated_at")),
	}
}
