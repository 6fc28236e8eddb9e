package reports

import (
	"errors"
	"strings"

	"cobranzas/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrAdvisorNotFound = errors.New("Asesor no encontrado")

const (
	LookupByDNI  = "dni"
	LookupByName = "nombres"
)

// RankingRequest es el cuerpo de POST /api/reportes/ranking.
type RankingRequest struct {
	Filter
	Lookup string `json:"tipo"`
	DNI    string `json:"dni"`
	Name   string `json:"nombres"`
}

// AdvisorStats resume lo cobrado por un asesor en el periodo.
type AdvisorStats struct {
	AdvisorID   uint            `gorm:"column:advisor_id" json:"id_asesor"`
	Name        string          `gorm:"column:name" json:"nombre"`
	DNI         string          `gorm:"column:dni" json:"dni"`
	Clients     int64           `gorm:"column:total_clients" json:"total_clientes"`
	TotalPaid   decimal.Decimal `gorm:"column:total_paid" json:"total_pagos"`
	Payments    int64           `gorm:"column:payments" json:"cantidad_pagos"`
	Quota       decimal.Decimal `gorm:"column:quota" json:"total_metas"`
	Rate        string          `gorm:"-" json:"rate"`
}

// FindAdvisor busca por DNI exacto o por parte del nombre. La búsqueda por
// nombre distingue mayúsculas en PostgreSQL.
func FindAdvisor(db *gorm.DB, lookup, dni, name string) (models.Advisor, error) {
	var advisor models.Advisor
	q := db.Model(&models.Advisor{})

	switch lookup {
	case LookupByDNI:
		dni = strings.TrimSpace(dni)
		if dni == "" {
			return advisor, &FilterError{Field: "dni", Message: "Ingrese el DNI del asesor"}
		}
		q = q.Where("dni = ?", dni)
	case LookupByName:
		name = strings.TrimSpace(name)
		if name == "" {
			return advisor, &FilterError{Field: "nombres", Message: "Ingrese el nombre del asesor"}
		}
		q = q.Where("name LIKE ?", "%"+name+"%")
	default:
		return advisor, &FilterError{Field: "tipo", Message: "tipo debe ser dni o nombres"}
	}

	err := q.Order("id").First(&advisor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return advisor, ErrAdvisorNotFound
	}
	return advisor, err
}

// AdvisorRate calcula las estadísticas del asesor dentro del rango de fechas.
// rate = total cobrado / meta * 100, "0.00" si la meta es cero.
func AdvisorRate(db *gorm.DB, advisor models.Advisor, c Criteria) (AdvisorStats, error) {
	stats := AdvisorStats{
		AdvisorID: advisor.ID,
		Name:      advisor.Name,
		DNI:       advisor.DNI,
		Quota:     advisor.Quota,
	}

	var agg struct {
		TotalClients int64           `gorm:"column:total_clients"`
		TotalPaid    decimal.Decimal `gorm:"column:total_paid"`
		Payments     int64           `gorm:"column:payments"`
	}
	q := db.Table("assignments AS ac").
		Select("COUNT(DISTINCT cu.client_id) AS total_clients, COALESCE(SUM(ac.amount), 0) AS total_paid, COUNT(ac.id) AS payments").
		Joins("JOIN accounts cu ON ac.account_id = cu.id").
		Where("ac.advisor_id = ?", advisor.ID)
	if err := c.applyDates(q).Scan(&agg).Error; err != nil {
		return stats, err
	}

	stats.Clients = agg.TotalClients
	stats.TotalPaid = agg.TotalPaid
	stats.Payments = agg.Payments
	stats.Rate = rate(stats.TotalPaid, stats.Quota)
	return stats, nil
}

// Leaderboard ordena a todos los asesores por monto cobrado en el periodo.
func Leaderboard(db *gorm.DB, c Criteria) ([]AdvisorStats, error) {
	cond, args := c.dateJoinCondition()

	rows := []AdvisorStats{}
	err := db.Table("advisors AS a").
		Select(`a.id AS advisor_id, a.name, a.dni, a.quota,
			COUNT(DISTINCT cu.client_id) AS total_clients,
			COALESCE(SUM(ac.amount), 0) AS total_paid,
			COUNT(ac.id) AS payments`).
		Joins("LEFT JOIN assignments ac ON ac.advisor_id = a.id"+cond, args...).
		Joins("LEFT JOIN accounts cu ON ac.account_id = cu.id").
		Group("a.id, a.name, a.dni, a.quota").
		Order("total_paid DESC, a.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Rate = rate(rows[i].TotalPaid, rows[i].Quota)
	}
	return rows, nil
}

func rate(paid, quota decimal.Decimal) string {
	if quota.IsZero() {
		return "0.00"
	}
	return paid.Div(quota).Mul(decimal.NewFromInt(100)).StringFixed(2)
}
